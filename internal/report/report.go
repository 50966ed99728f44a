// Package report renders a shareable fleet cost PDF from the analytical
// core's fleet summary and replacement-priority outputs, backing the
// CLI's "report" subcommand.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joelpate/equipcost/internal/aggregator"
	"github.com/joelpate/equipcost/internal/fleet"
	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/models"
)

// Generator collects fleet-level figures and renders them as a PDF.
type Generator struct {
	db  store.Store
	agg *aggregator.Aggregator
	opt *fleet.FleetOptimizer
}

// New builds a Generator against the given store and discount rate, the
// rate fleet.FleetOptimizer uses to rank replacement candidates.
func New(db store.Store, discountRate float64) *Generator {
	return &Generator{
		db:  db,
		agg: aggregator.New(db),
		opt: fleet.New(db, discountRate),
	}
}

// GenerateFleetReport writes a one-page fleet cost report for facilityID
// (all facilities when empty) to outPath.
func (g *Generator) GenerateFleetReport(ctx context.Context, facilityID string, budget models.Money, outPath string) error {
	summary, err := g.agg.GetFleetCostSummary(ctx, facilityID)
	if err != nil {
		return fmt.Errorf("report: fleet cost summary: %w", err)
	}

	priorities, err := g.opt.RankReplacementPriorities(ctx, facilityID, budget)
	if err != nil {
		return fmt.Errorf("report: rank replacement priorities: %w", err)
	}
	if len(priorities) > 10 {
		priorities = priorities[:10]
	}

	desc := buildDescription(facilityID, summary, priorities)
	descJSON, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("report: encode page description: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", outPath, err)
	}
	defer out.Close()

	conf := model.NewDefaultConfiguration()
	if err := api.Create(nil, bytes.NewReader(descJSON), out, conf); err != nil {
		return fmt.Errorf("report: render pdf: %w", err)
	}
	return nil
}

// pageDescription mirrors pdfcpu's JSON page-content description format:
// a single logical page built from positioned text runs.
type pageDescription struct {
	Paper string                  `json:"paper"`
	Pages map[string]pageContent `json:"pages"`
}

type pageContent struct {
	Content pageTextBlock `json:"content"`
}

type pageTextBlock struct {
	Texts []textRun `json:"texts"`
}

type textRun struct {
	Value    string      `json:"value"`
	Position [2]float64  `json:"position"`
	Font     textRunFont `json:"font"`
}

type textRunFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

func buildDescription(facilityID string, summary models.FleetCostSummary, priorities []models.ReplacementPriority) pageDescription {
	title := "Fleet Cost Report"
	if facilityID != "" {
		title = fmt.Sprintf("Fleet Cost Report — %s", facilityID)
	}

	y := 760.0
	texts := []textRun{
		{Value: title, Position: [2]float64{56, y}, Font: textRunFont{"Helvetica-Bold", 20}},
	}
	y -= 36

	summaryLines := []string{
		fmt.Sprintf("Total equipment: %d", summary.TotalEquipment),
		fmt.Sprintf("Total annual cost: %s", summary.TotalAnnualCost),
		fmt.Sprintf("Average cost per asset: %s", summary.AvgCostPerAsset),
		fmt.Sprintf("Aging assets: %d", summary.AgingAssetsCount),
	}
	for _, line := range summaryLines {
		texts = append(texts, textRun{Value: line, Position: [2]float64{56, y}, Font: textRunFont{"Helvetica", 12}})
		y -= 18
	}

	y -= 18
	texts = append(texts, textRun{Value: "Top cost classes", Position: [2]float64{56, y}, Font: textRunFont{"Helvetica-Bold", 13}})
	y -= 20
	for _, c := range summary.TopCostClasses {
		texts = append(texts, textRun{
			Value:    fmt.Sprintf("%-24s %s", c.Class, c.AnnualCost),
			Position: [2]float64{56, y},
			Font:     textRunFont{"Courier", 11},
		})
		y -= 16
	}

	y -= 18
	texts = append(texts, textRun{Value: "Top replacement priorities", Position: [2]float64{56, y}, Font: textRunFont{"Helvetica-Bold", 13}})
	y -= 20
	for _, p := range priorities {
		texts = append(texts, textRun{
			Value: fmt.Sprintf("#%-3d %-16s age=%3dmo npv_savings=%-12s %s",
				p.Rank, p.AssetTag, p.AgeMonths, p.NPVSavings, p.RecommendedAction),
			Position: [2]float64{56, y},
			Font:     textRunFont{"Courier", 10},
		})
		y -= 15
	}

	return pageDescription{
		Paper: "A4",
		Pages: map[string]pageContent{
			"1": {Content: pageTextBlock{Texts: texts}},
		},
	}
}
