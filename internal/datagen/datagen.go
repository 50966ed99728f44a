// Package datagen synthesizes a realistic hospital equipment fleet —
// registry entries, work order history, service contracts, and PM
// schedules — for local development and demos, backing the CLI's
// "generate-data" subcommand.
package datagen

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/models"
)

// DefaultSeed reproduces the same fleet across runs (apart from the
// uuid-minted references; see Generator), the way the
// original fixture generator pinned its PRNG to a fixed seed.
const DefaultSeed = 42

var facilities = []string{"FAC-001", "FAC-002", "FAC-003"}

var departments = []string{
	"Radiology", "ICU", "Emergency", "Surgery", "Cardiology",
	"Neonatal", "Pulmonology", "General Medicine", "Orthopedics", "Anesthesiology",
}

var thirdPartyVendors = []string{"Aramark", "TRIMEDX", "Sodexo HTM", "Agiliti", "local_iso"}

var rootCauses = []string{
	"Normal wear", "Component fatigue", "Electrical fault", "Software error",
	"Calibration drift", "User error", "Power surge", "Fluid leak",
	"Mechanical failure", "Sensor degradation", "",
}

var priorities = []models.WorkOrderPriority{
	models.PriorityEmergency, models.PriorityUrgent, models.PriorityRoutine, models.PriorityScheduled,
}

var priorityWeights = []float64{0.05, 0.15, 0.50, 0.30}

var technicianTypes = []models.TechnicianType{
	models.TechInHouse, models.TechOEM, models.TechThirdPartyISO,
}

type costRange struct{ min, max float64 }

// equipmentSpec is one equipment class's population and cost profile.
type equipmentSpec struct {
	class            string
	count            int
	cost             costRange
	usefulLifeMonths int
	pmFreqMonths     int
	manufacturers    []string
	models           []string
}

var equipmentSpecs = []equipmentSpec{
	{"ct_scanner", 15, costRange{800_000, 2_500_000}, 120, 3,
		[]string{"GE Healthcare", "Siemens Healthineers", "Philips Healthcare", "Canon Medical"},
		[]string{"Revolution CT", "SOMATOM Force", "IQon Spectral CT", "Aquilion ONE"}},
	{"mri", 10, costRange{1_500_000, 3_000_000}, 132, 3,
		[]string{"GE Healthcare", "Siemens Healthineers", "Philips Healthcare", "Canon Medical"},
		[]string{"SIGNA Premier", "MAGNETOM Vida", "Ingenia Ambition", "Vantage Orian"}},
	{"ultrasound", 40, costRange{50_000, 250_000}, 84, 6,
		[]string{"GE Healthcare", "Siemens Healthineers", "Philips Healthcare", "Mindray"},
		[]string{"LOGIQ E10", "ACUSON Sequoia", "EPIQ Elite", "Resona I9"}},
	{"ventilator", 80, costRange{25_000, 50_000}, 96, 6,
		[]string{"Draeger", "GE Healthcare", "Philips Healthcare", "Mindray"},
		[]string{"Evita V800", "CARESCAPE R860", "Trilogy Evo", "SV800"}},
	{"infusion_pump", 120, costRange{3_000, 8_000}, 84, 6,
		[]string{"GE Healthcare", "Mindray"},
		[]string{"Alaris System", "BeneFusion SP5"}},
	{"patient_monitor", 100, costRange{8_000, 25_000}, 72, 6,
		[]string{"GE Healthcare", "Philips Healthcare", "Mindray", "Masimo"},
		[]string{"CARESCAPE B650", "IntelliVue MX800", "BeneVision N22", "Root"}},
	{"surgical_light", 30, costRange{15_000, 60_000}, 120, 12,
		[]string{"Stryker", "GE Healthcare", "Draeger"},
		[]string{"Visum II", "HeraLux LED", "Polaris 600"}},
	{"defibrillator", 40, costRange{15_000, 35_000}, 96, 6,
		[]string{"Philips Healthcare", "Stryker", "GE Healthcare", "Mindray"},
		[]string{"HeartStart MRx", "LIFEPAK 15", "MAC VU360", "BeneHeart D6"}},
	{"anesthesia_machine", 35, costRange{40_000, 100_000}, 120, 3,
		[]string{"Draeger", "GE Healthcare", "Mindray"},
		[]string{"Perseus A500", "Aisys CS2", "WATO EX-65"}},
	{"c_arm", 30, costRange{100_000, 300_000}, 96, 3,
		[]string{"GE Healthcare", "Siemens Healthineers", "Philips Healthcare"},
		[]string{"OEC 3D", "Cios Alpha", "Zenition 50"}},
}

var baseRepairCosts = map[string]costRange{
	"ct_scanner":          {2000, 15000},
	"mri":                 {3000, 20000},
	"ultrasound":          {500, 3000},
	"ventilator":          {300, 2000},
	"infusion_pump":       {100, 500},
	"patient_monitor":     {200, 1000},
	"surgical_light":      {200, 1500},
	"defibrillator":       {300, 2000},
	"anesthesia_machine":  {500, 4000},
	"c_arm":               {1000, 8000},
}

var basePMCosts = map[string]costRange{
	"ct_scanner":          {800, 3000},
	"mri":                 {1000, 4000},
	"ultrasound":          {200, 800},
	"ventilator":          {150, 500},
	"infusion_pump":       {50, 200},
	"patient_monitor":     {100, 400},
	"surgical_light":      {100, 500},
	"defibrillator":       {150, 600},
	"anesthesia_machine":  {300, 1200},
	"c_arm":               {500, 2000},
}

var contractFractions = map[models.ContractType]costRange{
	models.ContractFullService:      {0.08, 0.12},
	models.ContractPreventiveOnly:   {0.03, 0.05},
	models.ContractPartsOnly:        {0.02, 0.04},
	models.ContractTimeAndMaterials: {0.01, 0.02},
	models.ContractPerCall:          {0.005, 0.015},
}

// Summary counts the rows a Run produced, for the CLI to print.
type Summary struct {
	Equipment int
	WorkOrders int
	Contracts int
	PMSchedules int
}

// Generator produces a synthetic fleet from a seeded PRNG. Everything except
// the uuid.New-minted vendor account and dispatch references is reproducible
// from the seed.
type Generator struct {
	rng         *rand.Rand
	today       models.CalendarDate
	historyStart models.CalendarDate
}

// New builds a Generator seeded for reproducible output.
func New(seed int64, today, historyStart models.CalendarDate) *Generator {
	return &Generator{
		rng:          rand.New(rand.NewSource(seed)),
		today:        today,
		historyStart: historyStart,
	}
}

// Run generates the full fixture fleet and persists it through a single
// store transaction, committing only if every insert succeeds.
func (g *Generator) Run(ctx context.Context, db store.Store) (Summary, error) {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	equipment, err := g.generateEquipment(ctx, tx)
	if err != nil {
		return Summary{}, fmt.Errorf("generate equipment: %w", err)
	}

	woCount, err := g.generateWorkOrders(ctx, tx, equipment)
	if err != nil {
		return Summary{}, fmt.Errorf("generate work orders: %w", err)
	}

	contractCount, err := g.generateServiceContracts(ctx, tx, equipment)
	if err != nil {
		return Summary{}, fmt.Errorf("generate service contracts: %w", err)
	}

	pmCount, err := g.generatePMSchedules(ctx, tx, equipment)
	if err != nil {
		return Summary{}, fmt.Errorf("generate pm schedules: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, fmt.Errorf("commit: %w", err)
	}

	return Summary{
		Equipment:   len(equipment),
		WorkOrders:  woCount,
		Contracts:   contractCount,
		PMSchedules: pmCount,
	}, nil
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *Generator) choice(options []string) string {
	return options[g.rng.Intn(len(options))]
}

func (g *Generator) weightedPriority() models.WorkOrderPriority {
	r := g.rng.Float64()
	var cumulative float64
	for i, w := range priorityWeights {
		cumulative += w
		if r <= cumulative {
			return priorities[i]
		}
	}
	return priorities[len(priorities)-1]
}

func (g *Generator) technicianType() models.TechnicianType {
	return technicianTypes[g.rng.Intn(len(technicianTypes))]
}

// vendorAccountRef mints a vendor-facing account reference the way a
// CMMS issues distinct account codes per contracted provider, instead of
// reusing the bare vendor name as the contract's identity.
func vendorAccountRef(vendorName string) string {
	return fmt.Sprintf("%s-%s", vendorName, uuid.New().String()[:8])
}

// technicianDispatchRef mints a per-dispatch technician identifier for
// outsourced (OEM or third-party ISO) repair visits.
func technicianDispatchRef() string {
	return uuid.New().String()[:8]
}
