// Package dashboard implements the terminal fleet dashboard launched by
// the CLI's "dashboard" subcommand, built with bubbletea and lipgloss.
package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/pkg/models"
)

const (
	tabFleetOverview = iota
	tabReplacementPriorities
	tabEquipmentDetail
)

var tabLabels = []string{"Fleet Overview", "Replacement Priorities", "Equipment Detail"}

// Config tunes the dashboard's data scope and appearance.
type Config struct {
	Theme              string
	FacilityID         string
	CapitalBudget      float64
	DiscountRate       float64
	DowntimeHourlyRate float64
}

// Model is the bubbletea root model for the dashboard program.
type Model struct {
	cfg  Config
	data *dataService

	styles *Styles
	layout *layout

	width  int
	height int

	selectedTab int
	cursor      int
	loading     bool
	err         error

	summary    models.FleetCostSummary
	equipment  []models.EquipmentRegistry
	priorities []models.ReplacementPriority

	detailTag    string
	detailEq     *models.EquipmentRegistry
	detailReport *models.TCOReport
}

// New builds the dashboard's root model against a live store.
func New(db store.Store, cfg Config) Model {
	if cfg.Theme == "" {
		cfg.Theme = "dark"
	}
	if cfg.CapitalBudget <= 0 {
		cfg.CapitalBudget = 2_000_000
	}
	if cfg.DiscountRate <= 0 {
		cfg.DiscountRate = 0.08
	}
	return Model{
		cfg:     cfg,
		data:    newDataService(db, cfg.DowntimeHourlyRate, cfg.DiscountRate),
		styles:  themeStyles(cfg.Theme),
		loading: true,
	}
}

// Init kicks off the first fleet-wide data load.
func (m Model) Init() tea.Cmd {
	return m.data.loadFleetSnapshot(m.cfg.FacilityID, models.NewMoney(m.cfg.CapitalBudget))
}

// Update handles bubbletea messages and returns the next model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout = newLayout(msg.Width, msg.Height, m.styles)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case fleetSnapshotMsg:
		m.loading = false
		m.err = nil
		m.summary = msg.summary
		m.equipment = msg.equipment
		m.priorities = msg.priorities
		if m.cursor >= len(m.equipment) {
			m.cursor = 0
		}
		return m, nil

	case equipmentDetailMsg:
		m.loading = false
		m.err = nil
		eq := msg.equipment
		report := msg.report
		m.detailEq = &eq
		m.detailReport = &report
		return m, nil

	case dashboardErrMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "tab":
		m.selectedTab = (m.selectedTab + 1) % len(tabLabels)
		return m, nil

	case "shift+tab":
		m.selectedTab = (m.selectedTab - 1 + len(tabLabels)) % len(tabLabels)
		return m, nil

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if m.selectedTab == tabFleetOverview && m.cursor < len(m.equipment)-1 {
			m.cursor++
		}
		if m.selectedTab == tabReplacementPriorities && m.cursor < len(m.priorities)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		if m.selectedTab == tabFleetOverview && m.cursor < len(m.equipment) {
			tag := m.equipment[m.cursor].AssetTag
			m.selectedTab = tabEquipmentDetail
			m.detailTag = tag
			m.loading = true
			return m, m.data.loadEquipmentDetail(tag)
		}
		if m.selectedTab == tabReplacementPriorities && m.cursor < len(m.priorities) {
			tag := m.priorities[m.cursor].AssetTag
			m.selectedTab = tabEquipmentDetail
			m.detailTag = tag
			m.loading = true
			return m, m.data.loadEquipmentDetail(tag)
		}
		return m, nil

	case "R":
		m.loading = true
		return m, m.data.loadFleetSnapshot(m.cfg.FacilityID, models.NewMoney(m.cfg.CapitalBudget))
	}
	return m, nil
}

// View renders the current tab.
func (m Model) View() string {
	if m.layout == nil {
		return "initializing..."
	}
	if m.loading {
		return m.layout.header("Equipment Cost Dashboard", "loading...") + "\n\n" +
			m.styles.Info.Render("Loading fleet data...")
	}
	if m.err != nil {
		return m.layout.header("Equipment Cost Dashboard", "error") + "\n\n" +
			m.styles.Error.Render("Error: "+m.err.Error())
	}

	var b strings.Builder
	b.WriteString(m.layout.header("Equipment Cost Dashboard", m.cfg.FacilityID))
	b.WriteString("\n")
	b.WriteString(m.layout.tabs(tabLabels, m.selectedTab))
	b.WriteString("\n\n")

	switch m.selectedTab {
	case tabFleetOverview:
		b.WriteString(m.viewFleetOverview())
	case tabReplacementPriorities:
		b.WriteString(m.viewReplacementPriorities())
	case tabEquipmentDetail:
		b.WriteString(m.viewEquipmentDetail())
	}

	b.WriteString("\n\n")
	b.WriteString(m.layout.footer("[Tab] Switch view  [↑↓] Navigate  [Enter] Detail  [R] Refresh  [q] Quit"))
	return b.String()
}

func (m Model) viewFleetOverview() string {
	kpis := fmt.Sprintf(
		"Total Assets: %d    Annual Cost: $%s    Avg / Asset: $%s    Aging: %d",
		m.summary.TotalEquipment, m.summary.TotalAnnualCost.String(),
		m.summary.AvgCostPerAsset.String(), m.summary.AgingAssetsCount,
	)

	var classes strings.Builder
	for _, c := range m.summary.TopCostClasses {
		classes.WriteString(m.layout.progressBar(c.Class, ratioOf(c.AnnualCost, m.summary.TotalAnnualCost), 30))
		classes.WriteString("\n")
	}

	var rows strings.Builder
	header := fmt.Sprintf("%-14s %-16s %-10s %-10s", "Asset Tag", "Class", "Status", "Age")
	rows.WriteString(m.styles.Secondary.Render(header))
	rows.WriteString("\n")
	for i, eq := range m.equipment {
		line := fmt.Sprintf("%-14s %-16s %-10s %-10s",
			eq.AssetTag, eq.Class, eq.Status, eq.AcquisitionDate.String())
		line = m.styles.statusStyle(string(eq.Status)).Render(line)
		if i == m.cursor {
			line = m.styles.Primary.Render("> ") + line
		} else {
			line = "  " + line
		}
		rows.WriteString(line)
		rows.WriteString("\n")
	}

	return m.layout.panel("KPIs", kpis) + "\n\n" +
		m.layout.panel("Top Cost Classes", classes.String()) + "\n\n" +
		m.layout.panel("Equipment", rows.String())
}

func (m Model) viewReplacementPriorities() string {
	var rows strings.Builder
	header := fmt.Sprintf("%-5s %-14s %-14s %-10s %-22s %-8s", "Rank", "Asset Tag", "NPV Savings", "Age(mo)", "Action", "Budget")
	rows.WriteString(m.styles.Secondary.Render(header))
	rows.WriteString("\n")
	for i, p := range m.priorities {
		budget := "no"
		if p.WithinBudget {
			budget = "yes"
		}
		line := fmt.Sprintf("%-5d %-14s $%-13s %-10d %-22s %-8s",
			p.Rank, p.AssetTag, p.NPVSavings.String(), p.AgeMonths, p.RecommendedAction, budget)
		line = m.styles.statusStyle(string(p.RecommendedAction)).Render(line)
		if i == m.cursor {
			line = m.styles.Primary.Render("> ") + line
		} else {
			line = "  " + line
		}
		rows.WriteString(line)
		rows.WriteString("\n")
	}
	if len(m.priorities) == 0 {
		rows.WriteString(m.styles.Muted.Render("No replacement candidates."))
	}
	return m.layout.panel("Replacement Priorities", rows.String())
}

func (m Model) viewEquipmentDetail() string {
	if m.detailEq == nil || m.detailReport == nil {
		return m.layout.panel("Equipment Detail", m.styles.Muted.Render("Select an asset from Fleet Overview."))
	}
	eq := m.detailEq
	r := m.detailReport

	info := fmt.Sprintf(
		"Asset Tag: %s\nClass: %s\nManufacturer/Model: %s / %s\nFacility: %s (%s)\nAcquired: %s\nStatus: %s",
		eq.AssetTag, eq.Class, eq.Manufacturer, eq.Model, eq.FacilityID, eq.Department,
		eq.AcquisitionDate.String(), eq.Status,
	)

	tco := fmt.Sprintf(
		"Age: %.1f years\nAcquisition Cost: $%s\nCumulative Maintenance: $%s\nAnnualized TCO: $%s\nMaintenance/Acquisition Ratio: %.2f",
		r.AgeYears, eq.AcquisitionCost.String(), r.CumulativeMaintenance.String(),
		r.AnnualizedTCO.String(), r.MaintenanceToAcquisitionRatio,
	)

	return m.layout.panel("Asset Info", info) + "\n\n" + m.layout.panel("Total Cost of Ownership", tco)
}

func ratioOf(part, total models.Money) float64 {
	t := total.Float64()
	if t == 0 {
		return 0
	}
	return part.Float64() / t
}
