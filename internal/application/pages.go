package application

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/grse/dashboard/internal/domain"
)

const (
	accessDeniedMessage  = "Access Denied. You do not have permission to view this page."
	backendDownMessage   = "Failed to connect to the backend."
	comparisonSubheading = "Comparing the selected scenario against the original plan."
)

// NavItem is an entry of the navigation menu
type NavItem struct {
	Page   domain.PageID `json:"page"`
	Title  string        `json:"title"`
	Active bool          `json:"active"`
}

// RenderedPage is the view model for one page. Exactly one of the page
// fields is set unless AccessDenied is true.
type RenderedPage struct {
	Page         domain.PageID    `json:"page"`
	Title        string           `json:"title"`
	AccessDenied bool             `json:"access_denied,omitempty"`
	Message      string           `json:"message,omitempty"`
	Home         *HomeView        `json:"home,omitempty"`
	Projects     *ProjectsView    `json:"projects,omitempty"`
	Financials   *FinancialsView  `json:"financials,omitempty"`
	SupplyChain  *SupplyChainView `json:"supply_chain,omitempty"`
	WhatIf       *WhatIfView      `json:"what_if,omitempty"`
	Admin        *AdminView       `json:"admin,omitempty"`
}

// Overview counts what the login preload fetched. A count is nil when the
// user cannot see the section; Loading names permitted sections that failed.
type Overview struct {
	Health    SystemHealth `json:"health"`
	Projects  *int         `json:"projects,omitempty"`
	Quarters  *int         `json:"quarters,omitempty"`
	Suppliers *int         `json:"suppliers,omitempty"`
	Loading   []string     `json:"loading,omitempty"`
}

// LandingView is what a fresh session opens on
type LandingView struct {
	Page     *RenderedPage `json:"page,omitempty"`
	Overview Overview      `json:"overview"`
}

func overviewOf(sections Section, snap *Snapshot) Overview {
	out := Overview{Health: SystemHealth{Message: backendDownMessage}}
	if snap.StatusLoaded {
		out.Health = SystemHealth{Message: snap.Status, Connected: true}
	}

	count := func(section Section, name string, loaded bool, n int) *int {
		if sections&section == 0 {
			return nil
		}
		if !loaded {
			out.Loading = append(out.Loading, name)
			return nil
		}
		return &n
	}
	out.Projects = count(SectionProjects, "projects", snap.ProjectsLoaded, len(snap.Projects))
	out.Quarters = count(SectionFinancials, "financials", snap.FinancialsLoaded, len(snap.Financials.Quarters))
	out.Suppliers = count(SectionSuppliers, "suppliers", snap.SuppliersLoaded, len(snap.Suppliers))
	return out
}

// KPIStatus styles a KPI card
type KPIStatus string

const (
	KPIIncrease KPIStatus = "increase"
	KPIWarning  KPIStatus = "warning"
	KPIInfo     KPIStatus = "info"
)

// KPICard is a headline metric
type KPICard struct {
	Title  string    `json:"title"`
	Value  string    `json:"value"`
	Change string    `json:"change,omitempty"`
	Status KPIStatus `json:"status,omitempty"`
}

// SystemHealth reports the backend status message
type SystemHealth struct {
	Message   string `json:"message"`
	Connected bool   `json:"connected"`
}

// HomeView is the leadership overview
type HomeView struct {
	Heading string       `json:"heading"`
	Cards   []KPICard    `json:"cards"`
	Health  SystemHealth `json:"health"`
}

func homeCards() []KPICard {
	return []KPICard{
		{Title: "Total Projects", Value: "120", Change: "+5%", Status: KPIIncrease},
		{Title: "Budget Utilization", Value: "78%", Change: "+2%", Status: KPIIncrease},
		{Title: "Projects at Risk", Value: "15", Change: "Up 3", Status: KPIWarning},
		{Title: "AI Insights", Value: "23", Change: "New", Status: KPIInfo},
	}
}

// StatusCount is one bar of the status distribution
type StatusCount struct {
	Status domain.ProjectStatus `json:"name"`
	Count  int                  `json:"value"`
}

// ProjectsView is the project management dashboard
type ProjectsView struct {
	Loading      bool             `json:"loading"`
	Narrative    string           `json:"narrative,omitempty"`
	Distribution []StatusCount    `json:"distribution,omitempty"`
	Projects     []domain.Project `json:"projects,omitempty"`
}

// statusDistribution counts projects per status, in display order, omitting empty statuses
func statusDistribution(projects []domain.Project) []StatusCount {
	counts := make(map[domain.ProjectStatus]int, 3)
	var extra []domain.ProjectStatus
	for _, p := range projects {
		if _, seen := counts[p.Status]; !seen && !knownStatus(p.Status) {
			extra = append(extra, p.Status)
		}
		counts[p.Status]++
	}

	out := make([]StatusCount, 0, len(counts))
	for _, s := range append(domain.ProjectStatuses(), extra...) {
		if n := counts[s]; n > 0 {
			out = append(out, StatusCount{Status: s, Count: n})
		}
	}
	return out
}

func knownStatus(s domain.ProjectStatus) bool {
	for _, k := range domain.ProjectStatuses() {
		if k == s {
			return true
		}
	}
	return false
}

// QuarterRow is a line of the quarterly report table
type QuarterRow struct {
	Name        string          `json:"name"`
	Revenue     decimal.Decimal `json:"revenue"`
	Expenditure decimal.Decimal `json:"expenditure"`
	Variance    decimal.Decimal `json:"variance"`
	Surplus     bool            `json:"surplus"`
}

// FinancialsView is the financial performance page
type FinancialsView struct {
	Loading              bool                      `json:"loading"`
	Narrative            string                    `json:"narrative,omitempty"`
	Trend                []domain.RawQuarter       `json:"trend,omitempty"`
	ExpenditureBreakdown []domain.ExpenditureSlice `json:"expenditure_breakdown,omitempty"`
	Quarters             []QuarterRow              `json:"quarters,omitempty"`
}

func quarterRows(quarters []domain.FinancialQuarter) []QuarterRow {
	rows := make([]QuarterRow, len(quarters))
	for i, q := range quarters {
		rows[i] = QuarterRow{
			Name:        q.Name,
			Revenue:     q.Revenue,
			Expenditure: q.Expenditure,
			Variance:    q.Variance(),
			Surplus:     q.Surplus(),
		}
	}
	return rows
}

// QuarterDetailView is the drill-down of one quarter
type QuarterDetailView struct {
	Name             string                    `json:"name"`
	Revenue          decimal.Decimal           `json:"revenue"`
	Expenditure      decimal.Decimal           `json:"expenditure"`
	Breakdown        []domain.ExpenditureSlice `json:"breakdown"`
	TotalExpenditure decimal.Decimal           `json:"total_expenditure"`
}

// SupplyChainView is the supply chain health page
type SupplyChainView struct {
	Loading   bool              `json:"loading"`
	Narrative string            `json:"narrative,omitempty"`
	Suppliers []domain.Supplier `json:"suppliers,omitempty"`
}

// ProjectOption is a choice in the project selector
type ProjectOption struct {
	ID       domain.ProjectID `json:"id"`
	Name     string           `json:"name"`
	Selected bool             `json:"selected"`
}

// ScenarioOption is a choice in the scenario selector
type ScenarioOption struct {
	ID       domain.ScenarioID `json:"id"`
	Label    string            `json:"label"`
	Selected bool              `json:"selected"`
}

var scenarioLabels = map[domain.ScenarioID]string{
	domain.ScenarioOriginal:  "Current Status (Original)",
	domain.ScenarioScenario1: "Scenario 1: Add 1 Engineer",
	domain.ScenarioScenario2: "Scenario 2: Increase Budget by 5%",
}

// WhatIfView is the simulation page
type WhatIfView struct {
	Loading    bool             `json:"loading"`
	Projects   []ProjectOption  `json:"projects,omitempty"`
	Scenarios  []ScenarioOption `json:"scenarios,omitempty"`
	Subheading string           `json:"subheading,omitempty"`
	Cards      []KPICard        `json:"cards,omitempty"`
	Comparison *Comparison      `json:"comparison,omitempty"`
}

func whatIfCards(v domain.ScenarioVariant) []KPICard {
	return []KPICard{
		{Title: "Predicted Completion", Value: v.Date},
		{Title: "Projected Final Cost", Value: "₹" + v.Cost.String() + " Cr"},
		{Title: "Predicted Risk Score", Value: strconv.Itoa(v.Risk) + "/10", Status: KPIWarning},
	}
}

// AdminView is the user management panel
type AdminView struct {
	Loading bool          `json:"loading"`
	Users   []domain.User `json:"users,omitempty"`
}
