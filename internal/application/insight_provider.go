package application

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/grse/dashboard/internal/domain"
)

// ProjectInsight is the derived part of a project
type ProjectInsight struct {
	Manager  string
	Timeline string
	Details  string
	WhatIf   domain.WhatIfAnalysis
}

// QuarterInsight is the category breakdown of a quarter's expenditure
type QuarterInsight struct {
	Details map[string]decimal.Decimal
}

// SupplierInsight is the narrative and delay scenarios for a supplier
type SupplierInsight struct {
	Narrative string
	WhatIf    map[domain.ScenarioID]domain.SupplierScenario
}

// InsightProvider derives display-only fields for backend records.
// Implementations must be deterministic for a given input.
type InsightProvider interface {
	DeriveProject(raw domain.RawProject) ProjectInsight
	DeriveQuarter(raw domain.RawQuarter) QuarterInsight
	DeriveSupplier(raw domain.RawSupplier) SupplierInsight
	// Narrative is the page-level AI scenario text, empty when a page has none.
	Narrative(page domain.PageID) string
}

// StaticInsightProvider serves fixed templates. Values do not depend on the
// record's magnitudes; only the project templates interpolate id and name.
type StaticInsightProvider struct{}

var _ InsightProvider = StaticInsightProvider{}

func crore(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func staticProjectScenarios() domain.WhatIfAnalysis {
	return domain.WhatIfAnalysis{
		domain.ScenarioOriginal:  {Name: "Original", Date: "2025-12-31", Cost: crore("5.5"), Risk: 8},
		domain.ScenarioScenario1: {Name: "Add 1 more engineer", Date: "2026-02-15", Cost: crore("5.6"), Risk: 7},
		domain.ScenarioScenario2: {Name: "Increase budget by 5%", Date: "2025-11-20", Cost: crore("5.75"), Risk: 5},
	}
}

// DeriveProject implements InsightProvider
func (StaticInsightProvider) DeriveProject(raw domain.RawProject) ProjectInsight {
	return ProjectInsight{
		Manager:  fmt.Sprintf("Manager %s", raw.ProjectID),
		Timeline: fmt.Sprintf("Timeline for %s", raw.ProjectName),
		Details:  fmt.Sprintf("Details for %s. This is a long detailed description about the project's progress and risks.", raw.ProjectName),
		WhatIf:   staticProjectScenarios(),
	}
}

// DeriveQuarter implements InsightProvider
func (StaticInsightProvider) DeriveQuarter(domain.RawQuarter) QuarterInsight {
	return QuarterInsight{
		Details: map[string]decimal.Decimal{
			"labor":     crore("3.8"),
			"materials": crore("3.2"),
			"overhead":  crore("0.95"),
		},
	}
}

const supplierNarrative = "AI has detected a 70% probability of a 30-day delay for deliveries from a key supplier in the next quarter due to geopolitical tensions."

// DeriveSupplier implements InsightProvider
func (StaticInsightProvider) DeriveSupplier(domain.RawSupplier) SupplierInsight {
	return SupplierInsight{
		Narrative: supplierNarrative,
		WhatIf: map[domain.ScenarioID]domain.SupplierScenario{
			domain.ScenarioOriginal:  {Delay: 0, Impact: domain.SupplierRiskLow},
			domain.ScenarioScenario1: {Name: "30-day delay", Delay: 30, Impact: domain.SupplierRiskHigh},
			domain.ScenarioScenario2: {Name: "10-day delay", Delay: 10, Impact: domain.SupplierRiskMedium},
		},
	}
}

// Narrative implements InsightProvider
func (StaticInsightProvider) Narrative(page domain.PageID) string {
	switch page {
	case domain.PageProjects:
		return "Project Frigate Modernization is at high risk. AI projects that a 5% budget increase could bring the project back on track with a high degree of confidence."
	case domain.PageFinancials:
		return "AI predicts a potential 10% increase in raw material costs in Q1 2025 due to global market volatility. Proactive measures are recommended to secure a buffer stock."
	case domain.PageSupplyChain:
		return supplierNarrative + " This could impact the 'Frigate Modernization' project."
	default:
		return ""
	}
}
