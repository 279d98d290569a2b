package application

import (
	"github.com/shopspring/decimal"

	"github.com/grse/dashboard/internal/domain"
)

// Enricher attaches derived fields to backend records. It is pure: output
// depends only on the input record and the provider.
type Enricher struct {
	provider InsightProvider
}

// NewEnricher creates an enricher; a nil provider selects StaticInsightProvider
func NewEnricher(provider InsightProvider) *Enricher {
	if provider == nil {
		provider = StaticInsightProvider{}
	}
	return &Enricher{provider: provider}
}

// Narrative returns the provider's page narrative
func (e *Enricher) Narrative(page domain.PageID) string {
	return e.provider.Narrative(page)
}

// EnrichProject derives manager, timeline, details and scenarios.
// The result always carries an original scenario.
func (e *Enricher) EnrichProject(raw domain.RawProject) domain.Project {
	insight := e.provider.DeriveProject(raw)

	whatIf := make(domain.WhatIfAnalysis, len(insight.WhatIf)+1)
	for id, v := range insight.WhatIf {
		whatIf[id] = v
	}
	if _, ok := whatIf[domain.ScenarioOriginal]; !ok {
		whatIf[domain.ScenarioOriginal] = staticProjectScenarios()[domain.ScenarioOriginal]
	}

	return domain.Project{
		RawProject: raw,
		Manager:    insight.Manager,
		Timeline:   insight.Timeline,
		Details:    insight.Details,
		WhatIf:     whatIf,
	}
}

// EnrichProjects enriches every project, preserving order
func (e *Enricher) EnrichProjects(raw []domain.RawProject) []domain.Project {
	out := make([]domain.Project, len(raw))
	for i, p := range raw {
		out[i] = e.EnrichProject(p)
	}
	return out
}

// EnrichFinancialQuarter attaches the expenditure category breakdown
func (e *Enricher) EnrichFinancialQuarter(raw domain.RawQuarter) domain.FinancialQuarter {
	insight := e.provider.DeriveQuarter(raw)

	details := make(map[string]decimal.Decimal, len(insight.Details))
	for k, v := range insight.Details {
		details[k] = v
	}
	return domain.FinancialQuarter{RawQuarter: raw, Details: details}
}

// EnrichFinancials enriches every quarter and copies the overall breakdown
func (e *Enricher) EnrichFinancials(raw *domain.RawFinancials) domain.Financials {
	if raw == nil {
		return domain.Financials{}
	}
	quarters := make([]domain.FinancialQuarter, len(raw.QuarterlyData))
	for i, q := range raw.QuarterlyData {
		quarters[i] = e.EnrichFinancialQuarter(q)
	}
	return domain.Financials{
		Quarters:             quarters,
		ExpenditureBreakdown: append([]domain.ExpenditureSlice(nil), raw.ExpenditureBreakdown...),
	}
}

// EnrichSupplier attaches the narrative and delay scenarios
func (e *Enricher) EnrichSupplier(raw domain.RawSupplier) domain.Supplier {
	insight := e.provider.DeriveSupplier(raw)

	whatIf := make(map[domain.ScenarioID]domain.SupplierScenario, len(insight.WhatIf))
	for id, v := range insight.WhatIf {
		whatIf[id] = v
	}
	return domain.Supplier{RawSupplier: raw, AIScenario: insight.Narrative, WhatIf: whatIf}
}

// EnrichSuppliers enriches every supplier, preserving order
func (e *Enricher) EnrichSuppliers(raw []domain.RawSupplier) []domain.Supplier {
	out := make([]domain.Supplier, len(raw))
	for i, s := range raw {
		out[i] = e.EnrichSupplier(s)
	}
	return out
}
