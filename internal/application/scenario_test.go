package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grse/dashboard/internal/application"
	"github.com/grse/dashboard/internal/domain"
	"github.com/grse/dashboard/internal/infrastructure/backend/backendtest"
)

func seededProjects() []domain.Project {
	return application.NewEnricher(nil).EnrichProjects(backendtest.SeedProjects())
}

func TestSelectOriginalIsBaseline(t *testing.T) {
	for _, p := range seededProjects() {
		baseline, ok := p.Baseline()
		require.True(t, ok)

		selected, err := application.SelectScenario(&p, domain.ScenarioOriginal)
		require.NoError(t, err)
		assert.Equal(t, baseline, selected)
	}
}

func TestSelectUnknownScenario(t *testing.T) {
	p := seededProjects()[0]

	_, err := application.SelectScenario(&p, "scenario9")
	var unknown *domain.UnknownScenarioError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, domain.ScenarioID("scenario9"), unknown.Scenario)
	assert.Equal(t, domain.ProjectID("P001"), unknown.ProjectID)
}

func TestCompareToBaseline(t *testing.T) {
	p := seededProjects()[0]

	tests := []struct {
		name     string
		scenario domain.ScenarioID
		cost     string
		risk     int
		days     int
		band     domain.RiskBand
	}{
		{"original", domain.ScenarioOriginal, "0", 0, 0, domain.RiskBandHigh},
		{"add engineer", domain.ScenarioScenario1, "0.1", -1, 46, domain.RiskBandMedium},
		{"budget increase", domain.ScenarioScenario2, "0.25", -3, -41, domain.RiskBandMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp, err := application.CompareToBaseline(&p, tt.scenario)
			require.NoError(t, err)

			assert.Equal(t, p.WhatIf[domain.ScenarioOriginal], cmp.Baseline)
			assert.Equal(t, p.WhatIf[tt.scenario], cmp.Selected)
			assert.Equal(t, tt.cost, cmp.CostDelta.String())
			assert.Equal(t, tt.risk, cmp.RiskDelta)
			assert.Equal(t, tt.band, cmp.RiskBand)
			require.NotNil(t, cmp.TimelineShiftDays)
			assert.Equal(t, tt.days, *cmp.TimelineShiftDays)
		})
	}
}

func TestCompareToBaselineUnparsableDate(t *testing.T) {
	p := domain.Project{
		RawProject: domain.RawProject{ProjectID: "P9"},
		WhatIf: domain.WhatIfAnalysis{
			domain.ScenarioOriginal:  {Date: "2025-12-31", Risk: 3},
			domain.ScenarioScenario1: {Date: "soon", Risk: 9},
		},
	}

	cmp, err := application.CompareToBaseline(&p, domain.ScenarioScenario1)
	require.NoError(t, err)
	assert.Nil(t, cmp.TimelineShiftDays)
	assert.Equal(t, domain.RiskBandHigh, cmp.RiskBand)
}

func TestSwitchProjectResetsScenario(t *testing.T) {
	projects := seededProjects()

	next, err := application.SwitchProject(projects, "P002")
	require.NoError(t, err)
	assert.Equal(t, domain.WhatIfSelection{ProjectID: "P002", Scenario: domain.ScenarioOriginal}, next)

	_, err = application.SwitchProject(projects, "P404")
	assert.ErrorIs(t, err, application.ErrProjectNotFound)
}

func TestActiveProjectFallsBackToFirst(t *testing.T) {
	projects := seededProjects()

	p, sel, ok := application.ActiveProject(domain.WhatIfSelection{ProjectID: "gone", Scenario: domain.ScenarioScenario2}, projects)
	require.True(t, ok)
	assert.Equal(t, domain.ProjectID("P001"), p.ProjectID)
	assert.Equal(t, domain.ScenarioOriginal, sel.Scenario)

	p, sel, ok = application.ActiveProject(domain.WhatIfSelection{ProjectID: "P003", Scenario: domain.ScenarioScenario1}, projects)
	require.True(t, ok)
	assert.Equal(t, domain.ProjectID("P003"), p.ProjectID)
	assert.Equal(t, domain.ScenarioScenario1, sel.Scenario)

	_, _, ok = application.ActiveProject(domain.WhatIfSelection{}, nil)
	assert.False(t, ok)
}

func TestSwitchScenario(t *testing.T) {
	projects := seededProjects()

	sel, err := application.SwitchScenario(domain.WhatIfSelection{Scenario: domain.ScenarioOriginal}, projects, domain.ScenarioScenario2)
	require.NoError(t, err)
	assert.Equal(t, domain.WhatIfSelection{ProjectID: "P001", Scenario: domain.ScenarioScenario2}, sel)

	_, err = application.SwitchScenario(sel, projects, "bogus")
	var unknown *domain.UnknownScenarioError
	assert.ErrorAs(t, err, &unknown)
}
