package application

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/grse/dashboard/internal/domain"
)

// SelectScenario returns the project's variant for id
func SelectScenario(project *domain.Project, id domain.ScenarioID) (domain.ScenarioVariant, error) {
	v, ok := project.WhatIf[id]
	if !ok {
		return domain.ScenarioVariant{}, &domain.UnknownScenarioError{ProjectID: project.ProjectID, Scenario: id}
	}
	return v, nil
}

// Comparison is a selected scenario set against the original baseline
type Comparison struct {
	ProjectID   domain.ProjectID       `json:"project_id"`
	ProjectName string                 `json:"project_name"`
	Scenario    domain.ScenarioID      `json:"scenario"`
	Baseline    domain.ScenarioVariant `json:"baseline"`
	Selected    domain.ScenarioVariant `json:"selected"`
	CostDelta   decimal.Decimal        `json:"cost_delta"`
	RiskDelta   int                    `json:"risk_delta"`
	RiskBand    domain.RiskBand        `json:"risk_band"`
	// TimelineShiftDays is nil when either date does not parse.
	TimelineShiftDays *int `json:"timeline_shift_days,omitempty"`
}

// CompareToBaseline pairs the selected scenario with the original, whichever is selected
func CompareToBaseline(project *domain.Project, id domain.ScenarioID) (*Comparison, error) {
	baseline, err := SelectScenario(project, domain.ScenarioOriginal)
	if err != nil {
		return nil, err
	}
	selected, err := SelectScenario(project, id)
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{
		ProjectID:   project.ProjectID,
		ProjectName: project.ProjectName,
		Scenario:    id,
		Baseline:    baseline,
		Selected:    selected,
		CostDelta:   selected.Cost.Sub(baseline.Cost),
		RiskDelta:   selected.Risk - baseline.Risk,
		RiskBand:    domain.BandForRisk(selected.Risk),
	}

	from, errFrom := baseline.CompletionDate()
	to, errTo := selected.CompletionDate()
	if errFrom == nil && errTo == nil {
		days := int(to.Sub(from).Hours() / 24)
		cmp.TimelineShiftDays = &days
	}

	return cmp, nil
}

// ActiveProject resolves the selection against the current project list.
// An unset or vanished project falls back to the first project; ok is false
// when there are no projects at all.
func ActiveProject(sel domain.WhatIfSelection, projects []domain.Project) (domain.Project, domain.WhatIfSelection, bool) {
	if len(projects) == 0 {
		return domain.Project{}, domain.WhatIfSelection{Scenario: domain.ScenarioOriginal}, false
	}
	if sel.ProjectID != "" {
		for _, p := range projects {
			if p.ProjectID == sel.ProjectID {
				if sel.Scenario == "" {
					sel.Scenario = domain.ScenarioOriginal
				}
				return p, sel, true
			}
		}
	}
	// A scenario chosen against another project's variant set is never carried over.
	first := projects[0]
	return first, domain.WhatIfSelection{ProjectID: first.ProjectID, Scenario: domain.ScenarioOriginal}, true
}

// SwitchProject makes id the active project and resets the scenario to original
func SwitchProject(projects []domain.Project, id domain.ProjectID) (domain.WhatIfSelection, error) {
	for _, p := range projects {
		if p.ProjectID == id {
			return domain.WhatIfSelection{ProjectID: id, Scenario: domain.ScenarioOriginal}, nil
		}
	}
	return domain.WhatIfSelection{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

// SwitchScenario selects a scenario on the active project
func SwitchScenario(sel domain.WhatIfSelection, projects []domain.Project, id domain.ScenarioID) (domain.WhatIfSelection, error) {
	project, resolved, ok := ActiveProject(sel, projects)
	if !ok {
		return sel, ErrProjectNotFound
	}
	if _, err := SelectScenario(&project, id); err != nil {
		return sel, err
	}
	resolved.Scenario = id
	return resolved, nil
}
