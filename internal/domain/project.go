package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProjectStatus is the delivery state reported by the backend
type ProjectStatus string

const (
	ProjectStatusOnTrack ProjectStatus = "On Track"
	ProjectStatusAtRisk  ProjectStatus = "At Risk"
	ProjectStatusDelayed ProjectStatus = "Delayed"
)

// ProjectStatuses lists statuses in display order
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectStatusOnTrack, ProjectStatusAtRisk, ProjectStatusDelayed}
}

// ProjectID accepts both string and numeric identifiers on the wire.
type ProjectID string

// UnmarshalJSON decodes a string or number id
func (id *ProjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProjectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("project id: %w", err)
	}
	*id = ProjectID(n.String())
	return nil
}

// RawProject is a project row as served by /api/projects. Budgets are in crore.
type RawProject struct {
	ProjectID   ProjectID       `json:"project_id"`
	ProjectName string          `json:"project_name"`
	Status      ProjectStatus   `json:"status"`
	TotalBudget decimal.Decimal `json:"total_budget"`
	BudgetSpent decimal.Decimal `json:"budget_spent"`
	RiskScore   int             `json:"risk_score"`
}

// ScenarioID names a what-if variant
type ScenarioID string

const (
	ScenarioOriginal  ScenarioID = "original"
	ScenarioScenario1 ScenarioID = "scenario1"
	ScenarioScenario2 ScenarioID = "scenario2"
)

// ScenarioIDs returns the fixed selector options in display order
func ScenarioIDs() []ScenarioID {
	return []ScenarioID{ScenarioOriginal, ScenarioScenario1, ScenarioScenario2}
}

// ScenarioDateLayout is the wire layout of ScenarioVariant.Date
const ScenarioDateLayout = "2006-01-02"

// ScenarioVariant is a full alternate projection of a project's forecast
type ScenarioVariant struct {
	Name string          `json:"name"`
	Date string          `json:"date"`
	Cost decimal.Decimal `json:"cost"`
	Risk int             `json:"risk"`
}

// CompletionDate parses Date
func (v ScenarioVariant) CompletionDate() (time.Time, error) {
	return time.Parse(ScenarioDateLayout, v.Date)
}

// WhatIfAnalysis maps scenario ids to variants. It always holds ScenarioOriginal
// once a project is enriched.
type WhatIfAnalysis map[ScenarioID]ScenarioVariant

// Project is a RawProject with its enrichment attached. Immutable after enrichment.
type Project struct {
	RawProject
	Manager  string         `json:"manager"`
	Timeline string         `json:"timeline"`
	Details  string         `json:"details"`
	WhatIf   WhatIfAnalysis `json:"what_if_analysis"`
}

// Baseline returns the original variant
func (p *Project) Baseline() (ScenarioVariant, bool) {
	v, ok := p.WhatIf[ScenarioOriginal]
	return v, ok
}

// RiskBand buckets a 0-10 risk score: up to 4 is Low, up to 7 Medium, else High.
type RiskBand string

const (
	RiskBandLow    RiskBand = "Low"
	RiskBandMedium RiskBand = "Medium"
	RiskBandHigh   RiskBand = "High"
)

// BandForRisk returns the band for a risk score
func BandForRisk(risk int) RiskBand {
	switch {
	case risk <= 4:
		return RiskBandLow
	case risk <= 7:
		return RiskBandMedium
	default:
		return RiskBandHigh
	}
}
