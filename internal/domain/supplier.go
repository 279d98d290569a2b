package domain

// SupplierRisk is the supplier risk level
type SupplierRisk string

const (
	SupplierRiskLow    SupplierRisk = "Low"
	SupplierRiskMedium SupplierRisk = "Medium"
	SupplierRiskHigh   SupplierRisk = "High"
)

// RawSupplier is a row of /api/suppliers. Deliveries and Quality are percentages.
type RawSupplier struct {
	Name       string       `json:"name"`
	Deliveries float64      `json:"deliveries"`
	Quality    float64      `json:"quality"`
	Risk       SupplierRisk `json:"risk"`
}

// SupplierScenario projects a delivery delay and its impact
type SupplierScenario struct {
	Name   string       `json:"name,omitempty"`
	Delay  int          `json:"delay"`
	Impact SupplierRisk `json:"impact"`
}

// Supplier is a RawSupplier with narrative and scenarios attached
type Supplier struct {
	RawSupplier
	AIScenario string                          `json:"ai_scenario"`
	WhatIf     map[ScenarioID]SupplierScenario `json:"what_if_analysis"`
}
