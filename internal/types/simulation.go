package types

import (
	"encoding/json"
	"time"
)

// RunSummary represents the outcome of one simulation run
type RunSummary struct {
	Scenario      string        `json:"scenario"`
	Bodies        int           `json:"bodies"`
	Steps         int           `json:"steps"`
	TimeStep      float64       `json:"time_step"`
	Theta         float64       `json:"theta"`
	SimulatedTime float64       `json:"simulated_time"`
	Duration      time.Duration `json:"duration"`

	InitialEnergy   float64 `json:"initial_energy"`
	FinalEnergy     float64 `json:"final_energy"`
	InitialMomentum float64 `json:"initial_momentum"`
	FinalMomentum   float64 `json:"final_momentum"`
}

// AccuracyReport represents a Barnes-Hut accuracy sweep across theta values,
// measured against the exact O(n²) pairwise sum
type AccuracyReport struct {
	Scenario  string          `json:"scenario"`
	Bodies    int             `json:"bodies"`
	Steps     int             `json:"steps"`
	TimeStep  float64         `json:"time_step"`
	Thetas    []ThetaAccuracy `json:"thetas"`
	Timestamp time.Time       `json:"timestamp"`
	Duration  time.Duration   `json:"duration"`
}

// ThetaAccuracy holds the error statistics for one theta value
type ThetaAccuracy struct {
	Theta float64 `json:"theta"`

	// Per-step RMS relative force error against the direct sum.
	MeanForceError float64 `json:"mean_force_error"`
	StdForceError  float64 `json:"std_force_error"`
	MaxForceError  float64 `json:"max_force_error"`

	// Drift of conserved quantities over the run, relative to the
	// reference (direct-sum) trajectory.
	MomentumDrift float64 `json:"momentum_drift"`
	EnergyDrift   float64 `json:"energy_drift"`
}

// ToJSON serializes the report with indentation for display
func (r *AccuracyReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ToJSON serializes the summary with indentation for display
func (s *RunSummary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
