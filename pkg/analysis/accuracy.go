package analysis

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/knekvasil/gravitas/internal/types"
	"github.com/knekvasil/gravitas/pkg/gravity/nbody"
	"github.com/knekvasil/gravitas/pkg/gravity/scenario"
)

// Manager handles accuracy analysis of the Barnes-Hut approximation
type Manager struct{}

// NewManager creates a new analysis manager
func NewManager() *Manager {
	return &Manager{}
}

// CompareAccuracy runs the scenario once per theta value and measures each
// run against the exact O(n²) direct sum: per-step RMS relative force error,
// plus momentum and energy drift of the final state relative to the
// reference trajectory (theta = 0, which degenerates to the exact sum).
func (m *Manager) CompareAccuracy(cfg *scenario.Config, thetas []float64) (*types.AccuracyReport, error) {
	if len(thetas) == 0 {
		return nil, fmt.Errorf("no theta values to analyze")
	}

	base, err := cfg.System()
	if err != nil {
		return nil, fmt.Errorf("build scenario system: %w", err)
	}

	log.Printf("Starting accuracy analysis: scenario %q, %d bodies, %d steps, %d theta values",
		cfg.Name, len(base.Bodies), cfg.Steps, len(thetas))
	start := time.Now()

	// Reference trajectory: exact forces throughout.
	ref := base.Copy()
	ref.Theta = 0
	for step := 0; step < cfg.Steps; step++ {
		if err := ref.Step(cfg.TimeStep); err != nil {
			return nil, fmt.Errorf("reference run: %w", err)
		}
	}
	refMomentum := ref.TotalMomentum()
	refEnergy := ref.TotalEnergy()
	momentumScale := characteristicMomentum(ref)

	report := &types.AccuracyReport{
		Scenario:  cfg.Name,
		Bodies:    len(base.Bodies),
		Steps:     cfg.Steps,
		TimeStep:  cfg.TimeStep,
		Thetas:    make([]types.ThetaAccuracy, 0, len(thetas)),
		Timestamp: time.Now(),
	}

	for _, theta := range thetas {
		sys := base.Copy()
		sys.Theta = theta

		stepErrors := make([]float64, 0, cfg.Steps)
		for step := 0; step < cfg.Steps; step++ {
			rms, err := stepForceError(sys)
			if err != nil {
				return nil, fmt.Errorf("theta %g step %d: %w", theta, step+1, err)
			}
			stepErrors = append(stepErrors, rms)
			if err := sys.Step(cfg.TimeStep); err != nil {
				return nil, fmt.Errorf("theta %g step %d: %w", theta, step+1, err)
			}
		}

		energyDrift := 0.0
		if refEnergy != 0 {
			energyDrift = math.Abs(sys.TotalEnergy()-refEnergy) / math.Abs(refEnergy)
		}
		momentumDrift := 0.0
		if momentumScale > 0 {
			momentumDrift = sys.TotalMomentum().Sub(refMomentum).Magnitude() / momentumScale
		}

		acc := types.ThetaAccuracy{
			Theta:          theta,
			MeanForceError: stat.Mean(stepErrors, nil),
			StdForceError:  stat.StdDev(stepErrors, nil),
			MaxForceError:  floats.Max(stepErrors),
			MomentumDrift:  momentumDrift,
			EnergyDrift:    energyDrift,
		}
		report.Thetas = append(report.Thetas, acc)
		log.Printf("theta=%.3f: mean force error %.3e, momentum drift %.3e",
			theta, acc.MeanForceError, acc.MomentumDrift)
	}

	report.Duration = time.Since(start)
	log.Printf("Accuracy analysis completed in %v", report.Duration)
	return report, nil
}

// stepForceError compares the tree force against the direct sum for every
// body in the system's current state and returns the RMS relative error.
func stepForceError(sys *nbody.System) (float64, error) {
	tree, err := sys.BuildTree()
	if err != nil {
		return 0, err
	}

	var sumSq float64
	var counted int
	for i := range sys.Bodies {
		exact := sys.DirectForce(i)
		approx := tree.Force(sys.Bodies[i].Point(), sys.Theta)

		scale := exact.Magnitude()
		if scale == 0 {
			// An isolated (or perfectly balanced) body: only count it if the
			// approximation disagrees, to avoid 0/0.
			if !approx.IsZero() {
				sumSq += 1.0
				counted++
			}
			continue
		}
		rel := approx.Sub(exact).Magnitude() / scale
		sumSq += rel * rel
		counted++
	}
	if counted == 0 {
		return 0, nil
	}
	return math.Sqrt(sumSq / float64(counted)), nil
}

// characteristicMomentum returns the momentum scale of the system, the sum
// of per-body momentum magnitudes, used to express drift relatively.
func characteristicMomentum(sys *nbody.System) float64 {
	total := 0.0
	for _, b := range sys.Bodies {
		total += b.Mass * b.Velocity.Magnitude()
	}
	return total
}

// WriteCSV exports the report as a per-theta CSV table.
func (m *Manager) WriteCSV(report *types.AccuracyReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"theta", "mean_force_error", "std_force_error", "max_force_error", "momentum_drift", "energy_drift"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range report.Thetas {
		row := []string{
			formatFloat(t.Theta),
			formatFloat(t.MeanForceError),
			formatFloat(t.StdForceError),
			formatFloat(t.MaxForceError),
			formatFloat(t.MomentumDrift),
			formatFloat(t.EnergyDrift),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
