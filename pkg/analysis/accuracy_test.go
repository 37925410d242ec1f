package analysis

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knekvasil/gravitas/pkg/gravity/quadtree"
	"github.com/knekvasil/gravitas/pkg/gravity/scenario"
)

// testScenario is a scaled-unit cloud (G=1) so forces are large enough for
// drift comparisons to be meaningful over a short run.
func testScenario() *scenario.Config {
	return &scenario.Config{
		Name:      "test-cloud",
		Theta:     0.5,
		TimeStep:  1e-4,
		Steps:     10,
		G:         1.0,
		Boundary:  quadtree.Square(1000),
		BodyCount: 100,
		Seed:      42,
	}
}

func TestCompareAccuracy(t *testing.T) {
	mgr := NewManager()
	cfg := testScenario()

	report, err := mgr.CompareAccuracy(cfg, []float64{0.0, 0.5, 1.0})
	require.NoError(t, err)

	require.Len(t, report.Thetas, 3)
	assert.Equal(t, cfg.Name, report.Scenario)
	assert.Equal(t, 100, report.Bodies)

	// Theta zero degenerates to the exact sum; only summation-order noise
	// remains.
	exact := report.Thetas[0]
	assert.Less(t, exact.MeanForceError, 1e-8)
	assert.Less(t, exact.MomentumDrift, 1e-9)

	// Approximate runs stay bounded: the spec-level expectation is small
	// error relative to the body count, not exactness.
	for _, acc := range report.Thetas[1:] {
		assert.Greater(t, acc.MeanForceError, 0.0)
		assert.Less(t, acc.MeanForceError, 0.5)
		assert.Less(t, acc.MomentumDrift, 0.1)
		assert.GreaterOrEqual(t, acc.MaxForceError, acc.MeanForceError)
	}
}

func TestCompareAccuracyRejectsEmptyThetas(t *testing.T) {
	mgr := NewManager()
	_, err := mgr.CompareAccuracy(testScenario(), nil)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	mgr := NewManager()
	cfg := testScenario()
	cfg.BodyCount = 20
	cfg.Steps = 3

	report, err := mgr.CompareAccuracy(cfg, []float64{0.5, 1.0})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, mgr.WriteCSV(report, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3, "header plus one row per theta")
	assert.Equal(t, "theta", records[0][0])
	assert.Equal(t, "0.5", records[1][0])
	assert.Equal(t, "1", records[2][0])
}
