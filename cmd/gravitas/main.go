package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/knekvasil/gravitas/internal/types"
	"github.com/knekvasil/gravitas/pkg/analysis"
	"github.com/knekvasil/gravitas/pkg/gravity/nbody"
	"github.com/knekvasil/gravitas/pkg/gravity/quadtree"
	"github.com/knekvasil/gravitas/pkg/gravity/scenario"
	"github.com/knekvasil/gravitas/pkg/utils"
)

const (
	appName = "gravitas"
	version = "v1.0.0"
)

var (
	// Loaded configuration, populated by rootCmd's PersistentPreRunE.
	globalConfig *utils.Config

	// Simulation flag overrides
	flagSteps         int
	flagTimeStep      float64
	flagTheta         float64
	flagBodies        int
	flagSeed          uint64
	flagSnapshotEvery int
	flagOutput        string
	flagQuiet         bool

	// Scenario flags
	flagPreset      string
	flagScenarioOut string
	flagExtent      float64

	// Analysis flags
	flagThetas []float64
	flagCSV    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "2D gravitational N-body simulator using Barnes-Hut approximation",
	Long: `Gravitas simulates gravitational dynamics of point masses in two
dimensions. Instead of computing all pairwise forces (O(n²)), it partitions
space into a quadtree and approximates the influence of distant clusters by
their aggregate mass and center of mass, reducing the per-step cost to
O(n log n). The accuracy/performance trade-off is controlled by the
opening-angle threshold theta.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		cfg, err := utils.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg
		return nil
	},
}

// initCmd initializes the gravitas configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gravitas configuration",
	Long: `Initialize the gravitas configuration. This writes the default
configuration file and creates the data directories needed for snapshot
output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Initializing gravitas %s\n", version)
		if err := utils.SaveConfig(utils.DefaultConfig()); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
		path, err := utils.GetConfigPath()
		if err == nil {
			fmt.Printf("Edit %s to change simulation defaults\n", path)
		}
		return nil
	},
}

// simulateCmd runs a simulation from a scenario file or the configured
// defaults
var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario.yaml]",
	Short: "Run a gravitational simulation",
	Long: `Run a Barnes-Hut simulation. With a scenario file argument the
scenario defines bodies and parameters; without one, a random body cloud is
generated from the configured defaults. Flags override both.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveScenario(cmd, args)
		if err != nil {
			return err
		}

		sys, err := cfg.System()
		if err != nil {
			return fmt.Errorf("failed to build system: %w", err)
		}

		if flagQuiet {
			log.SetOutput(io.Discard)
		}

		sink, closeSink, err := buildSink(cmd)
		if err != nil {
			return err
		}
		defer closeSink()

		summary := &types.RunSummary{
			Scenario:        cfg.Name,
			Bodies:          len(sys.Bodies),
			Steps:           cfg.Steps,
			TimeStep:        cfg.TimeStep,
			Theta:           cfg.Theta,
			InitialEnergy:   sys.TotalEnergy(),
			InitialMomentum: sys.TotalMomentum().Magnitude(),
		}

		log.Printf("Starting simulation %q with %d bodies...", cfg.Name, len(sys.Bodies))
		start := time.Now()

		snapEvery := globalConfig.Output.SnapshotEvery
		if cmd.Flags().Changed("snapshot-every") {
			snapEvery = flagSnapshotEvery
		}
		if err := sys.Run(cfg.Steps, cfg.TimeStep, snapEvery, sink); err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}

		summary.Duration = time.Since(start)
		summary.SimulatedTime = sys.Time
		summary.FinalEnergy = sys.TotalEnergy()
		summary.FinalMomentum = sys.TotalMomentum().Magnitude()

		out, err := summary.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

// scenarioCmd groups scenario management subcommands
var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage simulation scenarios",
}

// scenarioListCmd lists the built-in presets
var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in scenario presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range scenario.Presets() {
			cfg, err := scenario.Preset(name)
			if err != nil {
				return err
			}
			bodies := len(cfg.Bodies)
			if bodies == 0 {
				bodies = cfg.BodyCount
			}
			fmt.Printf("%-14s %d bodies, theta=%.2f, dt=%g, %d steps\n",
				name, bodies, cfg.Theta, cfg.TimeStep, cfg.Steps)
		}
		return nil
	},
}

// scenarioGenerateCmd writes a scenario YAML file
var scenarioGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a scenario file",
	Long: `Generate a scenario YAML file, either from a named preset or as a
random body cloud built from the --bodies/--seed/--extent flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *scenario.Config
		if flagPreset != "" {
			preset, err := scenario.Preset(flagPreset)
			if err != nil {
				return err
			}
			cfg = preset
		} else {
			cfg = &scenario.Config{
				Name:      "random",
				Theta:     globalConfig.Simulation.Theta,
				TimeStep:  globalConfig.Simulation.TimeStep,
				Steps:     globalConfig.Simulation.Steps,
				Boundary:  quadtree.Square(flagExtent),
				BodyCount: flagBodies,
				Seed:      flagSeed,
			}
		}

		out := flagScenarioOut
		if out == "" {
			out = cfg.Name + ".yaml"
		}
		if err := cfg.Save(out); err != nil {
			return err
		}
		fmt.Printf("Scenario written to %s\n", out)
		return nil
	},
}

// analyzeCmd groups analysis subcommands
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze Barnes-Hut approximation behavior",
}

// analyzeAccuracyCmd sweeps theta values against the exact pairwise sum
var analyzeAccuracyCmd = &cobra.Command{
	Use:   "accuracy [scenario.yaml]",
	Short: "Measure approximation error across theta values",
	Long: `Run the scenario once per theta value and compare forces, momentum
and energy against an exact O(n²) reference run. Results are printed as JSON
and optionally exported as CSV.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveScenario(cmd, args)
		if err != nil {
			return err
		}

		thetas := globalConfig.Analysis.Thetas
		if cmd.Flags().Changed("thetas") {
			thetas = flagThetas
		}

		mgr := analysis.NewManager()
		report, err := mgr.CompareAccuracy(cfg, thetas)
		if err != nil {
			return fmt.Errorf("accuracy analysis failed: %w", err)
		}

		if flagCSV != "" {
			if err := mgr.WriteCSV(report, flagCSV); err != nil {
				return err
			}
			fmt.Printf("Report written to %s\n", flagCSV)
		}

		out, err := report.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

// resolveScenario builds the effective scenario from the optional file
// argument, the configured defaults and any flag overrides.
func resolveScenario(cmd *cobra.Command, args []string) (*scenario.Config, error) {
	var cfg *scenario.Config
	if len(args) == 1 {
		loaded, err := scenario.Load(args[0])
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		sim := globalConfig.Simulation
		cfg = &scenario.Config{
			Name:      "random",
			Theta:     sim.Theta,
			TimeStep:  sim.TimeStep,
			Steps:     sim.Steps,
			Boundary:  quadtree.Square(sim.Extent),
			BodyCount: sim.BodyCount,
			Seed:      sim.Seed,
		}
	}

	if cmd.Flags().Changed("steps") {
		cfg.Steps = flagSteps
	}
	if cmd.Flags().Changed("dt") {
		cfg.TimeStep = flagTimeStep
	}
	if cmd.Flags().Changed("theta") {
		cfg.Theta = flagTheta
	}
	if cmd.Flags().Changed("bodies") {
		cfg.BodyCount = flagBodies
		cfg.Bodies = nil
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = flagSeed
	}
	return cfg, nil
}

// buildSink assembles the snapshot sink stack for the simulate command.
func buildSink(cmd *cobra.Command) (nbody.SnapshotSink, func(), error) {
	var sinks nbody.MultiSink

	if !flagQuiet {
		sinks = append(sinks, nbody.NewConsoleSummaryWriter(os.Stdout))
	}

	if flagOutput != "" {
		path := flagOutput
		if !filepath.IsAbs(path) && globalConfig.Output.DataDir != "" && filepath.Dir(path) == "." {
			path = filepath.Join(globalConfig.Output.DataDir, path)
		}
		jw, err := nbody.NewJSONLSnapshotWriter(path)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, jw)
	}

	if len(sinks) == 0 {
		return nil, func() {}, nil
	}
	return sinks, func() { _ = sinks.Close() }, nil
}

func init() {
	simulateCmd.Flags().IntVar(&flagSteps, "steps", 10, "number of simulation steps")
	simulateCmd.Flags().Float64Var(&flagTimeStep, "dt", 1.0, "timestep in seconds")
	simulateCmd.Flags().Float64Var(&flagTheta, "theta", 0.5, "Barnes-Hut opening-angle threshold")
	simulateCmd.Flags().IntVar(&flagBodies, "bodies", 100, "number of random bodies (ignored with explicit scenario bodies)")
	simulateCmd.Flags().Uint64Var(&flagSeed, "seed", 42, "random seed for body generation")
	simulateCmd.Flags().IntVar(&flagSnapshotEvery, "snapshot-every", 1, "emit a snapshot every N steps")
	simulateCmd.Flags().StringVar(&flagOutput, "output", "", "JSONL snapshot output path")
	simulateCmd.Flags().BoolVar(&flagQuiet, "quiet", false, "suppress per-step output")

	scenarioGenerateCmd.Flags().StringVar(&flagPreset, "preset", "", "built-in preset to start from")
	scenarioGenerateCmd.Flags().IntVar(&flagBodies, "bodies", 100, "number of random bodies")
	scenarioGenerateCmd.Flags().Uint64Var(&flagSeed, "seed", 42, "random seed")
	scenarioGenerateCmd.Flags().Float64Var(&flagExtent, "extent", 1e6, "half-width of the square boundary")
	scenarioGenerateCmd.Flags().StringVar(&flagScenarioOut, "output", "", "output file (default <name>.yaml)")
	scenarioCmd.AddCommand(scenarioGenerateCmd)
	scenarioCmd.AddCommand(scenarioListCmd)

	analyzeAccuracyCmd.Flags().Float64SliceVar(&flagThetas, "thetas", nil, "theta values to sweep")
	analyzeAccuracyCmd.Flags().StringVar(&flagCSV, "csv", "", "CSV report output path")
	analyzeAccuracyCmd.Flags().IntVar(&flagSteps, "steps", 10, "number of simulation steps")
	analyzeAccuracyCmd.Flags().Float64Var(&flagTimeStep, "dt", 1.0, "timestep in seconds")
	analyzeAccuracyCmd.Flags().IntVar(&flagBodies, "bodies", 100, "number of random bodies")
	analyzeAccuracyCmd.Flags().Uint64Var(&flagSeed, "seed", 42, "random seed")
	analyzeCmd.AddCommand(analyzeAccuracyCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(scenarioCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
