package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/flowpace/flowpace/config"
	"github.com/flowpace/flowpace/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario.",
	Long: "`run` simulates the default scenario, or the one given with " +
		"--config, and writes its traces into the output directory.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		scenario, err := scenarioFromFlags(cmd)
		if err != nil {
			log.Print(err)
			atexit.Exit(1)
		}

		builder, err := builderFromFlags(cmd, scenario)
		if err != nil {
			log.Print(err)
			atexit.Exit(1)
		}

		s, err := builder.Build()
		if err != nil {
			log.Print(err)
			atexit.Exit(1)
		}

		atexit.Register(func() { _ = s.Terminate() })

		openBrowser, _ := cmd.Flags().GetBool("open-browser")
		if openBrowser && s.Monitor() != nil {
			if err := browser.OpenURL(s.Monitor().URL()); err != nil {
				log.Printf("cannot open browser: %v", err)
			}
		}

		report, err := s.Run()
		if err != nil {
			log.Print(err)
			atexit.Exit(1)
		}

		printReport(report)

		if err := s.Terminate(); err != nil {
			log.Print(err)
			atexit.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("config", "", "YAML scenario file; the built-in scenario if empty")
	f.String("variant", "", "congestion control variant, names the trace files "+
		"(default from FLOWPACE_VARIANT)")
	f.String("output-dir", "", "directory of the trace files "+
		"(default from FLOWPACE_OUTPUT_DIR, or the working directory)")
	f.Float64("stop-time", 0, "simulated seconds to run")
	f.Float64("cadence", 0, "seconds between two throughput samples")
	f.Bool("snapshot-every-tick", true,
		"rewrite the flow statistics snapshot at every sample")
	f.Bool("sqlite", false, "also record the traces into a SQLite database")
	f.String("sqlite-file", "", "name of the SQLite database, without suffix")
	f.Bool("monitor", false, "serve the monitoring page while running")
	f.Int("monitor-port", 0, "port of the monitoring page; random if 0")
	f.Bool("open-browser", false, "open the monitoring page in a browser")
	f.Bool("trace-events", false, "print every event before handling it")
	f.Bool("verbose", false, "print traffic generator lifecycle messages")
}

func scenarioFromFlags(cmd *cobra.Command) (config.Scenario, error) {
	flags := cmd.Flags()

	scenario := config.DefaultScenario()

	if path, _ := flags.GetString("config"); path != "" {
		var err error

		scenario, err = config.Load(path)
		if err != nil {
			return config.Scenario{}, err
		}
	}

	variant, _ := flags.GetString("variant")
	if variant == "" {
		variant = envOr("FLOWPACE_VARIANT", scenario.Variant)
	}

	scenario.Variant = variant

	if flags.Changed("stop-time") {
		scenario.StopTime, _ = flags.GetFloat64("stop-time")
	}

	if flags.Changed("cadence") {
		scenario.Sampler.Cadence, _ = flags.GetFloat64("cadence")
	}

	if flags.Changed("snapshot-every-tick") {
		scenario.Sampler.SnapshotEveryTick, _ =
			flags.GetBool("snapshot-every-tick")
	}

	if err := scenario.Validate(); err != nil {
		return config.Scenario{}, err
	}

	return scenario, nil
}

func builderFromFlags(
	cmd *cobra.Command,
	scenario config.Scenario,
) (simulation.Builder, error) {
	flags := cmd.Flags()

	outputDir, _ := flags.GetString("output-dir")
	if outputDir == "" {
		outputDir = envOr("FLOWPACE_OUTPUT_DIR", ".")
	}

	b := simulation.MakeBuilder().
		WithScenario(scenario).
		WithOutputDir(outputDir)

	if useSQLite, _ := flags.GetBool("sqlite"); useSQLite {
		file, _ := flags.GetString("sqlite-file")
		b = b.WithSQLite(file)
	}

	if monitor, _ := flags.GetBool("monitor"); monitor {
		port, _ := flags.GetInt("monitor-port")
		b = b.WithMonitoring(port)
	}

	if trace, _ := flags.GetBool("trace-events"); trace {
		b = b.WithEventLogger(log.New(os.Stdout, "", 0))
	}

	if verbose, _ := flags.GetBool("verbose"); verbose {
		b = b.WithVerboseLogger(log.New(os.Stdout, "", 0))
	}

	return b, nil
}

func printReport(r simulation.RunReport) {
	fmt.Printf("Run %s (%s) ended at %.3fs\n", r.ID, r.Variant, r.EndTime)

	for _, g := range r.Generators {
		fmt.Printf("  %-10s sent %6d  received %6d  failed %d\n",
			g.Name, g.PacketsSent, g.Received, g.SendFailures)
	}

	fmt.Printf("  %d samples, %d bytes received, %d packets dropped\n",
		r.Throughput.Samples, r.Throughput.TotalBytes, r.Drops)
	fmt.Printf("  throughput mean %.0f bps, std dev %.0f bps, peak %.0f bps\n",
		r.Throughput.MeanThroughput, r.Throughput.StdDevThroughput,
		r.Throughput.PeakThroughput)

	for _, f := range r.Files {
		fmt.Printf("  wrote %s\n", f)
	}
}
