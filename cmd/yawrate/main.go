package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/yawrate/internal/analysis"
	"github.com/san-kum/yawrate/internal/automation"
	"github.com/san-kum/yawrate/internal/config"
	"github.com/san-kum/yawrate/internal/experiment"
	"github.com/san-kum/yawrate/internal/export"
	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/integrators"
	"github.com/san-kum/yawrate/internal/log"
	"github.com/san-kum/yawrate/internal/loop"
	"github.com/san-kum/yawrate/internal/pids"
	"github.com/san-kum/yawrate/internal/profile"
	"github.com/san-kum/yawrate/internal/storage"
	"github.com/san-kum/yawrate/internal/telemetry"
	"github.com/san-kum/yawrate/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	// tick
	yawDemand float64
	dpsi      float64
	integral  float64
	throttle  float64
	roll      float64
	pitch     float64

	// run / live
	rateHz     float64
	duration   float64
	integrator string
	profileKnd string
	amplitude  float64
	configFile string
	preset     string

	// sweep / montecarlo
	paramName    string
	paramMin     float64
	paramMax     float64
	numSteps     int
	workers      int
	numTrials    int
	perturbation float64
	seed         int64

	// export-svg
	svgWidth  int
	svgHeight int
	svgPhase  bool

	// serve
	telemPort int
	motorHost string
	motorPort int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "yawrate",
		Short: "yaw-rate PID control law and closed-loop lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Init(logLevel)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	tickCmd := &cobra.Command{
		Use:   "tick",
		Short: "evaluate the yaw law once",
		Args:  cobra.NoArgs,
		RunE:  runTick,
	}
	tickCmd.Flags().Float64Var(&yawDemand, "yaw", 0, "yaw-rate demand (rad/s)")
	tickCmd.Flags().Float64Var(&dpsi, "dpsi", 0, "measured yaw rate (rad/s)")
	tickCmd.Flags().Float64Var(&integral, "integral", 0, "carried error integral")
	tickCmd.Flags().Float64Var(&throttle, "throttle", 0.5, "throttle demand")
	tickCmd.Flags().Float64Var(&roll, "roll", 0, "roll demand")
	tickCmd.Flags().Float64Var(&pitch, "pitch", 0, "pitch demand")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed-loop yaw simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "step response and spectrum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run ticks to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export run plot to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 400, "image height")
	exportSVGCmd.Flags().BoolVar(&svgPhase, "phase", false, "plot dpsi against rate error")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-14s %-8s %.1fs\n", name, p.Profile.Kind, p.Duration)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the loop with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&rateHz, "rate", config.DefaultRateHz, "loop rate (Hz)")
	liveCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator ("+joinNames(integrators.Names())+")")
	liveCmd.Flags().Float64Var(&throttle, "throttle", config.DefaultThrottle, "throttle demand")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of runs and save each",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "sweep a plant parameter (inertia, damping, authority, disturbance)",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0.05, "parameter minimum")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 0.2, "parameter maximum")
	sweepCmd.Flags().IntVar(&numSteps, "steps", 8, "number of sweep points")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = NumCPU)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial yaw rate and report stability",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&numTrials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 1.0, "max initial dpsi perturbation (rad/s)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the yaw law against a UDP flight simulator",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	serveCmd.Flags().IntVar(&telemPort, "telem-port", 5001, "port to receive telemetry on")
	serveCmd.Flags().StringVar(&motorHost, "motor-host", "127.0.0.1", "host to send demands to")
	serveCmd.Flags().IntVar(&motorPort, "motor-port", 5000, "port to send demands to")
	serveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	rootCmd.AddCommand(tickCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		presetsCmd, liveCmd, scenarioCmd, sweepCmd, monteCarloCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&rateHz, "rate", config.DefaultRateHz, "loop rate (Hz)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator ("+joinNames(integrators.Names())+")")
	cmd.Flags().StringVar(&profileKnd, "profile", "step", "demand profile ("+joinNames(profile.Kinds())+")")
	cmd.Flags().Float64Var(&amplitude, "amplitude", config.DefaultAmplitude, "demand amplitude (rad/s)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

// resolveConfig layers defaults, then the preset, then the config file,
// then any flags set explicitly on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("rate") {
		cfg.RateHz = rateHz
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("profile") {
		cfg.Profile.Kind = profileKnd
	}
	if flags.Changed("amplitude") {
		cfg.Profile.Amplitude = amplitude
	}
	if cfg.DataDir != "" && !cmd.Flags().Changed("data") {
		dataDir = cfg.DataDir
	}

	return cfg, cfg.Validate()
}

func runTick(cmd *cobra.Command, args []string) error {
	demands := flight.Demands{Throttle: throttle, Roll: roll, Pitch: pitch, Yaw: yawDemand}
	vstate := flight.VehicleState{DPsi: dpsi}

	out, next := pids.Run(demands, &vstate, pids.YawPidState{ErrorIntegral: integral})

	rateErr := yawDemand - dpsi
	fmt.Printf("error:     %+.6f rad/s\n", rateErr)
	fmt.Printf("reset:     %v\n", pids.Resets(rateErr))
	fmt.Printf("throttle:  %g\n", out.Throttle)
	fmt.Printf("roll:      %g\n", out.Roll)
	fmt.Printf("pitch:     %g\n", out.Pitch)
	fmt.Printf("yaw:       %.10g\n", out.Yaw)
	fmt.Printf("integral:  %.10g\n", next.State.ErrorIntegral)
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	log.Info("running", "profile", cfg.Profile.Kind, "rate_hz", cfg.RateHz, "duration", cfg.Duration, "integrator", cfg.Integrator)
	start := time.Now()

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		log.Warn("run stopped early", "err", e)
	}

	elapsed := time.Since(start)

	runID, err := st.Save(metadataFor(cfg, preset), result)
	if err != nil {
		return err
	}
	log.Info("saved run", "id", runID, "ticks", len(result.Ticks), "elapsed", elapsed)

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", len(result.Ticks))
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func metadataFor(cfg *config.Config, presetName string) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:      presetName,
		Profile:     cfg.Profile.Kind,
		RateHz:      cfg.RateHz,
		Duration:    cfg.Duration,
		Integrator:  cfg.Integrator,
		ThrottleCut: cfg.ThrottleCut,
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tPROFILE\tTIME\tDURATION\tRATE\tINTEG\tRMS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.0fHz\t%s\t%.4f\n",
			run.ID,
			run.Preset,
			run.Profile,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.RateHz,
			run.Integrator,
			run.Metrics["tracking_rms"],
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []loop.Tick, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, ticks, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary(meta))
	fmt.Println()
	fmt.Println(viz.PlotRun(ticks))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run %s (%s)\n\n", meta.ID, meta.Profile)

	resp, err := analysis.StepResponse(ticks)
	if err != nil {
		fmt.Printf("step response: %v\n", err)
	} else {
		fmt.Println("step response:")
		fmt.Printf("  target:         %+.4f rad/s\n", resp.Target)
		fmt.Printf("  final:          %+.4f rad/s\n", resp.Final)
		fmt.Printf("  steady error:   %+.4f rad/s\n", resp.SteadyError)
		fmt.Printf("  rise time:      %.4f s\n", resp.RiseTime)
		fmt.Printf("  overshoot:      %.2f%%\n", resp.Overshoot*100)
		if resp.Settled {
			fmt.Printf("  settling time:  %.4f s\n", resp.SettlingTime)
		} else {
			fmt.Println("  settling time:  not settled")
		}
	}

	fmt.Printf("\ndominant error frequency: %.3f Hz\n", analysis.DominantFrequency(ticks, meta.RateHz))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(ticks) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteTicksCSV(os.Stdout, ticks)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, ticks)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if svgPhase {
		svg = export.PhaseToSVG(ticks, svgWidth, svgHeight)
	} else {
		svg = export.RunToSVG(ticks, svgWidth, svgHeight)
	}
	if svg == "" {
		return fmt.Errorf("no data to export")
	}
	fmt.Println(svg)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.RateHz = rateHz
	cfg.Integrator = integrator
	cfg.Profile.Kind = "hold"
	cfg.Profile.Amplitude = 0

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	m := viz.NewLiveModel(exp.Loop(), exp.InitState(), exp.LoopConfig(), throttle)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(cmd.Context(), sc)
	for i, r := range results {
		meta := metadataFor(r.Config, sc.Steps[i].Preset)
		runID, saveErr := st.Save(meta, r.Result)
		if saveErr != nil {
			return saveErr
		}
		fmt.Printf("%-16s %s  rms=%.4f resets=%.0f\n", r.Name, runID, r.Result.Metrics["tracking_rms"], r.Result.Metrics["windup_resets"])
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: args[0],
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  numSteps,
		Workers:   workers,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tRMS\tEFFORT\tRESETS\tSATURATION\tFINAL DPSI\tSTABLE\n", args[0])
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.0f\t%.3f\t%+.4f\t%s\n",
			r.ParamValue,
			r.Metrics["tracking_rms"],
			r.Metrics["control_effort"],
			r.Metrics["windup_resets"],
			r.Metrics["saturation"],
			r.FinalDPsi,
			strconv.FormatBool(r.Stable),
		)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    numTrials,
		Seed:         seed,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	worst := 0.0
	for _, r := range results {
		if r.TrackingRMS > worst {
			worst = r.TrackingRMS
		}
	}

	fmt.Printf("trials:      %d\n", len(results))
	fmt.Printf("stable:      %d\n", stable)
	fmt.Printf("unstable:    %d\n", unstable)
	fmt.Printf("worst rms:   %.4f\n", worst)
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cut := config.DefaultThrottleCut
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cut = cfg.ThrottleCut
		flags := cmd.Flags()
		if !flags.Changed("telem-port") {
			telemPort = cfg.Telemetry.TelemPort
		}
		if !flags.Changed("motor-host") {
			motorHost = cfg.Telemetry.MotorHost
		}
		if !flags.Changed("motor-port") {
			motorPort = cfg.Telemetry.MotorPort
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proxy, err := telemetry.Listen(
		net.JoinHostPort("", strconv.Itoa(telemPort)),
		net.JoinHostPort(motorHost, strconv.Itoa(motorPort)),
		loop.NewDriver(cut),
	)
	if err != nil {
		return err
	}

	err = proxy.Serve(ctx)
	log.Info("proxy stopped", "frames", proxy.Frames())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
