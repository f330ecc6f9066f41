package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/fluidsim/internal/analysis"
	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/experiment"
	"github.com/san-kum/fluidsim/internal/export"
	"github.com/san-kum/fluidsim/internal/fluid"
	"github.com/san-kum/fluidsim/internal/metrics"
	"github.com/san-kum/fluidsim/internal/storage"
	"github.com/san-kum/fluidsim/internal/viz"
)

var (
	dataDir     string
	configFile  string
	logLevel    string
	logFormat   string
	logFile     string
	ticks       int
	sampleEvery int
	seed        int64
	watch       bool
	noSave      bool
	outPath     string
	series      string
	sweepSteps  int
	sweepCSV    bool
	workers     int
	benchTicks  int
	pick        bool

	logCloser io.Closer
)

var errPickConflict = errors.New("--pick chooses the preset itself; drop the preset argument, --config and --seed")

// main registers the commands. With no subcommand it opens the live view.
func main() {
	rootCmd := &cobra.Command{
		Use:           "fluidsim",
		Short:         "particle fluid simulation in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLog()
		},
		RunE: runLive,
	}
	rootCmd.Flags().BoolVar(&pick, "pick", false, "choose a preset and tune physics before starting")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".fluidsim", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file (interactive views discard logs otherwise)")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "interactive fluid, drag the mouse to pour",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Int64Var(&seed, "seed", 0, "random seed for emitter jitter")
	liveCmd.Flags().BoolVar(&pick, "pick", false, "choose a preset and tune physics before starting")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "headless run, saved to the data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "record every n ticks")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed for emitter jitter")
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw the fluid while running")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run samples",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "sloshing frequency and settling analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final particles, or a sample series, to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().StringVar(&series, "series", "", "plot a sample column instead (kinetic, density, contacts, particles)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure ticks per second at several particle loads",
		RunE:  bench,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 200, "timed ticks per load")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param] [min] [max]",
		Short: "run a preset across a range of one physics parameter",
		Args:  cobra.ExactArgs(3),
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&ticks, "ticks", 500, "ticks per run")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")
	sweepCmd.Flags().BoolVar(&sweepCSV, "csv", false, "print results as CSV")

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, analyzeCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd, sweepCmd)

	err := rootCmd.Execute()
	// post-run hooks are skipped when a command fails
	closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupLogging installs the default slog handler. Full-screen views own the
// terminal, so they only log when --log-file is set.
func setupLogging(cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q", logLevel)
	}

	var out io.Writer = os.Stderr
	interactive := cmd.Name() == "fluidsim" || cmd.Name() == "live" || (cmd.Name() == "run" && watch)
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		out = f
		logCloser = f
	case interactive:
		out = io.Discard
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch logFormat {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		return fmt.Errorf("invalid --log-format %q (text or json)", logFormat)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// closeLog closes the --log-file handle, if one is open.
func closeLog() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

// loadConfig resolves the preset argument, then the --config file, then any
// flags set on the command line.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
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
	if flags.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if flags.Changed("sample-every") {
		cfg.Run.SampleEvery = sampleEvery
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	return cfg, cfg.Validate()
}

func runLive(cmd *cobra.Command, args []string) error {
	if pick {
		if len(args) > 0 || configFile != "" || cmd.Flags().Changed("seed") {
			return errPickConflict
		}
		return viz.RunInteractive()
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.Run(cfg)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.DefaultMetrics() {
		exp.AddMetric(m)
	}

	if watch {
		w := viz.NewWatcher(exp.Simulation(), os.Stdout, 70, 20, 30)
		exp.AddObserver(w)
		w.Start()
		defer w.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s for %d ticks...\n", cfg.Name, cfg.Run.Ticks)
	result, err := exp.Run(ctx)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("interrupted after %d ticks\n", result.Ticks)
	}

	fmt.Printf("completed in %v\n", result.Elapsed.Round(time.Millisecond))
	if !noSave {
		st := storage.New(dataDir)
		runID, err := st.Save(result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("particles: %d\n", len(result.Final))
	if d := result.Drops; d.Total() > 0 {
		fmt.Printf("dropped: particles=%d contacts=%d bucket=%d\n", d.Particles, d.Contacts, d.Bucket)
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %-22s %.6f\n", name, result.Metrics[name])
	}
	return nil
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tTICKS\tPARTICLES\tVIEWPORT\tDROPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.0fx%.0f\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Particles,
			run.Width, run.Height,
			run.Drops.Particles+run.Drops.Contacts+run.Drops.Bucket,
		)
	}

	return w.Flush()
}

var seriesNames = []string{"kinetic", "density", "contacts", "particles"}

func sampleSeries(samples []experiment.Sample, name string) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		switch name {
		case "kinetic":
			out[i] = s.KineticEnergy
		case "density":
			out[i] = s.MeanDensity
		case "contacts":
			out[i] = float64(s.Contacts)
		case "particles":
			out[i] = float64(s.Particles)
		default:
			return nil, fmt.Errorf("unknown series: %s (available: %v)", name, seriesNames)
		}
	}
	return out, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d (every %d ticks)\n\n", len(samples), meta.SampleEvery)

	captions := map[string]string{
		"kinetic":   "kinetic energy",
		"density":   "mean density",
		"contacts":  "contacts",
		"particles": "particle count",
	}
	for _, name := range seriesNames {
		data, _ := sampleSeries(samples, name)
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(captions[name]),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) < 4 {
		return fmt.Errorf("not enough samples to analyze (%d)", len(samples))
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("preset: %s\n\n", meta.Preset)

	kinetic, _ := sampleSeries(samples, "kinetic")
	ps := analysis.PowerSpectrum(analysis.Detrend(kinetic))
	plotData := ps[1:]
	if len(plotData) > 200 {
		plotData = plotData[:200]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (kinetic energy)"),
	)
	fmt.Println(graph)
	fmt.Println()

	bin, freq := analysis.DominantFrequency(kinetic, meta.SampleEvery)
	if bin == 0 {
		fmt.Println("dominant frequency: none")
	} else {
		fmt.Printf("dominant frequency: %.5f cycles/tick (bin %d)\n", freq, bin)
		fmt.Printf("period: %.1f ticks\n", 1.0/freq)
	}

	sum := analysis.Describe(kinetic)
	fmt.Printf("kinetic energy: mean %.2f  std %.2f  min %.2f  max %.2f  median %.2f\n",
		sum.Mean, sum.StdDev, sum.Min, sum.Max, sum.Median)

	if settle := analysis.SettleTick(kinetic, 0.05*sum.Max); settle >= 0 {
		fmt.Printf("settled from tick %d\n", samples[settle].Tick)
	} else {
		fmt.Println("never settled")
	}

	particles, err := st.LoadParticles(runID)
	if err != nil {
		return err
	}
	if len(particles) > 0 {
		ys := make([]float64, len(particles))
		for i, p := range particles {
			ys[i] = p.Y
		}
		const bands = 10
		fmt.Println("\nheight profile (top to bottom):")
		for i, c := range analysis.HeightProfile(ys, meta.Height, bands) {
			bar := strings.Repeat("█", int(c*60/float64(len(particles))+0.5))
			fmt.Printf("  %4.0f %s %d\n", meta.Height*float64(i)/bands, bar, int(c))
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath == "" {
		return st.ExportJSON(args[0], os.Stdout)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.ExportJSON(args[0], f); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	var svg string
	if series != "" {
		samples, err := st.LoadSamples(runID)
		if err != nil {
			return err
		}
		data, err := sampleSeries(samples, series)
		if err != nil {
			return err
		}
		svg = export.SeriesToSVG(data, 800, 300, "#00ccff")
		if svg == "" {
			return fmt.Errorf("not enough samples to plot")
		}
	} else {
		particles, err := st.LoadParticles(runID)
		if err != nil {
			return err
		}
		positions := func(yield func(float64, float64) bool) {
			for _, p := range particles {
				if !yield(p.X, p.Y) {
					return
				}
			}
		}
		svg = export.ParticlesToSVG(positions, meta.Width, meta.Height)
	}

	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tTICKS\tPRIME\tEMITTERS\tVISCOSITY")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\n", name, p.Run.Ticks, p.Prime.Rows*p.Physics.PourSize(), len(p.Emitters), p.Physics.Viscosity)
	}
	return w.Flush()
}

func bench(cmd *cobra.Command, args []string) error {
	loads := []int{250, 500, 1000, 2000, 4000}
	const warmup = 50

	fmt.Println("benchmarking fluid step")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARTICLES\tCONTACTS\tTICKS\tTIME\tTICKS/SEC")

	for _, n := range loads {
		sim, err := fluid.New(fluid.DefaultParams(), 1600, 1200)
		if err != nil {
			return err
		}
		prime := config.PrimeConfig{Rows: n / sim.Params().PourSize(), X: 0.5, Y: 0.1, Spacing: 10}
		experiment.Prime(sim, prime)
		for i := 0; i < warmup; i++ {
			sim.Step()
		}

		start := time.Now()
		for i := 0; i < benchTicks; i++ {
			sim.Step()
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n",
			sim.ParticleCount(), sim.Stats().Contacts, benchTicks, elapsed.Round(time.Microsecond), float64(benchTicks)/elapsed.Seconds())
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	lo, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid min: %w", err)
	}
	hi, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid max: %w", err)
	}

	base, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	base.Run.Ticks = ticks

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sw := experiment.Sweep{Base: base, Param: args[0], Min: lo, Max: hi, Steps: sweepSteps, Workers: workers}
	results, err := experiment.RunSweep(ctx, sw)
	if err != nil {
		return err
	}

	if sweepCSV {
		return gocsv.Marshal(results, os.Stdout)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tKINETIC\tP90\tDENSITY PEAK\tSETTLED\tDROPS\n", strings.ToUpper(args[0]))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.2f\t%.2f\t%.2f\t%.2f\t%d\n", r.Value, r.KineticMean, r.KineticP90, r.DensityPeak, r.Settled, r.Drops)
	}
	return w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
