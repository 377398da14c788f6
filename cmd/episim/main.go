package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/experiment"
	"github.com/san-kum/episim/internal/export"
	"github.com/san-kum/episim/internal/report"
	"github.com/san-kum/episim/internal/server"
	"github.com/san-kum/episim/internal/sweep"
	"github.com/san-kum/episim/internal/tui"
	"github.com/san-kum/episim/internal/watch"
)

var (
	logLevel string

	// scenario selection
	configFile string
	preset     string

	// overrides
	horizon    int
	population float64
	infected   float64
	removed    float64
	integrator string
	substeps   int
	clamp      bool
	validate   bool
	rates      []string

	// output
	width     int
	height    int
	plain     bool
	style     string
	live      bool
	frameRate int
	format    string
	output    string

	factors   []float64
	grid      []string
	objective string
	workers   int

	addr string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "episim",
		Short:        "compartment epidemic and rumor simulation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// interactive mode when no command given
			return runTUI()
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run one scenario and print a report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(runCmd)
	addReportFlags(runCmd)
	runCmd.Flags().BoolVar(&live, "live", false, "draw every simulated day while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 10, "frame rate for --live (0 prints every frame)")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare rumor scenarios with the debunking rate scaled",
		Args:  cobra.NoArgs,
		RunE:  compareScenarios,
	}
	addScenarioFlags(compareCmd)
	addReportFlags(compareCmd)
	compareCmd.Flags().Float64SliceVar(&factors, "factors", []float64{1, 2}, "multipliers applied to k")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run a parameter grid and rank the points",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&grid, "grid", nil, "rate values as name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&objective, "objective", "peak", "objective to minimise ("+strings.Join(sweep.Objectives(), ", ")+")")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 means unlimited)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [model] [file]",
		Short: "write a scenario file from a preset",
		Args:  cobra.ExactArgs(2),
		RunE:  initScenario,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "preset to start from")

	exportCmd := &cobra.Command{
		Use:   "export [model]",
		Short: "export a run as csv or json",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportRun,
	}
	addScenarioFlags(exportCmd)
	exportCmd.Flags().StringVar(&format, "format", "csv", "output format (csv, json)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	chartCmd := &cobra.Command{
		Use:   "chart [model]",
		Short: "render a run as a png or svg chart",
		Args:  cobra.MaximumNArgs(1),
		RunE:  chartRun,
	}
	addScenarioFlags(chartCmd)
	chartCmd.Flags().StringVarP(&output, "output", "o", "episim.png", "output file; the extension picks png or svg")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the simulation API over http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.New().ListenAndServe(cmd.Context(), addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	watchCmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "rerun a scenario file whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE:  watchScenario,
	}
	addReportFlags(watchCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}

	rootCmd.AddCommand(runCmd, compareCmd, sweepCmd, presetsCmd, initCmd, exportCmd, chartCmd, serveCmd, watchCmd, tuiCmd)
	return rootCmd
}

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "scenario file (yaml or toml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&horizon, "horizon", 0, "days to simulate (0 means the model default)")
	f.Float64Var(&population, "n", 0, "total population")
	f.Float64Var(&infected, "i0", 0, "initially infected")
	f.Float64Var(&removed, "r0", 0, "initially removed")
	f.StringVar(&integrator, "integrator", "", "integrator (euler, rk4, refined)")
	f.IntVar(&substeps, "substeps", 0, "substeps per day for the refined integrator")
	f.BoolVar(&clamp, "clamp", false, "clamp negative compartments to zero after every step")
	f.BoolVar(&validate, "validate", false, "stop with an error on NaN or Inf")
	f.StringArrayVar(&rates, "set", nil, "override a rate as name=expr, e.g. beta='2.0 / N' (repeatable)")
}

func addReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&width, "width", 80, "plot width")
	f.IntVar(&height, "height", 12, "plot height")
	f.BoolVar(&plain, "plain", false, "print the interpretation as raw markdown")
	f.StringVar(&style, "style", "", "glamour style (dark, light, notty); empty detects the terminal")
}

func reportOptions() report.Options {
	return report.Options{Width: width, Height: height, Style: style, Plain: plain}
}

// loadScenario resolves a config from --config or a preset and applies the
// flags the user set on top of it.
func loadScenario(cmd *cobra.Command, model string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if model != "" && model != loaded.Model {
			return nil, fmt.Errorf("%s describes the %s model, not %s", configFile, loaded.Model, model)
		}
		cfg = loaded
	default:
		if model == "" {
			model = config.DefaultModel
		}
		name := preset
		if name == "" {
			name = config.DefaultPreset(model)
		}
		cfg = config.GetPreset(model, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(model))
		}
	}

	f := cmd.Flags()
	if f.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if f.Changed("n") {
		cfg.Population.N = population
	}
	if f.Changed("i0") {
		cfg.Population.I0 = infected
	}
	if f.Changed("r0") {
		cfg.Population.R0 = removed
	}
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if f.Changed("clamp") {
		cfg.Clamp = clamp
	}
	if f.Changed("validate") {
		cfg.Validate = validate
	}
	for _, kv := range rates {
		name, expr, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("bad --set %q, want name=expr", kv)
		}
		if cfg.Rates == nil {
			cfg.Rates = make(map[string]config.Expr)
		}
		cfg.Rates[strings.TrimSpace(name)] = config.Expr(strings.TrimSpace(expr))
	}

	return cfg, cfg.Check()
}

func modelArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, modelArg(args))
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, nil)
	var lr *tui.LiveRenderer
	if live {
		info, err := experiment.NewRegistry().Describe(cfg.Model)
		if err != nil {
			return err
		}
		lr = tui.NewLiveRenderer(cmd.OutOrStdout(), info.Labels, cfg.Population.N, frameRate)
		exp.AddObserver(lr)
		lr.Start()
	}

	res, err := exp.Run(cmd.Context())
	if lr != nil {
		lr.Stop()
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), res, reportOptions())
}

func compareScenarios(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, "rumor")
	if err != nil {
		return err
	}

	if len(factors) == 0 {
		factors = []float64{1, 2}
	}
	results, err := experiment.Compare(cmd.Context(), cfg, nil, factors...)
	if err != nil {
		return err
	}

	names := make([]string, len(results))
	for i, f := range factors {
		names[i] = "k x" + strconv.FormatFloat(f, 'g', -1, 64)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Title.Render("rumor comparison"))
	fmt.Fprintln(out, report.ComparisonPlot(results, names, width, height))
	fmt.Fprintln(out)

	table := report.ComparisonTable(results, names)
	if plain {
		_, err := fmt.Fprint(out, table)
		return err
	}
	rendered, err := report.Markdown(table, width, style)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, modelArg(args))
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return fmt.Errorf("at least one --grid is required")
	}

	names := make([]string, 0, len(grid))
	ranges := make([][]float64, 0, len(grid))
	for _, spec := range grid {
		name, values, err := parseGrid(spec)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	g := sweep.NewGrid(cfg, names, ranges)
	g.SetLimit(workers)
	points, err := g.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tPEAK DAY\tAFFECTED\tR0\t\n", strings.ToUpper(strings.Join(names, "\t")))
	for _, p := range points {
		cols := make([]string, len(names))
		for i, n := range names {
			cols[i] = strconv.FormatFloat(p.Params[n], 'g', 6, 64)
		}
		flag := ""
		if p.Degenerate {
			flag = "degenerate"
		}
		s := p.Summary
		fmt.Fprintf(w, "%s\t%.1f\t%.0f\t%d\t%.3f\t%s\n", strings.Join(cols, "\t"), s.PeakValue, s.PeakDay, s.TotalAffected, s.R0, flag)
	}
	w.Flush()

	best, score, err := sweep.Best(points, objective)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nbest by %s (%.4g): %v\n", objective, score, best.Params)
	return nil
}

// parseGrid reads "name=v1,v2,...".
func parseGrid(spec string) (string, []float64, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("bad --grid %q, want name=v1,v2,...", spec)
	}
	var values []float64
	for _, raw := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad value in --grid %s: %w", name, err)
		}
		values = append(values, v)
	}
	return strings.TrimSpace(name), values, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	models := experiment.NewRegistry().ListModels()
	if len(args) > 0 {
		models = args
	}
	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Fprintf(out, "no presets for model: %s\n", model)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", model)
		def := config.DefaultPreset(model)
		for _, p := range presets {
			marker := ""
			if p == def {
				marker = " (default)"
			}
			fmt.Fprintf(out, "  %s%s\n", p, marker)
		}
	}
	return nil
}

func initScenario(cmd *cobra.Command, args []string) error {
	model, path := args[0], args[1]
	name := preset
	if name == "" {
		name = config.DefaultPreset(model)
	}
	cfg := config.GetPreset(model, name)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets(model))
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s/%s to %s\n", model, name, path)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, modelArg(args))
	if err != nil {
		return err
	}
	res, err := experiment.New(cfg, nil).Run(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "csv":
		err = export.WriteCSV(w, res)
	case "json":
		err = export.WriteJSON(w, res)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	if output != "" {
		logrus.Infof("exported run %s to %s", res.ID, output)
	}
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, modelArg(args))
	if err != nil {
		return err
	}
	provider, err := export.ChartFormat(extension(output))
	if err != nil {
		return err
	}
	res, err := experiment.New(cfg, nil).Run(cmd.Context())
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := export.RenderChart(f, res, provider); err != nil {
		f.Close()
		os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
	return nil
}

func extension(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i:]
	}
	return ""
}

func watchScenario(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	opts := reportOptions()
	return watch.New(args[0], watch.DefaultDebounce).Run(cmd.Context(), func(cfg *config.Config) error {
		res, err := experiment.New(cfg, nil).Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, report.Separator(opts.Width))
		return report.Write(out, res, opts)
	})
}

func runTUI() error {
	p := tea.NewProgram(tui.New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
