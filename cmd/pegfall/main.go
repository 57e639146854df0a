package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pegfall/internal/analysis"
	"github.com/san-kum/pegfall/internal/board"
	"github.com/san-kum/pegfall/internal/config"
	"github.com/san-kum/pegfall/internal/geom"
	"github.com/san-kum/pegfall/internal/metrics"
	"github.com/san-kum/pegfall/internal/session"
	"github.com/san-kum/pegfall/internal/trace"
	"github.com/san-kum/pegfall/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	dropX      float64
	seed       int64
	classID    string
	maxTicks   int
	configFile string
	preset     string
	noSave     bool
	// Ensemble parameters
	runs      int
	seedStart int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pegfall",
		Short: "peg board drop physics lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pegfall", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	dropCmd := &cobra.Command{
		Use:   "drop",
		Short: "run a single drop",
		RunE:  runDrop,
	}
	dropCmd.Flags().Float64Var(&dropX, "x", -1, "drop x position (default board center)")
	dropCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixMilli(), "random seed")
	dropCmd.Flags().StringVar(&classID, "class", "", "ball class")
	dropCmd.Flags().IntVar(&maxTicks, "max-ticks", 2000, "tick budget")
	dropCmd.Flags().BoolVar(&noSave, "no-save", false, "skip saving the run")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run many seeded drops and summarize landings",
		RunE:  runEnsembleCmd,
	}
	ensembleCmd.Flags().Float64Var(&dropX, "x", -1, "drop x position (default board center)")
	ensembleCmd.Flags().IntVar(&runs, "runs", 100, "number of drops")
	ensembleCmd.Flags().Int64Var(&seedStart, "seed-start", 1, "first seed")
	ensembleCmd.Flags().StringVar(&classID, "class", "", "ball class")
	ensembleCmd.Flags().IntVar(&maxTicks, "max-ticks", 2000, "tick budget per drop")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a drop in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&dropX, "x", -1, "drop x position (default board center)")
	liveCmd.Flags().StringVar(&classID, "class", "", "ball class")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved drops",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved drop",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a saved drop",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved drop as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list board presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	classesCmd := &cobra.Command{
		Use:   "classes",
		Short: "list ball classes",
		RunE:  listClasses,
	}

	rootCmd.AddCommand(dropCmd, ensembleCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCmd, presetsCmd, classesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig applies preset then config file, in that order.
func resolveConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	return cfg, nil
}

func buildBoard(cfg *config.Config) (*board.Board, session.ClassTable, string, error) {
	b, err := board.New(cfg.ToBoardConfig())
	if err != nil {
		return nil, nil, "", err
	}

	classes := cfg.ToClassTable()
	class := cfg.Class
	if classID != "" {
		class = classID
	}
	if class == "" {
		class = session.DefaultClass
	}
	return b, classes, class, nil
}

func runDrop(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	b, classes, class, err := buildBoard(cfg)
	if err != nil {
		return err
	}

	if dropX < 0 {
		dropX = (b.DropMinX + b.DropMaxX) / 2
	}

	eng, err := session.New(b, classes, session.Callbacks{})
	if err != nil {
		return err
	}
	defer eng.Destroy()

	eng.SetClass(class)

	maxSpeed := metrics.NewMaxSpeed()
	pathLen := metrics.NewPathLength()
	descent := metrics.NewDescent(b.Config.Height)
	eng.AddMetric(maxSpeed)
	eng.AddMetric(pathLen)
	eng.AddMetric(descent)

	var ticks []trace.TickSample
	eng.AddObserver(func(tick int, pos, vel geom.Vec2) {
		ticks = append(ticks, trace.TickSample{Tick: tick, X: pos.X, Y: pos.Y, VX: vel.X, VY: vel.Y})
	})

	eng.DropSeeded(dropX, seed)

	fmt.Printf("dropping at x=%.1f seed=%d class=%s...\n", dropX, seed, class)
	start := time.Now()

	result, err := eng.Run(context.Background(), maxTicks)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("ticks: %d\n", result.Ticks)
	fmt.Printf("peg hits: %d\n", result.PegHits)
	if result.Landed {
		fmt.Printf("landed: %s  x%.2f\n", result.Bucket.Label, result.Multiplier)
	} else {
		fmt.Println("landed: no (tick budget exhausted)")
	}

	counts := result.Corrections
	fmt.Printf("corrections: %d (jitter %d, stall %d, corner %d, clamp %d, escape %d)\n",
		counts.Total(), counts.Jitter, counts.Stall, counts.Corner, counts.Clamp, counts.Escape)

	fmt.Println("\nmetrics:")
	for _, m := range []metrics.Metric{maxSpeed, pathLen, descent} {
		fmt.Printf("  %s: %.3f\n", m.Name(), m.Value())
	}

	if noSave {
		return nil
	}

	st := trace.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	meta := trace.RunMetadata{
		Timestamp:  time.Now(),
		Seed:       seed,
		DropX:      dropX,
		Class:      class,
		Rows:       b.Config.Rows,
		Buckets:    len(b.Buckets),
		Risk:       b.Config.Risk,
		Landed:     result.Landed,
		Bucket:     result.Bucket.Label,
		Multiplier: result.Multiplier,
		PegHits:    result.PegHits,
		Ticks:      result.Ticks,
		Corrections: map[string]int{
			"jitter": counts.Jitter,
			"stall":  counts.Stall,
			"corner": counts.Corner,
			"clamp":  counts.Clamp,
			"escape": counts.Escape,
		},
		Metrics: map[string]float64{
			maxSpeed.Name(): maxSpeed.Value(),
			pathLen.Name():  pathLen.Value(),
			descent.Name():  descent.Value(),
		},
	}

	runID, err := st.Save(meta, ticks)
	if err != nil {
		return err
	}

	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runEnsembleCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	b, classes, class, err := buildBoard(cfg)
	if err != nil {
		return err
	}

	if dropX < 0 {
		dropX = (b.DropMinX + b.DropMaxX) / 2
	}

	fmt.Printf("running %d drops at x=%.1f...\n", runs, dropX)
	start := time.Now()

	results, err := session.RunEnsemble(context.Background(), session.EnsembleConfig{
		Board:     cfg.ToBoardConfig(),
		Classes:   classes,
		ClassID:   class,
		DropX:     dropX,
		SeedStart: seedStart,
		Runs:      runs,
		MaxTicks:  maxTicks,
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	landedCount := 0
	bucketCounts := make([]int, len(b.Buckets))
	totalMult := 0.0
	totalTicks := 0
	totalCorrections := 0

	for _, r := range results {
		totalTicks += r.Ticks
		totalCorrections += r.Corrections.Total()
		if r.Landed {
			landedCount++
			bucketCounts[r.Bucket.Index]++
			totalMult += r.Multiplier
		}
	}

	fmt.Printf("completed in %v\n\n", elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BUCKET\tMULT\tLANDINGS\tSHARE")
	for i, bucket := range b.Buckets {
		share := 0.0
		if landedCount > 0 {
			share = float64(bucketCounts[i]) / float64(landedCount) * 100
		}
		fmt.Fprintf(w, "%s\tx%.2f\t%d\t%.1f%%\n", bucket.Label, bucket.Multiplier, bucketCounts[i], share)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nlanded: %d/%d\n", landedCount, runs)
	if landedCount > 0 {
		fmt.Printf("mean multiplier: %.3f\n", totalMult/float64(landedCount))
	}
	fmt.Printf("mean ticks: %.0f\n", float64(totalTicks)/float64(runs))
	fmt.Printf("mean corrections: %.2f\n", float64(totalCorrections)/float64(runs))

	hist := make([]float64, len(bucketCounts))
	for i, n := range bucketCounts {
		hist[i] = float64(n)
	}
	graph := asciigraph.Plot(hist,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("landings per bucket"),
	)
	fmt.Println()
	fmt.Println(graph)

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	b, classes, class, err := buildBoard(cfg)
	if err != nil {
		return err
	}

	if dropX < 0 {
		dropX = (b.DropMinX + b.DropMaxX) / 2
	}

	model, err := viz.NewModel(b, classes, class, dropX)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := trace.New(dataDir)
	metas, err := st.List()
	if err != nil {
		return err
	}

	if len(metas) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCLASS\tSEED\tBUCKET\tMULT\tHITS\tTICKS")

	for _, meta := range metas {
		bucket := meta.Bucket
		if !meta.Landed {
			bucket = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.2f\t%d\t%d\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.Class,
			meta.Seed,
			bucket,
			meta.Multiplier,
			meta.PegHits,
			meta.Ticks,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := trace.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	if len(ticks) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("class: %s  seed: %d\n", meta.Class, meta.Seed)
	fmt.Printf("samples: %d\n\n", len(ticks))

	series := []struct {
		caption string
		get     func(trace.TickSample) float64
	}{
		{"y position (descent)", func(t trace.TickSample) float64 { return t.Y }},
		{"x position", func(t trace.TickSample) float64 { return t.X }},
		{"speed", func(t trace.TickSample) float64 { return math.Hypot(t.VX, t.VY) }},
	}

	for _, s := range series {
		data := make([]float64, len(ticks))
		for i, t := range ticks {
			data[i] = s.get(t)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := trace.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	if len(ticks) < 16 {
		return fmt.Errorf("not enough samples to analyze (%d)", len(ticks))
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("class: %s  seed: %d\n\n", meta.Class, meta.Seed)

	xs := make([]float64, len(ticks))
	for i, t := range ticks {
		xs[i] = t.X
	}

	freq, ps := analysis.DominantFrequency(xs, session.TickRate)

	plotData := ps
	if len(plotData) > 128 {
		plotData = plotData[:128]
	}

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("x-position power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	fmt.Printf("dominant bounce frequency: %.2f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.1f ticks\n", session.TickRate/freq)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := trace.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}

	return trace.ExportJSON(meta, ticks)
}

func listClasses(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	classes := cfg.ToClassTable()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCALE\tMASS\tREST\tYIELD\tSPEED")

	for _, id := range classes.ClassIDs() {
		c := classes.Lookup(id)
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\n",
			c.ID, c.Scale, c.Mass, c.Restitution, c.YieldMultiplier, c.SpeedMultiplier)
	}

	return w.Flush()
}
