// Command frontier explores the discrete portfolio-allocation space
// described in SPEC_FULL.md: it simulates every weight vector on the
// configured step against a historical returns table, reduces each
// statistic-pair's point cloud to a bounded frontier, and prints the
// resulting plot descriptors' sizes and a run summary.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"frontier/internal/allocation"
	"frontier/internal/apperr"
	"frontier/internal/config"
	"frontier/internal/frontier"
	"frontier/internal/hull"
	"frontier/internal/logger"
	"frontier/internal/market"
	"frontier/internal/pipeline"
	"frontier/internal/plotdesc"
	"frontier/internal/runstore"
	"frontier/internal/simulate"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printErr(err)
		os.Exit(exitCodeFor(err))
	}
}

func printErr(err error) {
	var multi *apperr.MultiError
	if errors.As(err, &multi) {
		for _, e := range multi.Errs {
			logger.Error("frontier", e.Error())
		}
		return
	}
	logger.Error("frontier", err.Error())
}

// exitCodeFor maps a run's terminal error to the CLI's documented exit
// codes: 1 for errors reported as an apperr.MultiError (flag validation,
// --axis parsing, and the color/static-portfolio checks against the
// returns file), 2 for any other failure, including a returns, colors or
// portfolios file that cannot be read or parsed.
func exitCodeFor(err error) int {
	var multi *apperr.MultiError
	if errors.As(err, &multi) {
		return 1
	}
	return 2
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	var axisFlag []string

	cmd := &cobra.Command{
		Use:          "frontier",
		Short:        "Explore the portfolio allocation frontier",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(axisFlag) > 0 {
				axes, err := parseAxisFlags(axisFlag)
				if err != nil {
					return err
				}
				cfg.Axes = axes
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.Precision, "precision", cfg.Precision, "allocation step; must divide 100")
	flags.IntVar(&cfg.HullLayers, "hull", cfg.HullLayers, "hull layer count; 0 disables reduction")
	flags.IntVar(&cfg.Edge, "edge", cfg.Edge, "force-plot every portfolio with <= N nonzero weights")
	flags.BoolVar(&cfg.PlotMin, "min", cfg.PlotMin, "force-plot the theoretical worst-asset-per-year portfolio")
	flags.BoolVar(&cfg.PlotMax, "max", cfg.PlotMax, "force-plot the theoretical best-asset-per-year portfolio")
	flags.StringVar(&cfg.Years, "years", cfg.Years, "year-range selector name")
	flags.StringVar(&cfg.ReturnsPath, "returns", cfg.ReturnsPath, "path to Returns CSV")
	flags.StringVar(&cfg.ColorsPath, "colors", cfg.ColorsPath, "path to Color config JSON")
	flags.StringVar(&cfg.PortfoliosPath, "portfolios", cfg.PortfoliosPath, "path to Static portfolios JSON")
	flags.IntVar(&cfg.ChunkSize, "chunk", cfg.ChunkSize, "frame batch size")
	flags.IntVar(&cfg.MaxDirty, "max-dirty", cfg.MaxDirty, "hull reducer's max_dirty_points")
	flags.StringVar(&cfg.HistoryDBPath, "history-db", cfg.HistoryDBPath, "optional SQLite path for run history")
	flags.StringArrayVar(&axisFlag, "axis", nil, `statistic pair "x,y" (repeatable); defaults to the five canonical pairs`)

	return cmd
}

func parseAxisFlags(raw []string) ([]config.AxisPair, error) {
	var errs apperr.MultiError
	axes := make([]config.AxisPair, 0, len(raw))
	for _, a := range raw {
		x, y, ok := strings.Cut(a, ",")
		if !ok || x == "" || y == "" {
			errs.Add(fmt.Errorf("invalid --axis %q, want \"x,y\"", a))
			continue
		}
		axes = append(axes, config.AxisPair{X: x, Y: y})
	}
	return axes, errs.ErrOrNil()
}

// axisResult is one axis's fully assembled, colored frontier, filled in by
// its HullSink's onDrain callback once Fanout forwards the sentinel.
type axisResult struct {
	axis       config.AxisPair
	portfolios []frontier.Portfolio
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Banner(version)

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Section("Ingest")
	universe, table, err := market.ReadReturnsCSV(cfg.ReturnsPath)
	if err != nil {
		return err
	}
	colors, err := market.ReadColorsJSON(cfg.ColorsPath)
	if err != nil {
		return err
	}
	staticPortfolios, err := market.ReadStaticPortfoliosJSON(cfg.PortfoliosPath)
	if err != nil {
		return err
	}

	var ingestErrs apperr.MultiError
	if err := market.ValidateColors(universe, colors); err != nil {
		var m *apperr.MultiError
		if errors.As(err, &m) {
			ingestErrs.Errs = append(ingestErrs.Errs, m.Errs...)
		}
	}
	if err := market.ValidateStaticPortfolios(staticPortfolios, universe, colors); err != nil {
		var m *apperr.MultiError
		if errors.As(err, &m) {
			ingestErrs.Errs = append(ingestErrs.Errs, m.Errs...)
		}
	}
	if err := ingestErrs.ErrOrNil(); err != nil {
		return err
	}

	sel, err := simulate.ParseSelector(cfg.Years)
	if err != nil {
		return err
	}

	logger.Stats("assets", len(universe))
	logger.Stats("years", len(table))
	total := allocation.Count(len(universe), cfg.Precision)
	logger.Stats("total allocations", total)

	alwaysPlot, err := buildAlwaysPlot(cfg, universe, table, sel, staticPortfolios)
	if err != nil {
		return err
	}
	logger.Stats("always-plot portfolios", len(alwaysPlot))

	logger.Section("Simulate")
	results := make([]axisResult, len(cfg.Axes))
	sinks := make([]pipeline.Sink, len(cfg.Axes))
	for i, axis := range cfg.Axes {
		i, axis := i, axis
		reducer := hull.New(cfg.HullLayers, cfg.MaxDirty)
		sinks[i] = pipeline.NewHullSink(len(universe), axis, reducer, func(ax config.AxisPair, drained []hull.Point) error {
			portfolios := frontier.Assemble(universe, drained, alwaysPlot)
			if err := frontier.BlendColors(universe, colors, portfolios); err != nil {
				return err
			}
			results[i] = axisResult{axis: ax, portfolios: portfolios}
			return nil
		})
	}

	runCfg := pipeline.RunConfig{Assets: len(universe), Step: cfg.Precision, Selector: sel, ChunkSize: cfg.ChunkSize}
	frameCh := make(chan []byte, 1)
	chanSink := pipeline.NewChanSink(ctx, frameCh)

	g, gctx := errgroup.WithContext(ctx)
	var simulated int
	startedAt := time.Now()
	g.Go(func() error {
		n, err := pipeline.Run(gctx, runCfg, table, chanSink)
		simulated = n
		return err
	})
	g.Go(func() error {
		return pipeline.Fanout(gctx, frameCh, sinks)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	duration := time.Since(startedAt)

	logger.Section("Frontiers")
	frontierSizes := make(map[string]int, len(results))
	for _, r := range results {
		label := fmt.Sprintf("%s/%s", r.axis.X, r.axis.Y)
		if _, err := plotdesc.Build(r.axis, r.portfolios); err != nil {
			return err
		}
		logger.Stats(label, len(r.portfolios))
		frontierSizes[label] = len(r.portfolios)
	}
	logger.Stats("simulated", simulated)
	logger.Stats("duration", duration.String())

	return saveHistory(cfg, universe, sel, simulated, frontierSizes, startedAt, duration)
}

// buildAlwaysPlot resolves every portfolio that must be plotted regardless
// of hull membership: static named portfolios, auto min/max portfolios
// (both the static-config "auto" directive and the --min/--max flags), and
// every allocation with at most cfg.Edge nonzero weights (spec.md §4.7,
// "always-plot" set).
func buildAlwaysPlot(cfg *config.Config, universe market.Universe, table market.GainTable, sel simulate.Selector, staticPortfolios []market.StaticPortfolio) ([]frontier.Portfolio, error) {
	var out []frontier.Portfolio

	addVector := func(v []int32, marker string) error {
		stats, err := simulate.Simulate(v, table, sel)
		if err != nil {
			return err
		}
		out = append(out, frontier.Portfolio{
			Allocation: v,
			Stats:      stats,
			Marker:     marker,
			AlwaysPlot: true,
		})
		return nil
	}

	// addAuto resolves the best/worst-asset-per-year portfolio: its
	// Statistics come from the true per-year dynamic pick (a potentially
	// different asset each year, simulate.SimulateDynamic over
	// market.AutoWeights), while its displayed Allocation is only the
	// single-asset stand-in ResolveAuto returns, used for coloring and
	// dedup — not for the simulation itself.
	addAuto := func(kind market.AutoKind, marker string) error {
		stats, err := simulate.SimulateDynamic(func(yearGains []float64) []float64 {
			return market.AutoWeights(kind, yearGains)
		}, table, sel)
		if err != nil {
			return err
		}
		out = append(out, frontier.Portfolio{
			Allocation: market.ResolveAuto(kind, universe, table),
			Stats:      stats,
			Marker:     marker,
			AlwaysPlot: true,
		})
		return nil
	}

	for _, p := range staticPortfolios {
		if p.Auto != market.AutoNone {
			if err := addAuto(p.Auto, p.Name); err != nil {
				return nil, err
			}
			continue
		}
		if err := addVector(p.ToVector(universe), p.Name); err != nil {
			return nil, err
		}
	}

	if cfg.PlotMin {
		if err := addAuto(market.AutoMin, "min-asset"); err != nil {
			return nil, err
		}
	}
	if cfg.PlotMax {
		if err := addAuto(market.AutoMax, "max-asset"); err != nil {
			return nil, err
		}
	}

	if cfg.Edge > 0 {
		var edgeErr error
		err := allocation.Enumerate(len(universe), cfg.Precision, func(v allocation.Vector) bool {
			if v.NumNonZero() > cfg.Edge {
				return true
			}
			if err := addVector(v.Clone(), "edge"); err != nil {
				edgeErr = err
				return false
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		if edgeErr != nil {
			return nil, edgeErr
		}
	}

	return out, nil
}

func saveHistory(cfg *config.Config, universe market.Universe, sel simulate.Selector, total int, frontierSizes map[string]int, startedAt time.Time, duration time.Duration) error {
	store, err := runstore.Open(cfg.HistoryDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	axesJSON, err := json.Marshal(cfg.Axes)
	if err != nil {
		return err
	}
	sizesJSON, err := json.Marshal(frontierSizes)
	if err != nil {
		return err
	}
	return store.Save(runstore.Run{
		ID:                runstore.NewRunID(),
		StartedAt:         startedAt.UTC().Format(time.RFC3339),
		DurationMS:        duration.Milliseconds(),
		Assets:            len(universe),
		PrecisionStep:     cfg.Precision,
		HullLayers:        cfg.HullLayers,
		YearsSelector:     sel.String(),
		TotalAllocations:  total,
		AxesJSON:          string(axesJSON),
		FrontierSizesJSON: string(sizesJSON),
	})
}
