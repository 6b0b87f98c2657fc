// Package plotdesc builds the per-axis plot descriptor a run hands to its
// rendering collaborator: a fully populated *plot.Plot with one scatter
// layer per frontier, titled and labeled, with per-point size and color
// already resolved. Non-goal per spec.md §1: rendering to raster/vector —
// nothing in this package ever calls (*plot.Plot).Save.
package plotdesc

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"frontier/internal/config"
	"frontier/internal/frontier"
)

// Build assembles the scatter plot descriptor for one axis pair over an
// already-sorted portfolio sequence (frontier.Assemble's output): title and
// axis labels name the statistic pair, and each point's glyph style carries
// its blended asset color and a size derived from allocation sparsity,
// following the original pipeline's compose_plot_data sizing rule — a
// force-plotted portfolio always draws at full size, others shrink as the
// allocation spreads across more assets.
func Build(axis config.AxisPair, portfolios []frontier.Portfolio) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", axis.Y, axis.X)
	p.X.Label.Text = axis.X
	p.Y.Label.Text = axis.Y

	pts := make(plotter.XYs, len(portfolios))
	for i, pf := range portfolios {
		x, err := pf.Stats.Field(axis.X)
		if err != nil {
			return nil, fmt.Errorf("portfolio %d: %w", i, err)
		}
		y, err := pf.Stats.Field(axis.Y)
		if err != nil {
			return nil, fmt.Errorf("portfolio %d: %w", i, err)
		}
		pts[i] = plotter.XY{X: x, Y: y}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("new scatter for axis %s/%s: %w", axis.X, axis.Y, err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return glyphStyle(portfolios[i])
	}
	p.Add(scatter)
	return p, nil
}

// glyphStyle derives one portfolio's marker: full-size circles for
// force-plotted portfolios; smaller circles, shrinking with
// the number of non-zero weights, for ordinary frontier members.
func glyphStyle(pf frontier.Portfolio) draw.GlyphStyle {
	n := pf.NumNonZeroWeights()
	if n < 1 {
		n = 1
	}
	radius := vg.Points(10)
	if !pf.AlwaysPlot {
		radius = vg.Points(5 / float64(n))
	}
	c := color.NRGBA{
		R: channel(pf.Color[0]),
		G: channel(pf.Color[1]),
		B: channel(pf.Color[2]),
		A: 255,
	}
	return draw.GlyphStyle{Color: c, Radius: radius, Shape: draw.CircleGlyph{}}
}

func channel(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(v * 255)
}
