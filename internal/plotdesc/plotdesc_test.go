package plotdesc

import (
	"testing"

	"frontier/internal/config"
	"frontier/internal/frontier"
	"frontier/internal/simulate"
)

func TestBuild_PopulatesLabelsAndPoints(t *testing.T) {
	axis := config.AxisPair{X: "stddev", Y: "gain"}
	portfolios := []frontier.Portfolio{
		{Stats: simulate.Statistics{Gain: 1.5, Stddev: 0.1}, Allocation: []int32{100, 0}, AlwaysPlot: true},
		{Stats: simulate.Statistics{Gain: 2.0, Stddev: 0.2}, Allocation: []int32{50, 50}},
	}
	p, err := Build(axis, portfolios)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if p.X.Label.Text != "stddev" {
		t.Errorf("X label = %q, want stddev", p.X.Label.Text)
	}
	if p.Y.Label.Text != "gain" {
		t.Errorf("Y label = %q, want gain", p.Y.Label.Text)
	}
}

func TestBuild_UnknownAxisFieldErrors(t *testing.T) {
	axis := config.AxisPair{X: "bogus", Y: "gain"}
	portfolios := []frontier.Portfolio{
		{Stats: simulate.Statistics{Gain: 1}, Allocation: []int32{100}},
	}
	if _, err := Build(axis, portfolios); err == nil {
		t.Fatal("expected an error for an unknown statistic field name")
	}
}

func TestGlyphStyle_AlwaysPlotIsLarger(t *testing.T) {
	forced := frontier.Portfolio{AlwaysPlot: true, Allocation: []int32{100}}
	ordinary := frontier.Portfolio{AlwaysPlot: false, Allocation: []int32{50, 50}}
	forcedStyle := glyphStyle(forced)
	ordinaryStyle := glyphStyle(ordinary)
	if forcedStyle.Radius <= ordinaryStyle.Radius {
		t.Errorf("forced radius %v should exceed ordinary radius %v", forcedStyle.Radius, ordinaryStyle.Radius)
	}
}
