package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/yawrate/internal/loop"
	"github.com/san-kum/yawrate/internal/storage"
)

func sampleTicks(n int) []loop.Tick {
	ticks := make([]loop.Tick, n)
	for i := range ticks {
		ticks[i] = loop.Tick{
			Index:    i,
			Time:     float64(i) * 0.002,
			Demand:   0.5,
			DPsi:     0.5 * float64(i) / float64(n),
			Command:  0.1,
			Integral: float64(i) * 0.01,
		}
	}
	return ticks
}

func TestPlotEmpty(t *testing.T) {
	if got := Plot(nil, "x"); got != "" {
		t.Errorf("expected empty plot, got %q", got)
	}
	if got := PlotTracking(nil); got != "" {
		t.Errorf("expected empty tracking plot, got %q", got)
	}
	if got := PlotRun(nil); got != "" {
		t.Errorf("expected empty run plot, got %q", got)
	}
}

func TestPlotRunCaptions(t *testing.T) {
	out := PlotRun(sampleTicks(50))
	for _, want := range []string{"yaw rate", "yaw command", "carried error integral"} {
		if !strings.Contains(out, want) {
			t.Errorf("plot missing caption %q", want)
		}
	}
}

func TestSummary(t *testing.T) {
	meta := &storage.RunMetadata{
		ID:         "yaw_abcd1234",
		Preset:     "step",
		Profile:    "step",
		RateHz:     500,
		Duration:   2,
		Integrator: "rk4",
		Ticks:      1000,
		Metrics:    map[string]float64{"tracking_rms": 0.0123, "windup_resets": 2},
	}

	out := Summary(meta)
	for _, want := range []string{"yaw_abcd1234", "500 Hz", "rk4", "tracking_rms", "windup_resets"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
	if strings.Index(out, "tracking_rms") > strings.Index(out, "windup_resets") {
		t.Error("metrics not sorted")
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 10); got != strings.Repeat("─", 10) {
		t.Errorf("empty sparkline = %q", got)
	}
	out := SparklineChart([]float64{0, 1, 2, 3, 4, 5}, 4)
	if !strings.Contains(out, "█") {
		t.Errorf("missing peak in %q", out)
	}
}

func TestProgressBarBounds(t *testing.T) {
	for _, f := range []float64{-1, 0, 0.5, 1, 3} {
		if ProgressBar(f, 10) == "" {
			t.Errorf("empty bar for %g", f)
		}
	}
}
