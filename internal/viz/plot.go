package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/yawrate/internal/loop"
	"github.com/san-kum/yawrate/internal/storage"
)

const (
	plotHeight = 10
	plotWidth  = 80
)

func Plot(data []float64, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// PlotTracking overlays the yaw-rate demand and the measured rate.
func PlotTracking(ticks []loop.Tick) string {
	if len(ticks) == 0 {
		return ""
	}
	demand := make([]float64, len(ticks))
	rate := make([]float64, len(ticks))
	for i, t := range ticks {
		demand[i] = t.Demand
		rate[i] = t.DPsi
	}
	return asciigraph.PlotMany([][]float64{demand, rate},
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.SeriesColors(asciigraph.Yellow, asciigraph.Green),
		asciigraph.Caption("yaw rate: demand (yellow) vs dpsi (green), rad/s"),
	)
}

// PlotRun renders the tracking overlay plus command and integral plots.
func PlotRun(ticks []loop.Tick) string {
	if len(ticks) == 0 {
		return ""
	}

	command := make([]float64, len(ticks))
	integral := make([]float64, len(ticks))
	for i, t := range ticks {
		command[i] = t.Command
		integral[i] = t.Integral
	}

	var b strings.Builder
	b.WriteString(PlotTracking(ticks))
	b.WriteString("\n\n")
	b.WriteString(Plot(command, "yaw command"))
	b.WriteString("\n\n")
	b.WriteString(Plot(integral, "carried error integral"))
	b.WriteString("\n")
	return b.String()
}

// Summary renders run metadata and metrics in a panel.
func Summary(meta *storage.RunMetadata) string {
	rows := []string{
		GradientTitle.Render(meta.ID),
		row("profile", meta.Profile),
		row("rate", fmt.Sprintf("%.0f Hz", meta.RateHz)),
		row("duration", fmt.Sprintf("%.2f s", meta.Duration)),
		row("integrator", meta.Integrator),
		row("ticks", fmt.Sprintf("%d", meta.Ticks)),
	}
	if meta.Preset != "" {
		rows = append(rows, row("preset", meta.Preset))
	}

	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		rows = append(rows, "", Subtle.Render("metrics"))
	}
	for _, name := range names {
		rows = append(rows, row(name, fmt.Sprintf("%.6f", meta.Metrics[name])))
	}

	return GlassPanel.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func row(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value)
}
