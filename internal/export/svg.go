package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/yawrate/internal/loop"
)

type Point struct{ X, Y float64 }

// Series is one stroked path on a shared set of axes.
type Series struct {
	Color  string
	Points []Point
}

// RunToSVG draws the demand (yellow) and measured yaw rate (green)
// against time.
func RunToSVG(ticks []loop.Tick, width, height int) string {
	demand := Series{Color: "#ffcc00", Points: make([]Point, len(ticks))}
	rate := Series{Color: "#00ff88", Points: make([]Point, len(ticks))}
	for i, t := range ticks {
		demand.Points[i] = Point{t.Time, t.Demand}
		rate.Points[i] = Point{t.Time, t.DPsi}
	}
	return SeriesToSVG([]Series{demand, rate}, width, height)
}

// PhaseToSVG plots dpsi against the rate error, a phase view of the loop
// converging.
func PhaseToSVG(ticks []loop.Tick, width, height int) string {
	s := Series{Color: "#00ccff", Points: make([]Point, len(ticks))}
	for i, t := range ticks {
		s.Points[i] = Point{t.RateError(), t.DPsi}
	}
	return SeriesToSVG([]Series{s}, width, height)
}

// SeriesToSVG scales all series into one viewport with 10% padding.
func SeriesToSVG(series []Series, width, height int) string {
	var first *Point
	minX, maxX, minY, maxY := 0.0, 0.0, 0.0, 0.0
	for _, s := range series {
		for i := range s.Points {
			p := s.Points[i]
			if first == nil {
				first = &p
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				continue
			}
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
	}
	if first == nil {
		return ""
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color))
		for i, p := range s.Points {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
