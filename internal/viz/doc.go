// Package viz renders yaw-loop runs in the terminal.
//
//   - [Plot], [PlotRun]: asciigraph plots of stored runs
//   - [Summary]: lipgloss panel with run metadata and metrics
//   - [LiveModel]: Bubble Tea program stepping the loop in real time
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	R       - Reset plant and controller
//	Up/Down - Raise/lower the yaw-rate demand
//	C       - Toggle throttle cut
//	Q       - Quit
package viz
