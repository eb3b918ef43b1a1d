package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/loop"
	"github.com/san-kum/yawrate/internal/pids"
	"github.com/san-kum/yawrate/internal/plant"
	"github.com/san-kum/yawrate/internal/profile"
)

const (
	frameRate       = 30
	historyCapacity = 240
	demandStep      = 0.1
	sparkWidth      = 60
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// LiveModel steps a yaw loop in real time and renders its state.
type LiveModel struct {
	loop     *loop.Loop
	x        plant.State
	x0       plant.State
	t, dt    float64
	index    int
	perFrame int
	running  bool
	demand   float64
	throttle float64
	cut      bool
	last     loop.Tick
	rates    []float64
	demands  []float64
	commands []float64
	resets   int
}

// NewLiveModel builds a live view around l. The loop's profile is
// replaced by a hold the keyboard adjusts.
func NewLiveModel(l *loop.Loop, x0 plant.State, cfg loop.Config, throttle float64) LiveModel {
	perFrame := int(cfg.RateHz / frameRate)
	if perFrame < 1 {
		perFrame = 1
	}

	m := LiveModel{
		loop:     l,
		x:        x0.Clone(),
		x0:       x0.Clone(),
		dt:       cfg.Dt(),
		perFrame: perFrame,
		running:  true,
		throttle: throttle,
		rates:    make([]float64, 0, historyCapacity),
		demands:  make([]float64, 0, historyCapacity),
		commands: make([]float64, 0, historyCapacity),
	}
	m.applyProfile()
	return m
}

func (m LiveModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "up", "k":
			m.demand += demandStep
			m.applyProfile()
		case "down", "j":
			m.demand -= demandStep
			m.applyProfile()
		case "c":
			m.cut = !m.cut
			m.applyProfile()
		}
	case TickMsg:
		if m.running {
			m.advance(m.perFrame)
		}
		return m, tick()
	}
	return m, nil
}

func (m *LiveModel) applyProfile() {
	throttle := m.throttle
	if m.cut {
		throttle = 0
	}
	m.loop.SetProfile(profile.Hold(throttle, m.demand))
}

func (m *LiveModel) advance(n int) {
	for i := 0; i < n; i++ {
		next, tk := m.loop.Advance(m.x, m.index, m.t, m.dt)
		if !next.IsValid() {
			m.running = false
			return
		}
		m.x = next
		m.t += m.dt
		m.index++
		m.last = tk
		if tk.Reset {
			m.resets++
		}
	}

	m.rates = push(m.rates, m.last.DPsi)
	m.demands = push(m.demands, m.last.Demand)
	m.commands = push(m.commands, m.last.Command)
}

func (m *LiveModel) reset() {
	m.x = m.x0.Clone()
	m.t = 0
	m.index = 0
	m.resets = 0
	m.last = loop.Tick{}
	m.rates = m.rates[:0]
	m.demands = m.demands[:0]
	m.commands = m.commands[:0]
	m.loop.Driver().Reset()
}

func push(buf []float64, v float64) []float64 {
	if len(buf) >= historyCapacity {
		buf = buf[1:]
	}
	return append(buf, v)
}

func (m LiveModel) View() string {
	status := StatusRunning.Render("● RUNNING")
	if !m.running {
		status = StatusPaused.Render("❚❚ PAUSED")
	}
	if m.cut {
		status += "  " + StatusAlert.Render("THROTTLE CUT")
	}

	header := headerStyle.Render(fmt.Sprintf("yaw-rate loop  t=%.2fs", m.t)) + "  " + status

	var graphs strings.Builder
	graphs.WriteString(Subtle.Render("dpsi   ") + SparklineChart(m.rates, sparkWidth) + "\n")
	graphs.WriteString(Subtle.Render("demand ") + SparklineChart(m.demands, sparkWidth) + "\n")
	graphs.WriteString(Subtle.Render("yaw    ") + SparklineChart(m.commands, sparkWidth) + "\n\n")
	graphs.WriteString(heading(m.last.Psi))

	integral := m.loop.Driver().State().State.ErrorIntegral
	stats := lipgloss.JoinVertical(lipgloss.Left,
		row("demand", fmt.Sprintf("%+.3f rad/s", m.demand)),
		row("dpsi", fmt.Sprintf("%+.3f rad/s", m.last.DPsi)),
		row("error", fmt.Sprintf("%+.3f rad/s", m.last.RateError())),
		row("yaw cmd", fmt.Sprintf("%+.4f", m.last.Command)),
		row("integral", fmt.Sprintf("%+.3f", integral)),
		row("resets", fmt.Sprintf("%d", m.resets)),
		"",
		Subtle.Render("windup"),
		ProgressBar(math.Abs(integral)/pids.WindupMax, 20),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, graphs.String(), statsStyle.Render(stats))
	help := helpStyle.Render(KeyHint.Render("space pause • r reset • ↑/↓ demand • c throttle cut • q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, help)
}

// heading draws a compass needle for psi.
func heading(psi float64) string {
	const w, h = 21, 9
	grid := make([][]rune, h)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", w))
	}

	cx, cy := w/2, h/2
	for a := 0.0; a < 2*math.Pi; a += math.Pi / 16 {
		x := cx + int(math.Round(float64(cx)*math.Sin(a)))
		y := cy - int(math.Round(float64(cy)*math.Cos(a)))
		grid[y][x] = '·'
	}

	for r := 1.0; r <= float64(cy); r++ {
		x := cx + int(math.Round(2*r*math.Sin(psi)))
		y := cy - int(math.Round(r*math.Cos(psi)))
		if x >= 0 && x < w && y >= 0 && y < h {
			grid[y][x] = '•'
		}
	}
	grid[cy][cx] = '+'

	lines := make([]string, h)
	for i, r := range grid {
		lines[i] = string(r)
	}
	return strings.Join(lines, "\n") + fmt.Sprintf("\npsi %+.1f°", flight.Rad2Deg(psi))
}
