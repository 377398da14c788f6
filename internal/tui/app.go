package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/episim/internal/config"
	"github.com/san-kum/episim/internal/experiment"
	"github.com/san-kum/episim/internal/models"
	"github.com/san-kum/episim/internal/report"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	blue    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

var modelInfo = map[string]string{
	"classic":  "disease outbreak",
	"rumor":    "rumor and debunking",
	"extended": "recruitment with immunization",
}

type screen int

const (
	screenMenu screen = iota
	screenConfig
	screenSim
)

const baseTick = 250 * time.Millisecond

// field is one editable number on the parameter screen.
type field struct {
	name string
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

type Model struct {
	screen   screen
	cursor   int
	models   []string
	registry *experiment.Registry

	cfg         *config.Config
	fields      []field
	fieldCursor int
	editing     bool
	editBuf     string

	result *experiment.Result
	err    error
	day    int
	paused bool
	speed  float64

	keys keyMap
	help help.Model

	width  int
	height int
}

func New() Model {
	reg := experiment.NewRegistry()
	return Model{
		screen:   screenMenu,
		models:   reg.ListModels(),
		registry: reg,
		speed:    1,
		keys:     defaultKeyMap(),
		help:     help.New(),
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func (m Model) tick() tea.Cmd {
	interval := time.Duration(float64(baseTick) / m.speed)
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		if m.screen != screenSim || m.paused || m.result == nil {
			return m, nil
		}
		if m.day < m.lastDay() {
			m.day++
		}
		if m.day >= m.lastDay() {
			m.paused = true
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) && !m.editing {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	switch m.screen {
	case screenMenu:
		return m.menuKey(msg)
	case screenConfig:
		return m.configKey(msg)
	case screenSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m Model) menuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.models)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		name := m.models[m.cursor]
		m.cfg = config.GetPreset(name, config.DefaultPreset(name))
		m.fields = fieldsFor(m.cfg)
		m.fieldCursor = 0
		m.err = nil
		m.screen = screenConfig
	}
	return m, nil
}

func (m Model) configKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.editing {
		switch msg.Type {
		case tea.KeyEnter:
			if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.fields[m.fieldCursor].set(m.cfg, v)
			}
			m.editing = false
			m.editBuf = ""
		case tea.KeyEsc:
			m.editing = false
			m.editBuf = ""
		case tea.KeyBackspace:
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		case tea.KeyRunes:
			for _, c := range msg.Runes {
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		m.screen = screenMenu
	case key.Matches(msg, m.keys.Up):
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.fieldCursor < len(m.fields)-1 {
			m.fieldCursor++
		}
	case key.Matches(msg, m.keys.Select):
		m.editing = true
		m.editBuf = strconv.FormatFloat(m.fields[m.fieldCursor].get(m.cfg), 'g', -1, 64)
	case key.Matches(msg, m.keys.Left):
		m.nudge(1 / 1.1)
	case key.Matches(msg, m.keys.Right):
		m.nudge(1.1)
	case key.Matches(msg, m.keys.Start):
		m.start()
		if m.err != nil {
			return m, nil
		}
		m.screen = screenSim
		return m, tea.Batch(tea.ClearScreen, m.tick())
	}
	return m, nil
}

func (m Model) simKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		m.screen = screenMenu
		m.result = nil
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if !m.paused {
			if m.day >= m.lastDay() {
				m.day = 0
			}
			return m, m.tick()
		}
	case key.Matches(msg, m.keys.Restart):
		m.day = 0
		if m.paused {
			m.paused = false
			return m, m.tick()
		}
	case key.Matches(msg, m.keys.Config):
		m.screen = screenConfig
		m.result = nil
		return m, tea.ClearScreen
	case key.Matches(msg, m.keys.Faster):
		m.speed = math.Min(m.speed*2, 16)
	case key.Matches(msg, m.keys.Slower):
		m.speed = math.Max(m.speed/2, 0.25)
	}
	return m, nil
}

// nudge scales the selected value; a zero value steps by a small amount instead.
func (m *Model) nudge(factor float64) {
	f := m.fields[m.fieldCursor]
	v := f.get(m.cfg)
	switch {
	case f.name == "horizon":
		v = math.Round(v + math.Copysign(1, factor-1))
	case v == 0 && factor > 1:
		v = 0.001
	default:
		v *= factor
	}
	f.set(m.cfg, math.Max(v, 0))
}

func (m *Model) start() {
	res, err := experiment.New(m.cfg, m.registry).Run(context.Background())
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.result = res
	m.day = 0
	m.paused = false
}

func (m Model) lastDay() int {
	if m.result == nil {
		return 0
	}
	return m.result.Trajectory.Len() - 1
}

func fieldsFor(cfg *config.Config) []field {
	fields := []field{
		{"N", func(c *config.Config) float64 { return c.Population.N }, func(c *config.Config, v float64) { c.Population.N = v }},
		{"I0", func(c *config.Config) float64 { return c.Population.I0 }, func(c *config.Config, v float64) { c.Population.I0 = v }},
		{"R0", func(c *config.Config) float64 { return c.Population.R0 }, func(c *config.Config, v float64) { c.Population.R0 = v }},
		{"horizon", func(c *config.Config) float64 { return float64(c.Horizon) }, func(c *config.Config, v float64) { c.Horizon = int(v) }},
	}
	for _, name := range cfg.RateNames() {
		fields = append(fields, field{
			name: name,
			get: func(c *config.Config) float64 {
				v, err := c.Rates[name].Eval(c.Population)
				if err != nil {
					return math.NaN()
				}
				return v
			},
			set: func(c *config.Config, v float64) { c.SetRate(name, v) },
		})
	}
	return fields
}

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenMenu:
		body = m.viewMenu()
	case screenConfig:
		body = m.viewConfig()
	case screenSim:
		body = m.viewSim()
	}
	return body + "\n" + "      " + m.help.View(m.keys) + "\n"
}

func (m Model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("           " + cyan.Render("e p i s i m") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range m.models {
		desc := modelInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-12s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-12s", name)) + dimmer.Render(desc) + "\n")
		}
	}
	return b.String()
}

func (m Model) viewConfig() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.cfg.Model) + "  " + dim.Render(modelInfo[m.cfg.Model]) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 30)) + "\n\n")

	for i, f := range m.fields {
		val := fmt.Sprintf("%12.6g", f.get(m.cfg))
		if m.editing && i == m.fieldCursor {
			val = fmt.Sprintf("%12s", m.editBuf+"▋")
		}
		if i == m.fieldCursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-10s", f.name)) + magenta.Render(val) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-10s", f.name)) + dim.Render(val) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n      " + red.Render(m.err.Error()) + "\n")
	}
	return b.String()
}

func (m Model) viewSim() string {
	res := m.result
	if res == nil {
		return ""
	}
	tr := res.Trajectory

	var b strings.Builder
	statusIcon, statusText := green.Render("●"), green.Render("running")
	if m.paused {
		statusIcon, statusText = yellow.Render("○"), yellow.Render("paused")
	}
	fmt.Fprintf(&b, "\n   %s %s  %s  %s\n", statusIcon, cyan.Render(res.Model), statusText, dim.Render(fmt.Sprintf("x%g", m.speed)))

	last := max(m.lastDay(), 1)
	filled := m.day * 36 / last
	progress := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", 36-filled))
	fmt.Fprintf(&b, "   %s %s\n\n", progress, dim.Render(fmt.Sprintf("day %d/%d", m.day, m.lastDay())))

	upto := max(m.day+1, 2)
	if upto > tr.Len() {
		upto = tr.Len()
	}
	data := make([][]float64, 0, 3)
	for idx := models.S; idx <= models.R; idx++ {
		series := tr.Series(idx)[:upto]
		for i, v := range series {
			if math.IsInf(v, 0) {
				series[i] = math.NaN()
			}
		}
		data = append(data, series)
	}
	plotWidth := max(m.width-20, 40)
	plotHeight := max(m.height-18, 8)
	b.WriteString(asciigraph.PlotMany(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red, asciigraph.Green),
		asciigraph.SeriesLegends(res.Labels[0], res.Labels[1], res.Labels[2]),
	))
	b.WriteString("\n\n")

	x := tr.States[m.day]
	styles := []lipgloss.Style{blue, red, green}
	b.WriteString("   ")
	for i, label := range res.Labels {
		b.WriteString(dim.Render(label+"=") + styles[i].Render(fmt.Sprintf("%.1f", x[i])) + "  ")
	}
	b.WriteString("\n   " + red.Render(report.Sparkline(tr.Series(models.I)[:m.day+1], 40)) + "\n")

	if m.day >= m.lastDay() {
		b.WriteString("\n" + report.Cards(res) + "\n")
	}
	return b.String()
}
