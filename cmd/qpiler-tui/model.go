// qpiler-tui is a terminal inspector: it shows a circuit before and
// after transpilation side by side and lets the effort level be
// cycled interactively.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"qpiler"
	"qpiler/circuit"
	"qpiler/passes"
	"qpiler/target"
)

// Model represents the TUI application state.
type Model struct {
	input  *circuit.Circuit
	output *circuit.Circuit
	tgt    *target.Target

	effort    int
	seed      int64
	took      time.Duration
	props     map[string]any
	statusErr string

	viewStart int // first op column currently visible
	showQASM  bool
	qasmView  viewport.Model
	width     int
	height    int
}

func initialModel(c *circuit.Circuit, tgt *target.Target) Model {
	return Model{input: c, tgt: tgt, effort: 1, seed: 7, qasmView: viewport.New(80, 16)}
}

func (m Model) Init() tea.Cmd { return nil }

func (m *Model) transpile() {
	start := time.Now()
	res, err := qpiler.Transpile(context.Background(), m.input, m.tgt, qpiler.Options{
		Effort: m.effort,
		Seed:   m.seed,
	})
	m.took = time.Since(start)
	if err != nil {
		m.output = nil
		m.statusErr = err.Error()
		return
	}
	m.statusErr = ""
	m.output = res.Circuit
	m.props = res.Properties
	m.qasmView.SetContent(m.output.ToQASM())
	m.qasmView.GotoTop()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.qasmView.Width = msg.Width - 8
		m.qasmView.Height = msg.Height / 3
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "t", "enter":
			m.transpile()
		case "e":
			m.effort = (m.effort + 1) % 4
		case "s":
			m.seed++
		case "tab":
			m.showQASM = !m.showQASM
		case "left", "h":
			if m.viewStart > 0 {
				m.viewStart--
			}
		case "right", "l":
			m.viewStart++
		case "home":
			m.viewStart = 0
		}
	}
	if m.showQASM {
		var cmd tea.Cmd
		m.qasmView, cmd = m.qasmView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) statusLine() string {
	if m.statusErr != "" {
		return errStyle.Render("error: " + m.statusErr)
	}
	s := fmt.Sprintf("effort=%d  seed=%d", m.effort, m.seed)
	if m.output != nil {
		s += fmt.Sprintf("  ops=%d  depth=%v  2q=%v  took=%s",
			len(m.output.Ops), m.props[passes.PropDepth], m.props[passes.PropTwoQubitOps], m.took.Round(time.Millisecond))
	}
	return s + dimStyle.Render("   t: transpile  e: effort  s: seed  tab: qasm  ←/→: scroll  q: quit")
}

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: qpiler-tui <circuit.qasm> <target.yaml>")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	c, err := circuit.ParseQASM(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	tgt, err := target.LoadYAML(os.Args[2])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(c, tgt), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
