package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qpiler/circuit"
)

const labelW = 6

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// opLabel returns a short display name for a boxed gate.
func opLabel(op circuit.Operation) string {
	name := strings.ToUpper(op.Name)
	if len(name) > cellW-2 {
		name = name[:cellW-2]
	}
	return name
}

// controlSymbol returns the wire symbol for the first operand of a
// two-qubit gate.
func controlSymbol(name string) string {
	if name == "swap" {
		return "×"
	}
	return "●"
}

// targetSymbol returns the wire symbol for the second operand of a
// two-qubit gate.
func targetSymbol(name string) string {
	switch name {
	case "cz":
		return "●"
	case "swap":
		return "×"
	case "cx", "ecr":
		return "⊕"
	}
	return "⊕"
}

// renderColumn returns one cellW-wide cell per qubit for a single
// operation column.
func renderColumn(op circuit.Operation, numQubits int) []string {
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1
	wire := strings.Repeat("─", cellW)

	cells := make([]string, numQubits)
	for q := range cells {
		cells[q] = wire
	}

	mark := func(q int, sym string, style lipgloss.Style) {
		cells[q] = strings.Repeat("─", dashL) + style.Render(sym) + strings.Repeat("─", dashR)
	}

	switch {
	case op.Name == "barrier":
		qs := op.Qubits
		if len(qs) == 0 {
			for q := 0; q < numQubits; q++ {
				mark(q, "│", dimStyle)
			}
		} else {
			for _, q := range qs {
				mark(q, "│", dimStyle)
			}
		}

	case len(op.Qubits) == 2:
		q0, q1 := op.Qubits[0], op.Qubits[1]
		style := gateStyle
		if op.Name == "swap" {
			style = swapStyle
		}
		mark(q0, controlSymbol(op.Name), style)
		mark(q1, targetSymbol(op.Name), style)
		lo, hi := q0, q1
		if lo > hi {
			lo, hi = hi, lo
		}
		for q := lo + 1; q < hi; q++ {
			mark(q, "┼", dimStyle)
		}

	case len(op.Qubits) == 1:
		name := opLabel(op)
		pad := cellW - len(name) - 2
		padL := pad / 2
		padR := pad - padL
		cells[op.Qubits[0]] = strings.Repeat("─", padL) +
			gateStyle.Render("┤"+name+"├") + strings.Repeat("─", padR)
	}

	return cells
}

// renderCircuitPanel draws one circuit as wire rows, one column per
// operation starting at column start.
func renderCircuitPanel(title string, c *circuit.Circuit, start, width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	availWidth := width - labelW - 4
	maxCols := availWidth / cellW
	if maxCols < 1 {
		maxCols = 1
	}
	if start > len(c.Ops) {
		start = len(c.Ops)
	}
	end := start + maxCols
	if end > len(c.Ops) {
		end = len(c.Ops)
	}

	if start > 0 || end < len(c.Ops) {
		fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf("  ◀ ops %d-%d of %d ▶", start, end, len(c.Ops))))
	}

	rows := make([]string, c.NumQubits)
	for q := range rows {
		label := fmt.Sprintf("q[%d]", q)
		rows[q] = qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "─"
	}
	for _, op := range c.Ops[start:end] {
		col := renderColumn(op, c.NumQubits)
		for q := range rows {
			rows[q] += col[q]
		}
	}
	for _, row := range rows {
		sb.WriteString(row + "\n")
	}

	fmt.Fprintf(&sb, "\n%s", dimStyle.Render(fmt.Sprintf("ops=%d depth=%d 2q=%d", len(c.Ops), c.Depth(), c.TwoQubitOps())))
	return circuitStyle.Width(width).Render(sb.String())
}

// renderQASMPanel shows the output program text inside a scrollable
// viewport.
func (m Model) renderQASMPanel(width int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Output QASM"))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmView.View())
	if m.qasmView.TotalLineCount() > m.qasmView.Height {
		fmt.Fprintf(&sb, "\n%s", dimStyle.Render(fmt.Sprintf("%3.0f%%", m.qasmView.ScrollPercent()*100)))
	}
	return qasmStyle.Width(width).Render(sb.String())
}

func (m Model) View() string {
	width := m.width
	if width < 40 {
		width = 100
	}
	panelW := width - 4

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("qpiler  ·  target %s", m.tgt.Name)))
	sb.WriteString("\n")
	sb.WriteString(renderCircuitPanel("Input", m.input, m.viewStart, panelW))
	sb.WriteString("\n")
	switch {
	case m.output != nil && m.showQASM:
		sb.WriteString(m.renderQASMPanel(panelW))
	case m.output != nil:
		sb.WriteString(renderCircuitPanel("Transpiled", m.output, m.viewStart, panelW))
	default:
		sb.WriteString(circuitStyle.Width(panelW).Render(dimStyle.Render("press t to transpile")))
	}
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Width(panelW).Render(m.statusLine()))
	return sb.String()
}
