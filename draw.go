package qsim

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	quantumWire   = '─'
	classicalWire = '═'
)

type drawRow struct {
	label string
	fill  rune
	cells []string
}

/*
Draw renders the circuit as a text diagram, one column per instruction.

Every wire is followed by a spacer row that carries the vertical connectors
of multi-qubit gates (│) and of measurements down to their classical bit (║).
*/
func (c *Circuit) Draw() string {
	rows := make([]*drawRow, 0, 2*(c.numQubits+c.numClbits))

	addWire := func(label string, fill rune) {
		if len(rows) > 0 {
			rows = append(rows, &drawRow{fill: ' '})
		}
		rows = append(rows, &drawRow{label: label, fill: fill})
	}

	for q := 0; q < c.numQubits; q++ {
		addWire(fmt.Sprintf("q_%d:", q), quantumWire)
	}
	for b := 0; b < c.numClbits; b++ {
		addWire(fmt.Sprintf("c_%d:", b), classicalWire)
	}

	qubitRow := func(q int) int { return 2 * q }
	clbitRow := func(b int) int { return 2 * (c.numQubits + b) }

	for _, inst := range c.instructions {
		symbols := make(map[int]string)
		double := inst.Name == InstructionMeasure

		switch inst.Name {
		case "cx":
			symbols[qubitRow(inst.Qubits[0])] = "■"
			symbols[qubitRow(inst.Qubits[1])] = "X"
		case "cz":
			symbols[qubitRow(inst.Qubits[0])] = "■"
			symbols[qubitRow(inst.Qubits[1])] = "■"
		case "swap":
			symbols[qubitRow(inst.Qubits[0])] = "x"
			symbols[qubitRow(inst.Qubits[1])] = "x"
		case InstructionMeasure:
			symbols[qubitRow(inst.Qubits[0])] = "M"
			symbols[clbitRow(inst.Clbits[0])] = "╩"
		case InstructionBarrier:
			for _, q := range inst.Qubits {
				symbols[qubitRow(q)] = "░"
			}
		case InstructionReset:
			symbols[qubitRow(inst.Qubits[0])] = "|0>"
		default:
			symbols[qubitRow(inst.Qubits[0])] = "[" + gateLabel(inst) + "]"
		}

		width := 1
		top, bottom := len(rows), -1
		for row, sym := range symbols {
			width = max(width, len([]rune(sym)))
			top = min(top, row)
			bottom = max(bottom, row)
		}

		for i, row := range rows {
			if sym, ok := symbols[i]; ok {
				row.cells = append(row.cells, center(sym, width, row.fill))
				continue
			}

			if i > top && i < bottom && (inst.Name != InstructionBarrier || row.fill == ' ') {
				row.cells = append(row.cells, center(string(connector(row.fill, double, inst.Name)), width, row.fill))
				continue
			}

			row.cells = append(row.cells, strings.Repeat(string(row.fill), width+2))
		}
	}

	labelWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, len(row.label))
	}

	var b strings.Builder
	for i, row := range rows {
		line := fmt.Sprintf("%-*s ", labelWidth, row.label) + string(row.fill) + strings.Join(row.cells, "") + string(row.fill)
		b.WriteString(strings.TrimRight(line, " "))
		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// center pads sym with one fill rune on each side, plus whatever is needed to reach width.
func center(sym string, width int, fill rune) string {
	pad := width - len([]rune(sym))
	left := pad / 2
	right := pad - left
	f := string(fill)
	return strings.Repeat(f, left+1) + sym + strings.Repeat(f, right+1)
}

// connector returns the rune drawn where a vertical link crosses a row.
func connector(fill rune, double bool, name string) rune {
	if name == InstructionBarrier {
		return '░'
	}

	switch {
	case fill == ' ' && double:
		return '║'
	case fill == ' ':
		return '│'
	case fill == classicalWire && double:
		return '╬'
	case fill == classicalWire:
		return '╪'
	case double:
		return '╫'
	default:
		return '┼'
	}
}

func gateLabel(inst Instruction) string {
	label := strings.ToUpper(inst.Name)
	if len(inst.Params) == 0 {
		return label
	}

	params := make([]string, len(inst.Params))
	for i, p := range inst.Params {
		params[i] = strconv.FormatFloat(p, 'g', 4, 64)
	}
	return label + "(" + strings.Join(params, ",") + ")"
}
