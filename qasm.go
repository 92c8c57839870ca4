package qsim

import (
	"fmt"
	"strconv"
	"strings"
)

// QASM renders the circuit as an OpenQASM 2.0 program over registers q and c.
func (c *Circuit) QASM() string {
	var b strings.Builder

	b.WriteString("OPENQASM 2.0;\n")
	b.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&b, "qreg q[%d];\n", c.numQubits)
	if c.numClbits > 0 {
		fmt.Fprintf(&b, "creg c[%d];\n", c.numClbits)
	}

	for _, inst := range c.instructions {
		operands := make([]string, len(inst.Qubits))
		for i, q := range inst.Qubits {
			operands[i] = fmt.Sprintf("q[%d]", q)
		}

		if inst.Name == InstructionMeasure {
			fmt.Fprintf(&b, "measure %s -> c[%d];\n", operands[0], inst.Clbits[0])
			continue
		}

		name := inst.Name
		if len(inst.Params) > 0 {
			params := make([]string, len(inst.Params))
			for i, p := range inst.Params {
				params[i] = strconv.FormatFloat(p, 'g', -1, 64)
			}
			name += "(" + strings.Join(params, ",") + ")"
		}

		fmt.Fprintf(&b, "%s %s;\n", name, strings.Join(operands, ","))
	}

	return b.String()
}
