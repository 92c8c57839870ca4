package qsim

import (
	"fmt"
)

// Instruction is one operation in a circuit.
type Instruction struct {
	Name   string    `json:"name" yaml:"name"`
	Qubits []int     `json:"qubits" yaml:"qubits"`
	Clbits []int     `json:"clbits,omitempty" yaml:"clbits,omitempty"`
	Params []float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

/*
Circuit is an ordered list of instructions over a quantum and a classical
register.

The builder methods return the circuit so calls can be chained. The first
invalid instruction is remembered and reported by Err; later instructions
are ignored once an error has been recorded.
*/
type Circuit struct {
	Name         string
	numQubits    int
	numClbits    int
	instructions []Instruction
	err          error
}

func NewCircuit(numQubits, numClbits int) *Circuit {
	c := &Circuit{numQubits: numQubits, numClbits: numClbits}
	if numQubits < 0 || numClbits < 0 {
		c.err = fmt.Errorf("%w: %d qubits, %d clbits", ErrInvalidRegister, numQubits, numClbits)
	}
	return c
}

/*
BellCircuit returns the two-qubit entangling circuit: a Hadamard on qubit 0,
a CNOT from qubit 0 to qubit 1 and a measurement of both qubits into the
matching classical bits.
*/
func BellCircuit() *Circuit {
	c := NewCircuit(2, 2)
	c.Name = "bell"
	return c.H(0).CNOT(0, 1).MeasureAll()
}

func (c *Circuit) NumQubits() int { return c.numQubits }
func (c *Circuit) NumClbits() int { return c.numClbits }

// Err returns the first error recorded while building the circuit.
func (c *Circuit) Err() error { return c.err }

// Instructions returns a copy of the circuit's instructions.
func (c *Circuit) Instructions() []Instruction {
	out := make([]Instruction, len(c.instructions))
	copy(out, c.instructions)
	return out
}

// HasMeasurements reports whether any instruction writes a classical bit.
func (c *Circuit) HasMeasurements() bool {
	for _, inst := range c.instructions {
		if inst.Name == InstructionMeasure {
			return true
		}
	}
	return false
}

// Append validates and adds an instruction.
func (c *Circuit) Append(name string, qubits, clbits []int, params ...float64) *Circuit {
	if c.err != nil {
		return c
	}

	if err := c.validate(name, qubits, clbits, params); err != nil {
		c.err = err
		return c
	}

	c.instructions = append(c.instructions, Instruction{
		Name:   name,
		Qubits: append([]int(nil), qubits...),
		Clbits: append([]int(nil), clbits...),
		Params: append([]float64(nil), params...),
	})
	return c
}

func (c *Circuit) validate(name string, qubits, clbits []int, params []float64) error {
	gate, ok := LookupGate(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownGate, name)
	}

	switch {
	case name == InstructionBarrier:
		if len(qubits) == 0 {
			return fmt.Errorf("%w: barrier needs at least one qubit", ErrQubitOutOfRange)
		}
	case len(qubits) != gate.Qubits:
		return fmt.Errorf("%w: %s acts on %d qubits, got %d", ErrArityMismatch, name, gate.Qubits, len(qubits))
	}

	if len(params) != gate.Params {
		return fmt.Errorf("%w: %s takes %d, got %d", ErrParamCount, name, gate.Params, len(params))
	}

	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if q < 0 || q >= c.numQubits {
			return fmt.Errorf("%w: %s on qubit %d of %d", ErrQubitOutOfRange, name, q, c.numQubits)
		}
		if seen[q] {
			return fmt.Errorf("%w: %s on qubit %d", ErrDuplicateQubit, name, q)
		}
		seen[q] = true
	}

	wantClbits := 0
	if name == InstructionMeasure {
		wantClbits = 1
	}
	if len(clbits) != wantClbits {
		return fmt.Errorf("%w: %s writes %d classical bits, got %d", ErrArityMismatch, name, wantClbits, len(clbits))
	}
	for _, b := range clbits {
		if b < 0 || b >= c.numClbits {
			return fmt.Errorf("%w: %s into clbit %d of %d", ErrClbitOutOfRange, name, b, c.numClbits)
		}
	}

	return nil
}

func (c *Circuit) gate1(name string, q int, params ...float64) *Circuit {
	return c.Append(name, []int{q}, nil, params...)
}

func (c *Circuit) ID(q int) *Circuit  { return c.gate1("id", q) }
func (c *Circuit) X(q int) *Circuit   { return c.gate1("x", q) }
func (c *Circuit) Y(q int) *Circuit   { return c.gate1("y", q) }
func (c *Circuit) Z(q int) *Circuit   { return c.gate1("z", q) }
func (c *Circuit) H(q int) *Circuit   { return c.gate1("h", q) }
func (c *Circuit) S(q int) *Circuit   { return c.gate1("s", q) }
func (c *Circuit) Sdg(q int) *Circuit { return c.gate1("sdg", q) }
func (c *Circuit) T(q int) *Circuit   { return c.gate1("t", q) }
func (c *Circuit) Tdg(q int) *Circuit { return c.gate1("tdg", q) }

func (c *Circuit) RX(theta float64, q int) *Circuit { return c.gate1("rx", q, theta) }
func (c *Circuit) RY(theta float64, q int) *Circuit { return c.gate1("ry", q, theta) }
func (c *Circuit) RZ(phi float64, q int) *Circuit   { return c.gate1("rz", q, phi) }

func (c *Circuit) U1(lambda float64, q int) *Circuit {
	return c.gate1("u1", q, lambda)
}

func (c *Circuit) U2(phi, lambda float64, q int) *Circuit {
	return c.gate1("u2", q, phi, lambda)
}

func (c *Circuit) U3(theta, phi, lambda float64, q int) *Circuit {
	return c.gate1("u3", q, theta, phi, lambda)
}

func (c *Circuit) CX(control, target int) *Circuit {
	return c.Append("cx", []int{control, target}, nil)
}

// CNOT is an alias for CX.
func (c *Circuit) CNOT(control, target int) *Circuit {
	return c.CX(control, target)
}

func (c *Circuit) CZ(a, b int) *Circuit {
	return c.Append("cz", []int{a, b}, nil)
}

func (c *Circuit) Swap(a, b int) *Circuit {
	return c.Append("swap", []int{a, b}, nil)
}

// Measure measures qubit q into classical bit b.
func (c *Circuit) Measure(q, b int) *Circuit {
	return c.Append(InstructionMeasure, []int{q}, []int{b})
}

// MeasureAll measures every qubit into the classical bit with the same index.
func (c *Circuit) MeasureAll() *Circuit {
	if c.err == nil && c.numClbits < c.numQubits {
		c.err = fmt.Errorf("%w: measuring %d qubits needs %d clbits, have %d", ErrClbitOutOfRange, c.numQubits, c.numQubits, c.numClbits)
		return c
	}

	for q := 0; q < c.numQubits; q++ {
		c.Measure(q, q)
	}
	return c
}

func (c *Circuit) Reset(q int) *Circuit {
	return c.Append(InstructionReset, []int{q}, nil)
}

// Barrier spans the given qubits, or the whole register when none are given.
func (c *Circuit) Barrier(qubits ...int) *Circuit {
	if len(qubits) == 0 {
		for q := 0; q < c.numQubits; q++ {
			qubits = append(qubits, q)
		}
	}
	return c.Append(InstructionBarrier, qubits, nil)
}
