package qsim

import (
	"math"
	"math/cmplx"
	"sort"
)

// Matrix is a single-qubit operator in the computational basis.
type Matrix [2][2]complex128

/*
Gate describes an instruction the simulator understands.

Family names the noise basis gate the instruction is charged as: a noise
model that registers an error on "u2" also applies it to "h", mirroring how
a transpiler would lower h to u2(0, π) before execution.
*/
type Gate struct {
	Name   string
	Qubits int
	Params int
	Family string
	matrix func(params []float64) Matrix
}

// Unitary returns the single-qubit matrix for the given parameters. It
// returns false for multi-qubit gates and non-unitary instructions.
func (g Gate) Unitary(params []float64) (Matrix, bool) {
	if g.matrix == nil {
		return Matrix{}, false
	}
	return g.matrix(params), true
}

const (
	InstructionMeasure = "measure"
	InstructionReset   = "reset"
	InstructionBarrier = "barrier"
)

var invSqrt2 = complex(1/math.Sqrt2, 0)

func constant(m Matrix) func([]float64) Matrix {
	return func([]float64) Matrix { return m }
}

func phase(theta float64) complex128 {
	return cmplx.Exp(complex(0, theta))
}

func u3(theta, phi, lambda float64) Matrix {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return Matrix{
		{c, -phase(lambda) * s},
		{phase(phi) * s, phase(phi+lambda) * c},
	}
}

var gates = map[string]Gate{
	"id":  {Name: "id", Qubits: 1, Family: "id", matrix: constant(Matrix{{1, 0}, {0, 1}})},
	"x":   {Name: "x", Qubits: 1, Family: "u3", matrix: constant(Matrix{{0, 1}, {1, 0}})},
	"y":   {Name: "y", Qubits: 1, Family: "u3", matrix: constant(Matrix{{0, -1i}, {1i, 0}})},
	"z":   {Name: "z", Qubits: 1, Family: "u1", matrix: constant(Matrix{{1, 0}, {0, -1}})},
	"h":   {Name: "h", Qubits: 1, Family: "u2", matrix: constant(Matrix{{invSqrt2, invSqrt2}, {invSqrt2, -invSqrt2}})},
	"s":   {Name: "s", Qubits: 1, Family: "u1", matrix: constant(Matrix{{1, 0}, {0, 1i}})},
	"sdg": {Name: "sdg", Qubits: 1, Family: "u1", matrix: constant(Matrix{{1, 0}, {0, -1i}})},
	"t":   {Name: "t", Qubits: 1, Family: "u1", matrix: constant(Matrix{{1, 0}, {0, phase(math.Pi / 4)}})},
	"tdg": {Name: "tdg", Qubits: 1, Family: "u1", matrix: constant(Matrix{{1, 0}, {0, phase(-math.Pi / 4)}})},
	"rx": {Name: "rx", Qubits: 1, Params: 1, Family: "u3", matrix: func(p []float64) Matrix {
		return u3(p[0], -math.Pi/2, math.Pi/2)
	}},
	"ry": {Name: "ry", Qubits: 1, Params: 1, Family: "u3", matrix: func(p []float64) Matrix {
		return u3(p[0], 0, 0)
	}},
	"rz": {Name: "rz", Qubits: 1, Params: 1, Family: "u1", matrix: func(p []float64) Matrix {
		return Matrix{{phase(-p[0] / 2), 0}, {0, phase(p[0] / 2)}}
	}},
	"u1": {Name: "u1", Qubits: 1, Params: 1, Family: "u1", matrix: func(p []float64) Matrix {
		return Matrix{{1, 0}, {0, phase(p[0])}}
	}},
	"u2": {Name: "u2", Qubits: 1, Params: 2, Family: "u2", matrix: func(p []float64) Matrix {
		return u3(math.Pi/2, p[0], p[1])
	}},
	"u3": {Name: "u3", Qubits: 1, Params: 3, Family: "u3", matrix: func(p []float64) Matrix {
		return u3(p[0], p[1], p[2])
	}},
	"cx":   {Name: "cx", Qubits: 2, Family: "cx"},
	"cz":   {Name: "cz", Qubits: 2, Family: "cx"},
	"swap": {Name: "swap", Qubits: 2, Family: "cx"},

	InstructionMeasure: {Name: InstructionMeasure, Qubits: 1, Family: InstructionMeasure},
	InstructionReset:   {Name: InstructionReset, Qubits: 1, Family: InstructionReset},
	// Barriers take any number of qubits; Qubits is the minimum.
	InstructionBarrier: {Name: InstructionBarrier, Qubits: 1, Family: InstructionBarrier},
}

// LookupGate returns the gate registered under name.
func LookupGate(name string) (Gate, bool) {
	g, ok := gates[name]
	return g, ok
}

// GateNames lists every instruction the simulator supports.
func GateNames() []string {
	names := make([]string, 0, len(gates))
	for name := range gates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
