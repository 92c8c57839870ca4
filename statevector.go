package qsim

import (
	"math"
	"math/cmplx"
)

/*
StateVector holds the 2^n complex amplitudes of an n-qubit register. Basis
state i has qubit k set when bit k of i is set, so qubit 0 is the least
significant bit.
*/
type StateVector struct {
	amplitudes []complex128
	numQubits  int
}

// NewStateVector returns the register initialised to |0...0⟩.
func NewStateVector(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{amplitudes: amps, numQubits: numQubits}
}

func (s *StateVector) NumQubits() int {
	return s.numQubits
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.amplitudes))
	copy(amps, s.amplitudes)
	return &StateVector{amplitudes: amps, numQubits: s.numQubits}
}

// Amplitudes returns a copy of the amplitudes.
func (s *StateVector) Amplitudes() []complex128 {
	out := make([]complex128, len(s.amplitudes))
	copy(out, s.amplitudes)
	return out
}

// Probabilities returns |amplitude|² for every basis state.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.amplitudes))
	for i, a := range s.amplitudes {
		probs[i] = sqAbs(a)
	}
	return probs
}

// Apply applies a single-qubit operator to qubit q.
func (s *StateVector) Apply(m Matrix, q int) {
	bit := 1 << q
	for i := range s.amplitudes {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := s.amplitudes[i], s.amplitudes[j]
		s.amplitudes[i] = m[0][0]*a0 + m[0][1]*a1
		s.amplitudes[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

func (s *StateVector) ApplyCX(control, target int) {
	cbit, tbit := 1<<control, 1<<target
	for i := range s.amplitudes {
		if i&cbit != 0 && i&tbit == 0 {
			j := i | tbit
			s.amplitudes[i], s.amplitudes[j] = s.amplitudes[j], s.amplitudes[i]
		}
	}
}

func (s *StateVector) ApplyCZ(a, b int) {
	mask := 1<<a | 1<<b
	for i := range s.amplitudes {
		if i&mask == mask {
			s.amplitudes[i] = -s.amplitudes[i]
		}
	}
}

func (s *StateVector) ApplySwap(a, b int) {
	abit, bbit := 1<<a, 1<<b
	for i := range s.amplitudes {
		if i&abit != 0 && i&bbit == 0 {
			j := i ^ abit ^ bbit
			s.amplitudes[i], s.amplitudes[j] = s.amplitudes[j], s.amplitudes[i]
		}
	}
}

// ApplyPauli applies one of I, X, Y or Z to qubit q.
func (s *StateVector) ApplyPauli(p byte, q int) {
	switch p {
	case 'X':
		s.Apply(gates["x"].matrix(nil), q)
	case 'Y':
		s.Apply(gates["y"].matrix(nil), q)
	case 'Z':
		s.Apply(gates["z"].matrix(nil), q)
	}
}

// ApplyPauliString applies label to qubits, rightmost character on qubits[0].
func (s *StateVector) ApplyPauliString(label string, qubits []int) {
	n := len(label)
	for k, q := range qubits {
		s.ApplyPauli(label[n-1-k], q)
	}
}

// ProbabilityOne returns the probability of measuring qubit q as 1.
func (s *StateVector) ProbabilityOne(q int) float64 {
	bit := 1 << q
	p := 0.0
	for i, a := range s.amplitudes {
		if i&bit != 0 {
			p += sqAbs(a)
		}
	}
	return p
}

/*
Measure collapses qubit q and returns the outcome. r is a uniform sample
from [0,1); the outcome is 1 when r falls below the probability of 1.
*/
func (s *StateVector) Measure(q int, r float64) int {
	p1 := s.ProbabilityOne(q)

	outcome := 0
	norm := 1 - p1
	if r < p1 {
		outcome = 1
		norm = p1
	}

	scale := complex(1/math.Sqrt(norm), 0)
	bit := 1 << q
	for i := range s.amplitudes {
		if (i&bit != 0) == (outcome == 1) {
			s.amplitudes[i] *= scale
		} else {
			s.amplitudes[i] = 0
		}
	}

	return outcome
}

// Reset forces qubit q to |0⟩ by measuring it and flipping a 1.
func (s *StateVector) Reset(q int, r float64) {
	if s.Measure(q, r) == 1 {
		s.ApplyPauli('X', q)
	}
}

func sqAbs(a complex128) float64 {
	m := cmplx.Abs(a)
	return m * m
}
