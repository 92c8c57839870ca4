package qsim

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// probabilityTolerance bounds rounding slack when checking that a mixture sums to one.
const probabilityTolerance = 1e-9

/*
PauliTerm is one branch of a Pauli error channel: the Pauli string applied
and the probability of choosing it.

Labels follow the usual little-endian convention, the rightmost character
acts on the first qubit the error is attached to. "XI" therefore flips the
second qubit and leaves the first one alone.
*/
type PauliTerm struct {
	Label       string  `json:"label" yaml:"label"`
	Probability float64 `json:"probability" yaml:"probability"`
}

/*
QuantumError is a probabilistic mixture of Pauli operators. Every time the
simulator applies the error it samples exactly one term and applies its
Pauli string to the qubits of the instruction it is attached to.
*/
type QuantumError struct {
	terms     []PauliTerm
	numQubits int
}

/*
PauliError builds a Pauli error channel from its terms.

Each probability must lie in [0,1] and together they must sum to one. All
labels must have the same, non-zero length and contain only I, X, Y or Z.
Zero-probability terms are kept so the channel still reports their weight.
*/
func PauliError(terms ...PauliTerm) (*QuantumError, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: no terms", ErrInvalidProbability)
	}

	numQubits := len(terms[0].Label)
	total := 0.0

	for _, term := range terms {
		if len(term.Label) == 0 || len(term.Label) != numQubits {
			return nil, fmt.Errorf("%w: %q does not act on %d qubits", ErrInvalidPauli, term.Label, numQubits)
		}

		if strings.Trim(term.Label, "IXYZ") != "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPauli, term.Label)
		}

		if math.IsNaN(term.Probability) || term.Probability < -probabilityTolerance || term.Probability > 1+probabilityTolerance {
			return nil, fmt.Errorf("%w: %q has probability %v", ErrInvalidProbability, term.Label, term.Probability)
		}

		total += term.Probability
	}

	if math.Abs(total-1) > probabilityTolerance {
		return nil, fmt.Errorf("%w: probabilities sum to %v", ErrInvalidProbability, total)
	}

	copied := make([]PauliTerm, len(terms))
	copy(copied, terms)

	return &QuantumError{terms: copied, numQubits: numQubits}, nil
}

// BitFlipError is the single-qubit channel that applies X with probability p
// and leaves the qubit alone otherwise.
func BitFlipError(p float64) (*QuantumError, error) {
	return PauliError(
		PauliTerm{Label: "X", Probability: p},
		PauliTerm{Label: "I", Probability: 1 - p},
	)
}

func (qe *QuantumError) NumQubits() int {
	return qe.numQubits
}

// Terms returns a copy of the channel's terms in construction order.
func (qe *QuantumError) Terms() []PauliTerm {
	out := make([]PauliTerm, len(qe.terms))
	copy(out, qe.terms)
	return out
}

// Probability returns the total weight the channel assigns to label.
func (qe *QuantumError) Probability(label string) float64 {
	p := 0.0
	for _, term := range qe.terms {
		if term.Label == label {
			p += term.Probability
		}
	}
	return p
}

// Probabilities maps each distinct label to its total weight.
func (qe *QuantumError) Probabilities() map[string]float64 {
	out := make(map[string]float64, len(qe.terms))
	for _, term := range qe.terms {
		out[term.Label] += term.Probability
	}
	return out
}

// IsIdentity reports whether every term with non-zero weight is the identity.
func (qe *QuantumError) IsIdentity() bool {
	for _, term := range qe.terms {
		if term.Probability > probabilityTolerance && strings.Trim(term.Label, "I") != "" {
			return false
		}
	}
	return true
}

/*
Tensor returns the channel qe ⊗ other. The result acts on
qe.NumQubits()+other.NumQubits() qubits: other on the lower ones, qe on the
upper ones. Branches are chosen independently, so probabilities multiply.
*/
func (qe *QuantumError) Tensor(other *QuantumError) *QuantumError {
	terms := make([]PauliTerm, 0, len(qe.terms)*len(other.terms))
	for _, a := range qe.terms {
		for _, b := range other.terms {
			terms = append(terms, PauliTerm{
				Label:       a.Label + b.Label,
				Probability: a.Probability * b.Probability,
			})
		}
	}

	return &QuantumError{terms: terms, numQubits: qe.numQubits + other.numQubits}
}

// Expand returns other ⊗ qe, placing qe on the lower qubits.
func (qe *QuantumError) Expand(other *QuantumError) *QuantumError {
	return other.Tensor(qe)
}

/*
Compose returns the channel that applies qe followed by other on the same
qubits. Pauli products are taken up to global phase and identical results
are merged.
*/
func (qe *QuantumError) Compose(other *QuantumError) (*QuantumError, error) {
	if qe.numQubits != other.numQubits {
		return nil, fmt.Errorf("%w: cannot compose %d-qubit and %d-qubit errors", ErrArityMismatch, qe.numQubits, other.numQubits)
	}

	index := make(map[string]int)
	terms := make([]PauliTerm, 0, len(qe.terms)*len(other.terms))

	for _, a := range qe.terms {
		for _, b := range other.terms {
			label := multiplyLabels(a.Label, b.Label)
			p := a.Probability * b.Probability

			if i, ok := index[label]; ok {
				terms[i].Probability += p
				continue
			}

			index[label] = len(terms)
			terms = append(terms, PauliTerm{Label: label, Probability: p})
		}
	}

	return &QuantumError{terms: terms, numQubits: qe.numQubits}, nil
}

// Sample picks one label according to the channel's weights.
func (qe *QuantumError) Sample(rng *rand.Rand) string {
	r := rng.Float64()
	cumulative := 0.0

	for _, term := range qe.terms {
		cumulative += term.Probability
		if r < cumulative {
			return term.Label
		}
	}

	// Rounding can leave r just above the final cumulative sum.
	for i := len(qe.terms) - 1; i >= 0; i-- {
		if qe.terms[i].Probability > 0 {
			return qe.terms[i].Label
		}
	}
	return qe.terms[len(qe.terms)-1].Label
}

func (qe *QuantumError) String() string {
	parts := make([]string, len(qe.terms))
	for i, term := range qe.terms {
		parts[i] = fmt.Sprintf("%s:%g", term.Label, term.Probability)
	}
	return "PauliError[" + strings.Join(parts, ", ") + "]"
}

// MarshalYAML describes the channel as its list of terms.
func (qe *QuantumError) MarshalYAML() (interface{}, error) {
	return qe.Terms(), nil
}

func multiplyLabels(a, b string) string {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = multiplyPauli(a[i], b[i])
	}
	return string(out)
}

// multiplyPauli multiplies two single-qubit Paulis, dropping the phase.
func multiplyPauli(a, b byte) byte {
	switch {
	case a == 'I':
		return b
	case b == 'I':
		return a
	case a == b:
		return 'I'
	}

	// The product of two distinct non-identity Paulis is the third one.
	return byte('X' + 'Y' + 'Z' - int(a) - int(b))
}
