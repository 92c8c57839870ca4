package qsim

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/theapemachine/errnie"
)

/*
NoiseModel maps instruction names to the error channels injected when the
simulator executes them.

Errors registered with AddAllQubitQuantumError apply wherever the
instruction appears. Errors registered with AddQuantumError apply only to
one specific qubit tuple and take precedence over the all-qubit entry.
Gate errors and reset errors act after the instruction; measurement
errors act just before the qubit is read out.
*/
type NoiseModel struct {
	allQubit map[string]*QuantumError
	local    map[string]map[string]*QuantumError
}

func NewNoiseModel() *NoiseModel {
	return &NoiseModel{
		allQubit: make(map[string]*QuantumError),
		local:    make(map[string]map[string]*QuantumError),
	}
}

/*
NewBitFlipNoiseModel builds the bit-flip model used by the sandbox.

  - reset:          X with probability pReset
  - measure:        X with probability pMeas
  - u1, u2, u3:     X with probability pGate1
  - cx:             the single-qubit gate error tensored with itself

Each channel applies uniformly to every qubit. The probabilities are passed
through untouched; PauliError rejects values outside [0,1].
*/
func NewBitFlipNoiseModel(pReset, pMeas, pGate1 float64) (*NoiseModel, error) {
	errnie.Info(
		"NewBitFlipNoiseModel - pReset %v, pMeas %v, pGate1 %v",
		pReset,
		pMeas,
		pGate1,
	)

	errorReset, err := BitFlipError(pReset)
	if err != nil {
		return nil, fmt.Errorf("reset error: %w", err)
	}

	errorMeas, err := BitFlipError(pMeas)
	if err != nil {
		return nil, fmt.Errorf("measure error: %w", err)
	}

	errorGate1, err := BitFlipError(pGate1)
	if err != nil {
		return nil, fmt.Errorf("gate error: %w", err)
	}

	errorGate2 := errorGate1.Tensor(errorGate1)

	noise := NewNoiseModel()
	registrations := []struct {
		qe           *QuantumError
		instructions []string
	}{
		{errorReset, []string{InstructionReset}},
		{errorMeas, []string{InstructionMeasure}},
		{errorGate1, []string{"u1", "u2", "u3"}},
		{errorGate2, []string{"cx"}},
	}

	for _, r := range registrations {
		if err := noise.AddAllQubitQuantumError(r.qe, r.instructions...); err != nil {
			return nil, err
		}
	}

	return noise, nil
}

/*
AddAllQubitQuantumError attaches qe to every occurrence of the named
instructions. Registering a second error for the same instruction composes
it after the existing one.
*/
func (m *NoiseModel) AddAllQubitQuantumError(qe *QuantumError, instructions ...string) error {
	for _, name := range instructions {
		if err := checkArity(qe, name, nil); err != nil {
			return err
		}

		existing, ok := m.allQubit[name]
		if !ok {
			m.allQubit[name] = qe
			continue
		}

		composed, err := existing.Compose(qe)
		if err != nil {
			return err
		}
		m.allQubit[name] = composed
	}

	return nil
}

// AddQuantumError attaches qe to instruction only when it acts on exactly qubits.
func (m *NoiseModel) AddQuantumError(qe *QuantumError, instruction string, qubits []int) error {
	if err := checkArity(qe, instruction, qubits); err != nil {
		return err
	}

	key := qubitsKey(qubits)
	if m.local[instruction] == nil {
		m.local[instruction] = make(map[string]*QuantumError)
	}

	existing, ok := m.local[instruction][key]
	if !ok {
		m.local[instruction][key] = qe
		return nil
	}

	composed, err := existing.Compose(qe)
	if err != nil {
		return err
	}
	m.local[instruction][key] = composed
	return nil
}

// ErrorFor returns the error registered for instruction on qubits, or nil.
func (m *NoiseModel) ErrorFor(instruction string, qubits []int) *QuantumError {
	if m == nil {
		return nil
	}

	if byQubits, ok := m.local[instruction]; ok {
		if qe, ok := byQubits[qubitsKey(qubits)]; ok {
			return qe
		}
	}

	return m.allQubit[instruction]
}

// lookup resolves the error for an executed instruction, falling back from
// the instruction's own name to its noise family.
func (m *NoiseModel) lookup(inst Instruction) *QuantumError {
	if qe := m.ErrorFor(inst.Name, inst.Qubits); qe != nil {
		return qe
	}

	if g, ok := LookupGate(inst.Name); ok && g.Family != inst.Name {
		return m.ErrorFor(g.Family, inst.Qubits)
	}

	return nil
}

// Instructions lists every instruction name with a registered error.
func (m *NoiseModel) Instructions() []string {
	seen := make(map[string]bool)
	for name := range m.allQubit {
		seen[name] = true
	}
	for name := range m.local {
		seen[name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsIdeal reports whether every registered error is the identity channel.
func (m *NoiseModel) IsIdeal() bool {
	if m == nil {
		return true
	}

	for _, qe := range m.allQubit {
		if !qe.IsIdentity() {
			return false
		}
	}
	for _, byQubits := range m.local {
		for _, qe := range byQubits {
			if !qe.IsIdentity() {
				return false
			}
		}
	}
	return true
}

// NoiseEntry is the serialisable form of one registered error.
type NoiseEntry struct {
	Instruction string      `json:"instruction" yaml:"instruction"`
	Qubits      []int       `json:"qubits,omitempty" yaml:"qubits,omitempty"`
	Terms       []PauliTerm `json:"terms" yaml:"terms"`
}

// Entries lists the registered errors sorted by instruction, all-qubit errors first.
func (m *NoiseModel) Entries() []NoiseEntry {
	var entries []NoiseEntry

	for _, name := range m.Instructions() {
		if qe, ok := m.allQubit[name]; ok {
			entries = append(entries, NoiseEntry{Instruction: name, Terms: qe.Terms()})
		}

		keys := make([]string, 0, len(m.local[name]))
		for key := range m.local[name] {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			entries = append(entries, NoiseEntry{
				Instruction: name,
				Qubits:      parseQubitsKey(key),
				Terms:       m.local[name][key].Terms(),
			})
		}
	}

	return entries
}

// MarshalYAML describes the model as its list of entries.
func (m *NoiseModel) MarshalYAML() (interface{}, error) {
	return m.Entries(), nil
}

func checkArity(qe *QuantumError, instruction string, qubits []int) error {
	if qubits != nil && len(qubits) != qe.NumQubits() {
		return fmt.Errorf("%w: %d-qubit error on %d qubits for %s", ErrArityMismatch, qe.NumQubits(), len(qubits), instruction)
	}

	g, ok := LookupGate(instruction)
	if !ok || instruction == InstructionBarrier {
		// Custom instruction names are accepted as-is.
		return nil
	}

	if g.Qubits != qe.NumQubits() {
		return fmt.Errorf("%w: %d-qubit error on %d-qubit instruction %s", ErrArityMismatch, qe.NumQubits(), g.Qubits, instruction)
	}
	return nil
}

func qubitsKey(qubits []int) string {
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = strconv.Itoa(q)
	}
	return strings.Join(parts, ",")
}

func parseQubitsKey(key string) []int {
	if key == "" {
		return nil
	}

	parts := strings.Split(key, ",")
	qubits := make([]int, 0, len(parts))
	for _, p := range parts {
		q, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		qubits = append(qubits, q)
	}
	return qubits
}
