package qsim

import "errors"

var (
	// ErrInvalidProbability is returned when an error channel is built from
	// probabilities outside [0,1] or that do not sum to one.
	ErrInvalidProbability = errors.New("invalid probability")

	// ErrInvalidPauli is returned for Pauli labels containing anything but I, X, Y and Z.
	ErrInvalidPauli = errors.New("invalid pauli label")

	// ErrArityMismatch is returned when an error channel acts on a different
	// number of qubits than the instruction it is attached to.
	ErrArityMismatch = errors.New("error channel arity does not match instruction")

	ErrQubitOutOfRange = errors.New("qubit index out of range")
	ErrClbitOutOfRange = errors.New("classical bit index out of range")
	ErrDuplicateQubit  = errors.New("duplicate qubit in instruction")
	ErrUnknownGate     = errors.New("unknown gate")
	ErrParamCount      = errors.New("wrong number of gate parameters")
	ErrNoMeasurements  = errors.New("circuit has no measurements")
	ErrInvalidShots    = errors.New("shots must be positive")
	ErrTooManyQubits   = errors.New("circuit exceeds simulator qubit limit")
	ErrInvalidRegister = errors.New("register size must not be negative")
)
