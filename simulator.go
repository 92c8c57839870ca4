package qsim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/theapemachine/errnie"
	"github.com/theapemachine/qsim/internal/pool"
)

const (
	// MaxQubits bounds the register size; the state vector holds 2^n amplitudes.
	MaxQubits = 24

	// shotsPerBatch is fixed so a seeded run is reproducible for any worker count.
	shotsPerBatch = 256
)

/*
Simulator executes circuits shot by shot on a state vector, injecting the
errors of an optional noise model. Shots are split into batches that run
in parallel on a worker pool; every batch draws from its own generator
seeded from the run seed and the batch index.
*/
type Simulator struct {
	noise      *NoiseModel
	seed       uint64
	workers    int
	poolConfig *pool.Config
}

type Option func(*Simulator)

// WithNoiseModel attaches a noise model. A nil model runs noiselessly.
func WithNoiseModel(m *NoiseModel) Option {
	return func(s *Simulator) {
		s.noise = m
	}
}

// WithSeed fixes the run seed. Zero picks a fresh seed per run.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.seed = seed
	}
}

func WithWorkers(n int) Option {
	return func(s *Simulator) {
		s.workers = n
	}
}

func WithPoolConfig(config *pool.Config) Option {
	return func(s *Simulator) {
		s.poolConfig = config
	}
}

func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		workers:    runtime.NumCPU(),
		poolConfig: pool.NewConfig(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.workers < 1 {
		s.workers = 1
	}

	return s
}

// NoiseModel returns the attached noise model, or nil.
func (s *Simulator) NoiseModel() *NoiseModel {
	return s.noise
}

/*
Run executes circuit for the given number of shots and returns the
histogram of classical register values. It blocks until every batch has
finished or ctx is cancelled.
*/
func (s *Simulator) Run(ctx context.Context, circuit *Circuit, shots int) (*Result, error) {
	if err := circuit.Err(); err != nil {
		return nil, fmt.Errorf("invalid circuit: %w", err)
	}

	if shots <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShots, shots)
	}

	if circuit.NumQubits() > MaxQubits {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyQubits, circuit.NumQubits(), MaxQubits)
	}

	if !circuit.HasMeasurements() {
		return nil, ErrNoMeasurements
	}

	seed := s.seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	errnie.Info(
		"Simulator.Run - circuit %q, shots %v, seed %v, workers %v, noisy %v",
		circuit.Name,
		shots,
		seed,
		s.workers,
		!s.noise.IsIdeal(),
	)

	start := time.Now()
	q := pool.NewQ(ctx, s.workers, s.poolConfig)
	defer q.Close()

	batches := (shots + shotsPerBatch - 1) / shotsPerBatch
	results := make([]chan pool.Value, batches)

	schedule := func(i int) {
		n := shotsPerBatch
		if i == batches-1 {
			n = shots - i*shotsPerBatch
		}

		rng := rand.New(rand.NewPCG(seed, uint64(i)))
		results[i] = q.Schedule(
			fmt.Sprintf("shots-%d", i),
			func() (any, error) {
				return s.runBatch(ctx, circuit, rng, n)
			},
			pool.WithRetry(1, nil),
		)
	}

	// Results are collected in order, so scheduling batch i+window after
	// batch i completes keeps the pool queue from ever filling up.
	window := min(batches, q.Capacity())
	for i := 0; i < window; i++ {
		schedule(i)
	}

	counts := make(Counts)
	for i := 0; i < batches; i++ {
		var (
			v  pool.Value
			ok bool
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case v, ok = <-results[i]:
		}

		if !ok {
			return nil, fmt.Errorf("batch %d: %w", i, errBatchLost)
		}
		if v.Error != nil {
			return nil, fmt.Errorf("batch %d: %w", i, v.Error)
		}

		for k, n := range v.Value.(Counts) {
			counts[k] += n
		}

		if next := i + window; next < batches {
			schedule(next)
		}
	}

	return &Result{
		Circuit:  circuit.Name,
		Shots:    shots,
		Seed:     seed,
		Noisy:    !s.noise.IsIdeal(),
		Counts:   counts,
		Duration: time.Since(start),
		Metrics:  q.Metrics().ExportMetrics(),
	}, nil
}

var errBatchLost = errors.New("result lost before the batch completed")

func (s *Simulator) runBatch(ctx context.Context, circuit *Circuit, rng *rand.Rand, shots int) (Counts, error) {
	counts := make(Counts)
	for i := 0; i < shots; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		counts[s.runShot(circuit, rng)]++
	}
	return counts, nil
}

// runShot executes the circuit once and returns the classical register as a bitstring.
func (s *Simulator) runShot(circuit *Circuit, rng *rand.Rand) string {
	state := NewStateVector(circuit.numQubits)
	clbits := make([]byte, circuit.numClbits)
	for i := range clbits {
		clbits[i] = '0'
	}

	for _, inst := range circuit.instructions {
		switch inst.Name {
		case InstructionBarrier:
			continue

		case InstructionMeasure:
			s.applyNoise(state, inst, rng)
			if state.Measure(inst.Qubits[0], rng.Float64()) == 1 {
				clbits[len(clbits)-1-inst.Clbits[0]] = '1'
			} else {
				clbits[len(clbits)-1-inst.Clbits[0]] = '0'
			}

		case InstructionReset:
			state.Reset(inst.Qubits[0], rng.Float64())
			s.applyNoise(state, inst, rng)

		case "cx":
			state.ApplyCX(inst.Qubits[0], inst.Qubits[1])
			s.applyNoise(state, inst, rng)

		case "cz":
			state.ApplyCZ(inst.Qubits[0], inst.Qubits[1])
			s.applyNoise(state, inst, rng)

		case "swap":
			state.ApplySwap(inst.Qubits[0], inst.Qubits[1])
			s.applyNoise(state, inst, rng)

		default:
			g, _ := LookupGate(inst.Name)
			m, _ := g.Unitary(inst.Params)
			state.Apply(m, inst.Qubits[0])
			s.applyNoise(state, inst, rng)
		}
	}

	return string(clbits)
}

func (s *Simulator) applyNoise(state *StateVector, inst Instruction, rng *rand.Rand) {
	if s.noise == nil {
		return
	}

	qe := s.noise.lookup(inst)
	if qe == nil {
		return
	}

	state.ApplyPauliString(qe.Sample(rng), inst.Qubits)
}
