package qsim

import (
	"sort"
	"time"
)

// Counts maps measured bitstrings to the number of shots that produced them.
// Bitstrings are little-endian: classical bit 0 is the rightmost character.
type Counts map[string]int

// Keys returns the observed bitstrings in lexical order.
func (c Counts) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Probabilities normalises the counts by the total number of shots.
func (c Counts) Probabilities() map[string]float64 {
	total := c.Total()
	out := make(map[string]float64, len(c))
	if total == 0 {
		return out
	}

	for k, n := range c {
		out[k] = float64(n) / float64(total)
	}
	return out
}

// MostFrequent returns the most common bitstring; ties go to the lexically smaller one.
func (c Counts) MostFrequent() (string, int) {
	best, bestN := "", -1
	for _, k := range c.Keys() {
		if c[k] > bestN {
			best, bestN = k, c[k]
		}
	}
	if bestN < 0 {
		return "", 0
	}
	return best, bestN
}

// Result is the outcome of one simulator run.
type Result struct {
	Circuit  string                 `json:"circuit,omitempty" yaml:"circuit,omitempty"`
	Shots    int                    `json:"shots" yaml:"shots"`
	Seed     uint64                 `json:"seed" yaml:"seed"`
	Noisy    bool                   `json:"noisy" yaml:"noisy"`
	Counts   Counts                 `json:"counts" yaml:"counts"`
	Duration time.Duration          `json:"duration" yaml:"duration"`
	Metrics  map[string]interface{} `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// GetCounts returns the histogram of measured bitstrings.
func (r *Result) GetCounts() Counts {
	return r.Counts
}
