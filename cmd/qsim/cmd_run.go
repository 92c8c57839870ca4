package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/theapemachine/qsim"
	"github.com/theapemachine/qsim/internal/config"
	"github.com/theapemachine/qsim/internal/history"
	"github.com/theapemachine/qsim/internal/plot"
	"gopkg.in/yaml.v3"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate the Bell circuit and print the histogram",
		Long: `Draws the Bell circuit, runs it for --shots shots and prints the histogram.

The bit-flip noise model built from --p-reset, --p-meas and --p-gate1 is
attached by default. --ideal (or noise.enabled: false) skips it and
reproduces the noiseless 00/11 distribution.`,
		Args: cobra.NoArgs,
		RunE: runSimulation,
	}

	addRunFlags(cmd)

	return cmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("shots", 1000, "Number of shots")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 picks one)")
	cmd.Flags().Int("workers", 0, "Parallel shot workers (0 uses every CPU)")
	cmd.Flags().Bool("ideal", false, "Run on a noiseless simulator, ignoring the noise model")
	cmd.Flags().Bool("record", false, "Save the run to the history database")
	addNoiseFlags(cmd)
	addFormatFlag(cmd)
}

func addNoiseFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("p-reset", 0.03, "Bit-flip probability after reset")
	cmd.Flags().Float64("p-meas", 0.1, "Bit-flip probability before measurement")
	cmd.Flags().Float64("p-gate1", 0.05, "Bit-flip probability after each single-qubit gate")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().String("format", "text", "Output format: text, json, yaml")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}

	ideal, _ := cmd.Flags().GetBool("ideal")
	record, _ := cmd.Flags().GetBool("record")

	opts := []qsim.Option{
		qsim.WithSeed(cfg.Seed),
		qsim.WithWorkers(cfg.Workers),
	}

	if cfg.Noise.Enabled && !ideal {
		model, err := qsim.NewBitFlipNoiseModel(cfg.Noise.PReset, cfg.Noise.PMeas, cfg.Noise.PGate1)
		if err != nil {
			return err
		}
		opts = append(opts, qsim.WithNoiseModel(model))
		logger.Debug("noise model", "instructions", model.Instructions())
	}

	circuit := qsim.BellCircuit()
	out := cmd.OutOrStdout()

	if cfg.Format == "text" {
		fmt.Fprintln(out, circuit.Draw())
		fmt.Fprintln(out)
	}

	result, err := qsim.NewSimulator(opts...).Run(cmd.Context(), circuit, cfg.Shots)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	logger.Info("simulation finished",
		"shots", result.Shots,
		"seed", result.Seed,
		"noisy", result.Noisy,
		"duration", result.Duration,
	)

	if record {
		id, err := recordRun(cmd, cfg, result)
		if err != nil {
			return err
		}
		logger.Info("recorded run", "id", id, "path", cfg.HistoryPath)
	}

	return writeResult(out, cfg.Format, result)
}

func recordRun(cmd *cobra.Command, cfg *config.Config, result *qsim.Result) (int64, error) {
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	rec := &history.Record{
		Circuit: result.Circuit,
		Shots:   result.Shots,
		Seed:    result.Seed,
		Noisy:   result.Noisy,
		Counts:  result.Counts,
	}
	if result.Noisy {
		rec.PReset = cfg.Noise.PReset
		rec.PMeas = cfg.Noise.PMeas
		rec.PGate1 = cfg.Noise.PGate1
	}

	return store.Save(cmd.Context(), rec)
}

func writeResult(w io.Writer, format string, result *qsim.Result) error {
	switch format {
	case "json":
		return encodeJSON(w, result)
	case "yaml":
		return encodeYAML(w, result)
	}

	mode := "ideal"
	if result.Noisy {
		mode = "noisy"
	}

	fmt.Fprintln(w, plot.Histogram(result.Counts, plot.Options{
		Title: fmt.Sprintf("%s (%s, seed %d)", result.Circuit, mode, result.Seed),
	}))

	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
