package main

import (
	"github.com/spf13/cobra"
	"github.com/theapemachine/qsim"
)

func newNoiseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "noise",
		Short: "Print the bit-flip noise model as YAML",
		Long: `Builds the bit-flip noise model from the configured probabilities and
prints every registered Pauli error, one entry per instruction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			model, err := qsim.NewBitFlipNoiseModel(cfg.Noise.PReset, cfg.Noise.PMeas, cfg.Noise.PGate1)
			if err != nil {
				return err
			}

			if cfg.Format == "json" {
				return encodeJSON(cmd.OutOrStdout(), model.Entries())
			}
			return encodeYAML(cmd.OutOrStdout(), model)
		},
	}

	addNoiseFlags(cmd)
	addFormatFlag(cmd)

	return cmd
}
