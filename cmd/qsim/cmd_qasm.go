package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theapemachine/qsim"
)

func newQASMCmd() *cobra.Command {
	var draw bool

	cmd := &cobra.Command{
		Use:   "qasm",
		Short: "Print the Bell circuit as OpenQASM 2.0",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			circuit := qsim.BellCircuit()
			if err := circuit.Err(); err != nil {
				return err
			}

			if draw {
				fmt.Fprintln(cmd.OutOrStdout(), circuit.Draw())
				return nil
			}

			fmt.Fprint(cmd.OutOrStdout(), circuit.QASM())
			return nil
		},
	}

	cmd.Flags().BoolVar(&draw, "draw", false, "Print the text diagram instead")

	return cmd
}
