package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/boristopalov/riverswim/pkg/config"
	"github.com/boristopalov/riverswim/pkg/environment"
)

func newTransitionsCmd() *cobra.Command {
	cfg := config.DefaultRiverSwimConfig()

	cmd := &cobra.Command{
		Use:   "transitions",
		Short: "Print the transition matrix of each action",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			kernel, err := environment.BuildKernel(cfg.NStates, cfg.PLeft, cfg.PRight)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Action left:\n%v\n\n", mat.Formatted(kernel.Matrix(environment.ActionLeft)))
			fmt.Fprintf(out, "Action right:\n%v\n", mat.Formatted(kernel.Matrix(environment.ActionRight)))
			return nil
		},
	}

	cmd.Flags().IntVar(&cfg.NStates, "n-states", cfg.NStates, "number of states in the river")
	cmd.Flags().Float64Var(&cfg.PRight, "p-right", cfg.PRight, "chance of moving right when swimming right")
	cmd.Flags().Float64Var(&cfg.PLeft, "p-left", cfg.PLeft, "chance of being pushed left when swimming right")
	return cmd
}
