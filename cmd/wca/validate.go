package main

import (
	"fmt"

	"github.com/aretw0/wca/internal/validator"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the machine for consistency",
		Long:  `Crawls the graph from the start state and reports dangling transitions, duplicate state names and unknown callables.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.machine(cmd)
			if err != nil {
				return err
			}

			for _, issue := range validator.Inspect(m.Start, a.regs) {
				if issue.Severity == validator.SeverityWarning {
					fmt.Fprintln(cmd.OutOrStdout(), issue)
				}
			}
			if err := validator.Validate(m.Start, a.regs); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Machine is valid! ✅")
			return nil
		},
	}
	addMachineFlags(cmd)
	return cmd
}
