package main

import (
	"fmt"
	"os"

	"github.com/aretw0/wca/internal/cli"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/spf13/cobra"
)

func newExampleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Write a sample machine",
		Long:  `Builds a welcome, detect and confirm machine and saves it to the store, or to a file with --out.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			detector, _ := cmd.Flags().GetString("detector")
			class, _ := cmd.Flags().GetString("class")
			out, _ := cmd.Flags().GetString("out")
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = a.cfg.Machine
			}

			start, err := cli.ExampleMachine(cli.ExampleOptions{Detector: detector, Class: class})
			if err != nil {
				return err
			}
			data, err := fsm.Encode(name, start, a.regs)
			if err != nil {
				return err
			}

			if out != "" {
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote machine %q to %s (%d bytes)\n", name, out, len(data))
				return nil
			}

			store, closer, err := cli.OpenStore(a.cfg.Store, a.regs)
			if err != nil {
				return err
			}
			defer closer.Close()

			if err := store.Save(cmd.Context(), name, data); err != nil {
				return err
			}
			a.logger.Info("machine saved", "name", name, "backend", a.cfg.Store.Backend, "bytes", len(data))
			fmt.Fprintf(cmd.OutOrStdout(), "Saved machine %q (%d bytes)\n", name, len(data))
			return nil
		},
	}

	cmd.Flags().String("detector", "", "Detect objects with this configured service instead of decoding images")
	cmd.Flags().String("class", "person", "Object class the detector waits for")
	cmd.Flags().StringP("out", "o", "", "Write the encoded machine to this file")
	cmd.Flags().StringP("name", "n", "", "Machine name (defaults to the config)")
	return cmd
}
