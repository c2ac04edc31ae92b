package main

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/wca/internal/cli"
	"github.com/aretw0/wca/internal/config"
	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/spf13/cobra"
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	regs   *callable.Registries
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "wca",
		Short:         "wca runs wearable cognitive assistants described as state machines",
		Long:          `wca builds, inspects and runs finite state machines that turn sensor frames into user instructions.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides the config)")
	rootCmd.PersistentFlags().String("store", "", "Store backend: memory, file, bolt or redis (overrides the config)")
	rootCmd.PersistentFlags().String("store-path", "", "Directory or database path of the file and bolt stores")

	rootCmd.AddCommand(
		newExampleCmd(a),
		newInspectCmd(a),
		newGraphCmd(a),
		newValidateCmd(a),
		newRunCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store.Backend = v
	}
	if v, _ := cmd.Flags().GetString("store-path"); v != "" {
		cfg.Store.Path = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.regs = cfg, logger, cli.NewRegistries(cfg)
	return nil
}

// addMachineFlags registers the flags selecting which machine to load.
func addMachineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Read the machine from an encoded file instead of the store")
	cmd.Flags().StringP("name", "n", "", "Machine name in the store (defaults to the config)")
}

// machine loads the machine selected by the flags of cmd.
func (a *app) machine(cmd *cobra.Command) (*fsm.Machine, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		return cli.ReadMachineFile(path, a.regs)
	}

	name := a.cfg.Machine
	if v, _ := cmd.Flags().GetString("name"); v != "" {
		name = v
	}

	store, closer, err := cli.OpenStore(a.cfg.Store, a.regs)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	m, err := cli.LoadMachine(cmd.Context(), store, name, a.regs)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'wca example' to create one)", err)
	}
	return m, nil
}
