package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/wca"
	httpAdapter "github.com/aretw0/wca/internal/adapters/http"
	"github.com/aretw0/wca/internal/presentation/tui"
	"github.com/aretw0/wca/pkg/fsm"
	"github.com/aretw0/wca/pkg/runner"
	"github.com/aretw0/wca/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Serves sessions of the machine over HTTP: frames are posted or streamed over a WebSocket, instructions come back as JSON.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listen := a.cfg.Listen
			if v, _ := cmd.Flags().GetString("listen"); v != "" {
				listen = v
			}

			m, err := a.machine(cmd)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := runner.NewMetrics(reg)
			if err != nil {
				return err
			}

			mgr, err := session.NewManager(cmd.Context(), m.Start,
				session.WithLogger(a.logger),
				session.WithRunnerOptions(runner.WithMetrics(metrics)),
			)
			if err != nil {
				return err
			}

			handler := httpAdapter.NewHandler(mgr, *m,
				httpAdapter.WithLogger(a.logger),
				httpAdapter.WithGatherer(reg),
				httpAdapter.WithRegistries(a.regs),
			)

			srv := &http.Server{
				Addr:              listen,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			if tui.IsTerminal(cmd.OutOrStdout()) {
				tui.PrintBanner(cmd.OutOrStdout(), wca.Version)
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				a.logger.Info("server starting", "addr", srv.Addr, "machine", m.Name)
				serverErrors <- srv.ListenAndServe()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Blocking main and waiting for shutdown.
			select {
			case err := <-serverErrors:
				return fmt.Errorf("server error: %w", err)

			case <-ctx.Done():
				a.logger.Info("shutdown started")

				// Give outstanding requests a deadline for completion.
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(sctx); err != nil {
					a.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
					if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
				}
				if err := fsm.CleanAll(sctx, m.Start); err != nil {
					a.logger.Warn("releasing callables failed", "err", err)
				}
				a.logger.Info("server stopped gracefully")
				return nil
			}
		},
	}
	addMachineFlags(cmd)
	cmd.Flags().StringP("listen", "l", "", "Address to listen on (defaults to the config)")
	return cmd
}
