package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forgo/seedbed/internal/provision"
	"github.com/forgo/seedbed/internal/seed"
	"github.com/forgo/seedbed/internal/testing/testenv"
)

var (
	addressFile string
	metricsAddr string
)

// upCmd provisions and seeds a store, then waits for a signal
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start a seeded store and keep it running until interrupted",
	Long: `Starts an ephemeral SurrealDB with the configured backend, seeds every
fixture set and prints the store address on stdout.

The store is stopped on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runUp,
}

func init() {
	upCmd.Flags().StringVar(&addressFile, "address-file", "", "Write the store address to this file")
	upCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
}

func runUp(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	env, err := testenv.New(testenv.Options{
		Config:  cfg,
		Logger:  logger,
		Metrics: seed.NewMetrics(reg),
	})
	if err != nil {
		return err
	}

	teardown := func() error {
		tctx, cancel := context.WithTimeout(context.Background(), cfg.Provision.StopTimeout+5*time.Second)
		defer cancel()
		return env.Teardown(tctx)
	}

	if err := env.Setup(ctx); err != nil {
		_ = teardown()
		return err
	}
	handle := env.Handle()
	if !handle.Running() {
		_ = teardown()
		return errors.New("store is not running")
	}

	if addressFile != "" {
		if err := provision.WriteAddressFile(addressFile, handle); err != nil {
			_ = teardown()
			return err
		}
	}

	var srv *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		srv = &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("serving metrics", zap.String("addr", metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	fmt.Fprintln(cmd.OutOrStdout(), handle.Address)
	logger.Info("store up",
		zap.String("address", handle.Address),
		zap.String("namespace", env.Namespace()),
		zap.String("backend", handle.Backend),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}
	return teardown()
}
