package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidleathers/decision-risk-engine/internal/infrastructure/config"
	"github.com/davidleathers/decision-risk-engine/internal/infrastructure/telemetry"
	"github.com/davidleathers/decision-risk-engine/internal/metrics"
	"github.com/davidleathers/decision-risk-engine/internal/service"
)

var (
	cfg       *config.Config
	logger    *zap.Logger
	factories *service.ServiceFactories
	provider  *telemetry.Provider
)

var rootCmd = &cobra.Command{
	Use:   "finengine",
	Short: "Financial modeling and risk assessment engine",
	Long: `Evaluates investment cash flows (NPV, IRR, payback, profitability index,
projections, scenario and sensitivity analysis) and assesses risk (factor
scoring, Monte Carlo simulation, mitigation planning, compliance exposure and
comprehensive reports).

Inputs are YAML documents passed with --input; results are printed as JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		l, err := telemetry.NewLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l

		provider, err = telemetry.InitializeOpenTelemetry(cmd.Context(), cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}

		registry, err := metrics.NewRegistryWithMeter(provider.Meter("finengine"))
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}

		factories, err = service.NewServiceFactories(cfg, logger, registry)
		if err != nil {
			return fmt.Errorf("init services: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if provider != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(ctx); err != nil {
				logger.Warn("telemetry shutdown failed", zap.Error(err))
			}
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a YAML configuration file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
