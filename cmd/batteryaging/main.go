package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kacperjurak/batteryaging/internal/pipeline"
	"github.com/kacperjurak/batteryaging/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Error("battery aging analysis failed")
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batteryaging",
		Short: "Chart battery aging from the NASA battery dataset",
		Long: `batteryaging aggregates per-test impedance measurements of the NASA battery
dataset and writes an interactive chart of impedance, electrolyte resistance
and charge-transfer resistance against relative battery age.

Configuration is read from the environment:
  BATTERY_DATASET_DIR   extracted dataset directory (skips the download)
  BATTERY_DATASET_URL   dataset archive URL
  BATTERY_CACHE_DIR     download cache directory
  KAGGLE_USERNAME       Kaggle API user for the download
  KAGGLE_KEY            Kaggle API key for the download
  BATTERY_OUTPUT        output document (default battery_aging_analysis.html)
  BATTERY_LOG_LEVEL     debug, info, warn, error
  BATTERY_PROGRESS      show a progress bar while aggregating
  BATTERY_TREND         exp, linear or none
  BATTERY_HTTP_TIMEOUT  download timeout, e.g. 10m
  BATTERY_PLOTLY_FILE   local plotly.js bundle to inline
  BATTERY_PLOTLY_URL    plotly.js bundle downloaded into the cache
  BATTERY_PLOTLY_CDN    reference the bundle URL instead of inlining it`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			setupLogging(cfg)

			_, err = pipeline.New(pipeline.Options{
				Config: cfg,
				Out:    cmd.OutOrStdout(),
			}).Run(cmd.Context())
			return err
		},
	}
}

func setupLogging(cfg *config.Config) {
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(cfg.LogLevel)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
}
