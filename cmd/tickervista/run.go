package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/tickervista/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one refresh pass and publish the results",
	RunE:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	c, err := buildComponents(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := c.pipeline.Run(ctx, time.Now().UTC())
	if err != nil {
		log.Error("pipeline run failed", zap.Error(err))
		return err
	}
	if len(res.Failed) > 0 {
		log.Warn("some symbols were skipped", zap.Strings("symbols", res.Failed))
	}
	return nil
}
