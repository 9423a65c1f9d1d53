package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/newthinker/tickervista/internal/core"
	"github.com/newthinker/tickervista/internal/logger"
	"github.com/newthinker/tickervista/internal/report"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Fetch and analyze one symbol, printing its documents as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	symbol, err := core.NormalizeSymbol(args[0])
	if err != nil {
		return fmt.Errorf("%q: %w", args[0], err)
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	c, err := buildComponents(cfg, log)
	if err != nil {
		return err
	}

	snap, err := c.pipeline.Analyze(cmd.Context(), c.universe.Lookup(symbol), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", symbol, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report.SymbolDocuments(snap))
}
