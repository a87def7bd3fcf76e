// Package main provides the CLI entry point for the metrics pipeline: it
// resolves the newest import workbook, computes the per-program views and
// exports them for the dashboard.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"qadash/internal/config"
	"qadash/internal/dataprocessing"
	"qadash/internal/exporter"
	"qadash/internal/infrastructure"
)

var (
	configFile string
	dataDir    string
	outJSON    string
	outCSV     string
	workers    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "processor",
		Short: "Compute degree-program QA metrics from the newest import workbook",
		Long: `processor resolves the newest "Import <YYYY>" workbook in the data
directory, parses its fixed layout and computes the twelve per-program
metrics the dashboard renders. Results are written as JSON and/or CSV.`,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "qadash.yaml", "Config file path")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory override")
	rootCmd.Flags().StringVar(&outJSON, "out-json", "metrics.json", "JSON output path (empty to skip)")
	rootCmd.Flags().StringVar(&outCSV, "out-csv", "", "CSV output path (empty to skip)")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Worker count override")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.Source.DataDir = dataDir
	}
	if workers > 0 {
		cfg.Engine.Workers = workers
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting metrics pipeline",
		slog.String("data_dir", cfg.Source.DataDir),
		slog.String("sheet", cfg.Source.SheetName),
		slog.Int("workers", cfg.Engine.Workers))

	pipeline := dataprocessing.NewPipeline(cfg, logger)
	result, err := pipeline.Run(context.Background())
	if err != nil {
		return err
	}

	writer := exporter.NewWriter(logger)
	if outJSON != "" {
		if err := writer.WriteJSON(outJSON, result); err != nil {
			return err
		}
	}
	if outCSV != "" {
		if err := writer.WriteCSV(outCSV, result); err != nil {
			return err
		}
	}

	logger.Info("pipeline finished",
		slog.Int("source_year", result.SourceYear),
		slog.Int("programs", len(result.Programs)))

	return nil
}
