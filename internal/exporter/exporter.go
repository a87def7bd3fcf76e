package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"qadash/internal/errors"
	"qadash/pkg/contracts/domain"
)

// Writer exports computed views for spot checks and downstream consumers.
// Output carries no timestamps: re-running the pipeline on an unchanged
// source produces byte-identical files.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates an export writer.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// WriteJSON writes the full result as an indented JSON document.
func (w *Writer) WriteJSON(path string, result *domain.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for JSON output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create JSON output file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return errors.NewStorageError("failed to encode result to JSON", err)
	}

	w.logger.Info("wrote JSON export",
		slog.String("path", path),
		slog.Int("programs", len(result.Programs)))

	return nil
}

// WriteCSV writes a one-row-per-program summary. Missing values stay empty
// cells, distinct from zero.
func (w *Writer) WriteCSV(path string, result *domain.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for CSV output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create CSV output file", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Program", "Department", "SourceYear",
		"NewEnrollment", "TotalEnrollment", "PriorEducation",
		"SuccessRate", "AvgSemesters", "AvgWorkExperience", "AvgStartingAge",
		"LecturerOrigin", "AvgUtilization", "ModuleCount",
	}
	if err := writer.Write(header); err != nil {
		return errors.NewStorageError("failed to write CSV header row", err)
	}

	for _, program := range result.Programs {
		view := result.Views[program]
		m := view.Metrics
		row := []string{
			string(view.Program),
			view.Department,
			strconv.Itoa(view.SourceYear),
			formatSequence(m.NewEnrollment),
			formatSequence(m.TotalEnrollment),
			formatDistribution(m.PriorEducation),
			formatFloat(m.SuccessRate),
			formatFloat(m.AvgSemesters),
			formatFloat(m.AvgWorkExperience),
			formatFloat(m.AvgStartingAge),
			formatDistribution(m.LecturerOrigin),
			formatFloat(m.AvgUtilization),
			strconv.Itoa(m.ModuleCount),
		}
		if err := writer.Write(row); err != nil {
			return errors.NewStorageError("failed to write CSV data row", err)
		}
	}

	w.logger.Info("wrote CSV export",
		slog.String("path", path),
		slog.Int("programs", len(result.Programs)))

	return nil
}

// formatSequence renders a year sequence as "2022:40;2023:-;...". Missing
// years keep their label with a dash instead of a fabricated zero.
func formatSequence(seq []domain.YearCount) string {
	parts := make([]string, len(seq))
	for i, entry := range seq {
		if entry.Valid {
			parts[i] = fmt.Sprintf("%d:%d", entry.Year, entry.Count)
		} else {
			parts[i] = fmt.Sprintf("%d:-", entry.Year)
		}
	}
	return strings.Join(parts, ";")
}

// formatDistribution renders a distribution with sorted labels.
func formatDistribution(dist domain.Distribution) string {
	labels := dist.Labels()
	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = fmt.Sprintf("%s:%d", label, dist[label])
	}
	return strings.Join(parts, ";")
}

// formatFloat renders a float metric, or "" when the value is missing.
func formatFloat(f domain.Float) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}
