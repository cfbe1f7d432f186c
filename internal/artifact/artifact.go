// Package artifact reads evaluation datasets and writes evaluation results
// as JSON files.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sql-eval/internal/domain"
)

// Output file names written by Write.
const (
	ResultsFile = "eval.json"
	MetricsFile = "metrics.json"
)

// LoadGenerated reads a JSON array of generated records.
func LoadGenerated(path string) ([]domain.GeneratedRecord, error) {
	var records []domain.GeneratedRecord
	if err := loadJSON(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadReference reads a JSON array of reference records.
func LoadReference(path string) ([]domain.ReferenceRecord, error) {
	var records []domain.ReferenceRecord
	if err := loadJSON(path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrNotFound("input file %s does not exist", path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return domain.ErrValidation("decode %s: %v", path, err)
	}
	return nil
}

// Write creates dir if needed and writes results to eval.json and aggregate
// to metrics.json.
func Write(dir string, results []domain.EvaluationResult, aggregate domain.AggregateMetrics) error {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // output directory is meant to be readable
		return fmt.Errorf("create output dir: %w", err)
	}
	if results == nil {
		results = []domain.EvaluationResult{}
	}
	if err := writeJSON(filepath.Join(dir, ResultsFile), results); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, MetricsFile), aggregate)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil { //nolint:gosec // artifacts are not secret
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
