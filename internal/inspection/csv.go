package inspection

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// MinSamplesToPersist is the sample count a run must exceed for its log to be
// written; at or below this the run is treated as insufficient data.
const MinSamplesToPersist = 5

var csvHeader = []string{"Front", "Back", "Right", "Left", "Up", "Status"}

// WriteCSV writes the run log to path, truncating any previous run's file.
// It is a no-op when the log does not exceed MinSamplesToPersist samples.
func WriteCSV(path string, samples []DistanceSample) (bool, error) {
	if len(samples) <= MinSamplesToPersist {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return false, fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := writeRows(writer, samples); err != nil {
		return false, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return false, fmt.Errorf("failed to flush csv: %w", err)
	}
	return true, nil
}

// AppendCSV appends the run log to a cumulative dataset file, creating it
// with a header on first use. The same minimum sample rule applies.
func AppendCSV(path string, samples []DistanceSample) (bool, error) {
	if len(samples) <= MinSamplesToPersist {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create dataset directory: %w", err)
	}

	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if fresh {
		if err := writer.Write(csvHeader); err != nil {
			return false, fmt.Errorf("failed to write csv header: %w", err)
		}
	}
	if err := writeRows(writer, samples); err != nil {
		return false, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return false, fmt.Errorf("failed to flush csv: %w", err)
	}
	return true, nil
}

func writeRows(writer *csv.Writer, samples []DistanceSample) error {
	for _, s := range samples {
		row := []string{
			formatDistance(s.Front),
			formatDistance(s.Back),
			formatDistance(s.Right),
			formatDistance(s.Left),
			formatDistance(s.Up),
			string(s.Status),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	return nil
}

func formatDistance(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
