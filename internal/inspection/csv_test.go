package inspection

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSamples(n int) []DistanceSample {
	samples := make([]DistanceSample, n)
	for i := range samples {
		samples[i] = DistanceSample{
			Front: 1.5, Back: 0.8, Right: 2.0, Left: 1.1, Up: 0.9,
			Status: StatusClear,
		}
	}
	return samples
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSVSkipsSmallRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspection_data.csv")

	written, err := WriteCSV(path, makeSamples(5))
	require.NoError(t, err)
	assert.False(t, written)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteCSVWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspection_data.csv")

	written, err := WriteCSV(path, makeSamples(6))
	require.NoError(t, err)
	assert.True(t, written)

	rows := readRows(t, path)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Front", "Back", "Right", "Left", "Up", "Status"}, rows[0])
	assert.Equal(t, []string{"1.5", "0.8", "2", "1.1", "0.9", "Nothing detected"}, rows[1])
}

func TestWriteCSVTruncatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inspection_data.csv")

	_, err := WriteCSV(path, makeSamples(10))
	require.NoError(t, err)
	_, err = WriteCSV(path, makeSamples(6))
	require.NoError(t, err)

	rows := readRows(t, path)
	assert.Len(t, rows, 7)
}

func TestAppendCSVAccumulatesAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset", "multiranger_data.csv")

	written, err := AppendCSV(path, makeSamples(6))
	require.NoError(t, err)
	assert.True(t, written)

	written, err = AppendCSV(path, makeSamples(8))
	require.NoError(t, err)
	assert.True(t, written)

	rows := readRows(t, path)
	// One header plus both runs' samples.
	assert.Len(t, rows, 15)
}
