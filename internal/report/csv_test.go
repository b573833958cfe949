package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFractions(t *testing.T) {
	tests := []struct {
		name      string
		fractions map[float64]float64
		want      string
	}{
		{"empty", nil, ""},
		{"single", map[float64]float64{16000: 0.5}, "16000=0.5000"},
		{
			"sorted ascending",
			map[float64]float64{19000: 0.25, 16000: 1, 17000: 0.123456},
			"16000=1.0000;17000=0.1235;19000=0.2500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFractions(tt.fractions))
		})
	}
}

func TestTimestampedPath(t *testing.T) {
	path := TimestampedPath("/data/music")

	assert.Equal(t, "/data/music", filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".csv"))
}

func TestWriterAppend(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "results.csv"))

	rows := []Row{
		{
			Path:              "/music/a.flac",
			Status:            "Likely ORIGINAL",
			Confidence:        0.9876543,
			SampleRate:        48000,
			NumSamples:        480000,
			TotalFrames:       28,
			NonSilentFrames:   27,
			EffectiveCutoffHz: 20500,
			Fractions:         map[float64]float64{16000: 1, 20000: 0.97},
		},
		ErrorRow("/music/broken.flac"),
	}

	require.NoError(t, w.Append(rows))
	require.NoError(t, w.Append([]Row{{
		Path:   "/music/b.flac",
		Status: "Likely UPSCALED",
	}}))

	f, err := os.Open(w.Path())
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// One header plus three rows, header written exactly once.
	require.Len(t, records, 4)
	assert.Equal(t, Fieldnames, records[0])

	first := records[1]
	assert.Equal(t, "/music/a.flac", first[0])
	assert.Equal(t, "Likely ORIGINAL", first[1])
	assert.Equal(t, "0.987654", first[2])
	assert.Equal(t, "48000", first[3])
	assert.Equal(t, "20500.0", first[7])
	assert.Equal(t, "16000=1.0000;20000=0.9700", first[8])

	// Error rows keep path and status, all numeric fields blank.
	errRow := records[2]
	assert.Equal(t, "/music/broken.flac", errRow[0])
	assert.Equal(t, StatusError, errRow[1])
	for i := 2; i < len(errRow); i++ {
		assert.Empty(t, errRow[i], "column %d", i)
	}
}

func TestWriterAppendNothing(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "results.csv"))

	require.NoError(t, w.Append(nil))

	_, err := os.Stat(w.Path())
	assert.True(t, os.IsNotExist(err), "empty append must not create the log")
}
