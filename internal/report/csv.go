// Package report persists per-file classification results as rows of a
// CSV log. A write failure here is fatal to a batch: a partial or
// inconsistent log is worse than stopping.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// StatusError marks rows for files that failed to decode or analyze.
const StatusError = "ERROR"

// Fieldnames is the single source of the CSV schema; row rendering and the
// header both derive from it.
var Fieldnames = []string{
	"path",
	"status",
	"confidence",
	"samplerate_hz",
	"num_samples",
	"num_total_frames",
	"num_non-silent_frames",
	"effective_cutoff_hz",
	"per_cutoff_active_fraction",
}

// Row is one result record. Failed rows keep only path and status; every
// numeric column renders blank.
type Row struct {
	Path              string
	Status            string
	Confidence        float64
	SampleRate        int
	NumSamples        int
	TotalFrames       int
	NonSilentFrames   int
	EffectiveCutoffHz float64
	Fractions         map[float64]float64
	Failed            bool
}

// ErrorRow builds the minimal schema-safe record for a failed file.
func ErrorRow(path string) Row {
	return Row{Path: path, Status: StatusError, Failed: true}
}

// TimestampedPath places a dated CSV file inside folder.
func TimestampedPath(folder string) string {
	stamp := time.Now().Format("2006-January-02__15-04-05")
	return filepath.Join(folder, stamp+".csv")
}

// FormatFractions serializes a candidate-cutoff activity map as
// "cutoff1=frac1;cutoff2=frac2" with ascending integer cutoffs and
// 4-decimal fractions.
func FormatFractions(fractions map[float64]float64) string {
	if len(fractions) == 0 {
		return ""
	}

	cutoffs := make([]float64, 0, len(fractions))
	for c := range fractions {
		cutoffs = append(cutoffs, c)
	}
	sort.Float64s(cutoffs)

	parts := make([]string, 0, len(cutoffs))
	for _, c := range cutoffs {
		parts = append(parts, fmt.Sprintf("%d=%.4f", int(c), fractions[c]))
	}

	return strings.Join(parts, ";")
}

// Writer appends result rows to one CSV file, writing the header exactly
// once over the file's lifetime.
type Writer struct {
	path string
}

// NewWriter creates a writer for path. Nothing is written until the first
// Append.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the CSV file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes rows to the log, creating the file with a header on first
// use.
func (w *Writer) Append(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	_, statErr := os.Stat(w.path)
	fileExists := statErr == nil

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open result log %s: %w", w.path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if !fileExists {
		if err := cw.Write(Fieldnames); err != nil {
			return fmt.Errorf("write result log header: %w", err)
		}
	}

	for _, row := range rows {
		if err := cw.Write(row.record()); err != nil {
			return fmt.Errorf("write result row for %s: %w", row.Path, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush result log: %w", err)
	}

	return nil
}

func (row Row) record() []string {
	if row.Failed {
		rec := make([]string, len(Fieldnames))
		rec[0] = row.Path
		rec[1] = row.Status
		return rec
	}

	return []string{
		row.Path,
		row.Status,
		strconv.FormatFloat(row.Confidence, 'f', 6, 64),
		strconv.Itoa(row.SampleRate),
		strconv.Itoa(row.NumSamples),
		strconv.Itoa(row.TotalFrames),
		strconv.Itoa(row.NonSilentFrames),
		strconv.FormatFloat(row.EffectiveCutoffHz, 'f', 1, 64),
		FormatFractions(row.Fractions),
	}
}
