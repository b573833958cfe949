// Package batch orchestrates folder scans: discovery, a worker pool of
// per-file analyses, buffered CSV persistence, and the follow-up
// spectrogram pass for flagged files.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/schollz/progressbar/v3"

	"github.com/flacheck/flacheck/internal/report"
	"github.com/flacheck/flacheck/pkg/audio/analysis"
	"github.com/flacheck/flacheck/pkg/audio/decode"
)

// FileDecoder is the audio input boundary of a scan. *decode.Decoder
// satisfies it; tests substitute synthetic buffers.
type FileDecoder interface {
	DecodeFile(ctx context.Context, filename string) (*decode.Audio, error)
}

// FlaggedRenderer renders spectrograms for files that did not classify as
// original. *spectrogram.Renderer satisfies it.
type FlaggedRenderer interface {
	RenderAll(ctx context.Context, root string, paths []string) (int, error)
}

// Config holds runner settings.
type Config struct {
	// Workers bounds the per-file analysis pool; 0 means NumCPU.
	Workers int

	// FlushSize is how many result rows accumulate before a CSV write.
	FlushSize int

	// ShowProgress draws a progress bar on stderr.
	ShowProgress bool
}

// Summary describes one completed scan.
type Summary struct {
	Discovered          int
	Processed           int
	Errors              int
	Flagged             int
	SpectrogramFailures int
	CSVPath             string
	Duration            time.Duration
}

// Runner executes folder scans. Per-file analyses are independent and run
// in parallel; results are serialized in receipt order by a single writer.
type Runner struct {
	config   Config
	decoder  FileDecoder
	pipeline *analysis.Pipeline
	renderer FlaggedRenderer
	logger   logging.Logger
}

// NewRunner creates a scan runner. The renderer may be nil to skip the
// spectrogram pass.
func NewRunner(config Config, decoder FileDecoder, pipeline *analysis.Pipeline, renderer FlaggedRenderer) *Runner {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.FlushSize <= 0 {
		config.FlushSize = 50
	}

	return &Runner{
		config:   config,
		decoder:  decoder,
		pipeline: pipeline,
		renderer: renderer,
		logger: logging.WithFields(logging.Fields{
			"component": "batch_runner",
		}),
	}
}

// Discover walks folder recursively and returns every .flac file path.
// Symlinked directories are not followed and unreadable entries are
// skipped; discovery never fails on a readable root.
func Discover(folder string) ([]string, error) {
	if info, err := os.Stat(folder); err != nil {
		return nil, fmt.Errorf("scan folder: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("scan folder %s is not a directory", folder)
	}

	var paths []string
	_ = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(d.Name()), ".flac") {
			paths = append(paths, path)
		}
		return nil
	})

	return paths, nil
}

// Run scans folder: every discovered file is decoded and classified on the
// worker pool, rows are appended to a timestamped CSV inside folder, and
// spectrograms are rendered for the flagged files. A single file failing
// to decode yields an ERROR row and the scan continues; a CSV write
// failure halts the batch.
func (r *Runner) Run(ctx context.Context, folder string) (*Summary, error) {
	startTime := time.Now()

	paths, err := Discover(folder)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Files discovered", logging.Fields{
		"folder": folder,
		"count":  len(paths),
	})

	writer := report.NewWriter(report.TimestampedPath(folder))
	summary := &Summary{
		Discovered: len(paths),
		CSVPath:    writer.Path(),
	}

	if len(paths) == 0 {
		summary.Duration = time.Since(startTime)
		return summary, nil
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string)
	results := make(chan report.Row)

	var wg sync.WaitGroup
	for range r.config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				row := r.processOne(scanCtx, path)
				select {
				case results <- row:
				case <-scanCtx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-scanCtx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var bar *progressbar.ProgressBar
	if r.config.ShowProgress {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Files processed"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	buffer := make([]report.Row, 0, r.config.FlushSize)
	var flagged []string

	for row := range results {
		summary.Processed++
		if row.Failed {
			summary.Errors++
		}
		if row.Status != string(analysis.StatusOriginal) {
			flagged = append(flagged, row.Path)
		}

		buffer = append(buffer, row)
		if len(buffer) >= r.config.FlushSize {
			if err := writer.Append(buffer); err != nil {
				cancel()
				return nil, fmt.Errorf("result log write failed, halting batch: %w", err)
			}
			buffer = buffer[:0]
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if err := writer.Append(buffer); err != nil {
		return nil, fmt.Errorf("result log write failed, halting batch: %w", err)
	}

	if err := ctx.Err(); err != nil {
		summary.Duration = time.Since(startTime)
		return summary, err
	}

	summary.Flagged = len(flagged)

	if r.renderer != nil && len(flagged) > 0 {
		failures, err := r.renderer.RenderAll(ctx, folder, flagged)
		summary.SpectrogramFailures = failures
		if err != nil {
			// Spectrograms are best effort; the scan itself succeeded.
			r.logger.Error(err, "Spectrogram pass did not complete", logging.Fields{
				"flagged": len(flagged),
			})
		}
	}

	summary.Duration = time.Since(startTime)

	r.logger.Info("Scan completed", logging.Fields{
		"processed":  summary.Processed,
		"errors":     summary.Errors,
		"flagged":    summary.Flagged,
		"csv_path":   summary.CSVPath,
		"duration_s": summary.Duration.Seconds(),
	})

	return summary, nil
}

// processOne decodes and classifies a single file, absorbing its failure
// into a minimal schema-safe error row.
func (r *Runner) processOne(ctx context.Context, path string) report.Row {
	audio, err := r.decoder.DecodeFile(ctx, path)
	if err != nil {
		r.logger.Error(err, "File processing failed", logging.Fields{
			"path": path,
		})
		return report.ErrorRow(path)
	}

	fileReport := r.pipeline.Run(audio.Samples, audio.SampleRate)

	return report.Row{
		Path:              path,
		Status:            string(fileReport.Status),
		Confidence:        fileReport.Confidence,
		SampleRate:        fileReport.SampleRate,
		NumSamples:        fileReport.NumSamples,
		TotalFrames:       fileReport.TotalFrames,
		NonSilentFrames:   fileReport.NonSilentFrames,
		EffectiveCutoffHz: fileReport.EffectiveCutoffHz,
		Fractions:         fileReport.Fractions,
	}
}
