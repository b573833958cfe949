// Package spectrogram renders spectrogram images for flagged files through
// ffmpeg's showspectrumpic filter. Rendering is entirely independent of the
// spectral analysis already performed; it consumes only file paths.
package spectrogram

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/RyanBlaney/sonido-sonar/logging"
)

// Config holds renderer settings.
type Config struct {
	FFmpegPath string `json:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	Width      int    `json:"width" mapstructure:"width"`
	Height     int    `json:"height" mapstructure:"height"`
	MaxWorkers int    `json:"max_workers" mapstructure:"max_workers"`
}

// DefaultConfig renders 1920x1080 images with at most min(cores/2, 6)
// concurrent ffmpeg processes.
func DefaultConfig() *Config {
	return &Config{
		FFmpegPath: "ffmpeg",
		Width:      1920,
		Height:     1080,
		MaxWorkers: maxWorkersDefault(),
	}
}

func maxWorkersDefault() int {
	cores := runtime.NumCPU()
	workers := cores / 2
	if workers > 6 {
		workers = 6
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Renderer writes one spectrogram image per flagged file into a
// "spectrograms" directory under the scan root.
type Renderer struct {
	config *Config
	logger logging.Logger
}

// NewRenderer creates a renderer. A nil config gets the defaults.
func NewRenderer(config *Config) *Renderer {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxWorkers < 1 {
		config.MaxWorkers = maxWorkersDefault()
	}

	return &Renderer{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "spectrogram_renderer",
		}),
	}
}

// Available reports whether the configured ffmpeg binary runs.
func (r *Renderer) Available() bool {
	if _, err := exec.LookPath(r.config.FFmpegPath); err != nil {
		return false
	}

	cmd := exec.Command(r.config.FFmpegPath, "-version")
	return cmd.Run() == nil
}

// RenderAll renders spectrograms for every path on a bounded worker pool
// and returns the number of per-file failures. Individual failures never
// abort the run; a missing ffmpeg aborts before any work starts.
func (r *Renderer) RenderAll(ctx context.Context, root string, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	if !r.Available() {
		return 0, fmt.Errorf("ffmpeg not detected or not runnable (looked for %q)", r.config.FFmpegPath)
	}

	outDir := filepath.Join(root, "spectrograms")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create spectrogram directory: %w", err)
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := 0

	for range r.config.MaxWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				if _, err := r.renderOne(ctx, outDir, path); err != nil {
					r.logger.Error(err, "Spectrogram render failed", logging.Fields{
						"path": path,
					})
					mu.Lock()
					failures++
					mu.Unlock()
				}
			}
		}()
	}

	for _, path := range paths {
		select {
		case jobs <- path:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return failures, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	r.logger.Info("Spectrograms generated", logging.Fields{
		"total":  len(paths),
		"failed": failures,
	})

	return failures, nil
}

// renderOne writes the spectrogram image for one file, skipping outputs
// that already exist non-empty.
func (r *Renderer) renderOne(ctx context.Context, outDir, path string) (string, error) {
	outPath := r.OutputPath(outDir, path)

	if info, err := os.Stat(outPath); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
		return outPath, nil
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", path,
		"-lavfi", r.filterString(),
		"-frames:v", "1",
		outPath,
	}

	cmd := exec.CommandContext(ctx, r.config.FFmpegPath, args...)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg showspectrumpic for %s: %w", path, err)
	}

	return outPath, nil
}

// OutputPath maps an input file to its image path inside outDir.
func (r *Renderer) OutputPath(outDir, path string) string {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return filepath.Join(outDir, strings.TrimSuffix(name, ext)+".jpeg")
}

func (r *Renderer) filterString() string {
	return fmt.Sprintf(
		"showspectrumpic=s=%dx%d:legend=1:color=fiery:fscale=lin:win_func=hann:scale=log:gain=1:drange=120",
		r.config.Width, r.config.Height,
	)
}
