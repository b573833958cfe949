// Package decode extracts PCM sample buffers from lossless audio files
// through ffmpeg. The analysis core never opens files itself; this is its
// only audio input boundary.
package decode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/RyanBlaney/sonido-sonar/logging"
)

// Config holds decoder tool paths and limits.
type Config struct {
	FFmpegPath  string        `json:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	FFprobePath string        `json:"ffprobe_path" mapstructure:"ffprobe_path"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig assumes both tools are on PATH.
func DefaultConfig() *Config {
	return &Config{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Timeout:     60 * time.Second,
	}
}

// Audio is one decoded file: the first channel as float64 samples at the
// file's native sample rate.
type Audio struct {
	Samples    []float64
	SampleRate int
	Channels   int
	Codec      string
	Duration   time.Duration
}

// Metadata holds the audio properties reported by ffprobe.
type Metadata struct {
	SampleRate int
	Channels   int
	Codec      string
	Duration   float64
}

// Decoder decodes audio files with ffmpeg/ffprobe.
type Decoder struct {
	config *Config
	logger logging.Logger
}

// NewDecoder creates a decoder. A nil config gets the defaults.
func NewDecoder(config *Config) *Decoder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// DecodeFile probes filename and decodes its first audio channel at the
// native sample rate into a float64 buffer.
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*Audio, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"filename": filename,
	})

	meta, err := d.probeFile(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", filename, err)
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"sample_rate": meta.SampleRate,
		"channels":    meta.Channels,
		"codec":       meta.Codec,
		"duration":    meta.Duration,
	})

	if meta.SampleRate <= 0 {
		return nil, fmt.Errorf("probe %s: invalid sample rate %d", filename, meta.SampleRate)
	}

	// First channel only, native rate, raw float64 little-endian on
	// stdout. Multi-channel input is reduced before analysis, never
	// downmixed.
	args := []string{
		"-v", "error",
		"-i", filename,
		"-map", "0:a:0",
		"-vn",
		"-af", "pan=mono|c0=c0",
		"-f", "f64le",
		"pipe:1",
	}

	decodeCtx := ctx
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		decodeCtx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(decodeCtx, d.config.FFmpegPath, args...)

	startTime := time.Now()
	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffmpeg decode failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio samples decoded from %s", filename)
	}

	duration := time.Duration(len(samples)) * time.Second / time.Duration(meta.SampleRate)

	logger.Debug("Decode completed", logging.Fields{
		"samples":     len(samples),
		"duration_s":  duration.Seconds(),
		"decode_time": time.Since(startTime).Seconds(),
	})

	return &Audio{
		Samples:    samples,
		SampleRate: meta.SampleRate,
		Channels:   meta.Channels,
		Codec:      meta.Codec,
		Duration:   duration,
	}, nil
}

// probeFile uses ffprobe to read the first audio stream's properties.
func (d *Decoder) probeFile(ctx context.Context, filename string) (*Metadata, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		filename,
	}

	probeCtx := ctx
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(probeCtx, d.config.FFprobePath, args...)

	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("ffprobe failed: %w, stderr: %s", err, string(exitError.Stderr))
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseFFprobeOutput(output)
}

// parseFFprobeOutput extracts metadata from ffprobe's JSON.
func parseFFprobeOutput(output []byte) (*Metadata, error) {
	var probe struct {
		Streams []struct {
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
			Duration   string `json:"duration"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio streams found")
	}

	stream := probe.Streams[0]

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("parse sample rate %q: %w", stream.SampleRate, err)
	}

	meta := &Metadata{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
	}

	if stream.Duration != "" {
		if dur, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
			meta.Duration = dur
		}
	}

	return meta, nil
}

// bytesToFloat64 reinterprets raw f64le bytes as samples. A trailing
// partial value is dropped.
func bytesToFloat64(data []byte) []float64 {
	samples := make([]float64, len(data)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(data[i*8:])
		samples[i] = math.Float64frombits(bits)
	}
	return samples
}
