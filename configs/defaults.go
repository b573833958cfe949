package configs

import (
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/flacheck/flacheck/pkg/audio/analysis"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "info")

	// Frame geometry defaults: 32768-sample frames, 50% overlap
	v.SetDefault("analysis.frame_size", analysis.DefaultFrameSize)
	v.SetDefault("analysis.step", analysis.DefaultStep)

	// Classifier threshold defaults
	thresholds := analysis.DefaultThresholds()
	v.SetDefault("classifier.active_energy_ratio", thresholds.ActiveEnergyRatio)
	v.SetDefault("classifier.high_presence", thresholds.HighPresence)
	v.SetDefault("classifier.drop_delta", thresholds.DropDelta)
	v.SetDefault("classifier.sustained_presence", thresholds.SustainedPresence)
	v.SetDefault("classifier.noise_floor", thresholds.NoiseFloor)

	// Batch defaults: one worker per core, CSV flushed every 50 rows
	v.SetDefault("batch.workers", runtime.NumCPU())
	v.SetDefault("batch.flush_size", 50)

	// External tool defaults
	v.SetDefault("tools.ffmpeg_path", "ffmpeg")
	v.SetDefault("tools.ffprobe_path", "ffprobe")
	v.SetDefault("tools.timeout", 60*time.Second)

	// Spectrogram defaults
	v.SetDefault("spectrogram.enabled", true)
	v.SetDefault("spectrogram.width", 1920)
	v.SetDefault("spectrogram.height", 1080)
	v.SetDefault("spectrogram.max_workers", 0) // 0 = min(cores/2, 6)
}

// GetDefaultConfig returns the built-in configuration
func GetDefaultConfig() *Config {
	return &Config{
		Verbose:  false,
		LogLevel: "info",
		Analysis: AnalysisConfig{
			FrameSize: analysis.DefaultFrameSize,
			Step:      analysis.DefaultStep,
		},
		Classifier: analysis.DefaultThresholds(),
		Batch: BatchConfig{
			Workers:   runtime.NumCPU(),
			FlushSize: 50,
		},
		Tools: ToolsConfig{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			Timeout:     60 * time.Second,
		},
		Spectrogram: SpectrogramConfig{
			Enabled: true,
			Width:   1920,
			Height:  1080,
		},
	}
}
