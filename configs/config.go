package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/flacheck/flacheck/pkg/audio/analysis"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level"`

	// Analysis configuration
	Analysis AnalysisConfig `mapstructure:"analysis"`

	// Classifier thresholds
	Classifier analysis.Thresholds `mapstructure:"classifier"`

	// Batch scan configuration
	Batch BatchConfig `mapstructure:"batch"`

	// External tool configuration
	Tools ToolsConfig `mapstructure:"tools"`

	// Spectrogram rendering configuration
	Spectrogram SpectrogramConfig `mapstructure:"spectrogram"`
}

// AnalysisConfig contains frame geometry settings
type AnalysisConfig struct {
	FrameSize int `mapstructure:"frame_size"`
	Step      int `mapstructure:"step"`
}

// BatchConfig contains batch scan settings
type BatchConfig struct {
	Workers   int `mapstructure:"workers"`
	FlushSize int `mapstructure:"flush_size"`
}

// ToolsConfig contains external tool paths and limits
type ToolsConfig struct {
	FFmpegPath  string        `mapstructure:"ffmpeg_path"`
	FFprobePath string        `mapstructure:"ffprobe_path"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SpectrogramConfig contains spectrogram rendering settings
type SpectrogramConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Width      int  `mapstructure:"width"`
	Height     int  `mapstructure:"height"`
	MaxWorkers int  `mapstructure:"max_workers"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Analysis.FrameSize <= 0 {
		return fmt.Errorf("analysis frame size must be positive")
	}

	if config.Analysis.Step <= 0 {
		return fmt.Errorf("analysis step must be positive")
	}

	if config.Batch.Workers < 0 {
		return fmt.Errorf("batch workers cannot be negative")
	}

	if config.Batch.FlushSize <= 0 {
		return fmt.Errorf("batch flush size must be positive")
	}

	t := config.Classifier
	for name, v := range map[string]float64{
		"high_presence":      t.HighPresence,
		"drop_delta":         t.DropDelta,
		"sustained_presence": t.SustainedPresence,
		"noise_floor":        t.NoiseFloor,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("classifier %s must be between 0 and 1", name)
		}
	}

	if t.ActiveEnergyRatio <= 0 || t.ActiveEnergyRatio >= 1 {
		return fmt.Errorf("classifier active_energy_ratio must be in (0, 1)")
	}

	return nil
}
