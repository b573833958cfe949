package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flacheck/flacheck/configs"
	"github.com/flacheck/flacheck/pkg/audio/analysis"
	"github.com/flacheck/flacheck/pkg/audio/decode"
)

var analyzeThresholdsFile string

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Classify a single audio file",
	Long: `Analyze one FLAC file and print its classification.

The file is decoded, segmented into overlapping frames, and each frame's
high-band energy ratio is computed from its windowed magnitude spectrum.
Candidate lossy-encoder bandlimits are then scrutinized for the step
discontinuity left behind by a lossy transcode.

Examples:
  # Classify one file
  flacheck analyze album/track01.flac

  # Use custom classifier thresholds
  flacheck analyze --thresholds thresholds.yaml album/track01.flac`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeThresholdsFile, "thresholds", "",
		"classifier thresholds file (yaml or json)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	thresholds, err := resolveThresholds(config, analyzeThresholdsFile)
	if err != nil {
		return err
	}

	decoder := decode.NewDecoder(&decode.Config{
		FFmpegPath:  config.Tools.FFmpegPath,
		FFprobePath: config.Tools.FFprobePath,
		Timeout:     config.Tools.Timeout,
	})

	pipeline := analysis.NewPipeline(config.Analysis.FrameSize, config.Analysis.Step, thresholds)

	path := args[0]
	audio, err := decoder.DecodeFile(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	result := pipeline.Run(audio.Samples, audio.SampleRate)
	printReport(cmd, path, audio, result)

	return nil
}

func printReport(cmd *cobra.Command, path string, audio *decode.Audio, result analysis.FileReport) {
	p := newCountPrinter()
	out := cmd.OutOrStdout()

	p.Fprintf(out, "Loaded '%s' with sample rate %d Hz, %d samples.\n", path, audio.SampleRate, result.NumSamples)
	p.Fprintf(out, "Divided audio into %d frames for analysis.\n", result.TotalFrames)
	p.Fprintf(out, "Analyzed %d frames (%d non-silent).\n", result.TotalFrames, result.NonSilentFrames)
	fmt.Fprintf(out, "Effective cutoff: %.0f Hz\n", result.EffectiveCutoffHz)
	fmt.Fprintf(out, "Result: %s (confidence %.1f%%)\n", result.Status, result.Confidence*100)

	if result.DetectedCutoffHz > 0 {
		fmt.Fprintf(out, "Detected truncation near %.0f Hz\n", result.DetectedCutoffHz)
	}

	if len(result.Fractions) > 0 {
		fmt.Fprintln(out, "Per-cutoff active fractions:")
		cutoffs := make([]float64, 0, len(result.Fractions))
		for c := range result.Fractions {
			cutoffs = append(cutoffs, c)
		}
		sort.Float64s(cutoffs)
		for _, c := range cutoffs {
			fmt.Fprintf(out, "  %d: %.4f\n", int(c), result.Fractions[c])
		}
	}
}

// resolveThresholds prefers a thresholds file over the main configuration.
func resolveThresholds(config *configs.Config, thresholdsFile string) (analysis.Thresholds, error) {
	if thresholdsFile == "" {
		return config.Classifier, nil
	}
	return configs.LoadThresholdsFromFile(thresholdsFile)
}
