package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/flacheck/flacheck/internal/batch"
	"github.com/flacheck/flacheck/pkg/audio/analysis"
	"github.com/flacheck/flacheck/pkg/audio/decode"
	"github.com/flacheck/flacheck/pkg/spectrogram"
)

// summaryRounding trims sub-100ms noise from the reported duration.
const summaryRounding = 100 * time.Millisecond

var (
	scanWorkers        int
	scanNoSpectrograms bool
	scanThresholdsFile string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <folder>",
	Short: "Scan a folder of FLAC files",
	Long: `Recursively scan a folder, classify every FLAC file found, and append
one row per file to a timestamped CSV inside the folder. Files that do not
classify as original get a spectrogram image rendered into a
"spectrograms" subfolder for visual inspection.

Per-file analyses run in parallel; a file that fails to decode produces an
ERROR row and the scan continues. Only a failure to write the result log
halts the batch.

Examples:
  # Scan a music library
  flacheck scan ~/music

  # Limit the worker pool and skip spectrograms
  flacheck scan --workers 4 --no-spectrograms ~/music`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0,
		"analysis workers (default: number of CPU cores)")
	scanCmd.Flags().BoolVar(&scanNoSpectrograms, "no-spectrograms", false,
		"skip spectrogram rendering for flagged files")
	scanCmd.Flags().StringVar(&scanThresholdsFile, "thresholds", "",
		"classifier thresholds file (yaml or json)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	thresholds, err := resolveThresholds(config, scanThresholdsFile)
	if err != nil {
		return err
	}

	workers := config.Batch.Workers
	if scanWorkers > 0 {
		workers = scanWorkers
	}

	decoder := decode.NewDecoder(&decode.Config{
		FFmpegPath:  config.Tools.FFmpegPath,
		FFprobePath: config.Tools.FFprobePath,
		Timeout:     config.Tools.Timeout,
	})

	pipeline := analysis.NewPipeline(config.Analysis.FrameSize, config.Analysis.Step, thresholds)

	var renderer batch.FlaggedRenderer
	if config.Spectrogram.Enabled && !scanNoSpectrograms {
		renderer = spectrogram.NewRenderer(&spectrogram.Config{
			FFmpegPath: config.Tools.FFmpegPath,
			Width:      config.Spectrogram.Width,
			Height:     config.Spectrogram.Height,
			MaxWorkers: config.Spectrogram.MaxWorkers,
		})
	}

	runner := batch.NewRunner(batch.Config{
		Workers:      workers,
		FlushSize:    config.Batch.FlushSize,
		ShowProgress: true,
	}, decoder, pipeline, renderer)

	summary, err := runner.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printSummary(cmd, summary)
	return nil
}

func printSummary(cmd *cobra.Command, summary *batch.Summary) {
	p := newCountPrinter()
	out := cmd.OutOrStdout()

	p.Fprintf(out, "Discovered %d files, processed %d in %s.\n",
		summary.Discovered, summary.Processed, summary.Duration.Round(summaryRounding))
	p.Fprintf(out, "Errors: %d, flagged for review: %d.\n", summary.Errors, summary.Flagged)
	if summary.SpectrogramFailures > 0 {
		p.Fprintf(out, "Spectrogram failures: %d.\n", summary.SpectrogramFailures)
	}
	fmt.Fprintf(out, "Results written to %s\n", summary.CSVPath)
}

// newCountPrinter formats large sample and file counts readably.
func newCountPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}
