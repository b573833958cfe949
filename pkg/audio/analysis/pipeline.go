package analysis

import (
	"github.com/RyanBlaney/sonido-sonar/logging"
)

// FileReport is the complete analysis outcome for one decoded file.
type FileReport struct {
	Status            Status
	Confidence        float64
	SampleRate        int
	NumSamples        int
	TotalFrames       int
	NonSilentFrames   int
	EffectiveCutoffHz float64
	DetectedCutoffHz  float64
	Fractions         map[float64]float64
}

// Pipeline runs the whole per-file analysis: segmentation, per-frame
// spectral analysis with profile capture, and classification. A Pipeline
// is stateless apart from its shared memo caches and is safe for
// concurrent use across files.
type Pipeline struct {
	frameSize  int
	step       int
	analyzer   *FrameAnalyzer
	classifier *Classifier
	logger     logging.Logger
}

// NewPipeline creates a pipeline with the given frame geometry and
// classifier thresholds. Non-positive frame geometry falls back to the
// defaults.
func NewPipeline(frameSize, step int, thresholds Thresholds) *Pipeline {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	if step <= 0 {
		step = DefaultStep
	}

	memo := NewMemo()

	return &Pipeline{
		frameSize:  frameSize,
		step:       step,
		analyzer:   NewFrameAnalyzer(memo),
		classifier: NewClassifier(memo, thresholds),
		logger: logging.WithFields(logging.Fields{
			"component":  "analysis_pipeline",
			"frame_size": frameSize,
			"step":       step,
		}),
	}
}

// Run analyzes one decoded single-channel sample buffer. Zero frames (a
// buffer shorter than the frame size) is a valid outcome and classifies
// as inconclusive.
func (p *Pipeline) Run(samples []float64, sampleRate int) FileReport {
	frames := Segment(samples, p.frameSize, p.step)
	effectiveCutoff := EffectiveCutoff(sampleRate)

	ratios := make([]float64, len(frames))
	profiles := make([]*SpectralProfile, len(frames))
	nonSilent := 0

	for i, frame := range frames {
		res := p.analyzer.AnalyzeFrame(frame, sampleRate, effectiveCutoff, true)
		ratios[i] = res.Ratio
		profiles[i] = res.Profile
		if res.Ratio > 0 {
			nonSilent++
		}
	}

	result := p.classifier.Classify(ratios, sampleRate, effectiveCutoff, profiles)

	p.logger.Debug("File analysis completed", logging.Fields{
		"sample_rate":       sampleRate,
		"num_samples":       len(samples),
		"total_frames":      len(frames),
		"non_silent_frames": nonSilent,
		"effective_cutoff":  effectiveCutoff,
		"status":            string(result.Status),
		"confidence":        result.Confidence,
	})

	return FileReport{
		Status:            result.Status,
		Confidence:        result.Confidence,
		SampleRate:        sampleRate,
		NumSamples:        len(samples),
		TotalFrames:       len(frames),
		NonSilentFrames:   nonSilent,
		EffectiveCutoffHz: effectiveCutoff,
		DetectedCutoffHz:  result.DetectedCutoffHz,
		Fractions:         result.Fractions,
	}
}
