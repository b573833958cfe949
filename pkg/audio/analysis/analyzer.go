package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// silenceFloor is the max-abs amplitude below which a frame is treated as
// silent and skipped without computing a transform.
const silenceFloor = 1e-4

// SpectralProfile is the captured one-sided spectrum of a single frame.
// A profile with empty slices and zero energy marks a frame that was
// skipped as silent; it is emitted as a placeholder so captured profiles
// stay aligned one-to-one with frames.
type SpectralProfile struct {
	Freqs       []float64
	Magnitudes  []float64
	TotalEnergy float64
}

// Silent reports whether the profile is the placeholder for a skipped frame.
func (p *SpectralProfile) Silent() bool {
	return len(p.Magnitudes) == 0 && p.TotalEnergy == 0
}

// FrameResult is the outcome of analyzing one frame. Profile is nil unless
// capture was requested.
type FrameResult struct {
	Ratio   float64
	Profile *SpectralProfile
}

// FrameAnalyzer computes per-frame high-band energy ratios. Frames are
// windowed with a cached symmetric Hann window, transformed with a real
// FFT, and partitioned at the cutoff bin. Degenerate frames (silent, zero
// or non-finite total energy) absorb into a 0.0 ratio rather than an error.
type FrameAnalyzer struct {
	memo   *Memo
	logger logging.Logger
}

// NewFrameAnalyzer creates a frame analyzer backed by the given Memo.
// A nil memo gets a private one.
func NewFrameAnalyzer(memo *Memo) *FrameAnalyzer {
	if memo == nil {
		memo = NewMemo()
	}

	return &FrameAnalyzer{
		memo: memo,
		logger: logging.WithFields(logging.Fields{
			"component": "frame_analyzer",
		}),
	}
}

// AnalyzeFrame returns the fraction of the frame's spectral magnitude that
// lies strictly above the cutoff bin for effectiveCutoff. The ratio is
// always in [0, 1]; silent and numerically degenerate frames return exactly
// 0.0. When capture is true the result carries the frame's SpectralProfile
// (for silent frames, the empty placeholder).
func (fa *FrameAnalyzer) AnalyzeFrame(frame []float64, sampleRate int, effectiveCutoff float64, capture bool) FrameResult {
	if len(frame) == 0 {
		return fa.result(0, capture, &SpectralProfile{})
	}

	// Silence short-circuit: no transform for all-but-silent frames.
	if floats.Norm(frame, math.Inf(1)) < silenceFloor {
		return fa.result(0, capture, &SpectralProfile{})
	}

	n := len(frame)
	w := fa.memo.HannWindow(n)

	windowed := make([]float64, n)
	floats.MulTo(windowed, frame, w)

	spectrum := fft.FFTReal(windowed)

	bins := n/2 + 1
	mags := make([]float64, bins)
	for i := range mags {
		mags[i] = cmplx.Abs(spectrum[i])
	}

	total := floats.Sum(mags)
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		// Degenerate input; keep the spectrum for diagnostics when
		// capturing, but report zero energy.
		return fa.result(0, capture, &SpectralProfile{
			Freqs:      fa.memo.FrequencyAxis(n, sampleRate),
			Magnitudes: mags,
		})
	}

	k := fa.memo.CutoffBin(n, sampleRate, effectiveCutoff)
	highBand := floats.Sum(mags[k+1:])
	ratio := highBand / total

	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		// Positive finite total energy cannot produce a non-finite
		// ratio; this is a logic defect, not a recoverable state.
		panic(fmt.Sprintf("analysis: non-finite high-band ratio (n=%d total=%g cutoff=%g)", n, total, effectiveCutoff))
	}

	return fa.result(ratio, capture, &SpectralProfile{
		Freqs:       fa.memo.FrequencyAxis(n, sampleRate),
		Magnitudes:  mags,
		TotalEnergy: total,
	})
}

func (fa *FrameAnalyzer) result(ratio float64, capture bool, profile *SpectralProfile) FrameResult {
	if !capture {
		return FrameResult{Ratio: ratio}
	}
	return FrameResult{Ratio: ratio, Profile: profile}
}
