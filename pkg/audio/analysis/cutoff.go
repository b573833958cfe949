package analysis

import "math"

const (
	// MaxAnalysisCutoffHz anchors the expected full-bandwidth reference.
	// Most lossy encoders truncate between 16-20 kHz while lossless
	// masters retain usable content above that.
	MaxAnalysisCutoffHz = 20500.0

	// NyquistSafetyBandHz keeps the analysis out of the anti-aliasing
	// transition band just below Nyquist.
	NyquistSafetyBandHz = 100.0
)

// EffectiveCutoff derives the per-file high-frequency analysis boundary
// from the sample rate: min(20500, max(0, nyquist - 100)).
func EffectiveCutoff(sampleRate int) float64 {
	nyquist := float64(sampleRate) / 2.0
	return math.Min(MaxAnalysisCutoffHz, math.Max(0, nyquist-NyquistSafetyBandHz))
}
