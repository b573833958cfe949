package analysis

import (
	"math"
	"sort"

	"github.com/RyanBlaney/sonido-sonar/logging"
	"gonum.org/v1/gonum/floats"
)

// Status is the per-file classification label.
type Status string

const (
	StatusOriginal     Status = "Likely ORIGINAL"
	StatusUpscaled     Status = "Likely UPSCALED"
	StatusInconclusive Status = "INCONCLUSIVE"
)

// Candidate scrutiny cutoffs, representative of common lossy-encoder
// bandlimits. Only candidates below a file's effective cutoff are tested.
var defaultCandidates = []float64{16000, 17000, 18000, 19000, 20000}

// baselineOffsetHz places the internal reference band used to judge
// whether content is present just below the lowest tested candidate.
const baselineOffsetHz = 1000.0

// Thresholds are the calibration parameters of the status decision. They
// were tuned against labeled original/upscaled material and are deliberately
// configurable rather than baked in.
type Thresholds struct {
	// ActiveEnergyRatio is the minimum share of a frame's total spectral
	// magnitude above a candidate cutoff for the frame to count as active
	// there.
	ActiveEnergyRatio float64 `json:"active_energy_ratio" yaml:"active_energy_ratio" mapstructure:"active_energy_ratio"`

	// HighPresence is the active fraction below a candidate required
	// before a collapse above it counts as a truncation step.
	HighPresence float64 `json:"high_presence" yaml:"high_presence" mapstructure:"high_presence"`

	// DropDelta is the minimum fall in active fraction across a candidate
	// that qualifies as a truncation step.
	DropDelta float64 `json:"drop_delta" yaml:"drop_delta" mapstructure:"drop_delta"`

	// SustainedPresence is the active fraction at the highest candidate
	// above which a file counts as full-bandwidth.
	SustainedPresence float64 `json:"sustained_presence" yaml:"sustained_presence" mapstructure:"sustained_presence"`

	// NoiseFloor bounds the active fractions of narrowband content that
	// never reaches the scrutiny band at all.
	NoiseFloor float64 `json:"noise_floor" yaml:"noise_floor" mapstructure:"noise_floor"`
}

// DefaultThresholds returns the calibrated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ActiveEnergyRatio: 1e-3,
		HighPresence:      0.60,
		DropDelta:         0.40,
		SustainedPresence: 0.50,
		NoiseFloor:        0.10,
	}
}

// Result is the immutable outcome of classifying one file.
type Result struct {
	Status     Status
	Confidence float64

	// DetectedCutoffHz is the truncation point for upscaled files,
	// 0 otherwise.
	DetectedCutoffHz float64

	// Fractions maps every tested candidate cutoff to its active
	// fraction; populated regardless of status.
	Fractions map[float64]float64
}

// Classifier aggregates per-frame ratios and captured spectral profiles
// into a status, a confidence score, and a per-candidate activity map.
// Each file is classified independently and statelessly.
type Classifier struct {
	memo       *Memo
	thresholds Thresholds
	candidates []float64
	logger     logging.Logger
}

// NewClassifier creates a classifier using the given Memo for cutoff-bin
// resolution. A nil memo gets a private one.
func NewClassifier(memo *Memo, thresholds Thresholds) *Classifier {
	if memo == nil {
		memo = NewMemo()
	}

	candidates := make([]float64, len(defaultCandidates))
	copy(candidates, defaultCandidates)
	sort.Float64s(candidates)

	return &Classifier{
		memo:       memo,
		thresholds: thresholds,
		candidates: candidates,
		logger: logging.WithFields(logging.Fields{
			"component": "classifier",
		}),
	}
}

// Classify decides whether a file's spectral content is consistent with
// genuine full-bandwidth audio or with material truncated below a
// lossy-codec-typical cutoff and re-encoded losslessly. The profiles slice
// must be aligned one-to-one with ratios (silent frames as placeholders);
// band activity is recomputed from the captured profiles, never by
// re-running transforms.
func (c *Classifier) Classify(ratios []float64, sampleRate int, effectiveCutoff float64, profiles []*SpectralProfile) Result {
	candidates := c.tested(effectiveCutoff)

	fractions := make(map[float64]float64, len(candidates))
	for _, cand := range candidates {
		fractions[cand] = 0
	}

	nonSilent := 0
	for _, p := range profiles {
		if p != nil && !p.Silent() {
			nonSilent++
		}
	}

	inconclusive := Result{Status: StatusInconclusive, Fractions: fractions}

	if len(ratios) == 0 || nonSilent == 0 || len(candidates) == 0 {
		return inconclusive
	}

	fracs := c.activeFractions(candidates, sampleRate, profiles, nonSilent)
	for i, cand := range candidates {
		fractions[cand] = fracs[i]
	}

	baseline := c.activeFraction(candidates[0]-baselineOffsetHz, sampleRate, profiles, nonSilent)

	if allZero(ratios) && baseline == 0 && allZero(fracs) {
		return inconclusive
	}

	c.logger.Debug("Candidate activity computed", logging.Fields{
		"non_silent_frames": nonSilent,
		"baseline_fraction": baseline,
		"effective_cutoff":  effectiveCutoff,
	})

	// A sharp step in activity across a candidate, with sustained
	// presence just below it, is the signature of a lossy encoder's
	// hard low-pass. The lowest such candidate is the truncation point.
	prev := baseline
	for i, cand := range candidates {
		drop := prev - fracs[i]
		if prev >= c.thresholds.HighPresence && drop >= c.thresholds.DropDelta {
			return Result{
				Status:           StatusUpscaled,
				Confidence:       clamp01(drop),
				DetectedCutoffHz: cand,
				Fractions:        fractions,
			}
		}
		prev = fracs[i]
	}

	// Content persisting at the highest scrutinized candidate means the
	// file is full-bandwidth to the edge of its usable spectrum.
	top := fracs[len(fracs)-1]
	if top >= c.thresholds.SustainedPresence {
		return Result{
			Status:     StatusOriginal,
			Confidence: clamp01(top),
			Fractions:  fractions,
		}
	}

	// Narrowband material (content concentrated well below the scrutiny
	// band) shows no shoulder and no step; the absence of a truncation
	// signature is evidence the file was never bandlimited by an encoder.
	peak := math.Max(baseline, floats.Max(fracs))
	if peak <= c.thresholds.NoiseFloor {
		return Result{
			Status:     StatusOriginal,
			Confidence: clamp01(1 - peak),
			Fractions:  fractions,
		}
	}

	return inconclusive
}

// tested filters the candidate set to cutoffs below the effective cutoff.
func (c *Classifier) tested(effectiveCutoff float64) []float64 {
	out := make([]float64, 0, len(c.candidates))
	for _, cand := range c.candidates {
		if cand < effectiveCutoff {
			out = append(out, cand)
		}
	}
	return out
}

func (c *Classifier) activeFractions(candidates []float64, sampleRate int, profiles []*SpectralProfile, nonSilent int) []float64 {
	fracs := make([]float64, len(candidates))
	for i, cand := range candidates {
		fracs[i] = c.activeFraction(cand, sampleRate, profiles, nonSilent)
	}
	return fracs
}

// activeFraction is the share of non-silent frames whose energy above
// cutoffHz exceeds ActiveEnergyRatio of the frame's total.
func (c *Classifier) activeFraction(cutoffHz float64, sampleRate int, profiles []*SpectralProfile, nonSilent int) float64 {
	if nonSilent == 0 {
		return 0
	}

	active := 0
	for _, p := range profiles {
		if p == nil || p.Silent() || p.TotalEnergy <= 0 {
			continue
		}

		n := (len(p.Magnitudes) - 1) * 2
		k := c.memo.CutoffBin(n, sampleRate, cutoffHz)
		if k+1 >= len(p.Magnitudes) {
			continue
		}

		band := floats.Sum(p.Magnitudes[k+1:])
		if band/p.TotalEnergy > c.thresholds.ActiveEnergyRatio {
			active++
		}
	}

	return float64(active) / float64(nonSilent)
}

func allZero(xs []float64) bool {
	for _, x := range xs {
		if x != 0 {
			return false
		}
	}
	return true
}

func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}
