package analysis

import (
	"math"

	"github.com/RyanBlaney/sonido-sonar/algorithms/windowing"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache capacities. Keys are small value tuples, so the memory cost per
// entry is dominated by the cached slices themselves.
const (
	windowCacheSize = 64
	axisCacheSize   = 256
	binCacheSize    = 512
)

type binKey struct {
	n          int
	sampleRate int
	cutoffHz   float64
}

type axisKey struct {
	n          int
	sampleRate int
}

// Memo holds the bounded memoization caches shared by frame analysis:
// Hann window coefficients, cutoff bin indices, and frequency axes.
// Every cached value is a pure function of its key, so a Memo only changes
// cost, never output. A Memo is safe for concurrent use; workers may also
// hold one Memo each.
type Memo struct {
	windows *lru.Cache[int, []float64]
	bins    *lru.Cache[binKey, int]
	axes    *lru.Cache[axisKey, []float64]
}

// NewMemo creates an empty Memo with the default capacities.
func NewMemo() *Memo {
	windows, _ := lru.New[int, []float64](windowCacheSize)
	bins, _ := lru.New[binKey, int](binCacheSize)
	axes, _ := lru.New[axisKey, []float64](axisCacheSize)

	return &Memo{
		windows: windows,
		bins:    bins,
		axes:    axes,
	}
}

// HannWindow returns the symmetric Hann window of length n. Callers must
// treat the returned slice as read-only.
func (m *Memo) HannWindow(n int) []float64 {
	if w, ok := m.windows.Get(n); ok {
		return w
	}

	w := windowing.NewHann(n, true).GetCoefficients()
	m.windows.Add(n, w)
	return w
}

// CutoffBin resolves the spectral bin index for a cutoff frequency:
// floor(cutoff / (sampleRate / n)), clamped to [0, n/2]. Magnitudes
// strictly above the returned index lie above the cutoff.
func (m *Memo) CutoffBin(n, sampleRate int, cutoffHz float64) int {
	key := binKey{n: n, sampleRate: sampleRate, cutoffHz: cutoffHz}
	if k, ok := m.bins.Get(key); ok {
		return k
	}

	df := float64(sampleRate) / float64(n)
	k := int(math.Floor(cutoffHz / df))
	if k < 0 {
		k = 0
	}
	if k > n/2 {
		k = n / 2
	}

	m.bins.Add(key, k)
	return k
}

// FrequencyAxis returns the bin-center frequencies in Hz for the one-sided
// spectrum of an n-point transform. Callers must treat the returned slice
// as read-only.
func (m *Memo) FrequencyAxis(n, sampleRate int) []float64 {
	key := axisKey{n: n, sampleRate: sampleRate}
	if axis, ok := m.axes.Get(key); ok {
		return axis
	}

	df := float64(sampleRate) / float64(n)
	axis := make([]float64, n/2+1)
	for i := range axis {
		axis[i] = float64(i) * df
	}

	m.axes.Add(key, axis)
	return axis
}
