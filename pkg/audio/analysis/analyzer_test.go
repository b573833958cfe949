package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

const (
	testSampleRate = 48000
	testFrameSize  = 4096
)

func TestAnalyzeFrameSilenceShortCircuit(t *testing.T) {
	analyzer := NewFrameAnalyzer(nil)
	cutoff := EffectiveCutoff(testSampleRate)

	// Just below the silence floor.
	frame := makeSine(440, 5e-5, testSampleRate, testFrameSize)

	res := analyzer.AnalyzeFrame(frame, testSampleRate, cutoff, false)
	assert.Equal(t, 0.0, res.Ratio)
	assert.Nil(t, res.Profile)

	captured := analyzer.AnalyzeFrame(frame, testSampleRate, cutoff, true)
	assert.Equal(t, 0.0, captured.Ratio)
	require.NotNil(t, captured.Profile)
	assert.True(t, captured.Profile.Silent())
	assert.Empty(t, captured.Profile.Magnitudes)
	assert.Zero(t, captured.Profile.TotalEnergy)
}

func TestAnalyzeFrameRatioBounds(t *testing.T) {
	analyzer := NewFrameAnalyzer(nil)
	cutoff := EffectiveCutoff(testSampleRate)

	frames := [][]float64{
		makeSine(1000, 0.5, testSampleRate, testFrameSize),
		makeSine(22000, 0.5, testSampleRate, testFrameSize),
		makeTones(toneLadder(500, 21500, 250), 0.01, testSampleRate, testFrameSize),
	}

	for i, frame := range frames {
		res := analyzer.AnalyzeFrame(frame, testSampleRate, cutoff, false)
		assert.GreaterOrEqual(t, res.Ratio, 0.0, "frame %d", i)
		assert.LessOrEqual(t, res.Ratio, 1.0, "frame %d", i)
	}

	// A tone entirely above the cutoff carries nearly all its energy in
	// the high band; one far below carries nearly none.
	low := analyzer.AnalyzeFrame(frames[0], testSampleRate, cutoff, false)
	high := analyzer.AnalyzeFrame(frames[1], testSampleRate, cutoff, false)
	assert.Less(t, low.Ratio, 0.01)
	assert.Greater(t, high.Ratio, 0.9)
}

func TestAnalyzeFrameDeterminism(t *testing.T) {
	analyzer := NewFrameAnalyzer(nil)
	cutoff := EffectiveCutoff(testSampleRate)
	frame := makeTones([]float64{440, 9000, 19000}, 0.2, testSampleRate, testFrameSize)

	first := analyzer.AnalyzeFrame(frame, testSampleRate, cutoff, false)
	second := analyzer.AnalyzeFrame(frame, testSampleRate, cutoff, false)

	// Bit-identical, not merely close.
	assert.Equal(t, first.Ratio, second.Ratio)
}

func TestAnalyzeFrameEnergyPartition(t *testing.T) {
	memo := NewMemo()
	analyzer := NewFrameAnalyzer(memo)
	cutoff := EffectiveCutoff(testSampleRate)
	frame := makeTones([]float64{1000, 8000, 21000}, 0.3, testSampleRate, testFrameSize)

	res := analyzer.AnalyzeFrame(frame, testSampleRate, cutoff, true)
	require.NotNil(t, res.Profile)
	require.False(t, res.Profile.Silent())

	k := memo.CutoffBin(testFrameSize, testSampleRate, cutoff)
	lowBand := floats.Sum(res.Profile.Magnitudes[:k+1])
	highBand := floats.Sum(res.Profile.Magnitudes[k+1:])

	assert.InEpsilon(t, res.Profile.TotalEnergy, lowBand+highBand, 1e-12)
	assert.InEpsilon(t, res.Ratio, highBand/res.Profile.TotalEnergy, 1e-12)
}

func TestAnalyzeFrameProfileCapture(t *testing.T) {
	memo := NewMemo()
	analyzer := NewFrameAnalyzer(memo)
	cutoff := EffectiveCutoff(testSampleRate)
	frame := makeSine(5000, 0.5, testSampleRate, testFrameSize)

	res := analyzer.AnalyzeFrame(frame, testSampleRate, cutoff, true)
	require.NotNil(t, res.Profile)

	assert.Len(t, res.Profile.Magnitudes, testFrameSize/2+1)
	assert.Len(t, res.Profile.Freqs, testFrameSize/2+1)
	assert.Greater(t, res.Profile.TotalEnergy, 0.0)

	for i, mag := range res.Profile.Magnitudes {
		assert.GreaterOrEqual(t, mag, 0.0, "bin %d", i)
	}

	// The spectral peak sits at the tone's bin.
	peakBin := floats.MaxIdx(res.Profile.Magnitudes)
	assert.InDelta(t, 5000, res.Profile.Freqs[peakBin], float64(testSampleRate)/testFrameSize)

	// Capture off returns no profile but the same ratio.
	plain := analyzer.AnalyzeFrame(frame, testSampleRate, cutoff, false)
	assert.Nil(t, plain.Profile)
	assert.Equal(t, res.Ratio, plain.Ratio)
}

func TestAnalyzeFrameEmpty(t *testing.T) {
	analyzer := NewFrameAnalyzer(nil)

	res := analyzer.AnalyzeFrame(nil, testSampleRate, 20500, true)
	assert.Equal(t, 0.0, res.Ratio)
	require.NotNil(t, res.Profile)
	assert.True(t, res.Profile.Silent())
}
