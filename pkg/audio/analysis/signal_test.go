package analysis

import "math"

// makeTones synthesizes n samples at sampleRate containing one sinusoid
// per frequency, each at the given amplitude.
func makeTones(freqs []float64, amplitude float64, sampleRate, n int) []float64 {
	samples := make([]float64, n)
	for _, f := range freqs {
		w := 2 * math.Pi * f / float64(sampleRate)
		for i := range samples {
			samples[i] += amplitude * math.Sin(w*float64(i))
		}
	}
	return samples
}

// makeSine synthesizes a single tone.
func makeSine(freq, amplitude float64, sampleRate, n int) []float64 {
	return makeTones([]float64{freq}, amplitude, sampleRate, n)
}

// toneLadder returns frequencies from start to end inclusive in fixed
// increments.
func toneLadder(start, end, step float64) []float64 {
	var freqs []float64
	for f := start; f <= end+1e-9; f += step {
		freqs = append(freqs, f)
	}
	return freqs
}
