package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		samples   int
		frameSize int
		step      int
		want      int
	}{
		{"shorter than frame", 100, 128, 64, 0},
		{"exactly one frame", 128, 128, 64, 1},
		{"one sample short", 127, 128, 64, 0},
		{"overlapping", 10, 4, 2, 4},
		{"no overlap", 12, 4, 4, 3},
		{"step larger than frame", 20, 4, 8, 3},
		{"default-like overlap", DefaultFrameSize + DefaultStep, DefaultFrameSize, DefaultStep, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]float64, tt.samples)
			frames := Segment(samples, tt.frameSize, tt.step)
			assert.Len(t, frames, tt.want)
		})
	}
}

func TestSegmentContents(t *testing.T) {
	samples := []float64{0, 1, 2, 3, 4, 5, 6, 7}

	frames := Segment(samples, 4, 2)
	require.Len(t, frames, 3)

	assert.Equal(t, []float64{0, 1, 2, 3}, frames[0])
	assert.Equal(t, []float64{2, 3, 4, 5}, frames[1])
	assert.Equal(t, []float64{4, 5, 6, 7}, frames[2])

	for _, frame := range frames {
		assert.Len(t, frame, 4)
	}
}

func TestSegmentInvalidGeometry(t *testing.T) {
	samples := make([]float64, 64)

	assert.Nil(t, Segment(samples, 0, 4))
	assert.Nil(t, Segment(samples, 16, 0))
	assert.Nil(t, Segment(samples, -1, -1))
	assert.Nil(t, Segment(nil, 16, 8))
}
