package analysis

// Default frame geometry: 32768-sample frames with 50% overlap.
const (
	DefaultFrameSize = 32768
	DefaultStep      = 16384
)

// Segment splits samples into fixed-length frames that advance by step
// samples. Frames are subslices of the input and may overlap; the trailing
// partial frame is dropped rather than zero-padded. A buffer shorter than
// frameSize yields no frames, which is a valid outcome, not an error.
func Segment(samples []float64, frameSize, step int) [][]float64 {
	if frameSize <= 0 || step <= 0 || len(samples) < frameSize {
		return nil
	}

	numFrames := (len(samples)-frameSize)/step + 1
	frames := make([][]float64, 0, numFrames)
	for start := 0; start+frameSize <= len(samples); start += step {
		frames = append(frames, samples[start:start+frameSize])
	}

	return frames
}
