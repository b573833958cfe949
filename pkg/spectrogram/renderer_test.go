package spectrogram

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	r := NewRenderer(nil)

	tests := []struct {
		input string
		want  string
	}{
		{"/music/track.flac", "track.jpeg"},
		{"/music/album/01 - intro.FLAC", "01 - intro.jpeg"},
		{"/music/noext", "noext.jpeg"},
	}

	for _, tt := range tests {
		got := r.OutputPath("/out", tt.input)
		assert.Equal(t, filepath.Join("/out", tt.want), got)
	}
}

func TestFilterString(t *testing.T) {
	r := NewRenderer(&Config{FFmpegPath: "ffmpeg", Width: 640, Height: 480, MaxWorkers: 1})

	s := r.filterString()
	assert.Contains(t, s, "showspectrumpic=s=640x480")
	assert.Contains(t, s, "win_func=hann")
	assert.Contains(t, s, "drange=120")
}

func TestMaxWorkersDefault(t *testing.T) {
	workers := maxWorkersDefault()

	assert.GreaterOrEqual(t, workers, 1)
	assert.LessOrEqual(t, workers, 6)
}

func TestNewRendererNilConfig(t *testing.T) {
	r := NewRenderer(nil)

	assert.Equal(t, "ffmpeg", r.config.FFmpegPath)
	assert.Equal(t, 1920, r.config.Width)
	assert.Equal(t, 1080, r.config.Height)
	assert.GreaterOrEqual(t, r.config.MaxWorkers, 1)
}

func TestRenderAllMissingFFmpeg(t *testing.T) {
	r := NewRenderer(&Config{FFmpegPath: "/nonexistent/ffmpeg", Width: 16, Height: 16, MaxWorkers: 1})

	failures, err := r.RenderAll(context.Background(), t.TempDir(), []string{"a.flac"})
	assert.Error(t, err)
	assert.Zero(t, failures)
}

func TestRenderAllNoPaths(t *testing.T) {
	r := NewRenderer(&Config{FFmpegPath: "/nonexistent/ffmpeg", Width: 16, Height: 16, MaxWorkers: 1})

	failures, err := r.RenderAll(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Zero(t, failures)
}

func TestRenderOneSkipsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(&Config{FFmpegPath: "/nonexistent/ffmpeg", Width: 16, Height: 16, MaxWorkers: 1})

	existing := r.OutputPath(dir, "/music/track.flac")
	require.NoError(t, os.WriteFile(existing, []byte("jpeg"), 0o644))

	// ffmpeg is unreachable, so success here proves renderOne never ran it.
	out, err := r.renderOne(context.Background(), dir, "/music/track.flac")
	require.NoError(t, err)
	assert.Equal(t, existing, out)
}
