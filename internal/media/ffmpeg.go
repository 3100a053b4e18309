package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const tempAudioName = "temp_audio.mp3"

// FFmpeg shells out to an ffmpeg binary for audio extraction and frame
// capture. The binary is resolved once at construction.
type FFmpeg struct {
	path   string
	logger *zap.Logger
}

// New resolves the ffmpeg binary from an explicit path or, when empty,
// from $PATH.
func New(path string, logger *zap.Logger) (*FFmpeg, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	path = strings.TrimSpace(path)
	if path == "" {
		resolved, err := exec.LookPath("ffmpeg")
		if err != nil {
			return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
		}
		path = resolved
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("ffmpeg binary %q: %w", path, err)
	}

	logger.Debug("ffmpeg resolved", zap.String("path", path))

	return &FFmpeg{path: path, logger: logger}, nil
}

// ExtractAudio pulls the audio track out of the video into a temporary
// mp3 under outDir and returns its path. A video without an audio stream
// fails here with ffmpeg's diagnostic.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	audioPath := filepath.Join(outDir, tempAudioName)

	err := f.run(ctx,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		audioPath,
	)
	if err != nil {
		return "", fmt.Errorf("extracting audio from %s: %w", videoPath, err)
	}

	return audioPath, nil
}

// CaptureFrames writes one jpg per interval seconds of video into outDir
// and returns the produced paths in order.
func (f *FFmpeg) CaptureFrames(ctx context.Context, videoPath, outDir string, interval int) ([]string, error) {
	if interval <= 0 {
		return nil, errors.New("frame interval must be positive")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	pattern := filepath.Join(outDir, "frame_%04d.jpg")

	err := f.run(ctx,
		"-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%d", interval),
		"-q:v", "2",
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("capturing frames from %s: %w", videoPath, err)
	}

	frames, err := filepath.Glob(filepath.Join(outDir, "frame_*.jpg"))
	if err != nil {
		return nil, err
	}
	sort.Strings(frames)

	return frames, nil
}

// Cleanup removes a temporary file produced by an earlier step.
// Failures are logged and swallowed; a leftover temp file must not fail
// the artifact.
func (f *FFmpeg) Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		f.logger.Warn("removing temporary file failed",
			zap.String("path", path),
			zap.Error(err),
		)
	}
}

func (f *FFmpeg) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, f.path, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	f.logger.Debug("running ffmpeg", zap.Strings("args", args))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s", err, lastLines(stderr.String(), 3))
	}

	return nil
}

// lastLines keeps the tail of ffmpeg's stderr, which is where the actual
// failure reason ends up.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}
