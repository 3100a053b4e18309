package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const transcriptFileName = "transcription.json"

// SpeechToText converts a finished audio file into plain text. The rest
// of the pipeline only needs the final text, no timing information.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioPath, model, language string) (string, error)
}

// Config selects the transcription model and spoken language.
type Config struct {
	Model    string
	Language string
}

// Transcriber turns extracted interview audio into a transcript and
// persists it for operator review.
type Transcriber struct {
	stt    SpeechToText
	cfg    Config
	logger *zap.Logger
}

// New creates a transcriber using the given speech-to-text backend.
func New(stt SpeechToText, cfg Config, logger *zap.Logger) *Transcriber {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Transcriber{stt: stt, cfg: cfg, logger: logger}
}

// Transcribe converts the audio file into plain text.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	t.logger.Info("transcribing audio", zap.String("audio_path", audioPath))

	text, err := t.stt.Transcribe(ctx, audioPath, t.cfg.Model, t.cfg.Language)
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", audioPath, err)
	}

	text = strings.TrimSpace(text)
	t.logger.Debug("transcription finished", zap.Int("transcript_length", len(text)))

	return text, nil
}

// SaveTranscript writes the transcript as an indented JSON document under
// outDir and returns the file path. Non-ASCII text is preserved as is.
func (t *Transcriber) SaveTranscript(transcript, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", outDir, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]string{"transcription": transcript}); err != nil {
		return "", fmt.Errorf("encoding transcript: %w", err)
	}

	path := filepath.Join(outDir, transcriptFileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing transcript %s: %w", path, err)
	}

	return path, nil
}
