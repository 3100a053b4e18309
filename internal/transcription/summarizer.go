package transcription

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"interview-evaluator/internal/ai"
)

const summarySystemPrompt = `You are a specialist in evaluating technical interviews for developers.

IMPORTANT - TRANSCRIPTION ERRORS:
The candidate's answer was obtained through automatic transcription, which may
contain errors, especially in technical terms. When analyzing, account for
possible transcription mistakes and focus on the conceptual understanding shown.

Your role is to analyze and summarize candidate answers, focusing on:

1. Main technical concepts mentioned
2. Depth of knowledge demonstrated
3. Clarity and structure of the explanation
4. Practical examples or use cases cited
5. Possible misunderstandings or conceptual confusion

When summarizing, keep:
- Objectivity in the analysis
- Focus on the relevant technical points
- Clear identification of strengths and weaknesses
- Professional, technical language
- Brevity without losing crucial information

Avoid:
- Personal judgements
- Redundant information
- Irrelevant non-technical details`

// Summarizer condenses a transcript into a short technical summary via a
// streaming completion. It is optional and purely informational; nothing
// downstream consumes the summary.
type Summarizer struct {
	completer ai.StreamCompleter
	logger    *zap.Logger
}

// NewSummarizer creates a summarizer backed by a streaming completer.
func NewSummarizer(completer ai.StreamCompleter, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Summarizer{completer: completer, logger: logger}
}

// Summarize streams a summary of the transcript and returns the full
// concatenated text.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", fmt.Errorf("transcript must not be empty")
	}

	received := 0
	summary, err := s.completer.StreamCompletion(ctx, summarySystemPrompt, transcript, func(delta string) {
		received++
	})
	if err != nil {
		return "", fmt.Errorf("summarizing transcript: %w", err)
	}

	s.logger.Debug("summary generated",
		zap.Int("stream_chunks", received),
		zap.Int("summary_length", len(summary)),
	)

	return strings.TrimSpace(summary), nil
}
