package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"interview-evaluator/internal/ai"
	"interview-evaluator/internal/util"
)

//go:embed prompt.md
var rubricTemplate string

const defaultMaxLogLength = 200

// promptSanitizer escapes characters that would break the quoted string
// context the inputs are embedded in, preventing prompt corruption and
// downstream JSON parse failures.
var promptSanitizer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EvaluationResult is the outcome of judging one transcribed answer.
type EvaluationResult struct {
	// Score is in [0, 10].
	Score float64
	// Feedback is the judge's explanation, or a failure description when
	// the judge call could not produce a usable result.
	Feedback string
}

// judgeResponse is the JSON object the model is instructed to return.
// Pointer fields distinguish absent keys from zero values.
type judgeResponse struct {
	Score    *float64 `json:"score" validate:"required,min=0,max=10"`
	Feedback *string  `json:"feedback" validate:"required,min=1"`
}

// AnswerEvaluator scores a transcribed answer against the expected one
// using an LLM judge with a fixed rubric. Judge failures never propagate:
// every failure degrades into a zero-score result whose feedback names
// the reason, so downstream aggregation always has a well-formed record.
type AnswerEvaluator struct {
	generator ai.Generator
	validate  *validator.Validate
	logger    *zap.Logger
	maxLogLen int
}

// NewAnswerEvaluator creates an evaluator backed by the given generator.
func NewAnswerEvaluator(generator ai.Generator, logger *zap.Logger, maxLogLength int) *AnswerEvaluator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AnswerEvaluator{
		generator: generator,
		validate:  validator.New(),
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Evaluate judges the transcribed answer and returns a score with
// feedback. It never returns an error; see the type documentation.
func (e *AnswerEvaluator) Evaluate(ctx context.Context, transcribed, question, expected string) EvaluationResult {
	prompt := buildRubricPrompt(question, expected, transcribed)

	e.logger.Debug("judge request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		e.logger.Warn("judge call failed", zap.Error(err))
		return failedResult(fmt.Sprintf("the evaluation service call failed: %v", err))
	}

	e.logger.Debug("judge response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", util.TruncateForLog(raw, e.maxLogLen)),
	)

	if strings.TrimSpace(raw) == "" {
		e.logger.Warn("judge returned an empty response")
		return failedResult("the evaluation service returned an empty response")
	}

	result, err := e.parseResponse(raw)
	if err != nil {
		e.logger.Warn("judge response rejected",
			zap.Error(err),
			zap.String("raw_response", util.TruncateForLog(raw, e.maxLogLen)),
		)
		return failedResult(fmt.Sprintf("the evaluation service returned an unusable response: %v", err))
	}

	return result
}

func (e *AnswerEvaluator) parseResponse(raw string) (EvaluationResult, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return EvaluationResult{}, fmt.Errorf("no JSON object found in response")
	}

	var resp judgeResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return EvaluationResult{}, fmt.Errorf("malformed JSON: %w", err)
	}

	if err := e.validate.Struct(resp); err != nil {
		return EvaluationResult{}, fmt.Errorf("missing or invalid fields: %w", err)
	}

	return EvaluationResult{
		Score:    *resp.Score,
		Feedback: strings.TrimSpace(*resp.Feedback),
	}, nil
}

func failedResult(reason string) EvaluationResult {
	return EvaluationResult{Score: 0, Feedback: "Evaluation failed: " + reason}
}

func buildRubricPrompt(question, expected, transcribed string) string {
	prompt := strings.ReplaceAll(rubricTemplate, "{{QUESTION}}", promptSanitizer.Replace(question))
	prompt = strings.ReplaceAll(prompt, "{{EXPECTED_ANSWER}}", promptSanitizer.Replace(expected))
	prompt = strings.ReplaceAll(prompt, "{{TRANSCRIBED_ANSWER}}", promptSanitizer.Replace(transcribed))
	return prompt
}

// extractJSON pulls a JSON object out of a response that may wrap it in
// markdown code fences or surround it with prose. Brace matching skips
// braces inside string literals.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)

	if idx := strings.Index(response, "```"); idx != -1 {
		rest := response[idx+3:]
		if nl := strings.Index(rest, "\n"); nl != -1 && !strings.HasPrefix(rest, "{") {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end != -1 {
			rest = rest[:end]
		}
		if candidate := strings.TrimSpace(rest); strings.HasPrefix(candidate, "{") {
			response = candidate
		}
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]

		if escaped {
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			escaped = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return response[start : i+1]
				}
			}
		}
	}

	return ""
}
