package evaluation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// scriptGenerator hands out one scripted response per call, in order.
type scriptGenerator struct {
	responses []string
	calls     int
}

func (s *scriptGenerator) GenerateContent(_ context.Context, _ string) (string, error) {
	if s.calls >= len(s.responses) {
		return "", errors.New("no scripted response left")
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func (s *scriptGenerator) Model() string { return "script-model" }

const frontendJob = `{
  "name": "frontend",
  "questions": [
    {"question": "What is a closure?", "expected_answer": "A function capturing its lexical scope."},
    {"question": "Explain event delegation.", "expected_answer": "Attach one listener on an ancestor and dispatch by target."}
  ]
}`

func newTestEvaluator(t *testing.T, gen *scriptGenerator) (*InterviewEvaluator, *Store, string) {
	t.Helper()

	jobsDir := t.TempDir()
	writeJobFile(t, jobsDir, "frontend", frontendJob)

	outDir := t.TempDir()
	store := NewStore(outDir)
	answers := NewAnswerEvaluator(gen, zap.NewNop(), 0)

	return NewInterviewEvaluator(NewCatalog(jobsDir), answers, store, zap.NewNop()), store, outDir
}

func TestEvaluateInterviewAccumulates(t *testing.T) {
	gen := &scriptGenerator{responses: []string{
		`{"score": 8, "feedback": "Solid."}`,
		`{"score": 6, "feedback": "Partial."}`,
	}}
	evaluator, store, _ := newTestEvaluator(t, gen)
	ctx := context.Background()

	path, err := evaluator.EvaluateInterview(ctx, "entrevista_ana_frontend_q1.mp4", "a closure captures scope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "evaluation_ana_frontend.json" {
		t.Fatalf("unexpected record path: %s", path)
	}

	record, err := store.LoadOrCreate("ana", "frontend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Evaluations) != 1 || record.AverageScore != 8 {
		t.Fatalf("after first question expected 1 entry with average 8, got %+v", record)
	}

	if _, err := evaluator.EvaluateInterview(ctx, "entrevista_ana_frontend_q2.mp4", "listeners on the parent"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err = store.LoadOrCreate("ana", "frontend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Evaluations) != 2 {
		t.Fatalf("expected 2 entries, got %+v", record)
	}
	if record.Evaluations[0].Question != "What is a closure?" ||
		record.Evaluations[1].Question != "Explain event delegation." {
		t.Fatalf("unexpected question order: %+v", record.Evaluations)
	}
	if math.Abs(record.AverageScore-7) > 1e-9 {
		t.Fatalf("expected average 7, got %v", record.AverageScore)
	}
}

func TestEvaluateInterviewReplacesOnRerun(t *testing.T) {
	gen := &scriptGenerator{responses: []string{
		`{"score": 8, "feedback": "Solid."}`,
		`{"score": 6, "feedback": "Partial."}`,
		`{"score": 4, "feedback": "Weaker on retry."}`,
	}}
	evaluator, store, _ := newTestEvaluator(t, gen)
	ctx := context.Background()

	for _, name := range []string{
		"entrevista_ana_frontend_q1.mp4",
		"entrevista_ana_frontend_q2.mp4",
		"entrevista_ana_frontend_q1.mp4",
	} {
		if _, err := evaluator.EvaluateInterview(ctx, name, "an answer"); err != nil {
			t.Fatalf("unexpected error for %s: %v", name, err)
		}
	}

	record, err := store.LoadOrCreate("ana", "frontend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Evaluations) != 2 {
		t.Fatalf("re-evaluation must not grow the record, got %d entries", len(record.Evaluations))
	}
	if record.Evaluations[0].Score != 4 || record.Evaluations[0].Feedback != "Weaker on retry." {
		t.Fatalf("expected q1 entry replaced in place, got %+v", record.Evaluations[0])
	}
	if record.Evaluations[1].Score != 6 {
		t.Fatalf("expected q2 untouched, got %+v", record.Evaluations[1])
	}
	if math.Abs(record.AverageScore-5) > 1e-9 {
		t.Fatalf("expected recomputed average 5, got %v", record.AverageScore)
	}
}

func TestEvaluateInterviewParseFailureWritesNothing(t *testing.T) {
	gen := &scriptGenerator{}
	evaluator, _, outDir := newTestEvaluator(t, gen)

	_, err := evaluator.EvaluateInterview(context.Background(), "candidato_x.mp4", "an answer")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected a parse error, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("judge must not be called on parse failure, got %d calls", gen.calls)
	}

	entries, readErr := os.ReadDir(outDir)
	if readErr != nil {
		t.Fatalf("reading output dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no record written, found %d entries", len(entries))
	}
}

func TestEvaluateInterviewQuestionOutOfRange(t *testing.T) {
	gen := &scriptGenerator{}
	evaluator, _, _ := newTestEvaluator(t, gen)

	_, err := evaluator.EvaluateInterview(context.Background(), "entrevista_ana_frontend_q3.mp4", "an answer")
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected out of range error, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("judge must not be called for an out of range question, got %d calls", gen.calls)
	}
}

func TestEvaluateInterviewUnknownPosition(t *testing.T) {
	gen := &scriptGenerator{}
	evaluator, _, _ := newTestEvaluator(t, gen)

	_, err := evaluator.EvaluateInterview(context.Background(), "entrevista_ana_devops_q1.mp4", "an answer")
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestEvaluateInterviewCorruptRecordIsFatal(t *testing.T) {
	gen := &scriptGenerator{responses: []string{`{"score": 8, "feedback": "Solid."}`}}
	evaluator, store, _ := newTestEvaluator(t, gen)

	path := store.RecordPath("ana", "frontend")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("writing corrupt record: %v", err)
	}

	_, err := evaluator.EvaluateInterview(context.Background(), "entrevista_ana_frontend_q1.mp4", "an answer")
	if !errors.Is(err, ErrCorruptRecord) {
		t.Fatalf("expected ErrCorruptRecord, got %v", err)
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("reading record back: %v", readErr)
	}
	if string(data) != "{broken" {
		t.Fatalf("corrupt record must never be overwritten, got: %s", data)
	}
}

func TestEvaluateFullTranscript(t *testing.T) {
	gen := &scriptGenerator{responses: []string{
		`{"score": 9, "feedback": "Covered closures well."}`,
		`{"score": 3, "feedback": "Delegation barely mentioned."}`,
	}}
	evaluator, store, _ := newTestEvaluator(t, gen)

	transcript := "a long talk about closures and a little about events"
	path, err := evaluator.EvaluateFullTranscript(context.Background(), "entrevista_ana_frontend.mp4", transcript)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "evaluation_ana_frontend.json" {
		t.Fatalf("unexpected record path: %s", path)
	}

	record, err := store.LoadOrCreate("ana", "frontend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(record.Evaluations) != 2 {
		t.Fatalf("expected one entry per question, got %d", len(record.Evaluations))
	}
	for i, qe := range record.Evaluations {
		if qe.TranscribedAnswer != transcript {
			t.Fatalf("entry %d: expected the full transcript as the answer, got %q", i, qe.TranscribedAnswer)
		}
	}
	if math.Abs(record.AverageScore-6) > 1e-9 {
		t.Fatalf("expected average 6, got %v", record.AverageScore)
	}
}
