package evaluation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// QuestionEvaluation is the persisted result of judging one question.
// Its Question text is the merge key within an evaluation record.
type QuestionEvaluation struct {
	Question          string  `json:"question"`
	TranscribedAnswer string  `json:"transcribed_answer"`
	ExpectedAnswer    string  `json:"expected_answer"`
	Score             float64 `json:"score"`
	Feedback          string  `json:"feedback"`
}

// InterviewEvaluation is the persisted aggregate of all scored questions
// for one candidate and job position.
type InterviewEvaluation struct {
	CandidateName string               `json:"candidate_name"`
	JobPosition   string               `json:"job_position"`
	Evaluations   []QuestionEvaluation `json:"evaluations"`
	AverageScore  float64              `json:"average_score"`
}

// Upsert merges a question evaluation into the record, keyed by the
// question text. A matching entry is replaced in place, preserving its
// position; otherwise the entry is appended. Returns whether an existing
// entry was replaced. Callers must recompute the average afterwards.
func (ev *InterviewEvaluation) Upsert(qe QuestionEvaluation) bool {
	for i := range ev.Evaluations {
		if ev.Evaluations[i].Question == qe.Question {
			ev.Evaluations[i] = qe
			return true
		}
	}

	ev.Evaluations = append(ev.Evaluations, qe)
	return false
}

// RecomputeAverage sets AverageScore to the arithmetic mean of the stored
// scores, or 0.0 when the record holds no evaluations.
func (ev *InterviewEvaluation) RecomputeAverage() {
	if len(ev.Evaluations) == 0 {
		ev.AverageScore = 0.0
		return
	}

	total := 0.0
	for _, qe := range ev.Evaluations {
		total += qe.Score
	}
	ev.AverageScore = total / float64(len(ev.Evaluations))
}

// Store persists interview evaluations as one JSON file per candidate and
// job position under a fixed output directory. Read-modify-write cycles
// on one record must not interleave, so the store hands out a mutex per
// derived record path.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store writing records under dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}
}

// RecordPath derives the deterministic on-disk path for a candidate and
// job position. Any two artifacts resolving to the same pair target the
// same record, which is what makes incremental per-question evaluation
// accumulate instead of clobbering.
func (s *Store) RecordPath(candidate, position string) string {
	return filepath.Join(s.dir, fmt.Sprintf("evaluation_%s_%s.json", candidate, position))
}

// Lock acquires the mutex guarding the record for the given pair and
// returns the release function. Hold it across LoadOrCreate, Upsert and
// Save so concurrent callers cannot silently drop each other's writes.
func (s *Store) Lock(candidate, position string) (unlock func()) {
	key := s.RecordPath(candidate, position)

	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// LoadOrCreate returns the existing record for the pair, or a fresh empty
// one when no file exists yet. A file that exists but cannot be decoded
// is a fatal condition for the invocation: the error wraps
// ErrCorruptRecord and the file is left untouched.
func (s *Store) LoadOrCreate(candidate, position string) (*InterviewEvaluation, error) {
	path := s.RecordPath(candidate, position)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &InterviewEvaluation{
			CandidateName: candidate,
			JobPosition:   position,
			Evaluations:   []QuestionEvaluation{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading evaluation record %s: %w", path, err)
	}

	var ev InterviewEvaluation
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrCorruptRecord, path, err)
	}
	if ev.Evaluations == nil {
		ev.Evaluations = []QuestionEvaluation{}
	}

	return &ev, nil
}

// Save serializes the record to its derived path, overwriting any
// existing file. Output is indented two spaces and non-ASCII text is
// preserved literally for human readability.
func (s *Store) Save(ev *InterviewEvaluation) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", s.dir, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ev); err != nil {
		return "", fmt.Errorf("encoding evaluation record: %w", err)
	}

	path := s.RecordPath(ev.CandidateName, ev.JobPosition)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing evaluation record %s: %w", path, err)
	}

	return path, nil
}
