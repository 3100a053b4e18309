package evaluation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// InterviewEvaluator composes the filename parser, the job catalog, the
// answer judge and the evaluation store. It is a stateless facade; all
// durable state lives in the store's on-disk records.
type InterviewEvaluator struct {
	catalog *Catalog
	answers *AnswerEvaluator
	store   *Store
	logger  *zap.Logger
}

// NewInterviewEvaluator wires the orchestrator from its collaborators.
func NewInterviewEvaluator(catalog *Catalog, answers *AnswerEvaluator, store *Store, logger *zap.Logger) *InterviewEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &InterviewEvaluator{
		catalog: catalog,
		answers: answers,
		store:   store,
		logger:  logger,
	}
}

// EvaluateInterview scores the single answer identified by a strict
// artifact name and merges it into the per-candidate record, returning
// the saved record path. Parse, catalog, bounds and persistence failures
// are returned for the caller to report; they are terminal for this
// artifact only. The judging step itself never fails.
func (ie *InterviewEvaluator) EvaluateInterview(ctx context.Context, artifactName, transcript string) (string, error) {
	parsed, err := ParseStrict(artifactName)
	if err != nil {
		return "", err
	}

	job, err := ie.catalog.Load(parsed.JobPosition)
	if err != nil {
		return "", err
	}

	if parsed.QuestionNumber < 1 || parsed.QuestionNumber > len(job.Questions) {
		return "", fmt.Errorf("question number %d out of range [1, %d] for position %q",
			parsed.QuestionNumber, len(job.Questions), parsed.JobPosition)
	}

	question := job.Questions[parsed.QuestionNumber-1]
	result := ie.answers.Evaluate(ctx, transcript, question.Question, question.ExpectedAnswer)

	unlock := ie.store.Lock(parsed.CandidateName, parsed.JobPosition)
	defer unlock()

	record, err := ie.store.LoadOrCreate(parsed.CandidateName, parsed.JobPosition)
	if err != nil {
		return "", err
	}

	replaced := record.Upsert(QuestionEvaluation{
		Question:          question.Question,
		TranscribedAnswer: transcript,
		ExpectedAnswer:    question.ExpectedAnswer,
		Score:             result.Score,
		Feedback:          result.Feedback,
	})
	record.RecomputeAverage()

	path, err := ie.store.Save(record)
	if err != nil {
		return "", err
	}

	ie.logger.Info("question evaluation recorded",
		zap.String("candidate", parsed.CandidateName),
		zap.String("job_position", parsed.JobPosition),
		zap.Int("question_number", parsed.QuestionNumber),
		zap.Bool("replaced_previous", replaced),
		zap.Float64("score", result.Score),
		zap.Float64("average_score", record.AverageScore),
	)

	return path, nil
}

// EvaluateFullTranscript scores the entire transcript against every
// question of the job position named by a simple-mode artifact name.
// Answer segmentation per question is not attempted; each question is
// judged against the full transcript and upserted into the record.
func (ie *InterviewEvaluator) EvaluateFullTranscript(ctx context.Context, artifactName, transcript string) (string, error) {
	parsed, err := Parse(artifactName)
	if err != nil {
		return "", err
	}

	job, err := ie.catalog.Load(parsed.JobPosition)
	if err != nil {
		return "", err
	}

	unlock := ie.store.Lock(parsed.CandidateName, parsed.JobPosition)
	defer unlock()

	record, err := ie.store.LoadOrCreate(parsed.CandidateName, parsed.JobPosition)
	if err != nil {
		return "", err
	}

	for _, question := range job.Questions {
		result := ie.answers.Evaluate(ctx, transcript, question.Question, question.ExpectedAnswer)

		record.Upsert(QuestionEvaluation{
			Question:          question.Question,
			TranscribedAnswer: transcript,
			ExpectedAnswer:    question.ExpectedAnswer,
			Score:             result.Score,
			Feedback:          result.Feedback,
		})
	}
	record.RecomputeAverage()

	path, err := ie.store.Save(record)
	if err != nil {
		return "", err
	}

	ie.logger.Info("full transcript evaluation recorded",
		zap.String("candidate", parsed.CandidateName),
		zap.String("job_position", parsed.JobPosition),
		zap.Int("question_count", len(job.Questions)),
		zap.Float64("average_score", record.AverageScore),
	)

	return path, nil
}
