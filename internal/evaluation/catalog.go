package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// JobQuestion is a single interview question with its expected answer.
// Identity is the question text itself; it is the merge key for
// evaluation records downstream.
type JobQuestion struct {
	Question       string  `json:"question" validate:"required"`
	ExpectedAnswer string  `json:"expected_answer" validate:"required"`
	Weight         float64 `json:"weight"`
}

// UnmarshalJSON defaults Weight to 1.0 when the field is absent while
// keeping an explicit zero weight intact.
func (q *JobQuestion) UnmarshalJSON(data []byte) error {
	type wire struct {
		Question       string   `json:"question"`
		ExpectedAnswer string   `json:"expected_answer"`
		Weight         *float64 `json:"weight"`
	}

	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	q.Question = w.Question
	q.ExpectedAnswer = w.ExpectedAnswer
	q.Weight = 1.0
	if w.Weight != nil {
		q.Weight = *w.Weight
	}

	return nil
}

// JobPosition is a named, ordered question set. The 1-based question
// number from strict artifact names indexes positionally into Questions.
type JobPosition struct {
	Name      string        `json:"name" validate:"required"`
	Questions []JobQuestion `json:"questions" validate:"dive"`
}

// Catalog loads job positions from a directory holding one JSON document
// per position. Records are re-read on every call; nothing is cached.
type Catalog struct {
	dir      string
	validate *validator.Validate
}

// NewCatalog creates a catalog backed by the given directory.
func NewCatalog(dir string) *Catalog {
	return &Catalog{
		dir:      dir,
		validate: validator.New(),
	}
}

// Load reads and validates the question set for the given job position.
// It returns ErrJobNotFound when no record exists and a *SchemaError when
// the record is present but malformed or missing required fields.
func (c *Catalog) Load(position string) (*JobPosition, error) {
	path := filepath.Join(c.dir, position+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("position %q: %w", position, ErrJobNotFound)
		}
		return nil, fmt.Errorf("reading question set for position %q: %w", position, err)
	}

	var job JobPosition
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, &SchemaError{
			Position: position,
			Reasons:  []string{fmt.Sprintf("malformed JSON: %v", err)},
		}
	}

	if err := c.validate.Struct(job); err != nil {
		schemaErr := &SchemaError{Position: position}
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				schemaErr.Reasons = append(schemaErr.Reasons,
					fmt.Sprintf("missing or invalid field %s", fe.Namespace()))
			}
		} else {
			schemaErr.Reasons = []string{err.Error()}
		}
		return nil, schemaErr
	}

	return &job, nil
}
