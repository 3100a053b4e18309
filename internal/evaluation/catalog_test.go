package evaluation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeJobFile(t *testing.T, dir, position, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, position+".json"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing job file: %v", err)
	}
}

func TestCatalogLoad(t *testing.T) {
	dir := t.TempDir()
	writeJobFile(t, dir, "frontend", `{
		"name": "frontend",
		"questions": [
			{"question": "What is the virtual DOM?", "expected_answer": "An in-memory representation of the UI.", "weight": 2.0},
			{"question": "What does CSS specificity mean?", "expected_answer": "How the browser decides which rule wins."}
		]
	}`)

	job, err := NewCatalog(dir).Load("frontend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if job.Name != "frontend" {
		t.Fatalf("expected name frontend, got %q", job.Name)
	}
	if len(job.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(job.Questions))
	}
	if job.Questions[0].Weight != 2.0 {
		t.Fatalf("expected explicit weight 2.0, got %v", job.Questions[0].Weight)
	}
	if job.Questions[1].Weight != 1.0 {
		t.Fatalf("expected default weight 1.0, got %v", job.Questions[1].Weight)
	}
}

func TestCatalogLoadNotFound(t *testing.T) {
	_, err := NewCatalog(t.TempDir()).Load("missing")
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestCatalogLoadInvalidSchema(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing name", `{"questions": [{"question": "q", "expected_answer": "a"}]}`},
		{"question missing expected answer", `{"name": "backend", "questions": [{"question": "q"}]}`},
		{"malformed json", `{"name": "backend",`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeJobFile(t, dir, "backend", tc.content)

			_, err := NewCatalog(dir).Load("backend")
			if err == nil {
				t.Fatal("expected schema error")
			}

			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *SchemaError, got %T: %v", err, err)
			}
			if len(schemaErr.Reasons) == 0 {
				t.Fatal("expected at least one reason")
			}
		})
	}
}

func TestCatalogReloadsEveryCall(t *testing.T) {
	dir := t.TempDir()
	catalog := NewCatalog(dir)

	writeJobFile(t, dir, "devops", `{"name": "devops", "questions": []}`)
	if _, err := catalog.Load("devops"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeJobFile(t, dir, "devops", `{
		"name": "devops",
		"questions": [{"question": "What is IaC?", "expected_answer": "Managing infrastructure through code."}]
	}`)

	job, err := catalog.Load("devops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(job.Questions) != 1 {
		t.Fatalf("expected the updated record to be re-read, got %d questions", len(job.Questions))
	}
}
