package evaluation

import (
	"errors"
	"testing"
)

func TestParseStrict(t *testing.T) {
	parsed, err := ParseStrict("candidato_joao_frontend_q1.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.CandidateName != "joao" {
		t.Fatalf("expected candidate joao, got %q", parsed.CandidateName)
	}
	if parsed.JobPosition != "frontend" {
		t.Fatalf("expected position frontend, got %q", parsed.JobPosition)
	}
	if parsed.QuestionNumber != 1 {
		t.Fatalf("expected question number 1, got %d", parsed.QuestionNumber)
	}
}

func TestParseStrictExtraMiddleTokens(t *testing.T) {
	parsed, err := ParseStrict("candidato_maria_senior_backend_q12.mov")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.CandidateName != "maria" {
		t.Fatalf("expected candidate maria, got %q", parsed.CandidateName)
	}
	if parsed.JobPosition != "backend" {
		t.Fatalf("expected position backend, got %q", parsed.JobPosition)
	}
	if parsed.QuestionNumber != 12 {
		t.Fatalf("expected question number 12, got %d", parsed.QuestionNumber)
	}
}

func TestParseStrictLowercasesPosition(t *testing.T) {
	parsed, err := ParseStrict("candidato_ana_Frontend_q2.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.JobPosition != "frontend" {
		t.Fatalf("expected lowercased position, got %q", parsed.JobPosition)
	}
}

func TestParseStrictFailures(t *testing.T) {
	cases := []struct {
		name     string
		filename string
	}{
		{"no question suffix", "bad.mp4"},
		{"no question suffix with tokens", "candidato_joao_frontend.mp4"},
		{"too few tokens", "candidato_joao_q1.mp4"},
		{"empty base", ".mp4"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseStrict(tc.filename)
			if err == nil {
				t.Fatalf("expected parse error for %q", tc.filename)
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if parseErr.Filename != tc.filename {
				t.Fatalf("expected offending filename %q, got %q", tc.filename, parseErr.Filename)
			}
			if parseErr.Reason == "" {
				t.Fatalf("expected a reason in the parse error")
			}
		})
	}
}

func TestParseSimpleMode(t *testing.T) {
	parsed, err := Parse("candidato_joao_frontend.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.CandidateName != "joao" {
		t.Fatalf("expected candidate joao, got %q", parsed.CandidateName)
	}
	if parsed.JobPosition != "frontend" {
		t.Fatalf("expected position frontend, got %q", parsed.JobPosition)
	}
	if parsed.QuestionNumber != 0 {
		t.Fatalf("expected no question number, got %d", parsed.QuestionNumber)
	}
}

func TestParseSimpleModeTooFewTokens(t *testing.T) {
	_, err := Parse("candidato_x.mp4")
	if err == nil {
		t.Fatal("expected parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}
