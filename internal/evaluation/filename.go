package evaluation

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Artifact names follow the convention
// candidato_<name>_..._<position>_q<N>.<ext> (strict) or
// candidato_<name>_..._<position>.<ext> (simple). The candidate segment is
// the single token after the leading marker token; the job position is the
// last token before the optional question suffix. Candidate names therefore
// cannot themselves contain underscores; extra middle tokens are ignored.
var (
	questionSuffixRe = regexp.MustCompile(`^(?P<prefix>.+)_q(?P<number>\d+)$`)
	baseNameRe       = regexp.MustCompile(`^[^_]+_(?P<candidate>[^_]+)(?:_[^_]+)*_(?P<position>[^_]+)$`)
)

// ParsedName holds the identity extracted from an artifact name.
type ParsedName struct {
	// CandidateName is the candidate identifier embedded in the name.
	CandidateName string
	// JobPosition is the lowercased job position identifier.
	JobPosition string
	// QuestionNumber is the 1-based question index in strict mode,
	// 0 when the name was parsed in simple mode.
	QuestionNumber int
}

// ParseStrict decodes an artifact name carrying a question number.
// The base name must end in _q<digits> and the remaining prefix must
// contain at least three underscore-delimited tokens.
func ParseStrict(filename string) (ParsedName, error) {
	base := stripExtension(filename)

	m := questionSuffixRe.FindStringSubmatch(base)
	if m == nil {
		return ParsedName{}, &ParseError{
			Filename: filename,
			Reason:   "missing _q<N> question suffix",
		}
	}

	prefix := m[questionSuffixRe.SubexpIndex("prefix")]
	number, err := strconv.Atoi(m[questionSuffixRe.SubexpIndex("number")])
	if err != nil {
		return ParsedName{}, &ParseError{
			Filename: filename,
			Reason:   "question suffix is not a valid number",
		}
	}

	parsed, perr := parseBaseName(filename, prefix)
	if perr != nil {
		return ParsedName{}, perr
	}

	parsed.QuestionNumber = number
	return parsed, nil
}

// Parse decodes an artifact name without a question number. Callers using
// the whole-transcript workflow use this variant; the per-question
// incremental workflow requires ParseStrict.
func Parse(filename string) (ParsedName, error) {
	parsed, err := parseBaseName(filename, stripExtension(filename))
	if err != nil {
		return ParsedName{}, err
	}
	return parsed, nil
}

func parseBaseName(filename, base string) (ParsedName, *ParseError) {
	m := baseNameRe.FindStringSubmatch(base)
	if m == nil {
		return ParsedName{}, &ParseError{
			Filename: filename,
			Reason:   "expected at least three underscore-delimited segments",
		}
	}

	return ParsedName{
		CandidateName: m[baseNameRe.SubexpIndex("candidate")],
		JobPosition:   strings.ToLower(m[baseNameRe.SubexpIndex("position")]),
	}, nil
}

func stripExtension(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
