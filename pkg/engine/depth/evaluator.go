// FILE: pkg/engine/depth/evaluator.go
// PURPOSE: Coarse, deterministic elaboration level (0-5) of a free-text answer

package depth

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"grant-assistant-be/pkg/engine/rubric"
)

const (
	MinLevel = 0
	MaxLevel = 5
)

// Length thresholds in characters for levels 2, 3, 4 and 5
const (
	lengthLevel2 = 50
	lengthLevel3 = 100
	lengthLevel4 = 150
	lengthLevel5 = 200
)

var digitPattern = regexp.MustCompile(`\d+`)

// Evaluator scores answer depth. It holds no state besides its marker lists.
type Evaluator struct {
	exemplar []string
	causal   []string
}

// NewEvaluator builds an evaluator from the rubric marker lists
func NewEvaluator(cfg rubric.Depth) *Evaluator {
	return &Evaluator{
		exemplar: lowerAll(cfg.ExemplarMarkers),
		causal:   lowerAll(cfg.CausalMarkers),
	}
}

// Signals describes what the evaluator found in a text
type Signals struct {
	Length   int  `json:"length"`
	Digit    bool `json:"digit"`
	Exemplar bool `json:"exemplar"`
	Causal   bool `json:"causal"`
}

// Inspect extracts the raw signals used by Level
func (e *Evaluator) Inspect(text string) Signals {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	return Signals{
		Length:   utf8.RuneCountInString(trimmed),
		Digit:    digitPattern.MatchString(trimmed),
		Exemplar: containsAny(lower, e.exemplar),
		Causal:   containsAny(lower, e.causal),
	}
}

// Level returns the depth of a free-text answer
func (e *Evaluator) Level(text string) int {
	s := e.Inspect(text)
	switch {
	case s.Length == 0:
		return MinLevel
	case s.Length >= lengthLevel5 && s.Digit && s.Exemplar && s.Causal:
		return MaxLevel
	case s.Length >= lengthLevel4 && (s.Digit || s.Exemplar):
		return 4
	case s.Length >= lengthLevel3:
		return 3
	case s.Length >= lengthLevel2:
		return 2
	default:
		return 1
	}
}

// IsFreeText reports whether depth is meaningful for the question type
func IsFreeText(questionType string) bool {
	switch questionType {
	case "text", "textarea", "":
		return true
	default:
		return false
	}
}

// LevelFor returns MaxLevel for closed-form answers and Level(text) otherwise
func (e *Evaluator) LevelFor(questionType, text string) int {
	if !IsFreeText(questionType) {
		return MaxLevel
	}
	return e.Level(text)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
