package graph

import (
	"encoding/json"
	"fmt"
	"strings"

	"grant-assistant-be/pkg/engine/answers"
)

// QuestionType drives rendering and whether depth evaluation applies
type QuestionType string

const (
	TypeText        QuestionType = "text"
	TypeTextarea    QuestionType = "textarea"
	TypeNumber      QuestionType = "number"
	TypeSelect      QuestionType = "select"
	TypeMultiSelect QuestionType = "multiselect"
	TypeExpenses    QuestionType = "expenses"
)

// Option is one choice of a select question
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// ResolvableKind discriminates Resolvable variants
type ResolvableKind int

const (
	Unset ResolvableKind = iota
	LiteralKind
	ComputedKind
)

// Resolvable is either a literal value or a reference to a pure resolver
// over the current answer set. It is resolved at read time, never cached.
type Resolvable[T any] struct {
	kind    ResolvableKind
	literal T
	ref     string
}

func Literal[T any](v T) Resolvable[T] {
	return Resolvable[T]{kind: LiteralKind, literal: v}
}

func Computed[T any](ref string) Resolvable[T] {
	return Resolvable[T]{kind: ComputedKind, ref: ref}
}

func (r Resolvable[T]) Kind() ResolvableKind { return r.kind }
func (r Resolvable[T]) Ref() string { return r.ref }
func (r Resolvable[T]) LiteralValue() T { return r.literal }

func (r Resolvable[T]) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case LiteralKind:
		return json.Marshal(r.literal)
	case ComputedKind:
		return json.Marshal(map[string]string{"computed": r.ref})
	case Unset:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("unknown resolvable kind %d", r.kind)
	}
}

// ConditionKind discriminates Condition variants
type ConditionKind int

const (
	Always ConditionKind = iota
	ConditionComputed
	ConditionFieldIn
)

// Condition gates a node's eligibility
type Condition struct {
	Kind  ConditionKind `json:"kind"`
	Ref   string        `json:"ref,omitempty"`
	Field string        `json:"field,omitempty"`
	In    []string      `json:"in,omitempty"`
}

// WhenComputed gates a node on a registered predicate
func WhenComputed(ref string) Condition {
	return Condition{Kind: ConditionComputed, Ref: ref}
}

// WhenFieldIn gates a node on another answer's value
func WhenFieldIn(field string, values ...string) Condition {
	return Condition{Kind: ConditionFieldIn, Field: field, In: values}
}

func (c Condition) matchField(set answers.AnswerSet) bool {
	v, ok := set[c.Field]
	if !ok {
		return false
	}
	candidates := []answers.Value{v}
	if v.Kind() == answers.KindList {
		candidates = v.Items()
	}
	for _, candidate := range candidates {
		got := strings.ToLower(strings.TrimSpace(candidate.Text()))
		for _, want := range c.In {
			if got == strings.ToLower(want) {
				return true
			}
		}
	}
	return false
}

// QuestionNode is an immutable question definition
type QuestionNode struct {
	ID           string               `yaml:"id" json:"id"`
	Priority     int                  `yaml:"priority" json:"priority"`
	Type         QuestionType         `yaml:"type" json:"type"`
	Required     bool                 `yaml:"required" json:"required"`
	Section      string               `yaml:"section" json:"section,omitempty"`
	Dependencies []string             `yaml:"dependencies" json:"dependencies,omitempty"`
	Condition    Condition            `yaml:"condition" json:"condition"`
	Text         Resolvable[string]   `yaml:"text" json:"text"`
	HelpText     Resolvable[string]   `yaml:"help" json:"help,omitempty"`
	Placeholder  Resolvable[string]   `yaml:"placeholder" json:"placeholder,omitempty"`
	Options      Resolvable[[]Option] `yaml:"options" json:"options,omitempty"`
	GapCategory  string               `yaml:"gap_category" json:"gap_category,omitempty"`
}

// Question is a node rendered against a specific answer snapshot
type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Text        string       `json:"text"`
	HelpText    string       `json:"help_text,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Options     []Option     `json:"options,omitempty"`
	Required    bool         `json:"required"`
	Priority    int          `json:"priority"`
	Section     string       `json:"section,omitempty"`
	ParentID    string       `json:"parent_id,omitempty"`
	Inserted    bool         `json:"inserted,omitempty"`
}
