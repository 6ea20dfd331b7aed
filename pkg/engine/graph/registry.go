package graph

import "grant-assistant-be/pkg/engine/answers"

type TextFunc func(answers.AnswerSet) string
type OptionsFunc func(answers.AnswerSet) []Option
type ConditionFunc func(answers.AnswerSet) bool

// Registry maps resolver names used in a definition to pure functions
type Registry struct {
	texts      map[string]TextFunc
	options    map[string]OptionsFunc
	conditions map[string]ConditionFunc
}

func NewRegistry() *Registry {
	return &Registry{
		texts:      make(map[string]TextFunc),
		options:    make(map[string]OptionsFunc),
		conditions: make(map[string]ConditionFunc),
	}
}

func (r *Registry) RegisterText(name string, fn TextFunc) *Registry {
	r.texts[name] = fn
	return r
}

func (r *Registry) RegisterOptions(name string, fn OptionsFunc) *Registry {
	r.options[name] = fn
	return r
}

func (r *Registry) RegisterCondition(name string, fn ConditionFunc) *Registry {
	r.conditions[name] = fn
	return r
}

func (r *Registry) hasText(name string) bool {
	_, ok := r.texts[name]
	return ok
}

func (r *Registry) hasOptions(name string) bool {
	_, ok := r.options[name]
	return ok
}

func (r *Registry) hasCondition(name string) bool {
	_, ok := r.conditions[name]
	return ok
}
