package answers

import "sort"

// AnswerSet maps question id to its answer. A present key means answered,
// even when the value is empty (an explicit skip).
type AnswerSet map[string]Value

// Has reports whether the question has been answered or skipped
func (a AnswerSet) Has(id string) bool {
	_, ok := a[id]
	return ok
}

// Get returns the answer for id, null when missing
func (a AnswerSet) Get(id string) Value {
	return a[id]
}

// Text is shorthand for Get(id).Text()
func (a AnswerSet) Text(id string) string {
	return a[id].Text()
}

// With returns a copy of the set with id overwritten
func (a AnswerSet) With(id string, v Value) AnswerSet {
	next := a.Clone()
	next[id] = v
	return next
}

// Without returns a copy of the set with id removed
func (a AnswerSet) Without(id string) AnswerSet {
	next := a.Clone()
	delete(next, id)
	return next
}

// Clone copies the top-level mapping. Values are treated as immutable.
func (a AnswerSet) Clone() AnswerSet {
	next := make(AnswerSet, len(a)+1)
	for k, v := range a {
		next[k] = v
	}
	return next
}

// Keys returns answered ids in sorted order
func (a AnswerSet) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot flattens the set into plain text, used as prompt context
func (a AnswerSet) Snapshot() map[string]string {
	out := make(map[string]string, len(a))
	for k, v := range a {
		out[k] = v.Text()
	}
	return out
}
