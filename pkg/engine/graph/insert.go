package graph

import (
	"strings"

	"grant-assistant-be/pkg/engine/answers"
)

// InsertRule queues mandatory follow-on nodes once its trigger question has been answered.
// Nodes are always queued; the variant list is chosen by the value of VariantField.
type InsertRule struct {
	ID             string                    `yaml:"id" json:"id"`
	Trigger        string                    `yaml:"trigger" json:"trigger"`
	Nodes          []QuestionNode            `yaml:"nodes" json:"nodes"`
	VariantField   string                    `yaml:"variant_field" json:"variant_field,omitempty"`
	Variants       map[string][]QuestionNode `yaml:"variants" json:"variants,omitempty"`
	DefaultVariant string                    `yaml:"default_variant" json:"default_variant,omitempty"`
}

// Expand returns the nodes this rule inserts for the given answers in ask order
func (r InsertRule) Expand(set answers.AnswerSet) []QuestionNode {
	out := make([]QuestionNode, 0, len(r.Nodes)+2)
	out = append(out, r.Nodes...)

	if r.VariantField == "" || len(r.Variants) == 0 {
		return out
	}

	key := strings.ToLower(strings.TrimSpace(set.Text(r.VariantField)))
	variant, ok := r.Variants[key]
	if !ok {
		variant = r.Variants[r.DefaultVariant]
	}
	return append(out, variant...)
}

func (r InsertRule) allNodes() []QuestionNode {
	all := append([]QuestionNode{}, r.Nodes...)
	for _, key := range sortedKeys(r.Variants) {
		all = append(all, r.Variants[key]...)
	}
	return all
}

// NodeIDs lists every question the rule can insert across all variants
func (r InsertRule) NodeIDs() []string {
	nodes := r.allNodes()
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
