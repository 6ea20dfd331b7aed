// Package graph holds the static question catalogue and resolves the next question
// for an answer set.
package graph

import (
	"fmt"
	"sort"
)

// Graph is immutable after New and safe for concurrent use
type Graph struct {
	nodes    []QuestionNode
	index    map[string]QuestionNode
	inserted map[string]QuestionNode
	ruleOf   map[string]string
	inserts  []InsertRule
	registry *Registry
}

// New validates the definition and fails fast with a ConfigurationError on
// duplicate ids, unknown dependencies, dependency cycles or unknown resolver refs.
func New(nodes []QuestionNode, registry *Registry, inserts ...InsertRule) (*Graph, error) {
	if registry == nil {
		registry = NewRegistry()
	}

	g := &Graph{
		nodes:    make([]QuestionNode, 0, len(nodes)),
		index:    make(map[string]QuestionNode, len(nodes)),
		inserted: make(map[string]QuestionNode),
		ruleOf:   make(map[string]string),
		registry: registry,
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, configErr("question without id")
		}
		if _, dup := g.index[n.ID]; dup {
			return nil, configErr("duplicate question id", n.ID)
		}
		if err := g.checkRefs(n); err != nil {
			return nil, err
		}
		g.index[n.ID] = n
		g.nodes = append(g.nodes, n)
	}

	for _, n := range g.nodes {
		for _, dep := range n.Dependencies {
			if dep == n.ID {
				return nil, configErr("question depends on itself", n.ID)
			}
			if _, ok := g.index[dep]; !ok {
				return nil, configErr(fmt.Sprintf("unknown dependency %q", dep), n.ID)
			}
		}
	}

	if cycle := findCycle(g.nodes, g.index); len(cycle) > 0 {
		return nil, configErr("dependency cycle", cycle...)
	}

	if err := g.addInserts(inserts); err != nil {
		return nil, err
	}

	sort.SliceStable(g.nodes, func(i, j int) bool {
		if g.nodes[i].Priority != g.nodes[j].Priority {
			return g.nodes[i].Priority < g.nodes[j].Priority
		}
		return g.nodes[i].ID < g.nodes[j].ID
	})

	return g, nil
}

func (g *Graph) addInserts(rules []InsertRule) error {
	seen := make(map[string]bool, len(rules))
	for _, rule := range rules {
		if rule.ID == "" {
			return configErr("insert rule without id")
		}
		if seen[rule.ID] {
			return configErr("duplicate insert rule", rule.ID)
		}
		seen[rule.ID] = true

		if _, ok := g.index[rule.Trigger]; !ok {
			return configErr(fmt.Sprintf("insert rule trigger %q is not a question", rule.Trigger), rule.ID)
		}
		if rule.VariantField != "" {
			if _, ok := g.index[rule.VariantField]; !ok {
				return configErr(fmt.Sprintf("insert rule variant field %q is not a question", rule.VariantField), rule.ID)
			}
		}
		if rule.DefaultVariant != "" {
			if _, ok := rule.Variants[rule.DefaultVariant]; !ok {
				return configErr(fmt.Sprintf("default variant %q not defined", rule.DefaultVariant), rule.ID)
			}
		}

		for _, n := range rule.allNodes() {
			if n.ID == "" {
				return configErr("inserted question without id", rule.ID)
			}
			_, static := g.index[n.ID]
			_, dup := g.inserted[n.ID]
			if static || dup {
				return configErr("duplicate question id", n.ID)
			}
			if len(n.Dependencies) > 0 {
				return configErr("inserted questions are ordered by their rule and cannot declare dependencies", n.ID)
			}
			if err := g.checkRefs(n); err != nil {
				return err
			}
			g.inserted[n.ID] = n
			g.ruleOf[n.ID] = rule.ID
		}
		g.inserts = append(g.inserts, rule)
	}
	return nil
}

func (g *Graph) checkRefs(n QuestionNode) error {
	if n.Text.Kind() == Unset {
		return configErr("question has no text", n.ID)
	}

	texts := []Resolvable[string]{n.Text, n.HelpText, n.Placeholder}
	for _, r := range texts {
		if r.Kind() == ComputedKind && !g.registry.hasText(r.Ref()) {
			return configErr(fmt.Sprintf("unknown text resolver %q", r.Ref()), n.ID)
		}
	}
	if n.Options.Kind() == ComputedKind && !g.registry.hasOptions(n.Options.Ref()) {
		return configErr(fmt.Sprintf("unknown options resolver %q", n.Options.Ref()), n.ID)
	}

	switch n.Condition.Kind {
	case Always:
	case ConditionComputed:
		if !g.registry.hasCondition(n.Condition.Ref) {
			return configErr(fmt.Sprintf("unknown condition resolver %q", n.Condition.Ref), n.ID)
		}
	case ConditionFieldIn:
		if n.Condition.Field == "" || len(n.Condition.In) == 0 {
			return configErr("field condition needs a field and values", n.ID)
		}
	default:
		return configErr(fmt.Sprintf("unknown condition kind %d", n.Condition.Kind), n.ID)
	}
	return nil
}

// findCycle runs Kahn's algorithm and returns the ids left with unresolved dependencies
func findCycle(nodes []QuestionNode, index map[string]QuestionNode) []string {
	indegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		indegree[n.ID] = len(n.Dependencies)
		for _, dep := range n.Dependencies {
			dependents[dep] = append(dependents[dep], n.ID)
		}
	}

	queue := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited == len(index) {
		return nil
	}

	var stuck []string
	for id, deg := range indegree {
		if deg > 0 {
			stuck = append(stuck, id)
		}
	}
	sort.Strings(stuck)
	return stuck
}

// Node looks up a static or inserted question
func (g *Graph) Node(id string) (QuestionNode, bool) {
	if n, ok := g.index[id]; ok {
		return n, true
	}
	n, ok := g.inserted[id]
	return n, ok
}

// Nodes returns the static questions in ask order
func (g *Graph) Nodes() []QuestionNode {
	return append([]QuestionNode{}, g.nodes...)
}

func (g *Graph) Inserts() []InsertRule {
	return append([]InsertRule{}, g.inserts...)
}

// InsertedBy returns the insert rule that owns an inserted question
func (g *Graph) InsertedBy(id string) (InsertRule, bool) {
	ruleID, ok := g.ruleOf[id]
	if !ok {
		return InsertRule{}, false
	}
	for _, rule := range g.inserts {
		if rule.ID == ruleID {
			return rule, true
		}
	}
	return InsertRule{}, false
}

func (g *Graph) Registry() *Registry {
	return g.registry
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
