// Package catalog loads the grant questionnaire and wires its computed resolvers.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"grant-assistant-be/pkg/engine/gap"
	"grant-assistant-be/pkg/engine/graph"
)

//go:embed questions.yaml
var defaultQuestions []byte

// Definition is the YAML document shape
type Definition struct {
	Version   string               `yaml:"version"`
	Questions []graph.QuestionNode `yaml:"questions"`
	Inserts   []graph.InsertRule   `yaml:"inserts"`
}

// Catalog is a validated question graph plus the gap family of each question
type Catalog struct {
	Version       string
	Graph         *graph.Graph
	GapCategories map[string]gap.Category
}

// Default loads the embedded questionnaire
func Default() (*Catalog, error) {
	return Parse(defaultQuestions, NewRegistry())
}

// Load reads a questionnaire file, or the embedded one when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data, NewRegistry())
}

// Parse decodes and validates a questionnaire against registry
func Parse(data []byte, registry *graph.Registry) (*Catalog, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	g, err := graph.New(def.Questions, registry, def.Inserts...)
	if err != nil {
		return nil, err
	}

	categories := make(map[string]gap.Category)
	for _, n := range def.Questions {
		if n.GapCategory == "" {
			continue
		}
		c := gap.Category(n.GapCategory)
		switch c {
		case gap.CategoryAudience, gap.CategoryNumericGoal, gap.CategoryPlan, gap.CategoryCompetition:
			categories[n.ID] = c
		default:
			return nil, &graph.ConfigurationError{Reason: fmt.Sprintf("unknown gap category %q", n.GapCategory), NodeIDs: []string{n.ID}}
		}
	}

	return &Catalog{
		Version:       def.Version,
		Graph:         g,
		GapCategories: categories,
	}, nil
}
