// Package rubric holds the externally supplied scoring and rule configuration:
// weighted criteria, budget-category constants, grant rates, thresholds and the
// keyword lists used by the text heuristics. Nothing in here is logic; swapping
// the YAML swaps the grant program.
package rubric

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultRubric []byte

// Criterion is one weighted rubric dimension
type Criterion struct {
	ID             string   `yaml:"id" json:"id" validate:"required"`
	Name           string   `yaml:"name" json:"name" validate:"required"`
	Weight         float64  `yaml:"weight" json:"weight" validate:"gte=0"`
	RequiredFields []string `yaml:"required_fields" json:"required_fields" validate:"min=1,dive,required"`
}

// Fraction is an exact rational rate, e.g. 2/3
type Fraction struct {
	Num int64 `yaml:"num" json:"num" validate:"gte=0"`
	Den int64 `yaml:"den" json:"den" validate:"gt=0"`
}

// Of returns floor(amount * Num / Den) for non-negative amounts
func (f Fraction) Of(amount int64) int64 {
	if f.Den == 0 || amount <= 0 {
		return 0
	}
	return amount * f.Num / f.Den
}

func (f Fraction) Float() float64 {
	if f.Den == 0 {
		return 0
	}
	return float64(f.Num) / float64(f.Den)
}

func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

// Budget configures the restricted cost category rule and the grant rates
type Budget struct {
	ExpensesField      string   `yaml:"expenses_field" validate:"required"`
	LossMakingField    string   `yaml:"loss_making_field" validate:"required"`
	CategoryKey        string   `yaml:"category_key" validate:"required"`
	AmountKey          string   `yaml:"amount_key" validate:"required"`
	LabelKey           string   `yaml:"label_key"`
	RestrictedCategory string   `yaml:"restricted_category" validate:"required"`
	RatioCap           Fraction `yaml:"ratio_cap"`
	FixedCap           int64    `yaml:"fixed_cap" validate:"gt=0"`
	StandardRate       Fraction `yaml:"standard_rate"`
	LossMakingRate     Fraction `yaml:"loss_making_rate"`
	NonRestrictedShare Fraction `yaml:"non_restricted_share"`
	GrantShareCap      Fraction `yaml:"grant_share_cap"`
}

// Goals configures the numeric-goal realism rule
type Goals struct {
	BaselineField     string  `yaml:"baseline_field" validate:"required"`
	TargetField       string  `yaml:"target_field" validate:"required"`
	CriticalRatio     float64 `yaml:"critical_ratio" validate:"gt=0"`
	WarningRatio      float64 `yaml:"warning_ratio" validate:"gt=0,ltefield=CriticalRatio"`
	RecommendedGrowth float64 `yaml:"recommended_growth" validate:"gt=0"`
}

// Consistency configures the cross-answer keyword-overlap rules
type Consistency struct {
	PhilosophyField    string   `yaml:"philosophy_field" validate:"required"`
	PlanField          string   `yaml:"plan_field" validate:"required"`
	ThemeKeywords      []string `yaml:"theme_keywords" validate:"min=1"`
	PlanFields         []string `yaml:"plan_fields"`
	EfficiencyKeywords []string `yaml:"efficiency_keywords"`
	SalesKeywords      []string `yaml:"sales_keywords"`
}

// Thresholds holds score cut-offs
type Thresholds struct {
	MinTextRunes     int `yaml:"min_text_runes" validate:"gte=0"`
	PartialScore     int `yaml:"partial_score" validate:"gte=0,lte=100"`
	CriticalGapScore int `yaml:"critical_gap_score" validate:"gte=0,lte=100"`
	Excellent        int `yaml:"excellent" validate:"gte=0,lte=100"`
	Good             int `yaml:"good" validate:"gte=0,lte=100"`
	Acceptable       int `yaml:"acceptable" validate:"gte=0,lte=100"`
	SubmitOverall    int `yaml:"submit_overall" validate:"gte=0,lte=100"`
}

// Depth holds the elaboration markers
type Depth struct {
	ExemplarMarkers []string `yaml:"exemplar_markers" validate:"min=1"`
	CausalMarkers   []string `yaml:"causal_markers" validate:"min=1"`
}

// Gap holds the token lists used by the gap detector
type Gap struct {
	AgeTokens            []string `yaml:"age_tokens"`
	GeographyTokens      []string `yaml:"geography_tokens"`
	AttributeTokens      []string `yaml:"attribute_tokens"`
	ActionVerbs          []string `yaml:"action_verbs"`
	OutcomeTerms         []string `yaml:"outcome_terms"`
	DigitalChannels      []string `yaml:"digital_channels"`
	DifferentiationTerms []string `yaml:"differentiation_terms"`
	CountWords           []string `yaml:"count_words"`
	RatioLimit           float64  `yaml:"ratio_limit" validate:"gt=0"`
}

// Rubric is the full configuration document
type Rubric struct {
	Version     string      `yaml:"version"`
	Criteria    []Criterion `yaml:"criteria" validate:"min=1,dive"`
	Budget      Budget      `yaml:"budget"`
	Goals       Goals       `yaml:"goals"`
	Consistency Consistency `yaml:"consistency"`
	Thresholds  Thresholds  `yaml:"thresholds"`
	Depth       Depth       `yaml:"depth"`
	Gap         Gap         `yaml:"gap"`
}

// Default decodes the embedded reference rubric
func Default() *Rubric {
	r, err := Parse(defaultRubric, nil)
	if err != nil {
		panic(fmt.Sprintf("embedded rubric is invalid: %v", err))
	}
	return r
}

// Load reads a rubric file. Keys missing from the file keep their default values.
func Load(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric %s: %w", path, err)
	}
	return Parse(data, Default())
}

// Parse decodes YAML on top of base (nil = empty) and validates the result
func Parse(data []byte, base *Rubric) (*Rubric, error) {
	r := &Rubric{}
	if base != nil {
		*r = *base
	}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("decode rubric: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

var validate = validator.New()

// Validate checks struct constraints and criterion id uniqueness
func (r *Rubric) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid rubric: %w", err)
	}
	seen := make(map[string]bool, len(r.Criteria))
	for _, c := range r.Criteria {
		if seen[c.ID] {
			return fmt.Errorf("invalid rubric: duplicate criterion %q", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// Criterion looks up a criterion by id
func (r *Rubric) Criterion(id string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}
