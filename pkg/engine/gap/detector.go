// Package gap reports specific semantic elements missing from a single answer.
// Checks are keyword and pattern presence only.
package gap

import (
	"strings"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/rubric"
)

// Category selects the structural checks applied to a question's answer
type Category string

const (
	CategoryNone        Category = ""
	CategoryAudience    Category = "audience"
	CategoryNumericGoal Category = "numeric_goal"
	CategoryPlan        Category = "plan"
	CategoryCompetition Category = "competition"
)

// Element names reported by MissingElements
const (
	ElementAgeBracket        = "age_bracket"
	ElementGeography         = "geography"
	ElementAudienceAttribute = "audience_attribute"
	ElementNumericEvidence   = "numeric_evidence"
	ElementJustification     = "justification"
	ElementGoalNonRealistic  = "goal_non_realistic"
	ElementConcreteAction    = "concrete_action"
	ElementOutcomeLinkage    = "outcome_linkage"
	ElementDigitalChannel    = "digital_channel"
	ElementCompetitorCount   = "competitor_count"
	ElementDifferentiation   = "differentiation"
)

// Detector is immutable and safe for concurrent use
type Detector struct {
	categories    map[string]Category
	baselineField string
	ratioLimit    float64

	age             matcher
	geography       matcher
	attribute       matcher
	justification   matcher
	action          matcher
	outcome         matcher
	digital         matcher
	differentiation matcher
	count           matcher
}

// NewDetector compiles the rubric token lists. categories maps question ids to
// their check family; unknown ids have no checks.
func NewDetector(r *rubric.Rubric, categories map[string]Category) *Detector {
	cats := make(map[string]Category, len(categories))
	for id, c := range categories {
		cats[id] = c
	}

	causal := make([]string, 0, len(r.Depth.CausalMarkers))
	for _, m := range r.Depth.CausalMarkers {
		causal = append(causal, strings.TrimSuffix(m, ","))
	}

	return &Detector{
		categories:      cats,
		baselineField:   r.Goals.BaselineField,
		ratioLimit:      r.Gap.RatioLimit,
		age:             newMatcher(r.Gap.AgeTokens),
		geography:       newMatcher(r.Gap.GeographyTokens),
		attribute:       newMatcher(r.Gap.AttributeTokens),
		justification:   newMatcher(causal),
		action:          newMatcher(r.Gap.ActionVerbs),
		outcome:         newMatcher(r.Gap.OutcomeTerms),
		digital:         newMatcher(r.Gap.DigitalChannels),
		differentiation: newMatcher(r.Gap.DifferentiationTerms),
		count:           newMatcher(r.Gap.CountWords),
	}
}

// CategoryOf returns the check family for a question id
func (d *Detector) CategoryOf(questionID string) Category {
	return d.categories[questionID]
}

// MissingElements runs the checks registered for questionID. An empty result
// means nothing is missing.
func (d *Detector) MissingElements(questionID, answer string, context answers.AnswerSet) []string {
	return d.Check(d.CategoryOf(questionID), answer, context)
}

// Check runs one check family over answer
func (d *Detector) Check(category Category, answer string, context answers.AnswerSet) []string {
	missing := []string{}
	text := strings.TrimSpace(answer)

	switch category {
	case CategoryAudience:
		if !d.age.match(text) {
			missing = append(missing, ElementAgeBracket)
		}
		if !d.geography.match(text) {
			missing = append(missing, ElementGeography)
		}
		if !d.attribute.match(text) {
			missing = append(missing, ElementAudienceAttribute)
		}

	case CategoryNumericGoal:
		if !digitPattern.MatchString(text) {
			missing = append(missing, ElementNumericEvidence)
		}
		if !d.justification.match(text) {
			missing = append(missing, ElementJustification)
		}
		if d.unrealistic(text, context) {
			missing = append(missing, ElementGoalNonRealistic)
		}

	case CategoryPlan:
		if !d.action.match(text) {
			missing = append(missing, ElementConcreteAction)
		}
		if !d.outcome.match(text) {
			missing = append(missing, ElementOutcomeLinkage)
		}
		if !d.digital.match(text) {
			missing = append(missing, ElementDigitalChannel)
		}

	case CategoryCompetition:
		if !digitPattern.MatchString(text) && !d.count.match(text) {
			missing = append(missing, ElementCompetitorCount)
		}
		if !d.differentiation.match(text) {
			missing = append(missing, ElementDifferentiation)
		}

	case CategoryNone:
	}

	return missing
}

// unrealistic compares the first two numbers in the answer. With a single number
// the stated baseline answer stands in as the first.
func (d *Detector) unrealistic(text string, context answers.AnswerSet) bool {
	nums := numbers(text)

	var from, to float64
	switch {
	case len(nums) >= 2:
		from, to = nums[0], nums[1]
	case len(nums) == 1:
		baseline, ok := context.Get(d.baselineField).Num()
		if !ok {
			return false
		}
		from, to = baseline, nums[0]
	default:
		return false
	}

	if from <= 0 {
		return false
	}
	return to/from >= d.ratioLimit
}
