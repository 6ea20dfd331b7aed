package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-assistant-be/pkg/engine/answers"
	"grant-assistant-be/pkg/engine/gap"
	"grant-assistant-be/pkg/engine/graph"
	"grant-assistant-be/pkg/engine/rubric"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "2026.1", c.Version)
	assert.Equal(t, gap.CategoryAudience, c.GapCategories["target_customers"])
	assert.Equal(t, gap.CategoryPlan, c.GapCategories["efficiency_plan"])
	require.Len(t, c.Graph.Inserts(), 1)

	q := c.Graph.Next(answers.AnswerSet{})
	require.NotNil(t, q)
	assert.Equal(t, "company_name", q.ID)
}

func TestRubricFieldsExistInCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, criterion := range rubric.Default().Criteria {
		for _, field := range criterion.RequiredFields {
			_, ok := c.Graph.Node(field)
			assert.True(t, ok, "criterion %s requires unknown question %s", criterion.ID, field)
		}
	}
}

func TestRequiredSelectOptionsCanSatisfyRubric(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	r := rubric.Default()

	for _, criterion := range r.Criteria {
		for _, field := range criterion.RequiredFields {
			n, ok := c.Graph.Node(field)
			if !ok || n.Type != graph.TypeSelect {
				continue
			}
			q := c.Graph.Resolve(n, answers.AnswerSet{})
			require.NotEmpty(t, q.Options, field)
			for _, o := range q.Options {
				assert.True(t, answers.String(o.Value).Satisfies(r.Thresholds.MinTextRunes),
					"option %q of %s can never count as answered", o.Value, field)
			}
		}
	}
}

func TestCategoryAwareResolution(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	set := answers.AnswerSet{
		"company_name":         answers.String("Hanabi"),
		"business_description": answers.String("A small coffee roastery and cafe next to the station"),
	}
	q := c.Graph.Next(set)
	require.NotNil(t, q)
	assert.Equal(t, "business_category", q.ID)
	assert.Contains(t, q.Text, "restaurant or cafe")
	assert.Equal(t, CategoryRestaurant, q.Options[0].Value)
	assert.Len(t, q.Options, 6)

	n, _ := c.Graph.Node("new_customer_channels")
	channels := c.Graph.Resolve(n, set.With("business_category", answers.String("retail")))
	assert.Equal(t, "ec_site", channels.Options[0].Value)

	n, _ = c.Graph.Node("sales_target")
	target := c.Graph.Resolve(n, answers.AnswerSet{"sales_baseline": answers.Number(12000000)})
	assert.Contains(t, target.Text, "12,000,000 yen")
}

func TestDetectCategory(t *testing.T) {
	tests := map[string]string{
		"We run a ramen restaurant":              CategoryRestaurant,
		"A hair salon for families":              CategoryBeauty,
		"Small factory machining parts":          CategoryManufacturing,
		"We sell handmade goods in our boutique": CategoryRetail,
		"House cleaning and repair":              CategoryService,
		"Something else entirely":                "",
	}
	for description, want := range tests {
		assert.Equal(t, want, DetectCategory(description), description)
	}
}

func TestConditionalQuestions(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	efficiency, _ := c.Graph.Node("efficiency_plan")
	staff, _ := c.Graph.Node("staff_plan")

	set := answers.AnswerSet{"has_efficiency_plan": answers.String("not_planned"), "employee_count": answers.Number(0)}
	assert.False(t, c.Graph.Eligible(efficiency, set))
	assert.False(t, c.Graph.Eligible(staff, set))

	set = answers.AnswerSet{"has_efficiency_plan": answers.String("planned"), "employee_count": answers.String("3")}
	assert.True(t, c.Graph.Eligible(efficiency, set))
	assert.True(t, c.Graph.Eligible(staff, set))
}

func TestInsertVariants(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	rule := c.Graph.Inserts()[0]

	ids := func(set answers.AnswerSet) []string {
		var out []string
		for _, n := range rule.Expand(set) {
			out = append(out, n.ID)
		}
		return out
	}

	assert.Equal(t, []string{"category_detail", "beauty_repeat_rate", "beauty_menu_pricing"},
		ids(answers.AnswerSet{"business_category": answers.String("beauty")}))
	assert.Equal(t, []string{"category_detail", "service_delivery_flow", "service_pricing"},
		ids(answers.AnswerSet{"business_category": answers.String("other")}))
}

func TestParseRejectsUnknownGapCategory(t *testing.T) {
	data := []byte(`
questions:
  - id: a
    priority: 1
    type: text
    text: A?
    gap_category: vibes
`)
	_, err := Parse(data, NewRegistry())
	assert.ErrorIs(t, err, graph.ErrConfiguration)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: test
questions:
  - id: only
    priority: 1
    type: text
    required: true
    text: Only question
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Version)
	assert.Equal(t, "only", c.Graph.Next(answers.AnswerSet{}).ID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
