package rubric

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRubric(t *testing.T) {
	r := Default()

	assert.Len(t, r.Criteria, 11)
	assert.Equal(t, "web", r.Budget.RestrictedCategory)
	assert.Equal(t, int64(500000), r.Budget.FixedCap)
	assert.Equal(t, Fraction{Num: 1, Den: 4}, r.Budget.RatioCap)
	assert.Equal(t, Fraction{Num: 2, Den: 3}, r.Budget.StandardRate)
	assert.Equal(t, Fraction{Num: 3, Den: 4}, r.Budget.LossMakingRate)
	assert.Equal(t, 2.0, r.Goals.CriticalRatio)

	c, ok := r.Criterion("numeric_evidence")
	require.True(t, ok)
	assert.Contains(t, c.RequiredFields, "sales_target")
}

func TestFractionOf(t *testing.T) {
	assert.Equal(t, int64(326666), Fraction{Num: 2, Den: 3}.Of(490000))
	assert.Equal(t, int64(238800), Fraction{Num: 1, Den: 3}.Of(716400))
	assert.Equal(t, int64(391150), Fraction{Num: 1, Den: 4}.Of(1564600))
	assert.Equal(t, int64(0), Fraction{Num: 1, Den: 4}.Of(-10))
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rubric.yaml")
	override := `
budget:
  fixed_cap: 300000
goals:
  critical_ratio: 3.0
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o600))

	r, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(300000), r.Budget.FixedCap)
	assert.Equal(t, 3.0, r.Goals.CriticalRatio)
	assert.Equal(t, "web", r.Budget.RestrictedCategory)
	assert.Len(t, r.Criteria, 11)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "duplicate criterion",
			yaml: `
criteria:
  - {id: a, name: A, weight: 1, required_fields: [x]}
  - {id: a, name: B, weight: 1, required_fields: [y]}
`,
		},
		{
			name: "zero denominator",
			yaml: `
budget:
  ratio_cap: {num: 1, den: 0}
`,
		},
		{
			name: "criterion without fields",
			yaml: `
criteria:
  - {id: a, name: A, weight: 1, required_fields: []}
`,
		},
		{
			name: "warning above critical",
			yaml: `
goals:
  warning_ratio: 2.5
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), Default())
			assert.Error(t, err)
		})
	}
}
