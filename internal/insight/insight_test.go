package insight

import (
	"testing"

	"finboard/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		open, close byte
		want        string
	}{
		{"plain array", `[{"a":1}]`, '[', ']', `[{"a":1}]`},
		{"fenced json", "```json\n[1,2]\n```", '[', ']', "[1,2]"},
		{"bare fence", "```\n{\"x\":1}\n```", '{', '}', `{"x":1}`},
		{"prose around", "Here you go: {\"amount\": 5} hope it helps", '{', '}', `{"amount": 5}`},
		{"single line fence", "```", '[', ']', "```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.raw, tt.open, tt.close))
		})
	}
}

func TestNormalizeInsights(t *testing.T) {
	in := []modelInsight{
		{Type: "warning", Title: "Groceries up", Priority: "high"},
		{Type: "nonsense", Title: "dropped", Priority: "low"},
		{Type: "suggestion", Title: "", Priority: "low"},
		{Type: "FORECAST", Title: "Month end", Priority: "Medium"},
		{Type: "celebration", Title: "Saved", Priority: "low"},
		{Type: "suggestion", Title: "Fourth valid", Priority: "low"},
	}
	out := normalizeInsights(in)
	require.Len(t, out, MaxInsights)
	assert.Equal(t, core.InsightWarning, out[0].Type)
	assert.Equal(t, core.PriorityHigh, out[0].Priority)
	assert.Equal(t, core.InsightForecast, out[1].Type)
	assert.Equal(t, core.PriorityMedium, out[1].Priority)
	assert.Equal(t, "Saved", out[2].Title)
}

func TestDefaultRules(t *testing.T) {
	rules, err := DefaultRules()
	require.NoError(t, err)
	assert.Positive(t, rules.Len())

	tests := []struct {
		description string
		want        core.Category
		ok          bool
	}{
		{"ESSELUNGA MILANO 123", core.Groceries, true},
		{"Monthly rent June", core.Housing, true},
		{"Netflix.com", core.Entertainment, true},
		{"Transfer to savings pot", core.SavingsTransfer, true},
		{"Salary ACME Corp", core.Salary, true},
		{"zzz unknown merchant", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got, ok := rules.Match(tt.description)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRulesPriorityAndValidation(t *testing.T) {
	rules, err := NewRules([]byte(`
rules:
  - {name: low, pattern: shop, match_type: contains, priority: 1, category: shopping}
  - {name: high, pattern: shop, match_type: prefix, priority: 10, category: GROCERIES}
`))
	require.NoError(t, err)
	got, ok := rules.Match("Shop & Go")
	require.True(t, ok)
	assert.Equal(t, core.Groceries, got)

	_, err = NewRules([]byte("rules:\n  - {name: x, pattern: a, match_type: contains, priority: 1, category: NOPE}\n"))
	assert.Error(t, err)
	_, err = NewRules([]byte("rules:\n  - {name: x, pattern: a, match_type: regex, priority: 1, category: HOUSING}\n"))
	assert.Error(t, err)
	_, err = NewRules([]byte("rules:\n  - {name: x, pattern: ' ', match_type: exact, priority: 1, category: HOUSING}\n"))
	assert.Error(t, err)
}
