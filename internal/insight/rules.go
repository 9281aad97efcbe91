package insight

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"finboard/internal/core"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
	MatchPrefix   MatchType = "prefix"
)

// Rule maps a description pattern to a category. Higher priority wins; equal
// priorities keep file order.
type Rule struct {
	Name      string    `yaml:"name"`
	Pattern   string    `yaml:"pattern"`
	MatchType MatchType `yaml:"match_type"`
	Priority  int       `yaml:"priority"`
	Category  string    `yaml:"category"`
}

type ruleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Rules is the offline categorizer used when the advisor is unavailable.
type Rules struct {
	rules []Rule
}

func NewRules(data []byte) (*Rules, error) {
	var set ruleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	for i, r := range set.Rules {
		if _, err := core.ParseCategory(r.Category); err != nil {
			return nil, fmt.Errorf("rule %d (%s): invalid category %q", i, r.Name, r.Category)
		}
		switch r.MatchType {
		case MatchExact, MatchContains, MatchPrefix:
		default:
			return nil, fmt.Errorf("rule %d (%s): invalid match_type %q", i, r.Name, r.MatchType)
		}
		if strings.TrimSpace(r.Pattern) == "" {
			return nil, fmt.Errorf("rule %d (%s): pattern cannot be empty", i, r.Name)
		}
		if r.Priority < 0 || r.Priority > 999 {
			return nil, fmt.Errorf("rule %d (%s): priority must be in [0,999], got %d", i, r.Name, r.Priority)
		}
		set.Rules[i].Pattern = strings.ToLower(strings.TrimSpace(r.Pattern))
		set.Rules[i].Category = strings.ToUpper(strings.TrimSpace(r.Category))
	}

	sort.SliceStable(set.Rules, func(i, j int) bool {
		return set.Rules[i].Priority > set.Rules[j].Priority
	})
	return &Rules{rules: set.Rules}, nil
}

// DefaultRules loads the rules compiled into the binary.
func DefaultRules() (*Rules, error) {
	r, err := NewRules(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("load embedded rules: %w", err)
	}
	return r, nil
}

// LoadRulesFile loads rules from path.
func LoadRulesFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	r, err := NewRules(data)
	if err != nil {
		return nil, fmt.Errorf("load rules from %q: %w", path, err)
	}
	return r, nil
}

// Match returns the category of the first matching rule.
func (r *Rules) Match(description string) (core.Category, bool) {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return "", false
	}
	for _, rule := range r.rules {
		var ok bool
		switch rule.MatchType {
		case MatchExact:
			ok = desc == rule.Pattern
		case MatchContains:
			ok = strings.Contains(desc, rule.Pattern)
		case MatchPrefix:
			ok = strings.HasPrefix(desc, rule.Pattern)
		}
		if ok {
			return core.Category(rule.Category), true
		}
	}
	return "", false
}

func (r *Rules) Len() int { return len(r.rules) }
