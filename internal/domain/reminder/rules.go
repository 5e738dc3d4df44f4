package reminder

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	// MinReminderDay and MaxReminderDay bound a persisted rule offset.
	MinReminderDay = 0
	MaxReminderDay = 365
)

// DefaultReminderRules returns the rule set used when a service has none.
func DefaultReminderRules() []int {
	return []int{60, 30, 14, 7}
}

// ParseReminderRules coerces a stored rule value into day offsets. Elements
// are converted the way a JSON number coercion would (null and false are 0,
// true is 1, a blank string is 0) and those that aren't non-negative integers
// are dropped. When nothing survives, or value isn't a sequence, the default
// rules are returned. It never fails.
func ParseReminderRules(value any) []int {
	items, ok := asSequence(value)
	if !ok {
		return DefaultReminderRules()
	}

	rules := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := coerceNumber(item)
		if !ok || n < 0 || n != math.Trunc(n) {
			continue
		}
		// Offsets this large never fire but still count as a rule.
		rules = append(rules, int(min(n, math.MaxInt32)))
	}
	if len(rules) == 0 {
		return DefaultReminderRules()
	}
	return rules
}

// NormalizeReminderRules prepares a rule set for storage: offsets are
// truncated, deduplicated, limited to [0,365] and sorted descending.
func NormalizeReminderRules(rules []float64) []int {
	seen := make(map[int]struct{}, len(rules))
	out := make([]int, 0, len(rules))
	for _, r := range rules {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		v := math.Trunc(r)
		if v < MinReminderDay || v > MaxReminderDay {
			continue
		}
		n := int(v)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return DefaultReminderRules()
	}
	slices.SortFunc(out, func(a, b int) int { return b - a })
	return out
}

// RulesContain reports whether the rule set fires on remainingDays.
func RulesContain(rules []int, remainingDays int) bool {
	return slices.Contains(rules, remainingDays)
}

func asSequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case json.RawMessage:
		return decodeSequence(v)
	case []byte:
		return decodeSequence(v)
	}
	return nil, false
}

func decodeSequence(raw []byte) ([]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, items != nil
}

func coerceNumber(item any) (float64, bool) {
	switch v := item.(type) {
	case nil:
		return 0, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
