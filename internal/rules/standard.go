package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// evaluateStandard applies a standard rule to a transaction document.
// An absent field, an unknown operator, or a failed numeric coercion all
// mean the rule is not triggered.
func evaluateStandard(doc map[string]any, rule *domain.Rule) bool {
	fieldValue, ok := doc[rule.Field]
	if !ok || fieldValue == nil {
		return false
	}

	switch rule.Operator {
	case domain.OpEqual:
		return looseEqual(fieldValue, rule.Value)

	case domain.OpNotEqual:
		return !looseEqual(fieldValue, rule.Value)

	case domain.OpGreaterThan:
		a, b, ok := numericPair(fieldValue, rule.Value)
		return ok && a > b

	case domain.OpGreaterThanEqual:
		a, b, ok := numericPair(fieldValue, rule.Value)
		return ok && a >= b

	case domain.OpLowerThan:
		a, b, ok := numericPair(fieldValue, rule.Value)
		return ok && a < b

	case domain.OpLowerThanEqual:
		a, b, ok := numericPair(fieldValue, rule.Value)
		return ok && a <= b

	case domain.OpIn:
		items, ok := rule.Value.([]any)
		if !ok {
			return false
		}
		return containsValue(items, fieldValue)

	case domain.OpNotIn:
		items, ok := rule.Value.([]any)
		if !ok {
			return false
		}
		return !containsValue(items, fieldValue)

	case domain.OpContains:
		return strings.Contains(stringify(fieldValue), stringify(rule.Value))

	default:
		return false
	}
}

// looseEqual compares two values: numerically when both coerce to a
// number, otherwise by stringified compare (so 600 matches "600").
func looseEqual(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return stringify(a) == stringify(b)
}

func containsValue(items []any, v any) bool {
	for _, item := range items {
		if looseEqual(item, v) {
			return true
		}
	}
	return false
}

func numericPair(a, b any) (float64, float64, bool) {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	return fa, fb, okA && okB
}

// toFloat coerces JSON scalar values to float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// stringify renders a scalar the way a document would print it: integral
// floats drop their fraction so numeric and string forms line up.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
