package graph

import (
	"strconv"
	"strings"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// zipMatchReason is the reason recorded by the always-on zip heuristic.
const zipMatchReason = "zip_code_match"

// applyPairRule checks a graph rule against two user documents: field1 on
// the first user against field2 on the second when field2 is set,
// otherwise against the rule's literal value.
func applyPairRule(doc1, doc2 map[string]any, rule *domain.GraphRule) bool {
	left, ok := doc1[rule.Field1]
	if !ok || left == nil {
		return false
	}

	var right any
	if rule.Field2 != "" {
		right, ok = doc2[rule.Field2]
		if !ok || right == nil {
			return false
		}
	} else {
		if rule.Value == "" {
			return false
		}
		right = rule.Value
	}

	return compare(left, right, rule.Operator)
}

// applySingleRule checks a graph rule against one document (a user or a
// transaction), comparing field1 with the rule's literal value.
func applySingleRule(doc map[string]any, rule *domain.GraphRule) bool {
	if rule.Value == "" {
		return false
	}

	left, ok := doc[rule.Field1]
	if !ok || left == nil {
		return false
	}

	return compare(left, rule.Value, rule.Operator)
}

func compare(left, right any, op domain.GraphRuleOperator) bool {
	switch op {
	case domain.GraphOpEqual:
		// Compared as strings for flexibility across field types.
		return docString(left) == docString(right)

	case domain.GraphOpGreaterThan:
		l, r, ok := docFloats(left, right)
		return ok && l > r

	case domain.GraphOpLowerThan:
		l, r, ok := docFloats(left, right)
		return ok && l < r

	case domain.GraphOpContains:
		return strings.Contains(docString(left), docString(right))

	default:
		return false
	}
}

func docFloats(left, right any) (float64, float64, bool) {
	l, okL := docFloat(left)
	r, okR := docFloat(right)
	return l, r, okL && okR
}

func docFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func docString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// zipMatch is the hardwired distance heuristic evaluated alongside the
// configured rules: users sharing a postal code are linked.
func zipMatch(u1, u2 *domain.User) bool {
	return u1.AddressZip != "" && u2.AddressZip != "" && u1.AddressZip == u2.AddressZip
}
