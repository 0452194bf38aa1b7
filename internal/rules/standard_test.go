package rules

import (
	"testing"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

func stdRule(field string, op domain.Operator, value any) *domain.Rule {
	return &domain.Rule{
		RuleID:   "rule-" + field + "-" + string(op),
		RuleType: domain.RuleStandard,
		Field:    field,
		Operator: op,
		Value:    value,
	}
}

func TestEvaluateStandardOperators(t *testing.T) {
	doc := map[string]any{
		"amount":           600.0,
		"transaction_type": "transfer",
		"bank_name":        "Bank Mandiri",
	}

	tests := []struct {
		name      string
		rule      *domain.Rule
		triggered bool
	}{
		{"GreaterThanTriggered", stdRule("amount", domain.OpGreaterThan, 500.0), true},
		{"GreaterThanNotTriggered", stdRule("amount", domain.OpGreaterThan, 600.0), false},
		{"GreaterThanEqualBoundary", stdRule("amount", domain.OpGreaterThanEqual, 600.0), true},
		{"LowerThanTriggered", stdRule("amount", domain.OpLowerThan, 1000.0), true},
		{"LowerThanEqualBoundary", stdRule("amount", domain.OpLowerThanEqual, 600.0), true},
		{"EqualString", stdRule("transaction_type", domain.OpEqual, "transfer"), true},
		{"EqualNumericVsString", stdRule("amount", domain.OpEqual, "600"), true},
		{"NotEqual", stdRule("transaction_type", domain.OpNotEqual, "deposit"), true},
		{"NotEqualSameValue", stdRule("transaction_type", domain.OpNotEqual, "transfer"), false},
		{"InList", stdRule("transaction_type", domain.OpIn, []any{"transfer", "withdrawal"}), true},
		{"InListMiss", stdRule("transaction_type", domain.OpIn, []any{"deposit"}), false},
		{"InNonListNotTriggered", stdRule("transaction_type", domain.OpIn, "transfer"), false},
		{"NotInList", stdRule("transaction_type", domain.OpNotIn, []any{"deposit"}), true},
		{"Contains", stdRule("bank_name", domain.OpContains, "Mandiri"), true},
		{"ContainsCaseSensitive", stdRule("bank_name", domain.OpContains, "mandiri"), false},
		{"AbsentFieldNotTriggered", stdRule("missing_field", domain.OpEqual, "x"), false},
		{"NumericCoercionFailure", stdRule("transaction_type", domain.OpGreaterThan, 10.0), false},
		{"UnknownOperatorNotTriggered", stdRule("amount", domain.Operator("matches"), 600.0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluateStandard(doc, tt.rule); got != tt.triggered {
				t.Errorf("expected triggered=%v, got %v", tt.triggered, got)
			}
		})
	}
}

func TestEvaluateStandardStringThreshold(t *testing.T) {
	// Thresholds configured as strings still compare numerically.
	doc := map[string]any{"amount": 600.0}

	if !evaluateStandard(doc, stdRule("amount", domain.OpGreaterThan, "500")) {
		t.Error("expected string threshold 500 to trigger for amount 600")
	}
	if evaluateStandard(doc, stdRule("amount", domain.OpGreaterThan, "seribu")) {
		t.Error("expected non-numeric threshold not to trigger")
	}
}
