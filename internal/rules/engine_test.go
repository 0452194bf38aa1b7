package rules

import (
	"context"
	"testing"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
	"github.com/situkangsayur/fraude-ai/internal/store"
)

func newTestStore(t *testing.T) domain.Store {
	t.Helper()
	s, err := store.New(domain.StoreConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedPolicy(t *testing.T, s domain.Store, policyID string, rules ...*domain.Rule) {
	t.Helper()
	ctx := context.Background()

	policy := &domain.Policy{
		PolicyID: policyID,
		Name:     policyID,
	}
	for _, rule := range rules {
		rule.PolicyID = policyID
		if err := s.InsertRule(ctx, rule); err != nil {
			t.Fatalf("failed to insert rule: %v", err)
		}
		policy.RuleIDs = append(policy.RuleIDs, rule.RuleID)
	}
	if err := s.InsertPolicy(ctx, policy); err != nil {
		t.Fatalf("failed to insert policy: %v", err)
	}
}

func testTx(amount float64, txType string) *domain.Transaction {
	return &domain.Transaction{
		IDTransaction:   "tx-001",
		IDUser:          "user-001",
		Amount:          amount,
		TransactionType: txType,
		Timestamp:       time.Now().UTC(),
	}
}

func TestSingleRuleThreshold(t *testing.T) {
	s := newTestStore(t)
	seedPolicy(t, s, "policy-amount", &domain.Rule{
		RuleID:      "rule-amount",
		RuleType:    domain.RuleStandard,
		Description: "amount above 500",
		RiskPoint:   20,
		Field:       "amount",
		Operator:    domain.OpGreaterThan,
		Value:       500.0,
	})

	engine := NewEngine(s)
	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	score, err := engine.EvaluateTransaction(context.Background(), testTx(600, domain.TxDeposit))
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if score.RiskPoints != 20 {
		t.Errorf("expected 20 risk points, got %d", score.RiskPoints)
	}
	if score.RiskLevel != domain.RiskNormal {
		t.Errorf("expected normal, got %s", score.RiskLevel)
	}
}

func TestTwoRulesSum(t *testing.T) {
	s := newTestStore(t)
	seedPolicy(t, s, "policy-two",
		&domain.Rule{
			RuleID:    "rule-amount",
			RuleType:  domain.RuleStandard,
			RiskPoint: 20,
			Field:     "amount",
			Operator:  domain.OpGreaterThan,
			Value:     500.0,
		},
		&domain.Rule{
			RuleID:    "rule-type",
			RuleType:  domain.RuleStandard,
			RiskPoint: 30,
			Field:     "transaction_type",
			Operator:  domain.OpEqual,
			Value:     "transfer",
		},
	)

	engine := NewEngine(s)
	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	score, err := engine.EvaluateTransaction(context.Background(), testTx(1000, domain.TxTransfer))
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if score.RiskPoints != 50 {
		t.Errorf("expected 50 risk points, got %d", score.RiskPoints)
	}
	if score.RiskLevel != domain.RiskNormal {
		t.Errorf("expected normal, got %s", score.RiskLevel)
	}
}

func TestBandingBoundaries(t *testing.T) {
	tests := []struct {
		points   int
		expected domain.RiskLevel
	}{
		{0, domain.RiskNormal},
		{69, domain.RiskNormal},
		{70, domain.RiskSuspect},
		{99, domain.RiskSuspect},
		{100, domain.RiskFraudConfirm},
		{250, domain.RiskFraudConfirm},
	}

	for _, tt := range tests {
		if got := domain.RiskLevelFor(tt.points); got != tt.expected {
			t.Errorf("RiskLevelFor(%d) = %s, want %s", tt.points, got, tt.expected)
		}
	}
}

func TestBandingThroughPolicy(t *testing.T) {
	s := newTestStore(t)
	seedPolicy(t, s, "policy-suspect", &domain.Rule{
		RuleID:    "rule-70",
		RuleType:  domain.RuleStandard,
		RiskPoint: 70,
		Field:     "transaction_type",
		Operator:  domain.OpEqual,
		Value:     "transfer",
	})

	engine := NewEngine(s)
	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	score, _ := engine.EvaluateTransaction(context.Background(), testTx(100, domain.TxTransfer))
	if score.RiskLevel != domain.RiskSuspect {
		t.Errorf("expected suspect at 70 points, got %s", score.RiskLevel)
	}

	score, _ = engine.EvaluateTransaction(context.Background(), testTx(100, domain.TxDeposit))
	if score.RiskLevel != domain.RiskNormal {
		t.Errorf("expected normal at 0 points, got %s", score.RiskLevel)
	}
}

func TestEmptyPolicyContributesZero(t *testing.T) {
	s := newTestStore(t)
	if err := s.InsertPolicy(context.Background(), &domain.Policy{PolicyID: "policy-empty", Name: "empty"}); err != nil {
		t.Fatalf("failed to insert policy: %v", err)
	}

	engine := NewEngine(s)
	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	score, err := engine.EvaluateTransaction(context.Background(), testTx(600, domain.TxDeposit))
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if score.RiskPoints != 0 {
		t.Errorf("expected 0 risk points, got %d", score.RiskPoints)
	}
}

func TestMalformedVelocityRuleDemotesToNotTriggered(t *testing.T) {
	s := newTestStore(t)
	seedPolicy(t, s, "policy-velocity",
		&domain.Rule{
			RuleID:      "rule-bad-velocity",
			RuleType:    domain.RuleVelocity,
			RiskPoint:   50,
			Field:       "amount",
			TimeRange:   "1 fortnight",
			Aggregation: domain.AggSum,
			Threshold:   10,
		},
		&domain.Rule{
			RuleID:    "rule-good",
			RuleType:  domain.RuleStandard,
			RiskPoint: 20,
			Field:     "amount",
			Operator:  domain.OpGreaterThan,
			Value:     500.0,
		},
	)

	engine := NewEngine(s)
	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	// The malformed velocity rule must not kill the rest of the policy.
	score, err := engine.EvaluateTransaction(context.Background(), testTx(600, domain.TxDeposit))
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if score.RiskPoints != 20 {
		t.Errorf("expected 20 risk points from the surviving rule, got %d", score.RiskPoints)
	}
}

func TestVelocityRuleAgainstHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, amount := range []float64{200, 300, 400} {
		tx := &domain.Transaction{
			IDTransaction:   "hist-" + string(rune('a'+i)),
			IDUser:          "user-001",
			Amount:          amount,
			TransactionType: domain.TxDeposit,
			Timestamp:       now.Add(-time.Duration(i+1) * time.Hour),
		}
		if err := s.InsertTransaction(ctx, tx); err != nil {
			t.Fatalf("failed to insert transaction: %v", err)
		}
	}
	// An old transaction outside every window used below.
	old := &domain.Transaction{
		IDTransaction:   "hist-old",
		IDUser:          "user-001",
		Amount:          10000,
		TransactionType: domain.TxDeposit,
		Timestamp:       now.Add(-45 * 24 * time.Hour),
	}
	if err := s.InsertTransaction(ctx, old); err != nil {
		t.Fatalf("failed to insert transaction: %v", err)
	}

	seedPolicy(t, s, "policy-velocity",
		&domain.Rule{
			RuleID:      "rule-sum",
			RuleType:    domain.RuleVelocity,
			RiskPoint:   40,
			Field:       "amount",
			TimeRange:   "1 day",
			Aggregation: domain.AggSum,
			Threshold:   800,
		},
		&domain.Rule{
			RuleID:      "rule-count",
			RuleType:    domain.RuleVelocity,
			RiskPoint:   30,
			Field:       "*",
			TimeRange:   "1 day",
			Aggregation: domain.AggCount,
			Threshold:   5,
		},
	)

	engine := NewEngine(s)
	if err := engine.Reload(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	// Sum in window is 900 > 800: triggered. Count is 3, not > 5.
	score, err := engine.EvaluateTransaction(ctx, testTx(100, domain.TxDeposit))
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	if score.RiskPoints != 40 {
		t.Errorf("expected 40 risk points (sum only), got %d", score.RiskPoints)
	}
}
