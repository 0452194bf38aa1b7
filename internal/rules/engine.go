// Package rules provides the policy/rule evaluation engine.
//
// Rules come in two variants: standard rules compare one transaction
// field against a literal through a fixed operator table, velocity rules
// aggregate the user's transaction history over a time window. Policies
// bundle rules; a transaction's risk is the sum of the risk points of
// every triggered rule across every policy.
package rules

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// Engine evaluates transactions against the loaded policy set.
// The loaded set lives in memory behind a readers-writer lock and is
// refreshed from the store via Reload; evaluation itself is stateless and
// reentrant.
type Engine struct {
	mu       sync.RWMutex
	store    domain.Store
	policies []*domain.Policy
	rules    map[string]*domain.Rule

	// now is the clock used for velocity windows.
	now func() time.Time
}

// NewEngine creates a rule engine bound to a store.
func NewEngine(store domain.Store) *Engine {
	return &Engine{
		store: store,
		rules: make(map[string]*domain.Rule),
		now:   time.Now,
	}
}

// Reload replaces the loaded policy set from the store.
// Rule/policy CRUD handlers call this after every write so evaluation
// always reflects the persisted configuration.
func (e *Engine) Reload(ctx context.Context) error {
	policies, err := e.store.ListPolicies(ctx)
	if err != nil {
		return err
	}

	ruleList, err := e.store.ListRules(ctx)
	if err != nil {
		return err
	}

	ruleMap := make(map[string]*domain.Rule, len(ruleList))
	for _, rule := range ruleList {
		ruleMap[rule.RuleID] = rule
	}

	e.mu.Lock()
	e.policies = policies
	e.rules = ruleMap
	e.mu.Unlock()

	return nil
}

// PoliciesCount returns the number of loaded policies.
func (e *Engine) PoliciesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.policies)
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// EvaluateTransaction scores a transaction against every loaded policy
// and bands the summed risk points. A rule that fails to evaluate is
// logged and treated as not triggered; the rest of the policy continues.
func (e *Engine) EvaluateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.PolicyScore, error) {
	e.mu.RLock()
	policies := e.policies
	ruleMap := e.rules
	e.mu.RUnlock()

	doc := tx.Doc()
	now := e.now().UTC()

	score := &domain.PolicyScore{
		TransactionID: tx.IDTransaction,
		UserID:        tx.IDUser,
	}

	for _, policy := range policies {
		result := domain.PolicyResult{
			PolicyID: policy.PolicyID,
			Name:     policy.Name,
		}

		for _, ruleID := range policy.RuleIDs {
			rule, ok := ruleMap[ruleID]
			if !ok {
				slog.Warn("policy references unknown rule",
					"policy_id", policy.PolicyID,
					"rule_id", ruleID,
				)
				continue
			}

			if e.evaluateRule(ctx, doc, tx.IDUser, rule, now) {
				result.RiskPoints += rule.RiskPoint
				result.TriggeredRules = append(result.TriggeredRules, rule.RuleID)
			}
		}

		score.RiskPoints += result.RiskPoints
		score.Policies = append(score.Policies, result)
	}

	score.RiskLevel = domain.RiskLevelFor(score.RiskPoints)
	return score, nil
}

// evaluateRule dispatches on the rule variant. Evaluation errors demote
// to "not triggered".
func (e *Engine) evaluateRule(ctx context.Context, doc map[string]any, userID string, rule *domain.Rule, now time.Time) bool {
	switch rule.RuleType {
	case domain.RuleStandard:
		return evaluateStandard(doc, rule)

	case domain.RuleVelocity:
		triggered, err := evaluateVelocity(ctx, e.store, userID, rule, now)
		if err != nil {
			slog.Warn("velocity rule evaluation failed",
				"rule_id", rule.RuleID,
				"error", err,
			)
			return false
		}
		return triggered

	default:
		slog.Warn("unknown rule type", "rule_id", rule.RuleID, "rule_type", rule.RuleType)
		return false
	}
}
