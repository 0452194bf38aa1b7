package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// --- Policies ---

// CreatePolicyRequest is the POST /policies/ body: a policy with its
// rules embedded. The rules land in the rules collection and the policy
// document keeps their ids.
type CreatePolicyRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Rules       []*domain.Rule `json:"rules"`
}

// CreatePolicy handles POST /policies/.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreatePolicyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Name == "" {
		writeError(w, domain.BadRequestf("name is required"))
		return
	}
	if len(req.Rules) == 0 {
		writeError(w, domain.Validationf("policy must have at least one rule"))
		return
	}

	policy := &domain.Policy{
		PolicyID:    uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
	}

	for _, rule := range req.Rules {
		if err := validateRule(rule); err != nil {
			writeError(w, err)
			return
		}
	}

	for _, rule := range req.Rules {
		if rule.RuleID == "" {
			rule.RuleID = uuid.New().String()
		}
		rule.PolicyID = policy.PolicyID
		if err := h.store.InsertRule(ctx, rule); err != nil {
			writeError(w, err)
			return
		}
		policy.RuleIDs = append(policy.RuleIDs, rule.RuleID)
	}

	if err := h.store.InsertPolicy(ctx, policy); err != nil {
		writeError(w, err)
		return
	}

	h.reloadRules(ctx)

	slog.Info("policy created",
		"policy_id", policy.PolicyID,
		"name", policy.Name,
		"rules_count", len(policy.RuleIDs),
	)
	writeJSON(w, http.StatusOK, policy)
}

// ListPolicies handles GET /policies/.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.store.ListPolicies(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"policies": policies,
		"count":    len(policies),
	})
}

// GetPolicy handles GET /policies/{id}.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.store.GetPolicy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, policy)
}

// UpdatePolicy handles PUT /policies/{id}.
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	policyID := chi.URLParam(r, "id")

	var policy domain.Policy
	if err := decodeJSON(r, &policy); err != nil {
		writeError(w, err)
		return
	}

	policy.PolicyID = policyID
	if err := h.store.UpdatePolicy(ctx, policyID, &policy); err != nil {
		writeError(w, err)
		return
	}

	h.reloadRules(ctx)
	writeJSON(w, http.StatusOK, policy)
}

// DeletePolicy handles DELETE /policies/{id}.
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	policyID := chi.URLParam(r, "id")

	if err := h.store.DeletePolicy(ctx, policyID); err != nil {
		writeError(w, err)
		return
	}

	h.reloadRules(ctx)

	slog.Info("policy deleted", "policy_id", policyID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Policy deleted successfully"})
}

// --- Scoring rules ---

// CreateStandardRule handles POST /standard_rules/.
func (h *Handler) CreateStandardRule(w http.ResponseWriter, r *http.Request) {
	h.createRule(w, r, domain.RuleStandard)
}

// CreateVelocityRule handles POST /velocity_rules/.
func (h *Handler) CreateVelocityRule(w http.ResponseWriter, r *http.Request) {
	h.createRule(w, r, domain.RuleVelocity)
}

func (h *Handler) createRule(w http.ResponseWriter, r *http.Request, kind domain.RuleKind) {
	ctx := r.Context()

	var rule domain.Rule
	if err := decodeJSON(r, &rule); err != nil {
		writeError(w, err)
		return
	}

	rule.RuleType = kind
	if err := validateRule(&rule); err != nil {
		writeError(w, err)
		return
	}

	if rule.RuleID == "" {
		rule.RuleID = uuid.New().String()
	}

	if err := h.store.InsertRule(ctx, &rule); err != nil {
		writeError(w, err)
		return
	}

	h.reloadRules(ctx)

	slog.Info("rule created", "rule_id", rule.RuleID, "rule_type", rule.RuleType)
	writeJSON(w, http.StatusOK, rule)
}

// GetStandardRule handles GET /standard_rules/{id}.
func (h *Handler) GetStandardRule(w http.ResponseWriter, r *http.Request) {
	h.getRule(w, r, domain.RuleStandard)
}

// GetVelocityRule handles GET /velocity_rules/{id}.
func (h *Handler) GetVelocityRule(w http.ResponseWriter, r *http.Request) {
	h.getRule(w, r, domain.RuleVelocity)
}

func (h *Handler) getRule(w http.ResponseWriter, r *http.Request, kind domain.RuleKind) {
	rule, err := h.store.GetRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if rule.RuleType != kind {
		writeError(w, domain.NotFoundf("%s rule %s not found", kind, rule.RuleID))
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// UpdateStandardRule handles PUT /standard_rules/{id}.
func (h *Handler) UpdateStandardRule(w http.ResponseWriter, r *http.Request) {
	h.updateRule(w, r, domain.RuleStandard)
}

// UpdateVelocityRule handles PUT /velocity_rules/{id}.
func (h *Handler) UpdateVelocityRule(w http.ResponseWriter, r *http.Request) {
	h.updateRule(w, r, domain.RuleVelocity)
}

func (h *Handler) updateRule(w http.ResponseWriter, r *http.Request, kind domain.RuleKind) {
	ctx := r.Context()
	ruleID := chi.URLParam(r, "id")

	var rule domain.Rule
	if err := decodeJSON(r, &rule); err != nil {
		writeError(w, err)
		return
	}

	rule.RuleID = ruleID
	rule.RuleType = kind
	if err := validateRule(&rule); err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.UpdateRule(ctx, ruleID, &rule); err != nil {
		writeError(w, err)
		return
	}

	h.reloadRules(ctx)
	writeJSON(w, http.StatusOK, rule)
}

// DeleteStandardRule handles DELETE /standard_rules/{id}.
func (h *Handler) DeleteStandardRule(w http.ResponseWriter, r *http.Request) {
	h.deleteRule(w, r)
}

// DeleteVelocityRule handles DELETE /velocity_rules/{id}.
func (h *Handler) DeleteVelocityRule(w http.ResponseWriter, r *http.Request) {
	h.deleteRule(w, r)
}

func (h *Handler) deleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleID := chi.URLParam(r, "id")

	if err := h.store.DeleteRule(ctx, ruleID); err != nil {
		writeError(w, err)
		return
	}

	h.reloadRules(ctx)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Rule deleted successfully"})
}

// validateRule checks the fields the rule variant requires.
func validateRule(rule *domain.Rule) error {
	if rule.RiskPoint < 0 {
		return domain.Validationf("risk_point must be >= 0")
	}

	switch rule.RuleType {
	case domain.RuleStandard:
		if rule.Field == "" || rule.Operator == "" {
			return domain.BadRequestf("field and operator are required")
		}
		switch rule.Operator {
		case domain.OpEqual, domain.OpGreaterThan, domain.OpGreaterThanEqual,
			domain.OpLowerThan, domain.OpLowerThanEqual, domain.OpNotEqual,
			domain.OpIn, domain.OpNotIn, domain.OpContains:
		default:
			return domain.Validationf("unknown operator: %s", rule.Operator)
		}

	case domain.RuleVelocity:
		if rule.Field == "" || rule.TimeRange == "" || rule.Aggregation == "" {
			return domain.BadRequestf("field, time_range and aggregation_function are required")
		}
		switch rule.Aggregation {
		case domain.AggCount, domain.AggSum, domain.AggAverage:
		default:
			return domain.Validationf("unknown aggregation function: %s", rule.Aggregation)
		}

	default:
		return domain.Validationf("unknown rule type: %s", rule.RuleType)
	}
	return nil
}

// reloadRules refreshes the engine's loaded policy set after a
// configuration write. Failure is logged, not surfaced: the persisted
// configuration wins on the next successful reload.
func (h *Handler) reloadRules(ctx context.Context) {
	if h.rules == nil {
		return
	}
	if err := h.rules.Reload(ctx); err != nil {
		slog.Error("failed to reload rules", "error", err)
	}
}
