package analyzer

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// GraphServiceClient calls a standalone graph service instead of the
// in-process engine. Used when GRAPH_SERVICE_URL is configured.
type GraphServiceClient struct {
	baseURL string
	client  *http.Client
}

// NewGraphServiceClient creates a client for a remote graph service.
func NewGraphServiceClient(baseURL string, timeout time.Duration) *GraphServiceClient {
	return &GraphServiceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// Analyze submits the transaction document for graph proximity analysis.
func (c *GraphServiceClient) Analyze(ctx context.Context, txDoc map[string]any) (*domain.GraphAnalysis, error) {
	var out domain.GraphAnalysis
	if err := postJSON(ctx, c.client, c.baseURL+"/analyze", txDoc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RulesServiceClient calls a standalone rules/policy engine instead of
// the in-process one. Used when RULES_URL is configured.
type RulesServiceClient struct {
	baseURL string
	client  *http.Client
}

// NewRulesServiceClient creates a client for a remote rules engine.
func NewRulesServiceClient(baseURL string, timeout time.Duration) *RulesServiceClient {
	return &RulesServiceClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// Score submits the transaction for policy evaluation.
func (c *RulesServiceClient) Score(ctx context.Context, tx *domain.Transaction) (*domain.PolicyScore, error) {
	var out domain.PolicyScore
	if err := postJSON(ctx, c.client, c.baseURL+"/transactions", tx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
