package orchestrator

import (
	"context"

	"github.com/situkangsayur/fraude-ai/internal/analyzer"
	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// RemotePolicyScorer adapts the rules-service client to the PolicyScorer
// interface for deployments that run the rules engine standalone.
type RemotePolicyScorer struct {
	client *analyzer.RulesServiceClient
}

// NewRemotePolicyScorer wraps a rules-service client.
func NewRemotePolicyScorer(client *analyzer.RulesServiceClient) *RemotePolicyScorer {
	return &RemotePolicyScorer{client: client}
}

func (r *RemotePolicyScorer) EvaluateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.PolicyScore, error) {
	return r.client.Score(ctx, tx)
}

// RemoteGraphAnalyzer adapts the graph-service client to the
// GraphAnalyzer interface. The remote service derives the user from the
// transaction document it receives.
type RemoteGraphAnalyzer struct {
	client *analyzer.GraphServiceClient
}

// NewRemoteGraphAnalyzer wraps a graph-service client.
func NewRemoteGraphAnalyzer(client *analyzer.GraphServiceClient) *RemoteGraphAnalyzer {
	return &RemoteGraphAnalyzer{client: client}
}

func (r *RemoteGraphAnalyzer) Analyze(ctx context.Context, userID string, txDoc map[string]any) (*domain.GraphAnalysis, error) {
	if txDoc == nil {
		txDoc = map[string]any{}
	}
	if _, ok := txDoc["id_user"]; !ok {
		txDoc["id_user"] = userID
	}
	return r.client.Analyze(ctx, txDoc)
}
