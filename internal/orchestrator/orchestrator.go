// Package orchestrator coordinates the fraud-check pipeline: it fans a
// transaction out to the policy engine, the graph analyzer, the
// neural-net scorer and the text analyzer concurrently, aggregates their
// sub-scores into one composite and bands it into a verdict.
package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// SubScoreScale converts the [0,1] proximity, neural-net and text scores
// into risk points. Fixed per release so the composite stays
// deterministic across runs.
const SubScoreScale = 100

// verdictCacheTTL bounds how long a computed verdict is served from
// cache for repeated checks of the same transaction.
const verdictCacheTTL = 5 * time.Minute

// PolicyScorer evaluates a transaction against the policy set. Satisfied
// by the in-process rules engine or a remote rules service adapter.
type PolicyScorer interface {
	EvaluateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.PolicyScore, error)
}

// GraphAnalyzer computes fraud proximity for a user. Satisfied by the
// in-process graph engine or a remote graph service adapter.
type GraphAnalyzer interface {
	Analyze(ctx context.Context, userID string, txDoc map[string]any) (*domain.GraphAnalysis, error)
}

// NeuralNetScorer scores a transaction document with the ML model.
type NeuralNetScorer interface {
	Score(ctx context.Context, txDoc map[string]any) (*domain.NeuralNetScore, error)
}

// TextScorer analyzes the transaction context with the text analyzer.
type TextScorer interface {
	Analyze(ctx context.Context, txDoc map[string]any) (*domain.TextAnalysis, error)
}

// Orchestrator fans out to the four analyzers and aggregates.
type Orchestrator struct {
	store  domain.Store
	policy PolicyScorer
	graph  GraphAnalyzer
	nn     NeuralNetScorer
	text   TextScorer
	bus    domain.EventBus
	cache  domain.Cache

	// timeout bounds each analyzer sub-call independently.
	timeout time.Duration
}

// New creates an orchestrator. bus and cache may be nil; nn and text may
// be nil when the corresponding service is not configured.
func New(store domain.Store, policy PolicyScorer, graph GraphAnalyzer, nn NeuralNetScorer, text TextScorer, bus domain.EventBus, cache domain.Cache, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Orchestrator{
		store:   store,
		policy:  policy,
		graph:   graph,
		nn:      nn,
		text:    text,
		bus:     bus,
		cache:   cache,
		timeout: timeout,
	}
}

// FraudCheck runs the whole pipeline for a stored transaction. A failed
// analyzer contributes a zero sub-score and an entry in the errors map;
// the check itself still succeeds. Only loading the transaction can fail
// the call: an empty id is bad_request, a missing one not_found, and any
// other store error is returned as is.
func (o *Orchestrator) FraudCheck(ctx context.Context, txID string) (*domain.FraudCheckResult, error) {
	if txID == "" {
		return nil, domain.BadRequestf("transaction_id is required")
	}

	if cached := o.cachedResult(ctx, txID); cached != nil {
		return cached, nil
	}

	tx, err := o.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}

	txDoc := tx.Doc()

	result := &domain.FraudCheckResult{
		TransactionID: txID,
		Errors:        map[string]string{},
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	fail := func(component string, err error) {
		mu.Lock()
		result.Errors[component] = err.Error()
		mu.Unlock()
		slog.Warn("analyzer sub-call failed",
			"component", component,
			"transaction_id", txID,
			"error", err,
		)
	}

	wg.Add(4)

	go func() {
		defer wg.Done()
		subCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		score, err := o.policy.EvaluateTransaction(subCtx, tx)
		if err != nil {
			fail("rules", err)
			return
		}
		mu.Lock()
		result.Policy = score
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		subCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		analysis, err := o.graph.Analyze(subCtx, tx.IDUser, txDoc)
		if err != nil {
			fail("graph", err)
			return
		}
		mu.Lock()
		result.Graph = analysis
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		if o.nn == nil {
			fail("nn", domain.Unavailablef("neural net service not configured"))
			return
		}
		subCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		score, err := o.nn.Score(subCtx, txDoc)
		if err != nil {
			fail("nn", err)
			return
		}
		mu.Lock()
		result.NeuralNet = score
		mu.Unlock()
	}()

	go func() {
		defer wg.Done()
		if o.text == nil {
			fail("text", domain.Unavailablef("text analyzer not configured"))
			return
		}
		subCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		analysis, err := o.text.Analyze(subCtx, txDoc)
		if err != nil {
			fail("text", err)
			return
		}
		mu.Lock()
		result.Text = analysis
		mu.Unlock()
	}()

	wg.Wait()

	// Failed components report empty sub-results with zero scores.
	if result.Policy == nil {
		result.Policy = &domain.PolicyScore{TransactionID: txID, UserID: tx.IDUser, RiskLevel: domain.RiskNormal}
	}
	if result.Graph == nil {
		result.Graph = &domain.GraphAnalysis{UserID: tx.IDUser, TriggeredRules: []string{}}
	}
	if result.NeuralNet == nil {
		result.NeuralNet = &domain.NeuralNetScore{}
	}
	if result.Text == nil {
		result.Text = &domain.TextAnalysis{}
	}

	result.RiskPoints = result.Policy.RiskPoints +
		int(math.Floor(result.Graph.ProximityScore*SubScoreScale)) +
		int(math.Floor(result.NeuralNet.FraudScore*SubScoreScale)) +
		int(math.Floor(result.Text.FraudScore*SubScoreScale))
	result.RiskLevel = domain.RiskLevelFor(result.RiskPoints)
	result.Partial = len(result.Errors) > 0

	o.publish(ctx, result)
	o.cacheResult(ctx, result)

	slog.Info("fraud check complete",
		"transaction_id", txID,
		"risk_points", result.RiskPoints,
		"risk_level", result.RiskLevel,
		"partial", result.Partial,
	)

	return result, nil
}

func (o *Orchestrator) publish(ctx context.Context, result *domain.FraudCheckResult) {
	if o.bus == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		slog.Error("failed to marshal verdict", "error", err)
		return
	}

	if err := o.bus.Publish(ctx, domain.TopicTransactionScored, payload); err != nil {
		slog.Error("failed to publish verdict", "transaction_id", result.TransactionID, "error", err)
	}

	if result.RiskLevel == domain.RiskFraudConfirm {
		if err := o.bus.Publish(ctx, domain.TopicFraudAlert, payload); err != nil {
			slog.Error("failed to publish fraud alert", "transaction_id", result.TransactionID, "error", err)
		}
	}
}

func (o *Orchestrator) cachedResult(ctx context.Context, txID string) *domain.FraudCheckResult {
	if o.cache == nil {
		return nil
	}

	raw, err := o.cache.Get(ctx, "fraud_check:"+txID)
	if err != nil || raw == nil {
		return nil
	}

	var result domain.FraudCheckResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil
	}
	return &result
}

func (o *Orchestrator) cacheResult(ctx context.Context, result *domain.FraudCheckResult) {
	if o.cache == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := o.cache.Set(ctx, "fraud_check:"+result.TransactionID, raw, verdictCacheTTL); err != nil {
		slog.Warn("failed to cache verdict", "transaction_id", result.TransactionID, "error", err)
	}
}
