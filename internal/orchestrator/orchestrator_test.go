package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/analyzer"
	"github.com/situkangsayur/fraude-ai/internal/bus"
	"github.com/situkangsayur/fraude-ai/internal/domain"
	"github.com/situkangsayur/fraude-ai/internal/graph"
	"github.com/situkangsayur/fraude-ai/internal/rules"
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

func newEngines(t *testing.T, s domain.Store) (*rules.Engine, *graph.Engine) {
	t.Helper()
	ctx := context.Background()

	rulesEngine := rules.NewEngine(s)
	if err := rulesEngine.Reload(ctx); err != nil {
		t.Fatalf("failed to load rules: %v", err)
	}

	graphEngine := graph.NewEngine(s)
	if err := graphEngine.Initialize(ctx); err != nil {
		t.Fatalf("failed to initialize graph: %v", err)
	}
	return rulesEngine, graphEngine
}

func seedTransaction(t *testing.T, s domain.Store, txID, userID string, amount float64) {
	t.Helper()
	tx := &domain.Transaction{
		IDTransaction:   txID,
		IDUser:          userID,
		Amount:          amount,
		TransactionType: domain.TxTransfer,
		Timestamp:       time.Now().UTC(),
	}
	if err := s.InsertTransaction(context.Background(), tx); err != nil {
		t.Fatalf("failed to seed transaction: %v", err)
	}
}

func seedUser(t *testing.T, g *graph.Engine, user *domain.User) {
	t.Helper()
	if err := g.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
}

func scoreServer(t *testing.T, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFraudCheckAggregation(t *testing.T) {
	s := newTestStore(t)
	rulesEngine, graphEngine := newEngines(t, s)

	seedUser(t, graphEngine, &domain.User{IDUser: "user-001", AddressZip: "1"})
	seedTransaction(t, s, "tx-001", "user-001", 600)

	nn := scoreServer(t, domain.NeuralNetScore{FraudScore: 0.25, FraudTag: "normal"})
	text := scoreServer(t, domain.TextAnalysis{FraudScore: 0.1, Justification: "looks ordinary"})

	orch := New(s, rulesEngine, graphEngine,
		analyzer.NewNeuralNetClient(nn.URL, time.Second),
		analyzer.NewTextAnalyzerClient(text.URL, time.Second),
		nil, nil, time.Second)

	result, err := orch.FraudCheck(context.Background(), "tx-001")
	if err != nil {
		t.Fatalf("fraud check failed: %v", err)
	}

	// No policies, isolated user: composite is NN 25 + text 10.
	if result.RiskPoints != 35 {
		t.Errorf("expected 35 risk points, got %d", result.RiskPoints)
	}
	if result.RiskLevel != domain.RiskNormal {
		t.Errorf("expected normal, got %s", result.RiskLevel)
	}
	if result.Partial {
		t.Errorf("expected complete result, got errors %v", result.Errors)
	}
	if result.NeuralNet.FraudScore != 0.25 {
		t.Errorf("expected nn sub-score 0.25, got %v", result.NeuralNet.FraudScore)
	}
	if result.Text.Justification != "looks ordinary" {
		t.Errorf("unexpected justification: %s", result.Text.Justification)
	}
}

func TestFraudCheckMissingTransaction(t *testing.T) {
	s := newTestStore(t)
	rulesEngine, graphEngine := newEngines(t, s)

	orch := New(s, rulesEngine, graphEngine, nil, nil, nil, nil, time.Second)

	_, err := orch.FraudCheck(context.Background(), "tx-missing")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestFraudCheckDegradesWhenNeuralNetDown(t *testing.T) {
	s := newTestStore(t)
	rulesEngine, graphEngine := newEngines(t, s)

	seedUser(t, graphEngine, &domain.User{IDUser: "user-001", AddressZip: "1"})
	seedTransaction(t, s, "tx-001", "user-001", 600)

	// NN endpoint is down; text endpoint answers.
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(downstream.Close)

	text := scoreServer(t, domain.TextAnalysis{FraudScore: 0.1})

	orch := New(s, rulesEngine, graphEngine,
		analyzer.NewNeuralNetClient(downstream.URL, time.Second),
		analyzer.NewTextAnalyzerClient(text.URL, time.Second),
		nil, nil, time.Second)

	result, err := orch.FraudCheck(context.Background(), "tx-001")
	if err != nil {
		t.Fatalf("fraud check must succeed despite analyzer failure: %v", err)
	}

	if !result.Partial {
		t.Error("expected partial result")
	}
	if _, ok := result.Errors["nn"]; !ok {
		t.Errorf("expected errors.nn populated, got %v", result.Errors)
	}
	if result.NeuralNet == nil || result.NeuralNet.FraudScore != 0 {
		t.Errorf("expected zero nn sub-score, got %+v", result.NeuralNet)
	}
	if result.RiskPoints != 10 {
		t.Errorf("expected 10 risk points from text only, got %d", result.RiskPoints)
	}
}

func TestFraudCheckDeterministicComposite(t *testing.T) {
	s := newTestStore(t)
	rulesEngine, graphEngine := newEngines(t, s)

	// user-001 is directly linked to a fraudster: proximity 1/2.
	seedUser(t, graphEngine, &domain.User{IDUser: "user-001", AddressZip: "1"})
	seedUser(t, graphEngine, &domain.User{IDUser: "user-bad", AddressZip: "2", IsFraud: true})
	if err := graphEngine.CreateLink(context.Background(), &domain.Link{Source: "user-001", Target: "user-bad", Type: "manual", Weight: 1}); err != nil {
		t.Fatalf("failed to link: %v", err)
	}
	seedTransaction(t, s, "tx-001", "user-001", 600)

	nn := scoreServer(t, domain.NeuralNetScore{FraudScore: 0.3})
	text := scoreServer(t, domain.TextAnalysis{FraudScore: 0.2})

	orch := New(s, rulesEngine, graphEngine,
		analyzer.NewNeuralNetClient(nn.URL, time.Second),
		analyzer.NewTextAnalyzerClient(text.URL, time.Second),
		nil, nil, time.Second)

	// floor(0.5*100) + floor(0.3*100) + floor(0.2*100) = 50+30+20 = 100.
	first, err := orch.FraudCheck(context.Background(), "tx-001")
	if err != nil {
		t.Fatalf("fraud check failed: %v", err)
	}
	if first.RiskPoints != 100 {
		t.Errorf("expected 100 risk points, got %d", first.RiskPoints)
	}
	if first.RiskLevel != domain.RiskFraudConfirm {
		t.Errorf("expected fraud_confirm at 100 points, got %s", first.RiskLevel)
	}

	second, err := orch.FraudCheck(context.Background(), "tx-001")
	if err != nil {
		t.Fatalf("second fraud check failed: %v", err)
	}
	if second.RiskPoints != first.RiskPoints || second.RiskLevel != first.RiskLevel {
		t.Errorf("composite not deterministic: %d/%s vs %d/%s",
			first.RiskPoints, first.RiskLevel, second.RiskPoints, second.RiskLevel)
	}
}

func TestFraudCheckPublishesVerdict(t *testing.T) {
	s := newTestStore(t)
	rulesEngine, graphEngine := newEngines(t, s)

	seedUser(t, graphEngine, &domain.User{IDUser: "user-001", AddressZip: "1"})
	seedTransaction(t, s, "tx-001", "user-001", 600)

	eventBus := bus.NewChannelBus(16)
	t.Cleanup(func() { eventBus.Close() })

	received := make(chan *domain.Message, 1)
	_, err := eventBus.Subscribe(context.Background(), domain.TopicTransactionScored, func(ctx context.Context, msg *domain.Message) error {
		received <- msg
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	orch := New(s, rulesEngine, graphEngine, nil, nil, eventBus, nil, time.Second)

	if _, err := orch.FraudCheck(context.Background(), "tx-001"); err != nil {
		t.Fatalf("fraud check failed: %v", err)
	}

	select {
	case msg := <-received:
		var result domain.FraudCheckResult
		if err := json.Unmarshal(msg.Payload, &result); err != nil {
			t.Fatalf("failed to decode verdict event: %v", err)
		}
		if result.TransactionID != "tx-001" {
			t.Errorf("unexpected transaction id: %s", result.TransactionID)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for verdict event")
	}
}
