package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/bus"
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

func publishVerdict(t *testing.T, eventBus domain.EventBus, result *domain.FraudCheckResult) {
	t.Helper()
	payload, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("failed to marshal verdict: %v", err)
	}
	if err := eventBus.Publish(context.Background(), domain.TopicTransactionScored, payload); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}
}

func waitForRecords(t *testing.T, s domain.Store, userID string, want int) []*domain.FraudRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		recs, err := s.ListFraudRecords(context.Background(), userID)
		if err != nil {
			t.Fatalf("failed to list fraud records: %v", err)
		}
		if len(recs) >= want {
			return recs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d fraud records", want)
	return nil
}

func TestWorkerRecordsConfirmedFraud(t *testing.T) {
	s := newTestStore(t)

	eventBus := bus.NewChannelBus(16)
	defer eventBus.Close()

	w := NewWorker(eventBus, s)
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	time.Sleep(10 * time.Millisecond)

	hops := 1
	publishVerdict(t, eventBus, &domain.FraudCheckResult{
		TransactionID: "tx-001",
		RiskPoints:    120,
		RiskLevel:     domain.RiskFraudConfirm,
		Policy: &domain.PolicyScore{
			UserID: "user-001",
			Policies: []domain.PolicyResult{
				{PolicyID: "policy-1", TriggeredRules: []string{"rule-1"}},
				{PolicyID: "policy-quiet"},
			},
		},
		NeuralNet: &domain.NeuralNetScore{FraudScore: 0.9},
		Graph: &domain.GraphAnalysis{
			UserID:         "user-001",
			ProximityScore: 0.5,
			ShortestPath:   domain.PathLength{Hops: hops, HasPath: true},
		},
	})

	recs := waitForRecords(t, s, "user-001", 1)

	rec := recs[0]
	if rec.Status != string(domain.RiskFraudConfirm) {
		t.Errorf("unexpected status: %s", rec.Status)
	}
	if rec.ProbabilityML != 0.9 {
		t.Errorf("expected probability_ml 0.9, got %v", rec.ProbabilityML)
	}
	if rec.JarakFraud == nil || *rec.JarakFraud != 1 {
		t.Errorf("expected jarak_fraud 1, got %v", rec.JarakFraud)
	}
	if len(rec.PolicyList) != 1 || rec.PolicyList[0] != "policy-1" {
		t.Errorf("expected only triggered policies recorded, got %v", rec.PolicyList)
	}
	if len(rec.IDTransactions) != 1 || rec.IDTransactions[0] != "tx-001" {
		t.Errorf("unexpected transactions: %v", rec.IDTransactions)
	}
}

func TestWorkerIgnoresNonFraudVerdicts(t *testing.T) {
	s := newTestStore(t)

	eventBus := bus.NewChannelBus(16)
	defer eventBus.Close()

	w := NewWorker(eventBus, s)
	if err := w.Start(); err != nil {
		t.Fatalf("failed to start worker: %v", err)
	}
	defer w.Stop()

	time.Sleep(10 * time.Millisecond)

	publishVerdict(t, eventBus, &domain.FraudCheckResult{
		TransactionID: "tx-002",
		RiskPoints:    40,
		RiskLevel:     domain.RiskNormal,
		Policy:        &domain.PolicyScore{UserID: "user-002"},
	})

	time.Sleep(100 * time.Millisecond)

	recs, err := s.ListFraudRecords(context.Background(), "user-002")
	if err != nil {
		t.Fatalf("failed to list fraud records: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no records for a normal verdict, got %d", len(recs))
	}
}
