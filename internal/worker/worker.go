// Package worker provides async consumers for scoring events.
//
// The fraud recorder listens for completed verdicts and files a dossier
// in the fraud_data collection whenever a transaction bands to
// fraud_confirm, so confirmed cases survive for analyst follow-up
// independently of the verdict cache.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// Worker consumes verdict events from the bus.
type Worker struct {
	bus   domain.EventBus
	store domain.Store

	subscriptions []domain.Subscription
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewWorker creates an async worker.
func NewWorker(bus domain.EventBus, store domain.Store) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:    bus,
		store:  store,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the scored-transaction topic.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicTransactionScored, w.handleVerdict)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("fraud recorder started", "topic", domain.TopicTransactionScored)
	return nil
}

// handleVerdict files a fraud dossier for fraud_confirm verdicts.
func (w *Worker) handleVerdict(ctx context.Context, msg *domain.Message) error {
	var result domain.FraudCheckResult
	if err := json.Unmarshal(msg.Payload, &result); err != nil {
		slog.Error("failed to parse verdict message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	if result.RiskLevel != domain.RiskFraudConfirm {
		return nil
	}

	rec := &domain.FraudRecord{
		FraudID:        uuid.New().String(),
		IDTransactions: []string{result.TransactionID},
		Status:         string(result.RiskLevel),
	}

	if result.Policy != nil {
		rec.IDUser = result.Policy.UserID
		for _, p := range result.Policy.Policies {
			if len(p.TriggeredRules) > 0 {
				rec.PolicyList = append(rec.PolicyList, p.PolicyID)
			}
		}
	}
	if result.NeuralNet != nil {
		rec.ProbabilityML = result.NeuralNet.FraudScore
	}
	if result.Graph != nil {
		if rec.IDUser == "" {
			rec.IDUser = result.Graph.UserID
		}
		if result.Graph.ShortestPath.HasPath {
			hops := result.Graph.ShortestPath.Hops
			rec.JarakFraud = &hops
		}
		proximity := result.Graph.ProximityScore
		rec.ProbabilityContactWithFraud = &proximity
	}

	if err := w.store.InsertFraudRecord(ctx, rec); err != nil {
		slog.Error("failed to record fraud dossier",
			"transaction_id", result.TransactionID,
			"error", err,
		)
		return err
	}

	slog.Info("fraud dossier recorded",
		"fraud_id", rec.FraudID,
		"id_user", rec.IDUser,
		"transaction_id", result.TransactionID,
	)
	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() error {
	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	slog.Info("fraud recorder stopped")
	return nil
}
