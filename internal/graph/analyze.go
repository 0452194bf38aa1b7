package graph

import (
	"context"
	"sort"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// Analyze computes the user's proximity to known fraudsters: the
// unweighted BFS distance to the nearest is_fraud vertex (ties broken by
// smallest user id), the derived proximity score 1/(d+1), the fraudulent
// direct neighbors, the degree, and the graph rules whose field1/value
// match the transaction or the user document. txDoc may be nil when no
// transaction context is available.
func (e *Engine) Analyze(ctx context.Context, userID string, txDoc map[string]any) (*domain.GraphAnalysis, error) {
	if userID == "" {
		return nil, domain.BadRequestf("id_user is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ready {
		return nil, errNotReady()
	}

	user, ok := e.nodes[userID]
	if !ok {
		return nil, domain.NotFoundf("user %s not found in the graph", userID)
	}

	analysis := &domain.GraphAnalysis{
		UserID:           userID,
		TotalLinkedNodes: len(e.adj[userID]),
		TriggeredRules:   []string{},
	}

	for neighbor := range e.adj[userID] {
		if e.nodes[neighbor] != nil && e.nodes[neighbor].IsFraud {
			analysis.LinkedFraudCount++
		}
	}

	if dist, fraudster, found := e.nearestFraudster(userID); found {
		analysis.ShortestPath = domain.PathLength{Hops: dist, HasPath: true}
		analysis.ClosestFraudster = fraudster
		analysis.ProximityScore = 1.0 / float64(dist+1)
	}

	rules, err := e.store.ListGraphRules(ctx)
	if err != nil {
		return nil, err
	}

	userDoc := user.Doc()
	for _, rule := range rules {
		if rule.Value == "" {
			continue
		}
		triggered := false
		if txDoc != nil {
			if _, ok := txDoc[rule.Field1]; ok {
				triggered = applySingleRule(txDoc, rule)
			}
		}
		if !triggered {
			if _, ok := userDoc[rule.Field1]; ok {
				triggered = applySingleRule(userDoc, rule)
			}
		}
		if triggered {
			analysis.TriggeredRules = append(analysis.TriggeredRules, rule.Name)
		}
	}

	return analysis, nil
}

// nearestFraudster runs a level-order BFS from start and returns the hop
// distance to the closest fraudulent vertex, preferring the smallest user
// id among equidistant fraudsters. A fraudulent start vertex is its own
// nearest fraudster at distance 0.
func (e *Engine) nearestFraudster(start string) (int, string, bool) {
	visited := map[string]bool{start: true}
	frontier := []string{start}
	dist := 0

	for len(frontier) > 0 {
		var found []string
		for _, id := range frontier {
			if node := e.nodes[id]; node != nil && node.IsFraud {
				found = append(found, id)
			}
		}
		if len(found) > 0 {
			sort.Strings(found)
			return dist, found[0], true
		}

		var next []string
		for _, id := range frontier {
			for neighbor := range e.adj[id] {
				if !visited[neighbor] {
					visited[neighbor] = true
					next = append(next, neighbor)
				}
			}
		}
		frontier = next
		dist++
	}

	return 0, "", false
}
