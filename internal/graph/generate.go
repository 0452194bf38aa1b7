package graph

import (
	"context"
	"log/slog"
	"sort"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// generatedLinkWeight is the weight assigned to rule-generated links.
const generatedLinkWeight = 0.5

// GenerateLinks evaluates every graph rule (plus the zip heuristic) over
// every unordered user pair that has no link yet and creates one link per
// triggered pair. Generation is additive: existing links are never
// touched, so rerunning it is idempotent. Returns the number of links
// created.
func (e *Engine) GenerateLinks(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return 0, errNotReady()
	}

	graphRules, err := e.store.ListGraphRules(ctx)
	if err != nil {
		return 0, err
	}

	ids := e.sortedUserIDs()
	docs := make(map[string]map[string]any, len(ids))
	for _, id := range ids {
		docs[id] = e.nodes[id].Doc()
	}

	created := 0
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			u1, u2 := ids[i], ids[j]

			if _, ok := e.adj[u1][u2]; ok {
				continue
			}

			var reasons, ruleIDs []string
			for _, rule := range graphRules {
				if applyPairRule(docs[u1], docs[u2], rule) {
					reasons = append(reasons, rule.Description)
					ruleIDs = append(ruleIDs, rule.RuleID)
				}
			}

			if zipMatch(e.nodes[u1], e.nodes[u2]) {
				reasons = append(reasons, zipMatchReason)
				ruleIDs = append(ruleIDs, zipMatchReason)
			}

			if len(reasons) == 0 {
				continue
			}

			link := &domain.Link{
				Source:  u1,
				Target:  u2,
				Type:    "multiple_rules",
				Weight:  generatedLinkWeight,
				Reasons: reasons,
				RuleIDs: ruleIDs,
			}

			if err := e.store.InsertLink(ctx, link); err != nil {
				slog.Error("failed to persist generated link",
					"source", u1,
					"target", u2,
					"error", err,
				)
				continue
			}

			e.adj[u1][u2] = link
			e.adj[u2][u1] = link
			created++
		}
	}

	slog.Info("link generation complete", "created", created)
	return created, nil
}

func (e *Engine) sortedUserIDs() []string {
	ids := make([]string, 0, len(e.nodes))
	for id := range e.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
