package graph

import (
	"context"
	"log/slog"
	"sort"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// ClusterNodes rederives clusters from scratch: users whose pairs
// satisfy any graph rule, or who share a postal code, end up in the same
// cluster. Non-singleton clusters are persisted with the
// lexicographically smallest member as the stable cluster id.
func (e *Engine) ClusterNodes(ctx context.Context) ([]*domain.Cluster, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return nil, errNotReady()
	}

	if err := e.clusterLocked(ctx); err != nil {
		return nil, err
	}
	return e.store.ListClusters(ctx)
}

// clusterLocked runs a clustering pass. Callers must hold the write lock.
func (e *Engine) clusterLocked(ctx context.Context) error {
	graphRules, err := e.store.ListGraphRules(ctx)
	if err != nil {
		return err
	}

	ids := e.sortedUserIDs()
	docs := make(map[string]map[string]any, len(ids))
	for _, id := range ids {
		docs[id] = e.nodes[id].Doc()
	}

	ds := newDisjointSet(ids)

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			u1, u2 := ids[i], ids[j]
			if ds.find(u1) == ds.find(u2) {
				continue
			}

			if zipMatch(e.nodes[u1], e.nodes[u2]) {
				ds.union(u1, u2)
				continue
			}

			for _, rule := range graphRules {
				if applyPairRule(docs[u1], docs[u2], rule) {
					ds.union(u1, u2)
					break
				}
			}
		}
	}

	// Collect components; singletons are elided from persistence.
	components := make(map[string][]string)
	for _, id := range ids {
		root := ds.find(id)
		components[root] = append(components[root], id)
	}

	var clusters []*domain.Cluster
	clusterOf := make(map[string]string)
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		cluster := &domain.Cluster{
			ClusterID: members[0],
			Members:   members,
		}
		clusters = append(clusters, cluster)
		for _, member := range members {
			clusterOf[member] = cluster.ClusterID
		}
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].ClusterID < clusters[j].ClusterID })

	if err := e.store.ReplaceClusters(ctx, clusters); err != nil {
		return err
	}
	e.clusterOf = clusterOf

	slog.Info("clustering complete", "clusters", len(clusters))
	return nil
}

// disjointSet is a union-find forest with path compression and union by
// rank.
type disjointSet struct {
	parent map[string]string
	rank   map[string]int
}

func newDisjointSet(ids []string) *disjointSet {
	ds := &disjointSet{
		parent: make(map[string]string, len(ids)),
		rank:   make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		ds.parent[id] = id
	}
	return ds
}

func (ds *disjointSet) find(x string) string {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

func (ds *disjointSet) union(a, b string) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	if ds.rank[ra] < ds.rank[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	if ds.rank[ra] == ds.rank[rb] {
		ds.rank[ra]++
	}
}
