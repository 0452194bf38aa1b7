// Package graph maintains the in-memory relationship graph of users.
//
// The graph mirrors the persisted users and links collections: every
// mutation writes the store first and the in-memory structures second,
// both under the writer lock, so external observers never see the two
// diverge. Readers (lookups, analysis, cluster listings) share a read
// lock and run concurrently.
package graph

import (
	"context"
	"log/slog"
	"sync"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// Engine is the shared relationship-graph singleton.
type Engine struct {
	mu    sync.RWMutex
	store domain.Store

	nodes     map[string]*domain.User
	adj       map[string]map[string]*domain.Link
	clusterOf map[string]string
	ready     bool
}

// NewEngine creates a graph engine bound to a store. The engine is not
// usable until Initialize has completed.
func NewEngine(store domain.Store) *Engine {
	return &Engine{
		store:     store,
		nodes:     make(map[string]*domain.User),
		adj:       make(map[string]map[string]*domain.Link),
		clusterOf: make(map[string]string),
	}
}

// Initialize rebuilds the in-memory graph and cluster table from the
// store. Runs once at startup under the writer lock; before completion,
// user, link, cluster and analysis operations and DeleteGraphRule fail
// with unavailable, while graph-rule create, get, list and update go
// straight to the store.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return err
	}

	links, err := e.store.ListLinks(ctx)
	if err != nil {
		return err
	}

	clusters, err := e.store.ListClusters(ctx)
	if err != nil {
		return err
	}

	nodes := make(map[string]*domain.User, len(users))
	adj := make(map[string]map[string]*domain.Link, len(users))
	for _, user := range users {
		nodes[user.IDUser] = user
		adj[user.IDUser] = make(map[string]*domain.Link)
	}

	for _, link := range links {
		if _, ok := nodes[link.Source]; !ok {
			slog.Warn("skipping link with unknown source", "source", link.Source, "target", link.Target)
			continue
		}
		if _, ok := nodes[link.Target]; !ok {
			slog.Warn("skipping link with unknown target", "source", link.Source, "target", link.Target)
			continue
		}
		adj[link.Source][link.Target] = link
		adj[link.Target][link.Source] = link
	}

	clusterOf := make(map[string]string)
	for _, cluster := range clusters {
		for _, member := range cluster.Members {
			clusterOf[member] = cluster.ClusterID
		}
	}

	e.nodes = nodes
	e.adj = adj
	e.clusterOf = clusterOf
	e.ready = true

	slog.Info("graph initialized",
		"users", len(nodes),
		"links", len(links),
		"clusters", len(clusters),
	)
	return nil
}

// Ready reports whether initialization has completed.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ready
}

func errNotReady() error {
	return domain.Unavailablef("graph engine not initialized")
}

// --- User CRUD ---

// CreateUser persists a new user, adds its vertex and re-clusters.
func (e *Engine) CreateUser(ctx context.Context, user *domain.User) error {
	if user == nil || user.IDUser == "" {
		return domain.BadRequestf("id_user is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return errNotReady()
	}

	if _, ok := e.nodes[user.IDUser]; ok {
		return domain.AlreadyExistsf("user %s already exists", user.IDUser)
	}

	if err := e.store.InsertUser(ctx, user); err != nil {
		return err
	}

	e.nodes[user.IDUser] = user
	e.adj[user.IDUser] = make(map[string]*domain.Link)

	// A new vertex can change cluster composition.
	if err := e.clusterLocked(ctx); err != nil {
		slog.Warn("reclustering after user create failed", "id_user", user.IDUser, "error", err)
	}

	return nil
}

// GetUser returns the persisted user document.
func (e *Engine) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.BadRequestf("id_user is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ready {
		return nil, errNotReady()
	}

	return e.store.GetUser(ctx, userID)
}

// UpdateUser persists the new attributes then rewrites the vertex in
// place. Cluster membership is unaffected by attribute changes.
func (e *Engine) UpdateUser(ctx context.Context, userID string, user *domain.User) error {
	if userID == "" {
		return domain.BadRequestf("id_user is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return errNotReady()
	}

	user.IDUser = userID
	if err := e.store.UpdateUser(ctx, userID, user); err != nil {
		return err
	}

	if _, ok := e.nodes[userID]; ok {
		e.nodes[userID] = user
	}
	return nil
}

// DeleteUser removes the user, its incident links and its cluster
// membership from both the store and the graph.
func (e *Engine) DeleteUser(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.BadRequestf("id_user is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return errNotReady()
	}

	if err := e.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	if err := e.store.DeleteLinksForUser(ctx, userID); err != nil {
		return err
	}
	if err := e.store.RemoveClusterMember(ctx, userID); err != nil {
		return err
	}

	for neighbor := range e.adj[userID] {
		delete(e.adj[neighbor], userID)
	}
	delete(e.adj, userID)
	delete(e.nodes, userID)
	delete(e.clusterOf, userID)

	return nil
}

// --- Link CRUD ---

// CreateLink persists and adds one edge. Self-loops, missing endpoints
// and duplicate unordered pairs are rejected.
func (e *Engine) CreateLink(ctx context.Context, link *domain.Link) error {
	if link == nil || link.Source == "" || link.Target == "" {
		return domain.BadRequestf("source and target are required")
	}
	if link.Source == link.Target {
		return domain.Validationf("self-loops are not allowed")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return errNotReady()
	}

	if _, ok := e.nodes[link.Source]; !ok {
		return domain.NotFoundf("user %s not found", link.Source)
	}
	if _, ok := e.nodes[link.Target]; !ok {
		return domain.NotFoundf("user %s not found", link.Target)
	}
	if _, ok := e.adj[link.Source][link.Target]; ok {
		return domain.AlreadyExistsf("link between %s and %s already exists", link.Source, link.Target)
	}

	if err := e.store.InsertLink(ctx, link); err != nil {
		return err
	}

	e.adj[link.Source][link.Target] = link
	e.adj[link.Target][link.Source] = link
	return nil
}

// GetLink looks a link up by unordered endpoint pair.
func (e *Engine) GetLink(ctx context.Context, source, target string) (*domain.Link, error) {
	if source == "" || target == "" {
		return nil, domain.BadRequestf("source and target are required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ready {
		return nil, errNotReady()
	}

	return e.store.GetLink(ctx, source, target)
}

// DeleteLink removes a link from store and graph. Removal from the graph
// is idempotent; absence from the store surfaces not_found.
func (e *Engine) DeleteLink(ctx context.Context, source, target string) error {
	if source == "" || target == "" {
		return domain.BadRequestf("source and target are required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return errNotReady()
	}

	if err := e.store.DeleteLink(ctx, source, target); err != nil {
		return err
	}

	delete(e.adj[source], target)
	delete(e.adj[target], source)
	return nil
}

// Links returns links, optionally restricted to pairs whose endpoints
// both belong to the given cluster.
func (e *Engine) Links(ctx context.Context, clusterID string) ([]*domain.Link, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ready {
		return nil, errNotReady()
	}

	links, err := e.store.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	if clusterID == "" {
		return links, nil
	}

	cluster, err := e.store.GetCluster(ctx, clusterID)
	if err != nil {
		return nil, err
	}

	members := make(map[string]bool, len(cluster.Members))
	for _, m := range cluster.Members {
		members[m] = true
	}

	var filtered []*domain.Link
	for _, link := range links {
		if members[link.Source] && members[link.Target] {
			filtered = append(filtered, link)
		}
	}
	return filtered, nil
}

// --- Cluster reads ---

// Clusters lists the persisted non-singleton clusters.
func (e *Engine) Clusters(ctx context.Context) ([]*domain.Cluster, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ready {
		return nil, errNotReady()
	}

	return e.store.ListClusters(ctx)
}

// Cluster returns one cluster by id.
func (e *Engine) Cluster(ctx context.Context, clusterID string) (*domain.Cluster, error) {
	if clusterID == "" {
		return nil, domain.BadRequestf("cluster_id is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ready {
		return nil, errNotReady()
	}

	return e.store.GetCluster(ctx, clusterID)
}

// ClusterIDOf returns the cluster a user currently belongs to, if any.
func (e *Engine) ClusterIDOf(userID string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.clusterOf[userID]
	return id, ok
}

// --- Graph rule CRUD ---

// CreateGraphRule stores a new pairwise rule.
func (e *Engine) CreateGraphRule(ctx context.Context, rule *domain.GraphRule) error {
	if rule == nil || rule.Field1 == "" || rule.Operator == "" {
		return domain.BadRequestf("field1 and operator are required")
	}
	if rule.Field2 == "" && rule.Value == "" {
		return domain.Validationf("either field2 or value is required")
	}
	return e.store.InsertGraphRule(ctx, rule)
}

// GetGraphRule returns one pairwise rule.
func (e *Engine) GetGraphRule(ctx context.Context, ruleID string) (*domain.GraphRule, error) {
	if ruleID == "" {
		return nil, domain.BadRequestf("rule_id is required")
	}
	return e.store.GetGraphRule(ctx, ruleID)
}

// ListGraphRules returns every pairwise rule.
func (e *Engine) ListGraphRules(ctx context.Context) ([]*domain.GraphRule, error) {
	return e.store.ListGraphRules(ctx)
}

// UpdateGraphRule rewrites one pairwise rule.
func (e *Engine) UpdateGraphRule(ctx context.Context, ruleID string, rule *domain.GraphRule) error {
	if ruleID == "" {
		return domain.BadRequestf("rule_id is required")
	}
	rule.RuleID = ruleID
	return e.store.UpdateGraphRule(ctx, ruleID, rule)
}

// DeleteGraphRule removes a pairwise rule and cascades to the links it
// produced, in both the store and the graph.
func (e *Engine) DeleteGraphRule(ctx context.Context, ruleID string) error {
	if ruleID == "" {
		return domain.BadRequestf("rule_id is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready {
		return errNotReady()
	}

	if err := e.store.DeleteGraphRule(ctx, ruleID); err != nil {
		return err
	}
	if err := e.store.DeleteLinksForRule(ctx, ruleID); err != nil {
		return err
	}

	for source, neighbors := range e.adj {
		for target, link := range neighbors {
			for _, id := range link.RuleIDs {
				if id == ruleID {
					delete(e.adj[source], target)
					delete(e.adj[target], source)
					break
				}
			}
		}
	}
	return nil
}
