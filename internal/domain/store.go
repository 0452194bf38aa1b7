package domain

import (
	"context"
	"time"
)

// Store is the document-store contract the core consumes. Implementations
// are selected by driver: MongoDB (default), or SQLite/PostgreSQL holding
// the documents as JSON. Each operation is atomic per document; no
// multi-document transactions are required or assumed.
//
// Create operations return an already_exists error on unique-key
// violations; point reads and deletes return not_found when no document
// matches.
type Store interface {
	// Users. The user_id key is unique.
	InsertUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, userID string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, userID string, user *User) error
	DeleteUser(ctx context.Context, userID string) error

	// Links are keyed by unordered endpoint pair.
	InsertLink(ctx context.Context, link *Link) error
	GetLink(ctx context.Context, source, target string) (*Link, error)
	ListLinks(ctx context.Context) ([]*Link, error)
	DeleteLink(ctx context.Context, source, target string) error
	DeleteLinksForUser(ctx context.Context, userID string) error
	DeleteLinksForRule(ctx context.Context, ruleID string) error

	// Graph rules.
	InsertGraphRule(ctx context.Context, rule *GraphRule) error
	GetGraphRule(ctx context.Context, ruleID string) (*GraphRule, error)
	ListGraphRules(ctx context.Context) ([]*GraphRule, error)
	UpdateGraphRule(ctx context.Context, ruleID string, rule *GraphRule) error
	DeleteGraphRule(ctx context.Context, ruleID string) error

	// Scoring rules (standard and velocity variants share a collection,
	// discriminated by rule_type).
	InsertRule(ctx context.Context, rule *Rule) error
	GetRule(ctx context.Context, ruleID string) (*Rule, error)
	ListRules(ctx context.Context) ([]*Rule, error)
	UpdateRule(ctx context.Context, ruleID string, rule *Rule) error
	DeleteRule(ctx context.Context, ruleID string) error

	// Policies.
	InsertPolicy(ctx context.Context, policy *Policy) error
	GetPolicy(ctx context.Context, policyID string) (*Policy, error)
	ListPolicies(ctx context.Context) ([]*Policy, error)
	UpdatePolicy(ctx context.Context, policyID string, policy *Policy) error
	DeletePolicy(ctx context.Context, policyID string) error

	// Clusters are fully rederived on every clustering pass: the
	// collection is cleared and the new non-singleton clusters inserted.
	ReplaceClusters(ctx context.Context, clusters []*Cluster) error
	GetCluster(ctx context.Context, clusterID string) (*Cluster, error)
	ListClusters(ctx context.Context) ([]*Cluster, error)
	RemoveClusterMember(ctx context.Context, userID string) error

	// Transactions.
	InsertTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, txID string) (*Transaction, error)

	// VelocityAggregate computes count/sum/average of field over the
	// user's transactions with timestamp >= since. Non-numeric field
	// values are skipped for sum and average.
	VelocityAggregate(ctx context.Context, userID, field string, agg Aggregation, since time.Time) (float64, error)

	// Fraud dossiers.
	InsertFraudRecord(ctx context.Context, rec *FraudRecord) error
	ListFraudRecords(ctx context.Context, userID string) ([]*FraudRecord, error)

	// Health check.
	Ping(ctx context.Context) error

	// Lifecycle.
	Close() error
}

// StoreConfig holds configuration for store initialization.
type StoreConfig struct {
	// Driver is "mongo", "sqlite" or "postgres".
	Driver string

	// Mongo settings.
	URI      string
	Database string

	// SQLite settings. ":memory:" selects the embedded testing store.
	SQLitePath string

	// PostgreSQL settings.
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
