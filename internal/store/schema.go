package store

// Schema definitions for the SQL-backed document store.
// Each logical collection is one table holding the full document as JSON
// plus the columns queries filter or aggregate on.
// Compatible with both SQLite and PostgreSQL.

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id_user TEXT PRIMARY KEY,
    is_fraud INTEGER NOT NULL DEFAULT 0,
    address_zip TEXT,
    doc TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_is_fraud ON users(is_fraud);
`

const schemaLinks = `
CREATE TABLE IF NOT EXISTS links (
    pair_key TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    target TEXT NOT NULL,
    doc TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_links_source ON links(source);
CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);
`

const schemaGraphRules = `
CREATE TABLE IF NOT EXISTS graph_rules (
    rule_id TEXT PRIMARY KEY,
    doc TEXT NOT NULL
);
`

const schemaRules = `
CREATE TABLE IF NOT EXISTS rules (
    rule_id TEXT PRIMARY KEY,
    rule_type TEXT NOT NULL,
    policy_id TEXT,
    doc TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rules_policy ON rules(policy_id);
`

const schemaPolicies = `
CREATE TABLE IF NOT EXISTS policies (
    policy_id TEXT PRIMARY KEY,
    doc TEXT NOT NULL
);
`

const schemaClusters = `
CREATE TABLE IF NOT EXISTS clusters (
    cluster_id TEXT PRIMARY KEY,
    doc TEXT NOT NULL
);
`

const schemaTransactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id_transaction TEXT PRIMARY KEY,
    id_user TEXT NOT NULL,
    amount REAL NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    doc TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_time ON transactions(id_user, timestamp);
`

const schemaFraudData = `
CREATE TABLE IF NOT EXISTS fraud_data (
    fraud_id TEXT PRIMARY KEY,
    id_user TEXT NOT NULL,
    doc TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fraud_data_user ON fraud_data(id_user);
`

// AllSchemas returns every table definition in creation order.
func AllSchemas() []string {
	return []string{
		schemaUsers,
		schemaLinks,
		schemaGraphRules,
		schemaRules,
		schemaPolicies,
		schemaClusters,
		schemaTransactions,
		schemaFraudData,
	}
}
