package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// SQLStore implements domain.Store using database/sql.
// Works with both SQLite and PostgreSQL drivers; documents are stored as
// JSON alongside the indexed filter columns.
type SQLStore struct {
	db     *sql.DB
	driver string
}

func (s *SQLStore) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := s.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a primary/unique key conflict.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") // postgres
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}

func marshalDoc(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}
	return string(raw), nil
}

// --- Users ---

func (s *SQLStore) InsertUser(ctx context.Context, user *domain.User) error {
	doc, err := marshalDoc(user)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (id_user, is_fraud, address_zip, doc) VALUES (?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, s.rebind(query), user.IDUser, boolToInt(user.IsFraud), user.AddressZip, doc)
	if isUniqueViolation(err) {
		return domain.AlreadyExistsf("user %s already exists", user.IDUser)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert user")
	}
	return nil
}

func (s *SQLStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT doc FROM users WHERE id_user = ?`

	var doc string
	err := s.db.QueryRowContext(ctx, s.rebind(query), userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("user %s not found", userID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get user")
	}

	var user domain.User
	if err := json.Unmarshal([]byte(doc), &user); err != nil {
		return nil, domain.Internalf(err, "failed to decode user document")
	}
	return &user, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM users ORDER BY id_user`)
	if err != nil {
		return nil, domain.Internalf(err, "failed to list users")
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, domain.Internalf(err, "failed to scan user row")
		}
		var user domain.User
		if err := json.Unmarshal([]byte(doc), &user); err != nil {
			return nil, domain.Internalf(err, "failed to decode user document")
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

func (s *SQLStore) UpdateUser(ctx context.Context, userID string, user *domain.User) error {
	doc, err := marshalDoc(user)
	if err != nil {
		return err
	}

	query := `UPDATE users SET is_fraud = ?, address_zip = ?, doc = ? WHERE id_user = ?`
	res, err := s.db.ExecContext(ctx, s.rebind(query), boolToInt(user.IsFraud), user.AddressZip, doc, userID)
	if err != nil {
		return domain.Internalf(err, "failed to update user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("user %s not found", userID)
	}
	return nil
}

func (s *SQLStore) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE id_user = ?`), userID)
	if err != nil {
		return domain.Internalf(err, "failed to delete user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("user %s not found", userID)
	}
	return nil
}

// --- Links ---

func (s *SQLStore) InsertLink(ctx context.Context, link *domain.Link) error {
	doc, err := marshalDoc(link)
	if err != nil {
		return err
	}

	query := `INSERT INTO links (pair_key, source, target, doc) VALUES (?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, s.rebind(query), domain.PairKey(link.Source, link.Target), link.Source, link.Target, doc)
	if isUniqueViolation(err) {
		return domain.AlreadyExistsf("link between %s and %s already exists", link.Source, link.Target)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert link")
	}
	return nil
}

func (s *SQLStore) GetLink(ctx context.Context, source, target string) (*domain.Link, error) {
	query := `SELECT doc FROM links WHERE pair_key = ?`

	var doc string
	err := s.db.QueryRowContext(ctx, s.rebind(query), domain.PairKey(source, target)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("link between %s and %s not found", source, target)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get link")
	}

	var link domain.Link
	if err := json.Unmarshal([]byte(doc), &link); err != nil {
		return nil, domain.Internalf(err, "failed to decode link document")
	}
	return &link, nil
}

func (s *SQLStore) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM links ORDER BY pair_key`)
	if err != nil {
		return nil, domain.Internalf(err, "failed to list links")
	}
	defer rows.Close()

	var links []*domain.Link
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, domain.Internalf(err, "failed to scan link row")
		}
		var link domain.Link
		if err := json.Unmarshal([]byte(doc), &link); err != nil {
			return nil, domain.Internalf(err, "failed to decode link document")
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}

func (s *SQLStore) DeleteLink(ctx context.Context, source, target string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM links WHERE pair_key = ?`), domain.PairKey(source, target))
	if err != nil {
		return domain.Internalf(err, "failed to delete link")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("link between %s and %s not found", source, target)
	}
	return nil
}

func (s *SQLStore) DeleteLinksForUser(ctx context.Context, userID string) error {
	query := `DELETE FROM links WHERE source = ? OR target = ?`
	if _, err := s.db.ExecContext(ctx, s.rebind(query), userID, userID); err != nil {
		return domain.Internalf(err, "failed to delete links for user")
	}
	return nil
}

func (s *SQLStore) DeleteLinksForRule(ctx context.Context, ruleID string) error {
	// rule_ids lives inside the JSON document; scan and match in Go so
	// the query stays portable across both SQL drivers.
	links, err := s.ListLinks(ctx)
	if err != nil {
		return err
	}

	for _, link := range links {
		for _, id := range link.RuleIDs {
			if id == ruleID {
				if err := s.DeleteLink(ctx, link.Source, link.Target); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

// --- Graph rules ---

func (s *SQLStore) InsertGraphRule(ctx context.Context, rule *domain.GraphRule) error {
	doc, err := marshalDoc(rule)
	if err != nil {
		return err
	}

	query := `INSERT INTO graph_rules (rule_id, doc) VALUES (?, ?)`
	_, err = s.db.ExecContext(ctx, s.rebind(query), rule.RuleID, doc)
	if isUniqueViolation(err) {
		return domain.AlreadyExistsf("graph rule %s already exists", rule.RuleID)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert graph rule")
	}
	return nil
}

func (s *SQLStore) GetGraphRule(ctx context.Context, ruleID string) (*domain.GraphRule, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT doc FROM graph_rules WHERE rule_id = ?`), ruleID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("graph rule %s not found", ruleID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get graph rule")
	}

	var rule domain.GraphRule
	if err := json.Unmarshal([]byte(doc), &rule); err != nil {
		return nil, domain.Internalf(err, "failed to decode graph rule document")
	}
	return &rule, nil
}

func (s *SQLStore) ListGraphRules(ctx context.Context) ([]*domain.GraphRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM graph_rules ORDER BY rule_id`)
	if err != nil {
		return nil, domain.Internalf(err, "failed to list graph rules")
	}
	defer rows.Close()

	var rules []*domain.GraphRule
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, domain.Internalf(err, "failed to scan graph rule row")
		}
		var rule domain.GraphRule
		if err := json.Unmarshal([]byte(doc), &rule); err != nil {
			return nil, domain.Internalf(err, "failed to decode graph rule document")
		}
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

func (s *SQLStore) UpdateGraphRule(ctx context.Context, ruleID string, rule *domain.GraphRule) error {
	doc, err := marshalDoc(rule)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE graph_rules SET doc = ? WHERE rule_id = ?`), doc, ruleID)
	if err != nil {
		return domain.Internalf(err, "failed to update graph rule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("graph rule %s not found", ruleID)
	}
	return nil
}

func (s *SQLStore) DeleteGraphRule(ctx context.Context, ruleID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM graph_rules WHERE rule_id = ?`), ruleID)
	if err != nil {
		return domain.Internalf(err, "failed to delete graph rule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("graph rule %s not found", ruleID)
	}
	return nil
}

// --- Scoring rules ---

func (s *SQLStore) InsertRule(ctx context.Context, rule *domain.Rule) error {
	doc, err := marshalDoc(rule)
	if err != nil {
		return err
	}

	query := `INSERT INTO rules (rule_id, rule_type, policy_id, doc) VALUES (?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, s.rebind(query), rule.RuleID, string(rule.RuleType), rule.PolicyID, doc)
	if isUniqueViolation(err) {
		return domain.AlreadyExistsf("rule %s already exists", rule.RuleID)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert rule")
	}
	return nil
}

func (s *SQLStore) GetRule(ctx context.Context, ruleID string) (*domain.Rule, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT doc FROM rules WHERE rule_id = ?`), ruleID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("rule %s not found", ruleID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get rule")
	}

	var rule domain.Rule
	if err := json.Unmarshal([]byte(doc), &rule); err != nil {
		return nil, domain.Internalf(err, "failed to decode rule document")
	}
	return &rule, nil
}

func (s *SQLStore) ListRules(ctx context.Context) ([]*domain.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM rules ORDER BY rule_id`)
	if err != nil {
		return nil, domain.Internalf(err, "failed to list rules")
	}
	defer rows.Close()

	var rules []*domain.Rule
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, domain.Internalf(err, "failed to scan rule row")
		}
		var rule domain.Rule
		if err := json.Unmarshal([]byte(doc), &rule); err != nil {
			return nil, domain.Internalf(err, "failed to decode rule document")
		}
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

func (s *SQLStore) UpdateRule(ctx context.Context, ruleID string, rule *domain.Rule) error {
	doc, err := marshalDoc(rule)
	if err != nil {
		return err
	}

	query := `UPDATE rules SET rule_type = ?, policy_id = ?, doc = ? WHERE rule_id = ?`
	res, err := s.db.ExecContext(ctx, s.rebind(query), string(rule.RuleType), rule.PolicyID, doc, ruleID)
	if err != nil {
		return domain.Internalf(err, "failed to update rule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("rule %s not found", ruleID)
	}
	return nil
}

func (s *SQLStore) DeleteRule(ctx context.Context, ruleID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM rules WHERE rule_id = ?`), ruleID)
	if err != nil {
		return domain.Internalf(err, "failed to delete rule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("rule %s not found", ruleID)
	}
	return nil
}

// --- Policies ---

func (s *SQLStore) InsertPolicy(ctx context.Context, policy *domain.Policy) error {
	doc, err := marshalDoc(policy)
	if err != nil {
		return err
	}

	query := `INSERT INTO policies (policy_id, doc) VALUES (?, ?)`
	_, err = s.db.ExecContext(ctx, s.rebind(query), policy.PolicyID, doc)
	if isUniqueViolation(err) {
		return domain.AlreadyExistsf("policy %s already exists", policy.PolicyID)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert policy")
	}
	return nil
}

func (s *SQLStore) GetPolicy(ctx context.Context, policyID string) (*domain.Policy, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT doc FROM policies WHERE policy_id = ?`), policyID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("policy %s not found", policyID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get policy")
	}

	var policy domain.Policy
	if err := json.Unmarshal([]byte(doc), &policy); err != nil {
		return nil, domain.Internalf(err, "failed to decode policy document")
	}
	return &policy, nil
}

func (s *SQLStore) ListPolicies(ctx context.Context) ([]*domain.Policy, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM policies ORDER BY policy_id`)
	if err != nil {
		return nil, domain.Internalf(err, "failed to list policies")
	}
	defer rows.Close()

	var policies []*domain.Policy
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, domain.Internalf(err, "failed to scan policy row")
		}
		var policy domain.Policy
		if err := json.Unmarshal([]byte(doc), &policy); err != nil {
			return nil, domain.Internalf(err, "failed to decode policy document")
		}
		policies = append(policies, &policy)
	}
	return policies, rows.Err()
}

func (s *SQLStore) UpdatePolicy(ctx context.Context, policyID string, policy *domain.Policy) error {
	doc, err := marshalDoc(policy)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE policies SET doc = ? WHERE policy_id = ?`), doc, policyID)
	if err != nil {
		return domain.Internalf(err, "failed to update policy")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("policy %s not found", policyID)
	}
	return nil
}

func (s *SQLStore) DeletePolicy(ctx context.Context, policyID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM policies WHERE policy_id = ?`), policyID)
	if err != nil {
		return domain.Internalf(err, "failed to delete policy")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("policy %s not found", policyID)
	}
	return nil
}

// --- Clusters ---

func (s *SQLStore) ReplaceClusters(ctx context.Context, clusters []*domain.Cluster) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM clusters`); err != nil {
		return domain.Internalf(err, "failed to clear clusters")
	}

	for _, cluster := range clusters {
		doc, err := marshalDoc(cluster)
		if err != nil {
			return err
		}
		query := `INSERT INTO clusters (cluster_id, doc) VALUES (?, ?)`
		if _, err := s.db.ExecContext(ctx, s.rebind(query), cluster.ClusterID, doc); err != nil {
			return domain.Internalf(err, "failed to insert cluster")
		}
	}
	return nil
}

func (s *SQLStore) GetCluster(ctx context.Context, clusterID string) (*domain.Cluster, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT doc FROM clusters WHERE cluster_id = ?`), clusterID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("cluster %s not found", clusterID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get cluster")
	}

	var cluster domain.Cluster
	if err := json.Unmarshal([]byte(doc), &cluster); err != nil {
		return nil, domain.Internalf(err, "failed to decode cluster document")
	}
	return &cluster, nil
}

func (s *SQLStore) ListClusters(ctx context.Context) ([]*domain.Cluster, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM clusters ORDER BY cluster_id`)
	if err != nil {
		return nil, domain.Internalf(err, "failed to list clusters")
	}
	defer rows.Close()

	var clusters []*domain.Cluster
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, domain.Internalf(err, "failed to scan cluster row")
		}
		var cluster domain.Cluster
		if err := json.Unmarshal([]byte(doc), &cluster); err != nil {
			return nil, domain.Internalf(err, "failed to decode cluster document")
		}
		clusters = append(clusters, &cluster)
	}
	return clusters, rows.Err()
}

func (s *SQLStore) RemoveClusterMember(ctx context.Context, userID string) error {
	clusters, err := s.ListClusters(ctx)
	if err != nil {
		return err
	}

	for _, cluster := range clusters {
		idx := -1
		for i, member := range cluster.Members {
			if member == userID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		cluster.Members = append(cluster.Members[:idx], cluster.Members[idx+1:]...)

		// Singleton clusters are elided from the collection.
		if len(cluster.Members) < 2 {
			_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM clusters WHERE cluster_id = ?`), cluster.ClusterID)
			if err != nil {
				return domain.Internalf(err, "failed to delete cluster")
			}
			return nil
		}

		doc, err := marshalDoc(cluster)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, s.rebind(`UPDATE clusters SET doc = ? WHERE cluster_id = ?`), doc, cluster.ClusterID)
		if err != nil {
			return domain.Internalf(err, "failed to update cluster")
		}
		return nil
	}
	return nil
}

// --- Transactions ---

func (s *SQLStore) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	doc, err := marshalDoc(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO transactions (id_transaction, id_user, amount, timestamp, doc) VALUES (?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, s.rebind(query), tx.IDTransaction, tx.IDUser, tx.Amount, tx.Timestamp.UTC(), doc)
	if isUniqueViolation(err) {
		return domain.AlreadyExistsf("transaction %s already exists", tx.IDTransaction)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert transaction")
	}
	return nil
}

func (s *SQLStore) GetTransaction(ctx context.Context, txID string) (*domain.Transaction, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT doc FROM transactions WHERE id_transaction = ?`), txID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("transaction %s not found", txID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get transaction")
	}

	var tx domain.Transaction
	if err := json.Unmarshal([]byte(doc), &tx); err != nil {
		return nil, domain.Internalf(err, "failed to decode transaction document")
	}
	return &tx, nil
}

func (s *SQLStore) VelocityAggregate(ctx context.Context, userID, field string, agg domain.Aggregation, since time.Time) (float64, error) {
	// count and amount aggregates run in SQL; other fields live inside
	// the JSON document and aggregate over decoded rows.
	switch {
	case agg == domain.AggCount:
		var count float64
		query := `SELECT COUNT(*) FROM transactions WHERE id_user = ? AND timestamp >= ?`
		if err := s.db.QueryRowContext(ctx, s.rebind(query), userID, since.UTC()).Scan(&count); err != nil {
			return 0, domain.Internalf(err, "failed to count transactions")
		}
		return count, nil

	case field == "amount":
		var fn string
		switch agg {
		case domain.AggSum:
			fn = "SUM"
		case domain.AggAverage:
			fn = "AVG"
		default:
			return 0, domain.Validationf("unsupported aggregation function: %s", agg)
		}

		var value sql.NullFloat64
		query := fmt.Sprintf(`SELECT %s(amount) FROM transactions WHERE id_user = ? AND timestamp >= ?`, fn)
		if err := s.db.QueryRowContext(ctx, s.rebind(query), userID, since.UTC()).Scan(&value); err != nil {
			return 0, domain.Internalf(err, "failed to aggregate transactions")
		}
		return value.Float64, nil

	default:
		return s.velocityAggregateDocs(ctx, userID, field, agg, since)
	}
}

func (s *SQLStore) velocityAggregateDocs(ctx context.Context, userID, field string, agg domain.Aggregation, since time.Time) (float64, error) {
	query := `SELECT doc FROM transactions WHERE id_user = ? AND timestamp >= ?`
	rows, err := s.db.QueryContext(ctx, s.rebind(query), userID, since.UTC())
	if err != nil {
		return 0, domain.Internalf(err, "failed to query transactions")
	}
	defer rows.Close()

	var sum float64
	var n int
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, domain.Internalf(err, "failed to scan transaction row")
		}
		doc := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			continue
		}
		// Non-numeric entries are skipped.
		if v, ok := doc[field].(float64); ok {
			sum += v
			n++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, domain.Internalf(err, "failed to iterate transactions")
	}

	switch agg {
	case domain.AggSum:
		return sum, nil
	case domain.AggAverage:
		if n == 0 {
			return 0, nil
		}
		return sum / float64(n), nil
	default:
		return 0, domain.Validationf("unsupported aggregation function: %s", agg)
	}
}

// --- Fraud records ---

func (s *SQLStore) InsertFraudRecord(ctx context.Context, rec *domain.FraudRecord) error {
	doc, err := marshalDoc(rec)
	if err != nil {
		return err
	}

	query := `INSERT INTO fraud_data (fraud_id, id_user, doc) VALUES (?, ?, ?)`
	_, err = s.db.ExecContext(ctx, s.rebind(query), rec.FraudID, rec.IDUser, doc)
	if isUniqueViolation(err) {
		return domain.AlreadyExistsf("fraud record %s already exists", rec.FraudID)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert fraud record")
	}
	return nil
}

func (s *SQLStore) ListFraudRecords(ctx context.Context, userID string) ([]*domain.FraudRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT doc FROM fraud_data WHERE id_user = ? ORDER BY fraud_id`), userID)
	if err != nil {
		return nil, domain.Internalf(err, "failed to list fraud records")
	}
	defer rows.Close()

	var recs []*domain.FraudRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, domain.Internalf(err, "failed to scan fraud record row")
		}
		var rec domain.FraudRecord
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, domain.Internalf(err, "failed to decode fraud record document")
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// Ping checks database connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
