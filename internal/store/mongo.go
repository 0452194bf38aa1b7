package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// Collection names used by the pipeline.
const (
	colUsers        = "users"
	colLinks        = "links"
	colGraphRules   = "graph_rules"
	colRules        = "rules"
	colPolicies     = "policies"
	colClusters     = "clusters"
	colTransactions = "transactions"
	colFraudData    = "fraud_data"
)

// MongoStore implements domain.Store backed by MongoDB.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// linkDoc wraps a link with its canonical unordered-pair key so the
// unique index can reject parallel edges in either direction.
type linkDoc struct {
	PairKey      string `bson:"pair_key"`
	*domain.Link `bson:",inline"`
}

// NewMongoStore connects to MongoDB and ensures the indexes the core
// relies on (unique users.id_user, unique links.pair_key).
func NewMongoStore(cfg domain.StoreConfig) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	dbName := cfg.Database
	if dbName == "" {
		dbName = "fraud_detection"
	}

	s := &MongoStore{client: client, db: client.Database(dbName)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	if _, err := s.db.Collection(colUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id_user", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}

	if _, err := s.db.Collection(colLinks).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "pair_key", Value: 1}},
		Options: unique,
	}); err != nil {
		return err
	}

	_, err := s.db.Collection(colTransactions).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id_user", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}

// --- Users ---

func (s *MongoStore) InsertUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.Collection(colUsers).InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return domain.AlreadyExistsf("user %s already exists", user.IDUser)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert user")
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"id_user": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFoundf("user %s not found", userID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get user")
	}
	return &user, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	cursor, err := s.db.Collection(colUsers).Find(ctx, bson.M{})
	if err != nil {
		return nil, domain.Internalf(err, "failed to list users")
	}

	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, domain.Internalf(err, "failed to decode users")
	}
	return users, nil
}

func (s *MongoStore) UpdateUser(ctx context.Context, userID string, user *domain.User) error {
	res, err := s.db.Collection(colUsers).UpdateOne(ctx, bson.M{"id_user": userID}, bson.M{"$set": user})
	if err != nil {
		return domain.Internalf(err, "failed to update user")
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundf("user %s not found", userID)
	}
	return nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.db.Collection(colUsers).DeleteOne(ctx, bson.M{"id_user": userID})
	if err != nil {
		return domain.Internalf(err, "failed to delete user")
	}
	if res.DeletedCount == 0 {
		return domain.NotFoundf("user %s not found", userID)
	}
	return nil
}

// --- Links ---

func (s *MongoStore) InsertLink(ctx context.Context, link *domain.Link) error {
	doc := linkDoc{PairKey: domain.PairKey(link.Source, link.Target), Link: link}
	_, err := s.db.Collection(colLinks).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return domain.AlreadyExistsf("link between %s and %s already exists", link.Source, link.Target)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert link")
	}
	return nil
}

func (s *MongoStore) GetLink(ctx context.Context, source, target string) (*domain.Link, error) {
	var link domain.Link
	filter := bson.M{"pair_key": domain.PairKey(source, target)}
	err := s.db.Collection(colLinks).FindOne(ctx, filter).Decode(&link)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFoundf("link between %s and %s not found", source, target)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get link")
	}
	return &link, nil
}

func (s *MongoStore) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	cursor, err := s.db.Collection(colLinks).Find(ctx, bson.M{})
	if err != nil {
		return nil, domain.Internalf(err, "failed to list links")
	}

	var links []*domain.Link
	if err := cursor.All(ctx, &links); err != nil {
		return nil, domain.Internalf(err, "failed to decode links")
	}
	return links, nil
}

func (s *MongoStore) DeleteLink(ctx context.Context, source, target string) error {
	filter := bson.M{"pair_key": domain.PairKey(source, target)}
	res, err := s.db.Collection(colLinks).DeleteOne(ctx, filter)
	if err != nil {
		return domain.Internalf(err, "failed to delete link")
	}
	if res.DeletedCount == 0 {
		return domain.NotFoundf("link between %s and %s not found", source, target)
	}
	return nil
}

func (s *MongoStore) DeleteLinksForUser(ctx context.Context, userID string) error {
	filter := bson.M{"$or": bson.A{bson.M{"source": userID}, bson.M{"target": userID}}}
	if _, err := s.db.Collection(colLinks).DeleteMany(ctx, filter); err != nil {
		return domain.Internalf(err, "failed to delete links for user")
	}
	return nil
}

func (s *MongoStore) DeleteLinksForRule(ctx context.Context, ruleID string) error {
	if _, err := s.db.Collection(colLinks).DeleteMany(ctx, bson.M{"rule_ids": ruleID}); err != nil {
		return domain.Internalf(err, "failed to delete links for rule")
	}
	return nil
}

// --- Graph rules ---

func (s *MongoStore) InsertGraphRule(ctx context.Context, rule *domain.GraphRule) error {
	_, err := s.db.Collection(colGraphRules).InsertOne(ctx, rule)
	if mongo.IsDuplicateKeyError(err) {
		return domain.AlreadyExistsf("graph rule %s already exists", rule.RuleID)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert graph rule")
	}
	return nil
}

func (s *MongoStore) GetGraphRule(ctx context.Context, ruleID string) (*domain.GraphRule, error) {
	var rule domain.GraphRule
	err := s.db.Collection(colGraphRules).FindOne(ctx, bson.M{"rule_id": ruleID}).Decode(&rule)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFoundf("graph rule %s not found", ruleID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get graph rule")
	}
	return &rule, nil
}

func (s *MongoStore) ListGraphRules(ctx context.Context) ([]*domain.GraphRule, error) {
	cursor, err := s.db.Collection(colGraphRules).Find(ctx, bson.M{})
	if err != nil {
		return nil, domain.Internalf(err, "failed to list graph rules")
	}

	var rules []*domain.GraphRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, domain.Internalf(err, "failed to decode graph rules")
	}
	return rules, nil
}

func (s *MongoStore) UpdateGraphRule(ctx context.Context, ruleID string, rule *domain.GraphRule) error {
	res, err := s.db.Collection(colGraphRules).UpdateOne(ctx, bson.M{"rule_id": ruleID}, bson.M{"$set": rule})
	if err != nil {
		return domain.Internalf(err, "failed to update graph rule")
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundf("graph rule %s not found", ruleID)
	}
	return nil
}

func (s *MongoStore) DeleteGraphRule(ctx context.Context, ruleID string) error {
	res, err := s.db.Collection(colGraphRules).DeleteOne(ctx, bson.M{"rule_id": ruleID})
	if err != nil {
		return domain.Internalf(err, "failed to delete graph rule")
	}
	if res.DeletedCount == 0 {
		return domain.NotFoundf("graph rule %s not found", ruleID)
	}
	return nil
}

// --- Scoring rules ---

func (s *MongoStore) InsertRule(ctx context.Context, rule *domain.Rule) error {
	_, err := s.db.Collection(colRules).InsertOne(ctx, rule)
	if mongo.IsDuplicateKeyError(err) {
		return domain.AlreadyExistsf("rule %s already exists", rule.RuleID)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert rule")
	}
	return nil
}

func (s *MongoStore) GetRule(ctx context.Context, ruleID string) (*domain.Rule, error) {
	var rule domain.Rule
	err := s.db.Collection(colRules).FindOne(ctx, bson.M{"rule_id": ruleID}).Decode(&rule)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFoundf("rule %s not found", ruleID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get rule")
	}
	return &rule, nil
}

func (s *MongoStore) ListRules(ctx context.Context) ([]*domain.Rule, error) {
	cursor, err := s.db.Collection(colRules).Find(ctx, bson.M{})
	if err != nil {
		return nil, domain.Internalf(err, "failed to list rules")
	}

	var rules []*domain.Rule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, domain.Internalf(err, "failed to decode rules")
	}
	return rules, nil
}

func (s *MongoStore) UpdateRule(ctx context.Context, ruleID string, rule *domain.Rule) error {
	res, err := s.db.Collection(colRules).UpdateOne(ctx, bson.M{"rule_id": ruleID}, bson.M{"$set": rule})
	if err != nil {
		return domain.Internalf(err, "failed to update rule")
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundf("rule %s not found", ruleID)
	}
	return nil
}

func (s *MongoStore) DeleteRule(ctx context.Context, ruleID string) error {
	res, err := s.db.Collection(colRules).DeleteOne(ctx, bson.M{"rule_id": ruleID})
	if err != nil {
		return domain.Internalf(err, "failed to delete rule")
	}
	if res.DeletedCount == 0 {
		return domain.NotFoundf("rule %s not found", ruleID)
	}
	return nil
}

// --- Policies ---

func (s *MongoStore) InsertPolicy(ctx context.Context, policy *domain.Policy) error {
	_, err := s.db.Collection(colPolicies).InsertOne(ctx, policy)
	if mongo.IsDuplicateKeyError(err) {
		return domain.AlreadyExistsf("policy %s already exists", policy.PolicyID)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert policy")
	}
	return nil
}

func (s *MongoStore) GetPolicy(ctx context.Context, policyID string) (*domain.Policy, error) {
	var policy domain.Policy
	err := s.db.Collection(colPolicies).FindOne(ctx, bson.M{"policy_id": policyID}).Decode(&policy)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFoundf("policy %s not found", policyID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get policy")
	}
	return &policy, nil
}

func (s *MongoStore) ListPolicies(ctx context.Context) ([]*domain.Policy, error) {
	cursor, err := s.db.Collection(colPolicies).Find(ctx, bson.M{})
	if err != nil {
		return nil, domain.Internalf(err, "failed to list policies")
	}

	var policies []*domain.Policy
	if err := cursor.All(ctx, &policies); err != nil {
		return nil, domain.Internalf(err, "failed to decode policies")
	}
	return policies, nil
}

func (s *MongoStore) UpdatePolicy(ctx context.Context, policyID string, policy *domain.Policy) error {
	res, err := s.db.Collection(colPolicies).UpdateOne(ctx, bson.M{"policy_id": policyID}, bson.M{"$set": policy})
	if err != nil {
		return domain.Internalf(err, "failed to update policy")
	}
	if res.MatchedCount == 0 {
		return domain.NotFoundf("policy %s not found", policyID)
	}
	return nil
}

func (s *MongoStore) DeletePolicy(ctx context.Context, policyID string) error {
	res, err := s.db.Collection(colPolicies).DeleteOne(ctx, bson.M{"policy_id": policyID})
	if err != nil {
		return domain.Internalf(err, "failed to delete policy")
	}
	if res.DeletedCount == 0 {
		return domain.NotFoundf("policy %s not found", policyID)
	}
	return nil
}

// --- Clusters ---

func (s *MongoStore) ReplaceClusters(ctx context.Context, clusters []*domain.Cluster) error {
	col := s.db.Collection(colClusters)

	if _, err := col.DeleteMany(ctx, bson.M{}); err != nil {
		return domain.Internalf(err, "failed to clear clusters")
	}

	if len(clusters) == 0 {
		return nil
	}

	docs := make([]any, len(clusters))
	for i, c := range clusters {
		docs[i] = c
	}
	if _, err := col.InsertMany(ctx, docs); err != nil {
		return domain.Internalf(err, "failed to insert clusters")
	}
	return nil
}

func (s *MongoStore) GetCluster(ctx context.Context, clusterID string) (*domain.Cluster, error) {
	var cluster domain.Cluster
	err := s.db.Collection(colClusters).FindOne(ctx, bson.M{"cluster_id": clusterID}).Decode(&cluster)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFoundf("cluster %s not found", clusterID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get cluster")
	}
	return &cluster, nil
}

func (s *MongoStore) ListClusters(ctx context.Context) ([]*domain.Cluster, error) {
	cursor, err := s.db.Collection(colClusters).Find(ctx, bson.M{})
	if err != nil {
		return nil, domain.Internalf(err, "failed to list clusters")
	}

	var clusters []*domain.Cluster
	if err := cursor.All(ctx, &clusters); err != nil {
		return nil, domain.Internalf(err, "failed to decode clusters")
	}
	return clusters, nil
}

func (s *MongoStore) RemoveClusterMember(ctx context.Context, userID string) error {
	col := s.db.Collection(colClusters)

	if _, err := col.UpdateMany(ctx, bson.M{"members": userID}, bson.M{"$pull": bson.M{"members": userID}}); err != nil {
		return domain.Internalf(err, "failed to remove cluster member")
	}

	// Singleton clusters are elided from the collection.
	filter := bson.M{"$expr": bson.M{"$lt": bson.A{bson.M{"$size": "$members"}, 2}}}
	if _, err := col.DeleteMany(ctx, filter); err != nil {
		return domain.Internalf(err, "failed to prune singleton clusters")
	}
	return nil
}

// --- Transactions ---

func (s *MongoStore) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	_, err := s.db.Collection(colTransactions).InsertOne(ctx, tx)
	if mongo.IsDuplicateKeyError(err) {
		return domain.AlreadyExistsf("transaction %s already exists", tx.IDTransaction)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert transaction")
	}
	return nil
}

func (s *MongoStore) GetTransaction(ctx context.Context, txID string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := s.db.Collection(colTransactions).FindOne(ctx, bson.M{"id_transaction": txID}).Decode(&tx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFoundf("transaction %s not found", txID)
	}
	if err != nil {
		return nil, domain.Internalf(err, "failed to get transaction")
	}
	return &tx, nil
}

func (s *MongoStore) VelocityAggregate(ctx context.Context, userID, field string, agg domain.Aggregation, since time.Time) (float64, error) {
	match := bson.M{
		"id_user":   userID,
		"timestamp": bson.M{"$gte": since.UTC()},
	}

	group := bson.M{"_id": nil}
	switch agg {
	case domain.AggCount:
		group["aggregated_value"] = bson.M{"$sum": 1}
	case domain.AggSum:
		// $sum and $avg both ignore non-numeric values.
		group["aggregated_value"] = bson.M{"$sum": "$" + field}
	case domain.AggAverage:
		group["aggregated_value"] = bson.M{"$avg": "$" + field}
	default:
		return 0, domain.Validationf("unsupported aggregation function: %s", agg)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: group}},
	}

	cursor, err := s.db.Collection(colTransactions).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, domain.Internalf(err, "failed to run velocity aggregation")
	}

	var results []struct {
		AggregatedValue float64 `bson:"aggregated_value"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, domain.Internalf(err, "failed to decode velocity aggregation")
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].AggregatedValue, nil
}

// --- Fraud records ---

func (s *MongoStore) InsertFraudRecord(ctx context.Context, rec *domain.FraudRecord) error {
	_, err := s.db.Collection(colFraudData).InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return domain.AlreadyExistsf("fraud record %s already exists", rec.FraudID)
	}
	if err != nil {
		return domain.Internalf(err, "failed to insert fraud record")
	}
	return nil
}

func (s *MongoStore) ListFraudRecords(ctx context.Context, userID string) ([]*domain.FraudRecord, error) {
	cursor, err := s.db.Collection(colFraudData).Find(ctx, bson.M{"id_user": userID})
	if err != nil {
		return nil, domain.Internalf(err, "failed to list fraud records")
	}

	var recs []*domain.FraudRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, domain.Internalf(err, "failed to decode fraud records")
	}
	return recs, nil
}

// Ping checks store connectivity.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
