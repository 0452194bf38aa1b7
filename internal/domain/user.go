package domain

import "encoding/json"

// User is a graph vertex: one account holder known to the pipeline.
// Wire names follow the ingestion schema used by the dashboard and the
// sample data generator.
type User struct {
	IDUser           string `json:"id_user" bson:"id_user"`
	NamaLengkap      string `json:"nama_lengkap" bson:"nama_lengkap"`
	Email            string `json:"email" bson:"email"`
	DomainEmail      string `json:"domain_email" bson:"domain_email"`
	Address          string `json:"address" bson:"address"`
	AddressZip       string `json:"address_zip" bson:"address_zip"`
	AddressCity      string `json:"address_city" bson:"address_city"`
	AddressProvince  string `json:"address_province" bson:"address_province"`
	AddressKecamatan string `json:"address_kecamatan" bson:"address_kecamatan"`
	PhoneNumber      string `json:"phone_number" bson:"phone_number"`
	IsFraud          bool   `json:"is_fraud" bson:"is_fraud"`
}

// Doc flattens the user into a field-name addressable document for
// graph-rule evaluation.
func (u *User) Doc() map[string]any {
	return toDoc(u)
}

// Link is an undirected labeled edge between two users. At most one link
// exists per unordered pair; the pair is stored in creation order but
// matched in both directions.
type Link struct {
	Source  string   `json:"source" bson:"source"`
	Target  string   `json:"target" bson:"target"`
	Type    string   `json:"type" bson:"type"`
	Weight  float64  `json:"weight" bson:"weight"`
	Reasons []string `json:"reasons" bson:"reasons"`
	RuleIDs []string `json:"rule_ids" bson:"rule_ids"`
}

// PairKey returns the canonical unordered-pair key for a link.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// Cluster is a derived grouping of users. The cluster id is the
// lexicographically smallest member so reruns produce stable ids.
type Cluster struct {
	ClusterID string   `json:"cluster_id" bson:"cluster_id"`
	Members   []string `json:"members" bson:"members"`
}

// GraphRuleOperator is the closed set of pairwise comparison operators.
type GraphRuleOperator string

const (
	GraphOpEqual       GraphRuleOperator = "equal"
	GraphOpGreaterThan GraphRuleOperator = "greater_than"
	GraphOpLowerThan   GraphRuleOperator = "lower_than"
	GraphOpContains    GraphRuleOperator = "contains"
)

// GraphRule is a predicate over pairs of users. field1 on the first user
// is compared against field2 on the second user when field2 is set,
// otherwise against the literal value.
type GraphRule struct {
	RuleID      string            `json:"rule_id" bson:"rule_id"`
	Name        string            `json:"name" bson:"name"`
	Description string            `json:"description" bson:"description"`
	Field1      string            `json:"field1" bson:"field1"`
	Operator    GraphRuleOperator `json:"operator" bson:"operator"`
	Field2      string            `json:"field2,omitempty" bson:"field2,omitempty"`
	Value       string            `json:"value,omitempty" bson:"value,omitempty"`
}

// FraudRecord is the confirmed-case dossier kept in the fraud_data
// collection. Written by the async worker when a verdict bands to
// fraud_confirm; confirmation fields are filled in later by an analyst.
type FraudRecord struct {
	FraudID                     string   `json:"fraud_id" bson:"fraud_id"`
	IDUser                      string   `json:"id_user" bson:"id_user"`
	IDTransactions              []string `json:"id_transactions" bson:"id_transactions"`
	Status                      string   `json:"status" bson:"status"`
	ProbabilityML               float64  `json:"probability_ml" bson:"probability_ml"`
	PolicyList                  []string `json:"policy_list" bson:"policy_list"`
	JarakFraud                  *int     `json:"jarak_fraud,omitempty" bson:"jarak_fraud,omitempty"`
	ProbabilityContactWithFraud *float64 `json:"probability_contact_with_fraud,omitempty" bson:"probability_contact_with_fraud,omitempty"`
	ConfirmedFraud              string   `json:"confirmed_fraud,omitempty" bson:"confirmed_fraud,omitempty"`
	ConfirmedDate               string   `json:"confirmed_date,omitempty" bson:"confirmed_date,omitempty"`
	ConfirmedInstitution        string   `json:"confirmed_institution,omitempty" bson:"confirmed_institution,omitempty"`
}

// toDoc round-trips a struct through JSON into a generic document so rule
// evaluation can address fields by their wire names.
func toDoc(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return map[string]any{}
	}
	return doc
}
