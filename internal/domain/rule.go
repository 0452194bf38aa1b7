package domain

// RuleKind discriminates the two rule variants in the rules collection.
type RuleKind string

const (
	RuleStandard RuleKind = "standard"
	RuleVelocity RuleKind = "velocity"
)

// Operator is the closed set of standard-rule comparison operators.
// Operators are fixed at build time; there is no expression evaluation.
type Operator string

const (
	OpEqual            Operator = "equal"
	OpGreaterThan      Operator = "greater_than"
	OpGreaterThanEqual Operator = "greater_than_equal"
	OpLowerThan        Operator = "lower_than"
	OpLowerThanEqual   Operator = "lower_than_equal"
	OpNotEqual         Operator = "not_equal"
	OpIn               Operator = "in"
	OpNotIn            Operator = "not_in"
	OpContains         Operator = "contains"
)

// Aggregation is the closed set of velocity-rule aggregation functions.
type Aggregation string

const (
	AggCount   Aggregation = "count"
	AggSum     Aggregation = "sum"
	AggAverage Aggregation = "average"
)

// Rule is a scoring rule. RuleType discriminates which body applies:
// standard rules carry (Field, Operator, Value), velocity rules carry
// (Field, TimeRange, Aggregation, Threshold). A triggered rule contributes
// RiskPoint to its policy's total.
type Rule struct {
	RuleID      string   `json:"rule_id" bson:"rule_id"`
	PolicyID    string   `json:"policy_id,omitempty" bson:"policy_id,omitempty"`
	RuleType    RuleKind `json:"rule_type" bson:"rule_type"`
	Description string   `json:"description" bson:"description"`
	RiskPoint   int      `json:"risk_point" bson:"risk_point"`

	// Standard rule body.
	Field    string   `json:"field,omitempty" bson:"field,omitempty"`
	Operator Operator `json:"operator,omitempty" bson:"operator,omitempty"`
	Value    any      `json:"value,omitempty" bson:"value,omitempty"`

	// Velocity rule body. TimeRange is a natural-language duration such
	// as "1 hour" or "2 weeks".
	TimeRange   string      `json:"time_range,omitempty" bson:"time_range,omitempty"`
	Aggregation Aggregation `json:"aggregation_function,omitempty" bson:"aggregation_function,omitempty"`
	Threshold   float64     `json:"threshold,omitempty" bson:"threshold,omitempty"`
}

// Policy is a named, ordered bundle of rules.
type Policy struct {
	PolicyID    string   `json:"policy_id" bson:"policy_id"`
	Name        string   `json:"name" bson:"name"`
	Description string   `json:"description" bson:"description"`
	RuleIDs     []string `json:"rules" bson:"rules"`
}

// RiskLevel is the categorical verdict band.
type RiskLevel string

const (
	RiskNormal       RiskLevel = "normal"
	RiskSuspect      RiskLevel = "suspect"
	RiskFraudConfirm RiskLevel = "fraud_confirm"
)

// Verdict banding thresholds.
const (
	RiskFraudThreshold   = 100
	RiskSuspectThreshold = 70
)

// RiskLevelFor bands a risk-point total into a verdict.
func RiskLevelFor(riskPoints int) RiskLevel {
	switch {
	case riskPoints >= RiskFraudThreshold:
		return RiskFraudConfirm
	case riskPoints >= RiskSuspectThreshold:
		return RiskSuspect
	default:
		return RiskNormal
	}
}
