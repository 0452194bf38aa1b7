package domain

import "encoding/json"

// PolicyResult is the outcome of evaluating one policy.
type PolicyResult struct {
	PolicyID       string   `json:"policy_id"`
	Name           string   `json:"name"`
	RiskPoints     int      `json:"risk_points"`
	TriggeredRules []string `json:"triggered_rules,omitempty"`
}

// PolicyScore is the rules-engine sub-result: the summed risk points over
// every policy plus the per-policy breakdown.
type PolicyScore struct {
	TransactionID string         `json:"transaction_id"`
	UserID        string         `json:"user_id"`
	RiskPoints    int            `json:"risk_points"`
	RiskLevel     RiskLevel      `json:"risk_level"`
	Policies      []PolicyResult `json:"policies,omitempty"`
}

// PathLength is a BFS hop count that serializes as the number or, when no
// path exists, as the sentinel string "No path".
type PathLength struct {
	Hops    int
	HasPath bool
}

const noPathSentinel = "No path"

func (p PathLength) MarshalJSON() ([]byte, error) {
	if !p.HasPath {
		return json.Marshal(noPathSentinel)
	}
	return json.Marshal(p.Hops)
}

func (p *PathLength) UnmarshalJSON(data []byte) error {
	var hops int
	if err := json.Unmarshal(data, &hops); err == nil {
		p.Hops = hops
		p.HasPath = true
		return nil
	}
	p.HasPath = false
	return nil
}

// GraphAnalysis is the graph-engine sub-result for one user.
type GraphAnalysis struct {
	UserID           string     `json:"user_id"`
	ProximityScore   float64    `json:"proximity_score"`
	ShortestPath     PathLength `json:"shortest_path_length_to_fraudster"`
	ClosestFraudster string     `json:"closest_fraudster,omitempty"`
	LinkedFraudCount int        `json:"linked_fraud_count"`
	TotalLinkedNodes int        `json:"total_linked_nodes"`
	TriggeredRules   []string   `json:"triggered_rules"`
}

// NeuralNetScore is the neural-net service response.
type NeuralNetScore struct {
	FraudScore float64 `json:"fraud_score"`
	FraudTag   string  `json:"fraud_tag,omitempty"`
}

// TextAnalysis is the text-analyzer service response.
type TextAnalysis struct {
	FraudScore    float64 `json:"fraud_score"`
	Justification string  `json:"justification,omitempty"`
}

// FraudCheckResult is the orchestrated verdict: the composite score, its
// band and each analyzer's sub-result. Errors maps failed components to
// their failure reason; Partial is set when any component failed.
type FraudCheckResult struct {
	TransactionID string    `json:"transaction_id"`
	RiskPoints    int       `json:"risk_points"`
	RiskLevel     RiskLevel `json:"risk_level"`

	Policy    *PolicyScore    `json:"rules_results,omitempty"`
	Graph     *GraphAnalysis  `json:"graph_results,omitempty"`
	NeuralNet *NeuralNetScore `json:"neural_net_results,omitempty"`
	Text      *TextAnalysis   `json:"llm_results,omitempty"`

	Errors  map[string]string `json:"errors,omitempty"`
	Partial bool              `json:"partial,omitempty"`
}
