//go:build integration
// +build integration

// Package integration provides end-to-end tests against a running fraude
// instance.
//
// These tests exercise the COMPLETE scoring pipeline over HTTP:
//
//	Users/Links → Clustering → Policies/Rules → /transactions → /fraud_check
//
// Start the server with TESTING=true (embedded store) and run:
//
//	go test -tags=integration -v ./tests/integration/...
//
// The base URL defaults to http://localhost:8080 and can be overridden
// with FRAUDE_BASE_URL.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

func baseURL() string {
	if url := os.Getenv("FRAUDE_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func call(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	req, err := http.NewRequest(method, baseURL()+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		_ = json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func TestPipelineEndToEnd(t *testing.T) {
	if status := call(t, http.MethodGet, "/health", nil, nil); status != http.StatusOK {
		t.Skipf("fraude not reachable at %s (status %d)", baseURL(), status)
	}

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	userA := "it-a-" + suffix
	userB := "it-b-" + suffix
	fraudster := "it-f-" + suffix
	txID := "it-tx-" + suffix

	// Seed a small neighborhood: A-B share a zip, the fraudster links
	// to B.
	for _, u := range []map[string]any{
		{"id_user": userA, "nama_lengkap": "A", "email": userA + "@x.id", "domain_email": "x.id", "address_zip": "it-" + suffix},
		{"id_user": userB, "nama_lengkap": "B", "email": userB + "@x.id", "domain_email": "x.id", "address_zip": "it-" + suffix},
		{"id_user": fraudster, "nama_lengkap": "F", "email": fraudster + "@x.id", "domain_email": "x.id", "address_zip": "zz-" + suffix, "is_fraud": true},
	} {
		if status := call(t, http.MethodPost, "/users/", u, nil); status != http.StatusOK {
			t.Fatalf("failed to create user: %d", status)
		}
	}

	if status := call(t, http.MethodPost, "/links/", map[string]any{
		"source": userB, "target": fraudster, "type": "manual", "weight": 1,
	}, nil); status != http.StatusOK {
		t.Fatalf("failed to create link: %d", status)
	}

	if status := call(t, http.MethodPost, "/generate_links/", nil, nil); status != http.StatusOK {
		t.Fatalf("link generation failed: %d", status)
	}
	if status := call(t, http.MethodPost, "/cluster_nodes/", nil, nil); status != http.StatusOK {
		t.Fatalf("clustering failed: %d", status)
	}

	// A policy that flags large transfers.
	var policy struct {
		PolicyID string `json:"policy_id"`
	}
	status := call(t, http.MethodPost, "/policies/", map[string]any{
		"name":        "it-large-transfers-" + suffix,
		"description": "integration policy",
		"rules": []map[string]any{
			{"rule_type": "standard", "description": "amount above 500", "risk_point": 20,
				"field": "amount", "operator": "greater_than", "value": 500},
			{"rule_type": "standard", "description": "transfer", "risk_point": 30,
				"field": "transaction_type", "operator": "equal", "value": "transfer"},
		},
	}, &policy)
	if status != http.StatusOK {
		t.Fatalf("failed to create policy: %d", status)
	}

	// Score a transaction for A.
	var score struct {
		RiskPoints int    `json:"risk_points"`
		RiskLevel  string `json:"risk_level"`
	}
	status = call(t, http.MethodPost, "/transactions", map[string]any{
		"id_transaction":   txID,
		"id_user":          userA,
		"amount":           1000,
		"transaction_type": "transfer",
	}, &score)
	if status != http.StatusOK {
		t.Fatalf("failed to score transaction: %d", status)
	}
	if score.RiskPoints < 50 {
		t.Errorf("expected at least 50 risk points, got %d", score.RiskPoints)
	}

	// Full orchestrated check: succeeds even with the remote analyzers
	// absent, reporting them in the errors map.
	var result struct {
		RiskPoints int               `json:"risk_points"`
		RiskLevel  string            `json:"risk_level"`
		Errors     map[string]string `json:"errors"`
		Partial    bool              `json:"partial"`
	}
	status = call(t, http.MethodGet, "/fraud_check/"+txID, nil, &result)
	if status != http.StatusOK {
		t.Fatalf("fraud check failed: %d", status)
	}
	if result.RiskPoints < 50 {
		t.Errorf("expected composite >= policy points, got %d", result.RiskPoints)
	}

	// Graph analysis for B: the fraudster is one hop away.
	var analysis struct {
		ProximityScore float64 `json:"proximity_score"`
	}
	status = call(t, http.MethodGet, "/analyze", map[string]any{"user_id": userB}, &analysis)
	if status != http.StatusOK {
		t.Fatalf("analyze failed: %d", status)
	}
	if analysis.ProximityScore != 0.5 {
		t.Errorf("expected proximity 0.5 for direct neighbor, got %v", analysis.ProximityScore)
	}

	// Cleanup the policy so reruns stay idempotent.
	call(t, http.MethodDelete, "/policies/"+policy.PolicyID, nil, nil)
}
