package analyzer

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// TextAnalyzerClient calls the generative text analyzer, which returns a
// fraud score plus a prose justification for the transaction context.
type TextAnalyzerClient struct {
	baseURL string
	client  *http.Client
}

// NewTextAnalyzerClient creates a client for the text analyzer service.
func NewTextAnalyzerClient(baseURL string, timeout time.Duration) *TextAnalyzerClient {
	return &TextAnalyzerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

type analyzeRequest struct {
	TransactionData map[string]any `json:"transaction_data"`
}

// Analyze submits the transaction document for text analysis.
func (c *TextAnalyzerClient) Analyze(ctx context.Context, txDoc map[string]any) (*domain.TextAnalysis, error) {
	var out domain.TextAnalysis
	req := analyzeRequest{TransactionData: txDoc}
	if err := postJSON(ctx, c.client, c.baseURL+"/analyze", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
