package analyzer

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/situkangsayur/fraude-ai/internal/domain"
)

// NeuralNetClient scores transactions against the neural-net service.
type NeuralNetClient struct {
	baseURL string
	client  *http.Client
}

// NewNeuralNetClient creates a client for the neural-net service.
func NewNeuralNetClient(baseURL string, timeout time.Duration) *NeuralNetClient {
	return &NeuralNetClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// Score submits the transaction document and returns the model's fraud
// score in [0,1] with its tag.
func (c *NeuralNetClient) Score(ctx context.Context, txDoc map[string]any) (*domain.NeuralNetScore, error) {
	var out domain.NeuralNetScore
	if err := postJSON(ctx, c.client, c.baseURL+"/score", txDoc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
