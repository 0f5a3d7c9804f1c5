package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Gateway creates payment orders with the remote provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*RemoteOrder, error)
}

// CulqiClient talks to the Culqi orders API over HTTPS.
type CulqiClient struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewCulqiClient creates a gateway client. The secret key authenticates every
// request as a bearer token.
func NewCulqiClient(baseURL, secretKey string) *CulqiClient {
	return &CulqiClient{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *CulqiClient) CreateOrder(ctx context.Context, req CreateOrderRequest) (*RemoteOrder, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("culqi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("culqi returned %d: %s", resp.StatusCode, payload)
	}

	var remote RemoteOrder
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, fmt.Errorf("culqi response decode: %w", err)
	}
	return &remote, nil
}
