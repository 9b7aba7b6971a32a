package mailcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"credential-lease-platform/internal/config"
	"credential-lease-platform/internal/domain/ports/adapter"
)

// HTTPClient implements adapter.MailCodeClient against the external
// mail-code lookup service.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ adapter.MailCodeClient = (*HTTPClient)(nil)

func NewHTTPClient(cfg config.MailCodeConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type fetchResponse struct {
	Status string `json:"status"`
	Code   string `json:"code"`
}

// FetchLatest asks the service for the newest verification code delivered
// to the address. A "not_found" status is a normal outcome while the
// message is still in transit, not an error.
func (c *HTTPClient) FetchLatest(ctx context.Context, address, platform string) (adapter.MailCodeResult, error) {
	requestData := map[string]string{
		"address":  address,
		"platform": platform,
	}
	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return adapter.MailCodeResult{}, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := c.baseURL + "/v1/codes/latest"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return adapter.MailCodeResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return adapter.MailCodeResult{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.MailCodeResult{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return adapter.MailCodeResult{}, fmt.Errorf("mail-code service: status %d, body: %s", resp.StatusCode, string(body))
	}

	var response fetchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return adapter.MailCodeResult{}, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}
	if response.Status == "" {
		return adapter.MailCodeResult{}, fmt.Errorf("mail-code service: empty status, body: %s", string(body))
	}

	return adapter.MailCodeResult{Status: response.Status, Code: response.Code}, nil
}
