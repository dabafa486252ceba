// Package registration is the client of the downstream registration API.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dtroode/regbot/internal/model"
)

const (
	registerAction      = "bot-register"
	unknownRemoteReason = "Неизвестная ошибка"
	maxErrorBody        = 1 << 10
)

var _ model.Registrar = (*Client)(nil)

type registerRequest struct {
	Action   string            `json:"action"`
	UserID   int64             `json:"userId"`
	FormData map[string]string `json:"formData"`
}

type registerResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Client posts completed records to the registration API.
type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Register sends record once. Non-2xx statuses, timeouts and unreadable
// bodies are transport faults; an explicit refusal is RemoteRejected.
func (c *Client) Register(ctx context.Context, key model.SubmissionKey, record model.Record) error {
	body, err := json.Marshal(registerRequest{
		Action:   registerAction,
		UserID:   record.UserID,
		FormData: record.FormData(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal register request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", key.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return model.NewTransportFault(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return model.NewTransportFault(fmt.Errorf("registration api returned status %d: %s", resp.StatusCode, snippet))
	}

	var out registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.NewTransportFault(fmt.Errorf("failed to decode register response: %w", err))
	}

	if !out.Success {
		reason := out.Error
		if reason == "" {
			reason = unknownRemoteReason
		}
		return model.NewRemoteRejected(reason)
	}

	return nil
}
