package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/degree-audit-api/internal/models"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
)

const maxAuditResponseBytes = 32 << 20

// AuditClient calls the remote degree audit service.
type AuditClient struct {
	baseURL string
	client  *http.Client
}

// NewAuditClient constructs a client. The remote audit is slow, so the
// timeout defaults to an hour.
func NewAuditClient(baseURL string, timeout time.Duration) *AuditClient {
	if timeout <= 0 {
		timeout = time.Hour
	}
	return &AuditClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type auditResponse struct {
	Reports []json.RawMessage `json:"reports"`
}

// Audit posts the transcript and returns the raw report documents. Failures
// carry the remote detail message, or "HTTP error! status: N" without one.
func (c *AuditClient) Audit(ctx context.Context, transcript models.Transcript) ([]json.RawMessage, error) {
	body, err := json.Marshal(transcript)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audit", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build audit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAuditFailed.Code, appErrors.ErrAuditFailed.Status, err.Error())
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxAuditResponseBytes))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAuditFailed.Code, appErrors.ErrAuditFailed.Status, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, appErrors.Clone(appErrors.ErrAuditFailed, failureMessage(resp.StatusCode, payload))
	}

	var decoded auditResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAuditFailed.Code, appErrors.ErrAuditFailed.Status, "invalid audit response")
	}
	if decoded.Reports == nil {
		return nil, appErrors.Clone(appErrors.ErrAuditFailed, "invalid audit response: missing reports")
	}
	return decoded.Reports, nil
}

// failureMessage prefers the detail field of an error body. A structured
// detail, such as a validation error list, is surfaced as compact JSON.
func failureMessage(status int, payload []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && len(body.Detail) > 0 {
		var text string
		if err := json.Unmarshal(body.Detail, &text); err == nil {
			if text != "" {
				return text
			}
		} else if !bytes.Equal(body.Detail, []byte("null")) {
			var compact bytes.Buffer
			if json.Compact(&compact, body.Detail) == nil {
				return compact.String()
			}
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
