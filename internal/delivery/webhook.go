package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const webhookTimeout = 60 * time.Second

// webhookPayload is the wire format of the tenant-configured response
// workflow.
type webhookPayload struct {
	SessionID     string `json:"sessionId"`
	ChatID        string `json:"chatId"`
	UserID        string `json:"userId,omitempty"`
	Action        string `json:"action"`
	ChatInput     string `json:"chatInput"`
	GroupID       string `json:"groupId,omitempty"`
	TopK          int    `json:"topK,omitempty"`
	VectorStoreID string `json:"vectorStoreId,omitempty"`
}

// webhookResponse is the expected reply: a bare JSON object, or a
// single-element array of the same shape.
type webhookResponse struct {
	Answer          string `json:"answer"`
	CitationTitle   string `json:"citationTitle"`
	CitationContent string `json:"citationContent"`
}

// WebhookReply is the raw result of one webhook call before citation parsing.
type WebhookReply struct {
	Answer          string
	CitationTitle   string
	CitationContent string
}

// WebhookTransport sends a single request to an external webhook URL and
// decodes its one-shot JSON reply. It has no retry logic of its own; the
// retry controller wraps it.
type WebhookTransport struct {
	client *http.Client
	url    string
}

// NewWebhookTransport creates a transport for the given webhook URL.
func NewWebhookTransport(url string) *WebhookTransport {
	return &WebhookTransport{
		client: &http.Client{Timeout: webhookTimeout},
		url:    url,
	}
}

// URL returns the endpoint this transport posts to.
func (t *WebhookTransport) URL() string {
	return t.url
}

// Send posts the request and decodes the reply. Unreachable endpoints wrap
// ErrTransportUnreachable; non-2xx statuses wrap ErrTransportRejected; empty
// or undecodable bodies and replies without an answer wrap
// ErrMalformedResponse.
func (t *WebhookTransport) Send(ctx context.Context, req *Request) (*WebhookReply, error) {
	payload := webhookPayload{
		SessionID:     req.SessionID,
		ChatID:        req.ChatID,
		UserID:        req.UserID,
		Action:        "sendMessage",
		ChatInput:     req.Content,
		GroupID:       req.GroupID,
		TopK:          req.TopK,
		VectorStoreID: req.VectorStoreID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not marshal webhook payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("could not create webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: webhook returned status %d: %s", ErrTransportRejected, resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read webhook response: %v", ErrTransportUnreachable, err)
	}

	decoded, err := decodeWebhookBody(respBody)
	if err != nil {
		return nil, err
	}

	return &WebhookReply{
		Answer:          decoded.Answer,
		CitationTitle:   decoded.CitationTitle,
		CitationContent: decoded.CitationContent,
	}, nil
}

func decodeWebhookBody(body []byte) (*webhookResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty response body", ErrMalformedResponse)
	}

	var single webhookResponse
	if err := json.Unmarshal(trimmed, &single); err == nil && single.Answer != "" {
		return &single, nil
	}

	var list []webhookResponse
	if err := json.Unmarshal(trimmed, &list); err == nil && len(list) > 0 && list[0].Answer != "" {
		return &list[0], nil
	}

	return nil, fmt.Errorf("%w: response lacks an answer field: %s", ErrMalformedResponse, truncateForLog(string(trimmed), 200))
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
