package delivery

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chatdesk/internal/model"
)

const (
	backendTimeout      = 60 * time.Second
	backendProbeTimeout = 2 * time.Second
	sseDataPrefix       = "data: "
	sseDoneSentinel     = "[DONE]"
)

// BackendTransport talks to the primary same-origin API. When reachable it is
// authoritative: the orchestrator uses it exclusively and lets its errors
// propagate instead of falling through to lower tiers.
type BackendTransport struct {
	client      *http.Client
	probeClient *http.Client
	baseURL     string
}

// NewBackendTransport creates a transport for the primary API at baseURL.
// An empty baseURL yields a transport whose probe always fails.
func NewBackendTransport(baseURL string) *BackendTransport {
	return &BackendTransport{
		client:      &http.Client{Timeout: backendTimeout},
		probeClient: &http.Client{Timeout: backendProbeTimeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// Probe is a lightweight capability check, not a full health check: is a URL
// configured, and does the endpoint answer at all.
func (t *BackendTransport) Probe(ctx context.Context) bool {
	if t.baseURL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := t.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type backendSendPayload struct {
	Content string `json:"content"`
	Stream  bool   `json:"stream"`
}

type backendReply struct {
	Reply     string           `json:"reply"`
	MessageID string           `json:"messageId"`
	Citations []model.Citation `json:"citations"`
}

// backendStreamEvent is one decoded SSE frame from the streaming endpoint.
type backendStreamEvent struct {
	Delta     string           `json:"delta,omitempty"`
	MessageID string           `json:"messageId,omitempty"`
	Citations []model.Citation `json:"citations,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Send delivers through the non-streaming endpoint and returns the full
// reply.
func (t *BackendTransport) Send(ctx context.Context, req *Request) (*Reply, error) {
	body, err := t.post(ctx, req, false)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read backend response: %v", ErrTransportUnreachable, err)
	}
	var decoded backendReply
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: backend response is not valid JSON: %v", ErrMalformedResponse, err)
	}
	return &Reply{
		Answer:    decoded.Reply,
		MessageID: decoded.MessageID,
		Citations: decoded.Citations,
	}, nil
}

// SendStream delivers through the streaming endpoint and forwards decoded SSE
// frames as delivery events: `data: <json>` lines become deltas until the
// `data: [DONE]` sentinel. The terminal frame before the sentinel carries the
// stable message id and citations.
func (t *BackendTransport) SendStream(ctx context.Context, req *Request, ch chan<- Event) error {
	defer close(ch)

	body, err := t.post(ctx, req, true)
	if err != nil {
		emit(ctx, ch, Event{Kind: EventError, Message: err.Error()})
		return err
	}
	defer body.Close()

	var final Event
	sawFinal := false

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, sseDataPrefix) {
			continue
		}
		data := strings.TrimPrefix(line, sseDataPrefix)
		if data == sseDoneSentinel {
			break
		}

		var ev backendStreamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			emit(ctx, ch, Event{Kind: EventError, Message: "failed to decode stream event"})
			return fmt.Errorf("%w: undecodable stream event: %v", ErrMalformedResponse, err)
		}
		switch {
		case ev.Error != "":
			emit(ctx, ch, Event{Kind: EventError, Message: ev.Error})
			return fmt.Errorf("%w: %s", ErrTransportRejected, ev.Error)
		case ev.MessageID != "":
			final = Event{Kind: EventFinal, MessageID: ev.MessageID, Citations: ev.Citations}
			sawFinal = true
		case ev.Delta != "":
			if !emit(ctx, ch, Event{Kind: EventDelta, Text: ev.Delta}) {
				return ctx.Err()
			}
		}
	}
	if err := scanner.Err(); err != nil {
		emit(ctx, ch, Event{Kind: EventError, Message: err.Error()})
		return fmt.Errorf("%w: stream read failed: %v", ErrTransportUnreachable, err)
	}

	if !sawFinal {
		emit(ctx, ch, Event{Kind: EventError, Message: "stream ended without a terminal event"})
		return fmt.Errorf("%w: stream ended without a terminal event", ErrMalformedResponse)
	}
	emit(ctx, ch, final)
	return nil
}

func (t *BackendTransport) post(ctx context.Context, req *Request, stream bool) (io.ReadCloser, error) {
	payload, err := json.Marshal(backendSendPayload{Content: req.Content, Stream: stream})
	if err != nil {
		return nil, fmt.Errorf("could not marshal backend payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/sessions/%s/messages", t.baseURL, req.SessionID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create backend request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: backend returned status %d: %s", ErrTransportRejected, resp.StatusCode, truncateForLog(string(raw), 200))
	}
	return resp.Body, nil
}

// emit sends an event unless the context is already cancelled. It reports
// whether the event was delivered.
func emit(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
