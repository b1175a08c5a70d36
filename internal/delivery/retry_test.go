package delivery

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWebhook scripts one outcome per attempt and records the chat id each
// attempt used.
type fakeWebhook struct {
	outcomes []error
	reply    *WebhookReply
	chatIDs  []string
	calls    int
}

func (f *fakeWebhook) Send(_ context.Context, req *Request) (*WebhookReply, error) {
	f.chatIDs = append(f.chatIDs, req.ChatID)
	idx := f.calls
	f.calls++
	if idx < len(f.outcomes) && f.outcomes[idx] != nil {
		return nil, f.outcomes[idx]
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &WebhookReply{Answer: "ok"}, nil
}

func setupController(transport *fakeWebhook) (*retryController, *[]time.Duration) {
	var sleeps []time.Duration
	c := newRetryController(transport)
	c.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	seq := 0
	c.newChatID = func() string {
		seq++
		return fmt.Sprintf("rotated-%d", seq)
	}
	return c, &sleeps
}

func TestRetryController_SuccessFirstAttempt(t *testing.T) {
	transport := &fakeWebhook{reply: &WebhookReply{Answer: "hello"}}
	c, sleeps := setupController(transport)

	reply, chatID, err := c.send(context.Background(), &Request{ChatID: "original"})

	require.NoError(t, err)
	assert.Equal(t, "hello", reply.Answer)
	assert.Equal(t, "original", chatID)
	assert.Equal(t, 1, transport.calls)
	assert.Empty(t, *sleeps)
}

func TestRetryController_BackoffSchedule(t *testing.T) {
	transport := &fakeWebhook{outcomes: []error{
		errors.New("boom"),
		errors.New("boom"),
		errors.New("boom"),
	}}
	c, sleeps := setupController(transport)

	_, _, err := c.send(context.Background(), &Request{ChatID: "original"})

	require.Error(t, err)
	// At most 3 attempts, sleeping 2s then 4s between them.
	assert.Equal(t, 3, transport.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *sleeps)
}

func TestRetryController_RotatesChatIDOnTimeout(t *testing.T) {
	transport := &fakeWebhook{outcomes: []error{
		errors.New("request timed out"),
		nil,
	}}
	c, _ := setupController(transport)

	reply, chatID, err := c.send(context.Background(), &Request{ChatID: "original"})

	require.NoError(t, err)
	require.NotNil(t, reply)
	require.Len(t, transport.chatIDs, 2)
	assert.Equal(t, "original", transport.chatIDs[0])
	assert.Equal(t, "rotated-1", transport.chatIDs[1])
	assert.Equal(t, "rotated-1", chatID)
}

func TestRetryController_RotatesChatIDOnDuplicate(t *testing.T) {
	transport := &fakeWebhook{outcomes: []error{
		errors.New("duplicate key value violates unique constraint"),
		nil,
	}}
	c, _ := setupController(transport)

	_, _, err := c.send(context.Background(), &Request{ChatID: "original"})

	require.NoError(t, err)
	require.Len(t, transport.chatIDs, 2)
	assert.NotEqual(t, transport.chatIDs[0], transport.chatIDs[1])
}

func TestRetryController_KeepsChatIDOnOtherErrors(t *testing.T) {
	transport := &fakeWebhook{outcomes: []error{
		errors.New("dial tcp: connection refused"),
		errors.New("read tcp: connection reset by peer"),
		nil,
	}}
	c, _ := setupController(transport)

	_, chatID, err := c.send(context.Background(), &Request{ChatID: "original"})

	require.NoError(t, err)
	assert.Equal(t, []string{"original", "original", "original"}, transport.chatIDs)
	assert.Equal(t, "original", chatID)
}

func TestRetryController_FinalErrorCarriesClassPrefix(t *testing.T) {
	tests := []struct {
		name   string
		cause  error
		prefix string
	}{
		{"empty response", fmt.Errorf("%w: empty response body", ErrMalformedResponse), "empty-response:"},
		{"timeout", errors.New("request timed out"), "timeout:"},
		{"network", errors.New("dial tcp: connection refused"), "network:"},
		{"connection reset", errors.New("connection reset by peer"), "connection-reset:"},
		{"unclassified", errors.New("weird failure"), "unclassified:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeWebhook{outcomes: []error{tt.cause, tt.cause, tt.cause}}
			c, _ := setupController(transport)

			_, _, err := c.send(context.Background(), &Request{ChatID: "x"})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.prefix)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestRetryController_ContextCancelledDuringBackoff(t *testing.T) {
	transport := &fakeWebhook{outcomes: []error{errors.New("boom"), errors.New("boom")}}
	c := newRetryController(transport)
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	_, _, err := c.send(context.Background(), &Request{ChatID: "x"})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, transport.calls)
}
