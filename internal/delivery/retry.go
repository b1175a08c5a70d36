package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

const (
	maxWebhookAttempts = 3
	initialBackoff     = 2 * time.Second
)

// webhookSender is the slice of WebhookTransport the retry controller needs.
// Narrowing it makes the controller trivially testable with a fake.
type webhookSender interface {
	Send(ctx context.Context, req *Request) (*WebhookReply, error)
}

// retryController wraps the webhook tier with a bounded retry loop and
// conditional idempotency-key rotation.
//
// The schedule is fixed: up to 3 attempts, sleeping 2s after the first
// failure and 4s after the second. When a failure classifies as timeout or
// duplicate, the next attempt runs under a freshly generated chat id; the
// server may have received and partially processed the timed-out request, so
// reusing the id risks a false "already exists" response. The cost is that
// the server may process the same logical message twice; nothing in this
// system guarantees exactly-once delivery.
type retryController struct {
	transport webhookSender
	sleep     func(ctx context.Context, d time.Duration) error
	newChatID func() string
}

func newRetryController(transport webhookSender) *retryController {
	return &retryController{
		transport: transport,
		sleep:     sleepCtx,
		newChatID: shortuuid.New,
	}
}

// send runs the retry loop. On success it returns the reply together with the
// chat id the successful attempt used, which becomes the stable message id
// seed. After all attempts fail it returns the last failure prefixed with
// its classification.
func (c *retryController) send(ctx context.Context, req *Request) (*WebhookReply, string, error) {
	chatID := req.ChatID
	var lastErr error

	for attempt := 1; attempt <= maxWebhookAttempts; attempt++ {
		attemptReq := *req
		attemptReq.ChatID = chatID

		reply, err := c.transport.Send(ctx, &attemptReq)
		if err == nil {
			return reply, chatID, nil
		}
		lastErr = err

		class := Classify(err)
		slog.Warn("Webhook attempt failed",
			"session_id", req.SessionID,
			"attempt", attempt,
			"class", class.String(),
			"error", err,
		)

		if attempt == maxWebhookAttempts {
			break
		}
		if class.RotatesChatID() {
			chatID = c.newChatID()
			slog.Debug("Rotated chat id for next attempt", "session_id", req.SessionID, "attempt", attempt+1)
		}
		// 2s after attempt 1, 4s after attempt 2.
		backoff := initialBackoff << (attempt - 1)
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, chatID, err
		}
	}

	return nil, chatID, fmt.Errorf("%s: %w", Classify(lastErr), lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
