package delivery

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"chatdesk/internal/citation"
)

const defaultWordDelay = 50 * time.Millisecond

// backendSender abstracts the primary tier for testing.
type backendSender interface {
	Probe(ctx context.Context) bool
	Send(ctx context.Context, req *Request) (*Reply, error)
	SendStream(ctx context.Context, req *Request, ch chan<- Event) error
}

// simulationSender abstracts the offline tier for testing.
type simulationSender interface {
	Send(ctx context.Context, req *Request) (*Reply, error)
}

// Options configures a Pipeline.
type Options struct {
	// DefaultWebhookURL is the universal fallback used when a request does
	// not carry a tenant-configured webhook URL.
	DefaultWebhookURL string
	// SimulationEnabled gates the offline tier. When false, exhausting the
	// webhook tier surfaces an UnavailableError instead.
	SimulationEnabled bool
	// WordDelay paces the fabricated word-by-word stream. Zero means the
	// 50ms default; negative disables the delay (used by tests).
	WordDelay time.Duration
	// DefaultTopK and DefaultVectorStoreID fill retrieval parameters the
	// request leaves unset.
	DefaultTopK          int
	DefaultVectorStoreID string
}

// Pipeline delivers a user message through an ordered list of transport
// tiers and yields a normalized event stream.
//
// Tier order is strict: the primary backend is used exclusively whenever its
// capability probe passes; its errors propagate and no lower tier is
// attempted. The webhook tier runs under the retry controller. The simulator
// runs only when simulation is enabled and every network tier is out.
type Pipeline struct {
	backend    backendSender
	newWebhook func(url string) webhookSender
	simulator  simulationSender
	opts       Options
	wordDelay  time.Duration
	// retrySleep overrides the retry controller's backoff sleep in tests.
	retrySleep func(ctx context.Context, d time.Duration) error
}

// NewPipeline assembles a pipeline from its tiers. backend and simulator may
// be nil when the corresponding tier is not deployed.
func NewPipeline(backend *BackendTransport, simulator *Simulator, opts Options) *Pipeline {
	p := &Pipeline{
		newWebhook: func(url string) webhookSender { return NewWebhookTransport(url) },
		opts:       opts,
		wordDelay:  opts.WordDelay,
	}
	if p.wordDelay == 0 {
		p.wordDelay = defaultWordDelay
	}
	if p.wordDelay < 0 {
		p.wordDelay = 0
	}
	if backend != nil {
		p.backend = backend
	}
	if simulator != nil {
		p.simulator = simulator
	}
	return p
}

// TenantConfig carries the per-group overrides resolved from tenant settings.
type TenantConfig struct {
	// WebhookURL overrides the universal default when non-empty.
	WebhookURL string
	// SimulationEnabled widens (never narrows) the pipeline-level toggle.
	SimulationEnabled bool
}

// Send delivers req and returns the event channel. The channel yields zero or
// more delta events followed by exactly one final event; an error event, if
// any, is always last and replaces the final one. The channel is closed when
// the delivery reaches a terminal state.
func (p *Pipeline) Send(ctx context.Context, req *Request, tenant TenantConfig) <-chan Event {
	ch := make(chan Event)
	go p.run(ctx, req, tenant, ch)
	return ch
}

func (p *Pipeline) run(ctx context.Context, req *Request, tenant TenantConfig, ch chan<- Event) {
	if req.ChatID == "" {
		req.ChatID = shortuuid.New()
	}
	if req.TopK == 0 {
		req.TopK = p.opts.DefaultTopK
	}
	if req.VectorStoreID == "" {
		req.VectorStoreID = p.opts.DefaultVectorStoreID
	}

	// Tier 1: primary backend, exclusive when reachable.
	if p.backend != nil && p.backend.Probe(ctx) {
		slog.Debug("Delivering through primary backend", "session_id", req.SessionID, "stream", req.Stream)
		if req.Stream {
			// SendStream owns the channel and closes it.
			_ = p.backend.SendStream(ctx, req, ch)
			return
		}
		defer close(ch)
		reply, err := p.backend.Send(ctx, req)
		if err != nil {
			emit(ctx, ch, Event{Kind: EventError, Message: err.Error()})
			return
		}
		p.fabricateStream(ctx, ch, reply)
		return
	}

	defer close(ch)

	// Tier 2: tenant webhook under the retry controller.
	webhookURL := tenant.WebhookURL
	if webhookURL == "" {
		webhookURL = p.opts.DefaultWebhookURL
	}

	var lastErr error = ErrTransportUnreachable
	if webhookURL != "" {
		controller := newRetryController(p.newWebhook(webhookURL))
		if p.retrySleep != nil {
			controller.sleep = p.retrySleep
		}
		reply, usedChatID, err := controller.send(ctx, req)
		if err == nil {
			p.fabricateStream(ctx, ch, &Reply{
				Answer:    reply.Answer,
				MessageID: usedChatID,
				Citations: citation.Parse(usedChatID, reply.CitationTitle, reply.CitationContent),
			})
			return
		}
		if errors.Is(err, context.Canceled) {
			emit(ctx, ch, Event{Kind: EventError, Message: err.Error()})
			return
		}
		lastErr = err
	} else {
		slog.Warn("No webhook URL configured", "session_id", req.SessionID, "group_id", req.GroupID)
	}

	// Tier 3: offline simulation, only when explicitly enabled.
	if p.simulator != nil && (p.opts.SimulationEnabled || tenant.SimulationEnabled) {
		slog.Info("Falling back to simulated delivery", "session_id", req.SessionID)
		reply, _ := p.simulator.Send(ctx, req)
		p.fabricateStream(ctx, ch, reply)
		return
	}

	unavailable := &UnavailableError{Cause: lastErr}
	emit(ctx, ch, Event{Kind: EventError, Message: unavailable.Error()})
}

// fabricateStream turns a one-shot reply into the canonical incremental
// sequence: one delta per whitespace-separated word, paced by the configured
// delay, then a single final event with the stable message id and citations.
func (p *Pipeline) fabricateStream(ctx context.Context, ch chan<- Event, reply *Reply) {
	words := strings.Fields(reply.Answer)
	for i, word := range words {
		text := word
		if i < len(words)-1 {
			text += " "
		}
		if !emit(ctx, ch, Event{Kind: EventDelta, Text: text}) {
			return
		}
		if p.wordDelay > 0 && i < len(words)-1 {
			if err := sleepCtx(ctx, p.wordDelay); err != nil {
				return
			}
		}
	}
	emit(ctx, ch, Event{Kind: EventFinal, MessageID: reply.MessageID, Citations: reply.Citations})
}
