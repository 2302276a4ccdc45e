package consumer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/widgetmgr/consumer/widget"
)

// Default poller intervals.
const (
	defaultPollInterval = 100 * time.Millisecond
	defaultErrorBackoff = 1 * time.Second
)

// Source lists, fetches, and deletes request messages from a queue-like
// store. Delete must be idempotent.
type Source interface {
	// NextKey returns the key of the oldest pending message, or ok=false
	// when the queue is empty.
	NextKey(ctx context.Context) (key string, ok bool, err error)

	// Fetch returns the raw body of the message with the given key.
	Fetch(ctx context.Context, key string) ([]byte, error)

	// Delete removes the message with the given key, acknowledging it.
	Delete(ctx context.Context, key string) error
}

// Sink applies widget change requests against a storage backend.
//
// Create writes the widget unconditionally (last write wins). Delete is
// idempotent: deleting an absent widget logs a warning and returns nil.
// Update is an intentional stub that logs a warning and mutates nothing.
type Sink interface {
	Create(ctx context.Context, req *widget.Request) error
	Delete(ctx context.Context, req *widget.Request) error
	Update(ctx context.Context, req *widget.Request) error
}

// Config configures a [Poller]. Source and Sink are required; everything
// else has a sensible default.
type Config struct {
	Source Source
	Sink   Sink

	// PollInterval is the idle sleep between polls when the queue is empty.
	// Default: 100ms.
	PollInterval time.Duration

	// ErrorBackoff is the sleep applied after a backend or unclassified
	// processing error. Default: 1s.
	ErrorBackoff time.Duration

	Logger *slog.Logger
}

// Poller drives the consume loop: fetch the next message, route it to the
// sink, delete it on completion. Use [New] to create one and [Poller.Run]
// to start it. A Poller processes one message at a time and is not safe for
// concurrent Run calls.
type Poller struct {
	source       Source
	router       *Router
	pollInterval time.Duration
	errorBackoff time.Duration
	logger       *slog.Logger
}

// New creates a Poller from cfg. It returns an error if Source or Sink is
// missing.
func New(cfg Config) (*Poller, error) {
	if cfg.Source == nil {
		return nil, errors.New("source cannot be nil")
	}

	if cfg.Sink == nil {
		return nil, errors.New("sink cannot be nil")
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	errorBackoff := cfg.ErrorBackoff
	if errorBackoff <= 0 {
		errorBackoff = defaultErrorBackoff
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		source:       cfg.Source,
		router:       NewRouter(cfg.Sink, logger),
		pollInterval: pollInterval,
		errorBackoff: errorBackoff,
		logger:       logger,
	}, nil
}

// Run polls the source until ctx is cancelled, at which point it returns
// ctx.Err(). After a message is processed successfully the next poll happens
// immediately, so a backlog is drained without idle sleeps.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started",
		"poll_interval", p.pollInterval,
		"error_backoff", p.errorBackoff,
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return ctx.Err()
		default:
		}

		pollsTotal.Inc()

		key, ok, err := p.source.NextKey(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("poller stopped")
				return ctx.Err()
			}

			p.logger.Error("failed to poll queue", "error", err)
			messagesTotal.WithLabelValues(outcomeBackendError).Inc()

			if !p.sleep(ctx, p.errorBackoff) {
				return ctx.Err()
			}

			continue
		}

		if !ok {
			if !p.sleep(ctx, p.pollInterval) {
				return ctx.Err()
			}

			continue
		}

		p.processMessage(ctx, key)
	}
}

// processMessage handles one message end to end: fetch, parse, dispatch,
// acknowledge. Failures never escape; they are classified and absorbed here
// so the loop always makes progress.
func (p *Poller) processMessage(ctx context.Context, key string) {
	logger := p.logger.With("message_key", key)

	body, err := p.source.Fetch(ctx, key)
	if err != nil {
		// Treat fetch failures like any other backend error: keep the
		// message and retry after a backoff.
		logger.Error("failed to fetch message", "error", err)
		messagesTotal.WithLabelValues(outcomeBackendError).Inc()
		p.sleep(ctx, p.errorBackoff)

		return
	}

	req, err := widget.ParseRequest(body)
	if err != nil {
		logger.Error("poison message, removing without retry", "error", err)
		messagesTotal.WithLabelValues(outcomePoison).Inc()
		p.deleteMessage(ctx, logger, key)

		return
	}

	logger = logger.With("request_id", req.RequestID, "widget_id", req.WidgetID)

	err = p.router.Dispatch(ctx, req)

	switch {
	case err == nil:
		messagesTotal.WithLabelValues(outcomeProcessed).Inc()
		p.deleteMessage(ctx, logger, key)

	case errors.Is(err, ErrUnknownType):
		// Already logged by the router. The request is handled, just
		// unsupported, so the message is still acknowledged.
		messagesTotal.WithLabelValues(outcomeUnknownType).Inc()
		p.deleteMessage(ctx, logger, key)

	case isBackendError(err):
		logger.Error("backend error, message retained for retry", "error", err)
		messagesTotal.WithLabelValues(outcomeBackendError).Inc()
		p.sleep(ctx, p.errorBackoff)

	default:
		// Unclassified failure. Deleting here risks losing the message,
		// but retaining it would reprocess a request that will likely fail
		// the same way forever.
		logger.Error("unexpected error processing message, removing to avoid livelock", "error", err)
		messagesTotal.WithLabelValues(outcomeError).Inc()
		p.deleteMessage(ctx, logger, key)
		p.sleep(ctx, p.errorBackoff)
	}
}

// deleteMessage acknowledges a message. A failed delete is logged and left
// alone: the message stays visible and will be reprocessed, which the
// at-least-once contract already allows.
func (p *Poller) deleteMessage(ctx context.Context, logger *slog.Logger, key string) {
	if err := p.source.Delete(ctx, key); err != nil {
		logger.Error("failed to delete message", "error", err)
		return
	}

	logger.Debug("message deleted")
}

// sleep pauses for d or until ctx is cancelled. It reports whether the full
// duration elapsed.
func (p *Poller) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
