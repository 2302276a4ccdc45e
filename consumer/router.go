package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/widgetmgr/consumer/widget"
)

// Handler processes a single parsed request.
type Handler func(ctx context.Context, req *widget.Request) error

// Router dispatches parsed requests to the handler registered for their
// type. Dispatch is a pure map lookup; there is no default handler.
type Router struct {
	handlers map[widget.RequestType]Handler
	logger   *slog.Logger
}

// NewRouter builds a Router wiring the three request types to the given
// sink's operations.
func NewRouter(sink Sink, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		handlers: map[widget.RequestType]Handler{
			widget.TypeCreate: sink.Create,
			widget.TypeDelete: sink.Delete,
			widget.TypeUpdate: sink.Update,
		},
		logger: logger,
	}
}

// Dispatch routes req to the handler for its type. An unknown or missing
// type is logged as an error and returns [ErrUnknownType] without invoking
// any handler; it is not a retryable failure.
func (r *Router) Dispatch(ctx context.Context, req *widget.Request) error {
	handler, ok := r.handlers[req.Type]
	if !ok {
		r.logger.Error("unknown request type",
			"type", string(req.Type),
			"request_id", req.RequestID,
			"widget_id", req.WidgetID,
		)

		return fmt.Errorf("%w: %q", ErrUnknownType, req.Type)
	}

	return handler(ctx, req)
}
