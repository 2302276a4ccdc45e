package consumer_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widgetmgr/consumer/consumer"
	"github.com/widgetmgr/consumer/widget"
)

func TestDispatch_RoutesByType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reqType widget.RequestType
		count   func(s *fakeSink) int
	}{
		{widget.TypeCreate, func(s *fakeSink) int { return len(s.creates) }},
		{widget.TypeDelete, func(s *fakeSink) int { return len(s.dels) }},
		{widget.TypeUpdate, func(s *fakeSink) int { return len(s.updates) }},
	}

	for _, tt := range tests {
		sink := &fakeSink{}
		router := consumer.NewRouter(sink, slog.New(slog.NewTextHandler(io.Discard, nil)))

		req := &widget.Request{Type: tt.reqType, RequestID: "r1", WidgetID: "w1"}

		require.NoError(t, router.Dispatch(context.Background(), req))
		assert.Equal(t, 1, tt.count(sink), "type %q", tt.reqType)
		assert.Equal(t, 1, sink.mutationCount(), "exactly one handler must run for type %q", tt.reqType)
	}
}

func TestDispatch_UnknownType(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	router := consumer.NewRouter(sink, slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := &widget.Request{Type: "archive", RequestID: "r1", WidgetID: "w1"}

	err := router.Dispatch(context.Background(), req)
	require.ErrorIs(t, err, consumer.ErrUnknownType)
	assert.Zero(t, sink.mutationCount(), "no handler may run for an unknown type")
}

func TestDispatch_MissingType(t *testing.T) {
	t.Parallel()

	sink := &fakeSink{}
	router := consumer.NewRouter(sink, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := router.Dispatch(context.Background(), &widget.Request{RequestID: "r1"})
	require.ErrorIs(t, err, consumer.ErrUnknownType)
	assert.Zero(t, sink.mutationCount())
}
