package stream

import (
	"context"
	"log/slog"

	json "github.com/goccy/go-json"

	"github.com/gatewayz/chatstream/pkg/slogx"
	"github.com/gatewayz/chatstream/wire"
)

// Hook receives every non-Ignored event as it is applied to a turn.
// All methods must be implemented: when a new event variant is added,
// every hook has to make an explicit decision about it. Rendering layers
// implement this to paint deltas as they arrive.
type Hook interface {
	OnContentDelta(context.Context, wire.ContentDelta)

	OnReasoningDelta(context.Context, wire.ReasoningDelta)

	OnToolCall(context.Context, wire.ToolCall)

	OnToolResult(context.Context, wire.ToolResult)

	OnDone(context.Context, wire.Done)

	OnError(context.Context, error)
}

// LoggingHook returns a hook that logs every event through slog.
func LoggingHook() Hook {
	return loggingHook{}
}

type loggingHook struct{}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

func (loggingHook) OnContentDelta(ctx context.Context, ev wire.ContentDelta) {
	slog.DebugContext(ctx, "content delta", "event", mustJSON(ev))
}

func (loggingHook) OnReasoningDelta(ctx context.Context, ev wire.ReasoningDelta) {
	slog.DebugContext(ctx, "reasoning delta", "event", mustJSON(ev))
}

func (loggingHook) OnToolCall(ctx context.Context, ev wire.ToolCall) {
	slog.InfoContext(ctx, "tool call", "event", mustJSON(ev))
}

func (loggingHook) OnToolResult(ctx context.Context, ev wire.ToolResult) {
	slog.InfoContext(ctx, "tool result", "event", mustJSON(ev))
}

func (loggingHook) OnDone(ctx context.Context, ev wire.Done) {
	slog.DebugContext(ctx, "turn complete", "event", mustJSON(ev))
}

func (loggingHook) OnError(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "stream failed", slogx.Error(err))
}

// CompositeHook fans events out to multiple hooks, in order.
type CompositeHook []Hook

func NewCompositeHook(hooks ...Hook) Hook {
	return CompositeHook(hooks)
}

func (c CompositeHook) OnContentDelta(ctx context.Context, ev wire.ContentDelta) {
	for _, h := range c {
		h.OnContentDelta(ctx, ev)
	}
}

func (c CompositeHook) OnReasoningDelta(ctx context.Context, ev wire.ReasoningDelta) {
	for _, h := range c {
		h.OnReasoningDelta(ctx, ev)
	}
}

func (c CompositeHook) OnToolCall(ctx context.Context, ev wire.ToolCall) {
	for _, h := range c {
		h.OnToolCall(ctx, ev)
	}
}

func (c CompositeHook) OnToolResult(ctx context.Context, ev wire.ToolResult) {
	for _, h := range c {
		h.OnToolResult(ctx, ev)
	}
}

func (c CompositeHook) OnDone(ctx context.Context, ev wire.Done) {
	for _, h := range c {
		h.OnDone(ctx, ev)
	}
}

func (c CompositeHook) OnError(ctx context.Context, err error) {
	for _, h := range c {
		h.OnError(ctx, err)
	}
}
