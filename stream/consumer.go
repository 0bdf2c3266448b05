// Package stream turns a sequence of transport chunks into one finalized
// assistant message. A Consumer owns the whole turn: line reassembly,
// decoding, ordered state accumulation, hook notification, and the
// completed/failed lifecycle.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/gatewayz/chatstream/history"
	"github.com/gatewayz/chatstream/wire"
)

// Phase is the consumer lifecycle. Completed and Failed are absorbing:
// once reached, the consumer accepts no further input.
type Phase int

const (
	Idle Phase = iota
	Streaming
	Completed
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Streaming:
		return "streaming"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Consumer drives one turn: it feeds transport chunks through a
// LineBuffer, decodes each complete line, and applies the events to its
// TurnState in strict arrival order. A Consumer is single-use and owned
// by one goroutine; concurrent turns each get their own instance.
type Consumer struct {
	sessionID uuid.UUID
	model     string
	hook      Hook

	buf   wire.LineBuffer
	state *TurnState
	phase Phase
}

func NewConsumer(sessionID uuid.UUID, model string, hook Hook) *Consumer {
	if hook == nil {
		hook = LoggingHook()
	}
	return &Consumer{
		sessionID: sessionID,
		model:     model,
		hook:      hook,
		state:     NewTurnState(),
	}
}

// Phase returns the current lifecycle phase.
func (c *Consumer) Phase() Phase {
	return c.phase
}

// Done reports whether a completion signal has been applied.
func (c *Consumer) Done() bool {
	return c.state.Done()
}

// Start moves the consumer from Idle to Streaming. A consumer cannot be
// restarted; callers retrying a failed turn build a fresh instance.
func (c *Consumer) Start() error {
	if c.phase != Idle {
		return fmt.Errorf("consumer already started: phase is %s", c.phase)
	}
	c.phase = Streaming
	return nil
}

// Feed pushes one transport chunk through the line buffer and applies
// every event decoded from the completed lines.
func (c *Consumer) Feed(ctx context.Context, chunk string) {
	for _, line := range c.buf.Feed(chunk) {
		for _, ev := range wire.Decode(line) {
			c.Apply(ctx, ev)
		}
	}
}

// Apply folds a single decoded event into the turn state and notifies the
// hook. Events arriving after completion, or outside Streaming, are
// dropped.
func (c *Consumer) Apply(ctx context.Context, ev wire.Event) {
	if c.phase != Streaming || c.state.Done() {
		return
	}

	c.state.Apply(ev)

	switch ev := ev.(type) {
	case wire.ContentDelta:
		c.hook.OnContentDelta(ctx, ev)
	case wire.ReasoningDelta:
		c.hook.OnReasoningDelta(ctx, ev)
	case wire.ToolCall:
		c.hook.OnToolCall(ctx, ev)
	case wire.ToolResult:
		c.hook.OnToolResult(ctx, ev)
	case wire.Done:
		c.hook.OnDone(ctx, ev)
	case wire.Ignored:
	}
}

// Run consumes the transport until completion. It reads chunks of
// whatever size the transport delivers, finalizes on an explicit Done or
// on end-of-stream, and fails on read errors or cancellation with the
// partial state discarded.
func (c *Consumer) Run(ctx context.Context, r io.Reader) (history.Message, error) {
	if err := c.Start(); err != nil {
		return history.Message{}, err
	}

	buf := make([]byte, 4096)
	for !c.state.Done() {
		if err := ctx.Err(); err != nil {
			return history.Message{}, c.Fail(ctx, err)
		}

		n, err := r.Read(buf)
		if n > 0 {
			c.Feed(ctx, string(buf[:n]))
		}
		if errors.Is(err, io.EOF) {
			// Transport ended without an explicit Done; finalize anyway.
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return history.Message{}, c.Fail(ctx, err)
		}
	}

	return c.Finish(ctx)
}

// Finish transitions to Completed and converts the accumulated state into
// the message to persist. Empty reasoning is normalized to absent.
func (c *Consumer) Finish(ctx context.Context) (history.Message, error) {
	if c.phase != Streaming {
		return history.Message{}, fmt.Errorf("cannot finalize consumer: phase is %s", c.phase)
	}

	// A final line without a trailing newline is still a complete line
	// once the transport has ended.
	if pending := c.buf.Pending(); pending != "" {
		for _, ev := range wire.Decode(pending) {
			c.Apply(ctx, ev)
		}
	}

	c.phase = Completed

	msg := history.Message{
		SessionID: c.sessionID,
		Role:      history.RoleAssistant,
		Content:   c.state.Content(),
		Model:     c.model,
		Reasoning: history.NormalizeReasoning(c.state.Reasoning()),
		Timestamp: strfmt.DateTime(time.Now()),
	}
	for _, ex := range c.state.Tools() {
		msg.Tools = append(msg.Tools, exchangeRecord(ex))
	}
	return msg, nil
}

// Fail transitions to Failed, surfaces err through the hook, and returns
// it. The partial state is discarded, never committed.
func (c *Consumer) Fail(ctx context.Context, err error) error {
	if c.phase == Completed || c.phase == Failed {
		return err
	}
	c.phase = Failed
	c.hook.OnError(ctx, err)
	return err
}

func exchangeRecord(ex ToolExchange) history.ToolExchange {
	var rec history.ToolExchange
	if ex.Call != nil {
		rec.ToolCallID = ex.Call.ID
		rec.Name = ex.Call.Name
		if ex.Call.Arguments.Exists() {
			rec.Arguments = []byte(ex.Call.Arguments.Raw)
		}
	}
	if ex.Result != nil {
		if rec.ToolCallID == "" {
			rec.ToolCallID = ex.Result.ToolCallID
		}
		if rec.Name == "" {
			rec.Name = ex.Result.Name
		}
		success := ex.Result.Success
		rec.Success = &success
		if ex.Result.Result.Exists() {
			rec.Result = []byte(ex.Result.Result.Raw)
		}
		rec.Error = ex.Result.Err
	}
	return rec
}
