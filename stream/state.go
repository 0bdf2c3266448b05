package stream

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gatewayz/chatstream/wire"
)

// ToolExchange pairs a tool call with its result, correlated by the
// shared tool-call id. Either side may be nil: results can arrive before,
// after, or without a matching call.
type ToolExchange struct {
	Call   *wire.ToolCall
	Result *wire.ToolResult
}

// TurnState accumulates the decoded events of one in-flight turn. It is
// owned exclusively by a single Consumer and is never shared across
// turns. Tool slots keep insertion order so the finalized message can
// replay exchanges in arrival order.
type TurnState struct {
	content   strings.Builder
	reasoning strings.Builder
	tools     *orderedmap.OrderedMap[string, *ToolExchange]
	done      bool
}

func NewTurnState() *TurnState {
	return &TurnState{
		tools: orderedmap.New[string, *ToolExchange](),
	}
}

// Apply folds one decoded event into the state, in arrival order. Events
// after completion are dropped.
func (s *TurnState) Apply(ev wire.Event) {
	if s.done {
		return
	}

	switch ev := ev.(type) {
	case wire.ContentDelta:
		s.content.WriteString(ev.Text)
	case wire.ReasoningDelta:
		s.reasoning.WriteString(ev.Text)
	case wire.ToolCall:
		call := ev
		s.slot(ev.ID).Call = &call
	case wire.ToolResult:
		result := ev
		s.slot(ev.ToolCallID).Result = &result
	case wire.Done:
		s.done = true
	case wire.Ignored:
	}
}

func (s *TurnState) slot(id string) *ToolExchange {
	if ex, ok := s.tools.Get(id); ok {
		return ex
	}
	ex := &ToolExchange{}
	s.tools.Set(id, ex)
	return ex
}

// Done reports whether a completion signal has been applied.
func (s *TurnState) Done() bool {
	return s.done
}

// Content returns the accumulated assistant text.
func (s *TurnState) Content() string {
	return s.content.String()
}

// Reasoning returns the accumulated reasoning text.
func (s *TurnState) Reasoning() string {
	return s.reasoning.String()
}

// Tools returns the tool exchanges in insertion order.
func (s *TurnState) Tools() []ToolExchange {
	out := make([]ToolExchange, 0, s.tools.Len())
	for pair := s.tools.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, *pair.Value)
	}
	return out
}
