package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/gatewayz/chatstream/wire"
)

func TestTurnState_AccumulatesDeltas(t *testing.T) {
	s := NewTurnState()

	s.Apply(wire.ContentDelta{Text: "hel"})
	s.Apply(wire.ReasoningDelta{Text: "think"})
	s.Apply(wire.ContentDelta{Text: "lo"})
	s.Apply(wire.ReasoningDelta{Text: "ing"})

	assert.Equal(t, "hello", s.Content())
	assert.Equal(t, "thinking", s.Reasoning())
	assert.False(t, s.Done())
}

func TestTurnState_PairsToolCallAndResult(t *testing.T) {
	s := NewTurnState()

	s.Apply(wire.ToolCall{ID: "call-1", Name: "web_search", Arguments: gjson.Parse(`{"q":"go"}`)})
	s.Apply(wire.ToolResult{ToolCallID: "call-1", Name: "web_search", Success: true, Result: gjson.Parse(`"ok"`)})

	tools := s.Tools()
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].Call)
	require.NotNil(t, tools[0].Result)
	assert.Equal(t, "call-1", tools[0].Call.ID)
	assert.True(t, tools[0].Result.Success)
}

func TestTurnState_ResultBeforeCall(t *testing.T) {
	s := NewTurnState()

	s.Apply(wire.ToolResult{ToolCallID: "call-2", Name: "calc", Success: false, Err: "boom"})

	tools := s.Tools()
	require.Len(t, tools, 1)
	assert.Nil(t, tools[0].Call)
	require.NotNil(t, tools[0].Result)
	assert.Equal(t, "boom", tools[0].Result.Err)

	// The matching call may still show up later.
	s.Apply(wire.ToolCall{ID: "call-2", Name: "calc"})
	tools = s.Tools()
	require.Len(t, tools, 1)
	require.NotNil(t, tools[0].Call)
}

func TestTurnState_ToolOrderIsInsertionOrder(t *testing.T) {
	s := NewTurnState()

	s.Apply(wire.ToolCall{ID: "b", Name: "second"})
	s.Apply(wire.ToolCall{ID: "a", Name: "first-by-id-but-second-by-arrival"})

	tools := s.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, "b", tools[0].Call.ID)
	assert.Equal(t, "a", tools[1].Call.ID)
}

func TestTurnState_ToolCallOverwritesSlot(t *testing.T) {
	s := NewTurnState()

	s.Apply(wire.ToolCall{ID: "call-1", Name: "old"})
	s.Apply(wire.ToolCall{ID: "call-1", Name: "new"})

	tools := s.Tools()
	require.Len(t, tools, 1)
	assert.Equal(t, "new", tools[0].Call.Name)
}

func TestTurnState_DropsEventsAfterDone(t *testing.T) {
	s := NewTurnState()

	s.Apply(wire.ContentDelta{Text: "before"})
	s.Apply(wire.Done{})
	s.Apply(wire.ContentDelta{Text: "after"})
	s.Apply(wire.ToolCall{ID: "late", Name: "late"})

	assert.True(t, s.Done())
	assert.Equal(t, "before", s.Content())
	assert.Empty(t, s.Tools())
}
