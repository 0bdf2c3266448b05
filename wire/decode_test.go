package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_IgnoresNonEventLines(t *testing.T) {
	for _, line := range []string{
		"",
		": keep-alive",
		"event: message",
		"random text",
	} {
		events := Decode(line)
		require.Len(t, events, 1, "line %q", line)
		assert.IsType(t, Ignored{}, events[0], "line %q", line)
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	events := Decode(`data: {"choices":[{"delta":{"content":"hi"`)
	require.Len(t, events, 1)
	assert.IsType(t, Ignored{}, events[0])
}

func TestDecode_DoneMarker(t *testing.T) {
	events := Decode("data: [DONE]")
	require.Len(t, events, 1)
	assert.Equal(t, Done{}, events[0])
}

func TestDecode_ContentDelta(t *testing.T) {
	events := Decode(`data: {"choices":[{"delta":{"content":"hello"}}]}`)
	require.Len(t, events, 1)
	assert.Equal(t, ContentDelta{Text: "hello"}, events[0])
}

func TestDecode_ReasoningDelta(t *testing.T) {
	events := Decode(`data: {"choices":[{"delta":{"reasoning_content":"thinking..."}}]}`)
	require.Len(t, events, 1)
	assert.Equal(t, ReasoningDelta{Text: "thinking..."}, events[0])
}

func TestDecode_ContentAndReasoningInOneLine(t *testing.T) {
	events := Decode(`data: {"choices":[{"delta":{"content":"answer","reasoning_content":"because"}}]}`)
	require.Len(t, events, 2)
	assert.Equal(t, ContentDelta{Text: "answer"}, events[0])
	assert.Equal(t, ReasoningDelta{Text: "because"}, events[1])
}

func TestDecode_FinishReason(t *testing.T) {
	events := Decode(`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`)
	require.Len(t, events, 1)
	assert.Equal(t, Done{Reason: "stop"}, events[0])
}

func TestDecode_NullFinishReason(t *testing.T) {
	events := Decode(`data: {"choices":[{"delta":{"content":"x"},"finish_reason":null}]}`)
	require.Len(t, events, 1)
	assert.Equal(t, ContentDelta{Text: "x"}, events[0])
}

func TestDecode_DeltaWithFinishReason(t *testing.T) {
	events := Decode(`data: {"choices":[{"delta":{"content":"bye"},"finish_reason":"stop"}]}`)
	require.Len(t, events, 2)
	assert.Equal(t, ContentDelta{Text: "bye"}, events[0])
	assert.Equal(t, Done{Reason: "stop"}, events[1])
}

func TestDecode_ToolCall(t *testing.T) {
	events := Decode(`data: {"type":"tool_call","tool_call_id":"call-123","name":"web_search","arguments":{"query":"test query"}}`)
	require.Len(t, events, 1)

	call, ok := events[0].(ToolCall)
	require.True(t, ok)
	assert.Equal(t, "call-123", call.ID)
	assert.Equal(t, "web_search", call.Name)
	assert.Equal(t, "test query", call.Arguments.Get("query").String())
}

func TestDecode_ToolCallMissingRequiredFields(t *testing.T) {
	for _, line := range []string{
		`data: {"type":"tool_call","arguments":{}}`,
		`data: {"type":"tool_call","tool_call_id":"","name":"web_search"}`,
		`data: {"type":"tool_call","tool_call_id":"call-1","name":""}`,
	} {
		events := Decode(line)
		require.Len(t, events, 1, "line %q", line)
		assert.IsType(t, Ignored{}, events[0], "line %q", line)
	}
}

func TestDecode_ToolCallDefaultsArguments(t *testing.T) {
	events := Decode(`data: {"type":"tool_call","tool_call_id":"call-9","name":"web_search"}`)
	require.Len(t, events, 1)

	call, ok := events[0].(ToolCall)
	require.True(t, ok)
	assert.True(t, call.Arguments.Exists())
	assert.Equal(t, "{}", call.Arguments.Raw)
}

func TestDecode_ToolResultSuccess(t *testing.T) {
	events := Decode(`data: {"type":"tool_result","tool_call_id":"call-123","name":"web_search","success":true,"result":{"hits":3}}`)
	require.Len(t, events, 1)

	res, ok := events[0].(ToolResult)
	require.True(t, ok)
	assert.Equal(t, "call-123", res.ToolCallID)
	assert.Equal(t, "web_search", res.Name)
	assert.True(t, res.Success)
	assert.Equal(t, int64(3), res.Result.Get("hits").Int())
	assert.Empty(t, res.Err)
}

func TestDecode_ToolResultError(t *testing.T) {
	events := Decode(`data: {"type":"tool_result","tool_call_id":"call-123","name":"web_search","success":false,"error":"API rate limit exceeded"}`)
	require.Len(t, events, 1)

	res, ok := events[0].(ToolResult)
	require.True(t, ok)
	assert.False(t, res.Success)
	assert.Equal(t, "API rate limit exceeded", res.Err)
	assert.False(t, res.Result.Exists(), "absent result must stay absent")
}

func TestDecode_ToolResultCoercesSuccess(t *testing.T) {
	// success is coerced to a strict boolean, absent means false
	events := Decode(`data: {"type":"tool_result","tool_call_id":"call-5","name":"calc"}`)
	require.Len(t, events, 1)

	res, ok := events[0].(ToolResult)
	require.True(t, ok)
	assert.False(t, res.Success)
}

func TestDecode_ToolResultMissingRequiredFields(t *testing.T) {
	events := Decode(`data: {"type":"tool_result","success":true}`)
	require.Len(t, events, 1)
	assert.IsType(t, Ignored{}, events[0])
}

func TestDecode_EmptyDelta(t *testing.T) {
	events := Decode(`data: {"choices":[{"delta":{}}]}`)
	require.Len(t, events, 1)
	assert.IsType(t, Ignored{}, events[0])
}

func TestDecode_IsPure(t *testing.T) {
	line := `data: {"choices":[{"delta":{"content":"same"}}]}`
	assert.Equal(t, Decode(line), Decode(line))
}

// Decoding lines emitted by the buffer must match decoding the whole text,
// however the transport happened to chunk it.
func TestDecode_ChunkSplitInvariance(t *testing.T) {
	input := `data: {"choices":[{"delta":{"reasoning_content":"hmm"}}]}` + "\n" +
		`data: {"type":"tool_result","tool_call_id":"call-1","name":"web_search","success":true,"result":"ok"}` + "\n" +
		"data: [DONE]\n"

	decodeAll := func(lines []string) []Event {
		var out []Event
		for _, line := range lines {
			out = append(out, Decode(line)...)
		}
		return out
	}

	var whole LineBuffer
	want := decodeAll(whole.Feed(input))

	for _, size := range []int{1, 2, 3, 7, 16, len(input)} {
		var buf LineBuffer
		var lines []string
		for start := 0; start < len(input); start += size {
			end := min(start+size, len(input))
			lines = append(lines, buf.Feed(input[start:end])...)
		}
		require.Equal(t, want, decodeAll(lines), "chunk size %d", size)
	}
}
