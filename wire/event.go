package wire

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	contentDeltaJSON   = []byte(`{"type":"content_delta"}`)
	reasoningDeltaJSON = []byte(`{"type":"reasoning_delta"}`)
	toolCallJSON       = []byte(`{"type":"tool_call"}`)
	toolResultJSON     = []byte(`{"type":"tool_result"}`)
	doneJSON           = []byte(`{"type":"done"}`)
	ignoredJSON        = []byte(`{"type":"ignored"}`)
)

// Event is the decoded form of a single protocol line. It is a sealed
// union: the set of variants is fixed, and every variant carries exactly
// one tag, so consumers can switch over the concrete types exhaustively.
type Event interface {
	event()
}

// ContentDelta carries an increment of assistant-visible text.
type ContentDelta struct {
	Text string `json:"text"`
}

func (ContentDelta) event() {}

// ReasoningDelta carries an increment of model reasoning text, kept
// separate from the answer content.
type ReasoningDelta struct {
	Text string `json:"text"`
}

func (ReasoningDelta) event() {}

// ToolCall is a model-initiated request to invoke an external capability.
// It is only ever constructed with a non-empty ID and Name; Decode yields
// Ignored for anything less.
type ToolCall struct {
	ID        string
	Name      string
	Arguments gjson.Result
}

func (ToolCall) event() {}

// ToolResult is the outcome of a tool invocation, correlated to its call
// by ToolCallID. Result and Err are optional: a zero-value Result
// (Result.Exists() == false) and an empty Err mean the field was absent
// on the wire, and both round-trip as absent.
type ToolResult struct {
	ToolCallID string
	Name       string
	Success    bool
	Result     gjson.Result
	Err        string
}

func (ToolResult) event() {}

// Done signals turn completion. Reason is empty for the stream-level
// [DONE] marker and carries the finish_reason value when a provider
// completes a turn through the delta envelope instead. Both trigger the
// same finalization downstream.
type Done struct {
	Reason string `json:"reason,omitempty"`
}

func (Done) event() {}

// Ignored marks input that was recognized but carries nothing actionable:
// comment lines, malformed JSON, tool events missing required fields.
type Ignored struct{}

func (Ignored) event() {}

// MarshalJSON implements custom JSON marshaling for ContentDelta.
func (c ContentDelta) MarshalJSON() ([]byte, error) {
	return sjson.SetBytes(contentDeltaJSON, "text", c.Text)
}

// MarshalJSON implements custom JSON marshaling for ReasoningDelta.
func (r ReasoningDelta) MarshalJSON() ([]byte, error) {
	return sjson.SetBytes(reasoningDeltaJSON, "text", r.Text)
}

// MarshalJSON implements custom JSON marshaling for ToolCall.
func (t ToolCall) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolCallJSON, "tool_call_id", t.ID)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "name", t.Name)
	if err != nil {
		return nil, err
	}

	args := t.Arguments.Raw
	if args == "" {
		args = "{}"
	}
	return sjson.SetRawBytes(result, "arguments", []byte(args))
}

// MarshalJSON implements custom JSON marshaling for ToolResult. Absent
// result and error fields stay absent in the output.
func (t ToolResult) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolResultJSON, "tool_call_id", t.ToolCallID)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "name", t.Name)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "success", t.Success)
	if err != nil {
		return nil, err
	}

	if t.Result.Exists() {
		result, err = sjson.SetRawBytes(result, "result", []byte(t.Result.Raw))
		if err != nil {
			return nil, err
		}
	}

	if t.Err != "" {
		result, err = sjson.SetBytes(result, "error", t.Err)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// MarshalJSON implements custom JSON marshaling for Done.
func (d Done) MarshalJSON() ([]byte, error) {
	if d.Reason == "" {
		return doneJSON, nil
	}
	return sjson.SetBytes(doneJSON, "reason", d.Reason)
}

// MarshalJSON implements custom JSON marshaling for Ignored.
func (Ignored) MarshalJSON() ([]byte, error) {
	return ignoredJSON, nil
}

// UnmarshalEvent reverses the MarshalJSON encodings above, dispatching on
// the type discriminator. It is used when events are replayed from a log
// or handed between processes; live stream decoding goes through Decode.
func UnmarshalEvent(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	doc := gjson.ParseBytes(data)
	switch kind := doc.Get("type").String(); kind {
	case "content_delta":
		return ContentDelta{Text: doc.Get("text").String()}, nil
	case "reasoning_delta":
		return ReasoningDelta{Text: doc.Get("text").String()}, nil
	case "tool_call":
		id := doc.Get("tool_call_id").String()
		name := doc.Get("name").String()
		if id == "" || name == "" {
			return nil, fmt.Errorf("tool_call requires tool_call_id and name")
		}
		args := doc.Get("arguments")
		if !args.Exists() {
			args = gjson.Parse("{}")
		}
		return ToolCall{ID: id, Name: name, Arguments: args}, nil
	case "tool_result":
		id := doc.Get("tool_call_id").String()
		name := doc.Get("name").String()
		if id == "" || name == "" {
			return nil, fmt.Errorf("tool_result requires tool_call_id and name")
		}
		return ToolResult{
			ToolCallID: id,
			Name:       name,
			Success:    doc.Get("success").Bool(),
			Result:     doc.Get("result"),
			Err:        doc.Get("error").String(),
		}, nil
	case "done":
		return Done{Reason: doc.Get("reason").String()}, nil
	case "ignored":
		return Ignored{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", kind)
	}
}
