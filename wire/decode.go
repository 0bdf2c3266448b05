package wire

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	dataPrefix = "data:"

	// DoneMarker is the literal payload a gateway sends on its final line.
	DoneMarker = "[DONE]"
)

var emptyObject = gjson.Parse("{}")

// DataLine frames a bare payload the way the transport does. Callers that
// already hold a decoded-from-elsewhere payload use it to reuse Decode.
func DataLine(payload string) string {
	return dataPrefix + " " + payload
}

// Decode converts one complete line into its semantic events. It is pure
// and stateless: identical input always yields identical output, and it
// never panics or returns an error. Lines without the data prefix,
// unparseable payloads, and tool events missing required fields all
// decode to a single Ignored.
//
// A delta line carrying both content and reasoning yields both events,
// content first. A non-null finish_reason yields Done in addition to any
// deltas on the same line; it and the [DONE] marker are independent
// completion triggers.
func Decode(line string) []Event {
	payload, found := strings.CutPrefix(line, dataPrefix)
	if !found {
		return []Event{Ignored{}}
	}
	payload = strings.TrimSpace(payload)

	if payload == DoneMarker {
		return []Event{Done{}}
	}

	if !gjson.Valid(payload) {
		return []Event{Ignored{}}
	}
	doc := gjson.Parse(payload)

	switch doc.Get("type").String() {
	case "tool_call":
		return []Event{decodeToolCall(doc)}
	case "tool_result":
		return []Event{decodeToolResult(doc)}
	}

	var events []Event
	if content := doc.Get("choices.0.delta.content"); content.String() != "" {
		events = append(events, ContentDelta{Text: content.String()})
	}
	if reasoning := doc.Get("choices.0.delta.reasoning_content"); reasoning.String() != "" {
		events = append(events, ReasoningDelta{Text: reasoning.String()})
	}
	if finish := doc.Get("choices.0.finish_reason"); finish.Exists() && finish.Type != gjson.Null {
		events = append(events, Done{Reason: finish.String()})
	}

	if len(events) == 0 {
		return []Event{Ignored{}}
	}
	return events
}

func decodeToolCall(doc gjson.Result) Event {
	id := doc.Get("tool_call_id").String()
	name := doc.Get("name").String()
	if id == "" || name == "" {
		return Ignored{}
	}

	args := doc.Get("arguments")
	if !args.Exists() {
		args = emptyObject
	}
	return ToolCall{ID: id, Name: name, Arguments: args}
}

func decodeToolResult(doc gjson.Result) Event {
	id := doc.Get("tool_call_id").String()
	name := doc.Get("name").String()
	if id == "" || name == "" {
		return Ignored{}
	}

	return ToolResult{
		ToolCallID: id,
		Name:       name,
		Success:    doc.Get("success").Bool(),
		Result:     doc.Get("result"),
		Err:        doc.Get("error").String(),
	}
}
