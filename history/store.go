// Package history holds the persisted shape of chat messages and the
// stores that keep them. A message is only ever written after a turn has
// fully completed; partial turns never reach a store.
package history

import (
	"context"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Roles a persisted message can carry.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one finalized chat message. Reasoning is a pointer because
// the persistence service distinguishes "absent" from "empty": an
// empty-string reasoning must be normalized to absent before it is
// written.
type Message struct {
	SessionID  uuid.UUID       `json:"session_id"`
	Role       string          `json:"role"`
	Content    string          `json:"content"`
	Model      string          `json:"model,omitempty"`
	Reasoning  *string         `json:"reasoning,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	Tools      []ToolExchange  `json:"tools,omitempty"`
	Timestamp  strfmt.DateTime `json:"timestamp,omitempty"`
}

// ToolExchange is the persisted record of one tool call and its outcome,
// committed together with the finalized message. Success is a pointer so
// "no result arrived" stays distinct from "failed".
type ToolExchange struct {
	ToolCallID string          `json:"tool_call_id"`
	Name       string          `json:"name,omitempty"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Success    *bool           `json:"success,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// NormalizeReasoning maps empty reasoning to absent and preserves
// anything else verbatim.
func NormalizeReasoning(reasoning string) *string {
	if reasoning == "" {
		return nil
	}
	return swag.String(reasoning)
}

// Store persists finalized messages and serves back per-session threads.
type Store interface {
	Append(ctx context.Context, msg Message) error
	Thread(ctx context.Context, sessionID uuid.UUID) ([]Message, error)
}
