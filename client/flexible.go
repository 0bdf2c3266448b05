package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/sjson"

	"github.com/gatewayz/chatstream/history"
	"github.com/gatewayz/chatstream/stream"
)

// flexiblePath is the hand-parsed endpoint for gateways whose envelope
// the SDK client cannot read.
const flexiblePath = "/v1/chat/stream"

func (c *Client) flexibleCompletion(ctx context.Context, params CompletionParams, cons *stream.Consumer) (history.Message, error) {
	body, err := requestBody(params)
	if err != nil {
		return history.Message{}, err
	}

	endpoint := c.BaseURL + flexiblePath + "?" + url.Values{"session_id": {params.SessionID.String()}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return history.Message{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return history.Message{}, cons.Fail(ctx, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return history.Message{}, cons.Fail(ctx, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(excerpt)),
		})
	}

	return cons.Run(ctx, resp.Body)
}

// threadMessage is the minimal message shape the backend accepts in a
// request body.
type threadMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// requestBody builds the JSON body shared by both dialects' endpoints:
// model, message history, streaming flag, and any advertised tools.
func requestBody(params CompletionParams) ([]byte, error) {
	body := []byte(`{"stream":true}`)

	body, err := sjson.SetBytes(body, "model", params.Model.ID)
	if err != nil {
		return nil, err
	}

	msgs := make([]threadMessage, len(params.Thread))
	for i, m := range params.Thread {
		msgs[i] = threadMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
	}
	rawMsgs, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thread: %w", err)
	}
	body, err = sjson.SetRawBytes(body, "messages", rawMsgs)
	if err != nil {
		return nil, err
	}

	if len(params.Tools) == 0 {
		return body, nil
	}

	type toolFunction struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Parameters  any    `json:"parameters"`
	}
	type toolEntry struct {
		Type     string       `json:"type"`
		Function toolFunction `json:"function"`
	}

	tools := make([]toolEntry, len(params.Tools))
	for i, def := range params.Tools {
		tools[i] = toolEntry{
			Type: "function",
			Function: toolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Schema(),
			},
		}
	}
	rawTools, err := json.Marshal(tools)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tools: %w", err)
	}
	return sjson.SetRawBytes(body, "tools", rawTools)
}
