package client

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/gatewayz/chatstream/history"
	"github.com/gatewayz/chatstream/pkg/jsonx"
	"github.com/gatewayz/chatstream/stream"
	"github.com/gatewayz/chatstream/tool"
	"github.com/gatewayz/chatstream/wire"
)

func (c *Client) normalizedCompletion(ctx context.Context, params CompletionParams, cons *stream.Consumer) (history.Message, error) {
	// The proxy authenticates the session itself; the SDK still insists
	// on a key being present.
	key := c.APIKey
	if key == "" {
		key = "unused"
	}

	oc := openai.NewClient(
		option.WithBaseURL(c.BaseURL+"/v1"),
		option.WithAPIKey(key),
		option.WithQuery("session_id", params.SessionID.String()),
		option.WithHTTPClient(c.HTTP),
	)

	oaiParams := openai.ChatCompletionNewParams{
		Messages: openai.F(threadToOpenAI(params.Thread)),
		Model:    openai.F(params.Model.ID),
		N:        openai.Int(1),
	}
	tools, err := toolsToOpenAI(params.Tools)
	if err != nil {
		return history.Message{}, err
	}
	if len(tools) > 0 {
		oaiParams.Tools = openai.F(tools)
	}

	if err := cons.Start(); err != nil {
		return history.Message{}, err
	}

	strm := oc.Chat.Completions.NewStreaming(ctx, oaiParams)
	defer strm.Close()

	if err := strm.Err(); err != nil {
		return history.Message{}, cons.Fail(ctx, err)
	}

	for strm.Next() {
		chunk := strm.Current()
		// Same envelope, same decoder: round-tripping the SDK chunk
		// through the wire decoder keeps both dialects on one state
		// machine.
		for _, ev := range wire.Decode(wire.DataLine(chunk.JSON.RawJSON())) {
			cons.Apply(ctx, ev)
		}
	}
	if err := strm.Err(); err != nil {
		return history.Message{}, cons.Fail(ctx, err)
	}
	if err := ctx.Err(); err != nil {
		return history.Message{}, cons.Fail(ctx, err)
	}

	return cons.Finish(ctx)
}

func threadToOpenAI(thread []history.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(thread))
	for _, msg := range thread {
		switch msg.Role {
		case history.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case history.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		case history.RoleTool:
			out = append(out, openai.ToolMessage(msg.ToolCallID, msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func toolsToOpenAI(defs []tool.Definition) ([]openai.ChatCompletionToolParam, error) {
	if len(defs) == 0 {
		return nil, nil
	}

	out := make([]openai.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		parameters, err := jsonx.ToDynamic(def.Schema())
		if err != nil {
			return nil, fmt.Errorf("failed to convert schema for tool %s: %w", def.Name, err)
		}

		fn := openai.FunctionDefinitionParam{
			Name:       openai.String(def.Name),
			Parameters: openai.F(shared.FunctionParameters(parameters)),
		}
		if def.Description != "" {
			fn.Description = openai.String(def.Description)
		}

		out[i] = openai.ChatCompletionToolParam{
			Type:     openai.F(openai.ChatCompletionToolTypeFunction),
			Function: openai.F(fn),
		}
	}
	return out, nil
}
