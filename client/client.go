// Package client issues chat turns against the gateway backend. Each turn
// is routed once, before the network call, to one of two endpoints that
// differ only by response dialect: the flexible endpoint is hand-parsed
// through the wire decoder, the normalized endpoint is consumed through
// the SDK client. Both feed the same per-turn stream consumer.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fogfish/opts"
	"github.com/google/uuid"

	"github.com/gatewayz/chatstream/catalog"
	"github.com/gatewayz/chatstream/history"
	"github.com/gatewayz/chatstream/pkg/slogx"
	"github.com/gatewayz/chatstream/route"
	"github.com/gatewayz/chatstream/stream"
	"github.com/gatewayz/chatstream/tool"
)

// Client talks to one gateway backend. It is safe for concurrent use;
// every turn gets its own consumer and state.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Store   history.Store
	Hook    stream.Hook
}

// Option configures a Client during construction.
type Option = opts.Option[Client]

var (
	// WithBaseURL sets the backend base URL. Required.
	WithBaseURL = opts.ForName[Client, string]("BaseURL")

	// WithAPIKey sets the bearer token sent on every request.
	WithAPIKey = opts.ForName[Client, string]("APIKey")

	// WithHTTP replaces the transport used for the flexible dialect and
	// the message store.
	WithHTTP = opts.ForName[Client, *http.Client]("HTTP")

	// WithStore sets where finalized messages are persisted.
	WithStore = opts.ForName[Client, history.Store]("Store")

	// WithHook sets the default per-event hook for turns that don't
	// bring their own.
	WithHook = opts.ForName[Client, stream.Hook]("Hook")
)

func New(options ...Option) (*Client, error) {
	c := &Client{HTTP: http.DefaultClient}
	if err := opts.Apply(c, options); err != nil {
		return nil, err
	}
	if c.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c, nil
}

// CompletionParams describes one chat turn.
type CompletionParams struct {
	// SessionID groups the turn into a conversation; a zero value gets a
	// fresh session.
	SessionID uuid.UUID

	// Model is the catalog entry to request. Its id and source gateway
	// drive the routing decision.
	Model catalog.Ref

	// Thread is the prior message history sent with the request.
	Thread []history.Message

	// Tools are advertised to the backend for server-side execution.
	Tools []tool.Definition

	// Hook overrides the client's default hook for this turn.
	Hook stream.Hook

	// Prevents unkeyed literals.
	_ struct{}
}

// ChatCompletion runs one turn to completion: route, request, consume,
// persist. The returned message is the finalized assistant message;
// nothing is persisted on failure.
func (c *Client) ChatCompletion(ctx context.Context, params CompletionParams) (history.Message, error) {
	if params.Model.ID == "" {
		return history.Message{}, fmt.Errorf("model id is required")
	}
	if params.SessionID == uuid.Nil {
		params.SessionID = uuid.New()
	}

	decision := route.Select(params.Model.ID, params.Model.SourceGateway)
	slog.DebugContext(ctx, "selected backend dialect",
		slogx.Session(params.SessionID),
		slogx.Dialect(decision.Dialect),
		slog.String("model", params.Model.ID),
	)

	hook := params.Hook
	if hook == nil {
		hook = c.Hook
	}
	cons := stream.NewConsumer(params.SessionID, params.Model.ID, hook)

	var msg history.Message
	var err error
	switch decision.Dialect {
	case route.FlexibleCompletions:
		msg, err = c.flexibleCompletion(ctx, params, cons)
	default:
		msg, err = c.normalizedCompletion(ctx, params, cons)
	}
	if err != nil {
		return history.Message{}, err
	}

	if c.Store != nil {
		if err := c.Store.Append(ctx, msg); err != nil {
			return history.Message{}, fmt.Errorf("failed to persist message: %w", err)
		}
	}
	return msg, nil
}

// StatusError is a non-success HTTP response from the backend. The caller
// decides whether to retry with a fresh consumer; the client never
// retries mid-stream.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned %s", e.Status)
	}
	return fmt.Sprintf("backend returned %s: %s", e.Status, e.Body)
}

// Retryable reports whether a fresh attempt is worthwhile.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
