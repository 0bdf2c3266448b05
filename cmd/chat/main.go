// Command chat is a terminal chat session against a gateway backend. It
// streams deltas to the console as they arrive and re-renders the final
// message as markdown once the turn completes.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/k0kubun/pp/v3"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"

	"github.com/gatewayz/chatstream/catalog"
	"github.com/gatewayz/chatstream/client"
	"github.com/gatewayz/chatstream/history"
	"github.com/gatewayz/chatstream/pkg/slogx"
	"github.com/gatewayz/chatstream/wire"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()

	level := slog.LevelWarn
	if os.Getenv("CHAT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: level}),
	))
}

var glam *glamour.TermRenderer

func init() {
	var err error
	glam, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		panic(err)
	}
}

// consoleHook prints stream events as they arrive. Reasoning is dimmed so
// it reads as scratch work, tool activity is labeled in yellow.
type consoleHook struct {
	faint     *color.Color
	toolLabel *color.Color
}

func newConsoleHook() *consoleHook {
	return &consoleHook{
		faint:     color.New(color.Faint),
		toolLabel: color.New(color.FgYellow),
	}
}

func (h *consoleHook) OnContentDelta(_ context.Context, ev wire.ContentDelta) {
	fmt.Print(ev.Text)
}

func (h *consoleHook) OnReasoningDelta(_ context.Context, ev wire.ReasoningDelta) {
	h.faint.Print(ev.Text)
}

func (h *consoleHook) OnToolCall(_ context.Context, ev wire.ToolCall) {
	fmt.Printf("\n%s %s %s\n", h.toolLabel.Sprint("⚙"), ev.Name, ev.Arguments.Raw)
}

func (h *consoleHook) OnToolResult(_ context.Context, ev wire.ToolResult) {
	if !ev.Success {
		fmt.Printf("%s %s failed: %s\n", h.toolLabel.Sprint("⚙"), ev.Name, ev.Err)
		return
	}
	fmt.Printf("%s %s done\n", h.toolLabel.Sprint("⚙"), ev.Name)
}

func (h *consoleHook) OnDone(context.Context, wire.Done) {
	fmt.Println()
}

func (h *consoleHook) OnError(_ context.Context, err error) {
	color.Red("\nstream error: %v", err)
}

func main() {
	ctx := context.Background()

	baseURL := os.Getenv("GATEWAY_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	models := catalog.New()
	models.Register(catalog.Ref{ID: "deepseek/deepseek-r1", SourceGateway: "deepseek", DisplayName: "DeepSeek R1"})
	models.Register(catalog.Ref{ID: "accounts/fireworks/models/llama-v3p1-70b-instruct", SourceGateway: "fireworks", DisplayName: "Llama 3.1 70B"})
	models.Register(catalog.Ref{ID: "openai/gpt-4o", SourceGateway: "openrouter", DisplayName: "GPT-4o"})

	modelID := os.Getenv("GATEWAY_MODEL")
	if modelID == "" {
		modelID = "deepseek/deepseek-r1"
	}
	model, ok := models.Lookup(modelID)
	if !ok {
		slog.Error("unknown model", slog.String("model", modelID))
		os.Exit(1)
	}

	store := history.NewMemStore()
	cl, err := client.New(
		client.WithBaseURL(baseURL),
		client.WithAPIKey(os.Getenv("GATEWAY_API_KEY")),
		client.WithStore(store),
		client.WithHook(newConsoleHook()),
	)
	if err != nil {
		slog.Error("failed to build client", slogx.Error(err))
		os.Exit(1)
	}

	session := uuid.New()
	fmt.Printf("chatting with %s (session %s), type exit to quit\n", model.DisplayName, session)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s: ", color.CyanString("User"))
		if !scanner.Scan() {
			fmt.Println("Exiting...")
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			break
		}

		userMsg := history.Message{
			SessionID: session,
			Role:      history.RoleUser,
			Content:   input,
			Timestamp: strfmt.DateTime(time.Now()),
		}
		if err := store.Append(ctx, userMsg); err != nil {
			slog.Error("failed to record prompt", slogx.Error(err))
			continue
		}
		thread, err := store.Thread(ctx, session)
		if err != nil {
			slog.Error("failed to load thread", slogx.Error(err))
			continue
		}

		msg, err := cl.ChatCompletion(ctx, client.CompletionParams{
			SessionID: session,
			Model:     model,
			Thread:    thread,
		})
		if err != nil {
			slog.Error("turn failed", slogx.Session(session), slogx.Error(err))
			continue
		}

		if rendered, err := glam.Render(msg.Content); err == nil {
			fmt.Print(rendered)
		}
		if os.Getenv("CHAT_DEBUG") != "" {
			pp.Println(msg)
		}
	}
}
