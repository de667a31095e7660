// Package llm wraps the chat model behind a two-method interface so the
// agents never see SDK types and tests can swap in scripted replies.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn of a chat prompt.
type Message struct {
	Role    string
	Content string
}

// Client is the surface the agents program against.
type Client interface {
	// Chat sends the messages and returns the full reply.
	Chat(ctx context.Context, messages []Message) (string, error)
	// ChatStream sends the messages and delivers the reply incrementally.
	// onChunk is called from the calling goroutine, in order.
	ChatStream(ctx context.Context, messages []Message, onChunk func(string)) error
}

// Config selects the endpoint and model for an OpenAI-compatible server.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// maxReplyTokens leaves room for a long order list in a single reply.
const maxReplyTokens = 32000

// OpenAI talks to any OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	api   *openai.Client
	model string
}

func NewOpenAI(cfg Config) *OpenAI {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return &OpenAI{api: openai.NewClientWithConfig(c), model: cfg.Model}
}

func (o *OpenAI) request(messages []Message) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return openai.ChatCompletionRequest{
		Model:           o.model,
		Messages:        msgs,
		MaxTokens:       maxReplyTokens,
		ReasoningEffort: "minimal",
	}
}

func (o *OpenAI) Chat(ctx context.Context, messages []Message) (string, error) {
	resp, err := o.api.CreateChatCompletion(ctx, o.request(messages))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) ChatStream(ctx context.Context, messages []Message, onChunk func(string)) error {
	stream, err := o.api.CreateChatCompletionStream(ctx, o.request(messages))
	if err != nil {
		return fmt.Errorf("chat stream: %w", err)
	}
	defer stream.Close()
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("chat stream recv: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			onChunk(delta)
		}
	}
}
