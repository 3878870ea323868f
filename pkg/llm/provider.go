package llm

import (
	"context"
	"errors"
	"fmt"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

func SystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = &temp
	}
}

func WithTopP(topP float64) Option {
	return func(o *Options) {
		o.TopP = &topP
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func ApplyOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// StreamReader yields content fragments in arrival order. Recv returns io.EOF
// once the upstream sends its end marker. Close aborts the upstream request.
type StreamReader interface {
	Recv() (string, error)
	Close() error
}

// StreamingProvider defines the contract for any streaming chat backend.
type StreamingProvider interface {
	ChatStream(ctx context.Context, history []Message, options ...Option) (StreamReader, error)
}

// StatusError is returned when the completion endpoint answers with a non-2xx status.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: status %d, body: %s", e.Provider, e.StatusCode, e.Body)
}

// ErrMissingCredential is returned by the factory when a hosted provider has no API key.
var ErrMissingCredential = errors.New("llm provider credential is not configured")
