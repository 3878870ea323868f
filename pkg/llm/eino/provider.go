package eino

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"tigaraksa-chat-be/pkg/llm"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	goopenai "github.com/meguminnnnnnnnn/go-openai"
)

const (
	providerName = "eino"
	maxErrorBody = 2048
)

type Config struct {
	APIKey    string
	BaseURL   string
	ModelName string
	Timeout   time.Duration
}

// Provider streams completions through the eino OpenAI chat model.
type Provider struct {
	chatModel *openaimodel.ChatModel
}

// Ensure Provider implements StreamingProvider
var _ llm.StreamingProvider = &Provider{}

func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	cm, err := openaimodel.NewChatModel(ctx, &openaimodel.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.ModelName,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create eino chat model: %w", err)
	}
	return &Provider{chatModel: cm}, nil
}

func (p *Provider) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.StreamReader, error) {
	options := llm.ApplyOptions(opts...)

	messages := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case "system":
			messages = append(messages, schema.SystemMessage(msg.Content))
		case "assistant":
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(msg.Content))
		}
	}

	var modelOpts []model.Option
	if options.Temperature != nil {
		modelOpts = append(modelOpts, model.WithTemperature(float32(*options.Temperature)))
	}
	if options.TopP != nil {
		modelOpts = append(modelOpts, model.WithTopP(float32(*options.TopP)))
	}
	if options.MaxTokens > 0 {
		modelOpts = append(modelOpts, model.WithMaxTokens(options.MaxTokens))
	}
	if options.Model != "" {
		modelOpts = append(modelOpts, model.WithModel(options.Model))
	}

	sr, err := p.chatModel.Stream(ctx, messages, modelOpts...)
	if err != nil {
		return nil, fmt.Errorf("eino stream: %w", statusError(err))
	}
	return &streamReader{sr: sr}, nil
}

type streamReader struct {
	sr *schema.StreamReader[*schema.Message]
}

func (s *streamReader) Recv() (string, error) {
	for {
		msg, err := s.sr.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", statusError(err)
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		return msg.Content, nil
	}
}

func (s *streamReader) Close() error {
	s.sr.Close()
	return nil
}

// statusError lifts a non-2xx answer out of the go-openai client errors eino
// returns, so callers see the same *llm.StatusError as the other providers.
// Other errors pass through.
func statusError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &llm.StatusError{Provider: providerName, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		body := reqErr.Body
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &llm.StatusError{Provider: providerName, StatusCode: reqErr.HTTPStatusCode, Body: string(body)}
	}
	return err
}
