package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"travelcopilot/internal/config"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// ErrQuotaExceeded reports that the completion provider refused the call
// for quota or rate-limit reasons. Callers branch on this to produce the
// canned fallback reply instead of the generic apology.
var ErrQuotaExceeded = errors.New("completion quota exceeded")

// CompletionRequest is a single user-role prompt. No tool definitions and
// no multi-turn payload; conversation history is embedded in the prompt
// text by the caller.
type CompletionRequest struct {
	Model       string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Completer issues one-shot completions.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Client talks to the configured provider through eino chat models.
// Constructed provider clients are cached for the life of the process,
// keyed by provider and model.
type Client struct {
	cfg      *config.Config
	provider string

	mu     sync.Mutex
	models map[string]model.ToolCallingChatModel
}

func NewClient(cfg *config.Config, provider string) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if _, ok := cfg.Providers[provider]; !ok {
		return nil, fmt.Errorf("provider %s not configured", provider)
	}
	return &Client{
		cfg:      cfg,
		provider: provider,
		models:   make(map[string]model.ToolCallingChatModel),
	}, nil
}

// Complete sends the prompt and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	chatModel, err := c.chatModel(ctx, req.Model)
	if err != nil {
		return "", err
	}

	opts := []model.Option{}
	if req.Temperature > 0 {
		opts = append(opts, model.WithTemperature(req.Temperature))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}

	msg, err := chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(req.Prompt)}, opts...)
	if err != nil {
		if isQuotaError(err) {
			return "", ErrQuotaExceeded
		}
		return "", fmt.Errorf("generate completion: %w", err)
	}
	return msg.Content, nil
}

func (c *Client) chatModel(ctx context.Context, modelType string) (model.ToolCallingChatModel, error) {
	provCfg := c.cfg.Providers[c.provider]
	if modelType == "" {
		modelType = provCfg.Model
	}

	key := c.provider + "/" + modelType
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.models[key]; ok {
		return cached, nil
	}

	var (
		chatModel model.ToolCallingChatModel
		err       error
	)
	switch c.provider {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: provCfg.BaseURL,
			Model:   modelType,
			APIKey:  provCfg.APIKey,
		})
	case "gemini":
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: provCfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("new gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelType,
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    provCfg.APIKey,
			Model:     modelType,
			BaseURL:   baseURLPtr,
			MaxTokens: 3000,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", c.provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", c.provider, err)
	}

	c.models[key] = chatModel
	return chatModel, nil
}

func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "too many requests")
}
