package groq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama-3.3-70b-versatile"
	defaultTimeout = 2 * time.Minute
)

// Config holds the settings for a Groq client.
type Config struct {
	// APIKey authenticates against the Groq API.
	APIKey string
	// Model is the chat model used for completions.
	Model string
	// Temperature controls sampling randomness. Kept low for scoring
	// so repeated evaluations stay consistent.
	Temperature float64
	// MaxTokens bounds the generated output length.
	MaxTokens int
	// Timeout caps a single request. A hung call fails the current
	// artifact instead of hanging the whole batch.
	Timeout time.Duration
}

// Client wraps the OpenAI-compatible Groq API. A single client serves
// chat completions, streaming completions and whisper transcription.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewClient creates a Groq client for the OpenAI-compatible endpoint.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("groq api key is required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = defaultBaseURL
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// GenerateContent sends the prompt as a single user message and returns
// the first completion choice.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("groq chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("groq api returned no completion choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// StreamCompletion streams a completion for the given system and user
// messages, calling onDelta for each fragment, and returns the full text.
func (c *Client) StreamCompletion(ctx context.Context, system, prompt string, onDelta func(string)) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system = strings.TrimSpace(system); system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      true,
	})
	if err != nil {
		return "", fmt.Errorf("groq chat completion stream: %w", err)
	}
	defer stream.Close()

	var builder strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("receiving stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		builder.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	return builder.String(), nil
}

// Transcribe converts the audio file at the given path to text using the
// whisper transcription endpoint.
func (c *Client) Transcribe(ctx context.Context, audioPath, model, language string) (string, error) {
	if strings.TrimSpace(audioPath) == "" {
		return "", errors.New("audio path is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		return "", errors.New("transcription model is required")
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
		Language: language,
	})
	if err != nil {
		return "", fmt.Errorf("groq transcription: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// Model returns the configured chat model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}
