package llm

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/thehillman215/vectorbid/internal/apierrors"
)

// OpenAIProvider implements Provider over the Chat Completions API,
// constraining output to a JSON object via ResponseFormat so the caller
// never has to coax a schema out of free text. Retry-on-429 follows the
// same bounded backoff ecoker-launchpad's OpenAIProvider.Send uses.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider builds a Provider for model using apiKey, labeled
// name for logging/metrics (e.g. "primary" or "secondary").
func NewOpenAIProvider(apiKey, model, name string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
		name:   name,
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

// Complete sends one chat completion request constrained to JSON output,
// making up to 3 attempts in total on HTTP 429 with linear backoff.
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", apierrors.NewUpstream("llm.Complete", "empty response from "+p.name, nil)
			}
			text := strings.TrimSpace(resp.Choices[0].Message.Content)
			if text == "" {
				return "", apierrors.NewUpstream("llm.Complete", "blank completion from "+p.name, nil)
			}
			return text, nil
		}
		lastErr = err
		if !isRateLimited(err) {
			return "", apierrors.NewUpstream("llm.Complete", p.name+" request failed", err)
		}
		select {
		case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
		case <-ctx.Done():
			return "", apierrors.NewTimeout("llm.Complete", "context canceled during "+p.name+" retry")
		}
	}
	return "", apierrors.NewUpstream("llm.Complete", p.name+" rate limited after 3 attempts", lastErr)
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if asAPIError(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429
	}
	return false
}

func asAPIError(err error, target **openai.APIError) bool {
	ae, ok := err.(*openai.APIError)
	if ok {
		*target = ae
	}
	return ok
}
