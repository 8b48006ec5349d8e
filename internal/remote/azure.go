package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// AzureModel runs claim analysis against an Azure OpenAI deployment. It is
// built against a Provider and resolves the client on every call, so a
// client swapped into the provider after construction is picked up
// immediately.
type AzureModel struct {
	provider   Provider
	deployment string
}

// NewAzureModel creates a model wrapper for one deployment.
func NewAzureModel(provider Provider, deployment string) *AzureModel {
	return &AzureModel{provider: provider, deployment: deployment}
}

// NewAzureClient builds an Azure OpenAI client for the given endpoint.
func NewAzureClient(apiKey, endpoint, apiVersion string) *openai.Client {
	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	if apiVersion != "" {
		cfg.APIVersion = apiVersion
	}
	return openai.NewClientWithConfig(cfg)
}

// Message is one turn of the conversation sent to the analysis deployment.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnalysisRequest carries the conversation and deployment parameters.
type AnalysisRequest struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// AnalysisResponse is the part of the completion the core consumes: the
// content that populates an analysis result's narrative fields, plus
// bookkeeping about the generation.
type AnalysisResponse struct {
	ID           string
	Model        string
	Created      int64
	Content      string
	FinishReason string
	TokensUsed   int
}

// Client returns the provider's current client. Exposed so callers that talk
// to the API directly go through the provider too, never a cached instance.
func (m *AzureModel) Client() *openai.Client { return m.provider.Client() }

// BaseURL returns the provider's endpoint.
func (m *AzureModel) BaseURL() string { return m.provider.BaseURL() }

// APIVersion returns the provider's API version.
func (m *AzureModel) APIVersion() string { return m.provider.APIVersion() }

// Analyze sends the conversation to the deployment and returns the first
// choice. The client is resolved from the provider at call time.
func (m *AzureModel) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := m.provider.Client().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.deployment,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("analysis request: empty response from deployment %s", m.deployment)
	}

	choice := resp.Choices[0]
	return &AnalysisResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Created:      resp.Created,
		Content:      strings.TrimSpace(choice.Message.Content),
		FinishReason: string(choice.FinishReason),
		TokensUsed:   resp.Usage.TotalTokens,
	}, nil
}
