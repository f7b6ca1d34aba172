package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AzureClient implements the Client interface for Azure OpenAI. The wire
// schema matches OpenAI chat completions, but authentication uses an
// api-key header and routing goes through a named deployment. Image
// attachments are not forwarded.
type AzureClient struct {
	apiKey     string
	endpoint   string
	deployment string
	apiVersion string
	httpClient *http.Client
}

// NewAzureClient creates a new Azure OpenAI client
func NewAzureClient(apiKey, endpoint, deployment, apiVersion string) *AzureClient {
	return &AzureClient{
		apiKey:     apiKey,
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		deployment: deployment,
		apiVersion: apiVersion,
		httpClient: &http.Client{},
	}
}

// Complete sends a request to Azure OpenAI
func (c *AzureClient) Complete(ctx context.Context, req Request) (*Response, error) {
	reqBody := openAIRequest{
		Messages: []openAIMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: 0.3,
		MaxTokens:   2048,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderAzure, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderAzure, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: ProviderAzure, Status: resp.StatusCode, Message: string(body)}
	}

	var azureResp openAIResponse
	if err := json.Unmarshal(body, &azureResp); err != nil {
		return nil, &ProviderError{Provider: ProviderAzure, Message: fmt.Sprintf("failed to parse response: %v", err)}
	}

	if len(azureResp.Choices) == 0 {
		return nil, &ProviderError{Provider: ProviderAzure, Message: "no response choices"}
	}

	return &Response{
		Text:         azureResp.Choices[0].Message.Content,
		InputTokens:  azureResp.Usage.PromptTokens,
		OutputTokens: azureResp.Usage.CompletionTokens,
		Model:        c.deployment,
	}, nil
}

// Provider returns the provider name
func (c *AzureClient) Provider() Provider {
	return ProviderAzure
}

// Model returns the deployment name
func (c *AzureClient) Model() string {
	return c.deployment
}
