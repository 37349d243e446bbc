package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tweetlens/internal/metrics"
)

// OpenAI calls the chat completions API over raw HTTP.
type OpenAI struct {
	model  string
	apiKey string
}

func NewOpenAI(model, apiKey string) *OpenAI {
	return &OpenAI{model: model, apiKey: apiKey}
}

func (o *OpenAI) Name() string { return "openai" }

type oaRequest struct {
	Model    string      `json:"model"`
	Messages []oaMessage `json:"messages"`
}

type oaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// --- light http helpers (decoupled for testability) ---

var openaiURL = "https://api.openai.com/v1/chat/completions"
var httpDo = func(req *http.Request) (*http.Response, error) {
	client := &http.Client{Timeout: 60 * time.Second}
	return client.Do(req)
}

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	metrics.IncLLMCall(o.Name())
	body, err := json.Marshal(oaRequest{
		Model:    o.model,
		Messages: []oaMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpDo(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("openai status %d", resp.StatusCode)
	}
	var out oaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
