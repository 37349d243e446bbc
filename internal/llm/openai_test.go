package llm

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"tweetlens/internal/config"
)

func TestOpenAICompleteParsesChoice(t *testing.T) {
	origDo, origURL := httpDo, openaiURL
	defer func() { httpDo, openaiURL = origDo, origURL }()
	openaiURL = "http://llm.test/v1/chat/completions"

	var gotBody string
	httpDo = func(req *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(req.Body)
		gotBody = string(b)
		if req.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("auth header = %q", req.Header.Get("Authorization"))
		}
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"choices":[{"message":{"content":"a narrative"}}]}`)),
		}, nil
	}

	p := NewOpenAI("gpt-4o-mini", "key")
	out, err := p.Complete(context.Background(), "describe the data")
	if err != nil {
		t.Fatal(err)
	}
	if out != "a narrative" {
		t.Fatalf("got %q", out)
	}
	if !strings.Contains(gotBody, "describe the data") {
		t.Fatalf("prompt missing from request body: %s", gotBody)
	}
}

func TestOpenAICompleteStatusError(t *testing.T) {
	origDo := httpDo
	defer func() { httpDo = origDo }()
	httpDo = func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 429, Body: io.NopCloser(strings.NewReader(`{}`))}, nil
	}
	p := NewOpenAI("gpt-4o-mini", "key")
	if _, err := p.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFromConfig(t *testing.T) {
	if p := FromConfig(config.LLMConfig{Provider: "none"}); p != nil {
		t.Fatalf("expected nil provider, got %T", p)
	}
	if p := FromConfig(config.LLMConfig{Provider: "something-else"}); p != nil {
		t.Fatalf("expected nil provider for unknown name, got %T", p)
	}
	if p := FromConfig(config.LLMConfig{Provider: "openai", Model: "m"}); p == nil || p.Name() != "openai" {
		t.Fatalf("got %v", p)
	}
	if p := FromConfig(config.LLMConfig{Provider: "anthropic", Model: "m"}); p == nil || p.Name() != "anthropic" {
		t.Fatalf("got %v", p)
	}
}
