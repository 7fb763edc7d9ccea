package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaClientSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		var payload struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Model != "gemma3" {
			t.Fatalf("expected model gemma3, got %s", payload.Model)
		}
		if !strings.Contains(payload.Prompt, "Document: Quarterly Report") {
			t.Fatalf("prompt missing title: %s", payload.Prompt)
		}
		if payload.Stream {
			t.Fatal("expected streaming to be disabled")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Revenue grew 12%.","done":true}`))
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "gemma3", client: server.Client()}
	result, err := client.Summarize(context.Background(), "Quarterly Report", "Revenue grew twelve percent.")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if result != "Revenue grew 12%." {
		t.Fatalf("unexpected summarize result: %s", result)
	}
}

func TestOllamaClientSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := &ollamaClient{host: server.URL, model: "missing", client: server.Client()}
	_, err := client.Summarize(context.Background(), "", "content")
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestOllamaClientEmptyContent(t *testing.T) {
	client := &ollamaClient{host: "http://unused", model: "gemma3", client: http.DefaultClient}
	if _, err := client.Summarize(context.Background(), "t", "   "); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestOpenAIClientSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected auth header %q", got)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":" A summary. "}}]}`))
	}))
	defer server.Close()

	client := &openAIClient{apiKey: "sk-test", model: "gpt-4o-mini", base: server.URL, client: server.Client()}
	got, err := client.Summarize(context.Background(), "Doc", "body text")
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if got != "A summary." {
		t.Fatalf("unexpected summary %q", got)
	}
}
