package llm

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestPickHTTPClientHonorsCustomClient(t *testing.T) {
	custom := &http.Client{Timeout: 42 * time.Second}
	if got := pickHTTPClient(custom); got != custom {
		t.Fatalf("expected custom client to be returned")
	}
}

func TestPickHTTPClientUsesLongerTimeout(t *testing.T) {
	client := pickHTTPClient(nil)
	if client.Timeout != defaultLLMHTTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultLLMHTTPTimeout, client.Timeout)
	}
}

func TestNewFromEnvDefaultsToOllama(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OLLAMA_HOST", "http://gpu-box:11434/")
	t.Setenv("OLLAMA_MODEL", "")
	client, err := NewFromEnv(Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ollama, ok := client.(*ollamaClient)
	if !ok {
		t.Fatalf("expected ollama client, got %T", client)
	}
	if ollama.host != "http://gpu-box:11434" || ollama.model != defaultOllamaModel {
		t.Fatalf("unexpected ollama config: %+v", ollama)
	}
}

func TestNewFromEnvPicksOpenAIWithKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	client, err := NewFromEnv(Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if !strings.HasPrefix(client.Name(), "OpenAI") {
		t.Fatalf("expected OpenAI client, got %s", client.Name())
	}
}

func TestNewFromEnvRejectsUnknownProvider(t *testing.T) {
	if _, err := NewFromEnv(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewFromEnvOpenAIWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewFromEnv(Config{Provider: ProviderOpenAI}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	prompt := buildSummaryPrompt("Annual Report", "Revenue   grew.\n\n\n\nCosts fell.")
	if !strings.Contains(prompt, "Document: Annual Report") {
		t.Fatalf("prompt missing title: %s", prompt)
	}
	if !strings.Contains(prompt, "Revenue grew.\n\nCosts fell.") {
		t.Fatalf("prompt text not tidied: %q", prompt)
	}
}

func TestClipTextRespectsRunes(t *testing.T) {
	if got := clipText("héllo wörld", 5); got != "héllo" {
		t.Fatalf("unexpected clip %q", got)
	}
}
