package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOllamaModel = "gemma3"
	defaultOllamaHost  = "http://localhost:11434"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOpenAIBase  = "https://api.openai.com/v1"
)

// Roughly 50k tokens at four characters per token. Longer documents are
// clipped rather than rejected.
const maxSummaryChars = 200_000

const defaultLLMHTTPTimeout = 3 * time.Minute

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config describes how to build an LLM client.
type Config struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// Client summarizes extracted document text.
type Client interface {
	Summarize(ctx context.Context, title, content string) (string, error)
	Name() string
}

// NewFromEnv builds a client from cfg, filling gaps from OLLAMA_HOST,
// OLLAMA_MODEL and OPENAI_API_KEY. An API key without an explicit provider
// selects OpenAI.
func NewFromEnv(cfg Config) (Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOllama
		if apiKey != "" {
			provider = ProviderOpenAI
		}
	}

	switch provider {
	case ProviderOllama:
		host := cfg.Endpoint
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = defaultOllamaHost
		}
		model := cfg.Model
		if model == "" {
			model = os.Getenv("OLLAMA_MODEL")
		}
		if model == "" {
			model = defaultOllamaModel
		}
		return &ollamaClient{
			host:   strings.TrimRight(host, "/"),
			model:  model,
			client: pickHTTPClient(cfg.HTTPClient),
		}, nil
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		base := cfg.Endpoint
		if base == "" {
			base = defaultOpenAIBase
		}
		model := cfg.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		return &openAIClient{
			apiKey: apiKey,
			model:  model,
			base:   strings.TrimRight(base, "/"),
			client: pickHTTPClient(cfg.HTTPClient),
		}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Local models often need more than a minute; the caller's context cancels.
	return &http.Client{Timeout: defaultLLMHTTPTimeout}
}
