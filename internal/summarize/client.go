// Package summarize uploads a document to the backend and returns its
// summary.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/csheth/pdf2ai/internal/apperr"
	"github.com/csheth/pdf2ai/internal/document"
)

// Path is the summarization endpoint on the backend.
const Path = "/api/summarize"

// Result is the backend's success payload.
type Result struct {
	Summary  string   `json:"summary"`
	Progress *float64 `json:"progress,omitempty"`
}

// Client summarizes a document.
type Client interface {
	Summarize(ctx context.Context, f document.File) (Result, error)
}

// Config describes how to reach the backend.
type Config struct {
	BaseURL string
	// Timeout only guards dead connections; zero means none. Cancellation
	// comes from the caller's context.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// HTTPClient posts the file as multipart form data.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient returns a client for cfg.BaseURL.
func NewHTTPClient(cfg Config) *HTTPClient {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		logger:  cfg.Logger.With().Str("component", "summarize").Logger(),
	}
}

// Summarize uploads f. Transport failures are NetworkError; any non-2xx
// status or unusable body is ServerError.
func (c *HTTPClient) Summarize(ctx context.Context, f document.File) (Result, error) {
	body, contentType, err := encodeUpload(f)
	if err != nil {
		return Result{}, apperr.New(apperr.UnreadableFile, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+Path, body)
	if err != nil {
		return Result{}, apperr.New(apperr.NetworkError, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, apperr.New(apperr.LoadCancelled, ctx.Err())
		}
		return Result{}, apperr.New(apperr.NetworkError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, apperr.New(apperr.NetworkError, err)
	}
	c.logger.Info().
		Str("file", f.Name()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("summarize request finished")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, apperr.New(apperr.ServerError, fmt.Errorf("backend returned %s: %s", resp.Status, snippet(raw)))
	}
	var out Result
	if err := json.Unmarshal(raw, &out); err != nil {
		return Result{}, apperr.New(apperr.ServerError, fmt.Errorf("decode response: %w", err))
	}
	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" {
		return Result{}, apperr.New(apperr.ServerError, errors.New("backend returned an empty summary"))
	}
	return out, nil
}

func encodeUpload(f document.File) (io.Reader, string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(f.Name())))
	header.Set("Content-Type", f.MIMEType())
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, rc); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func snippet(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		return text[:200] + "…"
	}
	return text
}
