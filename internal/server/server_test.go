package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/pdf2ai/internal/apperr"
	"github.com/csheth/pdf2ai/internal/cache"
	"github.com/csheth/pdf2ai/internal/config"
	"github.com/csheth/pdf2ai/internal/document"
	"github.com/csheth/pdf2ai/internal/summarize"
	"github.com/csheth/pdf2ai/internal/testpdf"
)

type fakeModel struct {
	mu      sync.Mutex
	calls   int
	title   string
	content string
	reply   string
	err     error
}

func (m *fakeModel) Summarize(_ context.Context, title, content string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.title, m.content = title, content
	return m.reply, m.err
}

func (m *fakeModel) Name() string { return "fake" }

func (m *fakeModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, model *fakeModel, c cache.Client) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig().Server
	srv := New(Deps{
		Config:    cfg,
		MaxUpload: 1 << 20,
		Model:     model,
		Cache:     c,
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return fixedNow },
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func uploadBody(t *testing.T, name, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func postFile(t *testing.T, ts *httptest.Server, name, contentType string, data []byte) (*http.Response, map[string]any) {
	t.Helper()
	body, ct := uploadBody(t, name, contentType, data)
	resp, err := http.Post(ts.URL+"/api/summarize", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp, payload
}

func getJSON(t *testing.T, url string) map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func TestRootHealthAndTestEndpoints(t *testing.T) {
	ts := newTestServer(t, &fakeModel{}, nil)

	root := getJSON(t, ts.URL+"/")
	assert.Equal(t, "PDF2AI Backend is running!", root["message"])
	assert.Equal(t, "healthy", root["status"])
	assert.Equal(t, "1.0.0", root["version"])
	assert.Equal(t, "PDF2AI Backend", root["project"])

	health := getJSON(t, ts.URL+"/api/health")
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "Backend is healthy and ready to serve requests", health["message"])
	assert.Equal(t, "2025-03-01T12:00:00Z", health["timestamp"])

	probe := getJSON(t, ts.URL+"/api/test")
	assert.Equal(t, "Connection successful!", probe["message"])
	assert.Equal(t, "Go", probe["backend"])
	assert.Contains(t, probe["available_endpoints"], "/api/summarize")
	assert.Contains(t, probe["cors_origins"], "http://localhost:3000")
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, &fakeModel{}, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/summarize", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, ts.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.test")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSummarizeReturnsModelOutput(t *testing.T) {
	model := &fakeModel{reply: "A two page memo about revenue."}
	ts := newTestServer(t, model, nil)

	resp, payload := postFile(t, ts, "memo.pdf", "application/pdf", testpdf.Build("Revenue grew", "Costs were flat"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "A two page memo about revenue.", payload["summary"])
	assert.InDelta(t, 1.0, payload["progress"], 1e-9)
	assert.Equal(t, "memo", model.title)
	assert.Contains(t, model.content, "Revenue grew")
	assert.Contains(t, model.content, "Costs were flat")
}

func TestSummarizeRejectsInvalidUploads(t *testing.T) {
	model := &fakeModel{reply: "unused"}
	ts := newTestServer(t, model, nil)

	cases := []struct {
		name        string
		file        string
		contentType string
		data        []byte
		status      int
		kind        apperr.Kind
	}{
		{"extension", "notes.txt", "application/pdf", testpdf.Build("x"), http.StatusBadRequest, apperr.BadExtension},
		{"mime", "image.pdf", "image/png", testpdf.Build("x"), http.StatusBadRequest, apperr.BadMimeType},
		{"empty", "empty.pdf", "application/pdf", nil, http.StatusBadRequest, apperr.EmptyFile},
		{"signature", "fake.pdf", "application/pdf", []byte("hello world"), http.StatusBadRequest, apperr.BadSignature},
		{"corrupt", "broken.pdf", "application/pdf", []byte("%PDF-1.4\ngarbage"), http.StatusUnprocessableEntity, apperr.CorruptPdf},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, payload := postFile(t, ts, tc.file, tc.contentType, tc.data)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, string(tc.kind), payload["kind"])
			assert.Equal(t, tc.kind.Message(), payload["error"])
		})
	}
	assert.Zero(t, model.Calls())
}

func TestSummarizeRejectsOversizedUpload(t *testing.T) {
	ts := newTestServer(t, &fakeModel{reply: "unused"}, nil)
	big := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), (1<<20)+(1<<19))...)

	resp, payload := postFile(t, ts, "big.pdf", "application/pdf", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, string(apperr.TooLarge), payload["kind"])
}

func TestSummarizeMissingFileField(t *testing.T) {
	ts := newTestServer(t, &fakeModel{}, nil)
	resp, err := http.Post(ts.URL+"/api/summarize", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSummarizeModelFailureIsBadGateway(t *testing.T) {
	ts := newTestServer(t, &fakeModel{err: errors.New("ollama unreachable")}, nil)

	resp, payload := postFile(t, ts, "memo.pdf", "application/pdf", testpdf.Build("Revenue grew"))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to summarize PDF", payload["error"])
	assert.Contains(t, payload["detail"], "ollama unreachable")
}

func TestSummarizeWithoutTextIsUnprocessable(t *testing.T) {
	model := &fakeModel{reply: "unused"}
	ts := newTestServer(t, model, nil)

	resp, payload := postFile(t, ts, "blank.pdf", "application/pdf", testpdf.Build(""))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, string(apperr.UnsupportedPdfFormat), payload["kind"])
	assert.Zero(t, model.Calls())
}

func TestSummarizeUsesCache(t *testing.T) {
	model := &fakeModel{reply: "Cached summary."}
	mem := cache.NewMemoryClient(8)
	t.Cleanup(func() { _ = mem.Close() })
	ts := newTestServer(t, model, mem)
	pdf := testpdf.Build("Revenue grew")

	_, first := postFile(t, ts, "memo.pdf", "application/pdf", pdf)
	_, second := postFile(t, ts, "copy.pdf", "application/pdf", pdf)

	assert.Equal(t, "Cached summary.", first["summary"])
	assert.Equal(t, "Cached summary.", second["summary"])
	assert.Equal(t, true, second["cached"])
	assert.Equal(t, 1, model.Calls())
}

type brokenCache struct{ cache.Noop }

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestSummarizeSurvivesCacheReadFailure(t *testing.T) {
	model := &fakeModel{reply: "Fresh summary."}
	ts := newTestServer(t, model, brokenCache{})

	resp, payload := postFile(t, ts, "memo.pdf", "application/pdf", testpdf.Build("Revenue grew"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Fresh summary.", payload["summary"])
	assert.Nil(t, payload["cached"])
	assert.Equal(t, 1, model.Calls())
}

func TestSummarizeWithoutPartContentTypeChecksSignature(t *testing.T) {
	model := &fakeModel{reply: "From extension."}
	ts := newTestServer(t, model, nil)

	resp, payload := postFile(t, ts, "notes.pdf", "", []byte("hello world, not a pdf"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(apperr.BadSignature), payload["kind"])

	resp, payload = postFile(t, ts, "memo.pdf", "", testpdf.Build("Revenue grew"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "From extension.", payload["summary"])
}

func TestIsTooLargeMatchesTypedError(t *testing.T) {
	wrapped := fmt.Errorf("multipart: %w", &http.MaxBytesError{Limit: 10})
	assert.True(t, isTooLarge(wrapped))
	assert.False(t, isTooLarge(errors.New("http: request body too large")))
}

func TestSummarizeClientAgainstBackend(t *testing.T) {
	ts := newTestServer(t, &fakeModel{reply: "End to end."}, nil)
	client := summarize.NewHTTPClient(summarize.Config{BaseURL: ts.URL, Logger: zerolog.Nop()})

	doc := document.FromBytes("memo.pdf", "application/pdf", testpdf.Build("Revenue grew"))
	res, err := client.Summarize(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "End to end.", res.Summary)

	bad := document.FromBytes("memo.pdf", "application/pdf", []byte("%PDF-1.4\ngarbage"))
	_, err = client.Summarize(context.Background(), bad)
	assert.Equal(t, apperr.ServerError, apperr.KindOf(err, ""))
}
