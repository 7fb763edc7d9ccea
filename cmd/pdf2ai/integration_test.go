package main

import (
	"context"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/csheth/pdf2ai/internal/config"
	"github.com/csheth/pdf2ai/internal/server"
	"github.com/csheth/pdf2ai/internal/testpdf"
	"github.com/csheth/pdf2ai/internal/tuitest"
)

type stubModel struct{}

func (stubModel) Summarize(context.Context, string, string) (string, error) {
	return "The report says the terminal viewer works.", nil
}

func (stubModel) Name() string { return "stub" }

func TestViewerRejectsNonPDF(t *testing.T) {
	t.Parallel()

	binary := buildBinary(t, moduleDir(t))
	work := t.TempDir()
	fake := filepath.Join(work, "scan.pdf")
	if err := os.WriteFile(fake, []byte("\x89PNG\r\n\x1a\n0000000000"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "open", "--no-alt-screen", "--log-file", filepath.Join(work, "viewer.log"), fake},
		Dir:     work,
		Steps: []tuitest.Step{
			{WaitFor: "File does not appear to be a valid PDF"},
			{Input: tuitest.KeyCtrlC},
		},
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run viewer: %v", err)
	}
	frame, ok := rec.FinalFrame()
	if !ok {
		t.Fatal("no frames captured")
	}
	if !rec.Contains("File does not appear to be a valid PDF") {
		t.Fatalf("signature message never shown:\n%s", frame.Plain)
	}
	if !strings.Contains(string(rec.Raw), "scan.pdf") {
		t.Fatal("rejected file name never shown")
	}
}

func TestViewerSummarizesDroppedFile(t *testing.T) {
	t.Parallel()

	backend := server.New(server.Deps{
		Config: config.DefaultConfig().Server,
		Model:  stubModel{},
		Logger: zerolog.Nop(),
	})
	ts := httptest.NewServer(backend.Handler())
	defer ts.Close()

	binary := buildBinary(t, moduleDir(t))
	work := t.TempDir()
	pdfPath := filepath.Join(work, "report.pdf")
	if err := os.WriteFile(pdfPath, testpdf.Build("Quarterly report on terminal viewers."), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "open", "--no-alt-screen", "--backend", ts.URL, "--log-file", filepath.Join(work, "viewer.log")},
		Dir:     work,
		Env:     []string{"PDF2AI_SCAN_DURATION=2s"},
		Steps: []tuitest.Step{
			{WaitFor: "Drop a PDF here"},
			{Input: tuitest.Paste(pdfPath)},
			{WaitFor: "Ready to summarize"},
			{Input: tuitest.Keys("s")},
			{WaitFor: "terminal viewer works"},
			{Input: tuitest.KeyCtrlC},
		},
		Timeout:        20 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run viewer: %v", err)
	}
	if !rec.Contains("report.pdf") {
		t.Fatal("file name never shown")
	}
	if !rec.Contains("Summary") {
		t.Fatal("summary overlay never shown")
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("builds the binary")
	}
	name := "pdf2ai-integration"
	if runtime.GOOS == "windows" {
		t.Skip("pty harness needs a unix terminal")
	}
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
