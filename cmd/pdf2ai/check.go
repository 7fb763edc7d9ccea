package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var checkTimeout time.Duration

var checkCmd = &cobra.Command{
	Use:   "check [backend-url]",
	Short: "Probe the backend endpoints",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Second, "per-request timeout")
}

type probeResult struct {
	Path   string
	Status int
	Body   map[string]any
	Err    error
}

var probePaths = []string{"/", "/api/health", "/api/test"}

func runCheck(cmd *cobra.Command, args []string) error {
	base := strings.TrimRight(firstNonEmpty(firstArg(args), cfg.Client.BackendURL), "/")
	client := &http.Client{Timeout: checkTimeout}

	results := make([]probeResult, len(probePaths))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, path := range probePaths {
		g.Go(func() error {
			results[i] = probe(ctx, client, base+path)
			results[i].Path = path
			return nil
		})
	}
	_ = g.Wait()

	ui := newUI(cmd.OutOrStdout(), noColor)
	ui.Info("Backend %s", base)
	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			ui.Error("%-12s %v", r.Path, r.Err)
		case r.Status != http.StatusOK:
			failed++
			ui.Error("%-12s HTTP %d", r.Path, r.Status)
		default:
			ui.Success("%-12s %s", r.Path, describe(r.Body))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d probes failed", failed, len(results))
	}
	return nil
}

func probe(ctx context.Context, client *http.Client, url string) probeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return probeResult{Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return probeResult{Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return probeResult{Status: resp.StatusCode, Err: err}
	}
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	return probeResult{Status: resp.StatusCode, Body: body}
}

func describe(body map[string]any) string {
	for _, key := range []string{"status", "message"} {
		if v, ok := body[key].(string); ok && v != "" {
			return v
		}
	}
	return "ok"
}
