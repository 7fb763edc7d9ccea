package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/pdf2ai/internal/lifecycle"
	"github.com/csheth/pdf2ai/internal/logging"
	"github.com/csheth/pdf2ai/internal/preview"
	"github.com/csheth/pdf2ai/internal/progress"
	"github.com/csheth/pdf2ai/internal/summarize"
	"github.com/csheth/pdf2ai/internal/tui"
	"github.com/csheth/pdf2ai/internal/validate"
)

var (
	noAltScreen bool
	logFile     string
	backendURL  string
)

var openCmd = &cobra.Command{
	Use:   "open [file.pdf]",
	Short: "Open the terminal viewer",
	Long: `Open the terminal viewer, optionally with a PDF already selected.

Drop a file onto the terminal or press o to pick one. Logs go to a file so
they never draw over the screen.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().BoolVar(&noAltScreen, "no-alt-screen", false, "render in the main screen buffer")
	openCmd.Flags().StringVar(&logFile, "log-file", "", "log file path (default: user cache dir)")
	openCmd.Flags().StringVar(&backendURL, "backend", "", "backend base URL (overrides config)")
}

func runOpen(cmd *cobra.Command, args []string) error {
	out, err := logging.OpenFile(firstNonEmpty(logFile, cfg.Log.File))
	if err != nil {
		return err
	}
	defer out.Close()
	logger := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  "json",
		Output:  out,
		Service: "pdf2ai-viewer",
	})

	client := cfg.Client
	controller := lifecycle.DefaultConfig()
	controller.Estimator = progress.New(client.ScanDuration)
	controller.ScanHideDelay = client.ScanHideDelay
	controller.AutoOpenSummary = client.AutoOpenSummary
	controller.AutoOpenDelay = client.AutoOpenDelay
	controller.DragThreshold = client.DragThreshold
	controller.Validator = validate.New(cfg.Upload.MaxSize)

	model := tui.New(tui.Config{
		Controller: controller,
		Host:       preview.NewHost(logger),
		Summarizer: summarize.NewHTTPClient(summarize.Config{
			BaseURL: firstNonEmpty(backendURL, client.BackendURL),
			Timeout: client.RequestTimeout,
			Logger:  logger,
		}),
		Logger:      logger,
		InitialPath: firstArg(args),
	})

	opts := []tea.ProgramOption{tea.WithMouseAllMotion(), tea.WithContext(cmd.Context())}
	if !noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	logger.Info().Str("backend", firstNonEmpty(backendURL, client.BackendURL)).Msg("viewer starting")
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
