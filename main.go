package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/symptomscope/symptomscope/internal/api"
	"github.com/symptomscope/symptomscope/internal/config"
	"github.com/symptomscope/symptomscope/internal/diagnose"
	"github.com/symptomscope/symptomscope/internal/llm"
	"github.com/symptomscope/symptomscope/pkg/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	configPath string
	imagePaths []string
	jsonOutput bool
	port       int
)

var rootCmd = &cobra.Command{
	Use:   "symptomscope <symptom> [symptom...]",
	Short: "AI-powered symptom checker",
	Long: `Checks reported symptoms against a configured LLM provider
(Gemini, OpenAI, Azure OpenAI, or Anthropic) and prints candidate
conditions with confidence, urgency, and recommended steps.

If no provider is configured or the call fails, offline guidance is
served instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiagnose,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the diagnosis API server",
	RunE:  runServe,
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show supported providers and configuration status",
	RunE:  runProviders,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("symptomscope %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.Flags().StringArrayVar(&imagePaths, "image", nil, "Photo of the affected area (repeatable, max 3)")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")

	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if rootCmd.Execute() != nil {
		os.Exit(1)
	}
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	if len(imagePaths) > models.MaxImages {
		return fmt.Errorf("at most %d images are allowed", models.MaxImages)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	input := models.SymptomInput{Symptoms: args}
	for _, path := range imagePaths {
		att, err := loadImage(path)
		if err != nil {
			return err
		}
		input.Images = append(input.Images, att)
	}

	client, err := llm.New(cfg)
	if err != nil {
		// Missing configuration falls back to offline guidance; tell the
		// operator why on stderr.
		fmt.Fprintf(os.Stderr, "Warning: %v (serving offline guidance)\n", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := diagnose.NewService(client, logger)

	stop := startSpinner(cfg.Provider)
	result := svc.Diagnose(cmd.Context(), input)
	stop()

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(os.Stdout, result)
	return nil
}

// startSpinner shows a terminal spinner while the provider call is in
// flight. No-op when stderr is not a TTY.
func startSpinner(provider string) func() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = fmt.Sprintf(" Consulting %s...", provider)
	s.Start()
	return s.Stop
}

func loadImage(path string) (models.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("failed to read image: %w", err)
	}
	return models.Attachment{Data: data, MIME: mimeForImage(data)}, nil
}

// mimeForImage sniffs the content and falls back to JPEG, which is what
// phone cameras produce.
func mimeForImage(data []byte) string {
	mime := http.DetectContentType(data)
	if mime == "application/octet-stream" {
		return "image/jpeg"
	}
	return mime
}

func printResult(w io.Writer, result *models.DiagnosisResult) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	if result.Fallback {
		yellow := color.New(color.FgYellow)
		_, _ = yellow.Fprintln(w, "Offline guidance (provider unavailable)")
		fmt.Fprintln(w)
	}

	for i, rec := range result.Records {
		_, _ = bold.Fprintf(w, "%d. %s", i+1, rec.Condition)
		fmt.Fprintf(w, "  %.0f%% ", rec.Confidence*100)
		_, _ = urgencyColor(rec.Urgency).Fprintf(w, "[%s]\n", rec.Urgency)

		if rec.Description != "" {
			fmt.Fprintf(w, "   %s\n", rec.Description)
		}
		if rec.VisualAnalysis != "" {
			_, _ = dim.Fprintf(w, "   Photo: %s\n", rec.VisualAnalysis)
		}
		for _, step := range rec.Steps {
			fmt.Fprintf(w, "   - %s\n", step)
		}
		fmt.Fprintln(w)
	}

	if !result.Fallback {
		_, _ = dim.Fprintf(w, "Provider: %s (%s) | Tokens: %d in / %d out\n",
			result.Provider, result.Model, result.InputTokens, result.OutputTokens)
	}
	_, _ = dim.Fprintln(w, "Not a medical diagnosis. Consult a healthcare professional.")
}

// urgencyColor maps the three known urgency levels; anything else prints
// uncolored, matching the pass-through in normalization.
func urgencyColor(u models.Urgency) *color.Color {
	switch u {
	case models.UrgencyHigh:
		return color.New(color.FgRed, color.Bold)
	case models.UrgencyMedium:
		return color.New(color.FgYellow)
	case models.UrgencyLow:
		return color.New(color.FgGreen)
	default:
		return color.New()
	}
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	status := cfg.Status()
	fmt.Println("Supported providers: gemini, openai, azure, anthropic")
	fmt.Printf("Selected: %s (model: %s)\n", status.Provider, status.Model)
	if status.Configured {
		green := color.New(color.FgGreen)
		_, _ = green.Println("Status: configured")
	} else {
		red := color.New(color.FgRed)
		_, _ = red.Printf("Status: not configured (missing %s)\n", status.Missing)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	client, err := llm.New(cfg)
	if err != nil {
		logger.Warn("provider not configured, all requests will serve fallback", "error", err)
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", port),
		Handler: api.NewServer(api.Config{
			Diagnoser: diagnose.NewService(client, logger),
			Provider:  cfg,
			Logger:    logger,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "provider", cfg.Provider)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
