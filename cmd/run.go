package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/clinreason/internal/app"
	"github.com/abhisek/clinreason/internal/cases"
	"github.com/abhisek/clinreason/internal/classifier"
	"github.com/abhisek/clinreason/internal/config"
	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/live"
	"github.com/abhisek/clinreason/internal/llm"
	"github.com/abhisek/clinreason/internal/session"
)

func init() {
	rootCmd.Flags().String("log-file", "", "Write logs to this file while the TUI runs (default: discard)")
}

// runApp builds the model-backed classifier and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if p, _ := cmd.Flags().GetString("log-file"); p != "" {
		f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := newLogger(cfg, logOut)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	lib, err := loadLibrary(cfg)
	if err != nil {
		return err
	}
	if lib.Len() == 0 {
		return fmt.Errorf("no cases to practice")
	}

	llmCfg, err := resolveLLMConfig(cfg)
	if err != nil {
		return err
	}
	provider, err := llm.NewProvider(ctx, llmCfg, logger)
	if err != nil {
		return err
	}
	clf := classifier.New(provider, cfg.Classifier)

	layouts, err := layout.NewCache(cfg.Layout.CacheSize)
	if err != nil {
		return err
	}

	newSession := func(c *cases.Case) *session.Session {
		return session.New(c, clf, clf, sessionOptions(cfg, logger))
	}

	return app.Run(ctx, app.Deps{
		Library:    lib,
		NewSession: newSession,
		Layouts:    layouts,
		Spacing:    cfg.Layout.Spacing(),
		Logger:     logger,
	})
}

// resolveLLMConfig uses the configured provider when it has a key and
// otherwise falls back to the vendors' own API key variables.
func resolveLLMConfig(cfg *config.Config) (llm.Config, error) {
	if cfg.LLM.Provider == "mock" || cfg.LLM.HasKey() {
		return cfg.LLM, nil
	}
	discovered, ok := llm.DiscoverConfig()
	if !ok {
		return llm.Config{}, fmt.Errorf("no LLM provider configured: %w", cfg.LLM.Validate())
	}
	discovered.Retry = cfg.LLM.Retry
	discovered.Timeout = cfg.LLM.Timeout
	return discovered, nil
}

func sessionOptions(cfg *config.Config, logger *zap.Logger) session.Options {
	return session.Options{
		Live: live.Options{
			MinDelta:        cfg.Scheduler.MinDelta,
			MinManualLength: cfg.Scheduler.MinManualLength,
		},
		Runner:    live.RunnerOptions{Interval: cfg.Scheduler.Interval},
		Threshold: cfg.Compare.Threshold,
		Logger:    logger,
	}
}
