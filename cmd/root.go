package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/clinreason/internal/cases"
	"github.com/abhisek/clinreason/internal/config"
	"github.com/abhisek/clinreason/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "clinreason",
	Short: "Clinical reasoning practice with live reasoning diagrams",
	Long: "clinreason turns free-text clinical reasoning into a diagram while you write, " +
		"then scores it against an expert's reasoning for the same case.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file")
	pf.String("env-file", ".env", "Dotenv file loaded before the environment is read")
	pf.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.String("log-format", "", "Log format: console or json (overrides config)")

	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(caseCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the dotenv file, then the config file, then applies
// the logging flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger logs to stderr, or to w when it is non-nil.
func newLogger(cfg *config.Config, w io.Writer) (*zap.Logger, error) {
	if w != nil {
		return logging.NewWriter(w, cfg.Log.Level, cfg.Log.Format)
	}
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

// loadLibrary returns the built-in cases plus any in the configured
// directory.
func loadLibrary(cfg *config.Config) (*cases.Library, error) {
	lib, err := cases.Builtin()
	if err != nil {
		return nil, fmt.Errorf("load built-in cases: %w", err)
	}
	if cfg.Cases.Dir == "" {
		return lib, nil
	}
	extra, err := cases.LoadDir(cfg.Cases.Dir)
	if err != nil {
		return nil, err
	}
	for _, c := range extra.All() {
		if err := lib.Add(c); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Cases.Dir, err)
		}
	}
	return lib, nil
}
