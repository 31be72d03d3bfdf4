package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/clinreason/internal/layout"
	"github.com/abhisek/clinreason/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve layout, comparison and rendering over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		logger, err := newLogger(cfg, nil)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		lib, err := loadLibrary(cfg)
		if err != nil {
			return err
		}
		cache, err := layout.NewCache(cfg.Layout.CacheSize)
		if err != nil {
			return err
		}

		srv := server.New(server.Options{
			Spacing:        cfg.Layout.Spacing(),
			Threshold:      cfg.Compare.Threshold,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Cache:          cache,
			Library:        lib,
			Logger:         logger.Named("http"),
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		logger.Info("serving", zap.Int("cases", lib.Len()), zap.String("version", version))
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
}
