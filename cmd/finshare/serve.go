package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finshare-ai/internal/certs"
	"github.com/Veraticus/finshare-ai/internal/copilot"
	"github.com/Veraticus/finshare-ai/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the categorization HTTP API",
		Long: `Start the HTTP API that categorizes transactions, records user
corrections and serves the co-pilot endpoints. Persisted personal keywords are
loaded in the background while the server starts accepting requests.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8000)")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("failed to close storage", "error", err)
		}
	}()

	srv, err := newServer(a)
	if err != nil {
		return err
	}

	slog.Info("starting finshare",
		"version", version,
		"addr", a.cfg.Server.Addr,
		"tls", a.cfg.Server.TLS,
		"storage", a.cfg.Storage.Backend,
		"llm", a.generator.Provider())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	g.Go(func() error {
		// Users without warmed overlays fall back to the base lexicon meanwhile.
		if err := a.warm(gctx); err != nil && gctx.Err() == nil {
			slog.Error("overlay warm-up failed", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("finshare stopped")
	return nil
}

func newServer(a *app) (*server.Server, error) {
	cfg := server.Config{
		Addr:         a.cfg.Server.Addr,
		CORSOrigins:  a.cfg.Server.CORSOrigins,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
	if a.cfg.Server.TLS {
		tlsCfg, err := certs.NewFileManager(a.cfg.Server.CertDir).TLSConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}
		cfg.TLS = tlsCfg
	}
	return server.New(cfg, server.Deps{
		Categorizer: a.categorizer,
		Feedback:    a.feedback,
		Catalog:     a.catalog,
		Refiner:     a.refiner,
		Assistant:   a.assistant(),
		Budgeter:    copilot.NewTripBudgeter(a.generator, a.logger),
		Generator:   a.generator,
	}, a.logger)
}
