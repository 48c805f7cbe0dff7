package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dativo-io/masker/internal/config"
	"github.com/dativo-io/masker/internal/server"
	"github.com/dativo-io/masker/internal/service"
	"github.com/dativo-io/masker/internal/tenant"
)

var (
	serveAddr    string
	servePersist bool
	serveStrict  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the masking API over HTTP",
	Long: `Starts the HTTP API:

  POST  /v1/mask            mask lines of text
  POST  /v1/mask/messages   mask messages and return placeholder diffs
  PATCH /v1/templates       add, replace or remove tenant templates
  GET   /v1/tenants         list tenants
  GET   /v1/blacklist       most frequently masked words
  GET   /health, /metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from listen_addr, :8080)")
	serveCmd.Flags().BoolVar(&servePersist, "persist-templates", false, "write template updates back to tenant directories")
	serveCmd.Flags().BoolVar(&serveStrict, "strict", false, "refuse to start when any tenant fails to load")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	svc, err := bootstrap(ctx, cfg, servePersist || cfg.PersistUpdates, serveStrict)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.NewServer(svc).Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Str("properties_dir", cfg.PropertiesDir).
		Strs("tenants", svc.Registry().Loaded()).
		Int("rate_limit", cfg.RateLimit).
		Msg("masker_serve_started")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server_stopped")
	return nil
}

// bootstrap loads every tenant up front so configuration problems are
// reported before traffic arrives.
func bootstrap(ctx context.Context, cfg *config.Config, persist, strict bool) (*service.Service, error) {
	ctx, span := tracer.Start(ctx, "bootstrap")
	defer span.End()

	reg := tenant.NewRegistry(cfg.PropertiesDir, tenant.WithRateLimit(cfg.RateLimit))
	if err := reg.LoadAll(ctx); err != nil {
		if strict {
			return nil, fmt.Errorf("loading tenants: %w", err)
		}
		log.Warn().Err(err).Msg("tenant_bootstrap_incomplete")
	}
	return service.New(reg, nil, service.WithPersistTemplates(persist)), nil
}
