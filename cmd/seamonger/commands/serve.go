package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seamonger/procurement/internal/httpapi"
	"github.com/seamonger/procurement/internal/logging"
	"github.com/seamonger/procurement/internal/printer"
	"github.com/seamonger/procurement/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the order poller",
	Long: `Start the procurement service.

The HTTP API accepts supplier registrations and inbound WhatsApp webhooks; the
poller checks Shopify for unfulfilled orders on the configured interval.
SIGINT or SIGTERM shuts both down gracefully.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return printer.Error("Failed to start", err.Error())
	}
	defer a.Close()

	handler := &httpapi.Handler{
		Orchestrator: a.orchestrator,
		Directory:    a.directory,
		Poller:       a.poller,
		DB:           a.db,
		JournalRepo:  &store.JournalRepo{},
	}
	srv := httpapi.NewServer(handler, cfg.ListenAddr, log.Named(logging.ComponentHTTP))

	a.poller.Start(ctx)

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		log.Info("shutting down")

		a.poller.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown", zap.Error(err))
		}
	}()

	log.Info("seamonger listening", zap.String("url", httpapi.FormatListenURL(cfg.ListenAddr)))

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		stop()
		<-shutdownDone
		return printer.Error("Server error", err.Error())
	}
	// Storage must outlive in-flight requests.
	<-shutdownDone
	printer.Success("stopped")
	return nil
}
