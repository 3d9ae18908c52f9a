package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seamonger/procurement/internal/config"
	"github.com/seamonger/procurement/internal/domain"
	"github.com/seamonger/procurement/internal/logging"
	"github.com/seamonger/procurement/internal/poller"
	"github.com/seamonger/procurement/internal/procurement"
	"github.com/seamonger/procurement/internal/shopify"
	"github.com/seamonger/procurement/internal/store"
	"github.com/seamonger/procurement/internal/whatsapp"
)

// app is the wired service shared by the serve and poll commands.
type app struct {
	cfg          *config.Config
	log          *zap.Logger
	db           *sql.DB
	directory    domain.Directory
	orchestrator *procurement.Orchestrator
	poller       *poller.Poller

	closers []func() error
}

func newLogger(cfg *config.Config) *zap.Logger {
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		format = logging.FormatConsole
	}
	return logging.New(cfg.Logging.Level, format)
}

// openDirectory returns the configured supplier directory.
func openDirectory(ctx context.Context, cfg *config.Config, db *sql.DB) (domain.Directory, func() error, error) {
	if cfg.Directory.Backend != config.BackendRedis {
		return store.NewSQLiteDirectory(db), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.Directory.RedisURL)
	if err != nil {
		return nil, nil, domain.Wrap(domain.ErrStoreInit, "parse redis url", err)
	}
	rd, err := store.NewRedisDirectory(opts, cfg.Directory.Namespace)
	if err != nil {
		return nil, nil, domain.Wrap(domain.ErrStoreInit, "redis directory", err)
	}
	if err := rd.Ping(ctx); err != nil {
		rd.Close()
		return nil, nil, domain.Wrap(domain.ErrStoreInit, "ping redis", err)
	}
	return rd, rd.Close, nil
}

// newApp opens storage, builds the collaborators and rebuilds the routing
// table from the directory so existing suppliers are routable immediately.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, domain.Wrap(domain.ErrStoreInit, "open database", err)
	}
	a := &app{cfg: cfg, log: log, db: db, closers: []func() error{db.Close}}

	dir, closeDir, err := openDirectory(ctx, cfg, db)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.directory = dir
	a.closers = append([]func() error{closeDir}, a.closers...)

	orders := shopify.New(shopify.Config{
		StoreDomain: cfg.Shopify.StoreDomain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
		Timeout:     cfg.Shopify.Timeout(),
		Logger:      log.Named(logging.ComponentShopify),
	})
	messenger := whatsapp.New(whatsapp.Config{
		APIURL:   cfg.WhatsApp.APIURL,
		APIToken: cfg.WhatsApp.APIToken,
		Timeout:  cfg.WhatsApp.Timeout(),
		Logger:   log.Named(logging.ComponentWhatsApp),
	})

	a.orchestrator = procurement.New(procurement.Config{
		Orders:       orders,
		Messenger:    messenger,
		Directory:    dir,
		Journal:      store.NewSQLiteJournal(db),
		FounderPhone: cfg.FounderPhone,
		Logger:       log.Named(logging.ComponentOrchestrator),
	})
	if err := a.rebuildRoutes(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.poller = poller.New(a.orchestrator, poller.Config{Interval: cfg.PollInterval()},
		log.Named(logging.ComponentPoller))

	if !orders.Configured() {
		log.Warn("shopify is not configured; polls will see no orders")
	}
	if cfg.FounderPhone == "" {
		log.Warn("founder phone is not set; mirroring and emergency stop are disabled")
	}
	return a, nil
}

func (a *app) rebuildRoutes(ctx context.Context) error {
	suppliers, err := a.directory.List(ctx)
	if err != nil {
		return fmt.Errorf("rebuild routes: %w", err)
	}
	for _, s := range suppliers {
		a.orchestrator.Register(s.Specialty, s.ID)
	}
	a.log.Info("routing table rebuilt", zap.Int("suppliers", len(suppliers)))
	return nil
}

// Close releases storage in reverse order of opening.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
