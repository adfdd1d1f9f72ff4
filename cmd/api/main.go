package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/cimillas/ticket-exchange/internal/app"
	"github.com/cimillas/ticket-exchange/internal/audit"
	"github.com/cimillas/ticket-exchange/internal/clock"
	"github.com/cimillas/ticket-exchange/internal/config"
	"github.com/cimillas/ticket-exchange/internal/notify"
	"github.com/cimillas/ticket-exchange/internal/pricing"
	"github.com/cimillas/ticket-exchange/internal/storage/memory"
	"github.com/cimillas/ticket-exchange/internal/storage/postgres"
	transporthttp "github.com/cimillas/ticket-exchange/internal/transport/http"
	"github.com/cimillas/ticket-exchange/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath   string
		envFile      string
		tokenSubject string
		tokenTTL     time.Duration
		verifyAudit  bool
	)
	flagSet := pflag.NewFlagSet("ticket-exchange", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config is expanded")
	flagSet.StringVar(&tokenSubject, "issue-token", "", "print a bearer token for this identity and exit")
	flagSet.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "lifetime of a token printed by --issue-token")
	flagSet.BoolVar(&verifyAudit, "verify-audit", false, "verify the persisted audit journal and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// Variables already in the environment win over the file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	auth := transporthttp.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if tokenSubject != "" {
		token, err := auth.Issue(tokenSubject, tokenTTL, time.Now())
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Println(token)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := memory.NewStore()
	var (
		trust app.TrustRegistry = memory.NewTrustRegistry(store)
		sink  audit.Sink        = audit.NewMemorySink()
		ready func(context.Context) error
	)
	if cfg.Database.Enabled() {
		pool, err := openDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		trust = postgres.NewTrustRepository(pool)
		sink = postgres.NewJournalRepository(pool)
		ready = pool.Ping
	} else {
		logger.Warn("database.url not set, identities and audit journal are kept in memory")
	}

	if verifyAudit {
		entries, err := audit.VerifySink(ctx, sink)
		if err != nil {
			return err
		}
		logger.Info("audit journal verified", "entries", len(entries))
		return nil
	}

	journal, err := audit.Open(ctx, sink)
	if err != nil {
		return err
	}
	seq, _ := journal.Head()
	logger.Info("audit journal opened", "head", seq)

	hub := notify.NewHub(cfg.Server.StreamBuffer, cfg.Server.CORSOrigins, logger)
	publishers := []notify.Publisher{journal, hub}
	if cfg.AMQP.Enabled() {
		broker, err := notify.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
		if err != nil {
			return err
		}
		defer broker.Close()
		publishers = append(publishers, broker)
	}

	market, err := app.NewMarketplace(ctx, app.Deps{
		Store:     store,
		Events:    memory.NewEventRepository(store),
		Bids:      memory.NewBidRepository(store),
		Listings:  memory.NewListingRepository(store),
		Vault:     memory.NewVault(store),
		Credits:   memory.NewCreditLedger(store),
		Tickets:   memory.NewTicketRegistry(store),
		Trust:     trust,
		Publisher: notify.NewFanout(publishers...),
		Clock:     clock.NewSystem(),
		Logger:    logger,
	}, policyFromConfig(cfg.Marketplace))
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.Server.Port),
		Handler: transporthttp.NewRouter(transporthttp.RouterConfig{
			Marketplace: market,
			Auth:        auth,
			Stream:      hub,
			Ready:       ready,
			Logger:      logger,
			CORSOrigins: cfg.Server.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("api listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	startupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(startupCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(startupCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	ran, err := migrations.Apply(startupCtx, pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("database ready", "migrations_applied", ran)
	return pool, nil
}

func policyFromConfig(m config.MarketplaceConfig) app.Policy {
	return app.Policy{
		BulkLimit:              m.BulkLimit,
		DepositUnit:            m.DepositUnit,
		CommissionBPS:          m.CommissionBPS,
		OrderBookCommissionBPS: m.OrderBookCommissionBPS,
		Pricing:                pricing.Schedule{Base: m.BasePrice, Increment: m.PriceIncrement},
		CreditUnitPrice:        m.CreditUnitPrice,
		Admins:                 m.Admins,
	}
}
