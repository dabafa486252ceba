package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dtroode/regbot/internal/api/http/handler"
	"github.com/dtroode/regbot/internal/api/http/router"
	httpServer "github.com/dtroode/regbot/internal/api/http/server"
	"github.com/dtroode/regbot/internal/config"
	"github.com/dtroode/regbot/internal/fsm"
	"github.com/dtroode/regbot/internal/logger"
	"github.com/dtroode/regbot/internal/metrics"
	"github.com/dtroode/regbot/internal/model"
	"github.com/dtroode/regbot/internal/registration"
	"github.com/dtroode/regbot/internal/repository/memory"
	"github.com/dtroode/regbot/internal/repository/postgres"
	redisrepo "github.com/dtroode/regbot/internal/repository/redis"
	"github.com/dtroode/regbot/internal/server"
	"github.com/dtroode/regbot/internal/service"
	storage "github.com/dtroode/regbot/internal/storage/minio"
	"github.com/dtroode/regbot/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the notification endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			logAppVersion(cmd)
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.Telegram.Token == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	api, err := telegram.NewAPI(cfg.Telegram.Token, cfg.Telegram.Debug)
	if err != nil {
		return err
	}
	log.Info("authorized on telegram", "bot", api.Self.UserName)

	ledger, closeLedger, err := openLedger(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLedger()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create minio client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		return fmt.Errorf("failed to initialize storage client: %w", err)
	}

	sender := telegram.NewSender(api)
	media := service.NewMedia(telegram.NewFetcher(api, cfg.Registration.Timeout), storageClient, m, log)
	dispatcher := service.NewDispatcher(sender, cfg.Admin.IDs, cfg.Admin.PanelURL, m, log)
	submission := service.NewSubmission(
		media,
		registration.NewClient(cfg.Registration.APIURL, cfg.Registration.Timeout),
		ledger,
		dispatcher,
		cfg.Registration.UploadConcurrency,
		m,
		log,
	)

	machine := fsm.NewMachine(fsm.NewStore(), sender, submission, fsm.Assets{
		AgreementPath:  cfg.Assets.AgreementPath,
		AppendixPath:   cfg.Assets.AppendixPath,
		GuideVideoPath: cfg.Assets.GuideVideoPath,
		AppURL:         cfg.Assets.WebAppURL,
	}, m, log)
	bot := telegram.NewBot(api, machine, cfg.Telegram.PollTimeout, cfg.Telegram.Concurrency, log)

	routes := router.New(
		handler.NewNotify(sender, log),
		cfg.HTTP.NotifySecret,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		log,
	)
	srv := httpServer.NewHTTPServer(routes, fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "address", srv.Address(), "tls", cfg.HTTP.EnableHTTPS)
		return srv.Start(sl)
	})
	g.Go(func() error {
		if err := bot.Run(gctx); err != nil {
			return err
		}
		if gctx.Err() == nil {
			return errors.New("telegram update stream closed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error("error during server shutdown", "error", err, "address", srv.Address())
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

// openLedger builds the configured submission ledger and its cleanup.
func openLedger(ctx context.Context, cfg *config.Config, log *logger.Logger) (model.SubmissionLedger, func(), error) {
	switch cfg.Ledger.Backend {
	case "postgres":
		db, err := postgres.NewConection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres ledger: %w", err)
		}
		log.Info("using postgres submission ledger", "dsn", redactDSN(cfg.Database.DSN))
		return postgres.NewSubmissionRepository(db), func() { _ = db.Close() }, nil
	case "redis":
		client, err := redisrepo.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis ledger: %w", err)
		}
		log.Info("using redis submission ledger", "ttl", cfg.Ledger.TTL)
		return redisrepo.NewSubmissionLedger(client, cfg.Ledger.TTL), func() { _ = client.Close() }, nil
	default:
		log.Warn("using in-memory submission ledger; submissions are not deduplicated across restarts")
		return memory.NewSubmissionLedger(), func() {}, nil
	}
}

// redactDSN hides the password of a connection string.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "<invalid dsn>"
	}
	return u.Redacted()
}
