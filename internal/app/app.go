package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/biblioenspy/biblio-service/config"
	"github.com/biblioenspy/biblio-service/internal/handler"
	"github.com/biblioenspy/biblio-service/internal/imagestore"
	"github.com/biblioenspy/biblio-service/internal/repository"
	"github.com/biblioenspy/biblio-service/internal/server"
	"github.com/biblioenspy/biblio-service/internal/service"
	"github.com/biblioenspy/biblio-service/migrations"
	"github.com/biblioenspy/biblio-service/pkg/auth"
	"github.com/biblioenspy/biblio-service/pkg/kafka"
	"github.com/biblioenspy/biblio-service/pkg/logger"
	"github.com/biblioenspy/biblio-service/pkg/postgres"
	"github.com/biblioenspy/biblio-service/pkg/redis"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "biblio")
	auth.SetJWTKey(cfg.Auth.JWTKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	pool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("pool init", zap.Error(err))
	}

	userRepo, err := repository.NewUserRepository(db, log)
	if err != nil {
		log.Fatal("user repo", zap.Error(err))
	}
	lifecycleRepo, err := repository.NewLifecycleRepository(db, log)
	if err != nil {
		log.Fatal("lifecycle repo", zap.Error(err))
	}
	catalogRepo, err := repository.NewCatalogRepository(db, log)
	if err != nil {
		log.Fatal("catalog repo", zap.Error(err))
	}
	historyRepo, err := repository.NewHistoryRepository(db, log)
	if err != nil {
		log.Fatal("history repo", zap.Error(err))
	}
	settingsRepo, err := repository.NewSettingsRepository(db, log)
	if err != nil {
		log.Fatal("settings repo", zap.Error(err))
	}
	statsRepo, err := repository.NewStatsRepository(pool, log)
	if err != nil {
		log.Fatal("stats repo", zap.Error(err))
	}

	cache := redis.NewClient(cfg.Redis, log)

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Warn("kafka producer unavailable, loan events disabled", zap.Error(err))
		producer = nil
	}

	lifecycleSvc := service.NewLifecycleService(lifecycleRepo, userRepo, settingsRepo, producer, log)
	authSvc := service.NewAuthService(userRepo, settingsRepo, service.NewLogMailer(log), cache, cfg.Auth, log)
	catalogSvc := service.NewCatalogService(catalogRepo, log)
	statsSvc := service.NewStatsService(statsRepo, userRepo, settingsRepo, log)
	recorderSvc := service.NewRecorderService(historyRepo, log)
	settingsSvc := service.NewSettingsService(settingsRepo, cache, log)
	uploader := imagestore.NewClient(cfg.ImageStore, log)

	if producer != nil {
		consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.RecorderConsumerGroup)
		if err != nil {
			log.Fatal("kafka.NewConsumer", zap.Error(err))
		}
		go func() {
			if err := kafka.Consume(ctx, consumer, handler.NewConsumer(recorderSvc.Record, log), kafka.LoanTopic); err != nil && ctx.Err() == nil {
				log.Error("kafka consume", zap.Error(err))
			}
		}()
	}

	h := handler.New(lifecycleSvc, authSvc, catalogSvc, statsSvc, recorderSvc, settingsSvc, uploader, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second*5)
	defer closeCancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	cancel()
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("producer.Close", zap.Error(err))
		}
	}
	_ = cache.Close()
	pool.Close()
	db.Close()
	log.Info("Graceful shutdown finished")
}
