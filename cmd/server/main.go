package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Phicks-debug/daisii/internal/config"
	"github.com/Phicks-debug/daisii/internal/domain/auth"
	"github.com/Phicks-debug/daisii/internal/domain/chat"
	"github.com/Phicks-debug/daisii/internal/domain/user"
	"github.com/Phicks-debug/daisii/internal/infrastructure/bedrock"
	"github.com/Phicks-debug/daisii/internal/infrastructure/cache"
	"github.com/Phicks-debug/daisii/internal/infrastructure/database"
	_ "github.com/Phicks-debug/daisii/internal/infrastructure/database/dbschema"
	"github.com/Phicks-debug/daisii/internal/infrastructure/database/repository/userrepo"
	"github.com/Phicks-debug/daisii/internal/infrastructure/dynamo"
	"github.com/Phicks-debug/daisii/internal/infrastructure/logger"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver/handlers/authhandler"
	"github.com/Phicks-debug/daisii/internal/interfaces/httpserver/handlers/chathandler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.GetLogger()
		fallback.Fatal().Err(err).Msg("load config")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fallback := logger.GetLogger()
		fallback.Fatal().Err(err).Msg("configure logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to redis")
	}
	defer redisCache.Close()

	dynamoClient, err := dynamo.NewClient(ctx, cfg.DynamoDBRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("create dynamodb client")
	}
	historyRepo := dynamo.NewHistoryRepository(dynamoClient, cfg.DynamoDBTable)

	invoker, err := bedrock.New(ctx, cfg.BedrockRegion)
	if err != nil {
		log.Fatal().Err(err).Msg("create bedrock client")
	}

	sessions, err := auth.NewSessionService(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("configure session service")
	}

	historyStore := chat.NewHistoryStore(redisCache, historyRepo, cfg.CacheTTL, log)
	chatService := chat.NewService(historyStore, invoker, log)
	userService := user.NewService(userrepo.NewUserGormRepository(db))

	server := httpserver.NewHttpServer(
		cfg,
		sessions,
		authhandler.NewAuthHandler(userService, sessions, cfg.TokenExpiry, log),
		chathandler.NewChatHandler(chatService, log),
		log,
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return server.Run(egCtx)
	})

	log.Info().Int("port", cfg.HTTPPort).Msg("daisii gateway started")
	err = eg.Wait()

	// let queued durable history writes finish before exit
	historyStore.Wait()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("daisii gateway stopped")
}
