package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rpg-creator/internal/catalog"
	"rpg-creator/internal/chat"
	"rpg-creator/internal/config"
	"rpg-creator/internal/handler"
	"rpg-creator/internal/i18n"
	"rpg-creator/internal/playback"
	"rpg-creator/internal/realtime"
	"rpg-creator/internal/session"
	"rpg-creator/internal/studio"
	"rpg-creator/internal/wallet"
	"rpg-creator/shared/authutils"
	sharedDatabase "rpg-creator/shared/database"
	"rpg-creator/shared/interfaces"
	sharedLogger "rpg-creator/shared/logger"
	"rpg-creator/shared/messaging"
	sharedMiddleware "rpg-creator/shared/middleware"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	log.Println("Запуск RPG Creator...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	ctx := context.Background()

	storage, closeStorage, err := setupStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Не удалось подключить хранилище устройств", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer closeStorage()
	logger.Info("Хранилище устройств готово", zap.String("backend", cfg.StorageBackend))

	publisher, err := setupPublisher(cfg, logger)
	if err != nil {
		logger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
	}
	defer func() { _ = publisher.Close() }()

	tokens, err := authutils.NewDeviceTokenManager(cfg.DeviceTokenSecret, cfg.DeviceTokenTTL, logger)
	if err != nil {
		logger.Fatal("Не удалось создать менеджер токенов устройств", zap.Error(err))
	}

	generator, err := chat.NewGenerator(chat.GeneratorConfig{
		Provider: cfg.AIProvider,
		Endpoint: cfg.AIEndpoint,
		APIKey:   cfg.AIAPIKey,
		BaseURL:  cfg.AIBaseURL,
		Model:    cfg.AIModel,
		Timeout:  cfg.AITimeout,
	}, logger)
	if err != nil {
		logger.Fatal("Не удалось создать генератор текста", zap.Error(err))
	}

	languages := i18n.NewLanguages(i18n.MustLoadEmbedded(), storage, logger)
	sessions := session.NewManager(storage, session.Options{
		Latency:  cfg.AuthLatency,
		HashCost: cfg.PasswordHashCost,
		IdleTTL:  cfg.SessionIdleTTL,
	}, logger)
	games := studio.NewGameRepository(storage)
	library := playback.MustLoadLibrary()

	ownerOf := func(ctx context.Context, deviceID string) string {
		store, err := sessions.For(ctx, deviceID)
		if err != nil {
			return ""
		}
		if identity := store.Current(); identity != nil {
			return identity.ID
		}
		return ""
	}
	studioService := studio.NewService(storage, games, languages, publisher, ownerOf, logger)
	playbackService := playback.NewService(
		playback.NewEngine(library, playback.NewRandomFallback(nil), cfg.TransitionDelay, logger),
		library,
		games,
		playback.NewSessionRepository(storage),
		logger,
	)
	catalogService, err := catalog.NewService(games, library, languages, logger)
	if err != nil {
		logger.Fatal("Не удалось загрузить данные сообщества", zap.Error(err))
	}
	chatService := chat.NewService(storage, generator, chat.NewTiktokenCounter(cfg.AIModel, logger), logger)

	hub := realtime.NewHub(sessions, languages, logger)
	defer hub.Close()

	var walletRPC wallet.Provider
	if cfg.WalletRPCURL != "" {
		rpcProvider, err := wallet.NewRPCProvider(ctx, cfg.WalletRPCURL, 10*time.Second, logger)
		if err != nil {
			logger.Fatal("Не удалось подключиться к узлу кошелька", zap.Error(err))
		}
		defer rpcProvider.Close()
		walletRPC = rpcProvider
		logger.Info("Wallet RPC provider enabled")
	}

	apiHandler := handler.NewHandler(handler.Deps{
		Tokens:    tokens,
		Languages: languages,
		Sessions:  sessions,
		Studio:    studioService,
		Playback:  playbackService,
		Catalog:   catalogService,
		Chat:      chatService,
		Realtime:  realtime.NewHandler(hub, cfg.CORSAllowedOrigins, logger),
		WalletRPC: walletRPC,
	}, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(sharedMiddleware.EchoZapLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(sharedMiddleware.EchoMetrics())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	apiHandler.RegisterRoutes(e)

	go func() {
		logger.Info("RPG Creator слушает", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска HTTP сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при graceful shutdown Echo", zap.Error(err))
	}
	logger.Info("RPG Creator остановлен")
}

// setupStorage открывает хранилище устройств выбранного типа.
// Возвращаемая функция освобождает соединения.
func setupStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interfaces.DeviceStorage, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return sharedDatabase.NewRedisDeviceStorage(client, cfg.RedisKeyPrefix, logger), func() { _ = client.Close() }, nil

	case config.StoragePostgres:
		pgCfg := cfg.PgConfig()
		if err := sharedDatabase.ApplyMigrations(pgCfg.DSN(), logger); err != nil {
			return nil, nil, err
		}
		pool, err := sharedDatabase.NewPgPool(ctx, pgCfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return sharedDatabase.NewPgDeviceStorage(pool, logger), pool.Close, nil

	case config.StorageSQLite:
		s, err := sharedDatabase.OpenSQLiteDeviceStorage(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	default:
		logger.Warn("Используется хранилище в памяти, данные не переживут перезапуск")
		return sharedDatabase.NewMemoryDeviceStorage(), func() {}, nil
	}
}

// setupPublisher подключается к RabbitMQ или, если URL пуст, только логирует события.
func setupPublisher(cfg *config.Config, logger *zap.Logger) (interfaces.EventPublisher, error) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL не задан, события только логируются")
		return messaging.NewLoggingEventPublisher(logger), nil
	}
	conn, err := messaging.ConnectRabbitMQ(cfg.RabbitMQURL, 5, 2*time.Second, logger)
	if err != nil {
		return nil, err
	}
	publisher, err := messaging.NewRabbitMQEventPublisher(conn, cfg.EventsQueue, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &connPublisher{RabbitMQEventPublisher: publisher, conn: conn}, nil
}

// connPublisher закрывает вместе с публикатором и соединение.
type connPublisher struct {
	*messaging.RabbitMQEventPublisher
	conn interface{ Close() error }
}

func (p *connPublisher) Close() error {
	err := p.RabbitMQEventPublisher.Close()
	if cerr := p.conn.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
