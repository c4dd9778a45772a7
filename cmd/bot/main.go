package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"giveaway-bot-backend/docs"
	"giveaway-bot-backend/internal/common/cache"
	"giveaway-bot-backend/internal/common/config"
	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/common/middleware"
	"giveaway-bot-backend/internal/features/giveaway/allocation"
	"giveaway-bot-backend/internal/features/giveaway/delivery/discord"
	giveawayhttp "giveaway-bot-backend/internal/features/giveaway/delivery/http"
	"giveaway-bot-backend/internal/features/giveaway/repository"
	giveawayRepo "giveaway-bot-backend/internal/features/giveaway/repository/postgres"
	redisRepo "giveaway-bot-backend/internal/features/giveaway/repository/redis"
	giveawayService "giveaway-bot-backend/internal/features/giveaway/service"
	"giveaway-bot-backend/internal/platform/postgres"
	"giveaway-bot-backend/internal/platform/redis"
	"giveaway-bot-backend/internal/workers"
)

const serviceName = "giveaway-bot-backend"

// @title           Giveaway Bot Ops API
// @version         1.0
// @description     Read-only view of giveaways plus operator actions for settlement.

// @BasePath  /api/v1

// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token

// @tag.name giveaways
// @tag.description Giveaway state, participants and committed winners

// @tag.name admin
// @tag.description Operator actions: forced settlement and republishing results

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	logger.InitWithFile(serviceName, cfg.Debug, logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	logger.Info().
		Str("version", "1.0.0").
		Bool("debug", cfg.Debug).
		Msg("Starting Giveaway Bot Backend")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем базу данных
	postgresClient, err := postgres.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer postgresClient.Close()

	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(ctx, postgresClient.Pool()); err != nil {
			logger.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	logger.Info().Msg("Database connection established")

	// Redis опционален: без него остаётся только блокировка строки и нет очереди повторов
	var (
		redisClient *redis.Client
		lock        repository.SettlementLock
		queue       giveawayService.AnnouncementQueue
		stream      *workers.AnnouncementStream
	)
	if cfg.Redis.Enabled {
		redisClient, err = redis.Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		lock = redisRepo.NewSettlementLock(redisClient.Client)
		stream = workers.NewAnnouncementStream(redisClient.Client, workers.StreamConfig{
			Stream:      cfg.Announcements.Stream,
			Group:       cfg.Announcements.Group,
			Consumer:    cfg.Announcements.Consumer,
			MaxAttempts: cfg.Announcements.MaxAttempts,
			Backoff:     cfg.Announcements.Backoff,
		})
		queue = stream

		logger.Info().Str("addr", cfg.RedisAddr()).Msg("Redis connection established")
	} else {
		logger.Warn().Msg("Redis disabled, announcement retries are not persisted")
	}

	// Инициализируем репозитории
	var giveawayRepository repository.GiveawayRepository = giveawayRepo.NewPostgresRepository(postgresClient.Pool())
	if redisClient != nil {
		// Итоги розыгрыша неизменны после завершения, кэшируем их
		giveawayRepository = redisRepo.NewCachedRepository(giveawayRepository, cache.NewCacheService(redisClient.Client), cfg.Redis.ResultsTTL)
	}

	// Discord сессия
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Discord session")
	}
	announcer := discord.NewAnnouncer(session)

	// Инициализируем сервисы
	giveawaySvc := giveawayService.NewGiveawayService(giveawayRepository, announcer)
	settlementSvc := giveawayService.NewSettlementService(
		giveawayRepository,
		lock,
		allocation.New(),
		announcer,
		queue,
		giveawayService.SettlementConfig{
			MaxRetries:      cfg.Settlement.MaxRetries,
			RetryDelay:      cfg.Settlement.RetryDelay,
			LockTTL:         cfg.Settlement.LockTTL,
			AnnounceTimeout: cfg.Settlement.AnnounceTimeout,
		},
	)

	logger.Info().Msg("Services initialized")

	// Запускаем бота
	handler := discord.NewInteractionHandler(session, giveawaySvc, settlementSvc)
	bot := discord.NewBot(session, handler, cfg.Discord.GuildIDs)
	if err := bot.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start Discord bot")
	}

	// Воркер повторных анонсов
	workerDone := make(chan struct{})
	if stream != nil {
		worker := workers.NewAnnouncementWorker(stream, settlementSvc)
		go func() {
			defer close(workerDone)
			worker.Start(ctx)
		}()
	} else {
		close(workerDone)
	}

	var server *http.Server
	if cfg.Server.Enabled {
		server = newServer(cfg, giveawaySvc, settlementSvc, postgresClient, redisClient)

		// Запускаем сервер в горутине
		go func() {
			logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal().Err(err).Msg("Failed to start server")
			}
		}()
	}

	// Ждем сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down...")

	// Сначала перестаём принимать взаимодействия, потом останавливаем воркер
	if err := bot.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to close Discord session")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server forced to shutdown")
		}
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		logger.Warn().Msg("Announcement worker did not stop in time")
	}

	logger.Info().Msg("Server exited")
}

func newServer(
	cfg *config.Config,
	giveawaySvc giveawayService.GiveawayService,
	settlementSvc giveawayService.SettlementService,
	postgresClient *postgres.Client,
	redisClient *redis.Client,
) *http.Server {
	// Настраиваем Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Добавляем middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(gin.Recovery())

	// Настраиваем CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", middleware.AdminTokenHeader}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, cfg, giveawaySvc, settlementSvc, postgresClient, redisClient)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	giveawaySvc giveawayService.GiveawayService,
	settlementSvc giveawayService.SettlementService,
	postgresClient *postgres.Client,
	redisClient *redis.Client,
) {
	v1 := router.Group(docs.SwaggerInfo.BasePath)
	giveawayhttp.NewGiveawayHandler(giveawaySvc, settlementSvc, cfg.Server.AdminToken).RegisterRoutes(v1)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	// Liveness probe
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Readiness probe
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Проверка Postgres
		if err := postgresClient.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "postgres unavailable",
				"details": err.Error(),
			})
			return
		}

		// Проверка Redis
		if redisClient != nil {
			if err := redisClient.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "redis unavailable",
					"details": err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})
}
