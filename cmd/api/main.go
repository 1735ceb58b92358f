package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cloudlab-api/internal/auth"
	"github.com/noah-isme/cloudlab-api/internal/config"
	"github.com/noah-isme/cloudlab-api/internal/database"
	"github.com/noah-isme/cloudlab-api/internal/grading"
	"github.com/noah-isme/cloudlab-api/internal/handler"
	"github.com/noah-isme/cloudlab-api/internal/middleware"
	"github.com/noah-isme/cloudlab-api/internal/repository"
	"github.com/noah-isme/cloudlab-api/internal/router"
	"github.com/noah-isme/cloudlab-api/internal/service"
	"github.com/noah-isme/cloudlab-api/pkg/ai"
	cloud "github.com/noah-isme/cloudlab-api/pkg/cloudinary"
	"github.com/noah-isme/cloudlab-api/pkg/kma"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("%v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, observation events disabled")
		} else {
			defer natsConn.Drain()
		}
	}

	var storage service.FileStorage
	cloudCfg := cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
		Tags:      []string{"cloudlab", "observation"},
	}
	if cloudCfg.Enabled() {
		uploader, err := cloud.New(cloudCfg, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = uploader
	} else {
		logger.Info().Msg("cloudinary not configured, data URI images are stored inline")
	}

	judge := buildJudge(cfg, logger)

	var nowcasts service.NowcastProvider
	if cfg.KMAAPIKey != "" {
		client, err := kma.NewClient(kma.Config{
			APIKey:  cfg.KMAAPIKey,
			BaseURL: cfg.KMABaseURL,
			Logger:  logger,
		})
		if err != nil {
			log.Fatalf("failed to create kma client: %v", err)
		}
		nowcasts = client
	} else {
		logger.Warn().Msg("kma api key missing, weather lookups will fail")
	}

	seed := cfg.DemoSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	observationRepo := repository.NewObservationRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	analysisStore := service.NewRedisAnalysisStore(redisClient, cfg.AnalysisTTL)
	statsService := service.NewStatsService(observationRepo, redisClient, cfg.StatsCacheTTL, logger)
	analysisService := service.NewAnalysisService(judge, analysisStore, grading.NewSyntheticGenerator(seed), cfg.MatchMode, validate, logger)
	imageService := service.NewImageService(storage, service.DefaultMaxImageMB, logger)
	observationService := service.NewObservationService(observationRepo, analysisStore, imageService, statsService, natsConn, cfg.MatchMode, validate, logger)
	profileService := service.NewProfileService(profileRepo, validate, logger)
	adminUserService := service.NewAdminUserService(profileRepo, observationRepo, validate, logger)
	weatherService := service.NewWeatherService(nowcasts, redisClient, cfg.WeatherCacheTTL, clockwork.NewRealClock(), validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    15 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AnalysisHandler:    handler.NewAnalysisHandler(analysisService, logger),
		ObservationHandler: handler.NewObservationHandler(observationService, logger),
		StatsHandler:       handler.NewStatsHandler(statsService, logger),
		ProfileHandler:     handler.NewProfileHandler(profileService, logger),
		WeatherHandler:     handler.NewWeatherHandler(weatherService, logger),
		AdminUserHandler:   handler.NewAdminUserHandler(adminUserService, logger),
		HealthProbes: []handler.HealthProbe{
			{Name: "database", Check: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}},
			{Name: "redis", Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}},
		},
		JWTMiddleware: middleware.JWTProtected(cfg.JWTSecret, auth.NewAdminPolicy(cfg.AdminEmails)),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// buildJudge returns nil when the selected provider has no key; analyses then
// fail with a retry message and demo mode keeps working.
func buildJudge(cfg config.Config, logger zerolog.Logger) ai.Judge {
	switch cfg.AIProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			break
		}
		judge, err := ai.NewAnthropicJudge(ai.AnthropicConfig{APIKey: cfg.AnthropicAPIKey, Model: cfg.AIModel, Logger: logger})
		if err != nil {
			log.Fatalf("failed to create anthropic judge: %v", err)
		}
		return judge
	default:
		if cfg.OpenAIAPIKey == "" {
			break
		}
		judge, err := ai.NewOpenAIJudge(ai.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.AIModel, Temperature: 0.2, Logger: logger})
		if err != nil {
			log.Fatalf("failed to create openai judge: %v", err)
		}
		return judge
	}

	logger.Warn().Str("provider", cfg.AIProvider).Msg("vision provider api key missing, only demo analyses are available")
	return nil
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
