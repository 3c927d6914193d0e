// README: Entry point; loads config, wires stores and services, serves the HTTP API until signalled.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"caddy/internal/ai"
	"caddy/internal/config"
	httptransport "caddy/internal/http"
	"caddy/internal/http/handlers"
	"caddy/internal/infra"
	"caddy/internal/maps"
	"caddy/internal/modules/aiusage"
	"caddy/internal/modules/auth"
	"caddy/internal/modules/course"
	"caddy/internal/modules/location"
	"caddy/internal/modules/profile"
	"caddy/internal/modules/recommend"
	"caddy/internal/service"
	"caddy/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("load config")
	}
	logger := infra.NewLogger(cfg.Logging, "caddy-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	tokens, err := infra.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("jwt manager")
	}

	authSvc := auth.NewService(auth.NewStore(dbPool), tokens, logger)
	profileSvc := profile.NewService(profile.NewStore(dbPool), logger)
	locationSvc := location.NewService(location.NewStore(dbPool, redisClient), logger)
	courseSvc := course.NewService(course.NewStore(dbPool), locationSvc, logger)
	usageSvc := aiusage.NewService(aiusage.NewStore(dbPool), cfg.AI.MonthlyTokens)

	wx := weather.NewClient(cfg.Weather, weather.NewRedisCache(redisClient), logger)

	var elevation recommend.ElevationSource
	if cfg.Maps.APIKey != "" {
		es, err := maps.NewElevationService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("maps client")
		}
		elevation = es
	} else {
		logger.Warn().Msg("maps api key not set; elevation lookups disabled")
	}

	llm, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.AI.Provider).Msg("llm disabled; caddie tips use the plain template")
	} else {
		logger.Info().Str("provider", llm.Name()).Msg("llm ready")
		if c, ok := llm.(io.Closer); ok {
			defer c.Close()
		}
	}

	recommendSvc := recommend.NewService(profileSvc, wx, elevation, logger)
	caddie := service.NewCaddie(locationSvc, usageSvc, llm, logger)

	health := handlers.NewHealthHandler(map[string]handlers.Check{
		"postgres": func(ctx context.Context) error { return dbPool.Ping(ctx) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}, logger)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Auth:      handlers.NewAuthHandler(authSvc, logger),
		Profile:   handlers.NewProfileHandler(profileSvc, logger),
		Shot:      handlers.NewShotHandler(recommendSvc, profileSvc, logger),
		Course:    handlers.NewCourseHandler(courseSvc, logger),
		Location:  handlers.NewLocationHandler(locationSvc, logger),
		Caddie:    handlers.NewCaddieHandler(caddie, usageSvc, logger),
		Health:    health,
		Verifier:  tokens,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	})

	go locationSvc.RunReindexScheduler(ctx, cfg.Geo.ReindexInterval)

	if err := httptransport.NewServer(cfg.HTTP, router, logger).Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server")
		os.Exit(1)
	}
	logger.Info().Msg("bye")
}
