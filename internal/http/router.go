// README: HTTP router registration.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"caddy/internal/config"
	"caddy/internal/http/handlers"
	"caddy/internal/http/middleware"
	"caddy/internal/infra"
)

// RouterDeps are the handlers and cross-cutting collaborators the router needs.
type RouterDeps struct {
	Auth     *handlers.AuthHandler
	Profile  *handlers.ProfileHandler
	Shot     *handlers.ShotHandler
	Course   *handlers.CourseHandler
	Location *handlers.LocationHandler
	Caddie   *handlers.CaddieHandler
	Health   *handlers.HealthHandler

	Verifier  infra.TokenVerifier
	RateLimit config.RateLimitConfig
	Logger    *zerolog.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(d.Logger),
		middleware.Recovery(d.Logger),
		middleware.Metrics(),
	)

	r.GET("/health", d.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.RateLimit(d.RateLimit))
	authed := api.Group("", middleware.Auth(d.Verifier))

	api.POST("/auth/register", d.Auth.Register)
	api.POST("/auth/login", d.Auth.Login)
	authed.GET("/auth/me", d.Auth.Me)

	authed.POST("/profiles", d.Profile.Create)
	authed.PUT("/profiles", d.Profile.Update)
	authed.GET("/profiles", d.Profile.Get)
	authed.GET("/clubs", d.Profile.Clubs)

	authed.POST("/shots/recommend", d.Shot.Recommend)
	authed.POST("/shots/recommend/conditions", d.Shot.RecommendConditions)
	authed.POST("/shots/recommend/weather", d.Shot.RecommendWeather)
	authed.POST("/shots", d.Shot.Track)
	authed.GET("/shots", d.Shot.History)

	api.GET("/courses", d.Course.List)
	api.GET("/courses/:id", d.Course.Get)
	authed.POST("/courses", d.Course.Create)
	authed.POST("/courses/import", d.Course.Import)

	api.GET("/locations/closest", d.Location.Closest)
	api.GET("/locations/nearby", d.Location.Nearby)
	authed.POST("/locations", d.Location.Add)

	authed.POST("/caddie/closest", d.Caddie.Closest)
	authed.GET("/caddie/quota", d.Caddie.Quota)

	return r
}
