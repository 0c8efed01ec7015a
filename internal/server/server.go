package server

import (
	"backend-ihiker/internal/achievement"
	"backend-ihiker/internal/auth"
	"backend-ihiker/internal/config"
	"backend-ihiker/internal/db"
	"backend-ihiker/internal/stream"
	"backend-ihiker/internal/tracking"
	"backend-ihiker/internal/weather"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Recorder *tracking.Manager
}

func NewServer(cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     pg,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

// Close pauses live recordings and stops the stream subscription.
func (s *Server) Close() error {
	if s.Recorder != nil {
		s.Recorder.Shutdown()
	}
	return s.Stream.Close()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	var querier db.Querier
	if s.DB != nil {
		querier = s.DB
	}

	authSvc := auth.NewService(s.Cfg.JWTSecret)
	jwtMiddleware := auth.JWTMiddleware(authSvc)

	achievements := achievement.NewService(querier)
	tracks := tracking.NewService(querier, achievements)
	wx := weather.NewClient(s.Cfg.WeatherURL, s.Redis, s.Cfg.WeatherCacheTTL)
	s.Recorder = tracking.NewManager(tracks, s.Stream, wx, tracking.RecorderConfig{
		TickInterval:    s.Cfg.TickInterval,
		MoveThresholdM:  s.Cfg.MoveThresholdM,
		SmoothingWindow: s.Cfg.SmoothingWindow,
		LocationTimeout: s.Cfg.LocationTimeout,
	})

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc)
	achievement.RegisterRoutes(s.App.Group("/achievements"), achievements, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
	tracking.RegisterRoutes(s.App, tracks, s.Recorder, jwtMiddleware)
}
