package server

import (
	"context"
	"log/slog"
	"time"

	_ "quilog/docs" // swagger docs
	"quilog/internal/config"
	"quilog/internal/engagement"
	"quilog/internal/featureflags"
	"quilog/internal/middleware"
	"quilog/internal/models"
	"quilog/internal/notifications"
	"quilog/internal/observability"
	"quilog/internal/repository"
	"quilog/internal/service"
	"quilog/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	config         *config.Config
	store          *repository.Store
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	verifier       *middleware.TokenVerifier
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	events         *feedEvents
	feed           *engagement.State
	featureFlags   *featureflags.Manager
	sessions       *session.Resolver
	postService    *service.PostService
	profileService *service.ProfileService
	draftService   *service.DraftService
}

// NewServer wires the services over store. redisClient may be nil, in
// which case events go straight to the local hub and drafts are disabled.
func NewServer(cfg *config.Config, store *repository.Store, redisClient *redis.Client) *Server {
	flags := featureflags.NewManager(cfg.FeatureFlags)
	hub := notifications.NewHub()
	notifier := notifications.NewNotifier(redisClient)

	s := &Server{
		config:         cfg,
		store:          store,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("quilog-api"),
		verifier:       middleware.NewTokenVerifier(cfg),
		notifier:       notifier,
		hub:            hub,
		events:         newFeedEvents(hub, notifier),
		feed:           engagement.NewState(),
		featureFlags:   flags,
		sessions:       session.NewResolver(store.Users, time.Duration(cfg.SessionTTLMin)*time.Minute),
		profileService: service.NewProfileService(store.Users),
		draftService:   service.NewDraftService(time.Duration(cfg.DraftTTLHours) * time.Hour),
	}
	s.postService = service.NewPostService(store, service.PostServiceConfig{
		Fanout:          cfg.EngagementFanout,
		Listener:        engagement.Listeners{s.feed, s.events},
		OptimisticLikes: flags.For(featureflags.OptimisticLikes),
		Drafts:          s.draftService,
		State:           s.feed,
		OnCreate:        s.events.PostCreated,
	})
	return s
}

func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())

	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api.Get("/swagger/*", swagger.HandlerDefault)

	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/:id/engagement", s.GetEngagement)
	publicPosts.Get("/:id", s.GetPost)

	publicUsers := api.Group("/users")
	publicUsers.Get("/", s.ListUsers)
	publicUsers.Get("/:id/posts", s.GetUserPosts)
	publicUsers.Get("/:id", s.GetUserProfile)

	protected := api.Group("", middleware.AuthRequired(s.verifier), s.withSession)

	posts := protected.Group("/posts")
	limits := middleware.NewRateLimiter(s.redis, s.config.Env)
	posts.Post("/", limits.Handler(middleware.RateRule{
		Name: "create_post", Limit: 5, Window: 5 * time.Minute}), s.CreatePost)
	posts.Put("/:id", s.UpdatePost)
	posts.Post("/:id/like", limits.Handler(middleware.RateRule{
		Name: "toggle_like", Limit: 60, Window: time.Minute}), s.ToggleLike)
	posts.Post("/:id/comments", limits.Handler(middleware.RateRule{
		Name: "create_comment", Limit: 10, Window: time.Minute}), s.CreateComment)

	me := protected.Group("/me")
	me.Get("/", s.GetMe)
	me.Put("/profile", s.UpdateMyProfile)
	me.Put("/account", s.UpdateMyAccount)
	me.Get("/draft", s.GetDraft)
	me.Put("/draft", s.SaveDraft)
	me.Delete("/draft", s.DiscardDraft)

	protected.Get("/feature-flags", s.GetFeatureFlags)
	protected.Get("/ws", s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// sessions and drafts degrade without Redis, so it does not gate readiness
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overallStatus,
		"backend": s.store.Backend,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName: "Quilog API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			observability.GlobalLogger.ErrorContext(c.UserContext(), "unhandled request error",
				slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.notifier.Enabled() {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				observability.GlobalLogger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()),
					slog.String("error", err.Error()))
			}
		}()
	}

	observability.GlobalLogger.Info("server starting",
		slog.String("port", s.config.Port),
		slog.String("backend", s.store.Backend))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the listener and closes websocket connections. The store
// and Redis client belong to the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.GlobalLogger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		observability.GlobalLogger.Error("error shutting down hub",
			slog.String("hub", s.hub.Name()),
			slog.String("error", err.Error()))
	}

	observability.GlobalLogger.Info("server shutdown complete")
	return nil
}
