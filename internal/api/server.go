package api

import (
	"context"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/mintsim/arena-api/docs"
	v1 "github.com/mintsim/arena-api/internal/api/handler/v1"
	"github.com/mintsim/arena-api/internal/api/middleware"
	"github.com/mintsim/arena-api/internal/config"
	"github.com/mintsim/arena-api/internal/db"
	"github.com/mintsim/arena-api/internal/domain"
	"github.com/mintsim/arena-api/internal/metrics"
	"github.com/mintsim/arena-api/internal/repository"
	"github.com/mintsim/arena-api/internal/repository/dao"
	"github.com/mintsim/arena-api/internal/service"
)

type Server struct {
	Config  *config.AppConfig
	Router  *gin.Engine
	Metrics *metrics.Metrics
}

type handlers struct {
	event       *v1.EventHandler
	run         *v1.RunHandler
	leaderboard *v1.LeaderboardHandler
	admin       *v1.AdminHandler
	health      *v1.HealthHandler
}

type repositories struct {
	events   *repository.EventRepository
	runs     *repository.RunRepository
	profiles *repository.ProfileRepository
}

func NewServer(conf *config.AppConfig, gormDB *gorm.DB, m *metrics.Metrics, notifier service.EventNotifier) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		Metrics: m,
	}

	s.MountMiddlewares()

	repos := initRepositories(gormDB)
	adminSvc := service.NewAdminService(repos.profiles, service.NewAdminAllowlist(conf.Auth.AdminEmailAllowlist))
	authenticator := middleware.NewAuthenticator(service.NewIdentityService(conf.Auth, repos.profiles))

	h := handlers{
		event:       s.initEventHandler(repos, notifier),
		run:         s.initRunHandler(repos, adminSvc),
		leaderboard: s.initLeaderboardHandler(repos),
		admin:       s.initAdminHandler(repos, adminSvc),
		health: v1.NewHealthHandler(func(ctx context.Context) error {
			return db.Ping(ctx, gormDB)
		}),
	}
	s.MountHandlers(h, authenticator, adminSvc)

	return s
}

func initRepositories(gormDB *gorm.DB) repositories {
	return repositories{
		events:   repository.NewEventRepository(dao.NewEventDAO(gormDB)),
		runs:     repository.NewRunRepository(dao.NewRunDAO(gormDB)),
		profiles: repository.NewProfileRepository(dao.NewProfileDAO(gormDB)),
	}
}

func (s *Server) initEventHandler(repos repositories, notifier service.EventNotifier) *v1.EventHandler {
	svc := service.NewEventService(repos.events, notifier, s.Config.Events, s.Metrics)
	handler := v1.NewEventHandler(svc)

	return handler
}

func (s *Server) initRunHandler(repos repositories, admins *service.AdminService) *v1.RunHandler {
	svc := service.NewRunService(repos.runs, repos.events, repos.profiles, admins, s.Metrics)
	handler := v1.NewRunHandler(svc)

	return handler
}

func (s *Server) initLeaderboardHandler(repos repositories) *v1.LeaderboardHandler {
	svc := service.NewLeaderboardService(repos.events, repos.runs, repos.profiles, s.Metrics)
	handler := v1.NewLeaderboardHandler(svc)

	return handler
}

func (s *Server) initAdminHandler(repos repositories, admins *service.AdminService) *v1.AdminHandler {
	svc := service.NewAdminLinkService(repos.events, s.Config.Auth, s.Config.Sim, s.Metrics)
	handler := v1.NewAdminHandler(svc, admins)

	return handler
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.RequestLogger(s.Metrics))
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers, authenticator *middleware.Authenticator, admins middleware.AdminAuthorizer) {
	const basePath = "/api"

	public := s.Router.Group(basePath)
	{
		public.GET("/events/public", h.event.HandleListPublic)
		public.GET("/events/:code", h.event.HandleGetEvent)
		public.GET("/events/:code/leaderboard", h.leaderboard.HandleGetLeaderboard)
		public.GET("/admin/validate-token", h.admin.HandleValidateToken)
	}

	runs := s.Router.Group(basePath+"/runs", authenticator.RequireIdentity())
	{
		runs.POST("/create", h.run.HandleCreateRun)
		runs.POST("/submit", h.run.HandleSubmitResult)
		runs.GET("/history", h.run.HandleGetHistory)
		runs.GET("/:runID", h.run.HandleGetRun)
	}

	s.Router.GET(basePath+"/admin/me", authenticator.RequireIdentity(), h.admin.HandleMe)

	admin := s.Router.Group(basePath+"/admin", authenticator.RequireIdentity(), authenticator.RequireAdmin(admins))
	{
		admin.GET("/events", h.event.HandleListEvents)
		admin.POST("/events", h.event.HandleCreateEvent)
		admin.POST("/events/:code/state", h.event.HandleTransition)
		admin.POST("/events/:code/start", h.event.HandleAction(domain.ActionStart))
		admin.POST("/events/:code/pause", h.event.HandleAction(domain.ActionPause))
		admin.POST("/events/:code/resume", h.event.HandleAction(domain.ActionResume))
		admin.POST("/events/:code/end", h.event.HandleAction(domain.ActionEnd))
		admin.GET("/events/:code/sim-admin-link", h.admin.HandleGetAdminLink)
		admin.POST("/sim-admin-link", h.admin.HandleCreateAdminLink)
	}

	s.Router.GET("/health", h.health.HandleHealthcheck)
	s.Router.GET("/readyz", h.health.HandleReadiness)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Arena API"
	docs.SwaggerInfo.Description = "Trading simulation competitions: events, runs and leaderboards."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
