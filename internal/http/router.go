package http

import (
	"log/slog"

	"github.com/geocoder89/careercounsel/internal/ai"
	"github.com/geocoder89/careercounsel/internal/auth"
	"github.com/geocoder89/careercounsel/internal/cache"
	"github.com/geocoder89/careercounsel/internal/config"
	"github.com/geocoder89/careercounsel/internal/http/handlers"
	"github.com/geocoder89/careercounsel/internal/http/middlewares"
	"github.com/geocoder89/careercounsel/internal/observability"
	"github.com/geocoder89/careercounsel/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the route layer needs. Nil Prom, Gatherer, Limiter or
// GapCache switches the matching feature off.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Store    store.Store
	Sessions *auth.Manager
	Accounts handlers.AccountService
	Profiles handlers.ProfileService
	Gateway  ai.Gateway
	Notifier handlers.Notifier
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	Limiter  *limiter.Limiter
	GapCache *cache.Cache[ai.Gap]
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	if d.Config.OtelEnabled {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))
	if d.Config.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	}
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.Sessions(d.Sessions))
	r.Use(middlewares.RequestLogger(d.Log))

	// health
	h := handlers.NewHealthHandler(d.Store.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Wire up handlers
	authHandler := handlers.NewAuthHandler(d.Accounts, d.Sessions, d.Notifier, d.Log)
	pagesHandler := handlers.NewPagesHandler(d.Sessions, d.Profiles, d.Store.Projects, d.Store.Enrollments, d.Log)
	goalsHandler := handlers.NewGoalsHandler(d.Sessions, d.Profiles, d.Notifier, d.Log)
	counselorHandler := handlers.NewCounselorHandler(d.Sessions, d.Profiles, d.Gateway, d.Log).WithGapCache(d.GapCache)
	adminHandler := handlers.NewAdminHandler(d.Sessions, d.Accounts, d.Store.Projects, d.Log)

	// public pages
	r.GET("/", pagesHandler.Index)
	r.GET("/about", pagesHandler.About)
	r.GET("/signup", authHandler.SignupPage)
	r.GET("/login", authHandler.LoginPage)
	r.GET("/logout", authHandler.Logout)

	// credential posts are rate limited per client IP
	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if d.Limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{middlewares.RateLimit(d.Limiter), h}
	}
	r.POST("/signup", limited(authHandler.Signup)...)
	r.POST("/login", limited(authHandler.Login)...)

	// student pages
	student := r.Group("/")
	student.Use(middlewares.RequireLogin(d.Sessions))
	{
		student.GET("/home", pagesHandler.Home)
		student.GET("/setup-goal", goalsHandler.SetupGoalPage)
		student.POST("/setup-goal", goalsHandler.SetupGoal)
		student.GET("/dashboard", counselorHandler.Dashboard)
		student.POST("/generate-roadmap", counselorHandler.GenerateRoadmap)
		student.POST("/api/chat", middlewares.RequireJSON(), counselorHandler.Chat)
	}

	// admin pages
	admin := r.Group("/")
	admin.Use(middlewares.RequireAdmin(d.Sessions))
	{
		admin.GET("/admin-dashboard", adminHandler.Dashboard)
		admin.GET("/admin/dashboard", adminHandler.Dashboard)
		admin.GET("/admin/create-project", adminHandler.CreateProjectPage)
		admin.POST("/admin/create-project", adminHandler.CreateProject)
	}

	return r
}
