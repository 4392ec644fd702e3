package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/campusgig/campusgig/internal/alerts"
	"github.com/campusgig/campusgig/internal/db"
	"github.com/campusgig/campusgig/internal/metrics"
	appmw "github.com/campusgig/campusgig/internal/middleware"
	// handlers
	admin "github.com/campusgig/campusgig/internal/admin"
	auth "github.com/campusgig/campusgig/internal/auth"
	jobs "github.com/campusgig/campusgig/internal/jobs"
	notif "github.com/campusgig/campusgig/internal/notifications"
	proposals "github.com/campusgig/campusgig/internal/proposals"
	user "github.com/campusgig/campusgig/internal/user"
)

func main() {
	_ = godotenv.Load()

	// Init subsystems
	db.Init()
	defer db.Close()
	alerts.Init()
	defer alerts.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Health and metrics
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", metrics.Handler())

	// Public auth routes, rate limited per IP
	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(10)))
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		limiter := appmw.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: addr}))
		authGroup.Use(appmw.RateLimitByIP(limiter, 30, time.Minute))
	}
	authGroup.POST("/signup", auth.Signup)
	authGroup.POST("/login", auth.Login)
	authGroup.POST("/password/forgot", auth.RequestPasswordReset)
	authGroup.POST("/password/reset", auth.ResetPassword)
	authGroup.POST("/bootstrap-admin", auth.BootstrapAdmin)

	// Public discovery
	e.GET("/jobs", jobs.ListJobs)
	e.GET("/jobs/:id", jobs.GetJob)
	e.GET("/user/:id/profile", user.GetPublicProfile)

	// Authenticated group
	g := e.Group("")
	g.Use(appmw.JWTMiddleware)

	// Me and profile update
	g.GET("/me", auth.Me)
	g.GET("/auth/me", auth.Me)
	g.PATCH("/user/profile", user.UpdateProfile)

	// Jobs
	g.POST("/jobs", jobs.CreateJob, appmw.RequireRoles("client"))
	g.DELETE("/jobs/:id", jobs.DeleteJob)
	g.GET("/jobs/mine", jobs.GetMyJobs)

	// Proposals
	g.POST("/jobs/:id/proposals", proposals.SubmitProposal, appmw.RequireRoles("student"))
	g.GET("/jobs/:id/proposals", proposals.ListForJob)
	g.GET("/jobs/:id/proposals/me", proposals.HasApplied)
	g.POST("/proposals/:id/accept", proposals.AcceptProposal)
	g.POST("/proposals/:id/withdraw", proposals.WithdrawProposal)
	g.GET("/proposals/mine", proposals.GetMyProposals)

	// Notifications
	g.GET("/notifications", notif.ListNotifications)
	g.POST("/notifications/:id/read", notif.MarkNotificationRead)
	g.POST("/notifications/read-all", notif.MarkAllNotificationsRead)
	g.GET("/notifications/ws", notif.StreamNotifications)

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(appmw.JWTMiddleware)
	adminGroup.Use(appmw.AdminGuard)
	adminGroup.GET("/stats", admin.Stats)
	adminGroup.GET("/users", admin.ListUsers)
	adminGroup.POST("/users/:id/suspend", admin.SuspendUser)
	adminGroup.POST("/users/:id/activate", admin.ActivateUser)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("API server listening on :%s", port)
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
