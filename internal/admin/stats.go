package admin

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/db"
)

// GET /admin/stats
func Stats(c echo.Context) error {
	ctx := context.Background()

	var profiles, jobs, proposals, notifications int
	var openJobs, inProgressJobs, completedJobs int

	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&profiles)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&jobs)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM proposals`).Scan(&proposals)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&notifications)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE status = 'open'`).Scan(&openJobs)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE status = 'in-progress'`).Scan(&inProgressJobs)
	_ = db.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE status = 'completed'`).Scan(&completedJobs)

	return c.JSON(http.StatusOK, echo.Map{
		"profiles":      profiles,
		"jobs":          jobs,
		"proposals":     proposals,
		"notifications": notifications,
		"jobs_by_status": echo.Map{
			"open":        openJobs,
			"in-progress": inProgressJobs,
			"completed":   completedJobs,
		},
	})
}
