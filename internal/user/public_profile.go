package user

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/db"
)

// GET /user/:id/profile
func GetPublicProfile(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing user id"})
	}

	var (
		p         Profile
		avatarURL *string
	)
	err := db.Conn.QueryRow(context.Background(), `
		SELECT id, full_name, role, COALESCE(university, ''), COALESCE(bio, ''), avatar_url, created_at
		FROM profiles
		WHERE id = $1`, userID,
	).Scan(&p.ID, &p.FullName, &p.Role, &p.University, &p.Bio, &avatarURL, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch profile"})
	}
	if avatarURL != nil {
		p.AvatarURL = *avatarURL
	}

	// Email stays private; the public view carries identity fields only
	return c.JSON(http.StatusOK, p)
}
