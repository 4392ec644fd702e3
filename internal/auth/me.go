package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/db"
)

// Me returns the currently authenticated user's profile
func Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var (
		id, email, fullName, role, university, bio string
		avatarURL                                  *string
		createdAt                                  time.Time
	)
	err := db.Conn.QueryRow(context.Background(), `
		SELECT id, email, full_name, role, COALESCE(university, ''), COALESCE(bio, ''), avatar_url, created_at
		FROM profiles WHERE id = $1
	`, userID).Scan(&id, &email, &fullName, &role, &university, &bio, &avatarURL, &createdAt)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":         id,
		"email":      email,
		"full_name":  fullName,
		"role":       role,
		"university": university,
		"bio":        bio,
		"avatar_url": avatarURL,
		"created_at": createdAt.UTC().Format(time.RFC3339),
	})
}
