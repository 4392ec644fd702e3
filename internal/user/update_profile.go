package user

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/db"
)

type UpdateProfileRequest struct {
	FullName   string `json:"full_name"`
	University string `json:"university"`
	Bio        string `json:"bio"`
	AvatarURL  string `json:"avatar_url"`
}

// PATCH /user/profile
func UpdateProfile(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or missing token"})
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	query := `
		UPDATE profiles
		SET full_name = COALESCE(NULLIF($1, ''), full_name),
		    university = COALESCE(NULLIF($2, ''), university),
		    bio = COALESCE(NULLIF($3, ''), bio),
		    avatar_url = COALESCE(NULLIF($4, ''), avatar_url)
		WHERE id = $5
	`
	_, err := db.Conn.Exec(c.Request().Context(), query, req.FullName, req.University, req.Bio, req.AvatarURL, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "profile updated successfully",
	})
}
