package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/db"
)

type AdminUser struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	University string    `json:"university,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// GET /admin/users
func ListUsers(c echo.Context) error {
	ctx := context.Background()

	rows, err := db.Conn.Query(ctx, `
		SELECT id, full_name, email, role, COALESCE(university, ''), COALESCE(is_active, TRUE), created_at
		FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not fetch users"})
	}
	defer rows.Close()

	var users []AdminUser
	for rows.Next() {
		var u AdminUser
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Role, &u.University, &u.IsActive, &u.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read user record"})
		}
		users = append(users, u)
	}

	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// POST /admin/users/:id/suspend
func SuspendUser(c echo.Context) error {
	return setUserActive(c, false, "user suspended")
}

// POST /admin/users/:id/activate
func ActivateUser(c echo.Context) error {
	return setUserActive(c, true, "user activated")
}

func setUserActive(c echo.Context, active bool, message string) error {
	userID := c.Param("id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing user id"})
	}

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE profiles SET is_active = $1 WHERE id = $2`, active, userID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": message, "user_id": userID})
}
