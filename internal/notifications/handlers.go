package notifications

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/db"
)

// ListNotifications returns the current user's most recent notifications,
// newest first, plus the exact unread total. The live feed window keeps a
// bounded approximation; the REST surface counts for real.
func ListNotifications(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	limit := FeedWindow
	if l := c.QueryParam("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	items, err := fetchRecent(context.Background(), userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load notifications"})
	}

	var unread int
	if err := db.Conn.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID,
	).Scan(&unread); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to count notifications"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"notifications": items,
		"unread_count":  unread,
	})
}

// MarkNotificationRead marks a specific notification as read. Calling it
// again on an already read notification is a no-op success.
func MarkNotificationRead(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	nid := c.Param("id")
	if nid == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing notification id"})
	}

	var n Notification
	err := db.Conn.QueryRow(context.Background(), `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2 AND is_read = FALSE
		RETURNING id, user_id, title, message, link, is_read, created_at`,
		nid, userID,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Either already read or not this user's notification
			var exists bool
			if qErr := db.Conn.QueryRow(context.Background(),
				`SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1 AND user_id = $2)`, nid, userID,
			).Scan(&exists); qErr == nil && exists {
				return c.JSON(http.StatusOK, echo.Map{"message": "already read"})
			}
			return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update"})
	}

	// Push only after the write succeeded
	PublishUpdate(n)

	return c.JSON(http.StatusOK, echo.Map{"message": "marked read"})
}

// MarkAllNotificationsRead marks every unread notification of the user read.
func MarkAllNotificationsRead(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ct, err := db.Conn.Exec(context.Background(),
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update"})
	}

	if ct.RowsAffected() > 0 {
		PublishReadAll(userID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "all notifications marked read",
		"updated": ct.RowsAffected(),
	})
}
