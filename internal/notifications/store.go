package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campusgig/campusgig/internal/db"
	"github.com/campusgig/campusgig/internal/metrics"
)

// Queryer is satisfied by db.Conn and by pgx.Tx, so lifecycle handlers can
// create notifications inside the same transaction as the state change they
// announce.
type Queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Create persists a notification for userID. An empty link is stored as
// NULL. Callers broadcast the returned record after their transaction
// commits, never before.
func Create(ctx context.Context, q Queryer, userID, title, message, link string) (Notification, error) {
	n := Notification{
		ID:      uuid.New().String(),
		UserID:  userID,
		Title:   title,
		Message: message,
	}
	var linkArg *string
	if link != "" {
		linkArg = &link
		n.Link = &link
	}

	err := q.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, title, message, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		n.ID, userID, title, message, linkArg,
	).Scan(&n.CreatedAt)
	if err != nil {
		return Notification{}, err
	}

	metrics.NotificationsDispatched.Inc()
	return n, nil
}

// fetchRecent loads the user's newest notifications, most recent first.
func fetchRecent(ctx context.Context, userID string, limit int) ([]Notification, error) {
	rows, err := db.Conn.Query(ctx, `
		SELECT id, user_id, title, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}
