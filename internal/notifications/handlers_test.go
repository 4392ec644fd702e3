package notifications

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/campusgig/campusgig/internal/db"
)

func newMockConn(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool() error = %v", err)
	}
	prev := db.Conn
	db.Conn = mock
	t.Cleanup(func() {
		db.Conn = prev
		mock.Close()
	})
	return mock
}

func newAuthedContext(t *testing.T, method, target, userID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", userID)
	return c, rec
}

func TestListNotifications(t *testing.T) {
	now := time.Now()

	mock := newMockConn(t)
	rows := pgxmock.NewRows([]string{"id", "user_id", "title", "message", "link", "is_read", "created_at"}).
		AddRow("n-1", "user-1", "New proposal received", "msg", nil, false, now).
		AddRow("n-2", "user-1", "Proposal accepted", "msg", nil, true, now.Add(-time.Minute))
	mock.ExpectQuery(`SELECT id, user_id, title, message, link, is_read, created_at`).
		WithArgs("user-1", FeedWindow).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	c, rec := newAuthedContext(t, http.MethodGet, "/notifications", "user-1")
	if err := ListNotifications(c); err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("ListNotifications() status = %d, want %d", rec.Code, http.StatusOK)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListNotificationsUnauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	if err := ListNotifications(c); err != nil {
		t.Fatalf("ListNotifications() error = %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("ListNotifications() status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		setup      func(mock pgxmock.PgxPoolIface)
		wantStatus int
	}{
		{
			name: "marks unread notification",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "user_id", "title", "message", "link", "is_read", "created_at"}).
					AddRow("n-1", "user-1", "t", "m", nil, true, now)
				mock.ExpectQuery(`UPDATE notifications SET is_read = TRUE`).
					WithArgs("n-1", "user-1").
					WillReturnRows(rows)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "already read is idempotent success",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`UPDATE notifications SET is_read = TRUE`).
					WithArgs("n-1", "user-1").
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("n-1", "user-1").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown notification is not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`UPDATE notifications SET is_read = TRUE`).
					WithArgs("n-1", "user-1").
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("n-1", "user-1").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockConn(t)
			tt.setup(mock)

			c, rec := newAuthedContext(t, http.MethodPost, "/notifications/n-1/read", "user-1")
			c.SetParamNames("id")
			c.SetParamValues("n-1")

			if err := MarkNotificationRead(c); err != nil {
				t.Fatalf("MarkNotificationRead() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("MarkNotificationRead() status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	mock := newMockConn(t)
	mock.ExpectExec(`UPDATE notifications SET is_read = TRUE`).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	c, rec := newAuthedContext(t, http.MethodPost, "/notifications/read-all", "user-1")
	if err := MarkAllNotificationsRead(c); err != nil {
		t.Fatalf("MarkAllNotificationsRead() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("MarkAllNotificationsRead() status = %d, want %d", rec.Code, http.StatusOK)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
