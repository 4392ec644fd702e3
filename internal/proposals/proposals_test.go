package proposals

import (
	"net/http"
	"net/http/httptest"
	"strings"
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

func newProposalContext(t *testing.T, method, target, body, userID, paramID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", userID)
	c.SetParamNames("id")
	c.SetParamValues(paramID)
	return c, rec
}

func jobLookupRows(title, status, clientID, email string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"title", "status", "client_id", "email"}).
		AddRow(title, status, clientID, email)
}

func TestSubmitProposalValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero bid", `{"cover_letter":"hi","bid_amount":0,"estimated_days":3}`},
		{"negative bid", `{"cover_letter":"hi","bid_amount":-5,"estimated_days":3}`},
		{"zero estimated days", `{"cover_letter":"hi","bid_amount":50,"estimated_days":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No expectations: invalid input must never open a transaction
			mock := newMockConn(t)

			c, rec := newProposalContext(t, http.MethodPost, "/jobs/job-1/proposals", tt.body, "student-1", "job-1")
			if err := SubmitProposal(c); err != nil {
				t.Fatalf("SubmitProposal() error = %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("SubmitProposal() status = %d, want %d", rec.Code, http.StatusBadRequest)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unexpected query ran: %v", err)
			}
		})
	}
}

func TestSubmitProposal(t *testing.T) {
	body := `{"cover_letter":"I can do this","bid_amount":80,"estimated_days":5}`

	tests := []struct {
		name       string
		userID     string
		setup      func(mock pgxmock.PgxPoolIface)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "creates pending proposal and notifies owner",
			userID: "student-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT j.title, j.status, j.client_id, p.email`).
					WithArgs("job-1").
					WillReturnRows(jobLookupRows("Design a flyer", "open", "client-1", "owner@uni.edu"))
				mock.ExpectExec(`INSERT INTO proposals`).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectQuery(`INSERT INTO notifications`).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
				mock.ExpectCommit()
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"status":"pending"`,
		},
		{
			name:   "missing job is not found",
			userID: "student-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT j.title, j.status, j.client_id, p.email`).
					WithArgs("job-1").
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectRollback()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "owner cannot bid on own job",
			userID: "client-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT j.title, j.status, j.client_id, p.email`).
					WithArgs("job-1").
					WillReturnRows(jobLookupRows("Design a flyer", "open", "client-1", "owner@uni.edu"))
				mock.ExpectRollback()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "closed job rejects proposals",
			userID: "student-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT j.title, j.status, j.client_id, p.email`).
					WithArgs("job-1").
					WillReturnRows(jobLookupRows("Design a flyer", "in-progress", "client-1", "owner@uni.edu"))
				mock.ExpectRollback()
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "second proposal from same student conflicts",
			userID: "student-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT j.title, j.status, j.client_id, p.email`).
					WithArgs("job-1").
					WillReturnRows(jobLookupRows("Design a flyer", "open", "client-1", "owner@uni.edu"))
				mock.ExpectExec(`INSERT INTO proposals`).
					WillReturnResult(pgxmock.NewResult("INSERT", 0))
				mock.ExpectRollback()
			},
			wantStatus: http.StatusConflict,
			wantBody:   "already applied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockConn(t)
			tt.setup(mock)

			c, rec := newProposalContext(t, http.MethodPost, "/jobs/job-1/proposals", body, tt.userID, "job-1")
			if err := SubmitProposal(c); err != nil {
				t.Fatalf("SubmitProposal() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("SubmitProposal() status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("SubmitProposal() body missing %q: %s", tt.wantBody, rec.Body.String())
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func acceptLookupRows(jobID, title, jobStatus, clientID, propStatus, freelancerID, email string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"job_id", "title", "status", "client_id", "p_status", "freelancer_id", "email"}).
		AddRow(jobID, title, jobStatus, clientID, propStatus, freelancerID, email)
}

func TestAcceptProposal(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		setup      func(mock pgxmock.PgxPoolIface)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "accepts winner, closes job, rejects siblings",
			userID: "client-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT p.job_id, j.title, j.status`).
					WithArgs("prop-1").
					WillReturnRows(acceptLookupRows("job-1", "Design a flyer", "open", "client-1", "pending", "student-1", "s1@uni.edu"))
				mock.ExpectExec(`UPDATE proposals SET status = 'accepted'`).
					WithArgs("prop-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectExec(`UPDATE jobs SET status = 'in-progress'`).
					WithArgs("job-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectQuery(`UPDATE proposals pr SET status = 'rejected'`).
					WithArgs("job-1", "prop-1").
					WillReturnRows(pgxmock.NewRows([]string{"id", "freelancer_id", "email"}).
						AddRow("prop-2", "student-2", "s2@uni.edu"))
				// winner notification, then one per rejected sibling
				mock.ExpectQuery(`INSERT INTO notifications`).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
				mock.ExpectQuery(`INSERT INTO notifications`).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
				mock.ExpectCommit()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"rejected":1`,
		},
		{
			name:   "accepts the only proposal with nothing to reject",
			userID: "client-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT p.job_id, j.title, j.status`).
					WithArgs("prop-1").
					WillReturnRows(acceptLookupRows("job-1", "Design a flyer", "open", "client-1", "pending", "student-1", "s1@uni.edu"))
				mock.ExpectExec(`UPDATE proposals SET status = 'accepted'`).
					WithArgs("prop-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectExec(`UPDATE jobs SET status = 'in-progress'`).
					WithArgs("job-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectQuery(`UPDATE proposals pr SET status = 'rejected'`).
					WithArgs("job-1", "prop-1").
					WillReturnRows(pgxmock.NewRows([]string{"id", "freelancer_id", "email"}))
				mock.ExpectQuery(`INSERT INTO notifications`).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
				mock.ExpectCommit()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"rejected":0`,
		},
		{
			name:   "only the owner may accept",
			userID: "intruder",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT p.job_id, j.title, j.status`).
					WithArgs("prop-1").
					WillReturnRows(acceptLookupRows("job-1", "Design a flyer", "open", "client-1", "pending", "student-1", "s1@uni.edu"))
				mock.ExpectRollback()
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "job already in progress conflicts",
			userID: "client-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT p.job_id, j.title, j.status`).
					WithArgs("prop-1").
					WillReturnRows(acceptLookupRows("job-1", "Design a flyer", "in-progress", "client-1", "pending", "student-1", "s1@uni.edu"))
				mock.ExpectRollback()
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "withdrawn proposal cannot be accepted",
			userID: "client-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT p.job_id, j.title, j.status`).
					WithArgs("prop-1").
					WillReturnRows(acceptLookupRows("job-1", "Design a flyer", "open", "client-1", "withdrawn", "student-1", "s1@uni.edu"))
				mock.ExpectRollback()
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "missing proposal is not found",
			userID: "client-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT p.job_id, j.title, j.status`).
					WithArgs("prop-1").
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectRollback()
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockConn(t)
			tt.setup(mock)

			c, rec := newProposalContext(t, http.MethodPost, "/proposals/prop-1/accept", "", tt.userID, "prop-1")
			if err := AcceptProposal(c); err != nil {
				t.Fatalf("AcceptProposal() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("AcceptProposal() status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("AcceptProposal() body missing %q: %s", tt.wantBody, rec.Body.String())
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}
