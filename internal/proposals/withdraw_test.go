package proposals

import (
	"net/http"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
)

func withdrawLookupRows(jobID, title, clientID, freelancerID, status string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"job_id", "title", "client_id", "freelancer_id", "status"}).
		AddRow(jobID, title, clientID, freelancerID, status)
}

func TestWithdrawProposal(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		setup      func(mock pgxmock.PgxPoolIface)
		wantStatus int
	}{
		{
			name:   "submitter withdraws pending proposal",
			userID: "student-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT p.job_id, j.title, j.client_id`).
					WithArgs("prop-1").
					WillReturnRows(withdrawLookupRows("job-1", "Design a flyer", "client-1", "student-1", "pending"))
				mock.ExpectExec(`UPDATE proposals SET status = 'withdrawn'`).
					WithArgs("prop-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				mock.ExpectQuery(`INSERT INTO notifications`).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
				mock.ExpectCommit()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "only the submitter may withdraw",
			userID: "student-2",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT p.job_id, j.title, j.client_id`).
					WithArgs("prop-1").
					WillReturnRows(withdrawLookupRows("job-1", "Design a flyer", "client-1", "student-1", "pending"))
				mock.ExpectRollback()
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "accepted proposal cannot be withdrawn",
			userID: "student-1",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT p.job_id, j.title, j.client_id`).
					WithArgs("prop-1").
					WillReturnRows(withdrawLookupRows("job-1", "Design a flyer", "client-1", "student-1", "accepted"))
				mock.ExpectRollback()
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockConn(t)
			tt.setup(mock)

			c, rec := newProposalContext(t, http.MethodPost, "/proposals/prop-1/withdraw", "", tt.userID, "prop-1")
			if err := WithdrawProposal(c); err != nil {
				t.Fatalf("WithdrawProposal() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("WithdrawProposal() status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}
