package proposals

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/alerts"
	"github.com/campusgig/campusgig/internal/db"
	"github.com/campusgig/campusgig/internal/metrics"
	"github.com/campusgig/campusgig/internal/notifications"
)

type rejectedSibling struct {
	ProposalID   string
	FreelancerID string
	Email        string
}

// =========================
// AcceptProposal - Job owner picks the winning bid
// =========================
// The whole transition runs in one transaction: winner to accepted, job to
// in-progress via a compare-and-swap on its current status, remaining
// pending siblings to rejected, and the notifications for everyone
// involved. Two owners racing on the same job serialize on the row lock and
// the loser gets a conflict instead of clobbering the winner.
func AcceptProposal(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	proposalID := c.Param("id")
	if proposalID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing proposal id in URL"})
	}

	ctx := context.Background()
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	var (
		jobID           string
		jobTitle        string
		jobStatus       string
		clientID        string
		proposalStatus  string
		freelancerID    string
		freelancerEmail string
	)
	err = tx.QueryRow(ctx, `
		SELECT p.job_id, j.title, j.status, j.client_id, p.status, p.freelancer_id, f.email
		FROM proposals p
		JOIN jobs j ON j.id = p.job_id
		JOIN profiles f ON f.id = p.freelancer_id
		WHERE p.id = $1
		FOR UPDATE OF p, j`, proposalID,
	).Scan(&jobID, &jobTitle, &jobStatus, &clientID, &proposalStatus, &freelancerID, &freelancerEmail)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "proposal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch proposal"})
	}

	if clientID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the job owner can accept proposals"})
	}
	if jobStatus != "open" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "job is not open"})
	}
	if proposalStatus != "pending" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "proposal is not pending"})
	}

	// Winner first, then the job, then the siblings: the job transition is
	// never attempted before the winning proposal write is confirmed.
	ct, err := tx.Exec(ctx,
		`UPDATE proposals SET status = 'accepted' WHERE id = $1 AND status = 'pending'`, proposalID,
	)
	if err != nil || ct.RowsAffected() == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "proposal is no longer pending"})
	}

	ct, err = tx.Exec(ctx,
		`UPDATE jobs SET status = 'in-progress' WHERE id = $1 AND status = 'open'`, jobID,
	)
	if err != nil || ct.RowsAffected() == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "job is no longer open"})
	}

	rows, err := tx.Query(ctx, `
		UPDATE proposals pr SET status = 'rejected'
		FROM profiles f
		WHERE f.id = pr.freelancer_id
		  AND pr.job_id = $1 AND pr.id <> $2 AND pr.status = 'pending'
		RETURNING pr.id, pr.freelancer_id, f.email`, jobID, proposalID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject other proposals"})
	}
	var rejected []rejectedSibling
	for rows.Next() {
		var r rejectedSibling
		if err := rows.Scan(&r.ProposalID, &r.FreelancerID, &r.Email); err != nil {
			rows.Close()
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject other proposals"})
		}
		rejected = append(rejected, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to reject other proposals"})
	}

	winnerNote, err := notifications.Create(ctx, tx, freelancerID,
		"Proposal accepted",
		fmt.Sprintf("Your proposal on \"%s\" was accepted. The job is now in progress.", jobTitle),
		"/jobs/"+jobID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record notification"})
	}

	loserNotes := make([]notifications.Notification, 0, len(rejected))
	for _, r := range rejected {
		n, err := notifications.Create(ctx, tx, r.FreelancerID,
			"Proposal not selected",
			fmt.Sprintf("Another proposal was chosen for \"%s\".", jobTitle),
			"/jobs/"+jobID,
		)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record notification"})
		}
		loserNotes = append(loserNotes, n)
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction failed"})
	}

	metrics.ProposalsAccepted.Inc()

	notifications.PublishInsert(winnerNote)
	for _, n := range loserNotes {
		notifications.PublishInsert(n)
	}

	// Emails stay best-effort; the state change already committed
	if err := alerts.EnqueueProposalAccepted(jobID, freelancerID, freelancerEmail, jobTitle); err != nil {
		log.Printf("[proposals] accepted email enqueue failed: %v", err)
	}
	for _, r := range rejected {
		if err := alerts.EnqueueProposalRejected(jobID, r.FreelancerID, r.Email, jobTitle); err != nil {
			log.Printf("[proposals] rejected email enqueue failed: %v", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"proposal_id": proposalID,
		"job_id":      jobID,
		"job_status":  "in-progress",
		"rejected":    len(rejected),
	})
}
