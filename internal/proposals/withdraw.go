package proposals

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/db"
	"github.com/campusgig/campusgig/internal/metrics"
	"github.com/campusgig/campusgig/internal/notifications"
)

// =========================
// WithdrawProposal - Student pulls a pending bid
// =========================
// Withdrawal is only possible while the proposal is still pending; accepted
// and rejected are terminal.
func WithdrawProposal(c echo.Context) error {
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
		jobID        string
		jobTitle     string
		clientID     string
		freelancerID string
		status       string
	)
	err = tx.QueryRow(ctx, `
		SELECT p.job_id, j.title, j.client_id, p.freelancer_id, p.status
		FROM proposals p
		JOIN jobs j ON j.id = p.job_id
		WHERE p.id = $1
		FOR UPDATE OF p`, proposalID,
	).Scan(&jobID, &jobTitle, &clientID, &freelancerID, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "proposal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch proposal"})
	}

	if freelancerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the submitter can withdraw a proposal"})
	}
	if status != "pending" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only pending proposals can be withdrawn"})
	}

	if _, err := tx.Exec(ctx,
		`UPDATE proposals SET status = 'withdrawn' WHERE id = $1 AND status = 'pending'`, proposalID,
	); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to withdraw proposal"})
	}

	note, err := notifications.Create(ctx, tx, clientID,
		"Proposal withdrawn",
		fmt.Sprintf("A student withdrew their proposal on \"%s\".", jobTitle),
		"/jobs/"+jobID+"/proposals",
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record notification"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction failed"})
	}

	metrics.ProposalsWithdrawn.Inc()
	notifications.PublishInsert(note)

	return c.JSON(http.StatusOK, echo.Map{"message": "proposal withdrawn"})
}
