package proposals

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/alerts"
	"github.com/campusgig/campusgig/internal/db"
	"github.com/campusgig/campusgig/internal/metrics"
	"github.com/campusgig/campusgig/internal/notifications"
)

// =========================
// SubmitProposal - Student bids on an open job
// =========================
func SubmitProposal(c echo.Context) error {
	freelancerID, ok := c.Get("user_id").(string)
	if !ok || freelancerID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id in URL"})
	}

	var req struct {
		CoverLetter   string `json:"cover_letter"`
		BidAmount     int64  `json:"bid_amount"`
		EstimatedDays int    `json:"estimated_days"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	// Local validation happens before any write is attempted
	if req.BidAmount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bid_amount must be a positive amount"})
	}
	if req.EstimatedDays <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "estimated_days must be positive"})
	}

	ctx := context.Background()
	tx, err := db.Conn.Begin(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction start failed"})
	}
	defer tx.Rollback(ctx)

	var (
		jobTitle   string
		jobStatus  string
		clientID   string
		ownerEmail string
	)
	err = tx.QueryRow(ctx, `
		SELECT j.title, j.status, j.client_id, p.email
		FROM jobs j
		JOIN profiles p ON p.id = j.client_id
		WHERE j.id = $1`, jobID,
	).Scan(&jobTitle, &jobStatus, &clientID, &ownerEmail)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}

	if clientID == freelancerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot bid on your own job"})
	}
	if jobStatus != "open" {
		return c.JSON(http.StatusConflict, echo.Map{"error": "job is not open for proposals"})
	}

	proposal := Proposal{
		ID:            uuid.New().String(),
		JobID:         jobID,
		FreelancerID:  freelancerID,
		CoverLetter:   req.CoverLetter,
		BidAmount:     req.BidAmount,
		EstimatedDays: req.EstimatedDays,
		Status:        "pending",
		CreatedAt:     time.Now(),
	}

	// The unique index on (job_id, freelancer_id) is the duplicate guard;
	// no read-then-write window exists here.
	ct, err := tx.Exec(ctx, `
		INSERT INTO proposals (id, job_id, freelancer_id, cover_letter, bid_amount, estimated_days, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (job_id, freelancer_id) DO NOTHING`,
		proposal.ID, proposal.JobID, proposal.FreelancerID, proposal.CoverLetter,
		proposal.BidAmount, proposal.EstimatedDays, proposal.Status, proposal.CreatedAt,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to submit proposal"})
	}
	if ct.RowsAffected() == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "you have already applied to this job"})
	}

	note, err := notifications.Create(ctx, tx, clientID,
		"New proposal received",
		fmt.Sprintf("A student submitted a proposal on \"%s\".", jobTitle),
		"/jobs/"+jobID+"/proposals",
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record notification"})
	}

	if err := tx.Commit(ctx); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transaction failed"})
	}

	metrics.ProposalsSubmitted.Inc()
	notifications.PublishInsert(note)
	_ = alerts.EnqueueProposalReceived(jobID, clientID, ownerEmail, jobTitle, proposal.BidAmount)

	return c.JSON(http.StatusCreated, proposal)
}
