package proposals

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/db"
)

// =========================
// ListForJob - Owner reviews incoming bids
// =========================
// Canonical order is most recent first.
func ListForJob(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id in URL"})
	}

	var clientID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT client_id FROM jobs WHERE id = $1`, jobID,
	).Scan(&clientID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}
	if clientID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the job owner can view proposals"})
	}

	rows, err := db.Conn.Query(context.Background(), `
		SELECT p.id, p.job_id, p.freelancer_id, p.cover_letter, p.bid_amount, p.estimated_days, p.status, p.created_at,
		       f.id, f.full_name, COALESCE(f.university, ''), COALESCE(f.bio, '')
		FROM proposals p
		LEFT JOIN profiles f ON f.id = p.freelancer_id
		WHERE p.job_id = $1
		ORDER BY p.created_at DESC`, jobID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load proposals"})
	}
	defer rows.Close()

	items := []ProposalWithFreelancer{}
	for rows.Next() {
		var (
			item       ProposalWithFreelancer
			fID, fName *string
			fUni, fBio *string
		)
		if err := rows.Scan(
			&item.ID, &item.JobID, &item.FreelancerID, &item.CoverLetter,
			&item.BidAmount, &item.EstimatedDays, &item.Status, &item.CreatedAt,
			&fID, &fName, &fUni, &fBio,
		); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse proposals"})
		}
		if fID != nil {
			item.Freelancer = &Freelancer{ID: *fID, FullName: *fName}
			if fUni != nil {
				item.Freelancer.University = *fUni
			}
			if fBio != nil {
				item.Freelancer.Bio = *fBio
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse proposals"})
	}

	return c.JSON(http.StatusOK, echo.Map{"proposals": items})
}

// =========================
// HasApplied - Did the current user already bid on this job?
// =========================
func HasApplied(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id in URL"})
	}

	var (
		proposalID string
		status     string
	)
	err := db.Conn.QueryRow(context.Background(),
		`SELECT id, status FROM proposals WHERE job_id = $1 AND freelancer_id = $2`,
		jobID, userID,
	).Scan(&proposalID, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusOK, echo.Map{"has_applied": false})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check proposal"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"has_applied": true,
		"proposal_id": proposalID,
		"status":      status,
	})
}

// =========================
// GetMyProposals - Student's own bids with their jobs
// =========================
func GetMyProposals(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(), `
		SELECT p.id, p.job_id, p.freelancer_id, p.cover_letter, p.bid_amount, p.estimated_days, p.status, p.created_at,
		       j.title, j.budget, j.status
		FROM proposals p
		JOIN jobs j ON j.id = p.job_id
		WHERE p.freelancer_id = $1
		ORDER BY p.created_at DESC`, userID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load proposals"})
	}
	defer rows.Close()

	items := []map[string]interface{}{}
	for rows.Next() {
		var (
			p         Proposal
			jobTitle  string
			jobBudget int64
			jobStatus string
		)
		if err := rows.Scan(
			&p.ID, &p.JobID, &p.FreelancerID, &p.CoverLetter,
			&p.BidAmount, &p.EstimatedDays, &p.Status, &p.CreatedAt,
			&jobTitle, &jobBudget, &jobStatus,
		); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse proposals"})
		}
		items = append(items, map[string]interface{}{
			"proposal": p,
			"job": map[string]interface{}{
				"id":     p.JobID,
				"title":  jobTitle,
				"budget": jobBudget,
				"status": jobStatus,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse proposals"})
	}

	return c.JSON(http.StatusOK, echo.Map{"proposals": items})
}
