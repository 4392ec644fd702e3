package jobs

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/campusgig/campusgig/internal/db"
	"github.com/campusgig/campusgig/internal/metrics"
)

const jobColumns = `id, title, description, category, budget, status, client_id, location, skills_required, deadline, created_at`

// =========================
// CreateJob - Client posts a job
// =========================
func CreateJob(c echo.Context) error {
	clientID, ok := c.Get("user_id").(string)
	if !ok || clientID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req struct {
		Title          string     `json:"title"`
		Description    string     `json:"description"`
		Category       string     `json:"category"`
		Budget         int64      `json:"budget"`
		Location       *string    `json:"location"`
		SkillsRequired []string   `json:"skills_required"`
		Deadline       *time.Time `json:"deadline"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" || req.Category == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and category are required"})
	}
	if req.Budget <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "budget must be a positive amount"})
	}
	if req.SkillsRequired == nil {
		req.SkillsRequired = []string{}
	}

	job := Job{
		ID:             uuid.New().String(),
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Budget:         req.Budget,
		Status:         "open",
		ClientID:       clientID,
		Location:       req.Location,
		SkillsRequired: req.SkillsRequired,
		Deadline:       req.Deadline,
		CreatedAt:      time.Now(),
	}

	_, err := db.Conn.Exec(context.Background(),
		`INSERT INTO jobs (id, title, description, category, budget, status, client_id, location, skills_required, deadline, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		job.ID, job.Title, job.Description, job.Category, job.Budget, job.Status,
		job.ClientID, job.Location, job.SkillsRequired, job.Deadline, job.CreatedAt,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create job"})
	}

	metrics.JobsCreated.Inc()
	return c.JSON(http.StatusCreated, job)
}

// =========================
// ListJobs - Public job discovery
// =========================
func ListJobs(c echo.Context) error {
	category := c.QueryParam("category")
	q := c.QueryParam("q")
	status := c.QueryParam("status")
	limit := 20
	offset := 0
	if l := c.QueryParam("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	builder := squirrel.Select(jobColumns).
		From("jobs").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	if category != "" && category != "All" {
		builder = builder.Where(squirrel.Eq{"category": category})
	}
	if q != "" {
		builder = builder.Where(squirrel.ILike{"title": "%" + q + "%"})
	}
	if status != "" {
		builder = builder.Where(squirrel.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build query"})
	}

	rows, err := db.Conn.Query(context.Background(), query, args...)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load jobs"})
	}
	defer rows.Close()

	items, err := scanJobs(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse jobs"})
	}
	return c.JSON(http.StatusOK, echo.Map{"jobs": items})
}

// =========================
// GetJob - Job detail with owner profile
// =========================
func GetJob(c echo.Context) error {
	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
	}

	var (
		out             JobWithOwner
		ownerID         *string
		ownerName       *string
		ownerUniversity *string
		ownerCreatedAt  *time.Time
	)
	err := db.Conn.QueryRow(context.Background(), `
		SELECT j.id, j.title, j.description, j.category, j.budget, j.status, j.client_id,
		       j.location, j.skills_required, j.deadline, j.created_at,
		       p.id, p.full_name, COALESCE(p.university, ''), p.created_at
		FROM jobs j
		LEFT JOIN profiles p ON p.id = j.client_id
		WHERE j.id = $1`, jobID,
	).Scan(
		&out.ID, &out.Title, &out.Description, &out.Category, &out.Budget, &out.Status, &out.ClientID,
		&out.Location, &out.SkillsRequired, &out.Deadline, &out.CreatedAt,
		&ownerID, &ownerName, &ownerUniversity, &ownerCreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch job"})
	}

	if ownerID != nil {
		out.Owner = &Owner{ID: *ownerID, FullName: *ownerName, CreatedAt: *ownerCreatedAt}
		if ownerUniversity != nil {
			out.Owner.University = *ownerUniversity
		}
	}

	return c.JSON(http.StatusOK, out)
}

// =========================
// DeleteJob - Owner removes an open job
// =========================
func DeleteJob(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	jobID := c.Param("id")
	if jobID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing job id"})
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
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the job owner can delete it"})
	}

	// A job with proposals cannot be deleted; freelancers keep a consistent
	// view of everything they applied to.
	var proposalCount int
	if err := db.Conn.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM proposals WHERE job_id = $1`, jobID,
	).Scan(&proposalCount); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check proposals"})
	}
	if proposalCount > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "job has proposals and can no longer be deleted"})
	}

	if _, err := db.Conn.Exec(context.Background(), `DELETE FROM jobs WHERE id = $1`, jobID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete job"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "job deleted"})
}

// =========================
// GetMyJobs - Client's own postings
// =========================
func GetMyJobs(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT `+jobColumns+` FROM jobs WHERE client_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load jobs"})
	}
	defer rows.Close()

	items, err := scanJobs(rows)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse jobs"})
	}
	return c.JSON(http.StatusOK, echo.Map{"jobs": items})
}

func scanJobs(rows pgx.Rows) ([]Job, error) {
	items := []Job{}
	for rows.Next() {
		var j Job
		if err := rows.Scan(
			&j.ID, &j.Title, &j.Description, &j.Category, &j.Budget, &j.Status,
			&j.ClientID, &j.Location, &j.SkillsRequired, &j.Deadline, &j.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, j)
	}
	return items, rows.Err()
}
