package jobs

import "time"

// Job represents a posted work opportunity
type Job struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Budget         int64      `json:"budget"`
	Status         string     `json:"status"` // open, in-progress, completed
	ClientID       string     `json:"client_id"`
	Location       *string    `json:"location,omitempty"`
	SkillsRequired []string   `json:"skills_required"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Owner is the public slice of the client profile attached to a job.
type Owner struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	University string    `json:"university,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// JobWithOwner composes a job with its owning client profile. Owner is nil
// when the profile row is gone, and the JSON key is always present so the
// absent join is an explicit null rather than a missing field.
type JobWithOwner struct {
	Job
	Owner *Owner `json:"owner"`
}
