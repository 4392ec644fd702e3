package proposals

import "time"

// Proposal is a freelancer's bid against a job
type Proposal struct {
	ID            string    `json:"id"`
	JobID         string    `json:"job_id"`
	FreelancerID  string    `json:"freelancer_id"`
	CoverLetter   string    `json:"cover_letter"`
	BidAmount     int64     `json:"bid_amount"`
	EstimatedDays int       `json:"estimated_days"`
	Status        string    `json:"status"` // pending, accepted, rejected, withdrawn
	CreatedAt     time.Time `json:"created_at"`
}

// Freelancer is the public slice of the submitting student's profile shown
// alongside a proposal.
type Freelancer struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	University string `json:"university,omitempty"`
	Bio        string `json:"bio,omitempty"`
}

// ProposalWithFreelancer composes a proposal with its submitter's profile.
type ProposalWithFreelancer struct {
	Proposal
	Freelancer *Freelancer `json:"freelancer"`
}
