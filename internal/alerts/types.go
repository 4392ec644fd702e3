package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail     = "email:welcome"
	TaskPasswordReset    = "email:password_reset"
	TaskProposalReceived = "email:proposal_received"
	TaskProposalAccepted = "email:proposal_accepted"
	TaskProposalRejected = "email:proposal_rejected"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Password reset payload
type PasswordResetPayload struct {
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	ResetURL  string        `json:"reset_url"`
	Envelope  EmailEnvelope `json:"envelope"`
	Requested time.Time     `json:"requested"`
}

// Proposal received payload (sent to the job owner)
type ProposalReceivedPayload struct {
	JobID     string        `json:"job_id"`
	ClientID  string        `json:"client_id"`
	Email     string        `json:"email"`
	JobTitle  string        `json:"job_title"`
	BidAmount int64         `json:"bid_amount"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}

// Proposal accepted payload (sent to the winning freelancer)
type ProposalAcceptedPayload struct {
	JobID        string        `json:"job_id"`
	FreelancerID string        `json:"freelancer_id"`
	Email        string        `json:"email"`
	JobTitle     string        `json:"job_title"`
	Envelope     EmailEnvelope `json:"envelope"`
	SentAt       time.Time     `json:"sent_at"`
}

// Proposal rejected payload (sent to each passed-over freelancer)
type ProposalRejectedPayload struct {
	JobID        string        `json:"job_id"`
	FreelancerID string        `json:"freelancer_id"`
	Email        string        `json:"email"`
	JobTitle     string        `json:"job_title"`
	Envelope     EmailEnvelope `json:"envelope"`
	SentAt       time.Time     `json:"sent_at"`
}
