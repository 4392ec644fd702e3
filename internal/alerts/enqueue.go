package alerts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init()
	}
	return client
}

func appURL() string {
	base := os.Getenv("APP_URL")
	if base == "" {
		base = "http://localhost:3000"
	}
	return strings.TrimRight(base, "/")
}

// EnqueueWelcomeEmail schedules a welcome email to a new profile
func EnqueueWelcomeEmail(userID, email, name string) error {
	subject := fmt.Sprintf("Welcome to CampusGig, %s!", name)
	body := fmt.Sprintf("Hi %s, thanks for joining CampusGig.\n\nBrowse open gigs: %s/jobs\n\nIf the link doesn't work, copy and paste the URL above.", name, appURL())

	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	payload := WelcomeEmailPayload{UserID: userID, Name: name, Email: email, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskWelcomeEmail, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueuePasswordReset schedules a password reset notification
func EnqueuePasswordReset(userID, email, resetURL, name string) error {
	expiry := os.Getenv("PASSWORD_RESET_EXP_MINUTES")
	if expiry == "" {
		expiry = "30"
	}
	subject := "Password reset instructions"
	body := fmt.Sprintf("Hello %s,\n\nWe received a request to reset your CampusGig password.\n\nTo proceed, open the link below:\n%s\n\nThis link expires in %s minutes. If you did not request this, no action is required.\n\n— CampusGig Team", name, resetURL, expiry)

	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	payload := PasswordResetPayload{UserID: userID, Email: email, ResetURL: resetURL, Envelope: env, Requested: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskPasswordReset, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueProposalReceived notifies the job owner about a new bid
func EnqueueProposalReceived(jobID, clientID, email, jobTitle string, bidAmount int64) error {
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("New proposal on \"%s\"", jobTitle),
		Body:    fmt.Sprintf("A student just bid %d on your gig \"%s\".\n\nReview proposals: %s/jobs/%s/proposals", bidAmount, jobTitle, appURL(), jobID),
	}
	payload := ProposalReceivedPayload{JobID: jobID, ClientID: clientID, Email: email, JobTitle: jobTitle, BidAmount: bidAmount, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskProposalReceived, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueProposalAccepted notifies the winning freelancer
func EnqueueProposalAccepted(jobID, freelancerID, email, jobTitle string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "Your proposal was accepted",
		Body:    fmt.Sprintf("Congratulations! Your proposal on \"%s\" was accepted and the gig is now in progress.\n\nOpen the gig: %s/jobs/%s", jobTitle, appURL(), jobID),
	}
	payload := ProposalAcceptedPayload{JobID: jobID, FreelancerID: freelancerID, Email: email, JobTitle: jobTitle, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskProposalAccepted, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueProposalRejected notifies a passed-over freelancer
func EnqueueProposalRejected(jobID, freelancerID, email, jobTitle string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: "Update on your proposal",
		Body:    fmt.Sprintf("The client chose another proposal for \"%s\". Keep an eye on new gigs: %s/jobs", jobTitle, appURL()),
	}
	payload := ProposalRejectedPayload{JobID: jobID, FreelancerID: freelancerID, Email: email, JobTitle: jobTitle, Envelope: env, SentAt: time.Now()}
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(TaskProposalRejected, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}
