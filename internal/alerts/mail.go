package alerts

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"os"
	"strings"
	"sync"
	"time"
)

// mailProvider delivers one rendered email. Selection happens once from env:
// MAIL_PROVIDER=plunk (or a PLUNK_API_KEY with no explicit provider) routes
// through the Plunk HTTP API, anything else goes out over SMTP with TLS.
type mailProvider interface {
	deliver(to, subject, body string) error
}

var (
	providerOnce sync.Once
	provider     mailProvider
)

func activeProvider() mailProvider {
	providerOnce.Do(func() {
		name := os.Getenv("MAIL_PROVIDER")
		if name == "plunk" || (name == "" && os.Getenv("PLUNK_API_KEY") != "") {
			provider = newPlunkProvider()
			return
		}
		provider = newSMTPProvider()
	})
	return provider
}

// SendEmail hands the message to the configured provider. Task handlers call
// this from the queue worker, never from request handlers.
func SendEmail(to, subject, body string) error {
	return activeProvider().deliver(to, subject, body)
}

// ----- SMTP -----

type smtpProvider struct {
	host     string
	port     string
	username string
	password string
	from     string
	replyTo  string
}

func newSMTPProvider() *smtpProvider {
	return &smtpProvider{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
		replyTo:  os.Getenv("MAIL_REPLY_TO"),
	}
}

func (p *smtpProvider) deliver(to, subject, body string) error {
	if p.host == "" || p.port == "" || p.username == "" || p.password == "" || p.from == "" {
		return fmt.Errorf("smtp not configured: set SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM (or MAIL_PROVIDER=plunk)")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", p.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	if p.replyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", p.replyTo)
	}
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: %s; charset=\"utf-8\"\r\n", contentTypeFor(body))
	msg.WriteString("\r\n" + body + "\r\n")

	conn, err := tls.Dial("tcp", p.host+":"+p.port, &tls.Config{ServerName: p.host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	cl, err := smtp.NewClient(conn, p.host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer cl.Close()

	if err := cl.Auth(smtp.PlainAuth("", p.username, p.password, p.host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := cl.Mail(p.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := cl.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	wc, err := cl.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := io.WriteString(wc, msg.String()); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return cl.Quit()
}

func contentTypeFor(body string) string {
	lb := strings.ToLower(body)
	if strings.Contains(lb, "<html") || strings.Contains(lb, "<body") || strings.Contains(lb, "<!doctype html") {
		return "text/html"
	}
	return "text/plain"
}

// ----- Plunk -----

type plunkProvider struct {
	apiKey string
	from   string
	apiURL string
	http   *http.Client
}

func newPlunkProvider() *plunkProvider {
	url := os.Getenv("PLUNK_API_URL")
	if url == "" {
		url = "https://api.useplunk.com/v1/send"
	}
	return &plunkProvider{
		apiKey: os.Getenv("PLUNK_API_KEY"),
		from:   os.Getenv("PLUNK_FROM"),
		apiURL: url,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *plunkProvider) deliver(to, subject, body string) error {
	if p.apiKey == "" {
		return fmt.Errorf("plunk not configured: set PLUNK_API_KEY")
	}

	payload := map[string]string{
		"to":      to,
		"subject": subject,
		"body":    body,
	}
	if p.from != "" {
		payload["from"] = p.from
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("plunk payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.apiURL, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("plunk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("plunk send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if detail, readErr := io.ReadAll(resp.Body); readErr == nil && len(detail) > 0 {
			return fmt.Errorf("plunk send failed: %s: %s", resp.Status, string(detail))
		}
		return fmt.Errorf("plunk send failed: %s", resp.Status)
	}
	return nil
}
