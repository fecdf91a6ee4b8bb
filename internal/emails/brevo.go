package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Sender sends transactional emails. Nil or missing API key = no-op.
type Sender interface {
	SendApproval(ctx context.Context, toEmail, name string) error
	SendPlanOutcome(ctx context.Context, toEmail, name, planTitle, outcome string) error
}

// BrevoClient sends emails via the Brevo API (BREVO_API_KEY, MAIL_FROM).
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@fahran.coop"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Fahran Cooperative"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendApproval notifies a member that their membership was approved.
func (c *BrevoClient) SendApproval(ctx context.Context, toEmail, name string) error {
	html := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your membership has been approved. You can now log in, "+
			"vote on business plans, and hold shares.</p>", name)
	return c.send(ctx, toEmail, "Membership approved", html)
}

// SendPlanOutcome notifies a proposer of their plan's voting outcome.
func (c *BrevoClient) SendPlanOutcome(ctx context.Context, toEmail, name, planTitle, outcome string) error {
	html := fmt.Sprintf(
		"<p>Hello %s,</p><p>Voting on your business plan <b>%s</b> has closed. Outcome: %s.</p>",
		name, planTitle, outcome)
	return c.send(ctx, toEmail, fmt.Sprintf("Voting closed: %s", planTitle), html)
}
