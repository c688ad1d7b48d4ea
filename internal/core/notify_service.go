package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Mailer sends a single transactional e-mail.
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, htmlBody string) error
}

// NotifyResult reports the outcome of a notification batch. Shareholders
// without an e-mail address and individual send failures are skipped without
// aborting the batch.
type NotifyResult struct {
	Sent    int      `json:"sent"`
	Skipped []string `json:"skipped,omitempty"`
}

// NotifyService e-mails selected shareholders their holdings summary.
type NotifyService interface {
	NotifyShareholders(ctx context.Context, company *Company, snapshot *Snapshot, shareholderIDs []int) (*NotifyResult, error)
}

type notifyService struct {
	mailer Mailer
}

// NewNotifyService constructs a NotifyService using the given mailer.
func NewNotifyService(mailer Mailer) NotifyService {
	return &notifyService{mailer: mailer}
}

func (s *notifyService) NotifyShareholders(ctx context.Context, company *Company, snapshot *Snapshot, shareholderIDs []int) (*NotifyResult, error) {
	selected := make(map[int]bool, len(shareholderIDs))
	for _, id := range shareholderIDs {
		selected[id] = true
	}

	enriched := EnrichIssuances(snapshot.Issuances, snapshot.Shareholders, snapshot.ShareClasses)
	byHolder := SummarizeByHolder(enriched, snapshot.Shareholders)

	result := &NotifyResult{}
	for _, sh := range snapshot.Shareholders {
		if !selected[sh.ID] {
			continue
		}
		if sh.Email == "" {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s: no email address", sh.Name))
			continue
		}

		subject := fmt.Sprintf("Your Shareholding Summary in %s", company.Name)
		body := holdingsEmailHTML(company.Name, sh.Name, holdingsOf(byHolder, sh.ID))
		if err := s.mailer.Send(ctx, sh.Name, sh.Email, subject, body); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s: %v", sh.Name, err))
			continue
		}
		result.Sent++
	}
	return result, nil
}

func holdingsOf(summaries []ShareholderSummary, shareholderID int) []Holding {
	for _, s := range summaries {
		if s.ID == shareholderID {
			return s.Holdings
		}
	}
	return nil
}

func holdingsEmailHTML(companyName, shareholderName string, holdings []Holding) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<p>Dear %s,</p><p>Here is your current shareholding in %s:</p><ul>", shareholderName, companyName)
	if len(holdings) == 0 {
		b.WriteString("<li>No share issuances recorded.</li>")
	}
	for _, h := range holdings {
		fmt.Fprintf(&b,
			"<li><strong>Shares:</strong> %d of %s<br/><strong>Price per Share:</strong> $%s<br/><strong>Total Value:</strong> $%s<br/><strong>Issue Date:</strong> %s",
			h.Shares, h.ShareClassName, h.PricePerShare.StringFixed(2), h.TotalValue.StringFixed(2), h.IssueDate.Format("2006-01-02"))
		if h.Round != "" {
			fmt.Fprintf(&b, "<br/><strong>Round:</strong> %s", h.Round)
		}
		b.WriteString("</li>")
	}
	fmt.Fprintf(&b, "</ul><p>© %d</p>", time.Now().Year())
	return b.String()
}

// ── Brevo mailer ──────────────────────────────────────────────────────────────

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoMailer sends transactional e-mail through the Brevo REST API.
type BrevoMailer struct {
	APIKey      string
	SenderName  string
	SenderEmail string
	Client      *http.Client
}

// NewBrevoMailer constructs a BrevoMailer with a 10s request timeout.
func NewBrevoMailer(apiKey, senderName, senderEmail string) *BrevoMailer {
	return &BrevoMailer{
		APIKey:      apiKey,
		SenderName:  senderName,
		SenderEmail: senderEmail,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *BrevoMailer) Send(ctx context.Context, toName, toEmail, subject, htmlBody string) error {
	if m.APIKey == "" {
		return fmt.Errorf("BREVO_API_KEY not configured")
	}

	payload := map[string]any{
		"sender":      map[string]string{"name": m.SenderName, "email": m.SenderEmail},
		"to":          []map[string]string{{"name": toName, "email": toEmail}},
		"subject":     subject,
		"htmlContent": htmlBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", m.APIKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email send failed: status %d", resp.StatusCode)
	}
	return nil
}
