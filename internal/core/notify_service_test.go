package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"captable/internal/core"
)

type fakeMailer struct {
	sent   []string // recipient e-mails in send order
	bodies map[string]string
	fail   map[string]error // per-recipient failures
}

func (m *fakeMailer) Send(ctx context.Context, toName, toEmail, subject, htmlBody string) error {
	if err := m.fail[toEmail]; err != nil {
		return err
	}
	m.sent = append(m.sent, toEmail)
	if m.bodies == nil {
		m.bodies = map[string]string{}
	}
	m.bodies[toEmail] = htmlBody
	return nil
}

func notifyFixture() (*core.Company, *core.Snapshot) {
	company := &core.Company{ID: 1, Name: "Test Startup"}
	snapshot := &core.Snapshot{
		CompanyID: 1,
		Shareholders: []core.Shareholder{
			{ID: 1, CompanyID: 1, Name: "Alice", Email: "alice@example.com", Type: core.Founder},
			{ID: 2, CompanyID: 1, Name: "Bob", Email: "", Type: core.Investor},
			{ID: 3, CompanyID: 1, Name: "Carol", Email: "carol@example.com", Type: core.Employee},
		},
		ShareClasses: []core.ShareClass{{ID: 1, CompanyID: 1, Name: "Common", Priority: 10}},
		Issuances: []core.ShareIssuance{
			{ID: 1, CompanyID: 1, ShareholderID: 1, ShareClassID: 1, Shares: 1000, PricePerShare: price("0.50"), IssueDate: date("2023-01-01")},
		},
	}
	return company, snapshot
}

func TestNotifyShareholders_SkipsMissingEmail(t *testing.T) {
	company, snapshot := notifyFixture()
	mailer := &fakeMailer{}
	svc := core.NewNotifyService(mailer)

	result, err := svc.NotifyShareholders(context.Background(), company, snapshot, []int{1, 2})
	if err != nil {
		t.Fatalf("NotifyShareholders: %v", err)
	}
	if result.Sent != 1 {
		t.Errorf("expected 1 sent, got %d", result.Sent)
	}
	if len(result.Skipped) != 1 || !strings.Contains(result.Skipped[0], "no email") {
		t.Errorf("expected Bob skipped for missing email, got %v", result.Skipped)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "alice@example.com" {
		t.Errorf("unexpected recipients: %v", mailer.sent)
	}
}

func TestNotifyShareholders_OneFailureDoesNotAbort(t *testing.T) {
	company, snapshot := notifyFixture()
	mailer := &fakeMailer{fail: map[string]error{"alice@example.com": errors.New("smtp down")}}
	svc := core.NewNotifyService(mailer)

	result, err := svc.NotifyShareholders(context.Background(), company, snapshot, []int{1, 3})
	if err != nil {
		t.Fatalf("NotifyShareholders: %v", err)
	}
	if result.Sent != 1 {
		t.Errorf("expected Carol still notified, got %d sent", result.Sent)
	}
	if len(result.Skipped) != 1 || !strings.Contains(result.Skipped[0], "smtp down") {
		t.Errorf("expected Alice's failure recorded, got %v", result.Skipped)
	}
}

func TestNotifyShareholders_BodyContainsHoldings(t *testing.T) {
	company, snapshot := notifyFixture()
	mailer := &fakeMailer{}
	svc := core.NewNotifyService(mailer)

	if _, err := svc.NotifyShareholders(context.Background(), company, snapshot, []int{1}); err != nil {
		t.Fatalf("NotifyShareholders: %v", err)
	}

	body := mailer.bodies["alice@example.com"]
	for _, want := range []string{"Alice", "Test Startup", "Common", "1000"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestNotifyShareholders_UnselectedAreIgnored(t *testing.T) {
	company, snapshot := notifyFixture()
	mailer := &fakeMailer{}
	svc := core.NewNotifyService(mailer)

	result, err := svc.NotifyShareholders(context.Background(), company, snapshot, nil)
	if err != nil {
		t.Fatalf("NotifyShareholders: %v", err)
	}
	if result.Sent != 0 || len(result.Skipped) != 0 {
		t.Errorf("expected empty batch, got %+v", result)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("expected no mail sent, got %v", mailer.sent)
	}
}
