package mailer

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends mail through one Mailgun domain.
type Mailgun struct {
	client  *mg.MailgunImpl
	sender  string
	timeout time.Duration
}

// NewMailgun builds the client once. apiBase may be empty for the US region
// or set to mg.APIBaseEU.
func NewMailgun(domain, apiKey, sender, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, sender: sender, timeout: 10 * time.Second}
}

// Send sends an email. html is optional.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	msg := m.client.NewMessage(m.sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if _, _, err := m.client.Send(c, msg); err != nil {
		return fmt.Errorf("mailgun send to %s: %w", to, err)
	}
	return nil
}

var _ Sender = (*Mailgun)(nil)
