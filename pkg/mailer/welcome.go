package mailer

import (
	"context"
	"fmt"
	"time"

	mailtpl "github.com/oksasatya/users-service/pkg/mailer/templates"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Welcomer renders and sends the welcome email for a new account.
type Welcomer struct {
	sender      Sender
	appName     string
	companyName string
	supportURL  string
}

func NewWelcomer(sender Sender, appName, companyName, supportURL string) *Welcomer {
	return &Welcomer{sender: sender, appName: appName, companyName: companyName, supportURL: supportURL}
}

func (w *Welcomer) SendWelcome(ctx context.Context, to, username string, createdAt time.Time) error {
	subject, text, html, err := mailtpl.Render(mailtpl.Welcome, mailtpl.EmailData{
		Username:       username,
		RecipientEmail: to,
		AppName:        w.appName,
		CompanyName:    w.companyName,
		SupportURL:     w.supportURL,
		CreatedAt:      createdAt,
	})
	if err != nil {
		return fmt.Errorf("render welcome: %w", err)
	}
	return w.sender.Send(ctx, to, subject, text, html)
}
