package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeSender struct {
	to, subject, text, html string
	err                     error
}

func (s *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	s.to, s.subject, s.text, s.html = to, subject, text, html
	return s.err
}

func TestSendWelcome(t *testing.T) {
	s := &fakeSender{}
	w := NewWelcomer(s, "Users", "Acme", "")
	if err := w.SendWelcome(context.Background(), "alice@example.com", "alice", time.Now()); err != nil {
		t.Fatal(err)
	}
	if s.to != "alice@example.com" || !strings.Contains(s.subject, "alice") || s.html == "" || s.text == "" {
		t.Fatalf("sent %+v", s)
	}
}

func TestSendWelcomeSenderError(t *testing.T) {
	s := &fakeSender{err: errors.New("mailgun 401")}
	if err := NewWelcomer(s, "", "", "").SendWelcome(context.Background(), "a@b.co", "alice", time.Now()); err == nil {
		t.Fatal("expected sender error")
	}
}
