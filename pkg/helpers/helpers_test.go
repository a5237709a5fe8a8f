package helpers

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		env, level string
		want       logrus.Level
	}{
		{"development", "", logrus.DebugLevel},
		{"production", "", logrus.InfoLevel},
		{"production", "warn", logrus.WarnLevel},
		{"development", "bogus", logrus.DebugLevel},
	}
	for _, tc := range cases {
		l := NewLogger("users-service", tc.env, tc.level)
		if l.GetLevel() != tc.want {
			t.Errorf("%s/%q: level %v, want %v", tc.env, tc.level, l.GetLevel(), tc.want)
		}
	}
	if _, ok := NewLogger("a", "production", "").Formatter.(*logrus.JSONFormatter); !ok {
		t.Error("production logger should emit JSON")
	}
}

func TestObjectURL(t *testing.T) {
	if got := ObjectURL("bkt", "events/x.json"); got != "https://storage.googleapis.com/bkt/events/x.json" {
		t.Fatalf("ObjectURL = %q", got)
	}
}

func TestDeadLetterQueue(t *testing.T) {
	if got := DeadLetterQueue("user.events"); got != "user.events.dlq" {
		t.Fatalf("DeadLetterQueue = %q", got)
	}
}

func TestPublishRawWithoutChannel(t *testing.T) {
	var p *RabbitPublisher
	if err := p.PublishRaw(context.Background(), "id", "application/json", nil, nil); err == nil {
		t.Fatal("nil publisher should refuse to publish")
	}
}
