package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestSMTPNotifier_Send(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Username: "bot@example.com", Password: "pw"})
	n.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		if a == nil {
			t.Error("expected auth to be set")
		}
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	if err := n.Send(context.Background(), "guest@example.com", "Your visit pass", "Hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" || gotFrom != "bot@example.com" {
		t.Fatalf("unexpected envelope: %s from %s", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "guest@example.com" {
		t.Fatalf("unexpected recipients: %v", gotTo)
	}
	msg := string(gotMsg)
	for _, want := range []string{"To: guest@example.com\r\n", "Subject: Your visit pass\r\n", "\r\n\r\nHello"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSMTPNotifier_Errors(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", From: "noreply@example.com"})
	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("550 rejected") }

	if err := n.Send(context.Background(), "a@example.com", "s", "b"); err == nil {
		t.Fatal("expected relay error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Send(ctx, "a@example.com", "s", "b"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
