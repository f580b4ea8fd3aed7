package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sender := NewLogSender(logger)

	err := sender.Send(context.Background(), "user@example.com", "テスト件名", "本文", "<p>本文</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["to"] != "user@example.com" {
		t.Errorf("to = %v", entry["to"])
	}
	if entry["subject"] != "テスト件名" {
		t.Errorf("subject = %v", entry["subject"])
	}
}

func TestSMTPSender_InvalidFromAddress(t *testing.T) {
	sender := NewSMTPSender(SMTPConfig{
		Host: "localhost",
		Port: 2525,
		From: "not an address",
	})

	err := sender.Send(context.Background(), "user@example.com", "件名", "本文", "")
	if err == nil {
		t.Error("expected error for invalid from address, got nil")
	}
}
