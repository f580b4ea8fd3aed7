package mailer

import (
	"strings"
	"testing"
	"time"

	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
	"github.com/SudhanshuYadav174/Calender-Management/internal/security"
)

func newTemplateSet() *TemplateSet {
	return NewTemplateSet(security.NewContentSanitizer())
}

func TestOTPMail(t *testing.T) {
	ts := newTemplateSet()

	content, err := ts.OTPMail("田中太郎", "482913", 10*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(content.Subject, "確認コード") {
		t.Errorf("subject = %q", content.Subject)
	}
	for _, body := range []string{content.TextBody, content.HTMLBody} {
		if !strings.Contains(body, "482913") {
			t.Errorf("body missing OTP: %q", body)
		}
		if !strings.Contains(body, "田中太郎") {
			t.Errorf("body missing name: %q", body)
		}
		if !strings.Contains(body, "10分間") {
			t.Errorf("body missing TTL: %q", body)
		}
	}
}

func TestReminderMail(t *testing.T) {
	ts := newTemplateSet()

	event := &model.Event{
		Title:       "チーム定例",
		Date:        "2026-09-01",
		StartTime:   "09:00",
		EndTime:     "10:00",
		Location:    "会議室A",
		Description: "<p>議題は<strong>四半期レビュー</strong></p>",
	}

	content, err := ts.ReminderMail("田中太郎", event, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(content.Subject, "チーム定例") {
		t.Errorf("subject = %q", content.Subject)
	}
	if !strings.Contains(content.TextBody, "30分後") {
		t.Errorf("text body missing lead time: %q", content.TextBody)
	}
	if !strings.Contains(content.TextBody, "2026-09-01 09:00 - 10:00") {
		t.Errorf("text body missing schedule: %q", content.TextBody)
	}
	if !strings.Contains(content.TextBody, "<p>議題は<strong>四半期レビュー</strong></p>") {
		t.Errorf("text body missing description: %q", content.TextBody)
	}
	if !strings.Contains(content.HTMLBody, "<strong>四半期レビュー</strong>") {
		t.Errorf("html body should keep sanitized markup: %q", content.HTMLBody)
	}
	if !strings.Contains(content.HTMLBody, "会議室A") {
		t.Errorf("html body missing location: %q", content.HTMLBody)
	}
}

// 説明文に含まれる危険なHTMLがメール本文に残らないことを検証する。
func TestReminderMail_SanitizesDescription(t *testing.T) {
	ts := newTemplateSet()

	event := &model.Event{
		Title:       "打ち合わせ",
		Date:        "2026-09-01",
		StartTime:   "09:00",
		Description: `<p>資料確認</p><script>alert('xss')</script>`,
	}

	content, err := ts.ReminderMail("田中太郎", event, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(content.HTMLBody, "<script") {
		t.Errorf("html body contains script tag: %q", content.HTMLBody)
	}
	if !strings.Contains(content.HTMLBody, "資料確認") {
		t.Errorf("html body missing safe content: %q", content.HTMLBody)
	}
}

func TestReminderMail_OmitsEmptyFields(t *testing.T) {
	ts := newTemplateSet()

	event := &model.Event{
		Title:     "集中作業",
		Date:      "2026-09-02",
		StartTime: "13:00",
	}

	content, err := ts.ReminderMail("田中太郎", event, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(content.TextBody, "場所:") {
		t.Errorf("text body should omit empty location: %q", content.TextBody)
	}
	if strings.Contains(content.TextBody, " - ") {
		t.Errorf("text body should omit empty end time: %q", content.TextBody)
	}
	if strings.Contains(content.HTMLBody, "場所:") {
		t.Errorf("html body should omit empty location: %q", content.HTMLBody)
	}
}
