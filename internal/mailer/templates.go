package mailer

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
	"github.com/SudhanshuYadav174/Calender-Management/internal/security"
)

var otpHTMLTemplate = template.Must(template.New("otp").Parse(`<div>
  <p>{{.Name}} 様</p>
  <p>One Calendarへのご登録ありがとうございます。以下の確認コードを入力してください。</p>
  <p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">{{.OTP}}</p>
  <p>このコードは{{.TTLMinutes}}分間有効です。</p>
</div>`))

var reminderHTMLTemplate = template.Must(template.New("reminder").Parse(`<div>
  <p>{{.Name}} 様</p>
  <p>{{.MinutesBefore}}分後に予定が始まります。</p>
  <p><strong>{{.Title}}</strong></p>
  <p>{{.Date}} {{.StartTime}}{{if .EndTime}} - {{.EndTime}}{{end}}</p>
  {{if .Location}}<p>場所: {{.Location}}</p>{{end}}
  {{if .Description}}<div>{{.Description}}</div>{{end}}
</div>`))

// MailContent は組み立て済みのメール内容。
type MailContent struct {
	Subject  string
	TextBody string
	HTMLBody string
}

// TemplateSet はメール本文の組み立てを担う。
// イベント説明文はHTML本文への埋め込み前にサニタイズされる。
type TemplateSet struct {
	sanitizer security.ContentSanitizerService
}

// NewTemplateSet はTemplateSetを生成する。
func NewTemplateSet(sanitizer security.ContentSanitizerService) *TemplateSet {
	return &TemplateSet{sanitizer: sanitizer}
}

// OTPMail はアカウント確認用OTPメールを組み立てる。
func (t *TemplateSet) OTPMail(name, otp string, ttl time.Duration) (*MailContent, error) {
	ttlMinutes := int(ttl.Minutes())

	var html strings.Builder
	err := otpHTMLTemplate.Execute(&html, map[string]any{
		"Name":       name,
		"OTP":        otp,
		"TTLMinutes": ttlMinutes,
	})
	if err != nil {
		return nil, fmt.Errorf("OTPメールの組み立てに失敗しました: %w", err)
	}

	text := fmt.Sprintf(
		"%s 様\n\nOne Calendarへのご登録ありがとうございます。以下の確認コードを入力してください。\n\n%s\n\nこのコードは%d分間有効です。\n",
		name, otp, ttlMinutes,
	)

	return &MailContent{
		Subject:  "【One Calendar】確認コードのお知らせ",
		TextBody: text,
		HTMLBody: html.String(),
	}, nil
}

// ReminderMail はイベントリマインダーメールを組み立てる。
// 説明文はHTML本文にはサニタイズ済みHTMLとして、テキスト本文には原文のまま埋め込まれる。
func (t *TemplateSet) ReminderMail(ownerName string, event *model.Event, minutesBefore int) (*MailContent, error) {
	var html strings.Builder
	err := reminderHTMLTemplate.Execute(&html, map[string]any{
		"Name":          ownerName,
		"MinutesBefore": minutesBefore,
		"Title":         event.Title,
		"Date":          event.Date,
		"StartTime":     event.StartTime,
		"EndTime":       event.EndTime,
		"Location":      event.Location,
		"Description":   template.HTML(t.sanitizer.Sanitize(event.Description)),
	})
	if err != nil {
		return nil, fmt.Errorf("リマインダーメールの組み立てに失敗しました: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s 様\n\n%d分後に予定が始まります。\n\n%s\n%s %s",
		ownerName, minutesBefore, event.Title, event.Date, event.StartTime)
	if event.EndTime != "" {
		fmt.Fprintf(&text, " - %s", event.EndTime)
	}
	text.WriteString("\n")
	if event.Location != "" {
		fmt.Fprintf(&text, "場所: %s\n", event.Location)
	}
	if event.Description != "" {
		// テキスト本文には説明文を原文のまま載せる
		fmt.Fprintf(&text, "\n%s\n", event.Description)
	}

	return &MailContent{
		Subject:  fmt.Sprintf("【One Calendar】リマインダー: %s", event.Title),
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
