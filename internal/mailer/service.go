package mailer

import (
	"context"
	"time"

	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
)

// Service はテンプレートの組み立てと送信をまとめた高レベルAPI。
// 認証サービスとリマインダーワーカーから利用される。
type Service struct {
	sender    Sender
	templates *TemplateSet
}

// NewService はServiceを生成する。
func NewService(sender Sender, templates *TemplateSet) *Service {
	return &Service{sender: sender, templates: templates}
}

// SendOTP はアカウント確認用OTPメールを送信する。
func (s *Service) SendOTP(ctx context.Context, toEmail, toName, otp string, ttl time.Duration) error {
	content, err := s.templates.OTPMail(toName, otp, ttl)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, toEmail, content.Subject, content.TextBody, content.HTMLBody)
}

// SendReminder はイベントリマインダーメールを送信する。
func (s *Service) SendReminder(ctx context.Context, toEmail, toName string, event *model.Event, minutesBefore int) error {
	content, err := s.templates.ReminderMail(toName, event, minutesBefore)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, toEmail, content.Subject, content.TextBody, content.HTMLBody)
}
