// Package mailer はメール送信機能を提供する。
//
// OTP確認メールとイベントリマインダーメールの組み立てと送信を担う。
// SMTPSenderはwneessen/go-mailによるSMTP送信を行い、
// SMTPが未設定の環境ではLogSenderが送信内容をログに記録する。
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wneessen/go-mail"
)

// Sender はメール送信のインターフェースを定義する。
// textBodyとhtmlBodyはマルチパートメールの代替表現として両方送信される。
type Sender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// SMTPConfig はSMTP送信に必要な接続情報。
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTPSender はSMTP経由でメールを送信するSenderの実装。
// クライアントは初回送信時に一度だけ構築され、以後再利用される。
type SMTPSender struct {
	cfg SMTPConfig

	mu     sync.Mutex
	client *mail.Client
}

// NewSMTPSender はSMTPSenderを生成する。接続は最初のSendまで遅延される。
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send はマルチパートメールを組み立ててSMTPで送信する。
func (s *SMTPSender) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	client, err := s.getClient()
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("送信元アドレスが不正です: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("宛先アドレスが不正です: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, textBody)
	if htmlBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("メールの送信に失敗しました: %w", err)
	}
	return nil
}

func (s *SMTPSender) getClient() (*mail.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Pass),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("SMTPクライアントの構築に失敗しました: %w", err)
	}
	s.client = client
	return s.client, nil
}

// LogSender は実際の送信を行わず、送信内容を構造化ログに記録するSender。
// SMTP_HOSTが未設定の開発環境で使用される。
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender はLogSenderを生成する。
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send は送信内容をログに記録する。常にnilを返す。
func (s *LogSender) Send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	s.logger.InfoContext(ctx, "mail send skipped (SMTP not configured)",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("text_body", textBody),
	)
	return nil
}

// compile-time interface checks
var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*LogSender)(nil)
)
