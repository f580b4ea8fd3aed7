// Package auth はメールアドレスとパスワードによる認証、OTPによる
// アカウント確認、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/SudhanshuYadav174/Calender-Management/internal/model"
	"github.com/SudhanshuYadav174/Calender-Management/internal/repository"
)

// OTPMailer はOTP確認メールの送信インターフェース。
// mailerパッケージへの依存を避け、サービスに必要な操作だけを要求する。
type OTPMailer interface {
	SendOTP(ctx context.Context, toEmail, toName, otp string, ttl time.Duration) error
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int           // セッション有効期間（秒）
	OTPTTL        time.Duration // OTP有効期間
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	otpMailer   OTPMailer
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	otpMailer OTPMailer,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		otpMailer:   otpMailer,
		config:      config,
	}
}

// Signup は新規ユーザーを未確認状態で登録し、確認用OTPをメールで送信する。
// 同じメールアドレスの確認済みユーザーが存在する場合はエラーを返す。
// 未確認ユーザーが存在する場合はOTPを再発行して上書きする。
func (s *Service) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, model.NewInvalidCredentialsError()
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil && existing.IsVerified {
		return nil, model.NewUserExistsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return nil, fmt.Errorf("OTPの生成に失敗しました: %w", err)
	}

	now := time.Now()
	var user *model.User

	if existing != nil {
		// 未確認ユーザーの再登録。登録情報とOTPを上書きする。
		user = existing
		user.Name = name
		user.PasswordHash = string(hash)
		user.OTP = otp
		user.OTPExpiresAt = now.Add(s.config.OTPTTL)
		user.UpdatedAt = now
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
		}
	} else {
		user = &model.User{
			ID:           uuid.New().String(),
			Name:         name,
			Email:        email,
			PasswordHash: string(hash),
			IsVerified:   false,
			OTP:          otp,
			OTPExpiresAt: now.Add(s.config.OTPTTL),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
		}
	}

	if err := s.otpMailer.SendOTP(ctx, user.Email, user.Name, otp, s.config.OTPTTL); err != nil {
		// 送信失敗でも登録自体は成立させる。OTPは再送可能。
		slog.Warn("failed to send OTP mail",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	slog.Info("user signed up", slog.String("user_id", user.ID))
	return user, nil
}

// VerifyOTP はOTPを検証しアカウントを確認済みにする。
// 確認に成功したユーザーはそのままログイン状態とし、セッションを発行する。
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (*model.User, *model.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewUserNotFoundError()
	}
	if user.IsVerified {
		return nil, nil, model.NewAlreadyVerifiedError()
	}
	if user.OTP == "" {
		return nil, nil, model.NewOTPNotFoundError()
	}
	if time.Now().After(user.OTPExpiresAt) {
		return nil, nil, model.NewOTPExpiredError()
	}
	if user.OTP != otp {
		return nil, nil, model.NewInvalidOTPError()
	}

	user.IsVerified = true
	user.OTP = ""
	user.OTPExpiresAt = time.Time{}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("セッションの作成に失敗しました: %w", err)
	}

	slog.Info("user verified", slog.String("user_id", user.ID))
	return user, session, nil
}

// ResendOTP は未確認ユーザーに新しいOTPを発行し再送する。
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}
	if user.IsVerified {
		return model.NewAlreadyVerifiedError()
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("OTPの生成に失敗しました: %w", err)
	}

	user.OTP = otp
	user.OTPExpiresAt = time.Now().Add(s.config.OTPTTL)
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}

	if err := s.otpMailer.SendOTP(ctx, user.Email, user.Name, otp, s.config.OTPTTL); err != nil {
		return fmt.Errorf("OTPメールの送信に失敗しました: %w", err)
	}

	slog.Info("OTP resent", slog.String("user_id", user.ID))
	return nil
}

// Login はメールアドレスとパスワードを検証し、セッションを発行する。
// 未確認ユーザーはログインできない。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if !user.IsVerified {
		return nil, nil, model.NewUserNotVerifiedError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("セッションの作成に失敗しました: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return user, session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
// セッションが存在しない、または期限切れの場合はエラーを返す。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("セッションの検索に失敗しました: %w", err)
	}
	if session == nil || time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("session not found or expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("セッションIDの生成に失敗しました: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("セッションの保存に失敗しました: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// generateOTP は6桁の数字OTPを生成する。先頭ゼロ詰めあり。
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
