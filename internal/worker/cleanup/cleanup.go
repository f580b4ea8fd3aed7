// Package cleanup は認証データの自動削除ジョブを提供する。
// 期限切れセッションの削除と、未消費のまま期限切れになったOTPの
// クリアを日次バッチで行う。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SudhanshuYadav174/Calender-Management/internal/repository"
)

// Job は期限切れ認証データの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type Job struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	logger      *slog.Logger
}

// NewJob は新しいJobを生成する。
func NewJob(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, logger *slog.Logger) *Job {
	return &Job{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Run は期限切れセッションを削除し、期限切れOTPをクリアする。
// 冪等: 対象がない場合でもエラーにならない。
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	deletedSessions, err := j.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("期限切れセッションの削除に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	clearedOTPs, err := j.userRepo.ClearExpiredOTPs(ctx)
	if err != nil {
		j.logger.Error("期限切れOTPのクリアに失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("OTPクリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("認証データクリーンアップジョブが完了しました",
		slog.Int64("deleted_sessions", deletedSessions),
		slog.Int64("cleared_otps", clearedOTPs),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
