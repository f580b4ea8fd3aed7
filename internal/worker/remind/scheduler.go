package remind

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler はcron式に従ってスイープを起動する。
// SkipIfStillRunningにより、前回のスイープが終わるまで次の実行は
// スキップされ、スイープは常に直列化される。
type Scheduler struct {
	sweeper  *Sweeper
	logger   *slog.Logger
	schedule string
	cron     *cron.Cron
}

// NewScheduler はSchedulerを生成する。
// scheduleは標準の5フィールドcron式（例: "* * * * *" で毎分）。
func NewScheduler(sweeper *Sweeper, logger *slog.Logger, schedule string) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		logger:   logger,
		schedule: schedule,
	}
}

// Start はスケジューラを起動し、コンテキストがキャンセルされるまで
// 実行を継続する。起動直後に1回スイープを実行する。
func (s *Scheduler) Start(ctx context.Context) error {
	cronLogger := &slogCronLogger{logger: s.logger}

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger),
		cron.Recover(cronLogger),
	))

	_, err := c.AddFunc(s.schedule, func() {
		// エラーはスイープ内でログ・メトリクスに記録済み
		_ = s.sweeper.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron式の登録に失敗しました: %w", err)
	}

	s.logger.Info("リマインダースケジューラを開始しました",
		slog.String("schedule", s.schedule),
	)

	// 起動直後に1回実行
	_ = s.sweeper.RunOnce(ctx)

	s.cron = c
	c.Start()

	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()

	s.logger.Info("リマインダースケジューラを停止しました")
	return nil
}

// slogCronLogger はcron.Loggerをslogに委譲するアダプター。
type slogCronLogger struct {
	logger *slog.Logger
}

func (l *slogCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, cronAttrs(keysAndValues)...)
}

func (l *slogCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	attrs := cronAttrs(keysAndValues)
	attrs = append(attrs, slog.String("error", err.Error()))
	l.logger.Error(msg, attrs...)
}

func cronAttrs(keysAndValues []interface{}) []any {
	attrs := make([]any, 0, len(keysAndValues))
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		attrs = append(attrs, slog.Any(key, keysAndValues[i+1]))
	}
	return attrs
}
