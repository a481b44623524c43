package worker

import (
	"context"
	"fmt"
	"time"
	"todoTracker/internal/logger"
	"todoTracker/internal/metrics"
	"todoTracker/internal/models/task"

	"go.uber.org/zap"
)

const DefaultInterval = 5 * time.Minute

type OverdueCounter interface {
	CountOverdue(ctx context.Context, today time.Time) (int, error)
}

// OverdueWorker периодически считает просроченные задачи всех пользователей
// и публикует число в метрику. Задачи не изменяет
type OverdueWorker struct {
	repo     OverdueCounter
	interval time.Duration
	now      func() time.Time
}

func NewOverdueWorker(repo OverdueCounter, interval time.Duration) *OverdueWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &OverdueWorker{
		repo:     repo,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start блокируется до отмены ctx; первая проверка выполняется сразу
func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Фоновая проверка просроченных задач запущена", zap.Duration("interval", w.interval))
	w.check(ctx)

	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

func (w *OverdueWorker) check(ctx context.Context) {
	if _, err := w.Check(ctx); err != nil {
		logger.Warn("Worker: Ошибка подсчёта просроченных задач", zap.Error(err))
	}
}

func (w *OverdueWorker) Check(ctx context.Context) (int, error) {
	start := time.Now()
	today := task.TruncateDate(w.now())

	count, err := w.repo.CountOverdue(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("подсчёт просроченных задач: %w", err)
	}
	metrics.TasksOverdue.Set(float64(count))

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.String("today", today.Format(task.DateLayout)),
		zap.Int("overdue", count),
	)
	return count, nil
}
