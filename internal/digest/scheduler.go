package digest

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler fires the daily digest and weekly summary at configured hours.
// Sends are deduplicated per period in the store, so the scheduler and an
// external cron hitting the admin endpoints can coexist.
type Scheduler struct {
	mu         sync.RWMutex
	service    *Service
	logger     *slog.Logger
	interval   time.Duration
	dailyHour  int
	weeklyDay  time.Weekday
	weeklyHour int
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewScheduler(service *Service, logger *slog.Logger, dailyHour int, weeklyDay time.Weekday, weeklyHour int) *Scheduler {
	return &Scheduler{
		service:    service,
		logger:     logger,
		interval:   60 * time.Second,
		dailyHour:  dailyHour,
		weeklyDay:  weeklyDay,
		weeklyHour: weeklyHour,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now().UTC())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(now time.Time) {
	if now.Hour() == s.dailyHour {
		result, err := s.service.SendDaily(now)
		if err != nil {
			s.logger.Error("daily digest run", "error", err, "processed", result.Processed, "failed", result.Failed)
		} else if result.Processed > 0 {
			s.logger.Info("daily digest run", "processed", result.Processed)
		}
	}

	if now.Weekday() == s.weeklyDay && now.Hour() == s.weeklyHour {
		result, err := s.service.SendWeekly(now)
		if err != nil {
			s.logger.Error("weekly summary run", "error", err, "processed", result.Processed, "failed", result.Failed)
		} else if result.Processed > 0 {
			s.logger.Info("weekly summary run", "processed", result.Processed)
		}
	}
}
