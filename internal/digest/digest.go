// Package digest builds and delivers scheduled task summaries.
package digest

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/patchworkhq/hearth/internal/model"
	"github.com/patchworkhq/hearth/internal/push"
	"github.com/patchworkhq/hearth/internal/store"
)

// Notifier fans a payload out to a household's subscriptions.
type Notifier interface {
	SendToHousehold(householdID int64, payload push.Payload) push.Result
}

// RunResult reports how a digest run went across households.
type RunResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Service assembles daily digests and weekly summaries. One household's
// failure never blocks the rest of the run.
type Service struct {
	tasks      *store.TaskStore
	members    *store.FamilyMemberStore
	households *store.HouseholdStore
	push       *store.PushStore
	notifier   Notifier
	logger     *slog.Logger
}

func NewService(
	tasks *store.TaskStore,
	members *store.FamilyMemberStore,
	households *store.HouseholdStore,
	pushStore *store.PushStore,
	notifier Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		tasks:      tasks,
		members:    members,
		households: households,
		push:       pushStore,
		notifier:   notifier,
		logger:     logger,
	}
}

// SendDaily runs the daily digest for every household. A household is
// skipped without error when its digest for the day was already sent.
func (s *Service) SendDaily(now time.Time) (RunResult, error) {
	refID := now.UTC().Format("2006-01-02")
	return s.run(model.DigestDaily, refID, func(householdID int64) (string, error) {
		return s.buildDailyBody(householdID, now)
	}, "Daily Digest", "/tasks")
}

// SendWeekly runs the weekly summary for every household.
func (s *Service) SendWeekly(now time.Time) (RunResult, error) {
	// Reference by ISO week so a rerun within the same week is a no-op.
	year, week := now.UTC().ISOWeek()
	refID := fmt.Sprintf("%d-W%02d", year, week)
	return s.run(model.DigestWeekly, refID, func(householdID int64) (string, error) {
		return s.buildWeeklyBody(householdID, now)
	}, "Weekly Summary", "/tasks")
}

func (s *Service) run(digestType, refID string, build func(householdID int64) (string, error), title, url string) (RunResult, error) {
	householdIDs, err := s.households.ListIDs()
	if err != nil {
		return RunResult{}, fmt.Errorf("list households: %w", err)
	}

	var result RunResult
	var errs error
	for _, hid := range householdIDs {
		if err := s.runHousehold(hid, digestType, refID, build, title, url); err != nil {
			result.Failed++
			errs = multierr.Append(errs, fmt.Errorf("household %d: %w", hid, err))
			s.logger.Error("digest failed", "household_id", hid, "digest_type", digestType, "error", err)
			continue
		}
		result.Processed++
	}
	return result, errs
}

func (s *Service) runHousehold(householdID int64, digestType, refID string, build func(householdID int64) (string, error), title, url string) error {
	sent, err := s.push.WasSent(householdID, digestType, refID)
	if err != nil {
		return fmt.Errorf("check sent: %w", err)
	}
	if sent {
		return nil
	}

	body, err := build(householdID)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}

	s.notifier.SendToHousehold(householdID, push.Payload{
		Title: title,
		Body:  body,
		URL:   url,
		Tag:   digestType,
	})

	if err := s.push.RecordSent(householdID, digestType, refID); err != nil {
		return fmt.Errorf("record sent: %w", err)
	}
	return nil
}

// buildDailyBody summarizes overdue work, today's due tasks, and
// yesterday's completions.
func (s *Service) buildDailyBody(householdID int64, now time.Time) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	overdue, err := s.tasks.ListOverdue(householdID, dayStart)
	if err != nil {
		return "", err
	}
	dueToday, err := s.tasks.ListDueBetween(householdID, dayStart, dayEnd)
	if err != nil {
		return "", err
	}
	completedYesterday, err := s.tasks.ListCompletedBetween(householdID, dayStart.Add(-24*time.Hour), dayStart.Add(-time.Second))
	if err != nil {
		return "", err
	}

	names, err := s.memberNames(householdID)
	if err != nil {
		return "", err
	}

	var lines []string
	if len(overdue) > 0 {
		lines = append(lines, fmt.Sprintf("%d overdue", len(overdue)))
	}

	if len(dueToday) == 0 {
		lines = append(lines, "No tasks due today")
	} else {
		shown := dueToday
		if len(shown) > 3 {
			shown = shown[:3]
		}
		for _, task := range shown {
			line := task.Title
			if task.AssigneeID != nil {
				if name, ok := names[*task.AssigneeID]; ok {
					line = fmt.Sprintf("%s (%s)", task.Title, name)
				}
			}
			lines = append(lines, line)
		}
		if extra := len(dueToday) - len(shown); extra > 0 {
			lines = append(lines, fmt.Sprintf("+%d more", extra))
		}
	}

	if len(completedYesterday) > 0 {
		lines = append(lines, fmt.Sprintf("%d completed yesterday", len(completedYesterday)))
	}

	return strings.Join(lines, "\n"), nil
}

func (s *Service) buildWeeklyBody(householdID int64, now time.Time) (string, error) {
	weekEnd := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekStart := weekEnd.AddDate(0, 0, -7)

	stats, err := s.tasks.WeeklyStats(householdID, weekStart, weekEnd)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"This week: %d completed, %d created. Right now: %d pending, %d overdue.",
		stats.Completed, stats.Created, stats.Pending, stats.Overdue,
	), nil
}

func (s *Service) memberNames(householdID int64) (map[int64]string, error) {
	members, err := s.members.List(householdID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	return names, nil
}
