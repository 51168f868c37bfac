// Package scheduler runs the engine's periodic maintenance: the daily and
// weekly XP window resets and the hourly due-review reminder scan. Wall-clock
// policy lives here; the engine only exposes the operations.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/lingopal/internal/logger"
	"github.com/example/lingopal/internal/progression"
	"github.com/example/lingopal/pkg/models"
)

const jobTimeout = 2 * time.Minute

// Notifier delivers due-review reminders. Delivery is out of the engine's
// scope; the daemon installs a logging notifier by default.
type Notifier interface {
	RemindDueReviews(userID string, count int) error
}

// Config holds the reminder-scan policy.
type Config struct {
	// ReminderStartHour and ReminderEndHour bound the UTC hours during
	// which reminders go out.
	ReminderStartHour int
	ReminderEndHour   int
	// ReminderLimit caps how many users one scan notifies.
	ReminderLimit int
}

// Scheduler manages the engine's scheduled jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	engine    *progression.Engine
	notifier  Notifier
	cfg       Config
	log       *logger.Logger
}

// New creates a scheduler instance. Jobs run on UTC wall clock.
func New(engine *progression.Engine, notifier Notifier, cfg Config, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		engine:    engine,
		notifier:  notifier,
		cfg:       cfg,
		log:       log.With("component", "scheduler"),
	}
}

// Start registers all jobs and begins running them asynchronously.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Day().At("00:00").Do(s.resetDaily)
	s.scheduler.Every(1).Monday().At("00:00").Do(s.resetWeekly)
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) resetDaily() {
	s.resetWindow(models.WindowDaily)
}

func (s *Scheduler) resetWeekly() {
	s.resetWindow(models.WindowWeekly)
}

func (s *Scheduler) resetWindow(window models.Window) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.engine.ResetWindows(ctx, window); err != nil {
		s.log.Error("window reset failed", "window", window, "error", err)
	}
}

// checkAndSendReminders notifies users holding due reviews, respecting the
// configured quiet hours.
func (s *Scheduler) checkAndSendReminders() {
	currentHour := time.Now().UTC().Hour()
	if currentHour < s.cfg.ReminderStartHour || currentHour > s.cfg.ReminderEndHour {
		s.log.Debug("outside reminder hours, skipping scan",
			"hour", currentHour,
			"start", s.cfg.ReminderStartHour,
			"end", s.cfg.ReminderEndHour,
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	due, err := s.engine.UsersWithDueItems(ctx, s.cfg.ReminderLimit)
	if err != nil {
		s.log.Error("due-review scan failed", "error", err)
		return
	}
	for _, d := range due {
		if err := s.notifier.RemindDueReviews(d.UserID, d.Due); err != nil {
			s.log.Error("reminder delivery failed", "user_id", d.UserID, "error", err)
		}
	}
}

// RunManualCheck forces a reminder check for a single user.
func (s *Scheduler) RunManualCheck(ctx context.Context, userID string) error {
	due, err := s.engine.DueForReview(ctx, userID, s.cfg.ReminderLimit)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}
	return s.notifier.RemindDueReviews(userID, len(due))
}
