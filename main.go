package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/lingopal/internal/config"
	"github.com/example/lingopal/internal/database"
	"github.com/example/lingopal/internal/logger"
	"github.com/example/lingopal/internal/progression"
	"github.com/example/lingopal/internal/scheduler"
)

// logNotifier stands in for a real delivery channel: reminder decisions come
// from the engine, delivery belongs to an outer service.
type logNotifier struct {
	log *logger.Logger
}

func (n *logNotifier) RemindDueReviews(userID string, count int) error {
	n.log.Info("reviews due", "user_id", userID, "count", count)
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	db, err := database.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		appLog.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	items := database.NewVocabularyRepository(db)
	users := database.NewProgressionRepository(db)
	awards := database.NewAwardRepository(db, users)
	engine := progression.New(items, users, awards, appLog)

	sched := scheduler.New(engine, &logNotifier{log: appLog}, scheduler.Config{
		ReminderStartHour: cfg.ReminderStartHour,
		ReminderEndHour:   cfg.ReminderEndHour,
		ReminderLimit:     cfg.ReminderLimit,
	}, appLog)
	sched.Start()
	defer sched.Stop()

	appLog.Info("progression daemon started", "driver", cfg.DBDriver)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.Info("shutting down", "signal", sig.String())
}
