package cron

import (
	"context"
	"fmt"
	"time"

	"saubio/config"
	"saubio/services/booking"
	"saubio/services/flow"
	"saubio/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt is the asynq connection for the job queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// Worker bundles the asynq server and the periodic scheduler.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	logger    *zap.Logger
}

// NewMux routes queued tasks to their handlers.
func NewMux(flowSvc flow.SessionService, bookingSvc booking.BookingService, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSuggestionFetch, handleSuggestionFetch(flowSvc, logger))
	mux.HandleFunc(tasks.TypeBookingSync, handleBookingSync(bookingSvc, logger))
	return mux
}

// StartWorker runs the job server and registers the booking sync schedule.
func StartWorker(flowSvc flow.SessionService, bookingSvc booking.BookingService, logger *zap.Logger) (*Worker, error) {
	redisOpts := RedisOpt()

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)
	mux := NewMux(flowSvc, bookingSvc, logger)

	const maxAttempts = 5
	for attempts := 1; ; attempts++ {
		err := srv.Start(mux)
		if err == nil {
			break
		}
		logger.Warn("Failed to start job worker",
			zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
		if attempts == maxAttempts {
			return nil, fmt.Errorf("job worker did not start after %d attempts: %w", maxAttempts, err)
		}
		time.Sleep(time.Duration(attempts*2) * time.Second)
	}

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   logger.Sugar(),
	})
	cronspec := config.AppConfig.BookingSyncCron
	if cronspec == "" {
		cronspec = "@every 5m"
	}
	if _, err := scheduler.Register(cronspec, tasks.NewBookingSyncTask(), asynq.Unique(time.Minute)); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("invalid BOOKING_SYNC_CRON %q: %w", cronspec, err)
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info("Job worker started", zap.String("bookingSync", cronspec))
	return &Worker{server: srv, scheduler: scheduler, logger: logger}, nil
}

// Shutdown stops the scheduler and waits for in-flight tasks.
func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	w.logger.Info("Job worker stopped")
}

func handleSuggestionFetch(svc flow.SessionService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseSuggestionFetchTask(task)
		if err != nil {
			logger.Error("Dropping suggestion fetch", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := svc.RunSuggestionFetch(ctx, p); err != nil {
			logger.Warn("Suggestion fetch will be retried",
				zap.String("sessionId", p.SessionID), zap.Error(err))
			return err
		}
		return nil
	}
}

func handleBookingSync(svc booking.BookingService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := svc.Sync(ctx)
		if err != nil {
			logger.Error("Booking sync failed", zap.Error(err))
			return err
		}
		logger.Debug("Booking sync done", zap.Int("written", n))
		return nil
	}
}
