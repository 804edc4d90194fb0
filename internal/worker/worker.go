package worker

import (
	"context"
	"time"

	"briefcast/internal/model"
	"briefcast/internal/store"

	"go.uber.org/zap"
)

// FeedRunner executes one harvest run. Satisfied by *pipeline.Runner.
type FeedRunner interface {
	RunFeed(ctx context.Context, feed string) (*model.Report, error)
}

type Worker struct {
	store  store.Store
	runner FeedRunner
	logger *zap.Logger
}

func NewWorker(store store.Store, runner FeedRunner, logger *zap.Logger) *Worker {
	return &Worker{
		store:  store,
		runner: runner,
		logger: logger,
	}
}

// Start runs the worker loop
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started. Waiting for jobs...")

	for {
		// Wait for job (Blocking call to Redis)
		feed, err := w.store.PopFeed(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Worker shutting down")
				return
			}
			w.logger.Error("Queue error", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		w.processJob(ctx, feed)
	}
}

func (w *Worker) processJob(ctx context.Context, feed string) {
	logger := w.logger.With(zap.String("feed", feed))
	logger.Info("Harvest started")

	report, err := w.runner.RunFeed(ctx, feed)
	if err != nil {
		logger.Error("Harvest failed",
			zap.Strings("errors", report.Errors),
			zap.Error(err))
		return
	}

	logger.Info("Harvest complete",
		zap.String("date", report.Date),
		zap.Int("extracted", report.Extracted),
		zap.Int("stored", report.Stored),
		zap.Bool("success", report.Success),
		zap.String("audio", report.AudioFile),
		zap.Float64("elapsed_s", report.Elapsed))
}
