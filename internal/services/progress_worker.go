package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"taskfollowup/internal/models"
)

const progressBatchSize = 100

// ProgressScanner walks the records that have tasks and stores their progress
type ProgressScanner interface {
	EachWithTasks(ctx context.Context, batchSize int, fn func([]models.HistoryReminder) error) error
	SetProgress(ctx context.Context, id string, percentage float64, done int) error
}

// ProgressWorker periodically recomputes the completion percentage of every record
type ProgressWorker struct {
	cronEngine *cron.Cron
	history    ProgressScanner
	calculator *ProgressCalculator
	log        logrus.FieldLogger
	spec       string
	timeout    time.Duration
}

func NewProgressWorker(history ProgressScanner, calculator *ProgressCalculator, log logrus.FieldLogger, spec string) *ProgressWorker {
	return &ProgressWorker{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		history:    history,
		calculator: calculator,
		log:        log.WithField("component", "progress_worker"),
		spec:       spec,
		timeout:    30 * time.Minute,
	}
}

// Start registers the job and starts the scheduler
func (w *ProgressWorker) Start() error {
	_, err := w.cronEngine.AddFunc(w.spec, func() {
		w.log.Info("Progress refresh triggered")
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		if _, err := w.Refresh(ctx); err != nil {
			w.log.Errorf("Progress refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("could not add progress refresh job %q: %w", w.spec, err)
	}

	w.cronEngine.Start()
	w.log.Infof("Progress worker scheduled with spec %q", w.spec)
	return nil
}

// Stop stops the scheduler and waits for a running refresh
func (w *ProgressWorker) Stop() {
	<-w.cronEngine.Stop().Done()
}

// Refresh recomputes progress for every record with tasks. A failing record is logged and skipped.
func (w *ProgressWorker) Refresh(ctx context.Context) (int, error) {
	refreshed, failed := 0, 0
	err := w.history.EachWithTasks(ctx, progressBatchSize, func(batch []models.HistoryReminder) error {
		for _, h := range batch {
			progress, err := w.calculator.ForTasks(ctx, h.TaskIDs)
			if err == nil {
				err = w.history.SetProgress(ctx, h.ID, progress.Percentage, progress.TaskDone)
			}
			if err != nil {
				failed++
				w.log.WithField("history_reminder_id", h.ID).Warnf("Failed to refresh progress: %v", err)
				continue
			}
			refreshed++
		}
		return ctx.Err()
	})
	if err != nil {
		return refreshed, err
	}

	w.log.WithFields(logrus.Fields{"refreshed": refreshed, "failed": failed}).Info("Progress refresh completed")
	return refreshed, nil
}
