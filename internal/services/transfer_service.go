package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"taskfollowup/internal/models"
)

// TransferStore is the history storage the reconciler works on
type TransferStore interface {
	FindByScope(ctx context.Context, scope models.Scope) ([]models.HistoryReminder, error)
	SetTaskPartition(ctx context.Context, id string, done, todo []string) error
	SetProgress(ctx context.Context, id string, percentage float64, done int) error
}

// TransferRequest asks for the history of a scope to be reconciled after its tasks moved to another director
type TransferRequest struct {
	TaskIDs []string     `json:"transfered_task_ids"`
	Scope   models.Scope `json:"scope" binding:"required"`
}

// TransferSummary reports what a reconciliation changed
type TransferSummary struct {
	Updated      int `json:"updated"`
	Skipped      int `json:"skipped"`
	DroppedTasks int `json:"dropped_tasks"`
}

// TransferService moves outstanding tasks of history records into their transferred set
type TransferService struct {
	history    TransferStore
	tasks      TaskStatusReader
	calculator *ProgressCalculator
	log        logrus.FieldLogger
}

func NewTransferService(history TransferStore, tasks TaskStatusReader, calculator *ProgressCalculator, log logrus.FieldLogger) *TransferService {
	return &TransferService{
		history:    history,
		tasks:      tasks,
		calculator: calculator,
		log:        log.WithField("component", "transfer_service"),
	}
}

// CountTransferredTasks splits every in-scope record's tasks into done (kept) and todo (transferred),
// then refreshes its progress. Records are processed in order and the first failure stops the run.
func (s *TransferService) CountTransferredTasks(ctx context.Context, req TransferRequest) (TransferSummary, error) {
	var summary TransferSummary
	log := s.log.WithFields(logrus.Fields{
		"academic_director_id": req.Scope.AcademicDirectorID,
		"school_id":            req.Scope.SchoolID,
		"rncp_title_id":        req.Scope.RncpTitleID,
		"class_id":             req.Scope.ClassID,
		"requested_tasks":      len(req.TaskIDs),
	})

	records, err := s.history.FindByScope(ctx, req.Scope)
	if err != nil {
		return summary, err
	}

	for _, h := range records {
		if len(h.TaskIDs) == 0 {
			summary.Skipped++
			continue
		}

		dropped, err := s.reconcile(ctx, h)
		if err != nil {
			return summary, fmt.Errorf("failed to reconcile history reminder %s: %w", h.ID, err)
		}
		if dropped > 0 {
			log.WithField("history_reminder_id", h.ID).Warnf("%d tasks are neither done nor todo and were dropped", dropped)
		}
		summary.DroppedTasks += dropped
		summary.Updated++
	}

	log.WithFields(logrus.Fields{
		"updated": summary.Updated,
		"skipped": summary.Skipped,
		"dropped": summary.DroppedTasks,
	}).Info("Transferred tasks counted")
	return summary, nil
}

func (s *TransferService) reconcile(ctx context.Context, h models.HistoryReminder) (int, error) {
	doneIDs, err := s.tasks.TaskIDsWithStatus(ctx, h.TaskIDs, models.TaskStatusDone)
	if err != nil {
		return 0, err
	}
	todoIDs, err := s.tasks.TaskIDsWithStatus(ctx, h.TaskIDs, models.TaskStatusTodo)
	if err != nil {
		return 0, err
	}

	isDone := toSet(doneIDs)
	isTodo := toSet(todoIDs)
	done := make([]string, 0, len(doneIDs))
	todo := make([]string, 0, len(todoIDs))
	dropped := 0
	for _, id := range h.TaskIDs {
		switch {
		case isDone[id]:
			done = append(done, id)
		case isTodo[id]:
			todo = append(todo, id)
		default:
			dropped++
		}
	}

	if err := s.history.SetTaskPartition(ctx, h.ID, done, todo); err != nil {
		return 0, err
	}

	progress, err := s.calculator.Calculate(ctx, h.ID)
	if err != nil {
		return 0, err
	}
	if err := s.history.SetProgress(ctx, h.ID, progress.Percentage, progress.TaskDone); err != nil {
		return 0, err
	}
	return dropped, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
