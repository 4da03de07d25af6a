package services

import (
	"context"
	"fmt"
	"math"

	"taskfollowup/internal/models"
)

// TaskStatusReader filters task ids by status
type TaskStatusReader interface {
	TaskIDsWithStatus(ctx context.Context, ids []string, status string) ([]string, error)
}

// HistoryGetter loads a single history record
type HistoryGetter interface {
	Get(ctx context.Context, id string) (*models.HistoryReminder, error)
}

// Progress is the completion state of a record's task set
type Progress struct {
	Percentage float64
	TaskDone   int
}

// ProgressCalculator derives the completion percentage of a record
type ProgressCalculator struct {
	history HistoryGetter
	tasks   TaskStatusReader
}

func NewProgressCalculator(history HistoryGetter, tasks TaskStatusReader) *ProgressCalculator {
	return &ProgressCalculator{history: history, tasks: tasks}
}

// Calculate reads the record's current task set and computes its progress
func (c *ProgressCalculator) Calculate(ctx context.Context, historyID string) (Progress, error) {
	h, err := c.history.Get(ctx, historyID)
	if err != nil {
		return Progress{}, err
	}
	return c.ForTasks(ctx, h.TaskIDs)
}

// ForTasks computes progress as done / total * 100, two decimals. An empty set is 0.
func (c *ProgressCalculator) ForTasks(ctx context.Context, taskIDs []string) (Progress, error) {
	if len(taskIDs) == 0 {
		return Progress{}, nil
	}

	done, err := c.tasks.TaskIDsWithStatus(ctx, taskIDs, models.TaskStatusDone)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to count done tasks: %w", err)
	}

	percentage := float64(len(done)) / float64(len(taskIDs)) * 100
	return Progress{
		Percentage: math.Round(percentage*100) / 100,
		TaskDone:   len(done),
	}, nil
}
