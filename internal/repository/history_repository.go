package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"taskfollowup/internal/models"
	"taskfollowup/internal/query"
)

// Custom errors
var ErrHistoryReminderNotFound = errors.New("history reminder not found")

// HistoryRepository persists and queries history records
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a repository on db
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// List runs the filter, sort and paging over the history and stamps every record with the total
func (r *HistoryRepository) List(ctx context.Context, filter models.HistoryFilter, sorting models.HistorySorting, page models.Pagination, lang string) (models.HistoryPage, error) {
	p := query.Paginate(query.Compile(filter, sorting, lang), page)

	var rows []query.Row
	if err := r.db.WithContext(ctx).Model(&models.HistoryReminder{}).Scopes(p...).Find(&rows).Error; err != nil {
		return models.HistoryPage{}, fmt.Errorf("error listing history reminders: %w", err)
	}

	result := query.Collect(rows)
	for i := range result.Records {
		count := int(result.Total)
		result.Records[i].CountDocument = &count
	}
	return result, nil
}

// DistinctRefIDs lists every reference code in use
func (r *HistoryRepository) DistinctRefIDs(ctx context.Context) ([]string, error) {
	refs := make([]string, 0)
	err := r.db.WithContext(ctx).Model(&models.HistoryReminder{}).
		Distinct("ref_id").
		Where("ref_id <> ''").
		Order("ref_id").
		Pluck("ref_id", &refs).Error
	if err != nil {
		return nil, fmt.Errorf("error listing reference codes: %w", err)
	}
	return refs, nil
}

// DistinctRncpTitles lists the titles referenced by at least one record
func (r *HistoryRepository) DistinctRncpTitles(ctx context.Context) ([]models.RncpTitle, error) {
	titles := make([]models.RncpTitle, 0)
	db := r.db.WithContext(ctx)
	err := db.
		Where("id IN (?)", db.Model(&models.HistoryReminder{}).Distinct("rncp_title_id")).
		Order("short_name").
		Find(&titles).Error
	if err != nil {
		return nil, fmt.Errorf("error listing titles: %w", err)
	}
	return titles, nil
}

// DistinctClasses lists the classes referenced by at least one record
func (r *HistoryRepository) DistinctClasses(ctx context.Context) ([]models.Class, error) {
	classes := make([]models.Class, 0)
	db := r.db.WithContext(ctx)
	err := db.
		Where("id IN (?)", db.Model(&models.HistoryReminder{}).Distinct("class_id")).
		Order("name").
		Find(&classes).Error
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	return classes, nil
}

// DistinctSchools lists the schools referenced by at least one record
func (r *HistoryRepository) DistinctSchools(ctx context.Context) ([]models.School, error) {
	schools := make([]models.School, 0)
	db := r.db.WithContext(ctx)
	err := db.
		Where("id IN (?)", db.Model(&models.HistoryReminder{}).Distinct("school_id")).
		Order("short_name").
		Find(&schools).Error
	if err != nil {
		return nil, fmt.Errorf("error listing schools: %w", err)
	}
	return schools, nil
}

// DistinctTaskDone lists the done counts present in the history
func (r *HistoryRepository) DistinctTaskDone(ctx context.Context) ([]int, error) {
	return r.distinctCounts(ctx, "task_done")
}

// DistinctTaskTransfered lists the transferred counts present in the history
func (r *HistoryRepository) DistinctTaskTransfered(ctx context.Context) ([]int, error) {
	return r.distinctCounts(ctx, "total_task_transfered")
}

// DistinctTaskClosed lists the closed counts present in the history
func (r *HistoryRepository) DistinctTaskClosed(ctx context.Context) ([]int, error) {
	return r.distinctCounts(ctx, "total_task_closed")
}

func (r *HistoryRepository) distinctCounts(ctx context.Context, column string) ([]int, error) {
	counts := make([]int, 0)
	err := r.db.WithContext(ctx).Model(&models.HistoryReminder{}).
		Distinct(column).
		Where(column + " IS NOT NULL").
		Order(column).
		Pluck(column, &counts).Error
	if err != nil {
		return nil, fmt.Errorf("error listing %s values: %w", column, err)
	}
	return counts, nil
}

// Get returns one record
func (r *HistoryRepository) Get(ctx context.Context, id string) (*models.HistoryReminder, error) {
	var h models.HistoryReminder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryReminderNotFound
		}
		return nil, fmt.Errorf("error getting history reminder: %w", err)
	}
	return &h, nil
}

// TemplateInUse reports whether any record was sent from the template
func (r *HistoryRepository) TemplateInUse(ctx context.Context, templateID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HistoryReminder{}).
		Where("template_reminder_id = ?", templateID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("error checking template usage: %w", err)
	}
	return count > 0, nil
}

// CreateMany inserts the records in one statement
func (r *HistoryRepository) CreateMany(ctx context.Context, records []models.HistoryReminder) error {
	if len(records) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("error creating history reminders: %w", err)
	}
	return nil
}

// Update applies the fields present in input and returns the record as stored
func (r *HistoryRepository) Update(ctx context.Context, id string, input models.HistoryReminderInput) (*models.HistoryReminder, error) {
	var h models.HistoryReminder
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&h).Error; err != nil {
			return err
		}
		input.ApplyTo(&h)
		h.UpdatedAt = time.Now()
		return tx.Save(&h).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryReminderNotFound
		}
		return nil, fmt.Errorf("error updating history reminder: %w", err)
	}
	return &h, nil
}

// Delete removes the record and returns it
func (r *HistoryRepository) Delete(ctx context.Context, id string) (*models.HistoryReminder, error) {
	var h models.HistoryReminder
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&h).Error; err != nil {
			return err
		}
		return tx.Delete(&h).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryReminderNotFound
		}
		return nil, fmt.Errorf("error deleting history reminder: %w", err)
	}
	return &h, nil
}

// FindByScope returns the records matching all four ids of the scope
func (r *HistoryRepository) FindByScope(ctx context.Context, scope models.Scope) ([]models.HistoryReminder, error) {
	records := make([]models.HistoryReminder, 0)
	err := r.db.WithContext(ctx).
		Where("academic_director_id = ? AND school_id = ? AND rncp_title_id = ? AND class_id = ?",
			scope.AcademicDirectorID, scope.SchoolID, scope.RncpTitleID, scope.ClassID).
		Order("created_at, id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("error finding history reminders by scope: %w", err)
	}
	return records, nil
}

// SetTaskPartition stores the done ids as the record's task set and the todo ids as transferred
func (r *HistoryRepository) SetTaskPartition(ctx context.Context, id string, done, todo []string) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"task_ids":              pq.StringArray(nonNil(done)),
		"transfered_task_ids":   pq.StringArray(nonNil(todo)),
		"total_task_transfered": len(todo),
	})
}

// SetProgress stores the completion percentage and done count
func (r *HistoryRepository) SetProgress(ctx context.Context, id string, percentage float64, done int) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"percentage_task_after_send": percentage,
		"task_done":                  done,
	})
}

func (r *HistoryRepository) updateColumns(ctx context.Context, id string, columns map[string]interface{}) error {
	columns["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&models.HistoryReminder{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return fmt.Errorf("error updating history reminder %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrHistoryReminderNotFound
	}
	return nil
}

// EachWithTasks walks every record with a non-empty task set, batchSize records at a time
func (r *HistoryRepository) EachWithTasks(ctx context.Context, batchSize int, fn func([]models.HistoryReminder) error) error {
	var batch []models.HistoryReminder
	res := r.db.WithContext(ctx).
		Where("cardinality(history_reminder.task_ids) > 0").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	if res.Error != nil {
		return fmt.Errorf("error scanning history reminders: %w", res.Error)
	}
	return nil
}

// nonNil keeps empty sets as '{}' instead of NULL
func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
