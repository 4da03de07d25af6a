package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskfollowup/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// DirectoryRepository reads the platform entities history records point to
type DirectoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a repository on db
func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// TemplatesByID loads the templates with the given ids, keyed by id
func (r *DirectoryRepository) TemplatesByID(ctx context.Context, ids []string) (map[string]models.TemplateReminder, error) {
	return byID(ctx, r.db, ids, func(t models.TemplateReminder) string { return t.ID })
}

// RncpTitlesByID loads the titles with the given ids, keyed by id
func (r *DirectoryRepository) RncpTitlesByID(ctx context.Context, ids []string) (map[string]models.RncpTitle, error) {
	return byID(ctx, r.db, ids, func(t models.RncpTitle) string { return t.ID })
}

// ClassesByID loads the classes with the given ids, keyed by id
func (r *DirectoryRepository) ClassesByID(ctx context.Context, ids []string) (map[string]models.Class, error) {
	return byID(ctx, r.db, ids, func(c models.Class) string { return c.ID })
}

// SchoolsByID loads the schools with the given ids, keyed by id
func (r *DirectoryRepository) SchoolsByID(ctx context.Context, ids []string) (map[string]models.School, error) {
	return byID(ctx, r.db, ids, func(s models.School) string { return s.ID })
}

// UsersByID loads the users with the given ids, keyed by id
func (r *DirectoryRepository) UsersByID(ctx context.Context, ids []string) (map[string]models.User, error) {
	return byID(ctx, r.db, ids, func(u models.User) string { return u.ID })
}

// User returns a single user
func (r *DirectoryRepository) User(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return &u, nil
}

// TaskIDsWithStatus returns the subset of ids whose task has the given status
func (r *DirectoryRepository) TaskIDsWithStatus(ctx context.Context, ids []string, status string) ([]string, error) {
	matched := make([]string, 0)
	if len(ids) == 0 {
		return matched, nil
	}
	err := r.db.WithContext(ctx).Model(&models.AcadTask{}).
		Where("id IN ? AND task_status = ?", ids, status).
		Pluck("id", &matched).Error
	if err != nil {
		return nil, fmt.Errorf("error getting %s tasks: %w", status, err)
	}
	return matched, nil
}

func byID[T any](ctx context.Context, db *gorm.DB, ids []string, key func(T) string) (map[string]T, error) {
	out := make(map[string]T, len(ids))
	ids = distinct(ids)
	if len(ids) == 0 {
		return out, nil
	}

	var rows []T
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error loading %T by id: %w", *new(T), err)
	}
	for _, row := range rows {
		out[key(row)] = row
	}
	return out, nil
}

// distinct drops empty and repeated ids, keeping first occurrences
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
