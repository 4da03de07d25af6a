package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskfollowup/internal/models"
)

func TestTaskIDsWithStatusSkipsEmptyInput(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewDirectoryRepository(db)

	ids, err := repo.TaskIDsWithStatus(context.Background(), nil, models.TaskStatusDone)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestTaskIDsWithStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery(`FROM "acad_task" WHERE id IN \(\$1,\$2\) AND task_status = \$3`).
		WithArgs("t1", "t2", "done").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t2"))

	ids, err := repo.TaskIDsWithStatus(context.Background(), []string{"t1", "t2"}, models.TaskStatusDone)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2"}, ids)
}

func TestUsersByIDDeduplicatesAndKeys(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id IN \(\$1,\$2\)`).
		WithArgs("u1", "u2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name"}).
			AddRow("u1", "Jean", "Martin"))

	users, err := repo.UsersByID(context.Background(), []string{"u1", "", "u2", "u1"})
	require.NoError(t, err)

	assert.Len(t, users, 1)
	assert.Equal(t, "Martin", users["u1"].LastName)
	_, ok := users["u2"]
	assert.False(t, ok)
}

func TestUserNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDirectoryRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	u, err := repo.User(context.Background(), "nobody")
	assert.Nil(t, u)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSchoolsByIDEmpty(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewDirectoryRepository(db)

	schools, err := repo.SchoolsByID(context.Background(), []string{"", ""})
	require.NoError(t, err)
	assert.Empty(t, schools)
}
