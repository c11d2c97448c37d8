package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecell-kiet/recruitment-api/internal/models"
)

func newSettingsMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSettingsRepositoryGet(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("SELECT id, is_result_out, updated_at FROM settings").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_result_out", "updated_at"}).
			AddRow("set1", true, time.Now()))

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, settings.IsResultOut)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryGetEmpty(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("SELECT id, is_result_out, updated_at FROM settings").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background())
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("INSERT INTO settings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	settings := &models.Settings{IsResultOut: false}
	err := repo.Create(context.Background(), settings)
	require.NoError(t, err)
	assert.NotEmpty(t, settings.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
