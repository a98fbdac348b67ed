package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/lookupengine/lookupengine/pkg/models"
)

func newMockRepo(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func nowRow() time.Time {
	return time.Now()
}

func TestDataSourceRepository_CreateNewVersion_IncrementsAndClearsPriorLatest(t *testing.T) {
	sqlxDB, mock := newMockRepo(t)
	repo := NewDataSourceRepository(sqlxDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE lookup_data_sources SET is_latest = false`).
		WithArgs("proj-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT MAX\(version_number\)`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(2))
	mock.ExpectQuery(`INSERT INTO lookup_data_sources`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("ds-new", nowRow()))
	mock.ExpectCommit()

	ds := &models.DataSource{ProjectID: "proj-1", FileName: "a.pdf", FilePath: "/blob/a.pdf", FileType: models.FileTypePDF}
	err := repo.CreateNewVersion(context.Background(), ds)

	require.NoError(t, err)
	require.Equal(t, 3, ds.VersionNumber)
	require.True(t, ds.IsLatest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDataSourceRepository_CreateNewVersion_FirstUploadStartsAtOne(t *testing.T) {
	sqlxDB, mock := newMockRepo(t)
	repo := NewDataSourceRepository(sqlxDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE lookup_data_sources SET is_latest = false`).
		WithArgs("proj-2").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT MAX\(version_number\)`).
		WithArgs("proj-2").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))
	mock.ExpectQuery(`INSERT INTO lookup_data_sources`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("ds-1", nowRow()))
	mock.ExpectCommit()

	ds := &models.DataSource{ProjectID: "proj-2", FileName: "b.csv", FilePath: "/blob/b.csv", FileType: models.FileTypeCSV}
	err := repo.CreateNewVersion(context.Background(), ds)

	require.NoError(t, err)
	require.Equal(t, 1, ds.VersionNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}
