package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookupengine/lookupengine/pkg/lookuperr"
	"github.com/lookupengine/lookupengine/pkg/models"
)

func TestProfileRepository_Create_SecondDefaultConflicts(t *testing.T) {
	sqlxDB, mock := newMockRepo(t)
	repo := NewProfileRepository(sqlxDB)

	mock.ExpectPrepare(`INSERT INTO lookup_profiles`).
		ExpectQuery().
		WillReturnError(&pgconn.PgError{Code: "23505"})

	p := &models.Profile{ProjectID: "proj-1", ProfileName: "second", IsDefault: true}
	err := repo.Create(context.Background(), p)

	require.Error(t, err)
	var defaultErr *lookuperr.DefaultProfile
	assert.ErrorAs(t, err, &defaultErr)
	assert.Equal(t, "proj-1", defaultErr.ProjectID)
}

func TestProfileRepository_GetDefault_NoneConfiguredReturnsTypedError(t *testing.T) {
	sqlxDB, mock := newMockRepo(t)
	repo := NewProfileRepository(sqlxDB)

	mock.ExpectQuery(`SELECT \* FROM lookup_profiles WHERE project_id = \$1 AND is_default`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows(nil))

	_, err := repo.GetDefault(context.Background(), "proj-1")

	require.Error(t, err)
	var defaultErr *lookuperr.DefaultProfile
	assert.ErrorAs(t, err, &defaultErr)
}
