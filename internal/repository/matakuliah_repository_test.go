package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stikom-adp/siakad-api/internal/models"
)

func newMataKuliahRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMataKuliahRepositoryUpsertByKode(t *testing.T) {
	db, mock, cleanup := newMataKuliahRepoMock(t)
	defer cleanup()
	repo := NewMataKuliahRepository(db)

	mock.ExpectExec("INSERT INTO mata_kuliah").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mk := &models.MataKuliah{KodeMK: "IF101", Nama: "Algoritma dan Pemrograman", SKS: 3, SemesterIdeal: 1, Aktif: true}
	require.NoError(t, repo.UpsertByKode(context.Background(), mk))
	assert.NotEmpty(t, mk.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMataKuliahRepositoryUpsertKeepsExistingID(t *testing.T) {
	db, mock, cleanup := newMataKuliahRepoMock(t)
	defer cleanup()
	repo := NewMataKuliahRepository(db)

	mock.ExpectExec("INSERT INTO mata_kuliah").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mk := &models.MataKuliah{ID: "mk-1", KodeMK: "IF101", Nama: "Algoritma dan Pemrograman", SKS: 3, SemesterIdeal: 1, Aktif: true}
	require.NoError(t, repo.UpsertByKode(context.Background(), mk))
	assert.Equal(t, "mk-1", mk.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMataKuliahRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newMataKuliahRepoMock(t)
	defer cleanup()
	repo := NewMataKuliahRepository(db)

	mock.ExpectExec("UPDATE mata_kuliah SET aktif = false").
		WithArgs("mk-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "mk-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
