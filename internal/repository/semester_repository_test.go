package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stikom-adp/siakad-api/internal/models"
)

func newSemesterRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSemesterRepositorySetActive(t *testing.T) {
	db, mock, cleanup := newSemesterRepoMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE semester SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE AND id <> $2")).
		WithArgs(sqlmock.AnyArg(), "sem-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE semester SET is_active = TRUE, updated_at = $2 WHERE id = $1")).
		WithArgs("sem-2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SetActive(context.Background(), "sem-2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositorySetActiveRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newSemesterRepoMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE semester SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE AND id <> $2")).
		WithArgs(sqlmock.AnyArg(), "sem-2").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.SetActive(context.Background(), "sem-2")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryFindActive(t *testing.T) {
	db, mock, cleanup := newSemesterRepoMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	rows := sqlmock.NewRows([]string{"id", "tahun_ajaran", "periode", "status", "is_active", "krs_mulai", "krs_selesai", "created_at", "updated_at"}).
		AddRow("sem-1", "2026/2027", string(models.PeriodeGanjil), string(models.SemesterPendaftaran), true, time.Now(), time.Now().Add(14*24*time.Hour), time.Now(), time.Now())
	mock.ExpectQuery("SELECT .+ FROM semester WHERE is_active = TRUE").
		WillReturnRows(rows)

	semester, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sem-1", semester.ID)
	assert.True(t, semester.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryExistsByTahunPeriode(t *testing.T) {
	db, mock, cleanup := newSemesterRepoMock(t)
	defer cleanup()
	repo := NewSemesterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM semester WHERE tahun_ajaran = $1 AND periode = $2 LIMIT 1")).
		WithArgs("2026/2027", string(models.PeriodeGanjil)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsByTahunPeriode(context.Background(), "2026/2027", models.PeriodeGanjil, "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
