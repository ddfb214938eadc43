package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stikom-adp/siakad-api/internal/models"
)

func newKRSRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestKRSRepositoryCreateWithDetails(t *testing.T) {
	db, mock, cleanup := newKRSRepoMock(t)
	defer cleanup()
	repo := NewKRSRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO krs ").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO krs_detail").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "kelas-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO krs_detail").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "kelas-2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	krs := &models.KRS{MahasiswaID: "mhs-1", SemesterID: "sem-1", Status: models.KRSPending}
	require.NoError(t, repo.CreateWithDetails(context.Background(), krs, []string{"kelas-1", "kelas-2"}))
	assert.NotEmpty(t, krs.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKRSRepositoryCreateWithDetailsRollsBack(t *testing.T) {
	db, mock, cleanup := newKRSRepoMock(t)
	defer cleanup()
	repo := NewKRSRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO krs ").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO krs_detail").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "kelas-1", sqlmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	krs := &models.KRS{MahasiswaID: "mhs-1", SemesterID: "sem-1", Status: models.KRSPending}
	err := repo.CreateWithDetails(context.Background(), krs, []string{"kelas-1"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKRSRepositoryDecide(t *testing.T) {
	db, mock, cleanup := newKRSRepoMock(t)
	defer cleanup()
	repo := NewKRSRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'PENDING'")).
		WithArgs("krs-1", string(models.KRSApproved), sqlmock.AnyArg(), "admin-1", "ok").
		WillReturnResult(sqlmock.NewResult(0, 1))

	decided, err := repo.Decide(context.Background(), "krs-1", models.KRSApproved, "admin-1", "ok")
	require.NoError(t, err)
	assert.True(t, decided)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKRSRepositoryDecideAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newKRSRepoMock(t)
	defer cleanup()
	repo := NewKRSRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'PENDING'")).
		WithArgs("krs-1", string(models.KRSRejected), sqlmock.AnyArg(), "admin-1", "invalid").
		WillReturnResult(sqlmock.NewResult(0, 0))

	decided, err := repo.Decide(context.Background(), "krs-1", models.KRSRejected, "admin-1", "invalid")
	require.NoError(t, err)
	assert.False(t, decided)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKRSRepositoryCountSeats(t *testing.T) {
	db, mock, cleanup := newKRSRepoMock(t)
	defer cleanup()
	repo := NewKRSRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE kd.kelas_mk_id = $1 AND k.status IN ('PENDING', 'APPROVED')")).
		WithArgs("kelas-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(29))

	total, err := repo.CountSeats(context.Background(), "kelas-1")
	require.NoError(t, err)
	assert.Equal(t, 29, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
