package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stikom-adp/siakad-api/internal/models"
	appErrors "github.com/stikom-adp/siakad-api/pkg/errors"
)

type mockPembayaranRepo struct {
	payments map[string]models.PembayaranDetail
	verifyOK bool
	verified map[string]models.PembayaranStatus
}

func (m *mockPembayaranRepo) List(ctx context.Context, filter models.PembayaranFilter) ([]models.PembayaranDetail, int, error) {
	return nil, 0, nil
}

func (m *mockPembayaranRepo) FindByID(ctx context.Context, id string) (*models.PembayaranDetail, error) {
	if p, ok := m.payments[id]; ok {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPembayaranRepo) Create(ctx context.Context, payment *models.Pembayaran) error {
	if m.payments == nil {
		m.payments = make(map[string]models.PembayaranDetail)
	}
	m.payments[payment.ID] = models.PembayaranDetail{Pembayaran: *payment}
	return nil
}

func (m *mockPembayaranRepo) Verify(ctx context.Context, id string, status models.PembayaranStatus, verifiedBy string, catatan string) (bool, error) {
	if !m.verifyOK {
		return false, nil
	}
	if m.verified == nil {
		m.verified = make(map[string]models.PembayaranStatus)
	}
	m.verified[id] = status
	if p, ok := m.payments[id]; ok {
		p.Status = status
		m.payments[id] = p
	}
	return true, nil
}

type mockProofStorage struct {
	saved map[string]string
}

func (m *mockProofStorage) SaveStream(relPath string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = make(map[string]string)
	}
	m.saved[relPath] = string(data)
	return relPath, nil
}

func (m *mockProofStorage) Open(relPath string) (io.ReadCloser, error) {
	data, ok := m.saved[relPath]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func newPembayaranFixture() (*mockPembayaranRepo, *mockProofStorage, *PembayaranService, *mockAuditRecorder) {
	repo := &mockPembayaranRepo{verifyOK: true}
	storage := &mockProofStorage{}
	audit := &mockAuditRecorder{}
	semesters := &mockSemesterReader{semesters: map[string]*models.Semester{
		"sem-1": {ID: "sem-1", Status: models.SemesterBerjalan},
	}}
	svc := NewPembayaranService(repo, storage, semesters, audit, validator.New(), zap.NewNop())
	return repo, storage, svc, audit
}

func submitRequest() SubmitPembayaranRequest {
	return SubmitPembayaranRequest{
		SemesterID: "sem-1",
		Jenis:      models.PembayaranSPP,
		Jumlah:     2500000,
		FileName:   "bukti.pdf",
		File:       strings.NewReader("%PDF-1.4"),
	}
}

func TestPembayaranServiceSubmit(t *testing.T) {
	repo, storage, svc, _ := newPembayaranFixture()

	payment, err := svc.Submit(context.Background(), "m1", submitRequest())
	require.NoError(t, err)
	assert.Equal(t, models.PembayaranPending, payment.Status)
	assert.Equal(t, "m1", payment.MahasiswaID)
	assert.Len(t, storage.saved, 1)
	assert.Len(t, repo.payments, 1)
}

func TestPembayaranServiceSubmitWithoutProof(t *testing.T) {
	_, _, svc, _ := newPembayaranFixture()
	req := submitRequest()
	req.File = nil

	_, err := svc.Submit(context.Background(), "m1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPembayaranServiceVerifyIsFinal(t *testing.T) {
	repo, _, svc, audit := newPembayaranFixture()
	repo.payments = map[string]models.PembayaranDetail{
		"pay-1": {Pembayaran: models.Pembayaran{ID: "pay-1", Status: models.PembayaranPending}},
	}

	payment, err := svc.Verify(context.Background(), "pay-1", VerifyPembayaranRequest{Approve: true}, "keu-1")
	require.NoError(t, err)
	assert.Equal(t, models.PembayaranVerified, payment.Status)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionVerify, audit.logs[0].Action)

	_, err = svc.Verify(context.Background(), "pay-1", VerifyPembayaranRequest{Approve: false}, "keu-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestPembayaranServiceVerifyLostRace(t *testing.T) {
	repo, _, svc, _ := newPembayaranFixture()
	repo.verifyOK = false
	repo.payments = map[string]models.PembayaranDetail{
		"pay-1": {Pembayaran: models.Pembayaran{ID: "pay-1", Status: models.PembayaranPending}},
	}

	_, err := svc.Verify(context.Background(), "pay-1", VerifyPembayaranRequest{Approve: true}, "keu-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestPembayaranServiceOpenBukti(t *testing.T) {
	repo, _, svc, _ := newPembayaranFixture()

	payment, err := svc.Submit(context.Background(), "m1", submitRequest())
	require.NoError(t, err)
	repo.payments[payment.ID] = *payment

	rc, name, err := svc.OpenBukti(context.Background(), payment.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Contains(t, name, ".pdf")
}
