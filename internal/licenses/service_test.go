package licenses

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/licensepro/alvara-backend/pkg/db/models"
	"github.com/licensepro/alvara-backend/pkg/enums"
	pkgerrors "github.com/licensepro/alvara-backend/pkg/errors"
	"github.com/licensepro/alvara-backend/pkg/logger"
	pkgpagination "github.com/licensepro/alvara-backend/pkg/pagination"
)

type stubLicenseRepo struct {
	created     *models.License
	createErr   error
	findResult  *models.License
	findErr     error
	listRows    []models.License
	listErr     error
	lastQuery   listQuery
	updated     *models.License
	updateErr   error
	storageKeys []string
	deleteErr   error
	deletedID   uuid.UUID
	expirations []time.Time
	expErr      error
}

func (s *stubLicenseRepo) Create(ctx context.Context, license *models.License) (*models.License, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = license
	return license, nil
}

func (s *stubLicenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.findResult == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.findResult, nil
}

func (s *stubLicenseRepo) List(ctx context.Context, opts listQuery) ([]models.License, error) {
	s.lastQuery = opts
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listRows, nil
}

func (s *stubLicenseRepo) Update(ctx context.Context, license *models.License) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = license
	return nil
}

func (s *stubLicenseRepo) StorageKeysWithTx(tx *gorm.DB, licenseID uuid.UUID) ([]string, error) {
	return s.storageKeys, nil
}

func (s *stubLicenseRepo) DeleteWithTx(tx *gorm.DB, licenseID uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedID = licenseID
	return nil
}

func (s *stubLicenseRepo) Expirations(ctx context.Context, companyID *uuid.UUID) ([]time.Time, error) {
	if s.expErr != nil {
		return nil, s.expErr
	}
	return s.expirations, nil
}

type stubCompaniesRepo struct {
	company  *models.Company
	findErr  error
	count    int64
	countErr error
}

func (s *stubCompaniesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.company == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.company, nil
}

func (s *stubCompaniesRepo) Count(ctx context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

type stubTxRunner struct {
	err error
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(&gorm.DB{})
}

type stubStorage struct {
	deleted []string
}

func (s *stubStorage) DeleteObject(ctx context.Context, bucket, object string) error {
	s.deleted = append(s.deleted, object)
	return nil
}

type stubSigner struct {
	url string
	err error
}

func (s *stubSigner) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url + object, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, repo *stubLicenseRepo, companies *stubCompaniesRepo, storage *stubStorage, signer *stubSigner) *service {
	t.Helper()
	var sc storageClient
	if storage != nil {
		sc = storage
	}
	var signerIface urlSigner
	ttl := time.Duration(0)
	if signer != nil {
		signerIface = signer
		ttl = 15 * time.Minute
	}
	svc, err := NewService(repo, companies, &stubTxRunner{}, sc, signerIface, "bucket", ttl, testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service)
}

func TestCreateValidatesCompanyReference(t *testing.T) {
	repo := &stubLicenseRepo{}
	svc := newTestService(t, repo, &stubCompaniesRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateLicenseInput{
		CompanyID:      uuid.New(),
		Name:           "Alvará de Funcionamento",
		Type:           enums.LicenseTypePrefeitura,
		ExpirationDate: time.Now().AddDate(1, 0, 0),
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for dangling company, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("expected no row persisted")
	}
}

func TestCreateRejectsInvalidType(t *testing.T) {
	companies := &stubCompaniesRepo{company: &models.Company{ID: uuid.New()}}
	svc := newTestService(t, &stubLicenseRepo{}, companies, nil, nil)

	_, err := svc.Create(context.Background(), CreateLicenseInput{
		CompanyID:      companies.company.ID,
		Name:           "Licença",
		Type:           enums.LicenseType("anvisa"),
		ExpirationDate: time.Now(),
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateClassifiesStatus(t *testing.T) {
	companies := &stubCompaniesRepo{company: &models.Company{ID: uuid.New()}}
	repo := &stubLicenseRepo{}
	svc := newTestService(t, repo, companies, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	dto, err := svc.Create(context.Background(), CreateLicenseInput{
		CompanyID:      companies.company.ID,
		Name:           "AVCB",
		Type:           enums.LicenseTypeBombeiros,
		ExpirationDate: svc.now().AddDate(0, 0, 30),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Status != enums.LicenseStatusWarning {
		t.Fatalf("expected warning status, got %s", dto.Status)
	}
	if dto.TypeName != "Corpo de Bombeiros" {
		t.Fatalf("unexpected type name %q", dto.TypeName)
	}
	if dto.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}
}

func TestUpdateValidatesNewCompanyReference(t *testing.T) {
	existing := &models.License{
		ID:             uuid.New(),
		CompanyID:      uuid.New(),
		Name:           "Licença IBAMA",
		Type:           enums.LicenseTypeIbama,
		ExpirationDate: time.Now().AddDate(1, 0, 0),
	}
	repo := &stubLicenseRepo{findResult: existing}
	svc := newTestService(t, repo, &stubCompaniesRepo{}, nil, nil)

	other := uuid.New()
	_, err := svc.Update(context.Background(), existing.ID, UpdateLicenseInput{CompanyID: &other})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for dangling company, got %v", err)
	}
	if repo.updated != nil {
		t.Fatal("expected no update persisted")
	}
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	svc := newTestService(t, &stubLicenseRepo{}, &stubCompaniesRepo{}, nil, nil)

	name := "Licença"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateLicenseInput{Name: &name})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteRemovesAttachmentsAndObjects(t *testing.T) {
	existing := &models.License{
		ID:             uuid.New(),
		CompanyID:      uuid.New(),
		Name:           "Licença Cetesb",
		Type:           enums.LicenseTypeCetesb,
		ExpirationDate: time.Now(),
	}
	repo := &stubLicenseRepo{
		findResult:  existing,
		storageKeys: []string{"attachments/current/a.pdf"},
	}
	storage := &stubStorage{}
	svc := newTestService(t, repo, &stubCompaniesRepo{}, storage, nil)

	if err := svc.Delete(context.Background(), existing.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.deletedID != existing.ID {
		t.Fatal("expected cascade delete invoked")
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "attachments/current/a.pdf" {
		t.Fatalf("unexpected object deletions %v", storage.deleted)
	}
}

func TestGetByIDSignsAttachments(t *testing.T) {
	fileID := uuid.New()
	existing := &models.License{
		ID:             uuid.New(),
		CompanyID:      uuid.New(),
		Name:           "Alvará",
		Type:           enums.LicenseTypePrefeitura,
		ExpirationDate: time.Now().AddDate(1, 0, 0),
		Files: []models.LicenseFile{{
			ID:          fileID,
			Kind:        enums.AttachmentKindCurrent,
			FileName:    "alvara.pdf",
			StorageKey:  "attachments/current/alvara.pdf",
			ContentType: "application/pdf",
			SizeBytes:   1024,
		}},
	}
	repo := &stubLicenseRepo{findResult: existing}
	svc := newTestService(t, repo, &stubCompaniesRepo{}, nil, &stubSigner{url: "https://signed/"})

	dto, err := svc.GetByID(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if dto.CurrentFile == nil {
		t.Fatal("expected current file")
	}
	if dto.CurrentFile.SignedURL != "https://signed/attachments/current/alvara.pdf" {
		t.Fatalf("unexpected signed url %q", dto.CurrentFile.SignedURL)
	}
}

func TestListFiltersByDerivedStatus(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	companyID := uuid.New()
	rows := []models.License{
		{ID: uuid.New(), CompanyID: companyID, Name: "Vencida", Type: enums.LicenseTypeOutro, ExpirationDate: now.AddDate(0, 0, -5), CreatedAt: now},
		{ID: uuid.New(), CompanyID: companyID, Name: "Renovar", Type: enums.LicenseTypeOutro, ExpirationDate: now.AddDate(0, 0, 10), CreatedAt: now.Add(-time.Hour)},
		{ID: uuid.New(), CompanyID: companyID, Name: "Em dia", Type: enums.LicenseTypeOutro, ExpirationDate: now.AddDate(1, 0, 0), CreatedAt: now.Add(-2 * time.Hour)},
	}
	repo := &stubLicenseRepo{listRows: rows}
	svc := newTestService(t, repo, &stubCompaniesRepo{}, nil, nil)
	svc.now = func() time.Time { return now }

	status := enums.LicenseStatusWarning
	result, err := svc.List(context.Background(), ListParams{Status: &status})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "Renovar" {
		t.Fatalf("unexpected items %+v", result.Items)
	}
	if repo.lastQuery.limit != 0 {
		t.Fatalf("status filter must scan unbounded, got limit %d", repo.lastQuery.limit)
	}
}

func TestListPaginatesWithCursor(t *testing.T) {
	now := time.Now()
	rows := make([]models.License, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, models.License{
			ID:             uuid.New(),
			CompanyID:      uuid.New(),
			Name:           "Licença",
			Type:           enums.LicenseTypeOutro,
			ExpirationDate: now.AddDate(1, 0, 0),
			CreatedAt:      now.Add(-time.Duration(i) * time.Hour),
		})
	}
	repo := &stubLicenseRepo{listRows: rows}
	svc := newTestService(t, repo, &stubCompaniesRepo{}, nil, nil)

	result, err := svc.List(context.Background(), ListParams{Params: pkgpagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected next-page cursor")
	}
	if repo.lastQuery.limit != 3 {
		t.Fatalf("expected buffered limit 3, got %d", repo.lastQuery.limit)
	}
}

func TestStatsRecomputesEveryCall(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	repo := &stubLicenseRepo{
		expirations: []time.Time{
			now.AddDate(0, 0, -1),
			now.AddDate(0, 0, 30),
			now.AddDate(0, 0, 90),
		},
	}
	companies := &stubCompaniesRepo{count: 2}
	svc := newTestService(t, repo, companies, nil, nil)
	svc.now = func() time.Time { return now }

	stats, err := svc.Stats(context.Background(), nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Expired != 1 || stats.Warning != 1 || stats.Active != 1 || stats.Total != 3 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.CompaniesCount != 2 {
		t.Fatalf("expected companies count 2, got %d", stats.CompaniesCount)
	}
}
