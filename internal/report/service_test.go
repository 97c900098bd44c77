package report

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rpattn/logreport/internal/config"
	"github.com/rpattn/logreport/internal/domain"
	"github.com/rpattn/logreport/internal/drive"
	"github.com/xuri/excelize/v2"
)

type uploadCall struct {
	FolderID string
	Name     string
	MimeType string
	Content  []byte
}

type updateCall struct {
	FileID   string
	MimeType string
	Content  []byte
}

// stubStore is an in-memory drive.Store.
type stubStore struct {
	files     map[string]*drive.FileRef // name -> ref
	downloads map[string][]byte         // file ID -> payload

	uploads []uploadCall
	updates []updateCall

	findErr   error
	uploadErr error
}

func (s *stubStore) FindFile(_ context.Context, _, name string) (*drive.FileRef, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.files[name], nil
}

func (s *stubStore) Download(_ context.Context, fileID string) ([]byte, error) {
	payload, ok := s.downloads[fileID]
	if !ok {
		return nil, errors.New("unknown file id")
	}
	return payload, nil
}

func (s *stubStore) Upload(_ context.Context, folderID, name, mimeType string, content []byte) (*drive.FileRef, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	s.uploads = append(s.uploads, uploadCall{FolderID: folderID, Name: name, MimeType: mimeType, Content: content})
	return &drive.FileRef{ID: "created-id", Name: name}, nil
}

func (s *stubStore) Update(_ context.Context, fileID, mimeType string, content []byte) error {
	s.updates = append(s.updates, updateCall{FileID: fileID, MimeType: mimeType, Content: content})
	return nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.CredentialsJSON = `{"type":"service_account"}`
	cfg.FolderID = "folder-1"
	return cfg
}

func newTestService(t *testing.T, cfg config.Config, store *stubStore, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithStoreFactory(func(context.Context, string) (drive.Store, error) {
			return store, nil
		}),
		WithTempDirectory(t.TempDir()),
	}
	return NewService(cfg, append(base, opts...)...)
}

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetList()[0]
	for idx, cells := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func storeWithInput(t *testing.T, rows [][]any) *stubStore {
	t.Helper()
	return &stubStore{
		files: map[string]*drive.FileRef{
			"failed_logs.xlsx": {ID: "input-id", Name: "failed_logs.xlsx"},
		},
		downloads: map[string][]byte{
			"input-id": workbookBytes(t, rows),
		},
	}
}

func TestRunPublishesNewReport(t *testing.T) {
	store := storeWithInput(t, [][]any{
		{"date", "dataset", "reason"},
		{"2024-03-01 10:00:00", "x", "timeout"},
		{"2024-03-02 11:00:00", "x", "timeout"},
		{"2024-03-03 12:00:00", "y", "quota exceeded"},
	})
	service := newTestService(t, testConfig(), store)

	message, fail := service.Run(context.Background())
	if fail != nil {
		t.Fatalf("run failed: %v", fail)
	}
	if message != "PDF report generated and uploaded to Drive." {
		t.Fatalf("unexpected success message: %q", message)
	}

	if len(store.updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(store.updates))
	}
	if len(store.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(store.uploads))
	}
	upload := store.uploads[0]
	if upload.Name != "failed_logs_report.pdf" || upload.FolderID != "folder-1" {
		t.Fatalf("unexpected upload target: %+v", upload)
	}
	if upload.MimeType != "application/pdf" {
		t.Fatalf("unexpected mime type: %q", upload.MimeType)
	}
	if !bytes.HasPrefix(upload.Content, []byte("%PDF")) {
		t.Fatalf("uploaded content is not a PDF")
	}
}

func TestRunUpdatesExistingReportInPlace(t *testing.T) {
	store := storeWithInput(t, [][]any{
		{"date", "dataset", "reason"},
		{"2024-03-01 10:00:00", "x", "timeout"},
	})
	store.files["failed_logs_report.pdf"] = &drive.FileRef{ID: "report-id", Name: "failed_logs_report.pdf"}
	service := newTestService(t, testConfig(), store)

	if _, fail := service.Run(context.Background()); fail != nil {
		t.Fatalf("run failed: %v", fail)
	}

	if len(store.uploads) != 0 {
		t.Fatalf("expected no new file, got %d uploads", len(store.uploads))
	}
	if len(store.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(store.updates))
	}
	if store.updates[0].FileID != "report-id" {
		t.Fatalf("expected update of report-id, got %q", store.updates[0].FileID)
	}
}

func TestRunInputMissingReturns404(t *testing.T) {
	store := &stubStore{files: map[string]*drive.FileRef{}, downloads: map[string][]byte{}}
	service := newTestService(t, testConfig(), store)

	_, fail := service.Run(context.Background())
	if fail == nil {
		t.Fatalf("expected failure")
	}
	if fail.Kind != domain.FailureNotFound || fail.HTTPStatus() != 404 {
		t.Fatalf("expected not found failure, got %+v", fail)
	}
	if fail.Message != "No failed_logs.xlsx found in Drive folder." {
		t.Fatalf("unexpected message: %q", fail.Message)
	}
	if len(store.uploads) != 0 || len(store.updates) != 0 {
		t.Fatalf("nothing should be published on failure")
	}
}

func TestRunMissingColumnReturnsValidationFailure(t *testing.T) {
	store := storeWithInput(t, [][]any{
		{"dataset", "reason"},
		{"x", "timeout"},
	})
	service := newTestService(t, testConfig(), store)

	_, fail := service.Run(context.Background())
	if fail == nil {
		t.Fatalf("expected failure")
	}
	if fail.Kind != domain.FailureValidation || fail.HTTPStatus() != 500 {
		t.Fatalf("expected validation failure, got %+v", fail)
	}
	if fail.Message != "Error: Required column missing: date" {
		t.Fatalf("unexpected message: %q", fail.Message)
	}
	if len(store.uploads) != 0 || len(store.updates) != 0 {
		t.Fatalf("nothing should be published on failure")
	}
}

func TestRunMissingConfigReturnsConfigurationFailure(t *testing.T) {
	cfg := config.Default() // no credentials, no folder
	factoryCalled := false
	service := NewService(cfg,
		WithStoreFactory(func(context.Context, string) (drive.Store, error) {
			factoryCalled = true
			return nil, errors.New("should not be reached")
		}),
		WithTempDirectory(t.TempDir()),
	)

	_, fail := service.Run(context.Background())
	if fail == nil || fail.Kind != domain.FailureConfiguration {
		t.Fatalf("expected configuration failure, got %+v", fail)
	}
	if fail.HTTPStatus() != 500 {
		t.Fatalf("expected status 500, got %d", fail.HTTPStatus())
	}
	if factoryCalled {
		t.Fatalf("store should not be built with invalid configuration")
	}
}

func TestRunChartFailureDegradesToTextOnly(t *testing.T) {
	store := storeWithInput(t, [][]any{
		{"date", "dataset", "reason"},
		{"2024-03-01 10:00:00", "x", "timeout"},
	})
	service := newTestService(t, testConfig(), store,
		WithChartRenderer(func([]domain.DatasetCount, string) error {
			return errors.New("renderer unavailable")
		}),
	)

	_, fail := service.Run(context.Background())
	if fail != nil {
		t.Fatalf("chart failure should not fail the run: %v", fail)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("expected text-only report upload, got %d", len(store.uploads))
	}
	if !bytes.HasPrefix(store.uploads[0].Content, []byte("%PDF")) {
		t.Fatalf("uploaded content is not a PDF")
	}
}

func TestRunComposeFailureIsFatal(t *testing.T) {
	store := storeWithInput(t, [][]any{
		{"date", "dataset", "reason"},
		{"2024-03-01 10:00:00", "x", "timeout"},
	})
	service := newTestService(t, testConfig(), store,
		WithPDFComposer(func(string, string, string) error {
			return errors.New("composer broken")
		}),
	)

	_, fail := service.Run(context.Background())
	if fail == nil || fail.Kind != domain.FailureInternal {
		t.Fatalf("expected internal failure, got %+v", fail)
	}
	if len(store.uploads) != 0 || len(store.updates) != 0 {
		t.Fatalf("nothing should be published on failure")
	}
}

func TestRunUploadFailureIsFatal(t *testing.T) {
	store := storeWithInput(t, [][]any{
		{"date", "dataset", "reason"},
		{"2024-03-01 10:00:00", "x", "timeout"},
	})
	store.uploadErr = errors.New("quota exceeded")
	service := newTestService(t, testConfig(), store)

	_, fail := service.Run(context.Background())
	if fail == nil || fail.Kind != domain.FailureInternal || fail.HTTPStatus() != 500 {
		t.Fatalf("expected internal failure, got %+v", fail)
	}
}
