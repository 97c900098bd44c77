package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rpattn/logreport/internal/chart"
	"github.com/rpattn/logreport/internal/config"
	"github.com/rpattn/logreport/internal/domain"
	"github.com/rpattn/logreport/internal/drive"
	"github.com/rpattn/logreport/internal/ingestion"
	"github.com/rpattn/logreport/internal/pdf"
)

const reportMimeType = "application/pdf"

// StoreFactory builds a remote store client from the credentials blob. The
// client is rebuilt per run so a credential change never needs a restart.
type StoreFactory func(ctx context.Context, credentialsJSON string) (drive.Store, error)

// Service runs the failed-logs report pipeline end to end: locate, download,
// parse, aggregate, render, compose, publish.
type Service struct {
	cfg      config.Config
	newStore StoreFactory
	tempDir  string

	renderChart func(counts []domain.DatasetCount, path string) error
	composePDF  func(summaryText, chartPath, outPath string) error
}

type Option func(*Service)

// WithStoreFactory substitutes the remote store constructor.
func WithStoreFactory(factory StoreFactory) Option {
	return func(s *Service) {
		if factory != nil {
			s.newStore = factory
		}
	}
}

// WithTempDirectory overrides where per-run artifacts are written.
func WithTempDirectory(dir string) Option {
	return func(s *Service) {
		if strings.TrimSpace(dir) != "" {
			s.tempDir = filepath.Clean(dir)
		}
	}
}

// WithChartRenderer substitutes the chart renderer.
func WithChartRenderer(render func(counts []domain.DatasetCount, path string) error) Option {
	return func(s *Service) {
		if render != nil {
			s.renderChart = render
		}
	}
}

// WithPDFComposer substitutes the PDF composer.
func WithPDFComposer(compose func(summaryText, chartPath, outPath string) error) Option {
	return func(s *Service) {
		if compose != nil {
			s.composePDF = compose
		}
	}
}

func NewService(cfg config.Config, opts ...Option) *Service {
	service := &Service{
		cfg: cfg,
		newStore: func(ctx context.Context, credentialsJSON string) (drive.Store, error) {
			return drive.NewClient(ctx, credentialsJSON)
		},
		tempDir:     os.TempDir(),
		renderChart: chart.RenderBarChart,
		composePDF:  pdf.Compose,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Run executes the whole pipeline once. It returns the success message or
// the first stage failure; no partial artifact is ever published.
func (s *Service) Run(ctx context.Context) (string, *domain.Failure) {
	log.Printf("[report] starting report generation run")

	if fail := s.cfg.Validate(); fail != nil {
		return "", fail
	}

	store, err := s.newStore(ctx, s.cfg.CredentialsJSON)
	if err != nil {
		return "", domain.InternalFailure(err, "Error generating PDF report")
	}

	log.Printf("[report] searching for %s in folder %s", s.cfg.InputFileName, s.cfg.FolderID)
	input, err := store.FindFile(ctx, s.cfg.FolderID, s.cfg.InputFileName)
	if err != nil {
		return "", domain.InternalFailure(err, "Error generating PDF report")
	}
	if input == nil {
		return "", domain.NotFoundFailure(fmt.Sprintf("No %s found in Drive folder.", s.cfg.InputFileName))
	}
	log.Printf("[report] found input file %s", input.ID)

	payload, err := store.Download(ctx, input.ID)
	if err != nil {
		return "", domain.InternalFailure(err, "Error generating PDF report")
	}
	log.Printf("[report] downloaded %d bytes", len(payload))

	rows, err := ingestion.Parse(payload)
	if err != nil {
		var missing *ingestion.MissingColumnError
		if errors.As(err, &missing) {
			return "", domain.ValidationFailure("Error: Required column missing: %s", missing.Column)
		}
		return "", domain.InternalFailure(err, "Error generating PDF report")
	}
	log.Printf("[report] parsed %d rows", len(rows))

	summary := Summarize(rows)
	summaryText := BuildSummaryText(summary)

	runID := uuid.New().String()
	chartPath := filepath.Join(s.tempDir, fmt.Sprintf("failures_by_dataset-%s.png", runID))
	pdfPath := filepath.Join(s.tempDir, fmt.Sprintf("failed_logs_report-%s.pdf", runID))
	defer func() {
		_ = os.Remove(chartPath)
		_ = os.Remove(pdfPath)
	}()

	// Chart failure degrades to a text-only report rather than failing the run.
	if renderErr := s.renderChart(summary.ByDataset, chartPath); renderErr != nil {
		log.Printf("[report] chart render failed, continuing text-only: %v", renderErr)
		chartPath = ""
	}

	if composeErr := s.composePDF(summaryText, chartPath, pdfPath); composeErr != nil {
		return "", domain.InternalFailure(composeErr, "Error generating PDF report")
	}

	content, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", domain.InternalFailure(err, "Error generating PDF report")
	}

	if fail := s.publish(ctx, store, content); fail != nil {
		return "", fail
	}

	return "PDF report generated and uploaded to Drive.", nil
}

// publish uploads the composed report, updating an existing report file in
// place when one is already in the folder.
func (s *Service) publish(ctx context.Context, store drive.Store, content []byte) *domain.Failure {
	existing, err := store.FindFile(ctx, s.cfg.FolderID, s.cfg.ReportFileName)
	if err != nil {
		return domain.InternalFailure(err, "Error generating PDF report")
	}

	if existing != nil {
		if err := store.Update(ctx, existing.ID, reportMimeType, content); err != nil {
			return domain.InternalFailure(err, "Error generating PDF report")
		}
		log.Printf("[report] updated existing report %s", existing.ID)
		return nil
	}

	created, err := store.Upload(ctx, s.cfg.FolderID, s.cfg.ReportFileName, reportMimeType, content)
	if err != nil {
		return domain.InternalFailure(err, "Error generating PDF report")
	}
	log.Printf("[report] created new report %s", created.ID)
	return nil
}
