package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/degree-audit-api/internal/coursetext"
	"github.com/noah-isme/degree-audit-api/internal/migrate"
	"github.com/noah-isme/degree-audit-api/internal/models"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
	"github.com/noah-isme/degree-audit-api/pkg/export"
)

// ExportFormat selects the rendering of an export.
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

const exportBaseName = "audit-report"

type reportDecoder interface {
	Reports(data []byte) ([]*models.Report, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExchangeService moves report lists in and out of a session. JSON is the
// canonical round-trippable form; CSV and PDF are flattened read-only views.
type ExchangeService struct {
	store   sessionStore
	decoder reportDecoder
	csv     datasetRenderer
	pdf     datasetRenderer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewExchangeService constructs an ExchangeService. Nil renderers fall back to
// the pkg/export defaults.
func NewExchangeService(store sessionStore, decoder reportDecoder, csv, pdf datasetRenderer, metrics *MetricsService, logger *zap.Logger) *ExchangeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExchangeService{store: store, decoder: decoder, csv: csv, pdf: pdf, metrics: metrics, logger: logger}
}

// Export renders the session's reports in the requested format.
func (s *ExchangeService) Export(ctx context.Context, sessionID string, format ExportFormat) (*ExportFile, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	reports := session.Reports
	if reports == nil {
		reports = []*models.Report{}
	}

	switch format {
	case ExportFormatJSON, "":
		body, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode reports")
		}
		return &ExportFile{Filename: exportBaseName + ".json", ContentType: "application/json", Body: body}, nil
	case ExportFormatCSV:
		return s.render(s.csv, reportDataset(reports), ".csv", "text/csv")
	case ExportFormatPDF:
		return s.render(s.pdf, reportDataset(reports), ".pdf", "application/pdf")
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func (s *ExchangeService) render(renderer datasetRenderer, data export.Dataset, ext, contentType string) (*ExportFile, error) {
	body, err := renderer.Render(data)
	if err != nil {
		s.logger.Error("render export", zap.String("format", strings.TrimPrefix(ext, ".")), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{Filename: exportBaseName + ext, ContentType: contentType, Body: body}, nil
}

// Import replaces the session's reports with a report list document of any
// supported generation. An invalid document leaves the session untouched.
func (s *ExchangeService) Import(ctx context.Context, sessionID string, body []byte) ([]*models.Report, error) {
	reports, err := s.decoder.Reports(body)
	if err != nil {
		s.metrics.RecordImport(false)
		if errors.Is(err, migrate.ErrInvalidDocument) {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidFile.Code, appErrors.ErrInvalidFile.Status, appErrors.ErrInvalidFile.Message)
		}
		return nil, appErrors.FromError(err)
	}

	_, err = s.store.Update(ctx, sessionID, func(session *models.Session) error {
		if session.AuditStatus == models.AuditStatusRunning {
			return appErrors.Clone(appErrors.ErrAuditInFlight, "cannot import while an audit is running")
		}
		session.ReplaceReports(reports)
		return nil
	})
	if err != nil {
		s.metrics.RecordImport(false)
		return nil, err
	}
	s.metrics.RecordImport(true)
	s.logger.Info("reports imported", zap.String("session_id", sessionID), zap.Int("reports", len(reports)))
	return reports, nil
}

var exportColumns = []export.Column{
	{Key: "report", Title: "Report", Width: 0.6},
	{Key: "path", Title: "Path", Width: 0.7},
	{Key: "name", Title: "Name", Width: 2.5},
	{Key: "block_type", Title: "Type", Width: 1.2},
	{Key: "status", Title: "Status", Width: 1.2},
	{Key: "minimum_credit", Title: "Min Credit", Width: 0.8},
	{Key: "received_credit", Title: "Received", Width: 0.8},
	{Key: "courses", Title: "Courses", Width: 3},
	{Key: "notes", Title: "Notes", Width: 3},
}

// reportDataset flattens every block of every report into one row.
func reportDataset(reports []*models.Report) export.Dataset {
	data := export.Dataset{Title: "Degree Audit Report", Columns: exportColumns}
	for i, report := range reports {
		report.Walk(func(path models.Path, block *models.Block) {
			minimum, received := block.VisibleCredits()
			courses := make([]string, 0, len(block.Courses))
			for _, course := range block.Courses {
				courses = append(courses, coursetext.Format(course))
			}
			location := path.String()
			if location == "" {
				location = "root"
			}
			data.Rows = append(data.Rows, map[string]string{
				"report":          strconv.Itoa(i + 1),
				"path":            location,
				"name":            block.Name,
				"block_type":      string(block.BlockType),
				"status":          string(block.Status),
				"minimum_credit":  optionalInt(minimum),
				"received_credit": optionalInt(received),
				"courses":         strings.Join(courses, "; "),
				"notes":           strings.Join(block.Notes, "; "),
			})
		})
	}
	return data
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
