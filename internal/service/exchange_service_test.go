package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-audit-api/internal/migrate"
	"github.com/noah-isme/degree-audit-api/internal/models"
	"github.com/noah-isme/degree-audit-api/internal/repository"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
	"github.com/noah-isme/degree-audit-api/pkg/export"
)

type failingRenderer struct{}

func (failingRenderer) Render(export.Dataset) ([]byte, error) {
	return nil, errors.New("renderer broke")
}

func newExchangeFixture(t *testing.T) (*ExchangeService, *repository.SessionRepository, string) {
	t.Helper()
	store := repository.NewSessionRepository()
	session, err := store.Create(context.Background())
	require.NoError(t, err)
	svc := NewExchangeService(store, migrate.New(migrate.Options{EnforceFailingCredit: true}), nil, nil, NewMetricsService(), nil)
	return svc, store, session.ID
}

func exchangeReport() *models.Report {
	child := models.NewBlock()
	child.Name = "Electives"
	child.MinimumCredit = models.IntPtr(6)
	child.Courses = []models.Course{{SubjectCode: "MATH", CourseCode: "240", Grade: models.GradeA, Credit: 3}}
	child.Notes = []string{"pick two"}

	return &models.Report{
		Name:           "Computer Science Major Concentration (B.A.)",
		BlockType:      models.BlockTypeProgram,
		MinimumCredit:  models.IntPtr(36),
		ReceivedCredit: models.IntPtr(30),
		Status:         models.BlockStatusUnfulfilled,
		Notes:          []string{},
		Courses:        []models.Course{{SubjectCode: "COMP", CourseCode: "206", Grade: models.GradeBPlus, Credit: 3}},
		Blocks:         []*models.Block{child},
	}
}

func TestExportJSONRoundTrips(t *testing.T) {
	ctx := context.Background()
	svc, store, id := newExchangeFixture(t)
	_, err := store.Update(ctx, id, func(s *models.Session) error {
		s.ReplaceReports([]*models.Report{exchangeReport()})
		return nil
	})
	require.NoError(t, err)

	file, err := svc.Export(ctx, id, ExportFormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "audit-report.json", file.Filename)
	assert.Equal(t, "application/json", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("[\n  {\n    \"name\"")))

	imported, err := svc.Import(ctx, id, file.Body)
	require.NoError(t, err)
	assert.Equal(t, []*models.Report{exchangeReport()}, imported)
}

func TestExportEmptySessionIsEmptyArray(t *testing.T) {
	svc, _, id := newExchangeFixture(t)
	file, err := svc.Export(context.Background(), id, ExportFormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(file.Body))
}

func TestExportCSVFlattensBlocks(t *testing.T) {
	ctx := context.Background()
	svc, store, id := newExchangeFixture(t)
	_, err := store.Update(ctx, id, func(s *models.Session) error {
		s.ReplaceReports([]*models.Report{exchangeReport()})
		return nil
	})
	require.NoError(t, err)

	file, err := svc.Export(ctx, id, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "audit-report.csv", file.Filename)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "root", "Computer Science Major Concentration (B.A.)", "PROGRAM", "UNFULFILLED", "36", "30", "COMP206 B+ 3", ""}, records[1])
	assert.Equal(t, []string{"1", "0", "Electives", "CUSTOM", "UNFULFILLED", "", "", "MATH240 A 3", "pick two"}, records[2])
}

func TestExportPDFAndUnsupportedFormat(t *testing.T) {
	ctx := context.Background()
	svc, _, id := newExchangeFixture(t)

	file, err := svc.Export(ctx, id, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "audit-report.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))

	_, err = svc.Export(ctx, id, ExportFormat("xlsx"))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	svc.csv = failingRenderer{}
	_, err = svc.Export(ctx, id, ExportFormatCSV)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestImportNormalisesLegacyDocument(t *testing.T) {
	ctx := context.Background()
	svc, store, id := newExchangeFixture(t)

	doc := []byte(`[{"name":"Minor","block_type":"PROGRAM","courses":[["COMP","250","3"]],"details":["legacy"],"blocks":[]}]`)
	reports, err := svc.Import(ctx, id, doc)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"legacy"}, reports[0].Notes)

	session, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.Course{SubjectCode: "COMP", CourseCode: "250", Grade: models.GradeA, Credit: 3}, session.Reports[0].Courses[0])
	assert.Len(t, session.Renames, 1)
}

func TestImportInvalidLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	svc, store, id := newExchangeFixture(t)
	_, err := store.Update(ctx, id, func(s *models.Session) error {
		s.ReplaceReports([]*models.Report{exchangeReport()})
		return nil
	})
	require.NoError(t, err)

	for _, body := range []string{`{"name":"not a list"}`, `not json`, ``} {
		_, err := svc.Import(ctx, id, []byte(body))
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidFile), body)
	}

	session, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []*models.Report{exchangeReport()}, session.Reports)
}

func TestImportRejectedWhileAuditRuns(t *testing.T) {
	ctx := context.Background()
	svc, store, id := newExchangeFixture(t)
	_, err := store.Update(ctx, id, func(s *models.Session) error {
		s.AuditStatus = models.AuditStatusRunning
		return nil
	})
	require.NoError(t, err)

	_, err = svc.Import(ctx, id, []byte(`[]`))
	assert.True(t, appErrors.Is(err, appErrors.ErrAuditInFlight))
}
