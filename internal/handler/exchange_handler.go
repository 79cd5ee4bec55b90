package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-audit-api/internal/models"
	"github.com/noah-isme/degree-audit-api/internal/service"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
	"github.com/noah-isme/degree-audit-api/pkg/response"
)

type reportExchange interface {
	Export(ctx context.Context, sessionID string, format service.ExportFormat) (*service.ExportFile, error)
	Import(ctx context.Context, sessionID string, body []byte) ([]*models.Report, error)
}

// ExchangeHandler exposes report export and import.
type ExchangeHandler struct {
	service reportExchange
}

// NewExchangeHandler constructs the handler.
func NewExchangeHandler(svc reportExchange) *ExchangeHandler {
	return &ExchangeHandler{service: svc}
}

// Export godoc
// @Summary Download the session's reports
// @Description json is the canonical export and can be imported again; csv and pdf are flattened views.
// @Tags Exchange
// @Produce json,text/csv,application/pdf
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param format query string false "json, csv or pdf" default(json)
// @Success 200 {file} file
// @Router /sessions/{id}/export [get]
func (h *ExchangeHandler) Export(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(service.ExportFormatJSON))))
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Import godoc
// @Summary Replace the session's reports with an exported document
// @Description Accepts every historical report encoding. An invalid file leaves the session unchanged.
// @Tags Exchange
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/{id}/import [post]
func (h *ExchangeHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidFile.Code, appErrors.ErrInvalidFile.Status, "report file could not be read"))
		return
	}
	reports, err := h.service.Import(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, reports, map[string]interface{}{"reports": len(reports)})
}
