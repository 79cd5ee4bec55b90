package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-audit-api/internal/dto"
	"github.com/noah-isme/degree-audit-api/internal/models"
	"github.com/noah-isme/degree-audit-api/pkg/response"
)

type reportEditor interface {
	Block(ctx context.Context, sessionID string, report int, rawPath string) (*dto.BlockView, error)
	Patch(ctx context.Context, sessionID string, report int, rawPath string, patch models.BlockPatch) (*dto.BlockView, error)
	InsertChild(ctx context.Context, sessionID string, report int, rawPath string) (*dto.InsertedBlockView, error)
	RemoveChild(ctx context.Context, sessionID string, report int, rawPath string, index int) (*dto.BlockView, error)
	AddNote(ctx context.Context, sessionID string, report int, rawPath string, req dto.NoteRequest) (*dto.BlockView, error)
	UpdateNote(ctx context.Context, sessionID string, report int, rawPath string, index int, req dto.NoteRequest) (*dto.BlockView, error)
	RemoveNote(ctx context.Context, sessionID string, report int, rawPath string, index int) (*dto.BlockView, error)
	AddCourse(ctx context.Context, sessionID string, report int, rawPath string, req dto.CourseLineRequest) (*dto.BlockView, error)
	EditCourse(ctx context.Context, sessionID string, report int, rawPath string, index int, req dto.CourseEditRequest) (*dto.BlockView, error)
	RemoveCourse(ctx context.Context, sessionID string, report int, rawPath string, index int) (*dto.BlockView, error)
	ClearRename(ctx context.Context, sessionID string, report int, rawPath string) (*dto.BlockView, error)
}

// ReportHandler exposes the report tree editor. The target block is given
// by the report index and the path query parameter, e.g. ?path=0-2.
type ReportHandler struct {
	service reportEditor
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc reportEditor) *ReportHandler {
	return &ReportHandler{service: svc}
}

// target collects the session id, report index and block path of a request.
type target struct {
	session string
	report  int
	path    string
}

func (h *ReportHandler) target(c *gin.Context) (target, bool) {
	report, err := indexParam(c, "report")
	if err != nil {
		response.Error(c, err)
		return target{}, false
	}
	return target{session: c.Param("id"), report: report, path: c.Query("path")}, true
}

// targetAt is target plus an :index route parameter.
func (h *ReportHandler) targetAt(c *gin.Context) (target, int, bool) {
	t, ok := h.target(c)
	if !ok {
		return t, 0, false
	}
	index, err := indexParam(c, "index")
	if err != nil {
		response.Error(c, err)
		return t, 0, false
	}
	return t, index, true
}

func reply(c *gin.Context, view interface{}, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Block godoc
// @Summary Read a block
// @Description A partly stale path resolves to its deepest existing ancestor.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param path query string false "Block path, e.g. 0-2"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/block [get]
func (h *ReportHandler) Block(c *gin.Context) {
	t, ok := h.target(c)
	if !ok {
		return
	}
	view, err := h.service.Block(c.Request.Context(), t.session, t.report, t.path)
	reply(c, view, err)
}

// Patch godoc
// @Summary Patch block fields
// @Description Shallow merge; null clears a credit figure. Credit fields are ignored for CUSTOM blocks.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param path query string false "Block path"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/block [patch]
func (h *ReportHandler) Patch(c *gin.Context) {
	t, ok := h.target(c)
	if !ok {
		return
	}
	var req dto.BlockPatchRequest
	if err := bindJSON(c, &req, "block patch"); err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Patch(c.Request.Context(), t.session, t.report, t.path, req.Patch)
	reply(c, view, err)
}

// InsertChild godoc
// @Summary Append a child block
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param path query string false "Parent block path"
// @Success 201 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/block/children [post]
func (h *ReportHandler) InsertChild(c *gin.Context) {
	t, ok := h.target(c)
	if !ok {
		return
	}
	view, err := h.service.InsertChild(c.Request.Context(), t.session, t.report, t.path)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// RemoveChild godoc
// @Summary Remove a child block
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param index path int true "Child index"
// @Param path query string false "Parent block path"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/block/children/{index} [delete]
func (h *ReportHandler) RemoveChild(c *gin.Context) {
	t, index, ok := h.targetAt(c)
	if !ok {
		return
	}
	view, err := h.service.RemoveChild(c.Request.Context(), t.session, t.report, t.path, index)
	reply(c, view, err)
}

// AddNote godoc
// @Summary Append a note
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param path query string false "Block path"
// @Param payload body dto.NoteRequest false "Note text"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/block/notes [post]
func (h *ReportHandler) AddNote(c *gin.Context) {
	t, ok := h.target(c)
	if !ok {
		return
	}
	var req dto.NoteRequest
	if err := bindOptionalJSON(c, &req, "note"); err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.AddNote(c.Request.Context(), t.session, t.report, t.path, req)
	reply(c, view, err)
}

// UpdateNote godoc
// @Summary Replace a note
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param index path int true "Note index"
// @Param path query string false "Block path"
// @Param payload body dto.NoteRequest true "Note text"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/block/notes/{index} [put]
func (h *ReportHandler) UpdateNote(c *gin.Context) {
	t, index, ok := h.targetAt(c)
	if !ok {
		return
	}
	var req dto.NoteRequest
	if err := bindJSON(c, &req, "note"); err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.UpdateNote(c.Request.Context(), t.session, t.report, t.path, index, req)
	reply(c, view, err)
}

// RemoveNote godoc
// @Summary Remove a note
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param index path int true "Note index"
// @Param path query string false "Block path"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/block/notes/{index} [delete]
func (h *ReportHandler) RemoveNote(c *gin.Context) {
	t, index, ok := h.targetAt(c)
	if !ok {
		return
	}
	view, err := h.service.RemoveNote(c.Request.Context(), t.session, t.report, t.path, index)
	reply(c, view, err)
}

// AddCourse godoc
// @Summary Append a course to a block
// @Description A line without credit takes 0.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param path query string false "Block path"
// @Param payload body dto.CourseLineRequest false "Quick-entry line"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/block/courses [post]
func (h *ReportHandler) AddCourse(c *gin.Context) {
	t, ok := h.target(c)
	if !ok {
		return
	}
	var req dto.CourseLineRequest
	if err := bindOptionalJSON(c, &req, "course"); err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.AddCourse(c.Request.Context(), t.session, t.report, t.path, req)
	reply(c, view, err)
}

// EditCourse godoc
// @Summary Edit a course of a block
// @Description Either one field or a whole quick-entry line.
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param index path int true "Course index"
// @Param path query string false "Block path"
// @Param payload body dto.CourseEditRequest true "Course edit"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/block/courses/{index} [patch]
func (h *ReportHandler) EditCourse(c *gin.Context) {
	t, index, ok := h.targetAt(c)
	if !ok {
		return
	}
	var req dto.CourseEditRequest
	if err := bindJSON(c, &req, "course"); err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.EditCourse(c.Request.Context(), t.session, t.report, t.path, index, req)
	reply(c, view, err)
}

// RemoveCourse godoc
// @Summary Remove a course from a block
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param index path int true "Course index"
// @Param path query string false "Block path"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/block/courses/{index} [delete]
func (h *ReportHandler) RemoveCourse(c *gin.Context) {
	t, index, ok := h.targetAt(c)
	if !ok {
		return
	}
	view, err := h.service.RemoveCourse(c.Request.Context(), t.session, t.report, t.path, index)
	reply(c, view, err)
}

// ClearRename godoc
// @Summary Clear the pending-rename tag of a block
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param report path int true "Report index"
// @Param path query string false "Block path"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/reports/{report}/renames [delete]
func (h *ReportHandler) ClearRename(c *gin.Context) {
	t, ok := h.target(c)
	if !ok {
		return
	}
	view, err := h.service.ClearRename(c.Request.Context(), t.session, t.report, t.path)
	reply(c, view, err)
}
