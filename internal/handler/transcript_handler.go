package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-audit-api/internal/dto"
	"github.com/noah-isme/degree-audit-api/internal/models"
	"github.com/noah-isme/degree-audit-api/pkg/response"
)

type transcriptService interface {
	AddProgram(ctx context.Context, sessionID string) (*models.Session, error)
	SetProgram(ctx context.Context, sessionID string, index int, req dto.ProgramTitleRequest) (*models.Session, error)
	RemoveProgram(ctx context.Context, sessionID string, index int) (*models.Session, error)
	AddCourse(ctx context.Context, sessionID string, req dto.CourseLineRequest) (*models.Session, error)
	UpdateCourse(ctx context.Context, sessionID string, index int, req dto.CourseFieldRequest) (*models.Session, error)
	RemoveCourse(ctx context.Context, sessionID string, index int) (*models.Session, error)
	LoadSample(ctx context.Context, sessionID string) (*models.Session, error)
}

// TranscriptHandler exposes the transcript builder. Every endpoint answers
// with the updated transcript.
type TranscriptHandler struct {
	service transcriptService
}

// NewTranscriptHandler constructs the handler.
func NewTranscriptHandler(svc transcriptService) *TranscriptHandler {
	return &TranscriptHandler{service: svc}
}

func (h *TranscriptHandler) reply(c *gin.Context, session *models.Session, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session.Transcript)
}

// AddProgram godoc
// @Summary Append a blank program title
// @Tags Transcript
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/transcript/programs [post]
func (h *TranscriptHandler) AddProgram(c *gin.Context) {
	session, err := h.service.AddProgram(c.Request.Context(), c.Param("id"))
	h.reply(c, session, err)
}

// SetProgram godoc
// @Summary Set a program title
// @Tags Transcript
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param index path int true "Program row"
// @Param payload body dto.ProgramTitleRequest true "Title"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/transcript/programs/{index} [put]
func (h *TranscriptHandler) SetProgram(c *gin.Context) {
	index, err := indexParam(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ProgramTitleRequest
	if err := bindJSON(c, &req, "program"); err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.service.SetProgram(c.Request.Context(), c.Param("id"), index, req)
	h.reply(c, session, err)
}

// RemoveProgram godoc
// @Summary Remove a program title
// @Description The last remaining row cannot be removed.
// @Tags Transcript
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param index path int true "Program row"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/transcript/programs/{index} [delete]
func (h *TranscriptHandler) RemoveProgram(c *gin.Context) {
	index, err := indexParam(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.service.RemoveProgram(c.Request.Context(), c.Param("id"), index)
	h.reply(c, session, err)
}

// AddCourse godoc
// @Summary Append a course
// @Description Without a line a blank course is added; a line is parsed with a default credit of 3.
// @Tags Transcript
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body dto.CourseLineRequest false "Quick-entry line"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/transcript/courses [post]
func (h *TranscriptHandler) AddCourse(c *gin.Context) {
	var req dto.CourseLineRequest
	if err := bindOptionalJSON(c, &req, "course"); err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.service.AddCourse(c.Request.Context(), c.Param("id"), req)
	h.reply(c, session, err)
}

// UpdateCourse godoc
// @Summary Set one field of a course
// @Tags Transcript
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param index path int true "Course row"
// @Param payload body dto.CourseFieldRequest true "Field update"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/transcript/courses/{index} [patch]
func (h *TranscriptHandler) UpdateCourse(c *gin.Context) {
	index, err := indexParam(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CourseFieldRequest
	if err := bindJSON(c, &req, "course"); err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.service.UpdateCourse(c.Request.Context(), c.Param("id"), index, req)
	h.reply(c, session, err)
}

// RemoveCourse godoc
// @Summary Remove a course
// @Tags Transcript
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param index path int true "Course row"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/transcript/courses/{index} [delete]
func (h *TranscriptHandler) RemoveCourse(c *gin.Context) {
	index, err := indexParam(c, "index")
	if err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.service.RemoveCourse(c.Request.Context(), c.Param("id"), index)
	h.reply(c, session, err)
}

// LoadSample godoc
// @Summary Replace the transcript with the sample transcript
// @Tags Transcript
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/transcript/sample [post]
func (h *TranscriptHandler) LoadSample(c *gin.Context) {
	session, err := h.service.LoadSample(c.Request.Context(), c.Param("id"))
	h.reply(c, session, err)
}
