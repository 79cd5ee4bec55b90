package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-audit-api/internal/dto"
	"github.com/noah-isme/degree-audit-api/pkg/response"
)

type courseText interface {
	Parse(req dto.ParseCourseRequest) (*dto.CourseLineView, error)
	Format(req dto.FormatCourseRequest) *dto.CourseLineView
}

// CourseHandler exposes the quick-entry course grammar.
type CourseHandler struct {
	service courseText
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(svc courseText) *CourseHandler {
	return &CourseHandler{service: svc}
}

// Parse godoc
// @Summary Parse a quick-entry course line
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.ParseCourseRequest true "Line and context"
// @Success 200 {object} response.Envelope
// @Router /courses/parse [post]
func (h *CourseHandler) Parse(c *gin.Context) {
	var req dto.ParseCourseRequest
	if err := bindJSON(c, &req, "course line"); err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.Parse(req)
	reply(c, view, err)
}

// Format godoc
// @Summary Render a course as a quick-entry line
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.FormatCourseRequest true "Course"
// @Success 200 {object} response.Envelope
// @Router /courses/format [post]
func (h *CourseHandler) Format(c *gin.Context) {
	var req dto.FormatCourseRequest
	if err := bindJSON(c, &req, "course"); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, h.service.Format(req))
}
