package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/degree-audit-api/internal/coursetext"
	"github.com/noah-isme/degree-audit-api/internal/dto"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
)

// CourseTextService exposes the quick-entry grammar without any session state.
type CourseTextService struct {
	validator *validator.Validate
}

// NewCourseTextService constructs a CourseTextService.
func NewCourseTextService(validate *validator.Validate) *CourseTextService {
	if validate == nil {
		validate = validator.New()
	}
	return &CourseTextService{validator: validate}
}

// Parse reads a quick-entry line. It never fails on the line itself: missing
// parts take their defaults.
func (s *CourseTextService) Parse(req dto.ParseCourseRequest) (*dto.CourseLineView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course line payload")
	}
	course := coursetext.Parse(req.Line, req.DefaultCredit())
	return &dto.CourseLineView{Course: course, Line: coursetext.Format(course)}, nil
}

// Format renders a course record as a quick-entry line.
func (s *CourseTextService) Format(req dto.FormatCourseRequest) *dto.CourseLineView {
	return &dto.CourseLineView{Course: req.Course, Line: coursetext.Format(req.Course)}
}
