package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-audit-api/internal/dto"
	"github.com/noah-isme/degree-audit-api/internal/models"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
)

func TestCourseTextParseContexts(t *testing.T) {
	svc := NewCourseTextService(nil)

	view, err := svc.Parse(dto.ParseCourseRequest{Line: "comp206 b+"})
	require.NoError(t, err)
	assert.Equal(t, models.Course{SubjectCode: "COMP", CourseCode: "206", Grade: models.GradeBPlus, Credit: 3}, view.Course)
	assert.Equal(t, "COMP206 B+ 3", view.Line)

	view, err = svc.Parse(dto.ParseCourseRequest{Line: "comp206 b+", Context: dto.ContextReport})
	require.NoError(t, err)
	assert.Equal(t, 0, view.Course.Credit)
}

func TestCourseTextParseRejectsBadContext(t *testing.T) {
	svc := NewCourseTextService(nil)
	_, err := svc.Parse(dto.ParseCourseRequest{Line: "COMP206", Context: "elsewhere"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Parse(dto.ParseCourseRequest{Line: strings.Repeat("x", 201)})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestCourseTextFormat(t *testing.T) {
	svc := NewCourseTextService(nil)
	view := svc.Format(dto.FormatCourseRequest{Course: models.Course{SubjectCode: "MATH", CourseCode: "133", Grade: models.GradeA, Credit: 3}})
	assert.Equal(t, "MATH133 A 3", view.Line)
}
