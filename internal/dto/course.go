package dto

import "github.com/noah-isme/degree-audit-api/internal/models"

// Course text contexts decide the credit of a line without one.
const (
	ContextBuilder = "builder"
	ContextReport  = "report"
)

// ParseCourseRequest asks for a quick-entry line to be parsed.
type ParseCourseRequest struct {
	Line    string `json:"line" validate:"max=200"`
	Context string `json:"context" validate:"omitempty,oneof=builder report"`
}

// DefaultCredit returns the credit used when the line has none.
func (r ParseCourseRequest) DefaultCredit() int {
	if r.Context == ContextReport {
		return models.ReportDefaultCredit
	}
	return models.BuilderDefaultCredit
}

// FormatCourseRequest asks for a course record to be rendered as a line.
type FormatCourseRequest struct {
	Course models.Course `json:"course"`
}

// CourseLineView pairs a course with its quick-entry rendering.
type CourseLineView struct {
	Course models.Course `json:"course"`
	Line   string        `json:"line"`
}
