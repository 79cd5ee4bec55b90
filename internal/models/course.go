package models

import "strings"

// Grade is a letter grade from the fixed ordered grade scale.
type Grade string

const (
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeF      Grade = "F"
)

// DefaultGrade is assumed whenever a course carries no grade.
const DefaultGrade = GradeA

// ValidGrades lists the grade scale in display order.
var ValidGrades = []Grade{GradeA, GradeAMinus, GradeBPlus, GradeB, GradeBMinus, GradeCPlus, GradeC, GradeF}

// Valid reports whether the grade belongs to the grade scale.
func (g Grade) Valid() bool {
	for _, candidate := range ValidGrades {
		if g == candidate {
			return true
		}
	}
	return false
}

// Failing reports whether the grade earns no credit.
func (g Grade) Failing() bool {
	return g == GradeF
}

// ParseGrade matches raw against the grade scale ignoring case.
func ParseGrade(raw string) (Grade, bool) {
	g := Grade(strings.ToUpper(strings.TrimSpace(raw)))
	if !g.Valid() {
		return "", false
	}
	return g, true
}

// Course is the canonical record of one completed course.
type Course struct {
	SubjectCode string `json:"subject_code" yaml:"subject_code"`
	CourseCode  string `json:"course_code" yaml:"course_code"`
	Grade       Grade  `json:"grade" yaml:"grade"`
	Credit      int    `json:"credit" yaml:"credit"`
}

// CourseField names a single editable course attribute.
type CourseField string

const (
	CourseFieldSubjectCode CourseField = "subject_code"
	CourseFieldCourseCode  CourseField = "course_code"
	CourseFieldGrade       CourseField = "grade"
	CourseFieldCredit      CourseField = "credit"
)

// Valid reports whether the field is editable.
func (f CourseField) Valid() bool {
	switch f {
	case CourseFieldSubjectCode, CourseFieldCourseCode, CourseFieldGrade, CourseFieldCredit:
		return true
	default:
		return false
	}
}

// NewCourse returns a blank course with the default grade and the given credit.
func NewCourse(defaultCredit int) Course {
	return Course{Grade: DefaultGrade, Credit: clampCredit(defaultCredit)}
}

// WithGrade returns a copy carrying grade g. A failing grade zeroes the credit.
func (c Course) WithGrade(g Grade) Course {
	c.Grade = g
	if g.Failing() {
		c.Credit = 0
	}
	return c
}

// WithCredit returns a copy carrying credit n. The change is refused (ok=false)
// while the course holds a failing grade.
func (c Course) WithCredit(n int) (Course, bool) {
	if c.Grade.Failing() {
		return c, false
	}
	c.Credit = clampCredit(n)
	return c, true
}

// Enforced returns the course with the failing-grade credit rule applied.
func (c Course) Enforced() Course {
	if c.Grade.Failing() {
		c.Credit = 0
	}
	return c
}

// Consistent reports whether the failing-grade credit rule holds.
func (c Course) Consistent() bool {
	return !c.Grade.Failing() || c.Credit == 0
}

func clampCredit(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
