package models

import "strings"

// BuilderDefaultCredit is the credit given to courses created in the transcript builder.
const BuilderDefaultCredit = 3

// ReportDefaultCredit is the credit given to courses created inside a report.
const ReportDefaultCredit = 0

// Transcript is the audit input: programs to audit against and completed courses.
type Transcript struct {
	ProgramTitles []string `json:"program_titles" yaml:"program_titles"`
	Courses       []Course `json:"courses" yaml:"courses"`
}

// NewTranscript returns an empty draft with one blank program row.
func NewTranscript() Transcript {
	return Transcript{ProgramTitles: []string{""}, Courses: []Course{}}
}

// SubmittedPrograms returns the non-blank program titles in order.
func (t Transcript) SubmittedPrograms() []string {
	out := make([]string, 0, len(t.ProgramTitles))
	for _, title := range t.ProgramTitles {
		if strings.TrimSpace(title) != "" {
			out = append(out, title)
		}
	}
	return out
}

// Clone returns a copy that shares no slices with t.
func (t Transcript) Clone() Transcript {
	cp := Transcript{
		ProgramTitles: make([]string, len(t.ProgramTitles)),
		Courses:       make([]Course, len(t.Courses)),
	}
	copy(cp.ProgramTitles, t.ProgramTitles)
	copy(cp.Courses, t.Courses)
	return cp
}
