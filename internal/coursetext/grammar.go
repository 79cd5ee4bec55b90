// Package coursetext maps a course record to and from its one line
// quick-entry form, e.g. "COMP206 A 3".
//
// Parsing never fails. Unrecognised tokens are skipped and missing values
// fall back to defaults.
package coursetext

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

// maxSubjectLen bounds a subject code taken from a token that is not in
// compact form.
const maxSubjectLen = 4

// compactCode matches a subject glued to a numeric course code ("comp206").
var compactCode = regexp.MustCompile(`^([A-Za-z]{2,4})(\d+)$`)

// Parse reads a quick-entry line. defaultCredit applies when the line names
// no credit; the transcript builder uses models.BuilderDefaultCredit and the
// report editor models.ReportDefaultCredit.
func Parse(line string, defaultCredit int) models.Course {
	course := models.NewCourse(defaultCredit)
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return course
	}

	rest := tokens[1:]
	if m := compactCode.FindStringSubmatch(tokens[0]); m != nil {
		course.SubjectCode = strings.ToUpper(m[1])
		course.CourseCode = m[2]
	} else {
		course.SubjectCode = truncate(strings.ToUpper(tokens[0]), maxSubjectLen)
		if len(rest) > 0 {
			course.CourseCode = rest[0]
			rest = rest[1:]
		}
	}

	gradeSeen, creditSeen := false, false
	for _, token := range rest {
		if !gradeSeen {
			if grade, ok := models.ParseGrade(token); ok {
				course.Grade = grade
				gradeSeen = true
				continue
			}
		}
		if !creditSeen {
			if credit, err := strconv.Atoi(token); err == nil && credit >= 0 {
				course.Credit = credit
				creditSeen = true
				continue
			}
		}
	}
	return course.Enforced()
}

// Format renders course as a quick-entry line. Subject and code are glued
// together when the result reads back as the same pair; otherwise they are
// separated by a space so that Parse recovers both.
func Format(course models.Course) string {
	var b strings.Builder
	b.WriteString(course.SubjectCode)
	if course.CourseCode != "" {
		if !gluable(course.SubjectCode, course.CourseCode) {
			b.WriteByte(' ')
		}
		b.WriteString(course.CourseCode)
	}
	if course.Grade != "" {
		b.WriteByte(' ')
		b.WriteString(string(course.Grade))
	}
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(course.Credit))
	return strings.TrimSpace(b.String())
}

func gluable(subject, code string) bool {
	m := compactCode.FindStringSubmatch(subject + code)
	return m != nil && m[1] == subject && m[2] == code
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
