// Package fixtures provides the sample transcript used to try the audit
// without typing a full course history.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

//go:embed sample_transcript.yaml
var bundledSample []byte

// Loader reads the sample transcript from an override file or the bundled
// copy.
type Loader struct {
	path string
}

// NewLoader builds a Loader. An empty path selects the bundled sample.
func NewLoader(path string) *Loader {
	return &Loader{path: strings.TrimSpace(path)}
}

// SampleTranscript returns a fresh copy of the sample on every call. Courses
// have the failing-grade credit rule applied.
func (l *Loader) SampleTranscript() (models.Transcript, error) {
	data := bundledSample
	source := "bundled sample"
	if l.path != "" {
		raw, err := os.ReadFile(l.path)
		if err != nil {
			return models.Transcript{}, fmt.Errorf("read %s: %w", l.path, err)
		}
		data, source = raw, l.path
	}
	return Parse(data, source)
}

// Parse decodes a transcript fixture document.
func Parse(data []byte, source string) (models.Transcript, error) {
	var t models.Transcript
	if err := yaml.Unmarshal(data, &t); err != nil {
		return models.Transcript{}, fmt.Errorf("unmarshal %s: %w", source, err)
	}
	if len(t.SubmittedPrograms()) == 0 {
		return models.Transcript{}, fmt.Errorf("%s: no program titles", source)
	}
	if t.Courses == nil {
		t.Courses = []models.Course{}
	}
	for i, course := range t.Courses {
		if course.Grade == "" {
			course.Grade = models.DefaultGrade
		}
		if !course.Grade.Valid() {
			return models.Transcript{}, fmt.Errorf("%s: course %d: invalid grade %q", source, i, course.Grade)
		}
		t.Courses[i] = course.Enforced()
	}
	return t, nil
}
