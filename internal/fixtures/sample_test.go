package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

func TestBundledSample(t *testing.T) {
	transcript, err := NewLoader("").SampleTranscript()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Computer Science Major Concentration (B.A.)",
		"Economics Major Concentration (B.A.)",
	}, transcript.ProgramTitles)
	require.Len(t, transcript.Courses, 36)
	assert.Equal(t, models.Course{SubjectCode: "COMP", CourseCode: "206", Grade: models.GradeBPlus, Credit: 3}, transcript.Courses[0])
	for _, course := range transcript.Courses {
		assert.True(t, course.Consistent(), course)
	}
}

func TestSampleIsACopy(t *testing.T) {
	l := NewLoader("")
	first, err := l.SampleTranscript()
	require.NoError(t, err)
	first.Courses[0].Credit = 99

	second, err := l.SampleTranscript()
	require.NoError(t, err)
	assert.Equal(t, 3, second.Courses[0].Credit)
}

func TestOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
program_titles: ["Mathematics Minor"]
courses:
  - {subject_code: MATH, course_code: "314", grade: F, credit: 3}
  - {subject_code: MATH, course_code: "133"}
`), 0o600))

	transcript, err := NewLoader(path).SampleTranscript()
	require.NoError(t, err)
	assert.Equal(t, []models.Course{
		{SubjectCode: "MATH", CourseCode: "314", Grade: models.GradeF, Credit: 0},
		{SubjectCode: "MATH", CourseCode: "133", Grade: models.GradeA, Credit: 0},
	}, transcript.Courses)
}

func TestParseRejectsBadFixtures(t *testing.T) {
	_, err := Parse([]byte("program_titles: [\"\"]\n"), "blank")
	assert.Error(t, err)
	_, err = Parse([]byte("program_titles: [X]\ncourses: [{grade: Z}]\n"), "grade")
	assert.Error(t, err)
	_, err = Parse([]byte("program_titles: ["), "syntax")
	assert.Error(t, err)
	_, err = NewLoader("/does/not/exist.yaml").SampleTranscript()
	assert.Error(t, err)
}
