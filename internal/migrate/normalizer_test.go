package migrate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

const tupleReport = `[
  {
    "name": "Computer Science Major Concentration (B.A.)",
    "block_type": "PROGRAM",
    "minimum_credit": 36,
    "received_credit": 21,
    "status": "UNFULFILLED",
    "notes": ["overall need 15 more credits"],
    "courses": [],
    "blocks": [
      {
        "name": "Required Courses",
        "block_type": "REQUIRED",
        "minimum_credit": 18,
        "received_credit": 12,
        "status": "UNFULFILLED",
        "notes": ["need 6 credits from MATH 389, MATH 240"],
        "courses": [["MATH", "223", "3"], ["COMP", "206", 3], ["SOCI", "210"]],
        "blocks": []
      },
      {
        "name": "Complementary Courses",
        "block_type": "COMPLEMENTARY",
        "minimum_credit": 18,
        "received_credit": 6,
        "status": "UNFULFILLED",
        "notes": [],
        "courses": [],
        "blocks": [
          {
            "name": "Group A",
            "block_type": "CUSTOM",
            "status": "UNFULFILLED",
            "notes": ["need 3 more credits"],
            "courses": [["PHYS", "141", "3"]],
            "blocks": []
          }
        ]
      }
    ]
  }
]`

func enforcing() *Normalizer {
	return New(Options{EnforceFailingCredit: true})
}

func TestCourseFromTuple(t *testing.T) {
	n := enforcing()

	assert.Equal(t,
		models.Course{SubjectCode: "MATH", CourseCode: "223", Grade: models.GradeA, Credit: 3},
		n.Course(LegacyCourse{Shape: ShapeTuple, Tuple: []string{"MATH", "223", "3"}}))
	assert.Equal(t,
		models.Course{SubjectCode: "SOCI", CourseCode: "210", Grade: models.GradeA, Credit: 0},
		n.Course(LegacyCourse{Shape: ShapeTuple, Tuple: []string{"SOCI", "210"}}))
}

func TestCourseFromPartialRecord(t *testing.T) {
	var course LegacyCourse
	require.NoError(t, json.Unmarshal([]byte(`{"subject_code":"MATH","course_code":"133","credit":"3"}`), &course))
	assert.Equal(t, ShapeRecord, course.Shape)

	assert.Equal(t,
		models.Course{SubjectCode: "MATH", CourseCode: "133", Grade: models.GradeA, Credit: 3},
		enforcing().Course(course))
}

func TestCourseFromRecordDefaults(t *testing.T) {
	var course LegacyCourse
	require.NoError(t, json.Unmarshal([]byte(`{"subject_code":"COMP","course_code":206,"grade":"b+","credit":null}`), &course))

	assert.Equal(t,
		models.Course{SubjectCode: "COMP", CourseCode: "206", Grade: models.GradeBPlus, Credit: 0},
		enforcing().Course(course))
}

func TestFailingCreditPolicy(t *testing.T) {
	course := LegacyCourse{Shape: ShapeRecord, SubjectCode: strPtr("MATH"), CourseCode: strPtr("314"), Grade: strPtr("F"), Credit: strPtr("3")}

	assert.Equal(t, 0, enforcing().Course(course).Credit)
	assert.Equal(t, 3, New(Options{}).Course(course).Credit)
}

func TestUnsupportedCourseEncoding(t *testing.T) {
	var course LegacyCourse
	assert.Error(t, json.Unmarshal([]byte(`"COMP206"`), &course))
}

func TestReportsTreatsBlankCreditFiguresAsUntracked(t *testing.T) {
	reports, err := enforcing().Reports([]byte(`[{"name":"P","minimum_credit":"","received_credit":"  ","blocks":[{"name":"C","minimum_credit":null,"received_credit":"6"}]}]`))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Nil(t, reports[0].MinimumCredit)
	assert.Nil(t, reports[0].ReceivedCredit)

	child := reports[0].Blocks[0]
	assert.Nil(t, child.MinimumCredit)
	require.NotNil(t, child.ReceivedCredit)
	assert.Equal(t, 6, *child.ReceivedCredit)
}

func TestReportsSkipsNullCourseEntries(t *testing.T) {
	reports, err := enforcing().Reports([]byte(`[{"name":"P","courses":[null,["COMP","250","3"],null]}]`))
	require.NoError(t, err)
	assert.Equal(t, []models.Course{{SubjectCode: "COMP", CourseCode: "250", Grade: models.GradeA, Credit: 3}}, reports[0].Courses)
}

func TestReportsWalksEveryBlock(t *testing.T) {
	reports, err := enforcing().Reports([]byte(tupleReport))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	root := reports[0]
	assert.Equal(t, models.BlockTypeProgram, root.BlockType)
	require.NotNil(t, root.MinimumCredit)
	assert.Equal(t, 36, *root.MinimumCredit)

	required := root.Blocks[0]
	assert.Equal(t, []models.Course{
		{SubjectCode: "MATH", CourseCode: "223", Grade: models.GradeA, Credit: 3},
		{SubjectCode: "COMP", CourseCode: "206", Grade: models.GradeA, Credit: 3},
		{SubjectCode: "SOCI", CourseCode: "210", Grade: models.GradeA, Credit: 0},
	}, required.Courses)

	group := root.Blocks[1].Blocks[0]
	assert.Nil(t, group.MinimumCredit)
	assert.Nil(t, group.ReceivedCredit)
	assert.Equal(t, []models.Course{{SubjectCode: "PHYS", CourseCode: "141", Grade: models.GradeA, Credit: 3}}, group.Courses)
	assert.NotNil(t, group.Blocks)
}

func TestReportsIsIdempotent(t *testing.T) {
	inputs := []string{
		tupleReport,
		`[{"name":"X","block_type":"REQUIRED","status":"FULFILLED","courses":[{"subject_code":"MATH","course_code":"133","credit":"3"}]}]`,
		`[{"name":"Y","block_type":"CUSTOM","courses":[{"subject_code":"MATH","course_code":"314","grade":"F","credit":4},["ECON","227D1"]],"details":["legacy details"]}]`,
	}
	for _, policy := range []Options{{EnforceFailingCredit: true}, {}} {
		n := New(policy)
		for _, input := range inputs {
			once, err := n.Reports([]byte(input))
			require.NoError(t, err)

			encoded, err := json.Marshal(once)
			require.NoError(t, err)
			twice, err := n.Reports(encoded)
			require.NoError(t, err)

			assert.Equal(t, once, twice)
		}
	}
}

func TestReportsKeepsLegacyDetailsAsNotes(t *testing.T) {
	reports, err := enforcing().Reports([]byte(`[{"name":"P","details":["Offered by: Sociology"]}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Offered by: Sociology"}, reports[0].Notes)
	assert.Empty(t, reports[0].Courses)
	assert.Empty(t, reports[0].Blocks)
}

func TestReportsRejectsMalformedDocuments(t *testing.T) {
	for _, input := range []string{``, `{"name":"not a list"}`, `[{"name":`, `[1, 2]`, `[{"courses":[true]}]`, `[{"minimum_credit":"lots"}]`} {
		_, err := enforcing().Reports([]byte(input))
		assert.ErrorIs(t, err, ErrInvalidDocument, input)
	}
}

func TestRawReports(t *testing.T) {
	raws := []json.RawMessage{
		json.RawMessage(`{"name":"A","courses":[["COMP","250","3"]]}`),
		json.RawMessage(`{"name":"B","minimum_credit":"12"}`),
	}
	reports, err := enforcing().RawReports(raws)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "COMP", reports[0].Courses[0].SubjectCode)
	assert.Equal(t, 12, *reports[1].MinimumCredit)

	_, err = enforcing().RawReports([]json.RawMessage{json.RawMessage(`[]`)})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func strPtr(s string) *string {
	return &s
}
