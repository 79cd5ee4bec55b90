package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

func leaf(name string, blockType models.BlockType) *models.Block {
	return &models.Block{
		Name:      name,
		BlockType: blockType,
		Status:    models.BlockStatusUnfulfilled,
		Notes:     []string{},
		Courses:   []models.Course{},
		Blocks:    []*models.Block{},
	}
}

func sampleReport() *models.Report {
	required := leaf("Required Courses", models.BlockTypeRequired)
	required.MinimumCredit = models.IntPtr(18)
	required.Courses = []models.Course{
		{SubjectCode: "COMP", CourseCode: "206", Grade: models.GradeBPlus, Credit: 3},
		{SubjectCode: "MATH", CourseCode: "240", Grade: models.GradeBMinus, Credit: 3},
	}
	complementary := leaf("Complementary Courses", models.BlockTypeComplementary)
	complementary.Notes = []string{"need 3 more credits from Group A"}
	complementary.Blocks = []*models.Block{
		leaf("Group A", models.BlockTypeCustom),
		leaf("Group B", models.BlockTypeCustom),
	}
	root := leaf("Computer Science Major Concentration (B.A.)", models.BlockTypeProgram)
	root.Blocks = []*models.Block{required, complementary}
	return root
}

func TestGetFollowsPath(t *testing.T) {
	root := sampleReport()

	assert.Same(t, root, Get(root, models.Path{}))
	assert.Equal(t, "Group B", Get(root, models.Path{1, 1}).Name)
}

func TestGetDegradesToDeepestBlock(t *testing.T) {
	root := sampleReport()

	assert.Same(t, root.Blocks[1], Get(root, models.Path{1, 7}))
	assert.Same(t, root.Blocks[1].Blocks[0], Get(root, models.Path{1, 0, 3, 2}))
	assert.Same(t, root, Get(root, models.Path{9}))
}

func TestLookupRejectsStalePath(t *testing.T) {
	root := sampleReport()

	block, ok := Lookup(root, models.Path{1, 0})
	require.True(t, ok)
	assert.Equal(t, "Group A", block.Name)

	_, ok = Lookup(root, models.Path{1, 7})
	assert.False(t, ok)
	_, ok = Lookup(nil, models.Path{})
	assert.False(t, ok)
}

func TestUpdateCopiesPathAndSharesSiblings(t *testing.T) {
	root := sampleReport()
	path := models.Path{1, 0}

	next := Update(root, path, models.BlockPatch{
		Name:   models.Some("Group A (renamed)"),
		Status: models.Some(models.BlockStatusFulfilled),
	})

	got := Get(next, path)
	assert.Equal(t, "Group A (renamed)", got.Name)
	assert.Equal(t, models.BlockStatusFulfilled, got.Status)
	assert.Equal(t, models.BlockTypeCustom, got.BlockType)

	assert.NotSame(t, root, next)
	assert.NotSame(t, root.Blocks[1], next.Blocks[1])
	assert.NotSame(t, root.Blocks[1].Blocks[0], next.Blocks[1].Blocks[0])
	assert.Same(t, root.Blocks[0], next.Blocks[0])
	assert.Same(t, root.Blocks[1].Blocks[1], next.Blocks[1].Blocks[1])

	assert.Equal(t, "Group A", root.Blocks[1].Blocks[0].Name)
	assert.Equal(t, models.BlockStatusUnfulfilled, root.Blocks[1].Blocks[0].Status)
}

func TestUpdateEmptyPathPatchesRoot(t *testing.T) {
	root := sampleReport()

	next := Update(root, models.Path{}, models.BlockPatch{ReceivedCredit: models.Some(models.IntPtr(21))})

	require.NotNil(t, next.ReceivedCredit)
	assert.Equal(t, 21, *next.ReceivedCredit)
	assert.Nil(t, root.ReceivedCredit)
	assert.Same(t, root.Blocks[0], next.Blocks[0])
}

func TestUpdateClearsCreditWithExplicitNil(t *testing.T) {
	root := sampleReport()

	next := Update(root, models.Path{0}, models.BlockPatch{MinimumCredit: models.Some[*int](nil)})

	assert.Nil(t, next.Blocks[0].MinimumCredit)
	require.NotNil(t, root.Blocks[0].MinimumCredit)
}

func TestUpdateStalePathLeavesTree(t *testing.T) {
	root := sampleReport()

	next := Update(root, models.Path{4, 1}, models.BlockPatch{Name: models.Some("ghost")})

	assert.Same(t, root, next)
}

func TestInsertChildBlockAppendsDefaults(t *testing.T) {
	root := sampleReport()

	next, childPath, err := InsertChildBlock(root, models.Path{1})
	require.NoError(t, err)
	assert.Equal(t, models.Path{1, 2}, childPath)

	child := Get(next, childPath)
	assert.Equal(t, models.DefaultBlockName, child.Name)
	assert.Equal(t, models.BlockTypeCustom, child.BlockType)
	assert.Equal(t, models.BlockStatusUnfulfilled, child.Status)
	assert.Nil(t, child.MinimumCredit)
	assert.Nil(t, child.ReceivedCredit)
	assert.Empty(t, child.Notes)
	assert.Empty(t, child.Courses)
	assert.Empty(t, child.Blocks)
	assert.Len(t, root.Blocks[1].Blocks, 2)

	_, _, err = InsertChildBlock(root, models.Path{5})
	assert.ErrorIs(t, err, ErrStalePath)
}

func TestRemoveChildBlockFiltersIndex(t *testing.T) {
	root := leaf("root", models.BlockTypeProgram)
	x, y, z := leaf("X", models.BlockTypeRequired), leaf("Y", models.BlockTypeRequired), leaf("Z", models.BlockTypeRequired)
	root.Blocks = []*models.Block{x, y, z}

	next, err := RemoveChildBlock(root, models.Path{}, 1)
	require.NoError(t, err)
	require.Len(t, next.Blocks, 2)
	assert.Same(t, x, next.Blocks[0])
	assert.Same(t, z, next.Blocks[1])

	assert.Same(t, x, Get(next, models.Path{0}))
	_, ok := Lookup(next, models.Path{2})
	assert.False(t, ok, "old index of Z is stale after removal")

	_, err = RemoveChildBlock(root, models.Path{}, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Len(t, root.Blocks, 3)
}

func TestNoteOperations(t *testing.T) {
	root := sampleReport()
	path := models.Path{1}

	withNote, err := InsertNote(root, path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"need 3 more credits from Group A", ""}, Get(withNote, path).Notes)

	edited, err := UpdateNote(withNote, path, 1, "9 credits from MATH 300+")
	require.NoError(t, err)
	assert.Equal(t, "9 credits from MATH 300+", Get(edited, path).Notes[1])
	assert.Equal(t, "", Get(withNote, path).Notes[1])

	removed, err := RemoveNote(edited, path, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"9 credits from MATH 300+"}, Get(removed, path).Notes)

	_, err = UpdateNote(root, path, 4, "x")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = RemoveNote(root, models.Path{3}, 0)
	assert.ErrorIs(t, err, ErrStalePath)
}

func TestInsertFromSameSnapshotDoesNotAlias(t *testing.T) {
	root := sampleReport()
	block := root.Blocks[1]
	block.Notes = make([]string, 1, 8)
	block.Notes[0] = "first"

	a, err := InsertNote(root, models.Path{1}, "a")
	require.NoError(t, err)
	b, err := InsertNote(root, models.Path{1}, "b")
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "a"}, Get(a, models.Path{1}).Notes)
	assert.Equal(t, []string{"first", "b"}, Get(b, models.Path{1}).Notes)
	assert.Equal(t, []string{"first"}, block.Notes)
}

func TestCourseOperations(t *testing.T) {
	root := sampleReport()
	path := models.Path{0}

	added, err := InsertCourse(root, path, models.NewCourse(models.ReportDefaultCredit))
	require.NoError(t, err)
	courses := Get(added, path).Courses
	require.Len(t, courses, 3)
	assert.Equal(t, models.Course{Grade: models.GradeA, Credit: 0}, courses[2])

	replacedCourse, err := UpdateCourse(added, path, 2, models.Course{SubjectCode: "MATH", CourseCode: "314", Grade: models.GradeF, Credit: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, Get(replacedCourse, path).Courses[2].Credit)

	removed, err := RemoveCourse(replacedCourse, path, 0)
	require.NoError(t, err)
	assert.Equal(t, "MATH", Get(removed, path).Courses[0].SubjectCode)
	assert.Len(t, Get(removed, path).Courses, 2)
	assert.Len(t, Get(root, path).Courses, 2)
}

func TestUpdateCourseFieldFailingGradeZeroesCredit(t *testing.T) {
	root := sampleReport()
	path := models.Path{0}

	next, err := UpdateCourseField(root, path, 0, models.CourseFieldGrade, "F")
	require.NoError(t, err)
	course := Get(next, path).Courses[0]
	assert.Equal(t, models.GradeF, course.Grade)
	assert.Equal(t, 0, course.Credit)
	assert.Equal(t, 3, Get(root, path).Courses[0].Credit)

	locked, err := UpdateCourseField(next, path, 0, models.CourseFieldCredit, "4")
	assert.ErrorIs(t, err, ErrCreditLocked)
	assert.Same(t, next, locked)
}

func TestUpdateCourseFieldCredit(t *testing.T) {
	root := sampleReport()
	path := models.Path{0}

	next, err := UpdateCourseField(root, path, 1, models.CourseFieldCredit, "4")
	require.NoError(t, err)
	assert.Equal(t, 4, Get(next, path).Courses[1].Credit)

	next, err = UpdateCourseField(root, path, 1, models.CourseFieldCredit, "four")
	require.NoError(t, err)
	assert.Equal(t, 0, Get(next, path).Courses[1].Credit)

	_, err = UpdateCourseField(root, path, 1, models.CourseFieldGrade, "Z")
	assert.ErrorIs(t, err, ErrInvalidField)
	_, err = UpdateCourseField(root, path, 1, models.CourseField("title"), "x")
	assert.ErrorIs(t, err, ErrInvalidField)
	_, err = UpdateCourseField(root, path, 9, models.CourseFieldCourseCode, "x")
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestCourseEditsKeepFailingCreditRule(t *testing.T) {
	root := sampleReport()
	path := models.Path{0}
	for _, grade := range models.ValidGrades {
		next, err := UpdateCourseField(root, path, 0, models.CourseFieldGrade, string(grade))
		require.NoError(t, err)
		for _, course := range Get(next, path).Courses {
			assert.True(t, course.Consistent(), "grade %s credit %d", course.Grade, course.Credit)
		}
	}
}
