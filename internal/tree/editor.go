// Package tree implements immutable, path addressed edits over report trees.
//
// Every operation returns a new root. Blocks on the path from the root to the
// edited block are copied; every other block is shared with the input, so
// callers may keep old roots as snapshots.
package tree

import (
	"errors"
	"strconv"
	"strings"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

var (
	// ErrStalePath is returned when a path no longer resolves against the root.
	ErrStalePath = errors.New("path does not resolve")
	// ErrIndexOutOfRange is returned when a sequence index is outside the sequence.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrCreditLocked is returned when credit is set on a course with a failing grade.
	ErrCreditLocked = errors.New("credit is fixed at 0 for failing grades")
	// ErrInvalidField is returned for unknown course fields or unusable values.
	ErrInvalidField = errors.New("invalid course field")
)

// Get returns the block at path. When an index is out of range partway down,
// the deepest block reached so far is returned instead. Use Lookup when a
// stale path must be detected.
func Get(root *models.Report, path models.Path) *models.Block {
	current := root
	for _, idx := range path {
		if current == nil || idx < 0 || idx >= len(current.Blocks) || current.Blocks[idx] == nil {
			return current
		}
		current = current.Blocks[idx]
	}
	return current
}

// Lookup is the strict form of Get: ok is false unless every index resolves.
func Lookup(root *models.Report, path models.Path) (*models.Block, bool) {
	current := root
	if current == nil {
		return nil, false
	}
	for _, idx := range path {
		if idx < 0 || idx >= len(current.Blocks) || current.Blocks[idx] == nil {
			return nil, false
		}
		current = current.Blocks[idx]
	}
	return current, true
}

// Update merges patch into the block at path and returns the new root. An
// empty path patches the root itself. A path that does not resolve leaves the
// tree untouched and returns root as is.
func Update(root *models.Report, path models.Path, patch models.BlockPatch) *models.Report {
	if _, ok := Lookup(root, path); !ok {
		return root
	}
	return update(root, path, patch)
}

func update(block *models.Block, path models.Path, patch models.BlockPatch) *models.Block {
	if len(path) == 0 {
		return patch.Apply(block)
	}
	idx := path[0]
	children := make([]*models.Block, len(block.Blocks))
	copy(children, block.Blocks)
	children[idx] = update(block.Blocks[idx], path[1:], patch)
	return models.BlockPatch{Blocks: models.Some(children)}.Apply(block)
}

// InsertChildBlock appends a default block under path. It returns the new root
// and the path of the inserted child, which callers tag for renaming.
func InsertChildBlock(root *models.Report, path models.Path) (*models.Report, models.Path, error) {
	parent, ok := Lookup(root, path)
	if !ok {
		return root, nil, ErrStalePath
	}
	children := appended(parent.Blocks, models.NewBlock())
	next := update(root, path, models.BlockPatch{Blocks: models.Some(children)})
	return next, path.Child(len(children) - 1), nil
}

// RemoveChildBlock drops child index of the block at path. Later siblings
// shift down by one, so paths into them go stale.
func RemoveChildBlock(root *models.Report, path models.Path, index int) (*models.Report, error) {
	parent, ok := Lookup(root, path)
	if !ok {
		return root, ErrStalePath
	}
	if index < 0 || index >= len(parent.Blocks) {
		return root, ErrIndexOutOfRange
	}
	return update(root, path, models.BlockPatch{Blocks: models.Some(without(parent.Blocks, index))}), nil
}

// InsertNote appends text to the notes of the block at path.
func InsertNote(root *models.Report, path models.Path, text string) (*models.Report, error) {
	block, ok := Lookup(root, path)
	if !ok {
		return root, ErrStalePath
	}
	return update(root, path, models.BlockPatch{Notes: models.Some(appended(block.Notes, text))}), nil
}

// UpdateNote replaces note index of the block at path.
func UpdateNote(root *models.Report, path models.Path, index int, value string) (*models.Report, error) {
	block, ok := Lookup(root, path)
	if !ok {
		return root, ErrStalePath
	}
	if index < 0 || index >= len(block.Notes) {
		return root, ErrIndexOutOfRange
	}
	return update(root, path, models.BlockPatch{Notes: models.Some(replaced(block.Notes, index, value))}), nil
}

// RemoveNote drops note index of the block at path.
func RemoveNote(root *models.Report, path models.Path, index int) (*models.Report, error) {
	block, ok := Lookup(root, path)
	if !ok {
		return root, ErrStalePath
	}
	if index < 0 || index >= len(block.Notes) {
		return root, ErrIndexOutOfRange
	}
	return update(root, path, models.BlockPatch{Notes: models.Some(without(block.Notes, index))}), nil
}

// InsertCourse appends course to the block at path.
func InsertCourse(root *models.Report, path models.Path, course models.Course) (*models.Report, error) {
	block, ok := Lookup(root, path)
	if !ok {
		return root, ErrStalePath
	}
	courses := appended(block.Courses, course.Enforced())
	return update(root, path, models.BlockPatch{Courses: models.Some(courses)}), nil
}

// UpdateCourse replaces course index of the block at path.
func UpdateCourse(root *models.Report, path models.Path, index int, course models.Course) (*models.Report, error) {
	block, ok := Lookup(root, path)
	if !ok {
		return root, ErrStalePath
	}
	if index < 0 || index >= len(block.Courses) {
		return root, ErrIndexOutOfRange
	}
	courses := replaced(block.Courses, index, course.Enforced())
	return update(root, path, models.BlockPatch{Courses: models.Some(courses)}), nil
}

// UpdateCourseField sets one field of course index of the block at path.
// Setting the grade to F zeroes the credit in the same update; setting the
// credit of a failing course is refused with ErrCreditLocked.
func UpdateCourseField(root *models.Report, path models.Path, index int, field models.CourseField, value string) (*models.Report, error) {
	block, ok := Lookup(root, path)
	if !ok {
		return root, ErrStalePath
	}
	if index < 0 || index >= len(block.Courses) {
		return root, ErrIndexOutOfRange
	}
	course, err := SetCourseField(block.Courses[index], field, value)
	if err != nil {
		return root, err
	}
	courses := replaced(block.Courses, index, course)
	return update(root, path, models.BlockPatch{Courses: models.Some(courses)}), nil
}

// SetCourseField applies a single field edit to course, keeping the failing
// grade credit rule. Credit values that are not integers count as 0.
func SetCourseField(course models.Course, field models.CourseField, value string) (models.Course, error) {
	switch field {
	case models.CourseFieldSubjectCode:
		course.SubjectCode = value
	case models.CourseFieldCourseCode:
		course.CourseCode = value
	case models.CourseFieldGrade:
		grade, ok := models.ParseGrade(value)
		if !ok {
			return course, ErrInvalidField
		}
		course = course.WithGrade(grade)
	case models.CourseFieldCredit:
		credit, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			credit = 0
		}
		next, ok := course.WithCredit(credit)
		if !ok {
			return course, ErrCreditLocked
		}
		course = next
	default:
		return course, ErrInvalidField
	}
	return course, nil
}

// RemoveCourse drops course index of the block at path.
func RemoveCourse(root *models.Report, path models.Path, index int) (*models.Report, error) {
	block, ok := Lookup(root, path)
	if !ok {
		return root, ErrStalePath
	}
	if index < 0 || index >= len(block.Courses) {
		return root, ErrIndexOutOfRange
	}
	return update(root, path, models.BlockPatch{Courses: models.Some(without(block.Courses, index))}), nil
}

// The helpers below always allocate: the input slices may be shared with
// older snapshots and must never be written through.

func appended[T any](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

func replaced[T any](items []T, index int, item T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[index] = item
	return out
}

func without[T any](items []T, index int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:index]...)
	return append(out, items[index+1:]...)
}
