// Package migrate brings report trees written by any earlier generation of
// the audit tooling to the canonical course record shape.
//
// Normalising is idempotent: canonical output fed back in comes out unchanged.
package migrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

// ErrInvalidDocument is returned when a document is not a JSON report list.
var ErrInvalidDocument = errors.New("invalid report document")

// Options tunes normalisation policy.
type Options struct {
	// EnforceFailingCredit zeroes the credit of courses graded F. When false,
	// legacy F records with non-zero credit pass through unchanged.
	EnforceFailingCredit bool
}

// Normalizer converts legacy report documents to canonical reports.
type Normalizer struct {
	opts Options
}

// New builds a Normalizer.
func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Course converts one course entry of any shape. Entries without a grade are
// legacy fully credited courses and get grade A; a missing credit becomes 0.
func (n *Normalizer) Course(c LegacyCourse) models.Course {
	var out models.Course
	switch c.Shape {
	case ShapeTuple:
		out.Grade = models.DefaultGrade
		if len(c.Tuple) > 0 {
			out.SubjectCode = c.Tuple[0]
		}
		if len(c.Tuple) > 1 {
			out.CourseCode = c.Tuple[1]
		}
		if len(c.Tuple) > 2 {
			out.Credit = credit(c.Tuple[2])
		}
	default:
		out.SubjectCode = deref(c.SubjectCode)
		out.CourseCode = deref(c.CourseCode)
		out.Grade = grade(c.Grade)
		if c.Credit != nil {
			out.Credit = credit(*c.Credit)
		}
	}
	if n.opts.EnforceFailingCredit {
		out = out.Enforced()
	}
	return out
}

// Block converts a block and its whole subtree.
func (n *Normalizer) Block(b LegacyBlock) *models.Block {
	notes := b.Notes
	if notes == nil {
		notes = b.Details
	}
	out := &models.Block{
		Name:           b.Name,
		BlockType:      b.BlockType,
		MinimumCredit:  b.MinimumCredit.intPtr(),
		ReceivedCredit: b.ReceivedCredit.intPtr(),
		Status:         b.Status,
		Notes:          make([]string, len(notes)),
		Courses:        make([]models.Course, 0, len(b.Courses)),
		Blocks:         make([]*models.Block, 0, len(b.Blocks)),
	}
	copy(out.Notes, notes)
	for _, course := range b.Courses {
		if course.Shape == 0 {
			continue
		}
		out.Courses = append(out.Courses, n.Course(course))
	}
	for _, child := range b.Blocks {
		out.Blocks = append(out.Blocks, n.Block(child))
	}
	return out
}

// Reports decodes a report list document and normalises every report.
func (n *Normalizer) Reports(data []byte) ([]*models.Report, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: root must be an array", ErrInvalidDocument)
	}
	var blocks []LegacyBlock
	if err := json.Unmarshal(trimmed, &blocks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return n.convert(blocks), nil
}

// RawReports normalises reports already split into raw JSON values, as found
// in an audit service response.
func (n *Normalizer) RawReports(raws []json.RawMessage) ([]*models.Report, error) {
	blocks := make([]LegacyBlock, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal(raw, &blocks[i]); err != nil {
			return nil, fmt.Errorf("%w: report %d: %v", ErrInvalidDocument, i, err)
		}
	}
	return n.convert(blocks), nil
}

func (n *Normalizer) convert(blocks []LegacyBlock) []*models.Report {
	reports := make([]*models.Report, 0, len(blocks))
	for _, block := range blocks {
		reports = append(reports, n.Block(block))
	}
	return reports
}

func grade(raw *string) models.Grade {
	if raw == nil || *raw == "" {
		return models.DefaultGrade
	}
	if g, ok := models.ParseGrade(*raw); ok {
		return g
	}
	return models.Grade(*raw)
}

func credit(raw string) int {
	n, _ := parseCount(raw)
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
