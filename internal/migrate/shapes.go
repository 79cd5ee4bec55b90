package migrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

// Shape tags the historical encoding used for a course entry.
type Shape int

const (
	// ShapeTuple is the ordered [subject_code, course_code, credit] form used
	// by the first two report generations. The grade is never present and the
	// credit element may be missing.
	ShapeTuple Shape = iota + 1
	// ShapeRecord is the keyed form. Current documents carry all four fields,
	// older ones may omit grade or credit.
	ShapeRecord
)

// LegacyCourse holds one course entry in whichever shape it was stored. A
// null entry keeps the zero Shape and is dropped by the normalizer.
type LegacyCourse struct {
	Shape Shape

	// Tuple holds the ordered elements of a ShapeTuple entry.
	Tuple []string

	// Record fields; nil means the key was absent or null.
	SubjectCode *string
	CourseCode  *string
	Grade       *string
	Credit      *string
}

type recordCourse struct {
	SubjectCode *text `json:"subject_code"`
	CourseCode  *text `json:"course_code"`
	Grade       *text `json:"grade"`
	Credit      *text `json:"credit"`
}

// UnmarshalJSON detects the shape from the first token.
func (c *LegacyCourse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty course entry")
	}
	if bytes.Equal(trimmed, []byte("null")) {
		*c = LegacyCourse{}
		return nil
	}
	switch trimmed[0] {
	case '[':
		var elems []text
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return fmt.Errorf("decode course tuple: %w", err)
		}
		tuple := make([]string, len(elems))
		for i, elem := range elems {
			tuple[i] = string(elem)
		}
		*c = LegacyCourse{Shape: ShapeTuple, Tuple: tuple}
		return nil
	case '{':
		var rec recordCourse
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return fmt.Errorf("decode course record: %w", err)
		}
		*c = LegacyCourse{
			Shape:       ShapeRecord,
			SubjectCode: rec.SubjectCode.ptr(),
			CourseCode:  rec.CourseCode.ptr(),
			Grade:       rec.Grade.ptr(),
			Credit:      rec.Credit.ptr(),
		}
		return nil
	default:
		return fmt.Errorf("unsupported course encoding %q", truncateForError(trimmed))
	}
}

// LegacyBlock is a report block whose courses may use any historical shape.
type LegacyBlock struct {
	Name           string             `json:"name"`
	BlockType      models.BlockType   `json:"block_type"`
	MinimumCredit  *count             `json:"minimum_credit"`
	ReceivedCredit *count             `json:"received_credit"`
	Status         models.BlockStatus `json:"status"`
	Notes          []string           `json:"notes"`
	Details        []string           `json:"details"`
	Courses        []LegacyCourse     `json:"courses"`
	Blocks         []LegacyBlock      `json:"blocks"`
}

// text accepts a JSON string, number or boolean and keeps its textual form.
// null decodes to the empty string.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		*t = text(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		*t = text(strconv.FormatBool(b))
		return nil
	}
	return fmt.Errorf("unsupported scalar %q", truncateForError(trimmed))
}

func (t *text) ptr() *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}

// count accepts an integer given as a JSON number or a numeric string. A
// blank string means the figure is not tracked, like null.
type count struct {
	n       int
	tracked bool
}

func (c *count) UnmarshalJSON(data []byte) error {
	var raw text
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	if strings.TrimSpace(string(raw)) == "" {
		*c = count{}
		return nil
	}
	n, ok := parseCount(string(raw))
	if !ok {
		return fmt.Errorf("invalid credit figure %q", string(raw))
	}
	*c = count{n: n, tracked: true}
	return nil
}

func (c *count) intPtr() *int {
	if c == nil || !c.tracked {
		return nil
	}
	n := c.n
	return &n
}

// parseCount reads a non-negative integer, accepting integral decimals such
// as "3.0". Negative values clamp to 0.
func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return max(n, 0), true
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == float64(int(f)) {
		return max(int(f), 0), true
	}
	return 0, false
}

func truncateForError(data []byte) string {
	const limit = 32
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
