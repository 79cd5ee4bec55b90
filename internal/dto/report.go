package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

// BlockPatchRequest is a shallow-merge patch for one block. Absent keys are
// left alone; an explicit null on a credit key clears it.
type BlockPatchRequest struct {
	Patch models.BlockPatch
}

// UnmarshalJSON decodes the patch keeping the absent/null distinction.
func (r *BlockPatchRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("patch must be an object")
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var patch models.BlockPatch
	for _, key := range keys {
		raw := fields[key]
		switch key {
		case "name":
			var name string
			if err := json.Unmarshal(raw, &name); err != nil {
				return fmt.Errorf("name: %w", err)
			}
			patch.Name = models.Some(name)
		case "block_type":
			var t models.BlockType
			if err := json.Unmarshal(raw, &t); err != nil || !t.Valid() {
				return fmt.Errorf("block_type: unsupported value %s", raw)
			}
			patch.BlockType = models.Some(t)
		case "status":
			var s models.BlockStatus
			if err := json.Unmarshal(raw, &s); err != nil || !s.Valid() {
				return fmt.Errorf("status: unsupported value %s", raw)
			}
			patch.Status = models.Some(s)
		case "minimum_credit":
			v, err := creditValue(raw)
			if err != nil {
				return fmt.Errorf("minimum_credit: %w", err)
			}
			patch.MinimumCredit = models.Some(v)
		case "received_credit":
			v, err := creditValue(raw)
			if err != nil {
				return fmt.Errorf("received_credit: %w", err)
			}
			patch.ReceivedCredit = models.Some(v)
		default:
			return fmt.Errorf("unsupported patch field %q", key)
		}
	}
	r.Patch = patch
	return nil
}

func creditValue(raw json.RawMessage) (*int, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("must be a whole number or null")
	}
	if n < 0 {
		return nil, fmt.Errorf("must not be negative")
	}
	return &n, nil
}

// NoteRequest carries note text.
type NoteRequest struct {
	Value string `json:"value" validate:"max=2000"`
}

// CourseEditRequest edits a report course either by one field or by
// replacing it with a parsed quick-entry line.
type CourseEditRequest struct {
	Field string  `json:"field" validate:"omitempty,oneof=subject_code course_code grade credit"`
	Value string  `json:"value" validate:"max=200"`
	Line  *string `json:"line" validate:"omitempty,max=200"`
}

// BlockView answers block reads and edits.
type BlockView struct {
	Report        int           `json:"report"`
	Path          string        `json:"path"`
	PendingRename bool          `json:"pending_rename"`
	Block         *models.Block `json:"block"`
}

// InsertedBlockView answers a child insert with the new child's address.
type InsertedBlockView struct {
	Report    int           `json:"report"`
	Path      string        `json:"path"`
	ChildPath string        `json:"child_path"`
	Block     *models.Block `json:"block"`
}
