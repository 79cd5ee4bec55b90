package models

// BlockType classifies a requirement block.
type BlockType string

const (
	BlockTypeProgram       BlockType = "PROGRAM"
	BlockTypeRequired      BlockType = "REQUIRED"
	BlockTypeComplementary BlockType = "COMPLEMENTARY"
	BlockTypeCustom        BlockType = "CUSTOM"
)

// Valid reports whether the block type is known.
func (t BlockType) Valid() bool {
	switch t {
	case BlockTypeProgram, BlockTypeRequired, BlockTypeComplementary, BlockTypeCustom:
		return true
	default:
		return false
	}
}

// BlockStatus captures whether a block's requirements are met.
type BlockStatus string

const (
	BlockStatusFulfilled   BlockStatus = "FULFILLED"
	BlockStatusUnfulfilled BlockStatus = "UNFULFILLED"
)

// Valid reports whether the status is known.
func (s BlockStatus) Valid() bool {
	return s == BlockStatusFulfilled || s == BlockStatusUnfulfilled
}

// DefaultBlockName labels blocks inserted by the editor.
const DefaultBlockName = "New Block"

// Block is one node of a requirement tree. A Block exclusively owns its notes,
// courses and children; values reachable from a Block are never mutated in
// place once shared, edits always build new slices along the edited path.
//
// A nil credit pointer means the figure is not tracked, which is distinct from
// zero.
type Block struct {
	Name           string      `json:"name"`
	BlockType      BlockType   `json:"block_type"`
	MinimumCredit  *int        `json:"minimum_credit"`
	ReceivedCredit *int        `json:"received_credit"`
	Status         BlockStatus `json:"status"`
	Notes          []string    `json:"notes"`
	Courses        []Course    `json:"courses"`
	Blocks         []*Block    `json:"blocks"`
}

// Report is the root Block of one generated audit.
type Report = Block

// NewBlock returns a block carrying the editor defaults.
func NewBlock() *Block {
	return &Block{
		Name:      DefaultBlockName,
		BlockType: BlockTypeCustom,
		Status:    BlockStatusUnfulfilled,
		Notes:     []string{},
		Courses:   []Course{},
		Blocks:    []*Block{},
	}
}

// TracksCredits reports whether credit totals are meaningful for the block.
// CUSTOM blocks never show or accept credit figures.
func (b *Block) TracksCredits() bool {
	return b != nil && b.BlockType != BlockTypeCustom
}

// VisibleCredits returns the credit figures to display, both nil for CUSTOM blocks.
func (b *Block) VisibleCredits() (minimum, received *int) {
	if !b.TracksCredits() {
		return nil, nil
	}
	return b.MinimumCredit, b.ReceivedCredit
}

// Display returns a copy of b for rendering, with credit figures cleared on
// every CUSTOM block in the subtree. Stored figures are left untouched.
func (b *Block) Display() *Block {
	if b == nil {
		return nil
	}
	cp := b.clone()
	cp.MinimumCredit, cp.ReceivedCredit = b.VisibleCredits()
	if len(b.Blocks) > 0 {
		cp.Blocks = make([]*Block, len(b.Blocks))
		for i, child := range b.Blocks {
			cp.Blocks[i] = child.Display()
		}
	}
	return cp
}

// clone returns a shallow copy: slices are shared with the original.
func (b *Block) clone() *Block {
	cp := *b
	return &cp
}

// Walk visits b and every descendant depth-first with its path.
func (b *Block) Walk(fn func(path Path, block *Block)) {
	if b == nil {
		return
	}
	walk(b, Path{}, fn)
}

func walk(b *Block, path Path, fn func(Path, *Block)) {
	fn(path, b)
	for i, child := range b.Blocks {
		if child == nil {
			continue
		}
		walk(child, path.Child(i), fn)
	}
}

// IntPtr is a small helper for optional credit figures.
func IntPtr(v int) *int {
	return &v
}
