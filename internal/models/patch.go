package models

// Optional distinguishes "leave untouched" (Set=false) from an explicit value,
// including an explicit nil for pointer fields.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some wraps v as an explicitly provided value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// BlockPatch lists the fields to replace on a Block. Unset fields keep their
// current value.
type BlockPatch struct {
	Name           Optional[string]
	BlockType      Optional[BlockType]
	Status         Optional[BlockStatus]
	MinimumCredit  Optional[*int]
	ReceivedCredit Optional[*int]
	Notes          Optional[[]string]
	Courses        Optional[[]Course]
	Blocks         Optional[[]*Block]
}

// Empty reports whether the patch replaces nothing.
func (p BlockPatch) Empty() bool {
	return !p.Name.Set && !p.BlockType.Set && !p.Status.Set &&
		!p.MinimumCredit.Set && !p.ReceivedCredit.Set &&
		!p.Notes.Set && !p.Courses.Set && !p.Blocks.Set
}

// WithoutCredits drops both credit fields from the patch.
func (p BlockPatch) WithoutCredits() BlockPatch {
	p.MinimumCredit = Optional[*int]{}
	p.ReceivedCredit = Optional[*int]{}
	return p
}

// Apply returns a shallow copy of b with the patch merged in. b is not modified.
func (p BlockPatch) Apply(b *Block) *Block {
	out := b.clone()
	if p.Name.Set {
		out.Name = p.Name.Value
	}
	if p.BlockType.Set {
		out.BlockType = p.BlockType.Value
	}
	if p.Status.Set {
		out.Status = p.Status.Value
	}
	if p.MinimumCredit.Set {
		out.MinimumCredit = copyIntPtr(p.MinimumCredit.Value)
	}
	if p.ReceivedCredit.Set {
		out.ReceivedCredit = copyIntPtr(p.ReceivedCredit.Value)
	}
	if p.Notes.Set {
		out.Notes = p.Notes.Value
	}
	if p.Courses.Set {
		out.Courses = p.Courses.Value
	}
	if p.Blocks.Set {
		out.Blocks = p.Blocks.Value
	}
	return out
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
