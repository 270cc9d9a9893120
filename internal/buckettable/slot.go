package buckettable

// Layout describes the fixed bit widths of a slot's fields and their
// offsets within the slot, in the stable order tag, size, clock, scope
// (spec §4.2). The order is a design choice fixed for the lifetime of a
// table.
type Layout struct {
	TagBits   int
	SizeBits  int
	ClockBits int
	ScopeBits int

	tagOff   int
	sizeOff  int
	clockOff int
	scopeOff int
	slotBits int
}

// NewLayout computes field offsets for the given widths.
func NewLayout(tagBits, sizeBits, clockBits, scopeBits int) Layout {
	l := Layout{TagBits: tagBits, SizeBits: sizeBits, ClockBits: clockBits, ScopeBits: scopeBits}
	l.tagOff = 0
	l.sizeOff = l.tagOff + tagBits
	l.clockOff = l.sizeOff + sizeBits
	l.scopeOff = l.clockOff + clockBits
	l.slotBits = l.scopeOff + scopeBits
	return l
}

// SlotBits returns the total width of one slot.
func (l Layout) SlotBits() int { return l.slotBits }

// Slot is the decoded, in-memory view of a table entry (spec §3).
type Slot struct {
	Tag   uint64 // 0 means empty
	Size  uint64 // raw field value; decode with the configured SizeEncoding
	Clock uint64 // saturating counter; 0 means aged out
	Scope uint64 // only meaningful when Layout.ScopeBits > 0
}

// Empty reports whether the slot holds no entry.
func (s Slot) Empty() bool { return s.Tag == 0 }
