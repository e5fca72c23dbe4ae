package arena

import (
	"fmt"
	"iter"

	"github.com/osmflux/osmarena/endian"
	"github.com/osmflux/osmarena/errs"
	"github.com/osmflux/osmarena/internal/options"
	"github.com/osmflux/osmarena/record"
)

// DefaultCapacity is the initial capacity of a Buffer created without
// WithInitialCapacity. One buffer typically holds one pipeline chunk worth of
// records, so the default is sized for tens of thousands of small items.
const DefaultCapacity = 1024 * 64

// Buffer is a growable byte arena holding back-to-back items.
//
// The region below Committed() contains finished records and is readable;
// the region between Committed() and Written() belongs to an in-progress
// record. Committed() is always a multiple of record.Alignment.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	data       []byte // len(data) is the written boundary, cap(data) the capacity
	committed  int
	builders   int // currently open builders, root plus at most one child chain
	engine     endian.EndianEngine
	initialCap int
}

// BufferOption configures a Buffer during NewBuffer.
type BufferOption = options.Option[*Buffer]

// WithInitialCapacity sets the initial capacity of the buffer in bytes.
// The buffer still grows on demand; this only pre-sizes the first allocation.
func WithInitialCapacity(n int) BufferOption {
	return options.New(func(b *Buffer) error {
		if n <= 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidCapacity, n)
		}
		b.initialCap = n

		return nil
	})
}

// WithLittleEndian selects little-endian item headers (the default).
func WithLittleEndian() BufferOption {
	return options.NoError(func(b *Buffer) {
		b.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian selects big-endian item headers.
func WithBigEndian() BufferOption {
	return options.NoError(func(b *Buffer) {
		b.engine = endian.GetBigEndianEngine()
	})
}

// NewBuffer creates an empty Buffer.
//
// Returns an error only for invalid options.
func NewBuffer(opts ...BufferOption) (*Buffer, error) {
	b := &Buffer{
		engine:     endian.GetLittleEndianEngine(),
		initialCap: DefaultCapacity,
	}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	b.data = make([]byte, 0, b.initialCap)

	return b, nil
}

// NewBufferFromBytes creates a Buffer whose committed region is a copy of
// data, which must be a valid committed region: a gap-free chain of items
// whose padded sizes sum to exactly len(data). This is how a region framed by
// package stream, or handed over from another pipeline stage, becomes
// readable again.
//
// Returns errs.ErrInvalidBufferData if data is not such a chain.
func NewBufferFromBytes(data []byte, opts ...BufferOption) (*Buffer, error) {
	b, err := NewBuffer(append([]BufferOption{WithInitialCapacity(max(len(data), 1))}, opts...)...)
	if err != nil {
		return nil, err
	}

	if !record.IsAligned(len(data)) {
		return nil, fmt.Errorf("%w: length %d is not aligned", errs.ErrInvalidBufferData, len(data))
	}

	b.data = append(b.data, data...)
	b.committed = len(data)

	// Walk the item chain to verify it covers the region exactly.
	offset := 0
	for offset < b.committed {
		if b.committed-offset < record.HeaderSize {
			return nil, fmt.Errorf("%w: truncated item header at offset %d", errs.ErrInvalidBufferData, offset)
		}
		size := int(b.itemSizeAt(offset))
		if size < record.HeaderSize {
			return nil, fmt.Errorf("%w: item size %d at offset %d is smaller than the header", errs.ErrInvalidBufferData, size, offset)
		}
		if offset+size > b.committed {
			return nil, fmt.Errorf("%w: item at offset %d overruns the committed region", errs.ErrInvalidBufferData, offset)
		}
		offset += record.PaddedSize(size)
	}

	return b, nil
}

// Engine returns the endian engine used for item headers in this buffer.
func (b *Buffer) Engine() endian.EndianEngine {
	return b.engine
}

// Committed returns the offset up to which records are finished and readable.
func (b *Buffer) Committed() int {
	return b.committed
}

// Written returns the offset up to which storage has been reserved, including
// any in-progress record.
func (b *Buffer) Written() int {
	return len(b.data)
}

// Capacity returns the current capacity in bytes.
func (b *Buffer) Capacity() int {
	return cap(b.data)
}

// IsAligned reports whether the uncommitted tail ends on an aligned boundary,
// i.e. whether Written-Committed is a multiple of record.Alignment.
func (b *Buffer) IsAligned() bool {
	return record.IsAligned(len(b.data) - b.committed)
}

// Bytes returns the committed region.
//
// The returned slice aliases the buffer's storage and is invalidated by any
// call that may grow the buffer; callers must not hold it across further
// writes.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.committed]
}

// ReserveSpace reserves n zeroed bytes at the written boundary and returns
// their offset, growing the buffer if needed.
//
// Growth invalidates every byte slice previously obtained from this buffer;
// only offsets remain valid across a call that may grow.
func (b *Buffer) ReserveSpace(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("arena: reserve of negative size %d", n))
	}

	b.grow(n)
	offset := len(b.data)
	b.data = b.data[:offset+n]
	clear(b.data[offset:])

	return offset
}

// grow ensures capacity for required more bytes. The growth strategy follows
// an amortized policy: fixed-step growth while the buffer is small, then 25%
// of the current capacity.
func (b *Buffer) grow(required int) {
	available := cap(b.data) - len(b.data)
	if available >= required {
		return
	}

	growBy := DefaultCapacity
	if cap(b.data) > 4*DefaultCapacity {
		growBy = cap(b.data) / 4
	}
	if growBy < required {
		growBy = required
	}

	newData := make([]byte, len(b.data), cap(b.data)+growBy)
	copy(newData, b.data)
	b.data = newData
}

// Commit advances the committed boundary past the in-progress record, making
// it visible to readers, and returns the offset where the newly committed
// data begins. Called by the entity builder once an outermost record is
// fully written.
//
// Commit panics if a builder is still open or the tail is not aligned; both
// are programming errors in the calling code.
func (b *Buffer) Commit() int {
	if b.builders != 0 {
		panic(fmt.Sprintf("arena: commit with %d open builder(s)", b.builders))
	}
	if !b.IsAligned() {
		panic(fmt.Sprintf("arena: commit of unaligned data (committed=%d written=%d)", b.committed, len(b.data)))
	}

	prev := b.committed
	b.committed = len(b.data)

	return prev
}

// Rollback discards everything written since the last Commit. Panics if a
// builder is still open.
func (b *Buffer) Rollback() {
	if b.builders != 0 {
		panic(fmt.Sprintf("arena: rollback with %d open builder(s)", b.builders))
	}

	b.data = b.data[:b.committed]
}

// Reset empties the buffer for reuse, retaining its storage. Panics if a
// builder is still open.
func (b *Buffer) Reset() {
	if b.builders != 0 {
		panic(fmt.Sprintf("arena: reset with %d open builder(s)", b.builders))
	}

	b.data = b.data[:0]
	b.committed = 0
}

// AddItem copies a finished item's full padded byte span to the tail of the
// reserved region and returns the offset of the copy. This is the mechanism
// for embedding a separately built sub-record.
//
// The item must belong to a committed region (its size is frozen) and the
// tail must be aligned so the copy starts on an item boundary.
func (b *Buffer) AddItem(it Item) int {
	if !b.IsAligned() {
		panic("arena: add item to unaligned buffer")
	}
	if it.offset+it.PaddedSize() > it.buf.committed {
		panic("arena: add of an uncommitted item")
	}

	// Capture the source span before reserving: if it lives in this same
	// buffer, growth swaps the backing array but the captured slice still
	// reads the old, intact bytes.
	src := it.buf.data[it.offset : it.offset+it.PaddedSize()]
	offset := b.ReserveSpace(len(src))
	copy(b.data[offset:], src)

	return offset
}

// ItemAt returns a view of the item whose header starts at offset in the
// committed region.
func (b *Buffer) ItemAt(offset int) Item {
	if !record.IsAligned(offset) {
		panic(fmt.Sprintf("arena: item offset %d is not aligned", offset))
	}
	if offset < 0 || offset+record.HeaderSize > b.committed {
		panic(fmt.Sprintf("arena: item offset %d outside committed region [0,%d)", offset, b.committed))
	}

	return Item{buf: b, offset: offset}
}

// Items iterates over all items in the committed region in buffer order,
// including items flagged as removed.
func (b *Buffer) Items() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		offset := 0
		for offset < b.committed {
			it := Item{buf: b, offset: offset}
			if !yield(it) {
				return
			}
			offset += it.PaddedSize()
		}
	}
}

// MarkRemoved flags an item in the committed region as logically deleted.
// The bytes stay in place; readers filter on Item.Removed.
func (b *Buffer) MarkRemoved(it Item) {
	if it.buf != b {
		panic("arena: item belongs to a different buffer")
	}

	b.data[it.offset+record.FlagsOffset] |= record.FlagRemoved
}

// setItemHeaderAt writes a fresh item header at the absolute offset.
func (b *Buffer) setItemHeaderAt(offset int, typ record.ItemType, size uint32) {
	b.engine.PutUint32(b.data[offset+record.SizeOffset:], size)
	b.data[offset+record.TypeOffset] = byte(typ)
	b.data[offset+record.FlagsOffset] = 0
}

// itemSizeAt reads the size field of the item header at the absolute offset.
func (b *Buffer) itemSizeAt(offset int) uint32 {
	return b.engine.Uint32(b.data[offset+record.SizeOffset:])
}

// addItemSizeAt patches the size field of the item header at the absolute
// offset in place. The item must still be in the uncommitted tail: sizes are
// frozen at commit time.
func (b *Buffer) addItemSizeAt(offset int, delta int) {
	if offset < b.committed {
		panic(fmt.Sprintf("arena: size change on committed item at offset %d", offset))
	}

	b.engine.PutUint32(b.data[offset+record.SizeOffset:], b.itemSizeAt(offset)+uint32(delta)) //nolint:gosec
}

// incrementBuilders records a builder opening. A root builder requires no
// other builder to be open; a child builder requires exactly one, its parent.
func (b *Buffer) incrementBuilders(root bool) {
	if root && b.builders != 0 {
		panic("arena: only one root builder can be open at any time")
	}
	if !root && b.builders != 1 {
		panic("arena: only one child builder can be open at any time")
	}

	b.builders++
}

func (b *Buffer) decrementBuilders() {
	if b.builders == 0 {
		panic("arena: builder count underflow")
	}

	b.builders--
}
