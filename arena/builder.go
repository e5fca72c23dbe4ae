package arena

import (
	"fmt"

	"github.com/osmflux/osmarena/record"
)

// Builder writes one item into a buffer: its fixed fields, its trailing
// variable data, and, through nested child builders, its sub-collections.
//
// A Builder is bound to the buffer position captured at open time and to its
// place in the parent chain; it must not be copied, and it is invalid after
// Close. Every size increase recorded at a builder is also recorded at every
// ancestor, so each enclosing item's size field always equals the span of
// itself plus all descendants; that is what lets a reader skip an entire
// subtree using only the outermost size field.
//
// Misuse (a second root while one is open, a second child under the same
// parent, writes after Close) is a programming error and panics.
type Builder struct {
	buf    *Buffer
	parent *Builder
	// itemOffset is relative to the buffer's committed boundary, which
	// cannot move while a builder is open.
	itemOffset int
	childOpen  bool
	closed     bool
}

// NewBuilder opens a root builder for a new item of the given type.
//
// size is the initial item size in bytes: the fixed header plus the item's
// fixed-layout fields, record.HeaderSize at minimum. The space is reserved
// and zeroed immediately and the header written with the initial size, so an
// opened-but-never-grown item is already fully accounted for.
func NewBuilder(buf *Buffer, typ record.ItemType, size int) *Builder {
	return newBuilder(buf, nil, typ, size)
}

// NewChild opens a nested builder for a sub-item of the current item. The
// child's initial size is added to this builder and every ancestor right
// away. Only one child may be open under a parent at any time; Close the
// child before writing to this builder again.
func (b *Builder) NewChild(typ record.ItemType, size int) *Builder {
	b.mustBeOpen()
	if b.childOpen {
		panic("arena: only one child builder can be open at any time")
	}

	child := newBuilder(b.buf, b, typ, size)
	b.childOpen = true

	return child
}

func newBuilder(buf *Buffer, parent *Builder, typ record.ItemType, size int) *Builder {
	if size < record.HeaderSize {
		panic(fmt.Sprintf("arena: item size %d is smaller than the %d-byte header", size, record.HeaderSize))
	}
	if uint64(size) > record.MaxItemSize {
		panic(fmt.Sprintf("arena: item size %d exceeds the maximum", size))
	}

	buf.incrementBuilders(parent == nil)

	b := &Builder{
		buf:        buf,
		parent:     parent,
		itemOffset: buf.Written() - buf.committed,
	}

	offset := buf.ReserveSpace(size)
	buf.setItemHeaderAt(offset, typ, uint32(size)) //nolint:gosec
	if parent != nil {
		parent.AddSize(size)
	}

	return b
}

// Buffer returns the buffer this builder writes into.
func (b *Builder) Buffer() *Buffer {
	return b.buf
}

// Offset returns the absolute offset of the item's header in the buffer.
// After the outermost builder is closed and the buffer committed, this is
// the offset to hand to Buffer.ItemAt.
func (b *Builder) Offset() int {
	return b.buf.committed + b.itemOffset
}

// Size returns the item's current recorded size.
func (b *Builder) Size() int {
	return int(b.buf.itemSizeAt(b.Offset()))
}

// AddSize increments the item's recorded size and, recursively, every
// ancestor's. Append operations do not call this themselves: the caller
// decides which written bytes count toward the record and which are padding.
func (b *Builder) AddSize(delta int) {
	b.mustBeOpen()
	b.buf.addItemSizeAt(b.Offset(), delta)
	if b.parent != nil {
		b.parent.AddSize(delta)
	}
}

// ReserveSpace reserves n zeroed bytes at the written boundary and returns
// them for immediate writing.
//
// The returned slice aliases buffer storage and is invalidated by the next
// reservation or append on this buffer; never hold it across one.
func (b *Builder) ReserveSpace(n int) []byte {
	b.mustBeOpen()
	offset := b.buf.ReserveSpace(n)

	return b.buf.data[offset : offset+n]
}

// ReserveFixed reserves a fixed-layout field block. Unlike ReserveSpace it
// requires the buffer to be aligned, which holds whenever the preceding
// fixed blocks are multiples of record.Alignment. Same aliasing caveat as
// ReserveSpace.
func (b *Builder) ReserveFixed(n int) []byte {
	b.mustBeOpen()
	if !b.buf.IsAligned() {
		panic("arena: fixed-field reservation on unaligned buffer")
	}

	return b.ReserveSpace(n)
}

// Append copies data into freshly reserved space and returns the number of
// bytes written. It does not update size bookkeeping; call AddSize for the
// bytes that count toward the record.
func (b *Builder) Append(data []byte) int {
	dst := b.ReserveSpace(len(data))
	copy(dst, data)

	return len(data)
}

// AppendWithZero copies data into freshly reserved space followed by a
// single zero byte and returns len(data)+1. Like Append it does not update
// size bookkeeping.
func (b *Builder) AppendWithZero(data []byte) int {
	dst := b.ReserveSpace(len(data) + 1)
	copy(dst, data)
	dst[len(data)] = 0

	return len(data) + 1
}

// AppendString copies s into freshly reserved space followed by a
// terminating NUL and returns len(s)+1. Like Append it does not update size
// bookkeeping.
func (b *Builder) AppendString(s string) int {
	dst := b.ReserveSpace(len(s) + 1)
	copy(dst, s)
	dst[len(s)] = 0

	return len(s) + 1
}

// AddPadding writes the zero bytes needed to bring the buffer's uncommitted
// tail up to the next aligned boundary, so the next record header starts
// aligned.
//
// If self is true the padding is added to this item's own size (and so to
// every ancestor's); this is the final step of an outermost item, which
// must itself end on an aligned boundary. If self is false the padding is
// added only to the parent's size: the sub-item's recorded size stays tight,
// but the buffer space it consumed is still accounted upward. On a root
// builder with self false the bytes are consumed without being attributed to
// any item; readers still skip them because commit strides are padded. Which
// policy a call site needs depends on whether readers of that item type
// expect a tight or padded size; both are part of the layout contract.
func (b *Builder) AddPadding(self bool) {
	b.mustBeOpen()

	padding := record.Padding(b.buf.Written() - b.buf.committed)
	if padding == 0 {
		return
	}

	// ReserveSpace hands out zeroed bytes, so reserving is writing.
	b.buf.ReserveSpace(padding)

	if self {
		b.AddSize(padding)
	} else if b.parent != nil {
		b.parent.AddSize(padding)
		if b.parent.Size()%record.Alignment != 0 {
			panic(fmt.Sprintf("arena: parent size %d not aligned after padding", b.parent.Size()))
		}
	}
}

// AddItem splices a separately built, finished item into the current one:
// the item's full padded span is copied to the buffer tail and this item and
// all ancestors grow by the padded size in one step.
func (b *Builder) AddItem(it Item) {
	b.mustBeOpen()
	b.buf.AddItem(it)
	b.AddSize(it.PaddedSize())
}

// PutUint64 patches a uint64 field at the given offset relative to the
// item's header. Field patching goes through the buffer on every call, so it
// is safe across buffer growth; use this instead of caching the slice
// returned by ReserveFixed.
func (b *Builder) PutUint64(fieldOffset int, v uint64) {
	b.checkField(fieldOffset, 8)
	b.buf.engine.PutUint64(b.buf.data[b.Offset()+fieldOffset:], v)
}

// PutUint32 patches a uint32 field at the given offset relative to the
// item's header.
func (b *Builder) PutUint32(fieldOffset int, v uint32) {
	b.checkField(fieldOffset, 4)
	b.buf.engine.PutUint32(b.buf.data[b.Offset()+fieldOffset:], v)
}

// PutInt64 patches an int64 field at the given offset relative to the item's
// header.
func (b *Builder) PutInt64(fieldOffset int, v int64) {
	b.PutUint64(fieldOffset, uint64(v)) //nolint:gosec
}

// PutInt32 patches an int32 field at the given offset relative to the item's
// header.
func (b *Builder) PutInt32(fieldOffset int, v int32) {
	b.PutUint32(fieldOffset, uint32(v)) //nolint:gosec
}

func (b *Builder) checkField(fieldOffset, width int) {
	b.mustBeOpen()
	if fieldOffset < record.HeaderSize || fieldOffset+width > b.Size() {
		panic(fmt.Sprintf("arena: field at offset %d width %d outside item of size %d", fieldOffset, width, b.Size()))
	}
}

// Close finishes the builder. It releases the buffer's open-builder slot and
// the parent's child slot; it does not commit anything. Committing the
// whole outermost record is the caller's responsibility via Buffer.Commit.
//
// Close panics if a child builder is still open or if the builder was
// already closed. A closed builder cannot be reused.
func (b *Builder) Close() {
	if b.closed {
		panic("arena: builder closed twice")
	}
	if b.childOpen {
		panic("arena: close with an open child builder")
	}

	b.buf.decrementBuilders()
	if b.parent != nil {
		b.parent.childOpen = false
	}
	b.closed = true
}

func (b *Builder) mustBeOpen() {
	if b.closed {
		panic("arena: use of closed builder")
	}
}
