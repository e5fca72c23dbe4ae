package arena

import (
	"iter"

	"github.com/osmflux/osmarena/record"
)

// Item is a read view of one record in a buffer's committed region.
//
// An Item holds only the buffer and the item's offset; every accessor
// resolves through the buffer, so a view stays valid across buffer growth.
// The zero Item is invalid.
type Item struct {
	buf    *Buffer
	offset int
}

// Buffer returns the buffer the item lives in.
func (it Item) Buffer() *Buffer {
	return it.buf
}

// Offset returns the offset of the item's header within the buffer.
func (it Item) Offset() int {
	return it.offset
}

// Type returns the item's type discriminator.
func (it Item) Type() record.ItemType {
	return record.ItemType(it.buf.data[it.offset+record.TypeOffset])
}

// ByteSize returns the item's recorded size in bytes, including the header
// and all sub-items.
func (it Item) ByteSize() int {
	return int(it.buf.itemSizeAt(it.offset))
}

// PaddedSize returns ByteSize rounded up to the alignment boundary, the
// stride a reader adds to Offset to reach the next item.
func (it Item) PaddedSize() int {
	return record.PaddedSize(it.ByteSize())
}

// Removed reports whether the item has been flagged as logically deleted.
func (it Item) Removed() bool {
	return it.buf.data[it.offset+record.FlagsOffset]&record.FlagRemoved != 0
}

// Bytes returns the item's unpadded byte span, header included.
//
// The returned slice aliases buffer storage and is invalidated by buffer
// growth; callers must not hold it across further writes.
func (it Item) Bytes() []byte {
	return it.buf.data[it.offset : it.offset+it.ByteSize()]
}

// Payload returns the bytes following the fixed header, up to the recorded
// size. Same aliasing caveat as Bytes.
func (it Item) Payload() []byte {
	return it.buf.data[it.offset+record.HeaderSize : it.offset+it.ByteSize()]
}

// SubItems iterates over the nested items that start at the given offset
// relative to the item's header. The caller supplies the offset because the
// size of the fixed-field block before the first sub-item is type specific.
//
// Buffer validation only covers the top-level item chain, so a corrupt region
// can carry garbage where sub-items belong. Iteration stops at the first
// sub-header that cannot be valid: a span too short to hold a header, or a
// recorded size below the header size, which would otherwise never advance.
func (it Item) SubItems(from int) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		offset := it.offset + from
		end := it.offset + it.ByteSize()
		for offset+record.HeaderSize <= end {
			sub := Item{buf: it.buf, offset: offset}
			if sub.ByteSize() < record.HeaderSize {
				return
			}
			if !yield(sub) {
				return
			}
			offset += sub.PaddedSize()
		}
	}
}
