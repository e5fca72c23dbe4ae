package record

import "math"

// Item header layout. Every item in a buffer starts with this fixed 8-byte
// header; the recorded byte size includes the header itself.
//
//	Offset 0-3: byte size of the item including header and sub-items (uint32)
//	Offset 4:   item type discriminator (uint8)
//	Offset 5:   item flags (uint8)
//	Offset 6-7: reserved, must be zero (uint16)
const (
	HeaderSize = 8 // fixed item header size in bytes

	SizeOffset  = 0 // byte offset of the size field within the header
	TypeOffset  = 4 // byte offset of the type field within the header
	FlagsOffset = 5 // byte offset of the flags field within the header

	// Alignment is the boundary every item starts on. Readers advance by
	// PaddedSize, so the committed region is a gap-free sequence of
	// 8-byte-aligned items.
	Alignment = 8

	// MaxItemSize is the largest recorded item size, the range of the
	// uint32 size field.
	MaxItemSize = math.MaxUint32
)

// Item flags (offset 5 in the header).
const (
	// FlagRemoved marks an item as logically deleted. Readers skip flagged
	// items; the bytes stay in place until the buffer is discarded.
	FlagRemoved = 0x01
)

// PaddedSize rounds size up to the next multiple of Alignment. It is the
// stride a reader adds to an item's offset to reach the next item.
func PaddedSize(size int) int {
	return (size + Alignment - 1) &^ (Alignment - 1)
}

// Padding returns the number of zero bytes needed after size bytes to reach
// the next aligned boundary. The result is in [0, Alignment).
func Padding(size int) int {
	return (Alignment - size%Alignment) % Alignment
}

// IsAligned reports whether offset is a multiple of Alignment.
func IsAligned(offset int) bool {
	return offset%Alignment == 0
}
