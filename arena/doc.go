// Package arena implements the growable byte arena that map-entity records
// are built into, and the nested builder used to write them.
//
// A Buffer owns a contiguous byte region divided by two boundaries: committed
// (finished records, visible to readers) and written (reserved bytes,
// including an in-progress record). Every record starts with a fixed item
// header (see package record) on an 8-byte boundary, so readers traverse the
// committed region by adding each item's padded size to its offset, with no
// payload parsing and no per-record allocation.
//
// A Builder is a short-lived, stack-disciplined writer bound to one
// in-progress item. It reserves space for fixed fields, appends variable
// data, and opens nested child builders for sub-collections such as tag
// lists. Size growth recorded at any level is propagated to every ancestor,
// so an enclosing item's size field always covers itself plus all
// descendants. At most one builder chain may be open on a buffer at a time;
// violations are programming errors and panic immediately.
//
// Buffers grow by reallocation. Growth preserves all bytes at offsets below
// the written boundary but invalidates any previously obtained byte slice;
// only offsets remain valid. All positions in this package are therefore
// buffer-relative offsets resolved through the Buffer on each access.
//
// Basic usage:
//
//	buf, _ := arena.NewBuffer()
//	b := arena.NewBuilder(buf, record.TypeNode, 32)
//	b.PutInt64(8, nodeID)
//	tags := b.NewChild(record.TypeTagList, record.HeaderSize)
//	n := tags.AppendString("highway")
//	n += tags.AppendString("primary")
//	tags.AddSize(n)
//	tags.AddPadding(false)
//	tags.Close()
//	b.AddPadding(true)
//	b.Close()
//	buf.Commit()
//
// Neither Buffer nor Builder is safe for concurrent use. Parallel
// construction requires one Buffer per worker; finished buffers can be merged
// through AddItem or framed independently by package stream.
package arena
