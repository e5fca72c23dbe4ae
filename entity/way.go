package entity

import (
	"iter"
	"time"

	"github.com/osmflux/osmarena/arena"
	"github.com/osmflux/osmarena/record"
)

// Way fixed-field layout, offsets relative to the item header.
//
//	Offset 8-15:  way ID (int64)
//	Offset 16-23: timestamp, unix seconds (int64)
const (
	wayIDOffset        = record.HeaderSize
	wayTimestampOffset = record.HeaderSize + 8

	// WayFixedSize is a way's initial item size: header plus fixed fields.
	WayFixedSize = record.HeaderSize + 16

	// nodeRefSize is the encoded size of one node reference.
	nodeRefSize = 8
)

// WayBuilder writes one way record into a buffer. Set the fixed fields,
// add node refs and tags, then Finish.
type WayBuilder struct {
	b   *arena.Builder
	buf *arena.Buffer
}

// NewWayBuilder opens a root builder for a way record. The fixed fields
// start out zeroed.
func NewWayBuilder(buf *arena.Buffer) *WayBuilder {
	return &WayBuilder{
		b:   arena.NewBuilder(buf, record.TypeWay, WayFixedSize),
		buf: buf,
	}
}

// SetID sets the way ID.
func (w *WayBuilder) SetID(id int64) *WayBuilder {
	w.b.PutInt64(wayIDOffset, id)
	return w
}

// SetTimestamp sets the way's last-modified timestamp, stored with second
// precision.
func (w *WayBuilder) SetTimestamp(ts time.Time) *WayBuilder {
	w.b.PutInt64(wayTimestampOffset, ts.Unix())
	return w
}

// AddNodeRefs appends a node reference list sub-item holding the given node
// IDs in order. Call at most once; an empty slice adds nothing.
func (w *WayBuilder) AddNodeRefs(refs []int64) {
	if len(refs) == 0 {
		return
	}

	engine := w.buf.Engine()
	c := w.b.NewChild(record.TypeWayNodeList, record.HeaderSize)
	for _, ref := range refs {
		dst := c.ReserveSpace(nodeRefSize)
		engine.PutUint64(dst, uint64(ref)) //nolint:gosec
		c.AddSize(nodeRefSize)
	}
	// 8-byte refs keep the list aligned, so this is a no-op today; it stays
	// for the day the ref encoding changes width.
	c.AddPadding(false)
	c.Close()
}

// AddTags appends a tag list sub-item holding the given tags. Call at most
// once, after any node refs; an empty slice adds nothing.
func (w *WayBuilder) AddTags(tags []Tag) error {
	if len(tags) == 0 {
		return nil
	}

	tl := NewTagListBuilder(w.b)
	for _, tag := range tags {
		if err := tl.AddTag(tag.Key, tag.Value); err != nil {
			tl.Close()

			return err
		}
	}
	tl.Close()

	return nil
}

// Finish pads the way to an aligned boundary, closes the builder and commits
// the buffer, returning the finished item.
func (w *WayBuilder) Finish() arena.Item {
	w.b.AddPadding(true)
	offset := w.b.Offset()
	w.b.Close()
	w.buf.Commit()

	return w.buf.ItemAt(offset)
}

// Discard abandons the way under construction: the builder is closed and
// everything written since the last commit is rolled back.
func (w *WayBuilder) Discard() {
	w.b.Close()
	w.buf.Rollback()
}

// Way is a read view of a committed way item. Accessors decode in place.
type Way struct {
	item arena.Item
}

// AsWay wraps a committed item as a way view. Panics if the item is not a
// way: callers dispatch on Item.Type before wrapping.
func AsWay(it arena.Item) Way {
	if it.Type() != record.TypeWay {
		panic("entity: item is not a way")
	}

	return Way{item: it}
}

// Item returns the underlying arena item.
func (w Way) Item() arena.Item {
	return w.item
}

// ID returns the way ID.
func (w Way) ID() int64 {
	return int64(w.item.Buffer().Engine().Uint64(w.item.Bytes()[wayIDOffset:])) //nolint:gosec
}

// Timestamp returns the way's last-modified time in UTC.
func (w Way) Timestamp() time.Time {
	sec := int64(w.item.Buffer().Engine().Uint64(w.item.Bytes()[wayTimestampOffset:])) //nolint:gosec
	return time.Unix(sec, 0).UTC()
}

// NodeRefs iterates over the way's node IDs in order; ways without a node
// list yield nothing.
func (w Way) NodeRefs() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for sub := range w.item.SubItems(WayFixedSize) {
			if sub.Type() != record.TypeWayNodeList {
				continue
			}

			engine := w.item.Buffer().Engine()
			payload := sub.Payload()
			for off := 0; off+nodeRefSize <= len(payload); off += nodeRefSize {
				if !yield(int64(engine.Uint64(payload[off:]))) { //nolint:gosec
					return
				}
			}

			return
		}
	}
}

// Tags iterates over the way's tags; ways without tags yield nothing.
func (w Way) Tags() iter.Seq[Tag] {
	return tagsOf(w.item, WayFixedSize)
}
