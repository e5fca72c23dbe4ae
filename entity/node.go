package entity

import (
	"iter"
	"time"

	"github.com/osmflux/osmarena/arena"
	"github.com/osmflux/osmarena/record"
)

// Node fixed-field layout, offsets relative to the item header.
//
//	Offset 8-15:  node ID (int64)
//	Offset 16-23: timestamp, unix seconds (int64)
//	Offset 24-27: longitude, 1e-7 degree fixed point (int32)
//	Offset 28-31: latitude, 1e-7 degree fixed point (int32)
const (
	nodeIDOffset        = record.HeaderSize
	nodeTimestampOffset = record.HeaderSize + 8
	nodeLonOffset       = record.HeaderSize + 16
	nodeLatOffset       = record.HeaderSize + 20

	// NodeFixedSize is a node's initial item size: header plus fixed fields.
	NodeFixedSize = record.HeaderSize + 24
)

// NodeBuilder writes one node record into a buffer. Set the fixed fields in
// any order, add tags last, then Finish.
type NodeBuilder struct {
	b   *arena.Builder
	buf *arena.Buffer
}

// NewNodeBuilder opens a root builder for a node record. The fixed fields
// start out zeroed.
func NewNodeBuilder(buf *arena.Buffer) *NodeBuilder {
	return &NodeBuilder{
		b:   arena.NewBuilder(buf, record.TypeNode, NodeFixedSize),
		buf: buf,
	}
}

// SetID sets the node ID.
func (n *NodeBuilder) SetID(id int64) *NodeBuilder {
	n.b.PutInt64(nodeIDOffset, id)
	return n
}

// SetTimestamp sets the node's last-modified timestamp, stored with second
// precision.
func (n *NodeBuilder) SetTimestamp(ts time.Time) *NodeBuilder {
	n.b.PutInt64(nodeTimestampOffset, ts.Unix())
	return n
}

// SetLocation sets the node's coordinates.
func (n *NodeBuilder) SetLocation(loc Location) *NodeBuilder {
	n.b.PutInt32(nodeLonOffset, loc.Lon)
	n.b.PutInt32(nodeLatOffset, loc.Lat)
	return n
}

// AddTags appends a tag list sub-item holding the given tags. Call at most
// once, after the fixed fields; an empty slice adds nothing.
func (n *NodeBuilder) AddTags(tags []Tag) error {
	if len(tags) == 0 {
		return nil
	}

	tl := NewTagListBuilder(n.b)
	for _, tag := range tags {
		if err := tl.AddTag(tag.Key, tag.Value); err != nil {
			tl.Close()

			return err
		}
	}
	tl.Close()

	return nil
}

// Finish pads the node to an aligned boundary, closes the builder and
// commits the buffer, returning the finished item.
func (n *NodeBuilder) Finish() arena.Item {
	n.b.AddPadding(true)
	offset := n.b.Offset()
	n.b.Close()
	n.buf.Commit()

	return n.buf.ItemAt(offset)
}

// Discard abandons the node under construction: the builder is closed and
// everything written since the last commit is rolled back.
func (n *NodeBuilder) Discard() {
	n.b.Close()
	n.buf.Rollback()
}

// Node is a read view of a committed node item. Accessors decode in place.
type Node struct {
	item arena.Item
}

// AsNode wraps a committed item as a node view. Panics if the item is not a
// node: callers dispatch on Item.Type before wrapping.
func AsNode(it arena.Item) Node {
	if it.Type() != record.TypeNode {
		panic("entity: item is not a node")
	}

	return Node{item: it}
}

// Item returns the underlying arena item.
func (n Node) Item() arena.Item {
	return n.item
}

// ID returns the node ID.
func (n Node) ID() int64 {
	return int64(n.item.Buffer().Engine().Uint64(n.item.Bytes()[nodeIDOffset:])) //nolint:gosec
}

// Timestamp returns the node's last-modified time in UTC.
func (n Node) Timestamp() time.Time {
	sec := int64(n.item.Buffer().Engine().Uint64(n.item.Bytes()[nodeTimestampOffset:])) //nolint:gosec
	return time.Unix(sec, 0).UTC()
}

// Location returns the node's coordinates.
func (n Node) Location() Location {
	b := n.item.Bytes()
	engine := n.item.Buffer().Engine()

	return Location{
		Lon: int32(engine.Uint32(b[nodeLonOffset:])), //nolint:gosec
		Lat: int32(engine.Uint32(b[nodeLatOffset:])), //nolint:gosec
	}
}

// Tags iterates over the node's tags; nodes without tags yield nothing.
func (n Node) Tags() iter.Seq[Tag] {
	return tagsOf(n.item, NodeFixedSize)
}
