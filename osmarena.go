// Package osmarena provides the binary record construction layer of a
// geographic-data processing pipeline: variable-length, self-describing map
// entity records built into contiguous growable arenas, traversable by
// readers without per-record allocation or parsing.
//
// # Core Concepts
//
//   - Buffer (package arena): a growable byte arena holding back-to-back
//     records, split into a committed region (finished, readable) and an
//     in-progress tail
//   - Item: the fixed 8-byte header (type plus size) every record starts
//     with, letting readers skip whole records, sub-trees included, using
//     only the size field
//   - Builder (package arena): a stack-disciplined nested writer that keeps
//     every enclosing record's size correct as sub-collections grow
//   - Entity builders (package entity): node and way writers composing the
//     Builder contract into concrete record layouts
//   - Chunks (package stream): framed, checksummed, optionally compressed
//     hand-off of committed regions between pipeline stages
//
// # Basic Usage
//
// Building entities into a buffer:
//
//	buf, _ := osmarena.NewBuffer()
//
//	nb := osmarena.NewNodeBuilder(buf)
//	nb.SetID(4711)
//	nb.SetLocation(entity.LocationFromDegrees(13.3777, 52.5162))
//	_ = nb.AddTags([]entity.Tag{{Key: "railway", Value: "station"}})
//	nb.Finish()
//
//	wb := osmarena.NewWayBuilder(buf)
//	wb.SetID(42)
//	wb.AddNodeRefs([]int64{4711, 4712, 4713})
//	wb.Finish()
//
// Reading them back, zero-copy:
//
//	for it := range buf.Items() {
//	    switch it.Type() {
//	    case record.TypeNode:
//	        node := entity.AsNode(it)
//	        fmt.Println(node.ID(), node.Location().LatDegrees())
//	    case record.TypeWay:
//	        way := entity.AsWay(it)
//	        fmt.Println(way.ID())
//	    }
//	}
//
// Handing a finished buffer to the next pipeline stage:
//
//	cw, _ := osmarena.NewCompressedChunkWriter(w)
//	_, err := cw.WriteChunk(buf)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the arena,
// entity and stream packages, simplifying the most common use cases. For
// fine-grained control (custom record types, manual builder nesting,
// specific codecs) use those packages directly.
package osmarena

import (
	"io"

	"github.com/osmflux/osmarena/arena"
	"github.com/osmflux/osmarena/compress"
	"github.com/osmflux/osmarena/entity"
	"github.com/osmflux/osmarena/stream"
)

// NewBuffer creates an empty arena buffer.
//
// Available options:
//   - arena.WithInitialCapacity(n)
//   - arena.WithLittleEndian() / arena.WithBigEndian()
func NewBuffer(opts ...arena.BufferOption) (*arena.Buffer, error) {
	return arena.NewBuffer(opts...)
}

// NewNodeBuilder opens a builder for one node record in buf.
func NewNodeBuilder(buf *arena.Buffer) *entity.NodeBuilder {
	return entity.NewNodeBuilder(buf)
}

// NewWayBuilder opens a builder for one way record in buf.
func NewWayBuilder(buf *arena.Buffer) *entity.WayBuilder {
	return entity.NewWayBuilder(buf)
}

// NewChunkWriter creates a chunk writer with no compression, suited to
// hand-off between stages inside one process.
func NewChunkWriter(w io.Writer, opts ...stream.ChunkWriterOption) (*stream.ChunkWriter, error) {
	return stream.NewChunkWriter(w, opts...)
}

// NewCompressedChunkWriter creates a chunk writer with Zstd compression,
// the recommended setting when chunks cross a process or machine boundary.
func NewCompressedChunkWriter(w io.Writer) (*stream.ChunkWriter, error) {
	return stream.NewChunkWriter(w, stream.WithCompression(compress.CompressionZstd))
}

// NewChunkReader creates a reader for a stream of chunk frames.
func NewChunkReader(r io.Reader) *stream.ChunkReader {
	return stream.NewChunkReader(r)
}
