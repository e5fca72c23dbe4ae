// Package stream frames committed arena regions into self-describing chunks
// for hand-off between pipeline stages.
//
// A chunk is a fixed 24-byte header followed by the (optionally compressed)
// committed bytes of one buffer. The header records the payload's
// uncompressed size, compressed size and xxHash64 checksum, so a reader can
// verify integrity before reconstructing a readable buffer. Chunks are
// written to any io.Writer; which storage or transport sits behind it is the
// caller's concern.
package stream

import (
	"github.com/osmflux/osmarena/compress"
	"github.com/osmflux/osmarena/endian"
	"github.com/osmflux/osmarena/errs"
)

// Chunk header layout. The header itself is always little-endian; the flags
// record the byte order of the item headers inside the payload.
//
//	Offset 0-3:   magic number (uint32)
//	Offset 4:     format version (uint8)
//	Offset 5:     compression type (uint8)
//	Offset 6-7:   flags (uint16)
//	Offset 8-11:  uncompressed payload size (uint32)
//	Offset 12-15: compressed payload size (uint32)
//	Offset 16-23: xxHash64 of the uncompressed payload (uint64)
const (
	// MagicNumber identifies a chunk frame ("OSAR" in little-endian byte order).
	MagicNumber uint32 = 0x5241534F

	// Version is the current chunk format version.
	Version uint8 = 1

	// HeaderSize is the fixed chunk header size in bytes.
	HeaderSize = 24

	// FlagBigEndianPayload marks payloads whose item headers are big-endian.
	FlagBigEndianPayload uint16 = 0x0001

	// MaxPayloadSize caps the uncompressed payload a reader will accept,
	// guarding against corrupted headers demanding absurd allocations.
	MaxPayloadSize = 1024 * 1024 * 1024 // 1GiB

	// MaxCompressedSize caps the compressed payload. Incompressible data can
	// exceed its input by the block codec's worst-case overhead (LZ4 is the
	// largest at size/255 plus a small constant), never by more.
	MaxCompressedSize = MaxPayloadSize + MaxPayloadSize/255 + 64
)

// ChunkHeader is the fixed-size header at the start of every chunk frame.
type ChunkHeader struct {
	Magic            uint32
	Version          uint8
	Compression      compress.CompressionType
	Flags            uint16
	UncompressedSize uint32
	CompressedSize   uint32
	Checksum         uint64
}

// headerEngine is the byte order of the chunk header itself, independent of
// the payload byte order recorded in Flags.
var headerEngine = endian.GetLittleEndianEngine()

// BigEndianPayload reports whether the payload's item headers are big-endian.
func (h *ChunkHeader) BigEndianPayload() bool {
	return h.Flags&FlagBigEndianPayload != 0
}

// Bytes serializes the header into a new 24-byte slice.
func (h *ChunkHeader) Bytes() []byte {
	var b [HeaderSize]byte // stack allocation, it's faster than heap allocation
	headerEngine.PutUint32(b[0:4], h.Magic)
	b[4] = h.Version
	b[5] = byte(h.Compression)
	headerEngine.PutUint16(b[6:8], h.Flags)
	headerEngine.PutUint32(b[8:12], h.UncompressedSize)
	headerEngine.PutUint32(b[12:16], h.CompressedSize)
	headerEngine.PutUint64(b[16:24], h.Checksum)

	return b[:]
}

// Parse parses the header from a byte slice and validates magic, version and
// size limits.
//
// Returns:
//   - error: ErrInvalidChunkHeader, ErrInvalidChunkMagic, ErrUnknownChunkVersion
//     or ErrChunkSizeMismatch
func (h *ChunkHeader) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return errs.ErrInvalidChunkHeader
	}

	h.Magic = headerEngine.Uint32(data[0:4])
	h.Version = data[4]
	h.Compression = compress.CompressionType(data[5])
	h.Flags = headerEngine.Uint16(data[6:8])
	h.UncompressedSize = headerEngine.Uint32(data[8:12])
	h.CompressedSize = headerEngine.Uint32(data[12:16])
	h.Checksum = headerEngine.Uint64(data[16:24])

	if h.Magic != MagicNumber {
		return errs.ErrInvalidChunkMagic
	}
	if h.Version != Version {
		return errs.ErrUnknownChunkVersion
	}
	if h.UncompressedSize > MaxPayloadSize {
		return errs.ErrChunkSizeMismatch
	}
	if h.CompressedSize > MaxCompressedSize {
		return errs.ErrChunkSizeMismatch
	}

	return nil
}
