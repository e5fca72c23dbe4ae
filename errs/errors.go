// Package errs defines the sentinel errors returned by osmarena packages.
//
// Callers can match them with errors.Is even when they are wrapped with
// additional context via fmt.Errorf and %w.
package errs

import "errors"

// Buffer configuration errors.
var (
	// ErrInvalidCapacity is returned when a buffer option specifies a
	// non-positive initial capacity.
	ErrInvalidCapacity = errors.New("invalid initial capacity")
	// ErrInvalidBufferData is returned when bytes handed to NewBufferFromBytes
	// are not a valid committed region.
	ErrInvalidBufferData = errors.New("invalid buffer data")
)

// Entity builder errors.
var (
	// ErrInvalidTagKey is returned when a tag key is empty.
	ErrInvalidTagKey = errors.New("invalid tag key")
	// ErrTagTooLong is returned when a tag key or value exceeds the maximum length.
	ErrTagTooLong = errors.New("tag exceeds maximum length")
)

// Chunk stream errors.
var (
	// ErrInvalidChunkHeader is returned when a chunk header is truncated.
	ErrInvalidChunkHeader = errors.New("invalid chunk header size")
	// ErrInvalidChunkMagic is returned when a chunk does not start with the chunk magic number.
	ErrInvalidChunkMagic = errors.New("invalid chunk magic number")
	// ErrUnknownChunkVersion is returned when a chunk uses an unsupported format version.
	ErrUnknownChunkVersion = errors.New("unknown chunk format version")
	// ErrUnknownCompression is returned when a chunk names a compression codec this build does not know.
	ErrUnknownCompression = errors.New("unknown compression type")
	// ErrChunkSizeMismatch is returned when the decompressed payload size does not match the header.
	ErrChunkSizeMismatch = errors.New("chunk payload size mismatch")
	// ErrChecksumMismatch is returned when the payload checksum does not match the header.
	ErrChecksumMismatch = errors.New("chunk checksum mismatch")
	// ErrInvalidChunkPayload is returned when a chunk payload is not a valid committed region.
	ErrInvalidChunkPayload = errors.New("invalid chunk payload")
	// ErrTruncatedChunk is returned when a chunk payload is shorter than its header claims.
	ErrTruncatedChunk = errors.New("truncated chunk payload")
	// ErrEmptyChunk is returned when writing a chunk from a buffer with no committed data.
	ErrEmptyChunk = errors.New("no committed data to write")
)
