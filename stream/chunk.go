package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/osmflux/osmarena/arena"
	"github.com/osmflux/osmarena/compress"
	"github.com/osmflux/osmarena/endian"
	"github.com/osmflux/osmarena/errs"
	"github.com/osmflux/osmarena/internal/options"
	"github.com/osmflux/osmarena/internal/pool"
)

// ChunkWriter frames committed buffer regions into chunks on an io.Writer.
//
// A ChunkWriter is not safe for concurrent use; give each writing goroutine
// its own writer, or serialize WriteChunk calls externally.
type ChunkWriter struct {
	w           io.Writer
	compression compress.CompressionType
	codec       compress.Codec
}

// ChunkWriterOption configures a ChunkWriter during NewChunkWriter.
type ChunkWriterOption = options.Option[*ChunkWriter]

// WithCompression selects the compression codec for chunk payloads.
// The default is CompressionNone.
func WithCompression(c compress.CompressionType) ChunkWriterOption {
	return options.New(func(cw *ChunkWriter) error {
		if _, err := compress.GetCodec(c); err != nil {
			return err
		}
		cw.compression = c

		return nil
	})
}

// NewChunkWriter creates a ChunkWriter targeting w.
//
// Returns an error only for invalid options.
func NewChunkWriter(w io.Writer, opts ...ChunkWriterOption) (*ChunkWriter, error) {
	cw := &ChunkWriter{
		w:           w,
		compression: compress.CompressionNone,
	}
	if err := options.Apply(cw, opts...); err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(cw.compression)
	if err != nil {
		return nil, err
	}
	cw.codec = codec

	return cw, nil
}

// WriteChunk frames the committed region of buf and writes it as one chunk.
// The uncommitted tail, if any, is not written.
//
// Returns the number of bytes written to the underlying writer, or
// errs.ErrEmptyChunk if buf has no committed data.
func (cw *ChunkWriter) WriteChunk(buf *arena.Buffer) (int, error) {
	payload := buf.Bytes()
	if len(payload) == 0 {
		return 0, errs.ErrEmptyChunk
	}

	checksum := xxhash.Sum64(payload)

	compressed, err := cw.codec.Compress(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to compress chunk payload: %w", err)
	}

	var flags uint16
	if buf.Engine() == endian.GetBigEndianEngine() {
		flags |= FlagBigEndianPayload
	}

	header := ChunkHeader{
		Magic:            MagicNumber,
		Version:          Version,
		Compression:      cw.compression,
		Flags:            flags,
		UncompressedSize: uint32(len(payload)),    //nolint:gosec
		CompressedSize:   uint32(len(compressed)), //nolint:gosec
		Checksum:         checksum,
	}

	// Assemble the frame in a pooled buffer so the underlying writer sees a
	// single write per chunk.
	frame := pool.GetChunkBuffer()
	defer pool.PutChunkBuffer(frame)

	frame.MustWrite(header.Bytes())
	frame.MustWrite(compressed)

	n, err := frame.WriteTo(cw.w)
	if err != nil {
		return int(n), fmt.Errorf("failed to write chunk: %w", err)
	}

	return int(n), nil
}

// ChunkReader reads chunk frames from an io.Reader and reconstructs readable
// buffers from them.
//
// A ChunkReader is not safe for concurrent use.
type ChunkReader struct {
	r io.Reader
}

// NewChunkReader creates a ChunkReader reading from r.
func NewChunkReader(r io.Reader) *ChunkReader {
	return &ChunkReader{r: r}
}

// ReadChunk reads the next chunk frame and returns a buffer whose committed
// region is the verified payload.
//
// Returns io.EOF at a clean end of stream. A truncated header or payload,
// checksum mismatch, unknown codec, or a payload that is not a valid item
// chain all return the corresponding errs sentinel.
func (cr *ChunkReader) ReadChunk() (*arena.Buffer, error) {
	var hb [HeaderSize]byte
	if _, err := io.ReadFull(cr.r, hb[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", errs.ErrInvalidChunkHeader)
		}

		return nil, err
	}

	var header ChunkHeader
	if err := header.Parse(hb[:]); err != nil {
		return nil, err
	}

	compressed := make([]byte, header.CompressedSize)
	if _, err := io.ReadFull(cr.r, compressed); err != nil {
		return nil, fmt.Errorf("%w: %d byte payload: %v", errs.ErrTruncatedChunk, header.CompressedSize, err)
	}

	codec, err := compress.GetCodec(header.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: 0x%02x", errs.ErrUnknownCompression, uint8(header.Compression))
	}

	payload, err := codec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress chunk payload: %w", err)
	}

	if len(payload) != int(header.UncompressedSize) {
		return nil, fmt.Errorf("%w: header says %d bytes, got %d", errs.ErrChunkSizeMismatch, header.UncompressedSize, len(payload))
	}

	if xxhash.Sum64(payload) != header.Checksum {
		return nil, errs.ErrChecksumMismatch
	}

	engineOpt := arena.WithLittleEndian()
	if header.BigEndianPayload() {
		engineOpt = arena.WithBigEndian()
	}

	buf, err := arena.NewBufferFromBytes(payload, engineOpt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidChunkPayload, err)
	}

	return buf, nil
}

// Buffers iterates over all remaining chunks in the stream, stopping at the
// first error. Use ReadChunk directly when errors must be inspected per
// chunk.
func (cr *ChunkReader) Buffers() func(yield func(*arena.Buffer) bool) {
	return func(yield func(*arena.Buffer) bool) {
		for {
			buf, err := cr.ReadChunk()
			if err != nil {
				return
			}
			if !yield(buf) {
				return
			}
		}
	}
}
