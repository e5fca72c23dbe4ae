package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osmflux/osmarena/arena"
	"github.com/osmflux/osmarena/compress"
	"github.com/osmflux/osmarena/entity"
	"github.com/osmflux/osmarena/errs"
)

func buildTestBuffer(t *testing.T, opts ...arena.BufferOption) *arena.Buffer {
	t.Helper()

	buf, err := arena.NewBuffer(opts...)
	require.NoError(t, err)

	nb := entity.NewNodeBuilder(buf)
	nb.SetID(4711).SetLocation(entity.LocationFromDegrees(13.3777, 52.5162))
	require.NoError(t, nb.AddTags([]entity.Tag{{Key: "railway", Value: "station"}}))
	nb.Finish()

	wb := entity.NewWayBuilder(buf)
	wb.SetID(42)
	wb.AddNodeRefs([]int64{4711, 4712})
	wb.Finish()

	return buf
}

func TestChunkRoundTrip(t *testing.T) {
	codecs := []compress.CompressionType{
		compress.CompressionNone,
		compress.CompressionZstd,
		compress.CompressionS2,
		compress.CompressionLZ4,
	}

	for _, c := range codecs {
		t.Run(c.String(), func(t *testing.T) {
			src := buildTestBuffer(t)

			var frame bytes.Buffer
			cw, err := NewChunkWriter(&frame, WithCompression(c))
			require.NoError(t, err)

			n, err := cw.WriteChunk(src)
			require.NoError(t, err)
			require.Equal(t, frame.Len(), n)
			require.GreaterOrEqual(t, n, HeaderSize)

			buf, err := NewChunkReader(&frame).ReadChunk()
			require.NoError(t, err)
			require.Equal(t, src.Bytes(), buf.Bytes())

			node := entity.AsNode(buf.ItemAt(0))
			require.Equal(t, int64(4711), node.ID())

			var count int
			for range buf.Items() {
				count++
			}
			require.Equal(t, 2, count)
		})
	}
}

func TestChunkWriter_EmptyBuffer(t *testing.T) {
	buf, err := arena.NewBuffer()
	require.NoError(t, err)

	var frame bytes.Buffer
	cw, err := NewChunkWriter(&frame)
	require.NoError(t, err)

	_, err = cw.WriteChunk(buf)
	require.ErrorIs(t, err, errs.ErrEmptyChunk)
	require.Zero(t, frame.Len())
}

func TestChunkWriter_SkipsUncommittedTail(t *testing.T) {
	buf := buildTestBuffer(t)
	committed := buf.Committed()
	buf.ReserveSpace(16) // in-progress data past the committed boundary

	var frame bytes.Buffer
	cw, err := NewChunkWriter(&frame)
	require.NoError(t, err)
	_, err = cw.WriteChunk(buf)
	require.NoError(t, err)

	out, err := NewChunkReader(&frame).ReadChunk()
	require.NoError(t, err)
	require.Equal(t, committed, out.Committed())
}

func TestChunkWriter_InvalidCompression(t *testing.T) {
	_, err := NewChunkWriter(io.Discard, WithCompression(compress.CompressionType(0x7F)))
	require.Error(t, err)
}

func TestChunkReader_MultipleChunks(t *testing.T) {
	var stream bytes.Buffer
	cw, err := NewChunkWriter(&stream, WithCompression(compress.CompressionS2))
	require.NoError(t, err)

	first := buildTestBuffer(t)
	_, err = cw.WriteChunk(first)
	require.NoError(t, err)

	second, err := arena.NewBuffer()
	require.NoError(t, err)
	entity.NewNodeBuilder(second).SetID(99).Finish()
	_, err = cw.WriteChunk(second)
	require.NoError(t, err)

	cr := NewChunkReader(&stream)

	var buffers []*arena.Buffer
	for buf := range cr.Buffers() {
		buffers = append(buffers, buf)
	}
	require.Len(t, buffers, 2)
	require.Equal(t, first.Bytes(), buffers[0].Bytes())
	require.Equal(t, second.Bytes(), buffers[1].Bytes())

	_, err = cr.ReadChunk()
	require.ErrorIs(t, err, io.EOF)
}

func TestChunkReader_BigEndianPayload(t *testing.T) {
	src := buildTestBuffer(t, arena.WithBigEndian())

	var frame bytes.Buffer
	cw, err := NewChunkWriter(&frame)
	require.NoError(t, err)
	_, err = cw.WriteChunk(src)
	require.NoError(t, err)

	var header ChunkHeader
	require.NoError(t, header.Parse(frame.Bytes()))
	require.True(t, header.BigEndianPayload())

	buf, err := NewChunkReader(&frame).ReadChunk()
	require.NoError(t, err)
	require.Equal(t, src.Engine(), buf.Engine())
	require.Equal(t, src.Bytes(), buf.Bytes())
}

func writeValidFrame(t *testing.T) []byte {
	t.Helper()

	var frame bytes.Buffer
	cw, err := NewChunkWriter(&frame)
	require.NoError(t, err)
	_, err = cw.WriteChunk(buildTestBuffer(t))
	require.NoError(t, err)

	return frame.Bytes()
}

func TestChunkReader_Corruption(t *testing.T) {
	t.Run("Truncated header", func(t *testing.T) {
		frame := writeValidFrame(t)
		_, err := NewChunkReader(bytes.NewReader(frame[:HeaderSize-4])).ReadChunk()
		require.ErrorIs(t, err, errs.ErrInvalidChunkHeader)
	})

	t.Run("Truncated payload", func(t *testing.T) {
		frame := writeValidFrame(t)
		_, err := NewChunkReader(bytes.NewReader(frame[:len(frame)-8])).ReadChunk()
		require.ErrorIs(t, err, errs.ErrTruncatedChunk)
	})

	t.Run("Bad magic", func(t *testing.T) {
		frame := writeValidFrame(t)
		frame[0] ^= 0xFF
		_, err := NewChunkReader(bytes.NewReader(frame)).ReadChunk()
		require.ErrorIs(t, err, errs.ErrInvalidChunkMagic)
	})

	t.Run("Unknown version", func(t *testing.T) {
		frame := writeValidFrame(t)
		frame[4] = Version + 1
		_, err := NewChunkReader(bytes.NewReader(frame)).ReadChunk()
		require.ErrorIs(t, err, errs.ErrUnknownChunkVersion)
	})

	t.Run("Unknown compression", func(t *testing.T) {
		frame := writeValidFrame(t)
		frame[5] = 0x7F
		_, err := NewChunkReader(bytes.NewReader(frame)).ReadChunk()
		require.ErrorIs(t, err, errs.ErrUnknownCompression)
	})

	t.Run("Flipped payload byte", func(t *testing.T) {
		frame := writeValidFrame(t)
		frame[len(frame)-1] ^= 0xFF
		_, err := NewChunkReader(bytes.NewReader(frame)).ReadChunk()
		require.ErrorIs(t, err, errs.ErrChecksumMismatch)
	})

	t.Run("Forged checksum over invalid payload", func(t *testing.T) {
		// A frame whose checksum is valid but whose payload is not an item
		// chain must still be rejected.
		buf, err := arena.NewBuffer()
		require.NoError(t, err)
		buf.ReserveSpace(16) // zeroed bytes, item size 0 < header size
		buf.Commit()

		var frame bytes.Buffer
		cw, err := NewChunkWriter(&frame)
		require.NoError(t, err)
		_, err = cw.WriteChunk(buf)
		require.NoError(t, err)

		_, err = NewChunkReader(&frame).ReadChunk()
		require.ErrorIs(t, err, errs.ErrInvalidChunkPayload)
	})
}

func TestChunkHeader_Parse(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		in := ChunkHeader{
			Magic:            MagicNumber,
			Version:          Version,
			Compression:      compress.CompressionZstd,
			Flags:            FlagBigEndianPayload,
			UncompressedSize: 4096,
			CompressedSize:   512,
			Checksum:         0xDEADBEEF12345678,
		}

		var out ChunkHeader
		require.NoError(t, out.Parse(in.Bytes()))
		require.Equal(t, in, out)
	})

	t.Run("Short input", func(t *testing.T) {
		var h ChunkHeader
		require.ErrorIs(t, h.Parse(make([]byte, HeaderSize-1)), errs.ErrInvalidChunkHeader)
	})

	t.Run("Oversized payload", func(t *testing.T) {
		in := ChunkHeader{
			Magic:            MagicNumber,
			Version:          Version,
			UncompressedSize: MaxPayloadSize + 1,
		}

		var h ChunkHeader
		require.ErrorIs(t, h.Parse(in.Bytes()), errs.ErrChunkSizeMismatch)
	})

	t.Run("Oversized compressed payload", func(t *testing.T) {
		// A corrupt compressed-size field must be rejected at parse time,
		// before the reader sizes a buffer from it.
		in := ChunkHeader{
			Magic:          MagicNumber,
			Version:        Version,
			CompressedSize: MaxCompressedSize + 1,
		}

		var h ChunkHeader
		require.ErrorIs(t, h.Parse(in.Bytes()), errs.ErrChunkSizeMismatch)
	})
}
