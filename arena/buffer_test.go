package arena

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osmflux/osmarena/endian"
	"github.com/osmflux/osmarena/errs"
	"github.com/osmflux/osmarena/record"
)

func TestNewBuffer(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		buf, err := NewBuffer()
		require.NoError(t, err)
		require.Equal(t, 0, buf.Committed())
		require.Equal(t, 0, buf.Written())
		require.Equal(t, DefaultCapacity, buf.Capacity())
		require.Equal(t, endian.GetLittleEndianEngine(), buf.Engine())
		require.True(t, buf.IsAligned())
	})

	t.Run("With initial capacity", func(t *testing.T) {
		buf, err := NewBuffer(WithInitialCapacity(128))
		require.NoError(t, err)
		require.Equal(t, 128, buf.Capacity())
	})

	t.Run("Invalid capacity", func(t *testing.T) {
		_, err := NewBuffer(WithInitialCapacity(0))
		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrInvalidCapacity)

		_, err = NewBuffer(WithInitialCapacity(-1))
		require.ErrorIs(t, err, errs.ErrInvalidCapacity)
	})

	t.Run("Big endian", func(t *testing.T) {
		buf, err := NewBuffer(WithBigEndian())
		require.NoError(t, err)
		require.Equal(t, endian.GetBigEndianEngine(), buf.Engine())
	})
}

func TestBuffer_ReserveSpace(t *testing.T) {
	buf, err := NewBuffer(WithInitialCapacity(64))
	require.NoError(t, err)

	off := buf.ReserveSpace(16)
	require.Equal(t, 0, off)
	require.Equal(t, 16, buf.Written())
	require.Equal(t, 0, buf.Committed())

	off = buf.ReserveSpace(8)
	require.Equal(t, 16, off)
	require.Equal(t, 24, buf.Written())

	t.Run("Reserved bytes are zeroed", func(t *testing.T) {
		for _, b := range buf.data[:buf.Written()] {
			require.Zero(t, b)
		}
	})

	t.Run("Negative size panics", func(t *testing.T) {
		require.Panics(t, func() { buf.ReserveSpace(-1) })
	})
}

func TestBuffer_GrowthPreservesBytes(t *testing.T) {
	buf, err := NewBuffer(WithInitialCapacity(32))
	require.NoError(t, err)

	// Fill the initial capacity with a recognizable pattern.
	off := buf.ReserveSpace(32)
	for i := range 32 {
		buf.data[off+i] = byte(i + 1)
	}

	// Force several reallocations.
	for range 8 {
		buf.ReserveSpace(DefaultCapacity)
	}

	for i := range 32 {
		require.Equal(t, byte(i+1), buf.data[i], "byte at offset %d changed across growth", i)
	}
}

func TestBuffer_Commit(t *testing.T) {
	t.Run("Advances committed and returns previous boundary", func(t *testing.T) {
		buf, err := NewBuffer()
		require.NoError(t, err)

		buf.ReserveSpace(16)
		prev := buf.Commit()
		require.Equal(t, 0, prev)
		require.Equal(t, 16, buf.Committed())

		buf.ReserveSpace(8)
		prev = buf.Commit()
		require.Equal(t, 16, prev)
		require.Equal(t, 24, buf.Committed())
	})

	t.Run("Unaligned tail panics", func(t *testing.T) {
		buf, err := NewBuffer()
		require.NoError(t, err)

		buf.ReserveSpace(5)
		require.Panics(t, func() { buf.Commit() })
	})

	t.Run("Open builder panics", func(t *testing.T) {
		buf, err := NewBuffer()
		require.NoError(t, err)

		b := NewBuilder(buf, record.TypeNode, record.HeaderSize)
		require.Panics(t, func() { buf.Commit() })
		b.Close()
		require.NotPanics(t, func() { buf.Commit() })
	})
}

func TestBuffer_Rollback(t *testing.T) {
	buf, err := NewBuffer()
	require.NoError(t, err)

	buf.ReserveSpace(16)
	buf.Commit()
	buf.ReserveSpace(24)
	require.Equal(t, 40, buf.Written())

	buf.Rollback()
	require.Equal(t, 16, buf.Written())
	require.Equal(t, 16, buf.Committed())
}

func TestBuffer_Reset(t *testing.T) {
	buf, err := NewBuffer()
	require.NoError(t, err)

	buf.ReserveSpace(16)
	buf.Commit()
	capBefore := buf.Capacity()

	buf.Reset()
	require.Equal(t, 0, buf.Written())
	require.Equal(t, 0, buf.Committed())
	require.Equal(t, capBefore, buf.Capacity(), "reset should retain storage")
}

// buildItem commits one record holding payload. Padding goes unattributed so
// the recorded size stays tight and Payload returns exactly payload.
func buildItem(t *testing.T, buf *Buffer, typ record.ItemType, payload []byte) Item {
	t.Helper()

	b := NewBuilder(buf, typ, record.HeaderSize)
	b.AddSize(b.Append(payload))
	b.AddPadding(false)
	offset := b.Offset()
	b.Close()
	buf.Commit()

	return buf.ItemAt(offset)
}

func TestBuffer_AddItem(t *testing.T) {
	src, err := NewBuffer()
	require.NoError(t, err)
	it := buildItem(t, src, record.TypeTagList, []byte("name\x00Oslo\x00"))

	dst, err := NewBuffer()
	require.NoError(t, err)

	offset := dst.AddItem(it)
	require.Equal(t, 0, offset)
	require.Equal(t, it.PaddedSize(), dst.Written())

	dst.Commit()
	copied := dst.ItemAt(offset)
	require.Equal(t, it.ByteSize(), copied.ByteSize())
	require.Equal(t, it.Type(), copied.Type())
	require.Equal(t, it.Bytes(), copied.Bytes())

	t.Run("Uncommitted item panics", func(t *testing.T) {
		open, err := NewBuffer()
		require.NoError(t, err)
		b := NewBuilder(open, record.TypeTagList, record.HeaderSize)
		uncommitted := Item{buf: open, offset: 0}
		require.Panics(t, func() { dst.AddItem(uncommitted) })
		b.Close()
	})
}

func TestBuffer_Items(t *testing.T) {
	buf, err := NewBuffer()
	require.NoError(t, err)

	payloads := [][]byte{
		[]byte("first"),
		[]byte("second payload"),
		[]byte("x"),
	}
	for _, p := range payloads {
		buildItem(t, buf, record.TypeTagList, p)
	}

	var got [][]byte
	for it := range buf.Items() {
		require.True(t, record.IsAligned(it.Offset()))
		require.Equal(t, record.HeaderSize+len(it.Payload()), it.ByteSize(),
			"unattributed padding must not count toward the recorded size")
		got = append(got, append([]byte(nil), it.Payload()...))
	}

	require.Len(t, got, len(payloads))
	for i, p := range payloads {
		require.Equal(t, p, got[i])
	}
}

func TestBuffer_MarkRemoved(t *testing.T) {
	buf, err := NewBuffer()
	require.NoError(t, err)

	first := buildItem(t, buf, record.TypeTagList, []byte("keep"))
	second := buildItem(t, buf, record.TypeTagList, []byte("drop"))

	require.False(t, first.Removed())
	buf.MarkRemoved(second)
	require.True(t, second.Removed())
	require.False(t, first.Removed())

	var kept int
	for it := range buf.Items() {
		if !it.Removed() {
			kept++
		}
	}
	require.Equal(t, 1, kept)
}

func TestBuffer_ItemAt(t *testing.T) {
	buf, err := NewBuffer()
	require.NoError(t, err)
	buildItem(t, buf, record.TypeNode, []byte("payload"))

	t.Run("Unaligned offset panics", func(t *testing.T) {
		require.Panics(t, func() { buf.ItemAt(3) })
	})

	t.Run("Offset beyond committed panics", func(t *testing.T) {
		require.Panics(t, func() { buf.ItemAt(buf.Committed()) })
	})
}

func TestNewBufferFromBytes(t *testing.T) {
	t.Run("Valid region round trip", func(t *testing.T) {
		src, err := NewBuffer()
		require.NoError(t, err)
		buildItem(t, src, record.TypeTagList, []byte("amenity\x00cafe\x00"))
		buildItem(t, src, record.TypeNode, []byte("fixed"))

		buf, err := NewBufferFromBytes(src.Bytes())
		require.NoError(t, err)
		require.Equal(t, src.Committed(), buf.Committed())
		require.Equal(t, src.Bytes(), buf.Bytes())

		var count int
		for range buf.Items() {
			count++
		}
		require.Equal(t, 2, count)
	})

	t.Run("Copies the input", func(t *testing.T) {
		src, err := NewBuffer()
		require.NoError(t, err)
		buildItem(t, src, record.TypeTagList, []byte("data"))

		data := append([]byte(nil), src.Bytes()...)
		buf, err := NewBufferFromBytes(data)
		require.NoError(t, err)

		data[0] = 0xFF
		require.NotEqual(t, data[0], buf.Bytes()[0])
	})

	t.Run("Unaligned length", func(t *testing.T) {
		_, err := NewBufferFromBytes(make([]byte, 13))
		require.ErrorIs(t, err, errs.ErrInvalidBufferData)
	})

	t.Run("Item size smaller than header", func(t *testing.T) {
		data := make([]byte, 16)
		endian.GetLittleEndianEngine().PutUint32(data, 4)
		_, err := NewBufferFromBytes(data)
		require.ErrorIs(t, err, errs.ErrInvalidBufferData)
	})

	t.Run("Item overruns region", func(t *testing.T) {
		data := make([]byte, 16)
		endian.GetLittleEndianEngine().PutUint32(data, 64)
		_, err := NewBufferFromBytes(data)
		require.ErrorIs(t, err, errs.ErrInvalidBufferData)
	})

	t.Run("Empty region", func(t *testing.T) {
		buf, err := NewBufferFromBytes(nil)
		require.NoError(t, err)
		require.Equal(t, 0, buf.Committed())
	})
}
