package entity

import (
	"bytes"
	"fmt"
	"iter"
	"strings"

	"github.com/osmflux/osmarena/arena"
	"github.com/osmflux/osmarena/errs"
	"github.com/osmflux/osmarena/record"
)

// MaxTagLength is the maximum byte length of a tag key or value.
const MaxTagLength = 65535

// Tag is one key/value pair attached to an entity.
type Tag struct {
	Key   string
	Value string
}

// TagListBuilder writes a tag list sub-item under an entity builder. Each
// tag is stored as a NUL-terminated key followed by a NUL-terminated value.
//
// The tag list's recorded size stays tight (unpadded); the padding written
// on Close is attributed to the enclosing entity, which readers of the tag
// layout rely on.
type TagListBuilder struct {
	b *arena.Builder
}

// NewTagListBuilder opens a tag list as a child of parent. Close it before
// writing to parent again.
func NewTagListBuilder(parent *arena.Builder) *TagListBuilder {
	return &TagListBuilder{
		b: parent.NewChild(record.TypeTagList, record.HeaderSize),
	}
}

// AddTag appends one key/value pair.
//
// Keys must be non-empty; keys and values must be free of NUL bytes (they
// would corrupt the terminator-based layout) and no longer than
// MaxTagLength.
func (t *TagListBuilder) AddTag(key, value string) error {
	if err := validateTagText("key", key); err != nil {
		return err
	}
	if key == "" {
		return errs.ErrInvalidTagKey
	}
	if err := validateTagText("value", value); err != nil {
		return err
	}

	n := t.b.AppendString(key)
	n += t.b.AppendString(value)
	t.b.AddSize(n)

	return nil
}

// Close pads the buffer to the next aligned boundary, attributing the
// padding to the parent entity rather than the tag list itself, and closes
// the underlying builder.
func (t *TagListBuilder) Close() {
	t.b.AddPadding(false)
	t.b.Close()
}

func validateTagText(what, s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%w: %s contains a NUL byte", errs.ErrInvalidTagKey, what)
	}
	if len(s) > MaxTagLength {
		return fmt.Errorf("%w: %s length %d exceeds %d", errs.ErrTagTooLong, what, len(s), MaxTagLength)
	}

	return nil
}

// BuildTagList builds a standalone tag list as its own committed record in
// buf and returns its item. The item can later be spliced into an entity
// under construction with Builder.AddItem — the path for tag lists that are
// assembled once and shared by many records.
func BuildTagList(buf *arena.Buffer, tags []Tag) (arena.Item, error) {
	b := arena.NewBuilder(buf, record.TypeTagList, record.HeaderSize)
	for _, tag := range tags {
		if err := validateTagText("key", tag.Key); err != nil {
			b.Close()
			buf.Rollback()

			return arena.Item{}, err
		}
		if tag.Key == "" {
			b.Close()
			buf.Rollback()

			return arena.Item{}, errs.ErrInvalidTagKey
		}
		if err := validateTagText("value", tag.Value); err != nil {
			b.Close()
			buf.Rollback()

			return arena.Item{}, err
		}

		n := b.AppendString(tag.Key)
		n += b.AppendString(tag.Value)
		b.AddSize(n)
	}

	// Pad the buffer without inflating the tag list's own size: readers rely
	// on the tight size, and the root item has no parent to attribute the
	// padding to. Commit still advances past the padding bytes.
	b.AddPadding(false)
	offset := b.Offset()
	b.Close()
	buf.Commit()

	return buf.ItemAt(offset), nil
}

// decodeTags iterates over the NUL-terminated key/value pairs in a tag list
// payload. Malformed trailing bytes (no terminator) end the iteration.
func decodeTags(payload []byte) iter.Seq[Tag] {
	return func(yield func(Tag) bool) {
		for len(payload) > 0 {
			key, rest, ok := cutZero(payload)
			if !ok {
				return
			}
			value, rest, ok := cutZero(rest)
			if !ok {
				return
			}
			if !yield(Tag{Key: string(key), Value: string(value)}) {
				return
			}
			payload = rest
		}
	}
}

func cutZero(data []byte) (before, after []byte, ok bool) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return nil, nil, false
	}

	return data[:i], data[i+1:], true
}

// tagsOf scans an entity item's sub-items for a tag list and returns its
// decoded tags; entities without a tag list yield an empty sequence.
func tagsOf(it arena.Item, fixedSize int) iter.Seq[Tag] {
	return func(yield func(Tag) bool) {
		for sub := range it.SubItems(fixedSize) {
			if sub.Type() != record.TypeTagList {
				continue
			}
			for tag := range decodeTags(sub.Payload()) {
				if !yield(tag) {
					return
				}
			}

			return
		}
	}
}
