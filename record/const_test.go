package record

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaddedSize(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{0, 0},
		{1, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{15, 16},
		{16, 16},
		{21, 24},
		{4096, 4096},
		{4097, 4104},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, PaddedSize(tt.size), "PaddedSize(%d)", tt.size)
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{0, 0},
		{1, 7},
		{7, 1},
		{8, 0},
		{9, 7},
		{12, 4},
		{21, 3},
		{24, 0},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Padding(tt.size), "Padding(%d)", tt.size)
		require.Equal(t, PaddedSize(tt.size), tt.size+Padding(tt.size))
	}
}

func TestIsAligned(t *testing.T) {
	require.True(t, IsAligned(0))
	require.True(t, IsAligned(8))
	require.True(t, IsAligned(4096))
	require.False(t, IsAligned(1))
	require.False(t, IsAligned(7))
	require.False(t, IsAligned(12))
}

func TestItemType(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		require.Equal(t, "Node", TypeNode.String())
		require.Equal(t, "Way", TypeWay.String())
		require.Equal(t, "Relation", TypeRelation.String())
		require.Equal(t, "TagList", TypeTagList.String())
		require.Equal(t, "Undefined", TypeUndefined.String())
		require.Equal(t, "Unknown", ItemType(0xFF).String())
	})

	t.Run("IsEntity", func(t *testing.T) {
		require.True(t, TypeNode.IsEntity())
		require.True(t, TypeWay.IsEntity())
		require.True(t, TypeRelation.IsEntity())
		require.False(t, TypeTagList.IsEntity())
		require.False(t, TypeWayNodeList.IsEntity())
		require.False(t, TypeUndefined.IsEntity())
	})
}
