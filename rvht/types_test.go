package rvht

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixLen(t *testing.T) {
	require.Equal(t, uint32(0), PrefixLen(0))
	require.Equal(t, uint32(1), PrefixLen(0b1))
	require.Equal(t, uint32(3), PrefixLen(0b111))
	require.Equal(t, uint32(32), PrefixLen(^Mask(0)))
}

func TestIsPrefixMask(t *testing.T) {
	require.True(t, IsPrefixMask(0))
	require.True(t, IsPrefixMask(0b1))
	require.True(t, IsPrefixMask(0b111))
	require.True(t, IsPrefixMask(^Mask(0)))

	require.False(t, IsPrefixMask(0b101))
	require.False(t, IsPrefixMask(0b10))
	require.False(t, IsPrefixMask(0b1110))
}

func TestMaskForPrefixLen(t *testing.T) {
	require.Equal(t, Mask(0), MaskForPrefixLen(0))
	require.Equal(t, Mask(0b111), MaskForPrefixLen(3))
	require.Equal(t, Mask(0b11_1111), MaskForPrefixLen(6))
	require.Equal(t, ^Mask(0), MaskForPrefixLen(32))
	require.Equal(t, ^Mask(0), MaskForPrefixLen(40))
}

func TestMatches(t *testing.T) {
	require.True(t, Matches(0b1101, 0b0101, 0b0111))
	require.True(t, Matches(0b0101, 0b1101, 0b0111))

	require.False(t, Matches(0b1111, 0b1101, 0b0111))
	require.False(t, Matches(0b1101, 0b1111, 0b0111))
}
