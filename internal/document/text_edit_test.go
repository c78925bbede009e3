package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUTF16CharOffsetToByteOffset_ASCII(t *testing.T) {
	offset, err := utf16CharOffsetToByteOffset("hello world", 5)
	require.NoError(t, err)
	require.Equal(t, 5, offset)
}

func TestUTF16CharOffsetToByteOffset_Emoji(t *testing.T) {
	// "a😀b": 'a' (1 code unit), '😀' (2 code units, 4 bytes), 'b'.
	line := "a\U0001F600b"
	offset, err := utf16CharOffsetToByteOffset(line, 3)
	require.NoError(t, err)
	require.Equal(t, 5, offset) // past 'a' (1 byte) + emoji (4 bytes)
}

func TestPositionToOffset(t *testing.T) {
	text := "line one\nline two\nline three"
	offset, err := PositionToOffset(text, 1, 5)
	require.NoError(t, err)
	require.Equal(t, len("line one\n")+5, offset)
}

func TestOffsetToPosition(t *testing.T) {
	text := "line one\nline two\nline three"
	line, char, err := OffsetToPosition(text, len("line one\n")+5)
	require.NoError(t, err)
	require.Equal(t, 1, line)
	require.Equal(t, 5, char)
}

func TestByteOffsetToUTF16Offset_Emoji(t *testing.T) {
	line := "a\U0001F600b"
	offset, err := byteOffsetToUTF16Offset(line, 5)
	require.NoError(t, err)
	require.Equal(t, 3, offset)
}

func TestRoundTripConversion(t *testing.T) {
	text := "héllo\nwörld\n日本語"
	for _, off := range []int{0, 3, 7, len(text)} {
		line, char, err := OffsetToPosition(text, off)
		require.NoError(t, err)
		back, err := PositionToOffset(text, line, char)
		require.NoError(t, err)
		require.Equal(t, off, back)
	}
}
