package buffer

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnHeap_Grow(t *testing.T) {
	b := New(4)
	assert.Equal(t, 4, b.Capacity())
	assert.Equal(t, 0, b.Len())

	require.NoError(t, b.CopyIn(0, []byte("abcd")))
	b.Grow(5)
	assert.GreaterOrEqual(t, b.Capacity(), 8, "grow at least doubles")
	assert.Equal(t, []byte("abcd"), b.Bytes(), "grow preserves content")

	b.Grow(2)
	assert.GreaterOrEqual(t, b.Capacity(), 8, "grow never shrinks")
}

func TestOnHeap_NegativeCapacity(t *testing.T) {
	b := New(-1)
	assert.Equal(t, 0, b.Capacity())
	require.NoError(t, b.CopyIn(0, []byte("x")))
	assert.Equal(t, []byte("x"), b.Bytes())
}

func TestOnHeap_CopyInOut(t *testing.T) {
	b := New(0)

	require.NoError(t, b.CopyIn(0, []byte("hello")))
	require.NoError(t, b.CopyIn(5, []byte(" world")))
	assert.Equal(t, "hello world", string(b.Bytes()))
	assert.Equal(t, 11, b.Len())

	dst := make([]byte, 5)
	n, err := b.CopyOut(dst, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(dst))

	n, err = b.CopyOut(make([]byte, 10), 6)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 5, n)

	_, err = b.CopyOut(dst, 12)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.ErrorIs(t, b.CopyIn(-1, nil), ErrOutOfBounds)
}

func TestOnHeap_ResetAndSetLen(t *testing.T) {
	b := New(8)
	require.NoError(t, b.CopyIn(0, []byte("abc")))

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 8, b.Capacity())

	b.SetLen(20)
	assert.Equal(t, 20, b.Len())
	assert.GreaterOrEqual(t, b.Capacity(), 20)

	b.SetLen(-5)
	assert.Equal(t, 0, b.Len())
}

func TestOnHeap_Window(t *testing.T) {
	b := New(2)
	w := b.Window(1, 4)
	require.Len(t, w, 4)
	copy(w, "wxyz")
	assert.Equal(t, 5, b.Len())
	assert.Equal(t, "wxyz", string(b.Bytes()[1:]))

	assert.Nil(t, b.Window(-1, 2))
}
