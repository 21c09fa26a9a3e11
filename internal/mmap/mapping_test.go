package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAnon(t *testing.T) {
	m, err := MapAnon(1 << 16)
	require.NoError(t, err)
	defer m.Close()

	data := m.Bytes()
	require.Len(t, data, 1<<16)
	assert.Equal(t, 1<<16, m.Size())

	// Anonymous memory starts zeroed and is writable.
	assert.Equal(t, byte(0), data[0])
	assert.Equal(t, byte(0), data[len(data)-1])
	data[0], data[len(data)-1] = 0xAB, 0xCD
	assert.Equal(t, byte(0xAB), m.Bytes()[0])
	assert.Equal(t, byte(0xCD), m.Bytes()[len(data)-1])
}

func TestMapAnon_InvalidSize(t *testing.T) {
	_, err := MapAnon(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = MapAnon(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMapping_Advise(t *testing.T) {
	m, err := MapAnon(1 << 16)
	require.NoError(t, err)
	defer m.Close()

	assert.NoError(t, m.Advise(0, 1<<16, AccessRandom))
	assert.NoError(t, m.Advise(0, 1<<16, AccessWillNeed))
	assert.NoError(t, m.Advise(0, 0, AccessDefault))

	assert.ErrorIs(t, m.Advise(-1, 10, AccessDefault), ErrOutOfBounds)
	assert.ErrorIs(t, m.Advise(1<<16-1, 2, AccessDefault), ErrOutOfBounds)
}

func TestMapping_Close(t *testing.T) {
	m, err := MapAnon(4096)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(0, 1, AccessDefault), ErrClosed)

	// Idempotent
	assert.NoError(t, m.Close())
}
