package serializer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nativemem/buffer"
)

func roundTrip[V any](t *testing.T, s Serializer[V], v V) V {
	t.Helper()
	data, err := s.Serialize(v)
	require.NoError(t, err)

	buf := buffer.New(0)
	require.NoError(t, buf.CopyIn(0, data))

	got, err := s.Deserialize(buf)
	require.NoError(t, err)
	return got
}

type user struct {
	ID    uint64            `json:"id"`
	Name  string            `json:"name"`
	Tags  []string          `json:"tags"`
	Attrs map[string]string `json:"attrs"`
}

func TestBytes(t *testing.T) {
	s := Bytes()
	in := []byte{0, 1, 2, 255}
	out := roundTrip(t, s, in)
	assert.Equal(t, in, out)

	t.Run("result does not alias scratch", func(t *testing.T) {
		buf := buffer.New(0)
		require.NoError(t, buf.CopyIn(0, []byte("abc")))
		got, err := s.Deserialize(buf)
		require.NoError(t, err)
		require.NoError(t, buf.CopyIn(0, []byte("xyz")))
		assert.Equal(t, []byte("abc"), got)
	})
}

func TestString(t *testing.T) {
	assert.Equal(t, "héllo wörld", roundTrip(t, String(), "héllo wörld"))
	assert.Equal(t, "", roundTrip(t, String(), ""))
}

func TestJSON(t *testing.T) {
	in := user{
		ID:    42,
		Name:  "alice",
		Tags:  []string{"a", "b"},
		Attrs: map[string]string{"team": "storage"},
	}
	assert.Equal(t, in, roundTrip(t, JSON[user](), in))

	t.Run("decode error", func(t *testing.T) {
		buf := buffer.New(0)
		require.NoError(t, buf.CopyIn(0, []byte("{not json")))
		_, err := JSON[user]().Deserialize(buf)
		assert.Error(t, err)
	})
}

func TestFuncs(t *testing.T) {
	s := Funcs(
		func(v int) ([]byte, error) { return []byte(strconv.Itoa(v)), nil },
		func(b []byte) (int, error) { return strconv.Atoi(string(b)) },
	)
	assert.Equal(t, 12345, roundTrip(t, s, 12345))

	errBoom := errors.New("boom")
	failing := Funcs(
		func(int) ([]byte, error) { return nil, errBoom },
		func([]byte) (int, error) { return 0, errBoom },
	)
	_, err := failing.Serialize(1)
	assert.ErrorIs(t, err, errBoom)
}

func TestCompressed(t *testing.T) {
	compressible := strings.Repeat("native memory page ", 200)
	random := make([]byte, 512)
	for i := range random {
		random[i] = byte(i*7919 + i>>3)
	}

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			s := Compressed(String(), c)
			assert.Equal(t, compressible, roundTrip(t, s, compressible))
			assert.Equal(t, "", roundTrip(t, s, ""))

			b := Compressed(Bytes(), c)
			assert.Equal(t, random, roundTrip(t, b, random))

			data, err := s.Serialize(compressible)
			require.NoError(t, err)
			if c == CompressionNone {
				assert.Len(t, data, blockHeaderSize+len(compressible))
			} else {
				assert.Less(t, len(data), len(compressible)/2, "repetitive payload should shrink")
			}
		})
	}
}

func TestCompressed_Corrupt(t *testing.T) {
	s := Compressed(String(), CompressionLZ4)

	decode := func(data []byte) error {
		buf := buffer.New(0)
		require.NoError(t, buf.CopyIn(0, data))
		_, err := s.Deserialize(buf)
		return err
	}

	assert.ErrorIs(t, decode([]byte{1, 2, 3}), ErrCorruptBlock)

	header := make([]byte, blockHeaderSize)
	binary.LittleEndian.PutUint32(header[0:], 100)
	binary.LittleEndian.PutUint32(header[4:], 50)
	assert.ErrorIs(t, decode(header), ErrCorruptBlock, "truncated compressed body")

	binary.LittleEndian.PutUint32(header[4:], 0)
	assert.ErrorIs(t, decode(header), ErrCorruptBlock, "truncated raw body")

	bogus := append(bytes.Clone(header), bytes.Repeat([]byte{0xFF}, 16)...)
	binary.LittleEndian.PutUint32(bogus[0:], 64)
	binary.LittleEndian.PutUint32(bogus[4:], 16)
	assert.ErrorIs(t, decode(bogus), ErrCorruptBlock)
}

func TestBlockLen(t *testing.T) {
	n, err := blockLen(math.MaxUint32)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), n)

	_, err = blockLen(math.MaxUint32 + 1)
	assert.ErrorIs(t, err, ErrBlockTooLarge)
}

func TestCompression_String(t *testing.T) {
	assert.Equal(t, "lz4", CompressionLZ4.String())
	assert.Equal(t, "compression(9)", Compression(9).String())

	_, err := Compressed(String(), Compression(9)).Serialize("x")
	assert.Error(t, err)
}

func BenchmarkCompressed_Serialize(b *testing.B) {
	payload := strings.Repeat("off-heap value ", 1000)
	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		b.Run(c.String(), func(b *testing.B) {
			s := Compressed(String(), c)
			b.ReportAllocs()
			b.SetBytes(int64(len(payload)))
			for b.Loop() {
				if _, err := s.Serialize(payload); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
