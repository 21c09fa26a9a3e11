package serializer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/nativemem/buffer"
)

// Compression selects the block compression algorithm.
type Compression uint8

const (
	// CompressionNone stores the inner payload with a header but uncompressed.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast, good for hot data).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio, slower).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

var (
	// ErrCorruptBlock is returned when a stored block cannot be decoded.
	ErrCorruptBlock = errors.New("serializer: corrupt compressed block")
	// ErrBlockTooLarge is returned when a payload does not fit the block
	// header's 32-bit size fields.
	ErrBlockTooLarge = errors.New("serializer: payload too large for a compressed block")
)

// A block is an 8-byte little-endian header followed by the body:
//
//	rawLen    uint32  size of the inner payload
//	storedLen uint32  size of the compressed body, 0 if the body is raw
const blockHeaderSize = 8

// maxBlockLen is the largest payload a block header can describe.
const maxBlockLen = math.MaxUint32

func blockLen(n int64) (uint32, error) {
	if n > maxBlockLen {
		return 0, fmt.Errorf("%w: %d bytes", ErrBlockTooLarge, n)
	}
	return uint32(n), nil
}

// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll,
// so one of each serves every Compressed serializer.
var (
	zstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil)
	})
	scratchPool = sync.Pool{New: func() any { return buffer.New(1024) }}
)

type compressedSerializer[V any] struct {
	inner       Serializer[V]
	compression Compression
}

// Compressed wraps inner so payloads are block-compressed before they are
// written to native memory. Payloads that do not shrink by at least 10% are
// stored raw.
func Compressed[V any](inner Serializer[V], compression Compression) Serializer[V] {
	return compressedSerializer[V]{inner: inner, compression: compression}
}

func (c compressedSerializer[V]) Serialize(v V) ([]byte, error) {
	raw, err := c.inner.Serialize(v)
	if err != nil {
		return nil, err
	}
	return encodeBlock(raw, c.compression)
}

func (c compressedSerializer[V]) Deserialize(buf *buffer.OnHeap) (V, error) {
	scratch := scratchPool.Get().(*buffer.OnHeap)
	defer scratchPool.Put(scratch)

	if err := decodeBlock(buf.Bytes(), c.compression, scratch); err != nil {
		var zero V
		return zero, err
	}
	return c.inner.Deserialize(scratch)
}

// pack compresses raw. A nil result means the payload did not compress.
func pack(raw []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return nil, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil || n == 0 {
			return nil, err
		}
		return dst[:n], nil
	case CompressionZSTD:
		enc, err := zstdEncoder()
		if err != nil {
			return nil, err
		}
		return enc.EncodeAll(raw, nil), nil
	default:
		return nil, fmt.Errorf("serializer: unknown %s", compression)
	}
}

func encodeBlock(raw []byte, compression Compression) ([]byte, error) {
	rawLen, err := blockLen(int64(len(raw)))
	if err != nil {
		return nil, err
	}

	packed, err := pack(raw, compression)
	if err != nil {
		return nil, err
	}

	body, storedLen := raw, uint32(0)
	if len(packed) > 0 && len(packed)*10 <= len(raw)*9 {
		body, storedLen = packed, uint32(len(packed))
	}

	out := make([]byte, blockHeaderSize, blockHeaderSize+len(body))
	binary.LittleEndian.PutUint32(out[0:4], rawLen)
	binary.LittleEndian.PutUint32(out[4:8], storedLen)
	return append(out, body...), nil
}

func decodeBlock(block []byte, compression Compression, dst *buffer.OnHeap) error {
	if len(block) < blockHeaderSize {
		return fmt.Errorf("%w: %d bytes is smaller than the header", ErrCorruptBlock, len(block))
	}
	rawLen := int(binary.LittleEndian.Uint32(block[0:4]))
	storedLen := int(binary.LittleEndian.Uint32(block[4:8]))
	body := block[blockHeaderSize:]

	dst.Reset()

	if storedLen == 0 {
		if len(body) < rawLen {
			return fmt.Errorf("%w: raw block truncated", ErrCorruptBlock)
		}
		return dst.CopyIn(0, body[:rawLen])
	}
	if len(body) < storedLen {
		return fmt.Errorf("%w: compressed block truncated", ErrCorruptBlock)
	}

	n, err := unpack(body[:storedLen], compression, dst.Window(0, rawLen))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptBlock, err)
	}
	if n != rawLen {
		return fmt.Errorf("%w: decoded %d bytes, header says %d", ErrCorruptBlock, n, rawLen)
	}
	return nil
}

// unpack decompresses body into out and returns the decoded length.
func unpack(body []byte, compression Compression, out []byte) (int, error) {
	switch compression {
	case CompressionLZ4:
		return lz4.UncompressBlock(body, out)
	case CompressionZSTD:
		dec, err := zstdDecoder()
		if err != nil {
			return 0, err
		}
		decoded, err := dec.DecodeAll(body, out[:0])
		return len(decoded), err
	default:
		return 0, fmt.Errorf("compressed body for %s", compression)
	}
}
