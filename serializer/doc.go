// Package serializer defines how typed values are turned into the bytes
// stored in native memory and back.
//
// A Serializer is chosen per value type when a map is constructed; there is
// no runtime type inspection. Built-ins cover raw bytes, strings and JSON
// (github.com/goccy/go-json). Compressed wraps any serializer with LZ4 or
// ZSTD block compression to trade CPU for off-heap pages.
//
// Implementations must be safe for concurrent use.
package serializer
