// Package buffer provides the on-heap scratch buffer used to stage bytes
// copied out of native memory before they are deserialized.
//
// A single OnHeap is meant to be reused across reads so hot paths do not
// allocate a fresh byte slice per call. It is not safe for concurrent use.
package buffer
