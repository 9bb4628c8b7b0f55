package core

import (
	"encoding/binary"
	"math"
)

// maxPrefixCount is the largest length a uint16 count or char-count prefix
// can hold.
const maxPrefixCount = 0xFFFF

// TypedWriter adds fixed-width integer, float, string, and sequence
// encodings on top of any Sink. All multi-byte values are written
// little-endian.
type TypedWriter[S Sink] struct {
	Sink S
}

// NewTypedWriter wraps sink with typed write helpers.
func NewTypedWriter[S Sink](sink S) *TypedWriter[S] {
	return &TypedWriter[S]{Sink: sink}
}

// Write writes raw bytes through to the underlying sink.
func (w *TypedWriter[S]) Write(p []byte) { w.Sink.WriteBytes(p) }

func (w *TypedWriter[S]) Flush()            { w.Sink.Flush() }
func (w *TypedWriter[S]) Clear()            { w.Sink.Clear() }
func (w *TypedWriter[S]) Size() uint32      { return w.Sink.Size() }
func (w *TypedWriter[S]) Available() uint32 { return w.Sink.Available() }

func (w *TypedWriter[S]) WriteUint8(v uint8) { w.Sink.WriteBytes([]byte{v}) }
func (w *TypedWriter[S]) WriteInt8(v int8)   { w.WriteUint8(uint8(v)) }

func (w *TypedWriter[S]) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

func (w *TypedWriter[S]) WriteUint16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	w.Sink.WriteBytes(buf[:])
}
func (w *TypedWriter[S]) WriteInt16(v int16) { w.WriteUint16(uint16(v)) }

func (w *TypedWriter[S]) WriteUint32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.Sink.WriteBytes(buf[:])
}
func (w *TypedWriter[S]) WriteInt32(v int32)     { w.WriteUint32(uint32(v)) }
func (w *TypedWriter[S]) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }

func (w *TypedWriter[S]) WriteUint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.Sink.WriteBytes(buf[:])
}
func (w *TypedWriter[S]) WriteInt64(v int64)     { w.WriteUint64(uint64(v)) }
func (w *TypedWriter[S]) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteLengthPrefixedString writes a uint16 character count followed by
// charCount*charSize raw bytes from data. Panics if charCount exceeds
// what a uint16 prefix can hold.
func (w *TypedWriter[S]) WriteLengthPrefixedString(data []byte, charCount, charSize int) {
	if charCount > maxPrefixCount {
		panic("corepool: string too long for a 16-bit length prefix")
	}
	w.WriteUint16(uint16(charCount))
	w.Write(data[:charCount*charSize])
}

// WriteString writes s as a length-prefixed byte string (charSize 1).
func (w *TypedWriter[S]) WriteString(s string) {
	w.WriteLengthPrefixedString([]byte(s), len(s), 1)
}

// WriteSequence writes a uint16 element count followed by each element of
// seq encoded by writeElem, in order. Use this when elements are not
// trivially representable as raw bytes; for the common fixed-width
// numeric cases, prefer the WriteXxxSequence bulk helpers below.
func WriteSequence[S Sink, T any](w *TypedWriter[S], seq []T, writeElem func(*TypedWriter[S], T)) {
	if len(seq) > maxPrefixCount {
		panic("corepool: sequence too long for a 16-bit count prefix")
	}
	w.WriteUint16(uint16(len(seq)))
	for _, v := range seq {
		writeElem(w, v)
	}
}

// WriteUint8Sequence bulk-writes a length-prefixed []uint8 in one call.
func WriteUint8Sequence[S Sink](w *TypedWriter[S], seq []uint8) {
	if len(seq) > maxPrefixCount {
		panic("corepool: sequence too long for a 16-bit count prefix")
	}
	w.WriteUint16(uint16(len(seq)))
	w.Write(seq)
}

// WriteUint16Sequence bulk-writes a length-prefixed []uint16.
func WriteUint16Sequence[S Sink](w *TypedWriter[S], seq []uint16) {
	if len(seq) > maxPrefixCount {
		panic("corepool: sequence too long for a 16-bit count prefix")
	}
	w.WriteUint16(uint16(len(seq)))
	buf := make([]byte, len(seq)*2)
	for i, v := range seq {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	w.Write(buf)
}

// WriteUint32Sequence bulk-writes a length-prefixed []uint32.
func WriteUint32Sequence[S Sink](w *TypedWriter[S], seq []uint32) {
	if len(seq) > maxPrefixCount {
		panic("corepool: sequence too long for a 16-bit count prefix")
	}
	w.WriteUint16(uint16(len(seq)))
	buf := make([]byte, len(seq)*4)
	for i, v := range seq {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	w.Write(buf)
}

// WriteUint64Sequence bulk-writes a length-prefixed []uint64.
func WriteUint64Sequence[S Sink](w *TypedWriter[S], seq []uint64) {
	if len(seq) > maxPrefixCount {
		panic("corepool: sequence too long for a 16-bit count prefix")
	}
	w.WriteUint16(uint16(len(seq)))
	buf := make([]byte, len(seq)*8)
	for i, v := range seq {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	w.Write(buf)
}

// WriteFloat32Sequence bulk-writes a length-prefixed []float32.
func WriteFloat32Sequence[S Sink](w *TypedWriter[S], seq []float32) {
	if len(seq) > maxPrefixCount {
		panic("corepool: sequence too long for a 16-bit count prefix")
	}
	w.WriteUint16(uint16(len(seq)))
	buf := make([]byte, len(seq)*4)
	for i, v := range seq {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	w.Write(buf)
}

// WriteFloat64Sequence bulk-writes a length-prefixed []float64.
func WriteFloat64Sequence[S Sink](w *TypedWriter[S], seq []float64) {
	if len(seq) > maxPrefixCount {
		panic("corepool: sequence too long for a 16-bit count prefix")
	}
	w.WriteUint16(uint16(len(seq)))
	buf := make([]byte, len(seq)*8)
	for i, v := range seq {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	w.Write(buf)
}
