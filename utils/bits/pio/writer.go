package pio

import "math"

// Writer appends big-endian encoded values to a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer that appends to buf[:0].
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf[:0]}
}

func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Len() int { return len(w.buf) }

// Write appends p. Implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func (w *Writer) PutU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) PutU16(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

func (w *Writer) PutU24(v uint32) {
	w.buf = append(w.buf, byte(v>>16), byte(v>>8), byte(v))
}

func (w *Writer) PutU32(v uint32) {
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (w *Writer) PutU64(v uint64) {
	w.PutU32(uint32(v >> 32))
	w.PutU32(uint32(v))
}

func (w *Writer) PutI8(v int8) { w.PutU8(uint8(v)) }

func (w *Writer) PutI16(v int16) { w.PutU16(uint16(v)) }

func (w *Writer) PutI32(v int32) { w.PutU32(uint32(v)) }

func (w *Writer) PutI64(v int64) { w.PutU64(uint64(v)) }

func (w *Writer) PutF32(v float32) { w.PutU32(math.Float32bits(v)) }

func (w *Writer) PutF64(v float64) { w.PutU64(math.Float64bits(v)) }

func (w *Writer) PutBytes(p []byte) {
	w.buf = append(w.buf, p...)
}

// PutTag appends a four character code in its raw byte order.
func (w *Writer) PutTag(t [4]byte) {
	w.buf = append(w.buf, t[:]...)
}

// PatchU32 overwrites four already written bytes at offset at.
func (w *Writer) PatchU32(at int, v uint32) {
	PutU32BE(w.buf[at:], v)
}

// PatchU64 overwrites eight already written bytes at offset at.
func (w *Writer) PatchU64(at int, v uint64) {
	PutU64BE(w.buf[at:], v)
}
