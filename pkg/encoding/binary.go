package encoding

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Order is the byte order of every multi-byte value on the wire.
var Order = binary.BigEndian

var (
	ErrShortBuffer  = errors.New("encoding: short buffer")
	ErrInvalidBool  = errors.New("encoding: invalid bool byte")
	ErrNegativeSize = errors.New("encoding: negative size")
)

// Writer appends big-endian values to a growing buffer.
type Writer struct {
	buf []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) Uint8(v uint8) { w.buf = append(w.buf, v) }

func (w *Writer) Bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

func (w *Writer) Uint32(v uint32) { w.buf = Order.AppendUint32(w.buf, v) }
func (w *Writer) Int32(v int32)   { w.buf = Order.AppendUint32(w.buf, uint32(v)) }
func (w *Writer) Uint64(v uint64) { w.buf = Order.AppendUint64(w.buf, v) }
func (w *Writer) Int64(v int64)   { w.buf = Order.AppendUint64(w.buf, uint64(v)) }

func (w *Writer) Float32(v float32) { w.buf = Order.AppendUint32(w.buf, math.Float32bits(v)) }
func (w *Writer) Float64(v float64) { w.buf = Order.AppendUint64(w.buf, math.Float64bits(v)) }

// String writes a uint32 length followed by the raw bytes, without terminator.
func (w *Writer) String(v string) {
	w.Uint32(uint32(len(v)))
	w.buf = append(w.buf, v...)
}

// Raw appends bytes as they are.
func (w *Writer) Raw(p []byte) { w.buf = append(w.buf, p...) }

// Block writes an int32 length prefix followed by p.
func (w *Writer) Block(p []byte) {
	w.Int32(int32(len(p)))
	w.buf = append(w.buf, p...)
}

// Bytes returns the written bytes. The slice aliases the writer until Reset.
func (w *Writer) Bytes() []byte { return w.buf }

func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) Reset() { w.buf = w.buf[:0] }

// Reader consumes big-endian values. The first failure is sticky: later
// reads return zero values and Err reports the original cause.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) Err() error { return r.err }

func (r *Reader) Remaining() int { return len(r.data) - r.off }

func (r *Reader) Offset() int { return r.off }

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.err = ErrNegativeSize
		return nil
	}
	if r.Remaining() < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.off, r.Remaining())
		return nil
	}
	p := r.data[r.off : r.off+n]
	r.off += n
	return p
}

func (r *Reader) Uint8() uint8 {
	p := r.next(1)
	if p == nil {
		return 0
	}
	return p[0]
}

func (r *Reader) Bool() bool {
	switch v := r.Uint8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		if r.err == nil {
			r.err = fmt.Errorf("%w: %d", ErrInvalidBool, v)
		}
		return false
	}
}

func (r *Reader) Uint32() uint32 {
	p := r.next(4)
	if p == nil {
		return 0
	}
	return Order.Uint32(p)
}

func (r *Reader) Int32() int32 { return int32(r.Uint32()) }

func (r *Reader) Uint64() uint64 {
	p := r.next(8)
	if p == nil {
		return 0
	}
	return Order.Uint64(p)
}

func (r *Reader) Int64() int64 { return int64(r.Uint64()) }

func (r *Reader) Float32() float32 { return math.Float32frombits(r.Uint32()) }
func (r *Reader) Float64() float64 { return math.Float64frombits(r.Uint64()) }

func (r *Reader) String() string {
	n := r.Uint32()
	if r.err != nil {
		return ""
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.err = fmt.Errorf("%w: string of %d bytes at offset %d, have %d", ErrShortBuffer, n, r.off, r.Remaining())
		return ""
	}
	return string(r.next(int(n)))
}

// Raw returns the next n bytes without copying.
func (r *Reader) Raw(n int) []byte { return r.next(n) }

// Expect returns ErrShortBuffer-wrapped errors from earlier reads, or an error
// when unread bytes remain.
func (r *Reader) Expect() error {
	if r.err != nil {
		return r.err
	}
	if rem := r.Remaining(); rem != 0 {
		return fmt.Errorf("encoding: %d trailing bytes", rem)
	}
	return nil
}
