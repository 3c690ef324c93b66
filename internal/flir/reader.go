package flir

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/rotisserie/eris"
)

// reader is a bounds-checked cursor over a metadata block with a sticky
// error, so parse sequences read field after field and check once at the end.
type reader struct {
	data  []byte
	pos   int
	order binary.ByteOrder
	err   error
}

func newReader(data []byte, order binary.ByteOrder) *reader {
	return &reader{data: data, order: order}
}

// seek positions the cursor at an absolute offset.
func (r *reader) seek(off int) *reader {
	if r.err == nil && (off < 0 || off > len(r.data)) {
		r.err = eris.Errorf("flir: seek to %#x beyond block of %d bytes", off, len(r.data))
		return r
	}
	r.pos = off
	return r
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.data) {
		r.err = eris.Errorf("flir: unexpected end of block at offset %#x (need %d bytes of %d)", r.pos, n, len(r.data))
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) skip(n int) { r.take(n) }

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return r.order.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return r.order.Uint32(b)
}

func (r *reader) i32() int32 {
	return int32(r.u32())
}

func (r *reader) f32() float64 {
	return float64(math.Float32frombits(r.u32()))
}

// str reads a fixed-width field holding a NUL-terminated string.
func (r *reader) str(n int) string {
	b := r.take(n)
	if b == nil {
		return ""
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
