package codec

import "encoding/binary"

var order = binary.BigEndian

// buffer encapsulates marshaling unsigned integer and byte slice values,
// with fixed-width Read8/16/32/64 and Write8/16/32/64 accessors for the
// big-endian integer fields that appear throughout the wire format.
type buffer struct {
	data []byte
}

func newBuffer(b []byte) *buffer {
	return &buffer{b}
}

func (b *buffer) append(n int) []byte {
	b.data = append(b.data, make([]byte, n)...)
	return b.data[len(b.data)-n:]
}

// Data returns the unconsumed bytes remaining in the buffer.
func (b *buffer) Data() []byte { return b.data }

// Remaining consumes and returns a copy of all remaining bytes in the buffer.
func (b *buffer) Remaining() []byte {
	p := b.Consume(len(b.Data()))
	cp := make([]byte, len(p))
	copy(cp, p)
	return cp
}

func (b *buffer) consume(n int) ([]byte, bool) {
	if !b.Has(n) {
		return nil, false
	}
	rval := b.data[:n]
	b.data = b.data[n:]
	return rval, true
}

// Consume consumes n bytes from the buffer, or nil if fewer remain.
func (b *buffer) Consume(n int) []byte {
	v, ok := b.consume(n)
	if !ok {
		return nil
	}
	return v
}

// ConsumeChecked behaves like Consume but returns a LengthOverflowError
// instead of a truncated nil slice when fewer than n bytes remain, for
// callers that must surface LengthOverflow rather than silently truncate.
func (b *buffer) ConsumeChecked(n int) ([]byte, error) {
	v, ok := b.consume(n)
	if !ok {
		return nil, &LengthOverflowError{Declared: n, Remaining: b.Len()}
	}
	return v, nil
}

// Has returns true if n bytes are available.
func (b *buffer) Has(n int) bool { return len(b.data) >= n }

// Len returns the length of the remaining bytes.
func (b *buffer) Len() int { return len(b.data) }

func (b *buffer) Read8() uint8 {
	v, ok := b.consume(1)
	if !ok {
		return 0
	}
	return uint8(v[0])
}

func (b *buffer) Read16() uint16 {
	v, ok := b.consume(2)
	if !ok {
		return 0
	}
	return order.Uint16(v)
}

func (b *buffer) Read32() uint32 {
	v, ok := b.consume(4)
	if !ok {
		return 0
	}
	return order.Uint32(v)
}

func (b *buffer) Read64() uint64 {
	v, ok := b.consume(8)
	if !ok {
		return 0
	}
	return order.Uint64(v)
}

func (b *buffer) ReadBytes(p []byte) { copy(p, b.Consume(len(p))) }

func (b *buffer) Write8(v uint8)   { b.append(1)[0] = byte(v) }
func (b *buffer) Write16(v uint16) { order.PutUint16(b.append(2), v) }
func (b *buffer) Write32(v uint32) { order.PutUint32(b.append(4), v) }
func (b *buffer) Write64(v uint64) { order.PutUint64(b.append(8), v) }

// WriteN returns a newly appended n-byte slice to write into.
func (b *buffer) WriteN(n int) []byte { return b.append(n) }

// WriteBytes writes p to the buffer.
func (b *buffer) WriteBytes(p []byte) { copy(b.append(len(p)), p) }
