package cursor

import (
	"encoding/binary"
	"errors"
	"strings"
)

var (
	ErrOutOfBounds        = errors.New("cursor: out of bounds")
	ErrUnterminatedString = errors.New("cursor: unterminated string")
	ErrEmbeddedNull       = errors.New("cursor: string contains null byte")
)

// Cursor reads and writes fixed-width little-endian values over a
// caller-owned byte slice. The slice is never grown. An operation that
// would cross the end of the slice fails with ErrOutOfBounds and leaves
// the position where it was.
type Cursor struct {
	buf []byte
	pos int
}

// Wrap returns a cursor positioned at the start of buf.
func Wrap(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Position returns the current offset from the start of the buffer.
func (c *Cursor) Position() int { return c.pos }

// Len returns the capacity of the wrapped buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of bytes between the position and the end.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// next reserves n bytes at the current position and advances past them.
func (c *Cursor) next(n int) ([]byte, error) {
	if n < 0 || n > len(c.buf)-c.pos {
		return nil, ErrOutOfBounds
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Uint8 reads one byte.
func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a little-endian uint16.
func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Int16 reads a little-endian two's-complement int16.
func (c *Cursor) Int16() (int16, error) {
	v, err := c.Uint16()
	return int16(v), err
}

// Uint32 reads a little-endian uint32.
func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Read copies exactly len(dst) bytes into dst.
func (c *Cursor) Read(dst []byte) error {
	b, err := c.next(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// Skip advances past n bytes without copying them.
func (c *Cursor) Skip(n int) error {
	_, err := c.next(n)
	return err
}

// CString reads bytes up to a zero terminator and returns them without the
// terminator. At most limit bytes are scanned, terminator included; when
// limit is zero or negative the scan is bounded only by the buffer.
//
// Running out of buffer first is ErrOutOfBounds, scanning limit bytes
// without finding the terminator is ErrUnterminatedString. Either way the
// position is unchanged.
func (c *Cursor) CString(limit int) (string, error) {
	rest := c.buf[c.pos:]
	window := rest
	if limit > 0 && limit < len(rest) {
		window = rest[:limit]
	}
	for i, b := range window {
		if b == 0 {
			s := string(rest[:i])
			c.pos += i + 1
			return s, nil
		}
	}
	if len(window) < len(rest) {
		return "", ErrUnterminatedString
	}
	return "", ErrOutOfBounds
}

// PutUint8 writes one byte.
func (c *Cursor) PutUint8(v uint8) error {
	b, err := c.next(1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

// PutUint16 writes a little-endian uint16.
func (c *Cursor) PutUint16(v uint16) error {
	b, err := c.next(2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, v)
	return nil
}

// PutInt16 writes a little-endian two's-complement int16.
func (c *Cursor) PutInt16(v int16) error {
	return c.PutUint16(uint16(v))
}

// PutUint32 writes a little-endian uint32.
func (c *Cursor) PutUint32(v uint32) error {
	b, err := c.next(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

// Write copies src into the buffer. Nothing is written unless all of src fits.
func (c *Cursor) Write(src []byte) error {
	b, err := c.next(len(src))
	if err != nil {
		return err
	}
	copy(b, src)
	return nil
}

// PutCString writes s followed by a zero terminator.
func (c *Cursor) PutCString(s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return ErrEmbeddedNull
	}
	b, err := c.next(len(s) + 1)
	if err != nil {
		return err
	}
	copy(b, s)
	b[len(s)] = 0
	return nil
}
