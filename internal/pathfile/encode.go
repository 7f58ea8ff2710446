package pathfile

import (
	"errors"
	"strings"

	"github.com/danmuck/pathctl/internal/protocol/cursor"
)

const (
	// DefaultMaxEncodedSize caps the buffer Marshal will grow to.
	DefaultMaxEncodedSize = 64 << 20

	initialMarshalSize = 256
)

// Encode writes pf into buf and returns the number of bytes written. The
// output is exactly the fields written, with no padding. A buffer that is
// too small fails with ErrOutOfBounds; its contents are then unspecified.
func Encode(pf *PathFile, buf []byte) (int, error) {
	if pf == nil {
		return 0, ErrNilPathFile
	}
	e := encoder{cur: cursor.Wrap(buf), path: -1, waypoint: -1}
	if err := e.file(pf); err != nil {
		return 0, err
	}
	return e.cur.Position(), nil
}

// Marshal encodes pf into a fresh slice. It retries Encode with a doubling
// buffer while the failure is ErrOutOfBounds, up to maxSize bytes
// (DefaultMaxEncodedSize when maxSize is not positive).
func Marshal(pf *PathFile, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxEncodedSize
	}
	size := min(initialMarshalSize, maxSize)
	for {
		buf := make([]byte, size)
		n, err := Encode(pf, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, ErrOutOfBounds) || size >= maxSize {
			return nil, err
		}
		size = min(size*2, maxSize)
	}
}

type encoder struct {
	cur *cursor.Cursor

	path     int
	waypoint int
}

func (e *encoder) file(pf *PathFile) error {
	if err := e.u8("global metadata length", 0); err != nil {
		return err
	}
	if len(pf.Paths) > MaxPaths {
		return e.fail("path count", ErrCountOverflow)
	}
	if err := e.u16("path count", uint16(len(pf.Paths))); err != nil {
		return err
	}
	for i := range pf.Paths {
		e.path = i
		if err := e.pathRecord(&pf.Paths[i]); err != nil {
			return err
		}
	}
	e.path = -1
	return nil
}

func (e *encoder) pathRecord(p *Path) error {
	if strings.IndexByte(p.Name, 0) >= 0 {
		return e.fail("name", ErrInvalidName)
	}
	if err := e.cur.PutCString(p.Name); err != nil {
		return e.fail("name", err)
	}
	if err := e.u8("path metadata length", 0); err != nil {
		return err
	}
	if uint64(len(p.Waypoints)) > MaxWaypoints {
		return e.fail("waypoint count", ErrCountOverflow)
	}
	if err := e.u32("waypoint count", uint32(len(p.Waypoints))); err != nil {
		return err
	}
	for j := range p.Waypoints {
		e.waypoint = j
		if err := e.waypointRecord(p.Waypoints[j]); err != nil {
			return err
		}
	}
	e.waypoint = -1
	return nil
}

func (e *encoder) waypointRecord(w Waypoint) error {
	if err := e.u8("flags", w.Flags()); err != nil {
		return err
	}
	if err := e.i16("x", w.X); err != nil {
		return err
	}
	if err := e.i16("y", w.Y); err != nil {
		return err
	}
	if err := e.i16("speed", w.Speed); err != nil {
		return err
	}
	if w.HeadingAvailable {
		if err := e.u16("heading", w.Heading); err != nil {
			return err
		}
	}
	if w.LookaheadAvailable {
		if err := e.i16("lookahead", w.Lookahead); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) fail(field string, err error) error {
	return &FieldError{Op: "encode", Field: field, Path: e.path, Waypoint: e.waypoint, Offset: e.cur.Position(), Err: err}
}

func (e *encoder) u8(field string, v uint8) error {
	if err := e.cur.PutUint8(v); err != nil {
		return e.fail(field, err)
	}
	return nil
}

func (e *encoder) u16(field string, v uint16) error {
	if err := e.cur.PutUint16(v); err != nil {
		return e.fail(field, err)
	}
	return nil
}

func (e *encoder) i16(field string, v int16) error {
	if err := e.cur.PutInt16(v); err != nil {
		return e.fail(field, err)
	}
	return nil
}

func (e *encoder) u32(field string, v uint32) error {
	if err := e.cur.PutUint32(v); err != nil {
		return e.fail(field, err)
	}
	return nil
}
