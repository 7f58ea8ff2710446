package pathfile

import "github.com/danmuck/pathctl/internal/protocol/cursor"

const (
	// DefaultMaxNameLen bounds a decoded name, terminator included.
	DefaultMaxNameLen = 1024

	// Smallest encodings, used to cap preallocation from untrusted counts.
	minPathSize     = 1 + 1 + 4
	minWaypointSize = 1 + 2 + 2 + 2
)

// Limits constrains decode.
type Limits struct {
	// MaxNameLen is the most bytes scanned for a name terminator. Zero or
	// negative scans to the end of the buffer.
	MaxNameLen int
}

func DefaultLimits() Limits {
	return Limits{MaxNameLen: DefaultMaxNameLen}
}

// Stats describes what a decode consumed.
type Stats struct {
	Size          int // bytes consumed
	Paths         int
	Waypoints     int
	MetadataBytes int // opaque metadata bytes skipped
	ReservedSlots int // reserved u16 slots skipped
	Trailing      int // unread bytes after the last record
}

// Decode parses buf with DefaultLimits.
func Decode(buf []byte) (*PathFile, error) {
	pf, _, err := DecodeWithLimits(buf, DefaultLimits())
	return pf, err
}

// DecodeWithLimits parses buf. On any error the result is nil; decode never
// returns a partially populated PathFile. buf is not retained.
func DecodeWithLimits(buf []byte, limits Limits) (*PathFile, Stats, error) {
	d := decoder{cur: cursor.Wrap(buf), limits: limits, path: -1, waypoint: -1}
	pf, err := d.file()
	if err != nil {
		return nil, Stats{}, err
	}
	d.stats.Size = d.cur.Position()
	d.stats.Trailing = d.cur.Remaining()
	return pf, d.stats, nil
}

type decoder struct {
	cur    *cursor.Cursor
	limits Limits
	stats  Stats

	path     int
	waypoint int
}

func (d *decoder) file() (*PathFile, error) {
	if err := d.metadata("global metadata"); err != nil {
		return nil, err
	}
	count, err := d.u16("path count")
	if err != nil {
		return nil, err
	}

	pf := &PathFile{Paths: make([]Path, 0, d.capHint(uint64(count), minPathSize))}
	for i := 0; i < int(count); i++ {
		d.path = i
		p, err := d.pathRecord()
		if err != nil {
			return nil, err
		}
		pf.Paths = append(pf.Paths, p)
	}
	d.path = -1
	d.stats.Paths = len(pf.Paths)
	return pf, nil
}

func (d *decoder) pathRecord() (Path, error) {
	at := d.cur.Position()
	name, err := d.cur.CString(d.limits.MaxNameLen)
	if err != nil {
		return Path{}, d.fail("name", at, err)
	}
	if err := d.metadata("path metadata"); err != nil {
		return Path{}, err
	}
	count, err := d.u32("waypoint count")
	if err != nil {
		return Path{}, err
	}

	p := Path{Name: name, Waypoints: make([]Waypoint, 0, d.capHint(uint64(count), minWaypointSize))}
	for j := uint32(0); j < count; j++ {
		d.waypoint = int(j)
		w, err := d.waypointRecord()
		if err != nil {
			return Path{}, err
		}
		p.Waypoints = append(p.Waypoints, w)
	}
	d.waypoint = -1
	d.stats.Waypoints += len(p.Waypoints)
	return p, nil
}

func (d *decoder) waypointRecord() (Waypoint, error) {
	var w Waypoint
	flags, err := d.u8("flags")
	if err != nil {
		return w, err
	}
	if w.X, err = d.i16("x"); err != nil {
		return w, err
	}
	if w.Y, err = d.i16("y"); err != nil {
		return w, err
	}
	if w.Speed, err = d.i16("speed"); err != nil {
		return w, err
	}

	if w.HeadingAvailable = flags&FlagHeading != 0; w.HeadingAvailable {
		if w.Heading, err = d.u16("heading"); err != nil {
			return w, err
		}
	}
	if w.LookaheadAvailable = flags&FlagLookahead != 0; w.LookaheadAvailable {
		if w.Lookahead, err = d.i16("lookahead"); err != nil {
			return w, err
		}
	}
	for bit := uint(2); bit < 8; bit++ {
		if flags&(1<<bit) == 0 {
			continue
		}
		at := d.cur.Position()
		if err := d.cur.Skip(2); err != nil {
			return w, d.fail("reserved slot", at, err)
		}
		d.stats.ReservedSlots++
	}
	return w, nil
}

// metadata skips a u8 length-prefixed opaque block.
func (d *decoder) metadata(field string) error {
	n, err := d.u8(field + " length")
	if err != nil {
		return err
	}
	at := d.cur.Position()
	if err := d.cur.Skip(int(n)); err != nil {
		return d.fail(field, at, err)
	}
	d.stats.MetadataBytes += int(n)
	return nil
}

// capHint bounds an untrusted count by what the remaining bytes could hold.
func (d *decoder) capHint(count uint64, minSize int) int {
	most := d.cur.Remaining() / minSize
	if count > uint64(most) {
		return most
	}
	return int(count)
}

func (d *decoder) fail(field string, at int, err error) error {
	return &FieldError{Op: "decode", Field: field, Path: d.path, Waypoint: d.waypoint, Offset: at, Err: err}
}

func (d *decoder) u8(field string) (uint8, error) {
	at := d.cur.Position()
	v, err := d.cur.Uint8()
	if err != nil {
		return 0, d.fail(field, at, err)
	}
	return v, nil
}

func (d *decoder) u16(field string) (uint16, error) {
	at := d.cur.Position()
	v, err := d.cur.Uint16()
	if err != nil {
		return 0, d.fail(field, at, err)
	}
	return v, nil
}

func (d *decoder) i16(field string) (int16, error) {
	at := d.cur.Position()
	v, err := d.cur.Int16()
	if err != nil {
		return 0, d.fail(field, at, err)
	}
	return v, nil
}

func (d *decoder) u32(field string) (uint32, error) {
	at := d.cur.Position()
	v, err := d.cur.Uint32()
	if err != nil {
		return 0, d.fail(field, at, err)
	}
	return v, nil
}
