package pathfile

import "slices"

// Flag bits of the per-waypoint flag byte.
const (
	FlagHeading   uint8 = 0x01
	FlagLookahead uint8 = 0x02

	// ReservedFlags are bits 2..7. Each set bit is followed by one u16 slot.
	ReservedFlags uint8 = 0xFC
)

const (
	// MaxPaths is the largest path count the u16 count field can carry.
	MaxPaths = 1<<16 - 1
	// MaxWaypoints is the largest waypoint count the u32 count field can carry.
	MaxWaypoints = 1<<32 - 1
)

// PathFile is the root container. Path order is the on-disk order.
type PathFile struct {
	Paths []Path
}

// Path is a named, ordered waypoint sequence.
type Path struct {
	Name      string
	Waypoints []Waypoint
}

// Waypoint is one point of a path. Heading and Lookahead only carry
// meaning when the matching availability flag is set; encode drops them
// otherwise and decode leaves them zero.
type Waypoint struct {
	X     int16
	Y     int16
	Speed int16

	Heading   uint16
	Lookahead int16

	HeadingAvailable   bool
	LookaheadAvailable bool
}

// Flags returns the flag byte encode writes for w. Reserved bits are never set.
func (w Waypoint) Flags() uint8 {
	var f uint8
	if w.HeadingAvailable {
		f |= FlagHeading
	}
	if w.LookaheadAvailable {
		f |= FlagLookahead
	}
	return f
}

// WaypointCount returns the number of waypoints across all paths.
func (pf *PathFile) WaypointCount() int {
	n := 0
	for _, p := range pf.Paths {
		n += len(p.Waypoints)
	}
	return n
}

// Find returns the first path named name.
func (pf *PathFile) Find(name string) (*Path, bool) {
	for i := range pf.Paths {
		if pf.Paths[i].Name == name {
			return &pf.Paths[i], true
		}
	}
	return nil, false
}

// Equal reports whether pf and other hold the same paths field for field.
// A nil slice and an empty slice compare equal.
func (pf *PathFile) Equal(other *PathFile) bool {
	if pf == nil || other == nil {
		return pf == other
	}
	return slices.EqualFunc(pf.Paths, other.Paths, func(a, b Path) bool {
		return a.Name == b.Name && slices.Equal(a.Waypoints, b.Waypoints)
	})
}
