package pathfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmuck/pathctl/internal/protocol/cursor"
)

var (
	ErrOutOfBounds        = cursor.ErrOutOfBounds
	ErrUnterminatedString = cursor.ErrUnterminatedString
	ErrCountOverflow      = errors.New("pathfile: count overflows field width")
	ErrInvalidName        = errors.New("pathfile: name contains null byte")
	ErrNilPathFile        = errors.New("pathfile: nil path file")
)

// FieldError reports which field failed and where. Path and Waypoint are -1
// outside of a path or waypoint record.
type FieldError struct {
	Op       string
	Field    string
	Path     int
	Waypoint int
	Offset   int
	Err      error
}

func (e *FieldError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pathfile: %s %s", e.Op, e.Field)
	if e.Path >= 0 {
		fmt.Fprintf(&b, " path[%d]", e.Path)
	}
	if e.Waypoint >= 0 {
		fmt.Fprintf(&b, " waypoint[%d]", e.Waypoint)
	}
	fmt.Fprintf(&b, " at offset %d: %v", e.Offset, e.Err)
	return b.String()
}

func (e *FieldError) Unwrap() error { return e.Err }
