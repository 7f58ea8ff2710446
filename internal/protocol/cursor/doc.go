// Package cursor owns the byte-level wire primitives for path files.
//
// Ownership boundary:
// - fixed-width little-endian integers
// - NUL-terminated strings
// - bounds checking for every read, write and skip
//
// Record layout and validation live in pathfile; cursor knows nothing
// about paths or waypoints.
package cursor
