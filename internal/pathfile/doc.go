// Package pathfile owns the path file wire format.
//
// A path file is a flat little-endian byte sequence:
//
//	u8   global metadata length, then that many opaque bytes
//	u16  path count
//	per path:
//	  NUL-terminated name
//	  u8   path metadata length, then that many opaque bytes
//	  u32  waypoint count
//	  per waypoint:
//	    u8  flags
//	    i16 x, i16 y, i16 speed
//	    u16 heading    if flags bit 0
//	    i16 lookahead  if flags bit 1
//	    u16 reserved   for each of flags bits 2..7, ascending
//
// Metadata blocks and reserved slots are skipped on decode and never
// produced on encode. They let newer writers add fields that older
// readers step over without losing alignment.
package pathfile
