// Package interchange converts path files to and from editable documents.
//
// The binary format carries heading and lookahead behind flag bits; a
// document carries them as optional fields, so an absent value and a
// cleared flag mean the same thing.
package interchange

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/danmuck/pathctl/internal/pathfile"
)

// Format names a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatCBOR:
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("interchange: unknown format %q (expected yaml or cbor)", raw)
	}
}

// FormatFor infers a format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cbor":
		return FormatCBOR, true
	default:
		return "", false
	}
}

// Document is the editable form of a path file.
type Document struct {
	Paths []Path `yaml:"paths" cbor:"paths"`
}

type Path struct {
	Name      string     `yaml:"name" cbor:"name"`
	Waypoints []Waypoint `yaml:"waypoints" cbor:"waypoints"`
}

type Waypoint struct {
	X         int16   `yaml:"x" cbor:"x"`
	Y         int16   `yaml:"y" cbor:"y"`
	Speed     int16   `yaml:"speed" cbor:"speed"`
	Heading   *uint16 `yaml:"heading,omitempty" cbor:"heading,omitempty"`
	Lookahead *int16  `yaml:"lookahead,omitempty" cbor:"lookahead,omitempty"`
}

// FromPathFile builds a document from pf. Values behind a cleared flag are dropped.
func FromPathFile(pf *pathfile.PathFile) Document {
	doc := Document{Paths: make([]Path, 0, len(pf.Paths))}
	for _, p := range pf.Paths {
		dp := Path{Name: p.Name, Waypoints: make([]Waypoint, 0, len(p.Waypoints))}
		for _, w := range p.Waypoints {
			dw := Waypoint{X: w.X, Y: w.Y, Speed: w.Speed}
			if w.HeadingAvailable {
				heading := w.Heading
				dw.Heading = &heading
			}
			if w.LookaheadAvailable {
				lookahead := w.Lookahead
				dw.Lookahead = &lookahead
			}
			dp.Waypoints = append(dp.Waypoints, dw)
		}
		doc.Paths = append(doc.Paths, dp)
	}
	return doc
}

// PathFile converts the document back into the codec model.
func (d Document) PathFile() *pathfile.PathFile {
	pf := &pathfile.PathFile{Paths: make([]pathfile.Path, 0, len(d.Paths))}
	for _, dp := range d.Paths {
		p := pathfile.Path{Name: dp.Name, Waypoints: make([]pathfile.Waypoint, 0, len(dp.Waypoints))}
		for _, dw := range dp.Waypoints {
			w := pathfile.Waypoint{X: dw.X, Y: dw.Y, Speed: dw.Speed}
			if dw.Heading != nil {
				w.Heading, w.HeadingAvailable = *dw.Heading, true
			}
			if dw.Lookahead != nil {
				w.Lookahead, w.LookaheadAvailable = *dw.Lookahead, true
			}
			p.Waypoints = append(p.Waypoints, w)
		}
		pf.Paths = append(pf.Paths, p)
	}
	return pf
}

// Marshal encodes d in the given format.
func Marshal(d Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return MarshalYAML(d)
	case FormatCBOR:
		return MarshalCBOR(d)
	default:
		return nil, fmt.Errorf("interchange: unknown format %q", format)
	}
}

// Unmarshal decodes data in the given format.
func Unmarshal(data []byte, format Format) (Document, error) {
	switch format {
	case FormatYAML:
		return UnmarshalYAML(data)
	case FormatCBOR:
		return UnmarshalCBOR(data)
	default:
		return Document{}, fmt.Errorf("interchange: unknown format %q", format)
	}
}
