// Package mp4 loads MP4 files into box trees and stores them back.
package mp4

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/ugparu/mp4box/format/mp4/mp4io"
	"github.com/ugparu/mp4box/utils/logger"
)

// ErrRoundTrip is returned by Verify when re-encoding changes the bytes.
var ErrRoundTrip = errors.New("mp4: re-encoded file differs from the source")

// File is a fully parsed MP4 file together with the bytes it was read from.
type File struct {
	Path  string
	Boxes mp4io.Forest
	raw   []byte
}

func (f *File) String() string {
	return f.Path
}

// Open reads and parses the whole file at path.
func Open(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(path, raw)
	if err != nil {
		return nil, err
	}
	logger.Infof(f, "loaded %d bytes, %d top level boxes", len(raw), len(f.Boxes))
	return f, nil
}

// Parse builds a File from bytes already in memory. The name is only used
// for messages.
func Parse(name string, raw []byte) (*File, error) {
	boxes, err := mp4io.ParseAll(raw)
	if err != nil {
		return nil, fmt.Errorf("mp4: %s: %w", name, err)
	}
	return &File{Path: name, Boxes: boxes, raw: raw}, nil
}

// Bytes serializes the current box tree.
func (f *File) Bytes() ([]byte, error) {
	return mp4io.WriteAll(f.Boxes)
}

// Save writes the current box tree to path.
func (f *File) Save(path string) error {
	out, err := f.Bytes()
	if err != nil {
		return fmt.Errorf("mp4: %s: %w", f.Path, err)
	}
	if err = os.WriteFile(path, out, 0o644); err != nil {
		return err
	}
	logger.Infof(f, "saved %d bytes to %s", len(out), path)
	return nil
}

// Verify re-encodes the tree and compares it with the source bytes.
func (f *File) Verify() error {
	out, err := f.Bytes()
	if err != nil {
		return fmt.Errorf("mp4: %s: %w", f.Path, err)
	}
	if bytes.Equal(out, f.raw) {
		return nil
	}
	at := 0
	for at < len(out) && at < len(f.raw) && out[at] == f.raw[at] {
		at++
	}
	logger.Warningf(f, "round trip differs at offset %d", at)
	return fmt.Errorf("%w: first difference at offset %d (%d vs %d bytes)", ErrRoundTrip, at, len(out), len(f.raw))
}

// Rewrite parses src and writes it back to dst.
func Rewrite(src, dst string) error {
	f, err := Open(src)
	if err != nil {
		return err
	}
	return f.Save(dst)
}

// ReadFile parses the file at path and returns its boxes.
func ReadFile(path string) (mp4io.Forest, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	return f.Boxes, nil
}

// WriteFile serializes forest to path.
func WriteFile(path string, forest mp4io.Forest) error {
	return (&File{Path: path, Boxes: forest}).Save(path)
}
