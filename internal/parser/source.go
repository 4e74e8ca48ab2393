package parser

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Font streams come in two transport forms: the plain text form, whose
// first bytes are the "flf2" magic, and a zip-compressed container holding
// a single entry with the same stream inside. NewSource sniffs the leading
// four bytes and returns a reader positioned at the start of the plain
// stream either way.

var (
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
	fontMagic = []byte("flf2")
)

// NewSource wraps r in a byte-stream provider for font parsing. Any leading
// four bytes other than the zip or font magic are a format error.
func NewSource(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("%w: stream shorter than magic number", ErrFormat)
	}

	switch {
	case bytes.Equal(head, fontMagic):
		return br, nil
	case bytes.Equal(head, zipMagic):
		return unwrapZip(br)
	default:
		return nil, fmt.Errorf("%w: unrecognized magic number %q", ErrFormat, head)
	}
}

// unwrapZip opens the first entry of a zip-wrapped font. The archive form
// conventionally holds exactly one entry; any extras are ignored.
func unwrapZip(r io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading zip-wrapped font: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("%w: zip container holds no entries", ErrFormat)
	}

	entry, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer entry.Close()

	content, err := io.ReadAll(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	// The wrapped entry must itself be the plain form
	if !bytes.HasPrefix(content, fontMagic) {
		return nil, fmt.Errorf("%w: zip entry %q is not a font stream", ErrFormat, zr.File[0].Name)
	}

	return bytes.NewReader(content), nil
}
