package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/golang/snappy"
	"gopkg.in/yaml.v3"
)

// magic prefixes a compressed snapshot. Plain snapshots are YAML text and
// can never start with these bytes.
var magic = []byte{0x00, 'S', 'P', 'Z'}

// Options control encoding
type Options struct {
	// Compress frames the YAML in a checksummed snappy block.
	Compress bool
}

// Encode writes doc to w and returns the number of bytes written.
// Compressed format: [magic:4][crc32:4][snappy block].
func Encode(w io.Writer, doc Document, opts Options) (int, error) {
	if doc.Format == "" {
		doc.Format = FormatVersion
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot: %w", err)
	}

	if opts.Compress {
		block := snappy.Encode(nil, data)
		var header [8]byte
		copy(header[:4], magic)
		binary.BigEndian.PutUint32(header[4:], crc32.ChecksumIEEE(block))
		data = append(header[:], block...)
	}

	n, err := w.Write(data)
	if err != nil {
		return n, fmt.Errorf("write snapshot: %w", err)
	}
	return n, nil
}

// Decode reads a plain or compressed snapshot. It returns the document, the
// number of bytes read and whether the input was compressed.
func Decode(r io.Reader) (Document, int, bool, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, 0, false, fmt.Errorf("read snapshot: %w", err)
	}

	data := raw
	compressed := bytes.HasPrefix(raw, magic)
	if compressed {
		if len(raw) < 8 {
			return Document{}, len(raw), true, fmt.Errorf("%w: truncated header", ErrCorrupt)
		}
		block := raw[8:]
		if crc32.ChecksumIEEE(block) != binary.BigEndian.Uint32(raw[4:8]) {
			return Document{}, len(raw), true, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
		}
		data, err = snappy.Decode(nil, block)
		if err != nil {
			return Document{}, len(raw), true, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, len(raw), compressed, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Format != FormatVersion {
		return Document{}, len(raw), compressed, fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.Format)
	}
	return doc, len(raw), compressed, nil
}
