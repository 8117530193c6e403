package mdwriter

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
)

// writeCompressedUint appends the ECMA-335 §II.23.2 compressed unsigned
// integer encoding of v to buf. Values < 0x80 take one byte, < 0x4000 take
// two, otherwise four (the format caps at 0x1FFFFFFF; callers never exceed
// that for a single heap blob/string length in this writer).
func writeCompressedUint(buf *bytes.Buffer, v uint32) {
	switch {
	case v < 0x80:
		buf.WriteByte(byte(v))
	case v < 0x4000:
		buf.WriteByte(byte(v>>8) | 0x80)
		buf.WriteByte(byte(v))
	default:
		buf.WriteByte(byte(v>>24) | 0xC0)
		buf.WriteByte(byte(v >> 16))
		buf.WriteByte(byte(v >> 8))
		buf.WriteByte(byte(v))
	}
}

// readCompressedUint decodes one ECMA-335 §II.23.2 compressed unsigned
// integer starting at buf[0], returning the value and the number of bytes
// it occupied. Used only when reindexing a seeded heap for preservation;
// the builder itself only ever writes this format, never reads it back.
func readCompressedUint(buf []byte) (uint32, int) {
	if len(buf) == 0 {
		return 0, 0
	}
	b0 := buf[0]
	switch {
	case b0&0x80 == 0:
		return uint32(b0), 1
	case b0&0xC0 == 0x80:
		if len(buf) < 2 {
			return 0, 0
		}
		return uint32(b0&0x3F)<<8 | uint32(buf[1]), 2
	default:
		if len(buf) < 4 {
			return 0, 0
		}
		return uint32(b0&0x1F)<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), 4
	}
}

// StringsHeap is the #Strings heap service: UTF-8, null-terminated,
// content-deduplicated byte store. Offset 0 is always the empty string
// (§4.1).
type StringsHeap struct {
	buf  bytes.Buffer
	seen map[string]uint32
}

// NewStringsHeap returns an empty #Strings heap with offset 0 reserved.
func NewStringsHeap() *StringsHeap {
	h := &StringsHeap{seen: make(map[string]uint32)}
	h.buf.WriteByte(0)
	return h
}

// Add inserts s (UTF-8 encoded, nul-terminated) and returns its offset.
// The empty string always returns 0 without growing the heap.
func (h *StringsHeap) Add(s string) uint32 {
	if s == "" {
		return 0
	}
	if off, ok := h.seen[s]; ok {
		return off
	}
	off := uint32(h.buf.Len())
	h.buf.WriteString(s)
	h.buf.WriteByte(0)
	h.seen[s] = off
	return off
}

// Bytes returns the final heap content. Valid only after the build
// completes (§3 Lifecycles: write-once, then read-only).
func (h *StringsHeap) Bytes() []byte { return h.buf.Bytes() }

// Len returns the current size of the heap in bytes.
func (h *StringsHeap) Len() uint32 { return uint32(h.buf.Len()) }

// seedRaw loads a previously-built #Strings stream verbatim as the initial
// content, for preservation mode (§4.1 "Preservation seeding"). It also
// reindexes every nul-terminated entry so subsequent Add calls for
// already-present strings return their original offsets.
func (h *StringsHeap) seedRaw(raw []byte) {
	h.buf.Reset()
	h.buf.Write(raw)
	h.seen = make(map[string]uint32)
	off := uint32(0)
	for off < uint32(len(raw)) {
		end := off
		for end < uint32(len(raw)) && raw[end] != 0 {
			end++
		}
		if end > off {
			h.seen[string(raw[off:end])] = off
		}
		off = end + 1
	}
}

// usTerminatorByte returns the #US heap's terminator byte for units: 1 if
// any UTF-16 code unit requires the "non-trivial" marker, else 0, per the
// ECMA-335 §II.24.2.4 rule spelled out in spec.md §4.1.
func usTerminatorByte(units []uint16) byte {
	for _, u := range units {
		if u>>8 != 0 {
			return 1
		}
		switch u {
		case 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
			0x0E, 0x0F, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
			0x18, 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E, 0x1F,
			0x27, 0x2D, 0x7F:
			return 1
		}
	}
	return 0
}

var utf16LEEncoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
var utf16LEDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// utf16LEDecode is the mirror image of the teacher's DecodeUTF16String
// (helper.go), used only to reindex a seeded #US heap during preservation.
func utf16LEDecode(b []byte) (string, error) {
	s, err := utf16LEDecoder.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

// encodeUTF16LE converts s to UTF-16LE bytes without a BOM, mirroring the
// inverse of the teacher's DecodeUTF16String (helper.go), which uses the
// same golang.org/x/text/encoding/unicode package in the decode direction.
func encodeUTF16LE(s string) []byte {
	out, err := utf16LEEncoder.Bytes([]byte(s))
	if err != nil {
		// Every Go string is valid UTF-8 by construction; the encoder can
		// only fail on malformed input, which cannot occur here.
		return nil
	}
	return out
}

// utf16Units returns the UTF-16 code units of the UTF-16LE bytes b, used only to classify the
// terminator byte (§4.1); the actual bytes on the wire come from
// encodeUTF16LE.
func utf16Units(b []byte) []uint16 {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])|uint16(b[i+1])<<8)
	}
	return units
}

// UserStringsHeap is the #US heap service: length-prefixed UTF-16LE blobs
// with a trailing classification byte, deduplicated by content. Offset 0 is
// reserved (§4.1).
type UserStringsHeap struct {
	buf  bytes.Buffer
	seen map[string]uint32
}

// NewUserStringsHeap returns an empty #US heap with offset 0 reserved.
func NewUserStringsHeap() *UserStringsHeap {
	h := &UserStringsHeap{seen: make(map[string]uint32)}
	h.buf.WriteByte(0)
	return h
}

// Add inserts s and returns its offset. An empty heap request (the zero
// value of string with no distinct "None" in Go) is handled by callers
// passing AddNone instead; Add("") legitimately encodes a zero-length user
// string (length prefix 1, just the terminator byte), distinct from "no
// string at all".
func (h *UserStringsHeap) Add(s string) uint32 {
	if off, ok := h.seen[s]; ok {
		return off
	}
	encoded := encodeUTF16LE(s)
	term := usTerminatorByte(utf16Units(encoded))
	off := uint32(h.buf.Len())
	writeCompressedUint(&h.buf, uint32(len(encoded))+1)
	h.buf.Write(encoded)
	h.buf.WriteByte(term)
	h.seen[s] = off
	return off
}

// AddNone returns 0 without growing the heap, for the "no user string"
// case (§4.1: `add(None)` returns 0).
func (h *UserStringsHeap) AddNone() uint32 { return 0 }

// Bytes returns the final heap content.
func (h *UserStringsHeap) Bytes() []byte { return h.buf.Bytes() }

// Len returns the current size of the heap in bytes.
func (h *UserStringsHeap) Len() uint32 { return uint32(h.buf.Len()) }

func (h *UserStringsHeap) seedRaw(raw []byte) {
	h.buf.Reset()
	h.buf.Write(raw)
	h.seen = make(map[string]uint32)
	off := uint32(0)
	for off < uint32(len(raw)) {
		n, width := readCompressedUint(raw[off:])
		if width == 0 {
			break
		}
		if n == 0 {
			// The reserved empty entry at offset 0 (or padding).
			off += uint32(width)
			continue
		}
		start := off + uint32(width)
		end := start + n
		if end > uint32(len(raw)) {
			break
		}
		// n includes the trailing classification byte; the encoded UTF-16
		// content is the n-1 bytes before it.
		content := raw[start : end-1]
		if s, err := utf16LEDecode(content); err == nil {
			h.seen[s] = off
		}
		off = end
	}
}

// GuidHeap is the #Guid heap service: a 1-based vector of 16-byte entries,
// deduplicated by value. Offset 0 (index 0) means "no guid" (§4.1).
type GuidHeap struct {
	entries [][16]byte
	seen    map[[16]byte]uint32
}

// NewGuidHeap returns an empty #Guid heap.
func NewGuidHeap() *GuidHeap {
	return &GuidHeap{seen: make(map[[16]byte]uint32)}
}

// Add inserts g and returns its 1-based index. The zero guid returns 0
// without growing the heap.
func (h *GuidHeap) Add(g [16]byte) uint32 {
	var zero [16]byte
	if g == zero {
		return 0
	}
	if idx, ok := h.seen[g]; ok {
		return idx
	}
	h.entries = append(h.entries, g)
	idx := uint32(len(h.entries))
	h.seen[g] = idx
	return idx
}

// Bytes returns the heap content as a flat byte slice.
func (h *GuidHeap) Bytes() []byte {
	out := make([]byte, 0, len(h.entries)*16)
	for _, g := range h.entries {
		out = append(out, g[:]...)
	}
	return out
}

// Count returns the number of guids stored.
func (h *GuidHeap) Count() uint32 { return uint32(len(h.entries)) }

func (h *GuidHeap) seedRaw(raw []byte) {
	h.entries = h.entries[:0]
	h.seen = make(map[[16]byte]uint32)
	for off := 0; off+16 <= len(raw); off += 16 {
		var g [16]byte
		copy(g[:], raw[off:off+16])
		h.entries = append(h.entries, g)
		h.seen[g] = uint32(len(h.entries))
	}
}

// BlobHeap is the #Blob heap service: length-prefixed byte sequences
// (compressed unsigned length), deduplicated by content. Offset 0 is the
// empty blob (§4.1).
type BlobHeap struct {
	buf  bytes.Buffer
	seen map[string]uint32
}

// NewBlobHeap returns an empty #Blob heap with offset 0 reserved.
func NewBlobHeap() *BlobHeap {
	h := &BlobHeap{seen: make(map[string]uint32)}
	h.buf.WriteByte(0)
	return h
}

// Add inserts content and returns its offset. A nil or empty slice returns
// 0 without growing the heap.
func (h *BlobHeap) Add(content []byte) uint32 {
	if len(content) == 0 {
		return 0
	}
	key := string(content)
	if off, ok := h.seen[key]; ok {
		return off
	}
	off := uint32(h.buf.Len())
	writeCompressedUint(&h.buf, uint32(len(content)))
	h.buf.Write(content)
	h.seen[key] = off
	return off
}

// Bytes returns the final heap content.
func (h *BlobHeap) Bytes() []byte { return h.buf.Bytes() }

// Len returns the current size of the heap in bytes.
func (h *BlobHeap) Len() uint32 { return uint32(h.buf.Len()) }

func (h *BlobHeap) seedRaw(raw []byte) {
	h.buf.Reset()
	h.buf.Write(raw)
	h.seen = make(map[string]uint32)
	off := uint32(0)
	for off < uint32(len(raw)) {
		n, width := readCompressedUint(raw[off:])
		if width == 0 {
			break
		}
		start := off + uint32(width)
		end := start + n
		if end > uint32(len(raw)) {
			break
		}
		if n > 0 {
			h.seen[string(raw[start:end])] = off
		}
		off = end
	}
}
