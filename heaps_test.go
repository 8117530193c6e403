package mdwriter

import (
	"bytes"
	"testing"
)

func TestStringsHeapDedup(t *testing.T) {
	h := NewStringsHeap()
	a := h.Add("Hello")
	b := h.Add("World")
	c := h.Add("Hello")
	if a != c {
		t.Errorf("Add(\"Hello\") twice returned different offsets: %d vs %d", a, c)
	}
	if a == b {
		t.Errorf("distinct strings got the same offset")
	}
}

func TestStringsHeapEmptyStringIsOffsetZero(t *testing.T) {
	h := NewStringsHeap()
	if got := h.Add(""); got != 0 {
		t.Errorf("Add(\"\") = %d, want 0 (the heap's leading empty string)", got)
	}
}

func TestUserStringsHeapNoneIsOffsetZero(t *testing.T) {
	h := NewUserStringsHeap()
	if got := h.AddNone(); got != 0 {
		t.Errorf("AddNone() = %d, want 0", got)
	}
	if got := h.Add("x"); got == 0 {
		t.Errorf("Add(\"x\") = 0, want a non-zero offset")
	}
}

func TestGuidHeapDedupAndOneIndexed(t *testing.T) {
	h := NewGuidHeap()
	var g1, g2 [16]byte
	g1[0] = 1
	g2[0] = 2

	i1 := h.Add(g1)
	i2 := h.Add(g2)
	i1Again := h.Add(g1)

	if i1 != 1 {
		t.Errorf("first Add = %d, want 1 (GUID heap indices are 1-based)", i1)
	}
	if i2 != 2 {
		t.Errorf("second distinct Add = %d, want 2", i2)
	}
	if i1Again != i1 {
		t.Errorf("re-Add of the same GUID got a new index: %d vs %d", i1Again, i1)
	}
}

func TestBlobHeapDedup(t *testing.T) {
	h := NewBlobHeap()
	a := h.Add([]byte{1, 2, 3})
	b := h.Add([]byte{4, 5})
	c := h.Add([]byte{1, 2, 3})
	if a != c {
		t.Errorf("identical blobs got different offsets: %d vs %d", a, c)
	}
	if a == b {
		t.Errorf("distinct blobs got the same offset")
	}
}

func TestCompressedUintRoundTrip(t *testing.T) {
	tests := []uint32{0, 1, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFFFF}
	for _, v := range tests {
		var buf bytes.Buffer
		writeCompressedUint(&buf, v)
		got, n := readCompressedUint(buf.Bytes())
		if n == 0 {
			t.Fatalf("readCompressedUint failed to decode %d back from %x", v, buf.Bytes())
		}
		if got != v {
			t.Errorf("round-trip(%d) = %d", v, got)
		}
		if n != buf.Len() {
			t.Errorf("round-trip(%d) consumed %d bytes, want %d", v, n, buf.Len())
		}
	}
}

func TestCompressedUintWidthBoundaries(t *testing.T) {
	// ECMA-335 §II.23.2: 0x7F is the largest 1-byte value, 0x80 is the
	// smallest 2-byte value.
	var small, large bytes.Buffer
	writeCompressedUint(&small, 0x7F)
	writeCompressedUint(&large, 0x80)
	if small.Len() != 1 {
		t.Errorf("writeCompressedUint(0x7F) wrote %d bytes, want 1", small.Len())
	}
	if large.Len() != 2 {
		t.Errorf("writeCompressedUint(0x80) wrote %d bytes, want 2", large.Len())
	}
}
