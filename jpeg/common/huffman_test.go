package common

import (
	"bytes"
	"testing"
)

// bitWriter packs MSB-first bits and applies scan-data stuffing, so the
// decoder under test sees the same byte stream an encoder would produce.
type bitWriter struct {
	buf  bytes.Buffer
	acc  uint32
	nAcc int
}

func (w *bitWriter) write(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		w.acc = w.acc<<1 | (v >> uint(i) & 1)
		w.nAcc++
		if w.nAcc == 8 {
			b := byte(w.acc)
			w.buf.WriteByte(b)
			if b == 0xFF {
				w.buf.WriteByte(0x00)
			}
			w.acc, w.nAcc = 0, 0
		}
	}
}

func (w *bitWriter) close() {
	if w.nAcc > 0 {
		w.write(0x7F, 8-w.nAcc) // 1-pad the final byte
	}
}

func TestHuffmanRoundTrip(t *testing.T) {
	table := BuildStandardHuffmanTable(StandardACLuminanceBits, StandardACLuminanceValues)
	codes := BuildHuffmanCodes(table)

	symbols := []byte{0x00, 0x01, 0x11, 0xF0, 0x7A, 0xFA, 0x04, 0x21}

	var w bitWriter
	for _, s := range symbols {
		c := codes[s]
		if c.Len == 0 {
			t.Fatalf("symbol %02X has no code", s)
		}
		w.write(uint32(c.Code), c.Len)
	}
	w.close()

	d := NewHuffmanDecoder(bytes.NewReader(w.buf.Bytes()))
	for i, want := range symbols {
		got, err := d.Decode(table)
		if err != nil {
			t.Fatalf("Decode symbol %d failed: %v", i, err)
		}
		if got != want {
			t.Errorf("symbol %d = %02X, want %02X", i, got, want)
		}
	}
}

func TestHuffmanDecoderUnstuffing(t *testing.T) {
	table := BuildStandardHuffmanTable(StandardDCLuminanceBits, StandardDCLuminanceValues)

	// 0xFF 0x00 in the stream is a stuffed data byte, a bare 0xFF is a
	// marker and must fail
	d := NewHuffmanDecoder(bytes.NewReader([]byte{0xFF, 0x00}))
	if _, err := d.ReadBits(8); err != nil {
		t.Fatalf("stuffed byte rejected: %v", err)
	}

	d = NewHuffmanDecoder(bytes.NewReader([]byte{0xFF, 0xD9}))
	if _, err := d.Decode(table); err != ErrInvalidData {
		t.Errorf("marker in scan data: err = %v, want ErrInvalidData", err)
	}
}

func TestEncodeCategory(t *testing.T) {
	tests := []struct {
		val      int
		wantCat  int
		wantBits uint32
	}{
		{0, 0, 0},
		{1, 1, 1},
		{-1, 1, 0},
		{2, 2, 2},
		{3, 2, 3},
		{-2, 2, 1},
		{-3, 2, 0},
		{7, 3, 7},
		{-7, 3, 0},
		{255, 8, 255},
		{-255, 8, 0},
		{1023, 10, 1023},
		{-1024, 11, 1023},
	}

	for _, tt := range tests {
		cat, bits := EncodeCategory(tt.val)
		if cat != tt.wantCat || bits != tt.wantBits {
			t.Errorf("EncodeCategory(%d) = (%d, %d), want (%d, %d)",
				tt.val, cat, bits, tt.wantCat, tt.wantBits)
		}
	}
}

func TestEncodeCategoryReceiveExtend(t *testing.T) {
	// Every value must survive category encoding and RECEIVE/EXTEND
	for val := -1024; val <= 1024; val++ {
		cat, bits := EncodeCategory(val)

		var w bitWriter
		w.write(bits, cat)
		w.close()

		if cat == 0 {
			if val != 0 {
				t.Fatalf("category 0 for value %d", val)
			}
			continue
		}

		d := NewHuffmanDecoder(bytes.NewReader(w.buf.Bytes()))
		got, err := d.ReceiveExtend(cat)
		if err != nil {
			t.Fatalf("ReceiveExtend(%d) for value %d failed: %v", cat, val, err)
		}
		if got != val {
			t.Errorf("value %d: category %d bits %b decoded to %d", val, cat, bits, got)
		}
	}
}

func TestBuildHuffmanCodesCanonical(t *testing.T) {
	table := BuildStandardHuffmanTable(StandardDCLuminanceBits, StandardDCLuminanceValues)
	codes := BuildHuffmanCodes(table)

	// Annex K.3.1 canonical assignments
	want := []struct {
		value byte
		code  uint16
		len   int
	}{
		{0, 0x00, 2},
		{1, 0x02, 3},
		{2, 0x03, 3},
		{5, 0x06, 3},
		{6, 0x0E, 4},
		{7, 0x1E, 5},
		{11, 0x1FE, 9},
	}
	for _, tt := range want {
		c := codes[tt.value]
		if c.Code != tt.code || c.Len != tt.len {
			t.Errorf("value %d: code %X/%d, want %X/%d", tt.value, c.Code, c.Len, tt.code, tt.len)
		}
	}
}

func TestBuildHuffmanCodesPrefixFree(t *testing.T) {
	for _, tc := range []struct {
		name   string
		bits   [16]int
		values []byte
	}{
		{"DC luminance", StandardDCLuminanceBits, StandardDCLuminanceValues},
		{"DC chrominance", StandardDCChrominanceBits, StandardDCChrominanceValues},
		{"AC luminance", StandardACLuminanceBits, StandardACLuminanceValues},
		{"AC chrominance", StandardACChrominanceBits, StandardACChrominanceValues},
	} {
		t.Run(tc.name, func(t *testing.T) {
			table := BuildStandardHuffmanTable(tc.bits, tc.values)
			codes := BuildHuffmanCodes(table)

			type entry struct {
				code uint16
				len  int
			}
			var assigned []entry
			for _, v := range tc.values {
				c := codes[v]
				if c.Len == 0 {
					t.Fatalf("value %02X has no code", v)
				}
				if c.Len > 16 {
					t.Fatalf("value %02X has %d-bit code", v, c.Len)
				}
				assigned = append(assigned, entry{c.Code, c.Len})
			}

			for i, a := range assigned {
				for j, b := range assigned {
					if i == j {
						continue
					}
					if a.len <= b.len && a.code == b.code>>uint(b.len-a.len) {
						t.Fatalf("code %X/%d is a prefix of %X/%d", a.code, a.len, b.code, b.len)
					}
				}
			}
		})
	}
}

// Every value of every standard table round-trips through Decode, covering
// the 8-bit lookup for short codes and the bit-by-bit path for long ones.
func TestHuffmanDecodeAllSymbols(t *testing.T) {
	cases := []struct {
		name   string
		bits   [16]int
		values []byte
	}{
		{"DCLuminance", StandardDCLuminanceBits, StandardDCLuminanceValues},
		{"DCChrominance", StandardDCChrominanceBits, StandardDCChrominanceValues},
		{"ACLuminance", StandardACLuminanceBits, StandardACLuminanceValues},
		{"ACChrominance", StandardACChrominanceBits, StandardACChrominanceValues},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table := BuildStandardHuffmanTable(tc.bits, tc.values)
			codes := BuildHuffmanCodes(table)

			var w bitWriter
			for _, v := range tc.values {
				c := codes[v]
				w.write(uint32(c.Code), c.Len)
			}
			w.close()

			d := NewHuffmanDecoder(bytes.NewReader(w.buf.Bytes()))
			for i, want := range tc.values {
				got, err := d.Decode(table)
				if err != nil {
					t.Fatalf("Decode symbol %d: %v", i, err)
				}
				if got != want {
					t.Fatalf("symbol %d = %02X, want %02X", i, got, want)
				}
			}
		})
	}
}

func TestHuffmanLookupMatchesCanonicalCodes(t *testing.T) {
	table := BuildStandardHuffmanTable(StandardACLuminanceBits, StandardACLuminanceValues)

	// 100xxxxx is the single length-3 AC luminance code; the lookup must
	// not file it under the length-2 prefixes
	d := NewHuffmanDecoder(bytes.NewReader([]byte{0x9F, 0x00}))
	got, err := d.Decode(table)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != 0x03 {
		t.Errorf("Decode = %02X, want 03", got)
	}
}
