package common

import (
	"bytes"
	"testing"
)

func TestSegmentRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	payload := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	if err := w.WriteMarker(MarkerSOI); err != nil {
		t.Fatalf("WriteMarker failed: %v", err)
	}
	if err := w.WriteSegment(MarkerCOM, payload); err != nil {
		t.Fatalf("WriteSegment failed: %v", err)
	}
	if err := w.WriteMarker(MarkerEOI); err != nil {
		t.Fatalf("WriteMarker failed: %v", err)
	}

	r := NewReader(&buf)

	marker, err := r.ReadMarker()
	if err != nil || marker != MarkerSOI {
		t.Fatalf("ReadMarker = %04X, %v, want SOI", marker, err)
	}

	marker, err = r.ReadMarker()
	if err != nil || marker != MarkerCOM {
		t.Fatalf("ReadMarker = %04X, %v, want COM", marker, err)
	}
	data, err := r.ReadSegment()
	if err != nil {
		t.Fatalf("ReadSegment failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("segment data = % X, want % X", data, payload)
	}

	marker, err = r.ReadMarker()
	if err != nil || marker != MarkerEOI {
		t.Fatalf("ReadMarker = %04X, %v, want EOI", marker, err)
	}
}

func TestReadMarkerSkipsFill(t *testing.T) {
	// Fill bytes (repeated 0xFF) before a marker code are legal
	r := NewReader(bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xD8}))
	marker, err := r.ReadMarker()
	if err != nil || marker != MarkerSOI {
		t.Errorf("ReadMarker = %04X, %v, want SOI", marker, err)
	}
}

func TestReadMarkerRejectsNonMarker(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x12, 0x34}))
	if _, err := r.ReadMarker(); err != ErrInvalidMarker {
		t.Errorf("err = %v, want ErrInvalidMarker", err)
	}

	r = NewReader(bytes.NewReader([]byte{0xFF, 0x00}))
	if _, err := r.ReadMarker(); err != ErrInvalidMarker {
		t.Errorf("stuffed byte: err = %v, want ErrInvalidMarker", err)
	}
}

func TestMarkerClassification(t *testing.T) {
	if !IsRST(MarkerRST0) || !IsRST(MarkerRST7) {
		t.Error("RST markers not classified as RST")
	}
	if IsRST(MarkerSOI) {
		t.Error("SOI classified as RST")
	}

	for _, m := range []uint16{MarkerSOI, MarkerEOI, MarkerRST0, MarkerRST7} {
		if HasLength(m) {
			t.Errorf("marker %04X should have no length field", m)
		}
	}
	for _, m := range []uint16{MarkerSOF0, MarkerDHT, MarkerDQT, MarkerSOS, MarkerCOM, MarkerDRI} {
		if !HasLength(m) {
			t.Errorf("marker %04X should have a length field", m)
		}
	}
}
