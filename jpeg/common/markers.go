package common

// JPEG marker constants
const (
	// Start of Image
	MarkerSOI = 0xFFD8

	// End of Image
	MarkerEOI = 0xFFD9

	// Start of Frame (Baseline DCT)
	MarkerSOF0 = 0xFFC0

	// Define Huffman Table
	MarkerDHT = 0xFFC4

	// Define Quantization Table
	MarkerDQT = 0xFFDB

	// Define Restart Interval
	MarkerDRI = 0xFFDD

	// Start of Scan
	MarkerSOS = 0xFFDA

	// Application segments
	MarkerAPP0 = 0xFFE0

	// Comment
	MarkerCOM = 0xFFFE

	// Restart markers
	MarkerRST0 = 0xFFD0
	MarkerRST7 = 0xFFD7
)

// IsRST returns true if the marker is a Restart marker
func IsRST(marker uint16) bool {
	return marker >= MarkerRST0 && marker <= MarkerRST7
}

// HasLength returns true if the marker is followed by a length field
func HasLength(marker uint16) bool {
	// Markers without length: SOI, EOI, RSTn
	if marker == MarkerSOI || marker == MarkerEOI {
		return false
	}
	return !IsRST(marker)
}
