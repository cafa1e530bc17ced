// Package entropy assembles per-block Huffman symbols from the three color
// channels of a baseline JPEG scan into a single word-aligned, byte-stuffed
// entropy-coded segment.
//
// Symbols are pushed per channel in zig-zag block order; the package packs
// them MSB-first into 32-bit words, interleaves the channels in scan order
// (Y, Cb, Cr), inserts a 0x00 byte after every 0xFF byte per the JPEG
// standard, and flushes the final partial word at end of image together with
// its valid-bit count.
package entropy

// Channel identifies one of the interleaved color channels.
type Channel int

// Channels in scan order.
const (
	ChannelY Channel = iota
	ChannelCb
	ChannelCr
)

func (c Channel) String() string {
	switch c {
	case ChannelY:
		return "Y"
	case ChannelCb:
		return "Cb"
	case ChannelCr:
		return "Cr"
	}
	return "?"
}

// Limits on symbol field widths for baseline JPEG (Annex F):
// Huffman codes are at most 16 bits, appended magnitudes at most 11.
const (
	MaxCodeLen      = 16
	MaxMagnitudeLen = 11
)

// Symbol is one entropy symbol as produced by the upstream coefficient coder:
// a Huffman code of CodeLen bits, optionally followed by MagLen raw magnitude
// bits. Either length may be zero; a zero-length symbol contributes nothing
// to the stream (a legal end-of-block with no payload, for example).
type Symbol struct {
	Code    uint16 // Huffman code, right-justified in CodeLen bits
	CodeLen int    // 0..16
	Mag     uint16 // magnitude bits, right-justified in MagLen bits
	MagLen  int    // 0..11
}

// Len returns the total number of bits the symbol contributes to the stream.
func (s Symbol) Len() int {
	return s.CodeLen + s.MagLen
}
