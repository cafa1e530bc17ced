package common

// HuffmanCode represents one canonical Huffman code
type HuffmanCode struct {
	Code uint16 // The Huffman code
	Len  int    // Code length in bits
}

// BuildHuffmanCodes builds the canonical encoder-side code for every symbol
// value in a table, indexed by value.
func BuildHuffmanCodes(table *HuffmanTable) []HuffmanCode {
	codes := make([]HuffmanCode, 256)

	code := uint16(0)
	p := 0

	for l := 0; l < 16; l++ {
		for i := 0; i < table.Bits[l]; i++ {
			if p < len(table.Values) {
				val := table.Values[p]
				codes[val] = HuffmanCode{
					Code: code,
					Len:  l + 1,
				}
				code++
				p++
			}
		}
		code <<= 1
	}

	return codes
}

// EncodeCategory returns the category (bit count) and magnitude bits for a
// DC difference or AC coefficient value, per Annex F.
func EncodeCategory(val int) (cat int, bits uint32) {
	if val == 0 {
		return 0, 0
	}

	absVal := val
	if absVal < 0 {
		absVal = -absVal
	}

	cat = 1
	for (1 << uint(cat)) <= absVal {
		cat++
	}

	if val > 0 {
		bits = uint32(val)
	} else {
		bits = uint32((1 << uint(cat)) + val - 1)
	}

	return cat, bits
}
