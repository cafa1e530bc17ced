package baseline

import (
	"bytes"

	"github.com/cocosip/go-jpeg-encoder/jpeg/common"
	"github.com/cocosip/go-jpeg-encoder/jpeg/entropy"
)

// Encoder represents a JPEG Baseline encoder
type Encoder struct {
	width      int
	height     int
	components int
	quality    int

	qtables  [2][64]int32
	dcCodes  [2][]common.HuffmanCode
	acCodes  [2][]common.HuffmanCode
	dcTables [2]*common.HuffmanTable
	acTables [2]*common.HuffmanTable
}

// Encode encodes pixel data to JPEG Baseline format.
// components: 1 for grayscale, 3 for RGB (encoded as YCbCr 4:4:4)
// quality: 1-100, where 100 is best quality
func Encode(pixelData []byte, width, height, components, quality int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, common.ErrInvalidDimensions
	}

	if components != 1 && components != 3 {
		return nil, common.ErrInvalidComponents
	}

	if quality < 1 || quality > 100 {
		return nil, common.ErrInvalidQuality
	}

	if len(pixelData) < width*height*components {
		return nil, common.ErrBufferTooSmall
	}

	enc := &Encoder{
		width:      width,
		height:     height,
		components: components,
		quality:    quality,
	}

	enc.qtables[0] = common.ScaleQuantTable(common.DefaultLuminanceQuantTable, quality)
	enc.qtables[1] = common.ScaleQuantTable(common.DefaultChrominanceQuantTable, quality)

	enc.dcTables[0] = common.BuildStandardHuffmanTable(
		common.StandardDCLuminanceBits,
		common.StandardDCLuminanceValues,
	)
	enc.acTables[0] = common.BuildStandardHuffmanTable(
		common.StandardACLuminanceBits,
		common.StandardACLuminanceValues,
	)
	enc.dcTables[1] = common.BuildStandardHuffmanTable(
		common.StandardDCChrominanceBits,
		common.StandardDCChrominanceValues,
	)
	enc.acTables[1] = common.BuildStandardHuffmanTable(
		common.StandardACChrominanceBits,
		common.StandardACChrominanceValues,
	)

	enc.dcCodes[0] = common.BuildHuffmanCodes(enc.dcTables[0])
	enc.acCodes[0] = common.BuildHuffmanCodes(enc.acTables[0])
	enc.dcCodes[1] = common.BuildHuffmanCodes(enc.dcTables[1])
	enc.acCodes[1] = common.BuildHuffmanCodes(enc.acTables[1])

	var buf bytes.Buffer
	writer := common.NewWriter(&buf)

	if err := writer.WriteMarker(common.MarkerSOI); err != nil {
		return nil, err
	}

	if err := enc.writeDQT(writer); err != nil {
		return nil, err
	}

	if err := enc.writeSOF0(writer); err != nil {
		return nil, err
	}

	if err := enc.writeDHT(writer); err != nil {
		return nil, err
	}

	if err := enc.writeSOS(writer, pixelData); err != nil {
		return nil, err
	}

	if err := writer.WriteMarker(common.MarkerEOI); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// writeDQT writes Define Quantization Table segments
func (enc *Encoder) writeDQT(writer *common.Writer) error {
	numTables := 1
	if enc.components == 3 {
		numTables = 2
	}

	for i := 0; i < numTables; i++ {
		data := make([]byte, 1+64)
		data[0] = byte(i) // Precision=0 (8-bit), Table ID=i

		// Write in zigzag order
		for j := 0; j < 64; j++ {
			data[1+j] = byte(enc.qtables[i][common.ZigZag[j]])
		}

		if err := writer.WriteSegment(common.MarkerDQT, data); err != nil {
			return err
		}
	}

	return nil
}

// writeSOF0 writes Start of Frame (Baseline DCT)
func (enc *Encoder) writeSOF0(writer *common.Writer) error {
	data := make([]byte, 6+enc.components*3)

	data[0] = 8                     // Precision: 8 bits
	data[1] = byte(enc.height >> 8) // Height high byte
	data[2] = byte(enc.height)      // Height low byte
	data[3] = byte(enc.width >> 8)  // Width high byte
	data[4] = byte(enc.width)       // Width low byte
	data[5] = byte(enc.components)  // Number of components

	if enc.components == 1 {
		data[6] = 1    // Component ID
		data[7] = 0x11 // Sampling factors: 1x1
		data[8] = 0    // Quantization table 0
	} else {
		// YCbCr 4:4:4: one block per component per MCU, so the scan
		// interleave is exactly Y, Cb, Cr
		data[6] = 1    // Y component ID
		data[7] = 0x11 // Sampling factors: 1x1
		data[8] = 0    // Quantization table 0

		data[9] = 2     // Cb component ID
		data[10] = 0x11 // Sampling factors: 1x1
		data[11] = 1    // Quantization table 1

		data[12] = 3    // Cr component ID
		data[13] = 0x11 // Sampling factors: 1x1
		data[14] = 1    // Quantization table 1
	}

	return writer.WriteSegment(common.MarkerSOF0, data)
}

// writeDHT writes Define Huffman Table segments
func (enc *Encoder) writeDHT(writer *common.Writer) error {
	tables := []struct {
		class byte
		id    byte
		table *common.HuffmanTable
	}{
		{0, 0, enc.dcTables[0]}, // DC table 0 (luminance)
		{1, 0, enc.acTables[0]}, // AC table 0 (luminance)
	}

	if enc.components == 3 {
		tables = append(tables,
			struct {
				class byte
				id    byte
				table *common.HuffmanTable
			}{0, 1, enc.dcTables[1]}, // DC table 1 (chrominance)
			struct {
				class byte
				id    byte
				table *common.HuffmanTable
			}{1, 1, enc.acTables[1]}, // AC table 1 (chrominance)
		)
	}

	for _, t := range tables {
		totalValues := 0
		for _, count := range t.table.Bits {
			totalValues += count
		}

		data := make([]byte, 1+16+totalValues)
		data[0] = (t.class << 4) | t.id

		for i := 0; i < 16; i++ {
			data[1+i] = byte(t.table.Bits[i])
		}

		copy(data[17:], t.table.Values)

		if err := writer.WriteSegment(common.MarkerDHT, data); err != nil {
			return err
		}
	}

	return nil
}

// writeSOS writes Start of Scan and scan data
func (enc *Encoder) writeSOS(writer *common.Writer, pixelData []byte) error {
	data := make([]byte, 1+enc.components*2+3)
	data[0] = byte(enc.components)

	if enc.components == 1 {
		data[1] = 1    // Component ID
		data[2] = 0x00 // DC table 0, AC table 0
	} else {
		data[1] = 1    // Y component ID
		data[2] = 0x00 // DC table 0, AC table 0
		data[3] = 2    // Cb component ID
		data[4] = 0x11 // DC table 1, AC table 1
		data[5] = 3    // Cr component ID
		data[6] = 0x11 // DC table 1, AC table 1
	}

	// Spectral selection
	data[1+enc.components*2] = 0  // Start of spectral selection
	data[2+enc.components*2] = 63 // End of spectral selection
	data[3+enc.components*2] = 0  // Successive approximation

	if err := writer.WriteSegment(common.MarkerSOS, data); err != nil {
		return err
	}

	return enc.encodeScan(writer, pixelData)
}

// encodeScan pushes every block's symbols through the entropy pipeline and
// writes the stuffed scan data
func (enc *Encoder) encodeScan(writer *common.Writer, pixelData []byte) error {
	var scanBuf bytes.Buffer
	pipe, err := entropy.NewPipeline(&scanBuf, enc.components)
	if err != nil {
		return err
	}

	var planes [3][]byte
	if enc.components == 1 {
		planes[0] = pixelData
	} else {
		planes = enc.rgbToYCbCr(pixelData)
	}

	var dcPred [3]int

	blocksWide := common.DivCeil(enc.width, 8)
	blocksHigh := common.DivCeil(enc.height, 8)

	// One block per component per MCU, in scan order
	for by := 0; by < blocksHigh; by++ {
		for bx := 0; bx < blocksWide; bx++ {
			for c := 0; c < enc.components; c++ {
				tableIdx := 0
				if c > 0 {
					tableIdx = 1
				}
				ch := entropy.Channel(c)
				if err := enc.encodeBlock(pipe, ch, planes[c], bx, by, &dcPred[c], tableIdx); err != nil {
					return err
				}
				if err := pipe.EndBlock(ch); err != nil {
					return err
				}
			}
		}
	}

	info, err := pipe.Flush()
	if err != nil {
		return err
	}

	return writer.WriteBytes(padScan(scanBuf.Bytes(), info.ORC))
}

// padScan applies the standard's 1-bit padding to the final partial byte.
// The entropy pipeline zero-pads beyond the ORC-declared valid length; the
// assembler owns the padding convention, and must stuff the byte itself if
// the padding turns it into 0xFF.
func padScan(data []byte, orc int) []byte {
	rem := orc % 8
	if rem == 0 || len(data) == 0 {
		return data
	}
	last := len(data) - 1
	data[last] |= byte(1<<uint(8-rem)) - 1
	if data[last] == 0xFF {
		data = append(data, 0x00)
	}
	return data
}

// rgbToYCbCr converts interleaved RGB to three full-resolution planes
func (enc *Encoder) rgbToYCbCr(rgb []byte) [3][]byte {
	n := enc.width * enc.height
	y := make([]byte, n)
	cb := make([]byte, n)
	cr := make([]byte, n)

	for i := 0; i < n; i++ {
		r := int(rgb[i*3+0])
		g := int(rgb[i*3+1])
		b := int(rgb[i*3+2])

		yy := (19595*r + 38470*g + 7471*b + 32768) >> 16
		cbVal := (-11056*r - 21712*g + 32768*b + 8421376) >> 16
		crVal := (32768*r - 27440*g - 5328*b + 8421376) >> 16

		y[i] = byte(common.Clamp(yy, 0, 255))
		cb[i] = byte(common.Clamp(cbVal, 0, 255))
		cr[i] = byte(common.Clamp(crVal, 0, 255))
	}

	return [3][]byte{y, cb, cr}
}

// encodeBlock transforms one 8x8 block and pushes its symbols into the
// pipeline: the DC category code with its magnitude bits, then the
// run-length/size AC codes, then an end-of-block code if zeros remain.
func (enc *Encoder) encodeBlock(pipe *entropy.Pipeline, ch entropy.Channel, plane []byte, blockX, blockY int, dcPred *int, tableIdx int) error {
	// Extract the block, replicating edge samples for partial blocks
	var block [64]byte
	for y := 0; y < 8; y++ {
		srcY := blockY*8 + y
		if srcY >= enc.height {
			srcY = enc.height - 1
		}
		for x := 0; x < 8; x++ {
			srcX := blockX*8 + x
			if srcX >= enc.width {
				srcX = enc.width - 1
			}
			block[y*8+x] = plane[srcY*enc.width+srcX]
		}
	}

	var coef [64]int32
	common.DCT(block[:], 8, coef[:])

	qtable := &enc.qtables[tableIdx]
	for i := 0; i < 64; i++ {
		if coef[i] >= 0 {
			coef[i] = (coef[i] + qtable[i]/2) / qtable[i]
		} else {
			coef[i] = (coef[i] - qtable[i]/2) / qtable[i]
		}
	}

	// DC coefficient
	dcDiff := int(coef[0]) - *dcPred
	*dcPred = int(coef[0])

	cat, bits := common.EncodeCategory(dcDiff)
	dcCode := enc.dcCodes[tableIdx][cat]
	if err := pipe.PushSymbol(ch, entropy.Symbol{
		Code:    dcCode.Code,
		CodeLen: dcCode.Len,
		Mag:     uint16(bits),
		MagLen:  cat,
	}); err != nil {
		return err
	}

	// AC coefficients
	acCode := enc.acCodes[tableIdx]
	zeroRun := 0

	for k := 1; k < 64; k++ {
		val := int(coef[common.ZigZag[k]])

		if val == 0 {
			zeroRun++
			continue
		}

		for zeroRun >= 16 {
			// ZRL: 16 zeros
			code := acCode[0xF0]
			if err := pipe.PushSymbol(ch, entropy.Symbol{Code: code.Code, CodeLen: code.Len}); err != nil {
				return err
			}
			zeroRun -= 16
		}

		cat, bits := common.EncodeCategory(val)
		rs := byte((zeroRun << 4) | cat)
		code := acCode[rs]
		if err := pipe.PushSymbol(ch, entropy.Symbol{
			Code:    code.Code,
			CodeLen: code.Len,
			Mag:     uint16(bits),
			MagLen:  cat,
		}); err != nil {
			return err
		}

		zeroRun = 0
	}

	// EOB if there are trailing zeros
	if zeroRun > 0 {
		code := acCode[0x00]
		if err := pipe.PushSymbol(ch, entropy.Symbol{Code: code.Code, CodeLen: code.Len}); err != nil {
			return err
		}
	}

	return nil
}
