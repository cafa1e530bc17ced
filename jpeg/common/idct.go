package common

// IDCT reconstructs one 8x8 block of samples from its frequency
// coefficients. coef holds the 64 dequantized coefficients in natural
// order; samples are written to out at the given row stride, level-shifted
// back to 0..255.
func IDCT(coef []int32, out []byte, stride int) {
	var tmp [64]int32

	// Rows first. A row whose AC coefficients are all zero shortcuts to a
	// constant fill.
	for y := 0; y < 8; y++ {
		row := y * 8

		if coef[row+1] == 0 && coef[row+2] == 0 && coef[row+3] == 0 &&
			coef[row+4] == 0 && coef[row+5] == 0 && coef[row+6] == 0 && coef[row+7] == 0 {
			dc := coef[row] << 3
			for i := 0; i < 8; i++ {
				tmp[row+i] = dc
			}
			continue
		}

		x0 := (coef[row+0] << 11) + 128
		x1 := coef[row+4] << 11
		x2 := coef[row+6]
		x3 := coef[row+2]
		x4 := coef[row+1]
		x5 := coef[row+7]
		x6 := coef[row+5]
		x7 := coef[row+3]

		x8 := w7 * (x4 + x5)
		x4 = x8 + w1*x4
		x5 = x8 - w5*x5
		x8 = w3 * (x6 + x7)
		x6 = x8 - w3*x6
		x7 = x8 - w7*x7

		x8 = x0 + x1
		x0 -= x1
		x1 = w6 * (x3 + x2)
		x2 = x1 - w2*x2
		x3 = x1 + w6*x3
		x1 = x4 + x6
		x4 -= x6
		x6 = x5 + x7
		x5 -= x7

		x7 = x8 + x3
		x8 -= x3
		x3 = x0 + x2
		x0 -= x2
		x2 = (r2 * (x4 + x5)) >> 8
		x4 = (r2 * (x4 - x5)) >> 8

		tmp[row+0] = (x7 + x1) >> 8
		tmp[row+1] = (x3 + x2) >> 8
		tmp[row+2] = (x0 + x4) >> 8
		tmp[row+3] = (x8 + x6) >> 8
		tmp[row+4] = (x8 - x6) >> 8
		tmp[row+5] = (x0 - x4) >> 8
		tmp[row+6] = (x3 - x2) >> 8
		tmp[row+7] = (x7 - x1) >> 8
	}

	// Then columns, clamping into the 0..255 sample range
	for x := 0; x < 8; x++ {
		if tmp[8+x] == 0 && tmp[16+x] == 0 && tmp[24+x] == 0 &&
			tmp[32+x] == 0 && tmp[40+x] == 0 && tmp[48+x] == 0 && tmp[56+x] == 0 {
			dc := byte(Clamp(int(((tmp[x]+32)>>6)+128), 0, 255))
			for i := 0; i < 8; i++ {
				out[i*stride+x] = dc
			}
			continue
		}

		x0 := (tmp[0+x] << 8) + 8192
		x1 := tmp[32+x] << 8
		x2 := tmp[48+x]
		x3 := tmp[16+x]
		x4 := tmp[8+x]
		x5 := tmp[56+x]
		x6 := tmp[40+x]
		x7 := tmp[24+x]

		x8 := w7 * (x4 + x5)
		x4 = x8 + w1*x4
		x5 = x8 - w5*x5
		x8 = w3 * (x6 + x7)
		x6 = x8 - w3*x6
		x7 = x8 - w7*x7

		x8 = x0 + x1
		x0 -= x1
		x1 = w6 * (x3 + x2)
		x2 = x1 - w2*x2
		x3 = x1 + w6*x3
		x1 = x4 + x6
		x4 -= x6
		x6 = x5 + x7
		x5 -= x7

		x7 = x8 + x3
		x8 -= x3
		x3 = x0 + x2
		x0 -= x2
		x2 = (r2 * (x4 + x5)) >> 8
		x4 = (r2 * (x4 - x5)) >> 8

		out[0*stride+x] = byte(Clamp(int(((x7+x1)>>14)+128), 0, 255))
		out[1*stride+x] = byte(Clamp(int(((x3+x2)>>14)+128), 0, 255))
		out[2*stride+x] = byte(Clamp(int(((x0+x4)>>14)+128), 0, 255))
		out[3*stride+x] = byte(Clamp(int(((x8+x6)>>14)+128), 0, 255))
		out[4*stride+x] = byte(Clamp(int(((x8-x6)>>14)+128), 0, 255))
		out[5*stride+x] = byte(Clamp(int(((x0-x4)>>14)+128), 0, 255))
		out[6*stride+x] = byte(Clamp(int(((x3-x2)>>14)+128), 0, 255))
		out[7*stride+x] = byte(Clamp(int(((x7-x1)>>14)+128), 0, 255))
	}
}
