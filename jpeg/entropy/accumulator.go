package entropy

// accumulator is a residual bit register: a 64-bit buffer holding bits that
// have not yet been sliced into output words. Bits are appended MSB-first at
// the low end; count is the number of valid bits. After every emission pass
// count is below 32, so the worst case before the next symbol lands is
// 31 + 16 + 11 = 58 bits, within the register's capacity.
type accumulator struct {
	bits  uint64
	count int
}

// push appends the symbol's Huffman code and then its magnitude bits.
func (a *accumulator) push(sym Symbol) error {
	if sym.CodeLen < 0 || sym.CodeLen > MaxCodeLen ||
		sym.MagLen < 0 || sym.MagLen > MaxMagnitudeLen ||
		a.count+sym.CodeLen+sym.MagLen > 64 {
		return ErrAccumulatorOverflow
	}

	if sym.CodeLen > 0 {
		a.bits = a.bits<<uint(sym.CodeLen) | uint64(sym.Code)&((1<<uint(sym.CodeLen))-1)
	}
	if sym.MagLen > 0 {
		a.bits = a.bits<<uint(sym.MagLen) | uint64(sym.Mag)&((1<<uint(sym.MagLen))-1)
	}
	a.count += sym.CodeLen + sym.MagLen

	return nil
}

// pushBits appends n raw bits (right-justified in v). Used by the sequencer
// to merge already-emitted words and block residuals at the running offset.
func (a *accumulator) pushBits(v uint32, n int) error {
	if n < 0 || a.count+n > 64 {
		return ErrAccumulatorOverflow
	}
	if n > 0 {
		a.bits = a.bits<<uint(n) | uint64(v)&(1<<uint(n)-1)
		a.count += n
	}
	return nil
}

// full reports whether a whole 32-bit word can be sliced off.
func (a *accumulator) full() bool {
	return a.count >= 32
}

// emit slices the oldest 32 bits into an output word. Only legal when full.
func (a *accumulator) emit() uint32 {
	w := uint32(a.bits >> uint(a.count-32))
	a.count -= 32
	return w
}

// residual returns the not-yet-emitted bits, left-justified in a 32-bit word
// with everything beyond the valid length forced to zero, plus the valid-bit
// count (the register's ORC). Only meaningful when count < 32.
func (a *accumulator) residual() (uint32, int) {
	if a.count == 0 {
		return 0, 0
	}
	masked := a.bits & (1<<uint(a.count) - 1)
	return uint32(masked << uint(32-a.count)), a.count
}

// reset clears the register.
func (a *accumulator) reset() {
	a.bits = 0
	a.count = 0
}
