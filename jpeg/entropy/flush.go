package entropy

import "github.com/chronos-tachyon/assert"

// FlushInfo reports what the end-of-image flush emitted.
//
// Bits counts every valid bit written during the flush, stuffing insertions
// included. ORC is the number of valid bits in the final partial output word
// (0 when the stream ended word-aligned); the low bits of the last byte
// beyond ORC are padding. The three ready flags grade the flush against the
// bit-count thresholds 0, 32 and 64: PartialReady means the flush carried
// any data at all, MoreData that it needed a second word, MoreData2 a third.
type FlushInfo struct {
	Bits         int
	ORC          int
	PartialReady bool
	MoreData     bool
	MoreData2    bool
}

// Flush drains every stage of the pipeline: unterminated blocks are ended in
// place (an end-of-file without an end-of-block marker is recovered by
// draining the residue as if the block had ended), the channel queues are
// run through the sequencer, and the merge register's tail is pushed through
// the same stuffing rule as the steady-state path, sized for up to three
// flush words. After a successful Flush the pipeline accepts no more
// symbols; a Flush that failed on the sink may be retried.
func (p *Pipeline) Flush() (FlushInfo, error) {
	if p.flushed {
		return FlushInfo{}, ErrFlushed
	}

	wordsBefore := p.wordsOut

	for {
		if err := p.seq.advance(p.st, p.drainOut); err != nil {
			return FlushInfo{}, err
		}
		if err := p.drainOut(); err != nil {
			return FlushInfo{}, err
		}

		l := p.seq.lanes[p.seq.cursor]
		if l.acc.count > 0 {
			// premature end of file: treat the residue as an ended block
			if err := l.endBlock(); err != nil {
				return FlushInfo{}, err
			}
			continue
		}
		if p.anyPending() {
			// another channel still holds data; release the cursor
			// with an empty block
			if err := l.endBlock(); err != nil {
				return FlushInfo{}, err
			}
			continue
		}
		break
	}

	orc, err := p.flushTail()
	if err != nil {
		return FlushInfo{}, err
	}
	p.flushed = true

	bits := (p.wordsOut-wordsBefore)*32 + orc
	return FlushInfo{
		Bits:         bits,
		ORC:          orc,
		PartialReady: bits > 0,
		MoreData:     bits > 32,
		MoreData2:    bits > 64,
	}, nil
}

func (p *Pipeline) anyPending() bool {
	for _, l := range p.seq.lanes {
		if l.pending() {
			return true
		}
	}
	return false
}

// flushTail stuffs the merge register's residual bits, masked to their
// ORC-declared length, emits the full words this produces and writes the
// final partial word. Returns the valid-bit count of that final word.
func (p *Pipeline) flushTail() (int, error) {
	w, orc := p.seq.acc.residual()
	p.seq.acc.reset()

	st := p.st
	valid := st.clen * 8

	nbytes := (orc + 7) / 8
	for i := 0; i < nbytes; i++ {
		b := byte(w >> uint(24-8*i))
		st.carry[st.clen] = b
		st.clen++
		if i == nbytes-1 && orc%8 != 0 {
			// partial byte, zero-padded; it can never be 0xFF
			valid += orc % 8
			continue
		}
		valid += 8
		if b == 0xFF {
			st.carry[st.clen] = 0x00
			st.clen++
			valid += 8
		}
	}

	for valid >= 32 {
		word := st.takeWord()
		if err := st.q.push(queueEntry{kind: entryWord, word: word, ffCount: countFF(word)}); err != nil {
			return 0, err
		}
		valid -= 32
	}
	if err := p.drainOut(); err != nil {
		return 0, err
	}

	// final partial word
	assert.Assertf(st.clen == (valid+7)/8, "flush tail %d carry bytes for %d bits", st.clen, valid)
	if st.clen > 0 {
		if _, err := p.w.Write(st.carry[:st.clen]); err != nil {
			return 0, err
		}
		p.bytesOut += st.clen
		st.clen = 0
	}

	return valid, nil
}
