package entropy

import "github.com/chronos-tachyon/assert"

// stuffer is the byte-stuffing engine. Each merged 32-bit word is expanded
// byte by byte, MSB-first, with a 0x00 inserted after every 0xFF, into a
// small carry buffer. One output word is emitted per input word; on the
// cycle where the carried expansion alone reaches 32 bits, a second word is
// emitted with the rollover flag set and a dummy slot reserved behind it.
//
// A word can add at most four stuffed bytes of carry, so the carry never
// exceeds 11 bytes mid-cycle and drains below 4 before the next word; a
// rollover can therefore never occur on two consecutive words.
type stuffer struct {
	carry [16]byte
	clen  int

	q            *elasticQueue
	prevRollover bool
}

func newStuffer(depth int) *stuffer {
	return &stuffer{q: newElasticQueue(depth)}
}

// countFF returns the number of 0xFF bytes in a word (0..4).
func countFF(w uint32) int {
	n := 0
	for i := 0; i < 4; i++ {
		if byte(w>>uint(8*i)) == 0xFF {
			n++
		}
	}
	return n
}

// feed stuffs one merged word and emits the resulting full output words.
// Each word must be fed exactly once; the engine does not recognize already
// escaped 0xFF 0x00 pairs.
func (st *stuffer) feed(w uint32) error {
	for i := 3; i >= 0; i-- {
		b := byte(w >> uint(8*i))
		st.carry[st.clen] = b
		st.clen++
		if b == 0xFF {
			st.carry[st.clen] = 0x00
			st.clen++
		}
	}

	// Reserve queue slots before consuming carry bytes so a full queue
	// leaves the stuffed data in place for a later drain.
	first := true
	for st.clen >= 4 {
		if first {
			if !st.q.room(1) {
				return ErrQueueFull
			}
			word := st.takeWord()
			_ = st.q.push(queueEntry{kind: entryWord, word: word, ffCount: countFF(word)})
			st.prevRollover = false
		} else {
			if st.prevRollover {
				return ErrDoubleRollover
			}
			if !st.q.room(2) {
				return ErrQueueFull
			}
			word := st.takeWord()
			_ = st.q.pushRollover(queueEntry{kind: entryWord, word: word, ffCount: countFF(word)})
			st.prevRollover = true
		}
		first = false
	}

	assert.Assertf(st.clen < 4, "stuffer carry %d bytes after drain", st.clen)
	return nil
}

// takeWord consumes the four oldest carry bytes as one big-endian word.
func (st *stuffer) takeWord() uint32 {
	w := uint32(st.carry[0])<<24 | uint32(st.carry[1])<<16 |
		uint32(st.carry[2])<<8 | uint32(st.carry[3])
	copy(st.carry[:], st.carry[4:st.clen])
	st.clen -= 4
	return w
}
