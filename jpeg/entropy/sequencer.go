package entropy

// lane is one channel's production side: the bit accumulator, the word
// emitter and the elastic queue feeding the sequencer.
type lane struct {
	ch  Channel
	acc accumulator
	q   *elasticQueue
}

func newLane(ch Channel, depth int) *lane {
	return &lane{ch: ch, q: newElasticQueue(depth)}
}

// pushSymbol folds a symbol into the residual register and emits every full
// 32-bit word into the channel queue.
func (l *lane) pushSymbol(sym Symbol) error {
	if err := l.acc.push(sym); err != nil {
		return err
	}
	for l.acc.full() {
		if !l.q.room(1) {
			return ErrQueueFull
		}
		_ = l.q.push(queueEntry{kind: entryWord, word: l.acc.emit()})
	}
	return nil
}

// endBlock hands the block's residual bits to the queue as a tail entry and
// clears the register for the channel's next block. A block that produced no
// bits at all still gets its tail, so the sequencer can move past it.
func (l *lane) endBlock() error {
	w, orc := l.acc.residual()
	if err := l.q.push(queueEntry{kind: entryTail, word: w, orc: orc}); err != nil {
		return err
	}
	l.acc.reset()
	return nil
}

// pending reports whether the lane still holds bits anywhere.
func (l *lane) pending() bool {
	return l.acc.count > 0 || !l.q.empty()
}

// sequencer reads the channel queues in scan order (Y, Cb, Cr, repeat) and
// merges them into one ordered word stream. The merge register carries each
// channel's residual bit offset (the ORC) across block boundaries: a partial
// word begun by one channel is completed by the next channel's bits.
type sequencer struct {
	lanes  []*lane
	cursor int
	acc    accumulator // merge register; its count is the stream ORC
}

func newSequencer(lanes []*lane) *sequencer {
	return &sequencer{lanes: lanes}
}

// advance drains the cursor lane's queue into the stuffing engine, moving
// the cursor to the next channel each time a block tail is consumed. It
// stops when the cursor lane has nothing queued; an empty queue is
// starvation, not an error, and the sequencer simply waits. The sink is
// invoked after every stuffed word so the stuffing queue never has to hold
// more than one word's expansion, no matter how far a lane ran ahead.
func (s *sequencer) advance(st *stuffer, sink func() error) error {
	for {
		e, ok := s.lanes[s.cursor].q.pop()
		if !ok {
			return nil
		}
		switch e.kind {
		case entryWord:
			if err := s.merge(e.word, 32, st, sink); err != nil {
				return err
			}
		case entryTail:
			if e.orc > 0 {
				if err := s.merge(e.word>>uint(32-e.orc), e.orc, st, sink); err != nil {
					return err
				}
			}
			s.cursor = (s.cursor + 1) % len(s.lanes)
		}
	}
}

// merge appends n bits at the running stream offset, feeds every completed
// word to the stuffing engine and drains the stuffed output through sink.
func (s *sequencer) merge(bits uint32, n int, st *stuffer, sink func() error) error {
	if err := s.acc.pushBits(bits, n); err != nil {
		return err
	}
	for s.acc.full() {
		if err := st.feed(s.acc.emit()); err != nil {
			return err
		}
		if err := sink(); err != nil {
			return err
		}
	}
	return nil
}
