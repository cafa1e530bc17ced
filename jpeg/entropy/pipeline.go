package entropy

import "io"

// Pipeline is the entropy-coded bitstream assembly engine. Symbols are
// pushed per channel in block order; the pipeline packs them into 32-bit
// words, interleaves the channels in scan order, applies byte stuffing and
// writes the resulting byte stream to the sink.
//
// The pipeline is a single-threaded streaming transformation built from
// decoupled stages: strict FIFO order inside each elastic queue, the Y/Cb/Cr
// interleave of the sequencer, the extra queue slot a rollover reserves, and
// the exact stuffing insertion points.
type Pipeline struct {
	w     io.Writer
	lanes []*lane
	seq   *sequencer
	st    *stuffer

	flushed   bool
	wordsOut  int
	bytesOut  int
	rollovers int
	dummies   int
}

// NewPipeline creates a pipeline writing the stuffed byte stream to w.
// channels is the number of interleaved channels: 1 for a grayscale scan,
// 3 for Y/Cb/Cr.
func NewPipeline(w io.Writer, channels int) (*Pipeline, error) {
	if channels != 1 && channels != 3 {
		return nil, ErrInvalidChannel
	}

	lanes := make([]*lane, channels)
	for i := range lanes {
		lanes[i] = newLane(Channel(i), DefaultQueueDepth)
	}

	return &Pipeline{
		w:     w,
		lanes: lanes,
		seq:   newSequencer(lanes),
		st:    newStuffer(DefaultQueueDepth),
	}, nil
}

// PushSymbol appends one symbol to a channel's current block.
func (p *Pipeline) PushSymbol(ch Channel, sym Symbol) error {
	if p.flushed {
		return ErrFlushed
	}
	if int(ch) < 0 || int(ch) >= len(p.lanes) {
		return ErrInvalidChannel
	}
	if err := p.lanes[ch].pushSymbol(sym); err != nil {
		return err
	}
	return p.step()
}

// EndBlock terminates a channel's current block. Blocks must be ended in
// scan order for the sequencer to make progress; the elastic queue depth
// bounds how far ahead of the cursor a channel may run before EndBlock and
// PushSymbol report ErrQueueFull. The error is recoverable: no queued bits
// are lost, and the channel drains once the cursor reaches it.
func (p *Pipeline) EndBlock(ch Channel) error {
	if p.flushed {
		return ErrFlushed
	}
	if int(ch) < 0 || int(ch) >= len(p.lanes) {
		return ErrInvalidChannel
	}
	if err := p.lanes[ch].endBlock(); err != nil {
		return err
	}
	return p.step()
}

// step runs the sequencer as far as the queued data allows, draining the
// stuffed output to the sink as words are produced.
func (p *Pipeline) step() error {
	if err := p.seq.advance(p.st, p.drainOut); err != nil {
		return err
	}
	return p.drainOut()
}

// drainOut writes every stuffed word to the sink in queue order. An entry is
// removed only after the sink accepts it, so a sink error leaves the stream
// intact. Dummy entries are the rollover latency slots; their payload is
// discarded.
func (p *Pipeline) drainOut() error {
	for {
		e, ok := p.st.q.peek()
		if !ok {
			return nil
		}
		switch e.kind {
		case entryWord:
			var buf [4]byte
			buf[0] = byte(e.word >> 24)
			buf[1] = byte(e.word >> 16)
			buf[2] = byte(e.word >> 8)
			buf[3] = byte(e.word)
			if _, err := p.w.Write(buf[:]); err != nil {
				return err
			}
			p.wordsOut++
			p.bytesOut += 4
			if e.rollover {
				p.rollovers++
			}
		case entryDummy:
			p.dummies++
		}
		p.st.q.pop()
	}
}

// BytesWritten returns the number of bytes written to the sink so far.
func (p *Pipeline) BytesWritten() int {
	return p.bytesOut
}
