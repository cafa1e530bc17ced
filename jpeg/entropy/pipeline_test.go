package entropy

import (
	"bytes"
	"errors"
	"testing"
)

func TestPipelineSinglePartialByte(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPipeline(&buf, 1)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	if err := p.PushSymbol(ChannelY, Symbol{Code: 0xA, CodeLen: 4}); err != nil {
		t.Fatalf("PushSymbol failed: %v", err)
	}

	info, err := p.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if got := buf.Bytes(); len(got) != 1 || got[0] != 0xA0 {
		t.Errorf("output = % X, want A0", got)
	}
	if info.Bits != 4 || info.ORC != 4 {
		t.Errorf("Bits/ORC = %d/%d, want 4/4", info.Bits, info.ORC)
	}
	if !info.PartialReady || info.MoreData || info.MoreData2 {
		t.Errorf("flags = %v/%v/%v, want only PartialReady", info.PartialReady, info.MoreData, info.MoreData2)
	}
}

func TestPipelineEmptyBlocks(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPipeline(&buf, 3)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	for _, ch := range []Channel{ChannelY, ChannelCb, ChannelCr} {
		if err := p.EndBlock(ch); err != nil {
			t.Fatalf("EndBlock(%v) failed: %v", ch, err)
		}
	}

	info, err := p.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty blocks produced %d bytes", buf.Len())
	}
	if info.Bits != 0 || info.ORC != 0 || info.PartialReady {
		t.Errorf("info = %+v, want all zero", info)
	}
}

func TestPipelineInterleaveCarriesORC(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPipeline(&buf, 3)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	// 4+8+4 bits across the three channels; each block boundary lands
	// mid-byte and the next channel continues at that offset.
	if err := p.PushSymbol(ChannelY, Symbol{Code: 0xD, CodeLen: 4}); err != nil {
		t.Fatal(err)
	}
	if err := p.EndBlock(ChannelY); err != nil {
		t.Fatal(err)
	}
	if err := p.PushSymbol(ChannelCb, Symbol{Code: 0xAB, CodeLen: 8}); err != nil {
		t.Fatal(err)
	}
	if err := p.EndBlock(ChannelCb); err != nil {
		t.Fatal(err)
	}
	if err := p.PushSymbol(ChannelCr, Symbol{Code: 0x6, CodeLen: 4}); err != nil {
		t.Fatal(err)
	}
	if err := p.EndBlock(ChannelCr); err != nil {
		t.Fatal(err)
	}

	info, err := p.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	want := []byte{0xDA, 0xB6}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("output = % X, want % X", buf.Bytes(), want)
	}
	if info.Bits != 16 || info.ORC != 16 {
		t.Errorf("Bits/ORC = %d/%d, want 16/16", info.Bits, info.ORC)
	}
}

func TestPipelineScanOrderIndependentOfPushOrder(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPipeline(&buf, 3)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	// Chroma blocks complete before luma; the sequencer must still emit
	// Y, Cb, Cr.
	if err := p.PushSymbol(ChannelCb, Symbol{Code: 0xBB, CodeLen: 8}); err != nil {
		t.Fatal(err)
	}
	if err := p.EndBlock(ChannelCb); err != nil {
		t.Fatal(err)
	}
	if err := p.PushSymbol(ChannelCr, Symbol{Code: 0xCC, CodeLen: 8}); err != nil {
		t.Fatal(err)
	}
	if err := p.EndBlock(ChannelCr); err != nil {
		t.Fatal(err)
	}

	if buf.Len() != 0 {
		t.Errorf("bytes emitted before the Y block completed: % X", buf.Bytes())
	}

	if err := p.PushSymbol(ChannelY, Symbol{Code: 0xAA, CodeLen: 8}); err != nil {
		t.Fatal(err)
	}
	if err := p.EndBlock(ChannelY); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	want := []byte{0xAA, 0xBB, 0xCC}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("output = % X, want % X", buf.Bytes(), want)
	}
}

func TestPipelineFlushStarvedLane(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPipeline(&buf, 3)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	// 70 bits queued on Cb with no completed Y block: nothing can move
	// until the flush ends the open blocks itself.
	for i := 0; i < 4; i++ {
		if err := p.PushSymbol(ChannelCb, Symbol{Code: 0x5555, CodeLen: 16}); err != nil {
			t.Fatalf("PushSymbol %d failed: %v", i, err)
		}
	}
	if err := p.PushSymbol(ChannelCb, Symbol{Code: 0x15, CodeLen: 6}); err != nil {
		t.Fatal(err)
	}

	if buf.Len() != 0 {
		t.Fatalf("sequencer ran past a starved Y lane, emitted % X", buf.Bytes())
	}

	info, err := p.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	want := []byte{0x55, 0x55, 0x55, 0x55, 0x55, 0x55, 0x55, 0x55, 0x54}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("output = % X, want % X", buf.Bytes(), want)
	}
	if info.Bits != 70 || info.ORC != 6 {
		t.Errorf("Bits/ORC = %d/%d, want 70/6", info.Bits, info.ORC)
	}
	if !info.PartialReady || !info.MoreData || !info.MoreData2 {
		t.Errorf("flags = %v/%v/%v, want all set for a 70-bit flush",
			info.PartialReady, info.MoreData, info.MoreData2)
	}
}

func TestPipelineRolloverAccounting(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPipeline(&buf, 1)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	// One all-FF word doubles to two stuffed words in a single cycle.
	for i := 0; i < 2; i++ {
		if err := p.PushSymbol(ChannelY, Symbol{Code: 0xFFFF, CodeLen: 16}); err != nil {
			t.Fatalf("PushSymbol failed: %v", err)
		}
	}

	want := []byte{0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("output = % X, want % X", buf.Bytes(), want)
	}
	if p.rollovers != 1 || p.dummies != 1 {
		t.Errorf("rollovers/dummies = %d/%d, want 1/1", p.rollovers, p.dummies)
	}
	if p.BytesWritten() != 8 {
		t.Errorf("BytesWritten = %d, want 8", p.BytesWritten())
	}

	info, err := p.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if info.Bits != 0 || info.PartialReady {
		t.Errorf("word-aligned stream flushed %d bits", info.Bits)
	}
}

func TestPipelineRejectsAfterFlush(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPipeline(&buf, 1)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	if _, err := p.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if err := p.PushSymbol(ChannelY, Symbol{Code: 1, CodeLen: 1}); err != ErrFlushed {
		t.Errorf("PushSymbol after flush = %v, want ErrFlushed", err)
	}
	if err := p.EndBlock(ChannelY); err != ErrFlushed {
		t.Errorf("EndBlock after flush = %v, want ErrFlushed", err)
	}
	if _, err := p.Flush(); err != ErrFlushed {
		t.Errorf("second Flush = %v, want ErrFlushed", err)
	}
}

func TestPipelineChannelValidation(t *testing.T) {
	if _, err := NewPipeline(&bytes.Buffer{}, 2); err != ErrInvalidChannel {
		t.Errorf("NewPipeline(2 channels) = %v, want ErrInvalidChannel", err)
	}
	if _, err := NewPipeline(&bytes.Buffer{}, 0); err != ErrInvalidChannel {
		t.Errorf("NewPipeline(0 channels) = %v, want ErrInvalidChannel", err)
	}

	p, err := NewPipeline(&bytes.Buffer{}, 1)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	if err := p.PushSymbol(ChannelCr, Symbol{Code: 1, CodeLen: 1}); err != ErrInvalidChannel {
		t.Errorf("PushSymbol on absent channel = %v, want ErrInvalidChannel", err)
	}
	if err := p.EndBlock(ChannelCb); err != ErrInvalidChannel {
		t.Errorf("EndBlock on absent channel = %v, want ErrInvalidChannel", err)
	}
}

// refStream builds the unstuffed bitstream directly and applies the stuffing
// rule byte by byte, as a model to compare the pipeline against.
type refStream struct {
	data []byte
	bits int
}

func (r *refStream) push(v uint32, n int) {
	for i := n - 1; i >= 0; i-- {
		if r.bits%8 == 0 {
			r.data = append(r.data, 0)
		}
		if v>>uint(i)&1 == 1 {
			r.data[len(r.data)-1] |= 1 << uint(7-r.bits%8)
		}
		r.bits++
	}
}

func (r *refStream) stuffed() ([]byte, int) {
	var out []byte
	for _, b := range r.data {
		out = append(out, b)
		if b == 0xFF {
			out = append(out, 0x00)
		}
	}
	pad := (8 - r.bits%8) % 8
	return out, len(out)*8 - pad
}

func TestPipelineMatchesReferenceStuffing(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPipeline(&buf, 1)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	ref := &refStream{}
	r := uint32(1)
	for block := 0; block < 50; block++ {
		for s := 0; s < 8; s++ {
			r = r*1103515245 + 12345
			n := int(r>>28)%MaxCodeLen + 1
			code := uint16(r>>8) & uint16(1<<uint(n)-1)
			sym := Symbol{Code: code, CodeLen: n}
			if err := p.PushSymbol(ChannelY, sym); err != nil {
				t.Fatalf("PushSymbol failed: %v", err)
			}
			ref.push(uint32(code), n)
		}
		if err := p.EndBlock(ChannelY); err != nil {
			t.Fatalf("EndBlock failed: %v", err)
		}
	}

	info, err := p.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	want, wantBits := ref.stuffed()
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("pipeline output diverges from byte-wise stuffing model\n got %d bytes\nwant %d bytes", buf.Len(), len(want))
	}
	if info.ORC != wantBits%32 {
		t.Errorf("ORC = %d, want %d", info.ORC, wantBits%32)
	}

	out := buf.Bytes()
	for i, b := range out {
		if b == 0xFF && (i == len(out)-1 || out[i+1] != 0x00) {
			t.Errorf("0xFF at offset %d not stuffed", i)
		}
	}
}

// A channel may legally run a full queue depth ahead of the scan cursor;
// releasing the cursor must then stream the whole backlog out, however much
// stuffing it expands into.
func TestPipelineDrainsBackloggedLane(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPipeline(&buf, 3)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	// Fill Cb's queue to its full depth with all-FF words while the
	// cursor still waits on Y.
	for i := 0; i < 2*DefaultQueueDepth; i++ {
		if err := p.PushSymbol(ChannelCb, Symbol{Code: 0xFFFF, CodeLen: 16}); err != nil {
			t.Fatalf("PushSymbol %d failed: %v", i, err)
		}
	}
	if p.BytesWritten() != 0 {
		t.Fatalf("wrote %d bytes before the cursor released", p.BytesWritten())
	}

	if err := p.EndBlock(ChannelY); err != nil {
		t.Fatalf("EndBlock(Y) failed: %v", err)
	}

	info, err := p.Flush()
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if info.Bits != 0 {
		t.Errorf("flush Bits = %d, want 0 (backlog drained before the flush)", info.Bits)
	}

	// Every all-FF word stuffs to two output words, the second a rollover.
	if got, want := p.BytesWritten(), 8*DefaultQueueDepth; got != want {
		t.Errorf("BytesWritten = %d, want %d", got, want)
	}
	if p.rollovers != DefaultQueueDepth || p.dummies != DefaultQueueDepth {
		t.Errorf("rollovers/dummies = %d/%d, want %d/%d",
			p.rollovers, p.dummies, DefaultQueueDepth, DefaultQueueDepth)
	}
	out := buf.Bytes()
	for i := 0; i+1 < len(out); i += 2 {
		if out[i] != 0xFF || out[i+1] != 0x00 {
			t.Fatalf("bytes %d,%d = %02X %02X, want FF 00", i, i+1, out[i], out[i+1])
		}
	}
}

type flakySink struct {
	buf   bytes.Buffer
	fails int
}

var errSinkDown = errors.New("sink down")

func (s *flakySink) Write(p []byte) (int, error) {
	if s.fails > 0 {
		s.fails--
		return 0, errSinkDown
	}
	return s.buf.Write(p)
}

func TestPipelineFlushRetriesAfterSinkError(t *testing.T) {
	sink := &flakySink{fails: 1}
	p, err := NewPipeline(sink, 1)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	if err := p.PushSymbol(ChannelY, Symbol{Code: 0xABCD, CodeLen: 16}); err != nil {
		t.Fatalf("PushSymbol failed: %v", err)
	}
	if err := p.PushSymbol(ChannelY, Symbol{Code: 0x5, CodeLen: 4}); err != nil {
		t.Fatalf("PushSymbol failed: %v", err)
	}

	if _, err := p.Flush(); !errors.Is(err, errSinkDown) {
		t.Fatalf("first Flush = %v, want sink error", err)
	}

	info, err := p.Flush()
	if err != nil {
		t.Fatalf("retried Flush failed: %v", err)
	}
	if !info.PartialReady {
		t.Error("PartialReady = false after retried flush")
	}
	want := []byte{0xAB, 0xCD, 0x50}
	if !bytes.Equal(sink.buf.Bytes(), want) {
		t.Errorf("output = % X, want % X", sink.buf.Bytes(), want)
	}

	if _, err := p.Flush(); err != ErrFlushed {
		t.Errorf("third Flush = %v, want ErrFlushed", err)
	}
}
