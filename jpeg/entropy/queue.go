package entropy

// DefaultQueueDepth is the elastic queue depth used by the pipeline.
const DefaultQueueDepth = 16

// entryKind discriminates elastic queue entries.
type entryKind int

const (
	// entryWord is a full 32-bit payload word.
	entryWord entryKind = iota

	// entryTail marks an end of block on a channel queue. Its word holds
	// the block's residual bits left-justified; orc is their count (0..31).
	entryTail

	// entryDummy is the slot a rollover word reserves behind itself. The
	// consumer sees one extra cycle of latency and discards the payload.
	entryDummy
)

// queueEntry is one slot of an elastic queue.
type queueEntry struct {
	kind     entryKind
	word     uint32
	ffCount  int // 0..4, stuffed side only: 0xFF bytes detected in word
	rollover bool
	orc      int // entryTail only: valid bits in word
}

// elasticQueue is a bounded FIFO decoupling a producer stage from its
// consumer. Push fails when full so the producer backpressures; pop reports
// not-ready when empty so the consumer stalls.
type elasticQueue struct {
	slots []queueEntry
	head  int
	size  int
}

func newElasticQueue(depth int) *elasticQueue {
	return &elasticQueue{slots: make([]queueEntry, depth)}
}

func (q *elasticQueue) push(e queueEntry) error {
	if q.size == len(q.slots) {
		return ErrQueueFull
	}
	q.slots[(q.head+q.size)%len(q.slots)] = e
	q.size++
	return nil
}

// pushRollover pushes a rollover word together with the dummy slot it
// reserves, so the entry consumes two slots of queue capacity.
func (q *elasticQueue) pushRollover(e queueEntry) error {
	if q.size+2 > len(q.slots) {
		return ErrQueueFull
	}
	e.rollover = true
	_ = q.push(e)
	return q.push(queueEntry{kind: entryDummy})
}

// room reports whether n more entries fit.
func (q *elasticQueue) room(n int) bool {
	return q.size+n <= len(q.slots)
}

// peek returns the oldest entry without removing it.
func (q *elasticQueue) peek() (queueEntry, bool) {
	if q.size == 0 {
		return queueEntry{}, false
	}
	return q.slots[q.head], true
}

func (q *elasticQueue) pop() (queueEntry, bool) {
	if q.size == 0 {
		return queueEntry{}, false
	}
	e := q.slots[q.head]
	q.head = (q.head + 1) % len(q.slots)
	q.size--
	return e, true
}

func (q *elasticQueue) empty() bool {
	return q.size == 0
}

func (q *elasticQueue) len() int {
	return q.size
}
