package entropy

import "testing"

func TestQueueFIFOOrder(t *testing.T) {
	q := newElasticQueue(4)

	for i := 0; i < 4; i++ {
		if err := q.push(queueEntry{kind: entryWord, word: uint32(i)}); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
	}

	if err := q.push(queueEntry{kind: entryWord}); err != ErrQueueFull {
		t.Errorf("push on full queue = %v, want ErrQueueFull", err)
	}

	for i := 0; i < 4; i++ {
		e, ok := q.pop()
		if !ok {
			t.Fatalf("pop %d not ready", i)
		}
		if e.word != uint32(i) {
			t.Errorf("pop %d = %d, want in write order", i, e.word)
		}
	}

	if _, ok := q.pop(); ok {
		t.Error("pop on empty queue reported ready")
	}
}

func TestQueueRolloverReservesTwoSlots(t *testing.T) {
	q := newElasticQueue(4)

	if err := q.pushRollover(queueEntry{kind: entryWord, word: 0xFF00FF00}); err != nil {
		t.Fatalf("pushRollover failed: %v", err)
	}
	if q.len() != 2 {
		t.Fatalf("queue len = %d, want 2 (rollover word + dummy)", q.len())
	}

	e, _ := q.pop()
	if e.kind != entryWord || !e.rollover {
		t.Errorf("first entry = kind %d rollover %v, want rollover word", e.kind, e.rollover)
	}
	e, _ = q.pop()
	if e.kind != entryDummy {
		t.Errorf("second entry kind = %d, want dummy", e.kind)
	}
}

func TestQueueRolloverNeedsTwoFreeSlots(t *testing.T) {
	q := newElasticQueue(4)

	for i := 0; i < 3; i++ {
		if err := q.push(queueEntry{kind: entryWord}); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}

	// One slot free is not enough for a rollover entry
	if err := q.pushRollover(queueEntry{kind: entryWord}); err != ErrQueueFull {
		t.Errorf("pushRollover = %v, want ErrQueueFull", err)
	}
	if q.len() != 3 {
		t.Errorf("failed pushRollover changed queue len to %d", q.len())
	}
}

func TestQueueWrapAround(t *testing.T) {
	q := newElasticQueue(2)

	for i := 0; i < 10; i++ {
		if err := q.push(queueEntry{kind: entryWord, word: uint32(i)}); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
		e, ok := q.pop()
		if !ok || e.word != uint32(i) {
			t.Fatalf("pop %d = %v/%v", i, e.word, ok)
		}
	}
}
