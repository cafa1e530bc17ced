package entropy

import "errors"

// Pipeline errors
var (
	// ErrAccumulatorOverflow is returned when a symbol's declared length
	// exceeds the residual register's spare capacity. This is a
	// configuration error, not a condition conformant input can produce.
	ErrAccumulatorOverflow = errors.New("entropy: symbol exceeds accumulator capacity")

	// ErrQueueFull is returned when an elastic queue cannot accept another
	// entry; the producer must let the consumer catch up.
	ErrQueueFull = errors.New("entropy: elastic queue full")

	// ErrDoubleRollover is returned when byte stuffing would assert the
	// rollover flag on two consecutive output words, which indicates
	// corrupted pipeline state.
	ErrDoubleRollover = errors.New("entropy: rollover on consecutive words")

	// ErrInvalidChannel is returned for a channel outside the pipeline's
	// configured channel count.
	ErrInvalidChannel = errors.New("entropy: invalid channel")

	// ErrFlushed is returned when symbols are pushed after Flush.
	ErrFlushed = errors.New("entropy: pipeline already flushed")
)
