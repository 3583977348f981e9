// Package history provides a bounded in-memory rolling buffer of metric
// samples. The buffer backs the utilization charts: it holds the most
// recent N readings, oldest first, and evicts from the front when full.
package history

// Buffer is a fixed-capacity FIFO of scalar samples. The zero value is not
// usable; create one with New. Buffer is not safe for concurrent use — the
// sampler owns it and serializes access.
type Buffer struct {
	values   []float64
	capacity int
}

// New creates an empty Buffer holding at most capacity samples.
// Capacity must be at least 2 (a chart needs two points for a segment);
// smaller values panic, as with a misuse of make.
func New(capacity int) *Buffer {
	if capacity < 2 {
		panic("history: capacity must be at least 2")
	}
	return &Buffer{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a sample. When the buffer is full the oldest sample is
// evicted first, so length never exceeds capacity.
func (b *Buffer) Push(v float64) {
	if len(b.values) == b.capacity {
		copy(b.values, b.values[1:])
		b.values = b.values[:len(b.values)-1]
	}
	b.values = append(b.values, v)
}

// Reset empties the buffer without changing its capacity.
func (b *Buffer) Reset() {
	b.values = b.values[:0]
}

// Values returns a copy of the buffered samples, oldest first.
func (b *Buffer) Values() []float64 {
	out := make([]float64, len(b.values))
	copy(out, b.values)
	return out
}

// Len returns the number of buffered samples.
func (b *Buffer) Len() int { return len(b.values) }

// Cap returns the maximum number of samples the buffer holds.
func (b *Buffer) Cap() int { return b.capacity }

// Last returns the most recent sample. The second return value is false
// when the buffer is empty.
func (b *Buffer) Last() (float64, bool) {
	if len(b.values) == 0 {
		return 0, false
	}
	return b.values[len(b.values)-1], true
}
