package texture

// History is a fixed-capacity FIFO of intensity values. Once full, each Push
// evicts the oldest value.
type History struct {
	buf   []float64
	start int
	n     int
}

// NewHistory returns an empty History holding at most capacity values.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{buf: make([]float64, capacity)}
}

// Push appends v, dropping the oldest value when full.
func (h *History) Push(v float64) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = v
		h.n++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % len(h.buf)
}

// Values returns the stored values, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, h.n)
	for i := 0; i < h.n; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of stored values.
func (h *History) Len() int { return h.n }

// Cap returns the capacity.
func (h *History) Cap() int { return len(h.buf) }

// Reset empties the history.
func (h *History) Reset() {
	h.start, h.n = 0, 0
}
