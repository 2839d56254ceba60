package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Polyphase is a rational L/M sample rate converter.
//
// The prototype filter is split into L phases of taps coefficients each;
// output m reads phase (m*M+c) mod L against the taps most recent inputs,
// where c is the filter's group delay. The delay offset makes the output
// time-aligned with the input: output m lands on input time m*M/L.
//
// A Polyphase is not safe for concurrent use.
type Polyphase struct {
	l, m   int64
	center int64
	taps   int
	phases [][]float64

	hist []float64
	// base is the absolute input index of hist[0]; negative indices are
	// the zero padding before the first sample.
	base     int64
	inCount  int64
	produced int64
	flushed  bool
	closed   bool

	out []float64
}

func newPolyphase(l, m int, h []float64) *Polyphase {
	taps := (len(h) + l - 1) / l
	phases := make([][]float64, l)
	for p := range phases {
		phase := make([]float64, taps)
		// Reversed so a phase lines up with the input window in time order.
		for j := range phase {
			if i := p + (taps-1-j)*l; i < len(h) {
				phase[j] = h[i]
			}
		}
		phases[p] = phase
	}

	r := &Polyphase{
		l:      int64(l),
		m:      int64(m),
		center: int64(len(h)-1) / 2,
		taps:   taps,
		phases: phases,
	}
	r.Reset()

	return r
}

// Ratio returns the interpolation and decimation factors.
func (r *Polyphase) Ratio() (l, m int) {
	return int(r.l), int(r.m)
}

// Taps returns the number of coefficients per phase.
func (r *Polyphase) Taps() int {
	return r.taps
}

// OutputLength returns the number of samples a complete Push and Flush of n
// input samples yields: ceil(n*L/M).
func (r *Polyphase) OutputLength(n int) int {
	return int((int64(n)*r.l + r.m - 1) / r.m)
}

// Push feeds in and returns every output sample whose input window is complete.
// Push after Flush starts a new signal.
func (r *Polyphase) Push(in []float64) []float64 {
	if r.closed {
		return nil
	}
	if r.flushed {
		r.Reset()
	}

	r.hist = append(r.hist, in...)
	r.inCount += int64(len(in))
	r.out = r.out[:0]
	r.produce(math.MaxInt64)
	r.trim()

	return r.out
}

// Flush zero-pads the input and returns the trailing output samples so that
// the total output of the signal is OutputLength(inputs).
func (r *Polyphase) Flush() []float64 {
	r.out = r.out[:0]
	if r.closed || r.flushed {
		return r.out
	}
	r.flushed = true

	want := (r.inCount*r.l + r.m - 1) / r.m
	if r.produced >= want {
		return r.out
	}

	last := ((want-1)*r.m + r.center) / r.l
	if pad := last - (r.base + int64(len(r.hist))) + 1; pad > 0 {
		r.hist = append(r.hist, make([]float64, pad)...)
	}
	r.produce(want)

	return r.out
}

// Reset clears the filter history.
func (r *Polyphase) Reset() {
	r.hist = r.hist[:0]
	for range r.taps - 1 {
		r.hist = append(r.hist, 0)
	}
	r.base = -int64(r.taps - 1)
	r.inCount = 0
	r.produced = 0
	r.flushed = false
}

// Close releases the buffers. Further calls return no output.
func (r *Polyphase) Close() error {
	r.closed = true
	r.hist = nil
	r.out = nil

	return nil
}

func (r *Polyphase) produce(limit int64) {
	avail := r.base + int64(len(r.hist))
	for r.produced < limit {
		t := r.produced*r.m + r.center
		n0 := t / r.l
		if n0 >= avail {
			return
		}
		lo := n0 - int64(r.taps) + 1 - r.base
		window := r.hist[lo : lo+int64(r.taps)]
		r.out = append(r.out, floats.Dot(r.phases[t%r.l], window))
		r.produced++
	}
}

// trim drops inputs no future output can reach.
func (r *Polyphase) trim() {
	next := (r.produced*r.m + r.center) / r.l
	drop := next - int64(r.taps) + 1 - r.base
	if drop <= 0 {
		return
	}
	drop = min(drop, int64(len(r.hist)))

	n := copy(r.hist, r.hist[drop:])
	r.hist = r.hist[:n]
	r.base += drop
}
