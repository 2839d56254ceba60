package container

import (
	"math"

	"github.com/arloliu/xdf/errs"
)

type bounds struct {
	first, last float64
	ok          bool
}

// dataBounds returns, per stream index, the span of the decoded data:
// min/max of the stream's own events for string streams, first/last
// timestamp otherwise.
func (f *File) dataBounds() []bounds {
	out := make([]bounds, len(f.Streams))

	for _, e := range f.Events {
		b := &out[e.StreamIndex]
		if !b.ok {
			*b = bounds{first: e.Timestamp, last: e.Timestamp, ok: true}
			continue
		}
		b.first = math.Min(b.first, e.Timestamp)
		b.last = math.Max(b.last, e.Timestamp)
	}

	for i, s := range f.Streams {
		if s.IsString() || len(s.Timestamps) == 0 {
			continue
		}
		out[i] = bounds{first: s.Timestamps[0], last: s.Timestamps[len(s.Timestamps)-1], ok: true}
	}

	return out
}

// Synchronize applies each stream's clock offsets to its sample and event
// timestamps and then recomputes every stream's first/last timestamp.
//
// Samples: a cursor n walks the clock table forward, advancing while the
// next collection time is before the sample. The offset at n is added when
// its collection time is before the sample, or unconditionally while n is 0
// so that samples preceding the first clock measurement are extrapolated
// with the earliest offset.
//
// Events: a per-stream cursor advances the same way but never beyond the
// second-to-last clock record; events after the final collection time get
// the final offset.
//
// The cursors never rewind, so the cost is linear in samples plus clock
// records. The corrected timestamps need not be monotonic.
//
// Returns errs.ErrAlreadySynchronized if called twice on the same File.
func (f *File) Synchronize() error {
	if f.synchronized {
		return errs.ErrAlreadySynchronized
	}

	for _, s := range f.Streams {
		if len(s.ClockTimes) == 0 {
			continue
		}
		syncSamples(s)
	}
	f.syncEvents()

	for i, b := range f.dataBounds() {
		if !b.ok {
			continue
		}
		f.Streams[i].Footer.FirstTimestamp = b.first
		f.Streams[i].Footer.LastTimestamp = b.last
	}

	f.synchronized = true

	return nil
}

func syncSamples(s *Stream) {
	times, values := s.ClockTimes, s.ClockValues
	last := min(len(times), len(values)) - 1
	n := 0

	for m, ts := range s.Timestamps {
		for n < last && times[n+1] < ts {
			n++
		}
		if times[n] < ts || n == 0 {
			s.Timestamps[m] = ts + values[n]
		}
	}
}

func (f *File) syncEvents() {
	cursors := make([]int, len(f.Streams))

	for i := range f.Events {
		e := &f.Events[i]
		s := f.Streams[e.StreamIndex]
		size := min(len(s.ClockTimes), len(s.ClockValues))
		if size == 0 {
			continue
		}

		times := s.ClockTimes
		if e.Timestamp > times[size-1] {
			e.Timestamp += s.ClockValues[size-1]
			continue
		}

		n := cursors[e.StreamIndex]
		for n < size-2 && times[n+1] < e.Timestamp {
			n++
		}
		cursors[e.StreamIndex] = n
		e.Timestamp += s.ClockValues[n]
	}
}
