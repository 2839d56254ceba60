package container

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Statistics are the whole-file figures derived after decoding.
type Statistics struct {
	// MinTimestamp and MaxTimestamp bound every stream's first/last timestamp
	// and every event. Valid only if HasBounds is set.
	MinTimestamp float64
	MaxTimestamp float64
	HasBounds    bool

	// MajorSrate is the nominal rate shared by the most channels, 0 if no
	// stream has a positive rate.
	MajorSrate float64
	// MaxSrate is the largest nominal rate.
	MaxSrate float64

	// TotalChannels counts the channels of streams with decoded numeric data.
	TotalChannels int
	// ChannelStream[i] is the stream index owning global channel slot i.
	ChannelStream []int
	// StreamMap lists, in stream order, each numeric stream with the
	// exclusive end of its global channel range.
	StreamMap []StreamSpan
	// Labels[i] names global channel slot i.
	Labels []string

	// EffectiveSrates maps stream index to effective rate for every stream
	// where it is defined.
	EffectiveSrates map[int]float64

	// SamplingRates lists the distinct nominal rates in ascending order.
	SamplingRates []float64
}

// StreamSpan places one stream in the global channel index.
type StreamSpan struct {
	StreamIndex int
	EndChannel  int
}

// ComputeStatistics derives the Statistics of f, stores them in f.Stats and
// sets each stream's effective rate. It may be called repeatedly; the
// result reflects the current model.
func (f *File) ComputeStatistics() Statistics {
	var st Statistics

	st.MinTimestamp, st.MaxTimestamp, st.HasBounds = f.timestampBounds()
	st.MajorSrate = f.majorSrate()
	st.MaxSrate, st.SamplingRates = f.samplingRates()
	f.channelIndex(&st)
	st.EffectiveSrates = f.effectiveSrates()

	f.Stats = st

	return st
}

func (f *File) timestampBounds() (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	visit := func(v float64) {
		if math.IsNaN(v) {
			return
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	for _, s := range f.Streams {
		visit(s.Footer.FirstTimestamp)
		visit(s.Footer.LastTimestamp)
	}
	for _, e := range f.Events {
		visit(e.Timestamp)
	}

	if math.IsInf(lo, 1) {
		return 0, 0, false
	}

	return lo, hi, true
}

// majorSrate weights each positive nominal rate by its channel count.
// Ties go to the rate seen first in stream order.
func (f *File) majorSrate() float64 {
	type group struct {
		rate     float64
		channels int
	}

	var groups []group
	for _, s := range f.Streams {
		rate := s.Info.NominalSrate
		if rate <= 0 {
			continue
		}

		idx := slices.IndexFunc(groups, func(g group) bool { return g.rate == rate })
		if idx < 0 {
			groups = append(groups, group{rate: rate, channels: s.Info.ChannelCount})
			continue
		}
		groups[idx].channels += s.Info.ChannelCount
	}

	if len(groups) == 0 {
		return 0
	}

	best := groups[0]
	for _, g := range groups[1:] {
		if g.channels > best.channels {
			best = g
		}
	}

	return best.rate
}

func (f *File) samplingRates() (float64, []float64) {
	maxRate := 0.0
	var rates []float64

	for _, s := range f.Streams {
		rate := s.Info.NominalSrate
		maxRate = math.Max(maxRate, rate)
		if !slices.Contains(rates, rate) {
			rates = append(rates, rate)
		}
	}
	slices.Sort(rates)

	return maxRate, rates
}

func (f *File) channelIndex(st *Statistics) {
	for _, s := range f.Streams {
		if len(s.TimeSeries) == 0 {
			continue
		}

		for range s.TimeSeries {
			st.ChannelStream = append(st.ChannelStream, s.Index)
		}
		st.TotalChannels += len(s.TimeSeries)
		st.StreamMap = append(st.StreamMap, StreamSpan{StreamIndex: s.Index, EndChannel: st.TotalChannels})
	}

	st.Labels = make([]string, st.TotalChannels)
	for i, idx := range st.ChannelStream {
		s := f.Streams[idx]

		var b strings.Builder
		b.WriteString("Channel ")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("\nStream ")
		b.WriteString(strconv.Itoa(idx))
		b.WriteByte('\n')
		b.WriteString(s.Info.Name)
		b.WriteByte('\n')
		b.WriteString(s.Info.Type)
		st.Labels[i] = b.String()
	}
}

// effectiveSrates computes sample_count / (last - first) for every stream
// with a positive nominal rate. A zero, negative or non-finite span leaves
// the rate unset.
func (f *File) effectiveSrates() map[int]float64 {
	rates := make(map[int]float64)

	for _, s := range f.Streams {
		s.EffectiveSrate, s.HasEffectiveSrate = 0, false
		if s.Info.NominalSrate <= 0 {
			continue
		}

		span := s.Footer.LastTimestamp - s.Footer.FirstTimestamp
		if !(span > 0) || math.IsInf(span, 0) {
			continue
		}

		rate := float64(s.Footer.SampleCount) / span
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			continue
		}

		s.EffectiveSrate, s.HasEffectiveSrate = rate, true
		rates[s.Index] = rate
	}

	return rates
}
