package dsp

import (
	"fmt"
	"math"

	"github.com/arloliu/xdf/errs"
	"github.com/arloliu/xdf/internal/options"
	"github.com/arloliu/xdf/resample"
)

// Factory designs Polyphase resamplers.
type Factory struct {
	cfg Config
}

var _ resample.Factory = (*Factory)(nil)

// NewFactory creates a resampler factory.
//
// Parameters:
//   - opts: Optional settings (WithMaxFactor)
//
// Returns:
//   - *Factory: Factory ready for Configure
//   - error: Invalid option
func NewFactory(opts ...Option) (*Factory, error) {
	f := &Factory{cfg: Config{maxFactor: DefaultMaxFactor}}
	if err := options.Apply(&f.cfg, opts...); err != nil {
		return nil, err
	}

	return f, nil
}

// Configure implements resample.Factory.
func (f *Factory) Configure(inRate, outRate float64, q resample.Quality) (resample.Resampler, error) {
	return f.Design(inRate, outRate, q)
}

// Design builds a Polyphase converter from inRate to outRate.
//
// The rate ratio is approximated by L/M within q.Tolerance. The prototype
// is a Kaiser-windowed sinc at L*inRate whose passband ends at
// q.Bandwidth times the lower Nyquist frequency and whose stopband starts
// at that Nyquist frequency.
//
// Returns:
//   - *Polyphase: Converter with cleared history
//   - error: errs.ErrInvalidRate, errs.ErrInvalidQuality or errs.ErrUnsupportedRatio
func (f *Factory) Design(inRate, outRate float64, q resample.Quality) (*Polyphase, error) {
	if !validRate(inRate) || !validRate(outRate) {
		return nil, fmt.Errorf("%w: %v -> %v", errs.ErrInvalidRate, inRate, outRate)
	}
	if err := validateQuality(q); err != nil {
		return nil, err
	}

	l, m, err := rationalize(outRate/inRate, q.Tolerance, f.cfg.maxFactor)
	if err != nil {
		return nil, err
	}

	stop := 0.5 / float64(max(l, m))
	pass := q.Bandwidth * stop
	a := attenuation(q.PassbandRipple, q.StopbandAttenuation)
	n := kaiserLength(a, stop-pass)
	h := lowpass(n, (pass+stop)/2, kaiserBeta(a), float64(l))

	return newPolyphase(l, m, h), nil
}

func validRate(r float64) bool {
	return r > 0 && !math.IsInf(r, 0)
}

func validateQuality(q resample.Quality) error {
	switch {
	case !(q.Bandwidth > 0 && q.Bandwidth < 1):
		return fmt.Errorf("%w: bandwidth %v not in (0, 1)", errs.ErrInvalidQuality, q.Bandwidth)
	case !(q.PassbandRipple > 0):
		return fmt.Errorf("%w: passband ripple %v", errs.ErrInvalidQuality, q.PassbandRipple)
	case !(q.StopbandAttenuation > 0):
		return fmt.Errorf("%w: stopband attenuation %v", errs.ErrInvalidQuality, q.StopbandAttenuation)
	case !(q.Tolerance > 0 && q.Tolerance < 1):
		return fmt.Errorf("%w: tolerance %v not in (0, 1)", errs.ErrInvalidQuality, q.Tolerance)
	}

	return nil
}
