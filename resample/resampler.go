package resample

// Quality holds the filter design targets handed to a Factory.
type Quality struct {
	// Bandwidth is the passband edge as a fraction of the lower Nyquist frequency.
	Bandwidth float64
	// PassbandRipple is the allowed passband ripple in dB.
	PassbandRipple float64
	// StopbandAttenuation is the required stopband attenuation in dB.
	StopbandAttenuation float64
	// Tolerance is the relative error allowed when approximating the rate
	// ratio with a fraction.
	Tolerance float64
}

// DefaultQuality returns the quality used for every stream.
func DefaultQuality() Quality {
	return Quality{
		Bandwidth:           0.95,
		PassbandRipple:      0.1,
		StopbandAttenuation: 140,
		Tolerance:           1e-6,
	}
}

// Resampler converts one channel at a time between two fixed rates.
//
// A Resampler is stateful: Push may hold back samples until more input or a
// Flush arrives. Reset clears that state so the next channel starts clean.
type Resampler interface {
	// Push feeds samples and returns the output available so far.
	Push(in []float64) []float64
	// Flush drains the filter and returns the trailing output.
	Flush() []float64
	// Reset clears the filter history.
	Reset()
	// Close releases the resampler. It must be called exactly once.
	Close() error
}

// Factory builds Resamplers for a rate pair.
type Factory interface {
	// Configure designs a resampler from inRate to outRate.
	//
	// It fails when the ratio cannot be realized within the quality
	// constraints; the orchestrator then leaves the stream untouched.
	Configure(inRate, outRate float64, quality Quality) (Resampler, error)
}
