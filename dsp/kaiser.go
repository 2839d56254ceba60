package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// attenuation returns the stopband attenuation in dB that satisfies both the
// passband ripple and the stopband attenuation of a Kaiser design.
func attenuation(rippleDB, stopbandDB float64) float64 {
	g := math.Pow(10, rippleDB/20)
	deltaPass := (g - 1) / (g + 1)
	deltaStop := math.Pow(10, -stopbandDB/20)

	return -20 * math.Log10(math.Min(deltaPass, deltaStop))
}

// kaiserBeta returns the window shape parameter for attenuation a in dB.
func kaiserBeta(a float64) float64 {
	switch {
	case a > 50:
		return 0.1102 * (a - 8.7)
	case a >= 21:
		return 0.5842*math.Pow(a-21, 0.4) + 0.07886*(a-21)
	default:
		return 0
	}
}

// kaiserLength returns the odd tap count for attenuation a and a transition
// width given in cycles per sample.
func kaiserLength(a, transition float64) int {
	n := int(math.Ceil((a-7.95)/(14.36*transition))) + 1
	if n < 3 {
		n = 3
	}
	if n%2 == 0 {
		n++
	}

	return n
}

// besselI0 is the zeroth order modified Bessel function of the first kind.
func besselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	half := x / 2
	for k := 1; k < 500; k++ {
		term *= (half / float64(k)) * (half / float64(k))
		sum += term
		if term < sum*1e-17 {
			break
		}
	}

	return sum
}

// kaiserWindow returns an n-point Kaiser window.
func kaiserWindow(n int, beta float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	norm := besselI0(beta)
	for i := range w {
		r := 2*float64(i)/float64(n-1) - 1
		w[i] = besselI0(beta*math.Sqrt(math.Max(0, 1-r*r))) / norm
	}

	return w
}

// lowpass designs a linear-phase windowed-sinc low-pass filter.
//
// cutoff is in cycles per sample at the filter rate. The taps are scaled to
// a DC gain of gain.
func lowpass(n int, cutoff, beta, gain float64) []float64 {
	h := kaiserWindow(n, beta)
	center := float64(n-1) / 2
	for i := range h {
		h[i] *= 2 * cutoff * sinc(2*cutoff*(float64(i)-center))
	}

	if sum := floats.Sum(h); sum != 0 {
		floats.Scale(gain/sum, h)
	}

	return h
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x

	return math.Sin(px) / px
}
