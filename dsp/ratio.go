package dsp

import (
	"fmt"
	"math"

	"github.com/arloliu/xdf/errs"
)

// rationalize approximates r by l/m using continued-fraction convergents.
//
// The first convergent within tol (relative) is returned. Convergents are
// in lowest terms, so l and m share no factor.
func rationalize(r, tol float64, maxFactor int) (int, int, error) {
	hPrev, h := 0, 1
	kPrev, k := 1, 0

	x := r
	for range 64 {
		a := math.Floor(x)
		if a > float64(maxFactor) {
			break
		}
		ai := int(a)
		hPrev, h = h, ai*h+hPrev
		kPrev, k = k, ai*k+kPrev
		if h > maxFactor || k > maxFactor {
			break
		}

		if h > 0 && math.Abs(float64(h)/float64(k)-r) <= tol*r {
			return h, k, nil
		}

		frac := x - a
		if frac < 1e-12 {
			break
		}
		x = 1 / frac
	}

	return 0, 0, fmt.Errorf("%w: %g needs a factor above %d", errs.ErrUnsupportedRatio, r, maxFactor)
}
