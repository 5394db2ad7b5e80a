package utils

import (
	"math"
)

// Polynomial fits of Abramowitz & Stegun 9.8.1-9.8.4.

// BesselI0e returns exp(-|x|) I0(x), the exponentially scaled modified
// Bessel function of the first kind of order zero.
func BesselI0e(x float64) float64 {
	ax := math.Abs(x)
	if ax < 3.75 {
		y := (x / 3.75) * (x / 3.75)
		i0 := 1.0 + y*(3.5156229+y*(3.0899424+y*(1.2067492+
			y*(0.2659732+y*(0.0360768+y*0.0045813)))))
		return i0 * math.Exp(-ax)
	}
	y := 3.75 / ax
	return (0.39894228 + y*(0.01328592+y*(0.00225319+y*(-0.00157565+
		y*(0.00916281+y*(-0.02057706+y*(0.02635537+y*(-0.01647633+
			y*0.00392377)))))))) / math.Sqrt(ax)
}

// BesselI1e returns exp(-|x|) I1(x), the exponentially scaled modified
// Bessel function of the first kind of order one.
func BesselI1e(x float64) float64 {
	ax := math.Abs(x)
	var ans float64
	if ax < 3.75 {
		y := (x / 3.75) * (x / 3.75)
		ans = ax * (0.5 + y*(0.87890594+y*(0.51498869+y*(0.15084934+
			y*(0.02658733+y*(0.00301532+y*0.00032411)))))) * math.Exp(-ax)
	} else {
		y := 3.75 / ax
		ans = 0.02282967 + y*(-0.02895312+y*(0.01787654-y*0.00420059))
		ans = 0.39894228 + y*(-0.03988024+y*(-0.00362018+
			y*(0.00163801+y*(-0.01031555+y*ans))))
		ans /= math.Sqrt(ax)
	}
	if x < 0 {
		return -ans
	}
	return ans
}

// BesselI0 returns the modified Bessel function of the first kind of order zero
func BesselI0(x float64) float64 {
	return BesselI0e(x) * math.Exp(math.Abs(x))
}

// BesselI1 returns the modified Bessel function of the first kind of order one
func BesselI1(x float64) float64 {
	return BesselI1e(x) * math.Exp(math.Abs(x))
}

// Laguerre evaluates the Laguerre polynomial L_n(x). Besides the integer
// orders it supports n = 1/2, which appears in the Rician moments. Other
// fractional or negative orders yield NaN.
func Laguerre(x, n float64) float64 {
	switch n {
	case 0:
		return 1
	case 1:
		return 1 - x
	case 0.5:
		// exp(x/2) I_k(-x/2) written with scaled Bessel functions so that
		// large negative x does not overflow.
		y := -x / 2
		scale := math.Exp(math.Abs(y) - y)
		return scale * ((1-x)*BesselI0e(y) - x*BesselI1e(y))
	}
	if n < 0 || n != math.Trunc(n) {
		return math.NaN()
	}
	return ((2*n-1-x)*Laguerre(x, n-1) - (n-1)*Laguerre(x, n-2)) / n
}
