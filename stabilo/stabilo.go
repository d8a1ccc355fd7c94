// Package stabilo computes stabilometric descriptors of center of
// pressure (CoP) recordings from force plate measurements. The x axis is
// the mediolateral (ML) direction, y the anteroposterior (AP) direction,
// both in centimeters.
package stabilo

import (
	"math"

	"go.trai.ch/zerr"
)

// DefaultSwayRadius is the neighborhood radius in cm used for sway
// density when none is given.
const DefaultSwayRadius = 0.3

var ErrLagTooLarge = zerr.New("displacement interval exceeds signal length")

// RMS returns the root mean square of a signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	var sum float64
	for _, v := range signal {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(signal)))
}

// TotalPathLength returns the total distance traveled by the CoP.
func TotalPathLength(copX, copY []float64) float64 {
	var total float64
	for i := 1; i < len(copX) && i < len(copY); i++ {
		dx := copX[i] - copX[i-1]
		dy := copY[i] - copY[i-1]
		total += math.Sqrt(dx*dx + dy*dy)
	}
	return total
}

// ZeroCrossings counts sign changes between consecutive samples. A
// sample exactly at zero does not count.
func ZeroCrossings(signal []float64) int {
	count := 0
	for i := 1; i < len(signal); i++ {
		if signal[i-1]*signal[i] < 0 {
			count++
		}
	}
	return count
}

// Peaks counts strict local maxima.
func Peaks(signal []float64) int {
	count := 0
	for i := 1; i < len(signal)-1; i++ {
		if signal[i] > signal[i-1] && signal[i] > signal[i+1] {
			count++
		}
	}
	return count
}

// MSD returns the mean square displacement of a centered signal over the
// time interval deltaT (seconds) at sampling frequency fs.
func MSD(signal []float64, fs, deltaT float64) (float64, error) {
	lag := int(deltaT * fs)
	if lag < 1 || lag >= len(signal) {
		return 0, zerr.With(ErrLagTooLarge, "lag_samples", lag)
	}
	var sum float64
	for i := lag; i < len(signal); i++ {
		diff := signal[i] - signal[i-lag]
		sum += diff * diff
	}
	return sum / float64(len(signal)-lag), nil
}

// SwayDensity returns, per sample, the fraction of all samples lying
// within the given radius of it.
func SwayDensity(signal []float64, radius float64) []float64 {
	n := len(signal)
	density := make([]float64, n)
	for t := 0; t < n; t++ {
		inside := 0
		for _, v := range signal {
			if math.Abs(v-signal[t]) <= radius {
				inside++
			}
		}
		density[t] = float64(inside) / float64(n)
	}
	return density
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Max returns the maximum value, 0 for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Speed returns the instantaneous CoP speed via a Savitzky-Golay first
// derivative (window 5, polynomial order 3, clamped for short series).
func Speed(copX, copY []float64, fs float64) ([]float64, []float64) {
	const windowLength, polyorder = 5, 3
	window := windowLength
	if limit := len(copX)/2*2 - 1; window > limit {
		window = limit
	}
	if window%2 == 0 {
		window++
	}
	delta := 1 / fs
	return SavgolDerivative(copX, window, polyorder, delta),
		SavgolDerivative(copY, window, polyorder, delta)
}

// SavgolDerivative evaluates the first derivative of a Savitzky-Golay
// smoothing of the signal. Each point gets a least-squares polynomial
// fit over its window; edge windows are shifted inward and the fitted
// polynomial is differentiated at the true sample position.
func SavgolDerivative(signal []float64, window, polyorder int, delta float64) []float64 {
	n := len(signal)
	out := make([]float64, n)
	if n == 0 || window < 2 {
		return out
	}
	if window > n {
		window = n
	}
	if polyorder >= window {
		polyorder = window - 1
	}
	half := window / 2
	for i := 0; i < n; i++ {
		start := i - half
		if start < 0 {
			start = 0
		}
		if start+window > n {
			start = n - window
		}
		coeffs := polyfit(signal[start:start+window], float64(-(i - start)), polyorder)
		if len(coeffs) > 1 {
			out[i] = coeffs[1] / delta
		}
	}
	return out
}

// polyfit fits y[j] ~ p(x0 + j) for j = 0..len(y)-1 by least squares and
// returns the polynomial coefficients, lowest order first.
func polyfit(y []float64, x0 float64, order int) []float64 {
	terms := order + 1
	// normal equations: (VᵀV)·c = Vᵀy over the Vandermonde matrix
	ata := make([][]float64, terms)
	for r := range ata {
		ata[r] = make([]float64, terms+1)
	}
	for j, yv := range y {
		x := x0 + float64(j)
		pow := make([]float64, terms)
		pow[0] = 1
		for k := 1; k < terms; k++ {
			pow[k] = pow[k-1] * x
		}
		for r := 0; r < terms; r++ {
			for c := 0; c < terms; c++ {
				ata[r][c] += pow[r] * pow[c]
			}
			ata[r][terms] += pow[r] * yv
		}
	}
	return solve(ata)
}

// solve runs Gaussian elimination with partial pivoting on an augmented
// matrix and returns the solution vector.
func solve(m [][]float64) []float64 {
	n := len(m)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		m[col], m[pivot] = m[pivot], m[col]
		if m[col][col] == 0 {
			continue
		}
		for r := col + 1; r < n; r++ {
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}
	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		if m[r][r] == 0 {
			continue
		}
		sum := m[r][n]
		for c := r + 1; c < n; c++ {
			sum -= m[r][c] * x[c]
		}
		x[r] = sum / m[r][r]
	}
	return x
}
