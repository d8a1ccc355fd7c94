package stabilo

import "math"

// DefaultSegmentLength is the Welch segment length, clamped to the
// signal length for short recordings.
const DefaultSegmentLength = 256

// Welch estimates the one-sided power spectral density of a signal with
// Welch's method: periodic Hann window, 50% overlap, per-segment mean
// removal, density scaling. Returns the frequency bins and the PSD.
func Welch(signal []float64, fs float64) (freqs, psd []float64) {
	return WelchSegmented(signal, fs, DefaultSegmentLength)
}

// WelchSegmented is Welch with an explicit segment length.
func WelchSegmented(signal []float64, fs float64, nperseg int) (freqs, psd []float64) {
	if nperseg > len(signal) {
		nperseg = len(signal)
	}
	if nperseg < 1 {
		return nil, nil
	}
	window := hann(nperseg)
	var windowPower float64
	for _, w := range window {
		windowPower += w * w
	}
	scale := 1 / (fs * windowPower)

	step := nperseg - nperseg/2
	bins := nperseg/2 + 1
	psd = make([]float64, bins)
	segments := 0
	segment := make([]float64, nperseg)
	for start := 0; start+nperseg <= len(signal); start += step {
		copy(segment, signal[start:start+nperseg])
		demean(segment)
		for i := range segment {
			segment[i] *= window[i]
		}
		spectrum := fft(segment)
		for k := 0; k < bins; k++ {
			re, im := real(spectrum[k]), imag(spectrum[k])
			power := (re*re + im*im) * scale
			// one-sided: double everything but DC and Nyquist
			if k != 0 && !(nperseg%2 == 0 && k == bins-1) {
				power *= 2
			}
			psd[k] += power
		}
		segments++
	}
	if segments == 0 {
		return nil, nil
	}
	for k := range psd {
		psd[k] /= float64(segments)
	}

	freqs = make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k) * fs / float64(nperseg)
	}
	return freqs, psd
}

// MeanFrequency returns the power-weighted mean frequency of a spectrum.
func MeanFrequency(freqs, psd []float64) float64 {
	var weighted, total float64
	for i := range freqs {
		weighted += freqs[i] * psd[i]
		total += psd[i]
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// PeakFrequency returns the frequency with the highest PSD value.
func PeakFrequency(freqs, psd []float64) float64 {
	best := 0
	for i := range psd {
		if psd[i] > psd[best] {
			best = i
		}
	}
	if len(freqs) == 0 {
		return 0
	}
	return freqs[best]
}

func hann(n int) []float64 {
	window := make([]float64, n)
	if n == 1 {
		window[0] = 1
		return window
	}
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return window
}

func demean(segment []float64) {
	mean := Mean(segment)
	for i := range segment {
		segment[i] -= mean
	}
}

// fft computes the discrete Fourier transform, radix-2 when the length
// is a power of two and a direct transform otherwise.
func fft(signal []float64) []complex128 {
	n := len(signal)
	data := make([]complex128, n)
	for i, v := range signal {
		data[i] = complex(v, 0)
	}
	if n&(n-1) != 0 {
		return dft(data)
	}

	// bit-reversal permutation
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			data[i], data[j] = data[j], data[i]
		}
	}
	for size := 2; size <= n; size <<= 1 {
		angle := -2 * math.Pi / float64(size)
		root := complex(math.Cos(angle), math.Sin(angle))
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < size/2; k++ {
				even := data[start+k]
				odd := data[start+k+size/2] * w
				data[start+k] = even + odd
				data[start+k+size/2] = even - odd
				w *= root
			}
		}
	}
	return data
}

func dft(data []complex128) []complex128 {
	n := len(data)
	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		var sum complex128
		for t := 0; t < n; t++ {
			angle := -2 * math.Pi * float64(k) * float64(t) / float64(n)
			sum += data[t] * complex(math.Cos(angle), math.Sin(angle))
		}
		out[k] = sum
	}
	return out
}
