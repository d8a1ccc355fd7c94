package stabilo

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMS(t *testing.T) {
	assert.InDelta(t, math.Sqrt(12.5), RMS([]float64{3, 4}), 1e-12)
	assert.Zero(t, RMS(nil))
}

func TestTotalPathLength(t *testing.T) {
	x := []float64{0, 3, 3}
	y := []float64{0, 4, 4}
	assert.InDelta(t, 5, TotalPathLength(x, y), 1e-12)
}

func TestZeroCrossings(t *testing.T) {
	assert.Equal(t, 2, ZeroCrossings([]float64{1, -1, 1, 0, 1}))
	assert.Equal(t, 0, ZeroCrossings([]float64{1, 2, 3}))
}

func TestPeaks(t *testing.T) {
	// the flat top at 2,2 is not a strict maximum
	assert.Equal(t, 1, Peaks([]float64{0, 1, 0, 2, 2, 0}))
	assert.Equal(t, 0, Peaks([]float64{0, 1, 2, 3}))
}

func TestMSD(t *testing.T) {
	msd, err := MSD([]float64{0, 1, 2, 3}, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1, msd, 1e-12)

	_, err = MSD([]float64{0, 1}, 1, 5)
	assert.ErrorIs(t, err, ErrLagTooLarge)
	_, err = MSD([]float64{0, 1}, 1, 0)
	assert.ErrorIs(t, err, ErrLagTooLarge, "zero-sample lag is rejected")
}

func TestSwayDensity(t *testing.T) {
	density := SwayDensity([]float64{0, 0, 1}, DefaultSwayRadius)
	require.Len(t, density, 3)
	assert.InDelta(t, 2.0/3, density[0], 1e-12)
	assert.InDelta(t, 2.0/3, density[1], 1e-12)
	assert.InDelta(t, 1.0/3, density[2], 1e-12)
}

func TestSavgolDerivativeExactOnPolynomial(t *testing.T) {
	// a cubic-order fit reproduces the derivative of x^2 exactly,
	// including the shifted edge windows
	signal := make([]float64, 7)
	for i := range signal {
		signal[i] = float64(i * i)
	}
	derivative := SavgolDerivative(signal, 5, 3, 1)
	for i, d := range derivative {
		assert.InDelta(t, float64(2*i), d, 1e-9, "index %d", i)
	}
}

func TestSavgolDerivativeDelta(t *testing.T) {
	signal := []float64{0, 1, 2, 3, 4, 5, 6}
	derivative := SavgolDerivative(signal, 5, 3, 0.5)
	for _, d := range derivative {
		assert.InDelta(t, 2, d, 1e-9, "slope 1 per sample at 2 samples/sec")
	}
}

func TestSpeedClampsWindowForShortSeries(t *testing.T) {
	x := []float64{0, 1, 4, 9}
	y := []float64{0, 2, 8, 18}
	speedML, speedAP := Speed(x, y, 1)
	require.Len(t, speedML, 4)
	for i := range speedML {
		assert.InDelta(t, float64(2*i), speedML[i], 1e-9)
		assert.InDelta(t, float64(4*i), speedAP[i], 1e-9)
	}
}

func TestWelchSinusoid(t *testing.T) {
	const fs = 256.0
	const f0 = 32.0
	signal := make([]float64, 512)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * f0 * float64(i) / fs)
	}
	freqs, psd := Welch(signal, fs)
	require.Len(t, freqs, 129)
	assert.InDelta(t, f0, PeakFrequency(freqs, psd), 1e-9)

	// density scaling: integrated PSD recovers the variance of the sine
	df := freqs[1] - freqs[0]
	var total float64
	for _, p := range psd {
		total += p
	}
	assert.InDelta(t, 0.5, total*df, 0.02)
}

func TestWelchConstantSignalIsDetrended(t *testing.T) {
	signal := make([]float64, 300)
	for i := range signal {
		signal[i] = 7.5
	}
	_, psd := Welch(signal, 100)
	for _, p := range psd {
		assert.InDelta(t, 0, p, 1e-18)
	}
}

func TestWelchSegmentedNonPowerOfTwo(t *testing.T) {
	signal := make([]float64, 12)
	for i := range signal {
		signal[i] = float64(i % 3)
	}
	freqs, psd := WelchSegmented(signal, 6, 6)
	require.Len(t, freqs, 4)
	require.Len(t, psd, 4)
	assert.InDelta(t, 1, freqs[1], 1e-12)
}

func TestMeanFrequency(t *testing.T) {
	assert.InDelta(t, 1.5, MeanFrequency([]float64{0, 1, 2}, []float64{0, 1, 1}), 1e-12)
	assert.Zero(t, MeanFrequency([]float64{0, 1}, []float64{0, 0}))
}

func TestSanitizeHeader(t *testing.T) {
	assert.Equal(t, "RMS_ML__cm", SanitizeHeader("RMS ML (cm)"))
	assert.Equal(t, "Power_ML__cm2", SanitizeHeader("Power ML (cm²)"))
	assert.Equal(t, "Mean_Speed_ML__cm_s", SanitizeHeader("Mean Speed ML (cm·s)"))
	assert.Equal(t, "Volume__cm3", SanitizeHeader("Volume (cm³)"))
}

func TestSaveCSV(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "subject01")
	metrics := []Metric{{"RMS ML (cm)", 1.25}, {"Peaks AP", 3}}
	require.NoError(t, SaveCSV(metrics, outputPath))

	content, err := os.ReadFile(outputPath + "_metrics.csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "RMS_ML__cm,Peaks_AP", lines[0])
	assert.Equal(t, "1.25,3", lines[1])
}

func TestComputeMetricsProducesFiniteValues(t *testing.T) {
	x := make([]float64, 400)
	y := make([]float64, 400)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * float64(i) / 50)
		y[i] = math.Cos(2 * math.Pi * float64(i) / 80)
	}
	metrics := ComputeMetrics(x, y, 100)
	require.NotEmpty(t, metrics)
	for _, metric := range metrics {
		assert.False(t, math.IsNaN(metric.Value), metric.Name)
		assert.False(t, math.IsInf(metric.Value, 0), metric.Name)
	}
}
