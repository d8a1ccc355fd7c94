package stabilo

import (
	"os"
	"strconv"
	"strings"
)

// Metric is one named descriptor value. Names carry units the way the
// analysis reports them; SaveCSV sanitizes them into CSV-safe headers.
type Metric struct {
	Name  string
	Value float64
}

// ComputeMetrics runs the full descriptor set over a CoP recording.
func ComputeMetrics(copX, copY []float64, fs float64) []Metric {
	rmsML := RMS(copX)
	rmsAP := RMS(copY)
	speedML, speedAP := Speed(copX, copY, fs)
	freqsML, psdML := Welch(copX, fs)
	freqsAP, psdAP := Welch(copY, fs)
	densityML := SwayDensity(copX, DefaultSwayRadius)
	densityAP := SwayDensity(copY, DefaultSwayRadius)

	return []Metric{
		{"RMS ML (cm)", rmsML},
		{"RMS AP (cm)", rmsAP},
		{"Total Path Length (cm)", TotalPathLength(copX, copY)},
		{"Mean Speed ML (cm·s)", Mean(speedML)},
		{"Mean Speed AP (cm·s)", Mean(speedAP)},
		{"Zero Crossings ML", float64(ZeroCrossings(copX))},
		{"Zero Crossings AP", float64(ZeroCrossings(copY))},
		{"Peaks ML", float64(Peaks(copX))},
		{"Peaks AP", float64(Peaks(copY))},
		{"Mean Sway Density ML", Mean(densityML)},
		{"Mean Sway Density AP", Mean(densityAP)},
		{"Peak Sway Density ML", Max(densityML)},
		{"Peak Sway Density AP", Max(densityAP)},
		{"Mean Frequency ML (Hz)", MeanFrequency(freqsML, psdML)},
		{"Mean Frequency AP (Hz)", MeanFrequency(freqsAP, psdAP)},
		{"Peak Frequency ML (Hz)", PeakFrequency(freqsML, psdML)},
		{"Peak Frequency AP (Hz)", PeakFrequency(freqsAP, psdAP)},
		{"Power ML (cm²)", Mean(psdML)},
		{"Power AP (cm²)", Mean(psdAP)},
	}
}

// SanitizeHeader turns a metric name into a CSV header: spaces and
// middots become underscores, opening parens become underscores, closing
// parens are dropped, superscripts become plain digits.
func SanitizeHeader(name string) string {
	replacer := strings.NewReplacer(
		" ", "_",
		"(", "_",
		")", "",
		"²", "2",
		"·", "_",
		"³", "3",
	)
	return replacer.Replace(name)
}

// SaveCSV writes the metrics as a single-row CSV to
// `<outputPath>_metrics.csv`.
func SaveCSV(metrics []Metric, outputPath string) error {
	headers := make([]string, len(metrics))
	values := make([]string, len(metrics))
	for i, metric := range metrics {
		headers[i] = SanitizeHeader(metric.Name)
		values[i] = strconv.FormatFloat(metric.Value, 'g', -1, 64)
	}
	content := strings.Join(headers, ",") + "\n" + strings.Join(values, ",") + "\n"
	return os.WriteFile(outputPath+"_metrics.csv", []byte(content), 0644)
}
