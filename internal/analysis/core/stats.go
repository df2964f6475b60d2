package core

import "sort"

// Small numeric helpers shared by the analyzers and the aggregator. All of
// them treat an empty input as zero rather than NaN: downstream records use
// plain float64 fields and 0 is the documented default.

// Percent returns part/whole as a percentage, 0 when the whole is empty.
// Part may exceed whole; ratio-style metrics use the same formula.
func Percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Mean returns the arithmetic mean, 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the median, averaging the two middle values for even
// lengths. 0 for an empty input. The input slice is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
