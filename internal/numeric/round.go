// Package numeric holds the rounding and ratio helpers shared by every
// UI-facing number.
package numeric

import "math"

// Round rounds half away from zero to the given number of decimals by
// scaling, rounding and scaling back.
func Round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

// Ratio returns num/den, or 0 when den is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percent returns num/den*100 rounded to places, or 0 when den is 0.
func Percent(num, den float64, places int) float64 {
	return Round(Ratio(num, den)*100, places)
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
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
