package analysis

import "coinsniper/internal/model"

// SparklineLength is how many recent closes feed the compact trend line.
const SparklineLength = 30

// Sparkline min-max normalizes the most recent n closes (chronological
// order) into [0.2, 1.0], keeping a visual baseline above zero. A perfectly
// flat window normalizes to all 0.5.
func Sparkline(s model.Series, n int) []float64 {
	closes := s.Closes(n)
	if len(closes) == 0 {
		return nil
	}

	min, max := closes[0], closes[0]
	for _, c := range closes {
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}

	out := make([]float64, len(closes))
	span := max - min
	for i, c := range closes {
		if span == 0 {
			out[i] = 0.5
			continue
		}
		out[i] = 0.2 + (c-min)/span*0.8
	}
	return out
}
