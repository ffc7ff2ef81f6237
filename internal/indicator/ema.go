package indicator

// EMA computes an exponential moving average series over values given in
// chronological order. The output is aligned 1:1 with the input.
//
// The first output is seeded from the first data point rather than an SMA —
// matching how the dashboard's bounded windows are evaluated.
func EMA(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}

	k := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}
