package store

import "math"

// welfordState holds running statistics by Welford's online algorithm:
// mean and variance update in O(1) per observation with no sample list.
type welfordState struct {
	Count int
	Mean  float64
	M2    float64
}

func (w *welfordState) update(value float64) {
	w.Count++
	delta := value - w.Mean
	w.Mean += delta / float64(w.Count)
	w.M2 += delta * (value - w.Mean)
}

// stdDev returns the population standard deviation, 0 below 2 observations.
func (w *welfordState) stdDev() float64 {
	if w.Count < 2 {
		return 0
	}
	return math.Sqrt(w.M2 / float64(w.Count))
}
