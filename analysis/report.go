package analysis

import (
	"math"
	"sort"
)

// MinReportSize is the default smallest result set worth summarizing; below
// it the report step short-circuits instead of printing statistics over
// noise.
const MinReportSize = 10

// LineDelay is the mean delay of one line across its analyzed vehicles
type LineDelay struct {
	Line        string
	MeanMinutes float64
	Vehicles    int
}

// Summary describes the delay distribution across all analyzed vehicles
type Summary struct {
	Count         int
	MeanMinutes   float64
	StdDevMinutes float64
	MinMinutes    float64
	P25Minutes    float64
	MedianMinutes float64
	P75Minutes    float64
	MaxMinutes    float64
	TopLines      []LineDelay // worst lines by mean delay, descending
}

// Summarize builds the distribution and top-offenders summary. The second
// return is false when there are fewer than minSize results; minSize values
// below 1 fall back to MinReportSize.
func Summarize(results []Result, topN, minSize int) (Summary, bool) {
	if minSize <= 0 {
		minSize = MinReportSize
	}
	if len(results) < minSize {
		return Summary{Count: len(results)}, false
	}

	delays := make([]float64, len(results))
	for i, r := range results {
		delays[i] = r.DelayMinutes
	}
	sort.Float64s(delays)

	var sum, sqSum float64
	for _, d := range delays {
		sum += d
	}
	mean := sum / float64(len(delays))
	for _, d := range delays {
		sqSum += (d - mean) * (d - mean)
	}

	s := Summary{
		Count:         len(delays),
		MeanMinutes:   mean,
		StdDevMinutes: math.Sqrt(sqSum / float64(len(delays)-1)),
		MinMinutes:    delays[0],
		P25Minutes:    quantile(delays, 0.25),
		MedianMinutes: quantile(delays, 0.5),
		P75Minutes:    quantile(delays, 0.75),
		MaxMinutes:    delays[len(delays)-1],
		TopLines:      topLinesByMeanDelay(results, topN),
	}
	return s, true
}

// quantile linearly interpolates between the order statistics of sorted data
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func topLinesByMeanDelay(results []Result, topN int) []LineDelay {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range results {
		sums[r.Line] += r.DelayMinutes
		counts[r.Line]++
	}

	lines := make([]LineDelay, 0, len(sums))
	for line, sum := range sums {
		lines = append(lines, LineDelay{
			Line:        line,
			MeanMinutes: sum / float64(counts[line]),
			Vehicles:    counts[line],
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].MeanMinutes != lines[j].MeanMinutes {
			return lines[i].MeanMinutes > lines[j].MeanMinutes
		}
		return lines[i].Line < lines[j].Line
	})
	if topN > 0 && len(lines) > topN {
		lines = lines[:topN]
	}
	return lines
}
