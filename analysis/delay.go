package analysis

import (
	"sort"
	"time"

	"github.com/urbanflow/buswatch/transit"
)

// ScheduleTimeLayout is the timetable's time-of-day format.
const ScheduleTimeLayout = "15:04:05"

// Default delay policy values.
const (
	// DefaultEarlyToleranceSec: a bus up to two minutes ahead of a scheduled
	// time still counts against that time, with the delay clamped to zero.
	DefaultEarlyToleranceSec = 120
	// DefaultMaxMedianDelaySec: medians of an hour or more are bad matches,
	// not real delays, and disqualify the vehicle.
	DefaultMaxMedianDelaySec = 3600
)

// Options control the punctuality pipeline policies. The zero value selects
// the defaults.
type Options struct {
	EarlyToleranceSec int
	MaxMedianDelaySec int
	Workers           int
}

func (o Options) withDefaults() Options {
	if o.EarlyToleranceSec == 0 {
		o.EarlyToleranceSec = DefaultEarlyToleranceSec
	}
	if o.MaxMedianDelaySec == 0 {
		o.MaxMedianDelaySec = DefaultMaxMedianDelaySec
	}
	if o.Workers == 0 {
		o.Workers = 1
	}
	return o
}

// timeOfDayDiffSeconds returns sched minus est in seconds, comparing
// time-of-day components only. Timetables carry no date, so the date part of
// the estimate is ignored.
func timeOfDayDiffSeconds(est time.Time, sched time.Time) int {
	return (sched.Hour()-est.Hour())*3600 +
		(sched.Minute()-est.Minute())*60 +
		(sched.Second() - est.Second())
}

// visitDelays computes one delay sample per visit that has at least one
// surviving scheduled candidate. For every scheduled departure the signed
// difference sched−estimated is taken; differences beyond the early-departure
// tolerance are dropped, the rest are clamped to zero, and the smallest
// survivor (the best-case scheduled match) becomes the visit's sample.
// Visits whose (stop, line) pair has no timetable entry are skipped.
func visitDelays(visits []StopVisit, line string, idx *transit.Index, earlyToleranceSec int) []float64 {
	var delays []float64

	for _, visit := range visits {
		times, ok := idx.Departures(visit.Stop, line)
		if !ok {
			continue
		}

		var candidates []int
		for _, s := range times {
			sched, err := time.Parse(ScheduleTimeLayout, s)
			if err != nil {
				continue
			}
			diff := timeOfDayDiffSeconds(visit.Time, sched)
			if diff > -earlyToleranceSec {
				candidates = append(candidates, max(0, diff))
			}
		}
		if len(candidates) > 0 {
			best := candidates[0]
			for _, c := range candidates[1:] {
				if c < best {
					best = c
				}
			}
			delays = append(delays, float64(best))
		}
	}
	return delays
}

// MedianDelayMinutes computes a vehicle's punctuality as the median of its
// per-visit delay samples, in minutes. The second return is false when the
// vehicle's line is unknown, no delay sample could be computed, or the median
// fails the sanity bound.
func MedianDelayMinutes(traj *transit.Trajectory, idx *transit.Index, opts Options) (float64, bool) {
	opts = opts.withDefaults()

	if !idx.HasLine(traj.Line) {
		return 0, false
	}

	visits := ReduceToStopVisits(traj, idx)
	delays := visitDelays(visits, traj.Line, idx, opts.EarlyToleranceSec)
	if len(delays) == 0 {
		return 0, false
	}

	med := median(delays)
	if med >= float64(opts.MaxMedianDelaySec) {
		return 0, false
	}
	return med / 60, true
}

// median returns the middle value of the samples, averaging the two middle
// values for even counts.
func median(samples []float64) float64 {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
