package analysis

import (
	"sort"
	"time"

	"github.com/urbanflow/buswatch/transit"
)

// StopVisit is one interpolated pass of a vehicle nearest to a stop
type StopVisit struct {
	Stop       transit.StopKey
	Time       time.Time
	DistanceKM float64 // residual distance from the segment to the stop
}

// ReduceToStopVisits converts a trajectory into at most one estimated visit
// per distinct stop. Each consecutive measurement pair is matched against the
// nearest stop of the vehicle's line and the crossing time interpolated;
// when several segments match the same stop, only a strictly closer match
// replaces the recorded one. Pairs with malformed or out-of-order timestamps
// are skipped, as are segments with no locatable stop.
//
// The result is sorted by estimated time, ties broken by stop key order.
func ReduceToStopVisits(traj *transit.Trajectory, idx *transit.Index) []StopVisit {
	best := map[transit.StopKey]StopVisit{}

	for i := 1; i < len(traj.Measurements); i++ {
		m1 := traj.Measurements[i-1]
		m2 := traj.Measurements[i]

		t1, ok1 := parseMeasurementTime(m1.Time)
		t2, ok2 := parseMeasurementTime(m2.Time)
		if !ok1 || !ok2 || t2.Before(t1) {
			continue
		}

		p1 := transit.Waypoint{Longitude: m1.Lon, Latitude: m1.Lat}
		p2 := transit.Waypoint{Longitude: m2.Lon, Latitude: m2.Lat}

		key, dist, ok := NearestStop(p1, p2, traj.Line, idx)
		if !ok {
			continue
		}
		wp, ok := idx.StopCoord(key)
		if !ok {
			continue
		}

		at := EstimateTimeAtStop(t1, t2, p1, p2, wp)
		if prev, seen := best[key]; !seen || dist < prev.DistanceKM {
			best[key] = StopVisit{Stop: key, Time: at, DistanceKM: dist}
		}
	}

	visits := make([]StopVisit, 0, len(best))
	for _, v := range best {
		visits = append(visits, v)
	}
	sort.Slice(visits, func(i, j int) bool {
		if !visits[i].Time.Equal(visits[j].Time) {
			return visits[i].Time.Before(visits[j].Time)
		}
		return visits[i].Stop.Less(visits[j].Stop)
	})
	return visits
}
