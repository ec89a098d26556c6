package analysis

import (
	"sort"

	"github.com/urbanflow/buswatch/geo"
	"github.com/urbanflow/buswatch/transit"
)

// SpeedReport summarizes speeding incidents across a trajectory set
type SpeedReport struct {
	VehiclesChecked int
	Offenders       []string // vehicle IDs with at least one segment over the limit, sorted
	// Locations accumulates the midpoint and both endpoints of every
	// offending segment, for downstream heatmap rendering.
	Locations []transit.Waypoint
}

// AnalyzeSpeed derives per-segment speeds from consecutive measurements and
// flags segments faster than limitKMH. Pairs with malformed timestamps or
// zero elapsed time are skipped.
func AnalyzeSpeed(set transit.TrajectorySet, limitKMH float64) SpeedReport {
	report := SpeedReport{VehiclesChecked: len(set)}
	offenders := map[string]bool{}

	for _, id := range set.VehicleIDs() {
		traj := set[id]
		for i := 1; i < len(traj.Measurements); i++ {
			m1 := traj.Measurements[i-1]
			m2 := traj.Measurements[i]

			t1, ok1 := parseMeasurementTime(m1.Time)
			t2, ok2 := parseMeasurementTime(m2.Time)
			if !ok1 || !ok2 {
				continue
			}
			hours := t2.Sub(t1).Hours()
			if hours <= 0 {
				continue
			}

			distKM := geo.HaversineKM(m1.Lat, m1.Lon, m2.Lat, m2.Lon)
			if distKM/hours <= limitKMH {
				continue
			}

			offenders[id] = true
			report.Locations = append(report.Locations,
				transit.Waypoint{Longitude: (m1.Lon + m2.Lon) / 2, Latitude: (m1.Lat + m2.Lat) / 2},
				transit.Waypoint{Longitude: m1.Lon, Latitude: m1.Lat},
				transit.Waypoint{Longitude: m2.Lon, Latitude: m2.Lat},
			)
		}
	}

	for id := range offenders {
		report.Offenders = append(report.Offenders, id)
	}
	sort.Strings(report.Offenders)
	return report
}
