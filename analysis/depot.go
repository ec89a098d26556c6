package analysis

import (
	"github.com/urbanflow/buswatch/geo"
	"github.com/urbanflow/buswatch/transit"
)

// Depot detection thresholds: a vehicle that covered less than 0.1 km/h of
// straight-line distance over more than half an hour is parked, not driving.
const (
	depotMaxSpeedKMH  = 0.1
	depotMinHours     = 0.5
	depotMinPositions = 5
)

// DepotStay marks a vehicle that sat still for its whole collection window
type DepotStay struct {
	VehicleID string
	Location  transit.Waypoint // first measured position
	Hours     float64
}

// FindDepotStays compares each vehicle's first and last measurement and
// reports the ones that effectively never moved. Vehicles with too few
// measurements or malformed boundary timestamps are skipped.
func FindDepotStays(set transit.TrajectorySet) []DepotStay {
	var stays []DepotStay

	for _, id := range set.VehicleIDs() {
		traj := set[id]
		if len(traj.Measurements) < depotMinPositions {
			continue
		}

		first := traj.Measurements[0]
		last := traj.Measurements[len(traj.Measurements)-1]

		t1, ok1 := parseMeasurementTime(first.Time)
		t2, ok2 := parseMeasurementTime(last.Time)
		if !ok1 || !ok2 {
			continue
		}
		hours := t2.Sub(t1).Hours()
		if hours <= 0 {
			continue
		}

		distKM := geo.HaversineKM(first.Lat, first.Lon, last.Lat, last.Lon)
		if distKM/hours < depotMaxSpeedKMH && hours > depotMinHours {
			stays = append(stays, DepotStay{
				VehicleID: id,
				Location:  transit.Waypoint{Longitude: first.Lon, Latitude: first.Lat},
				Hours:     hours,
			})
		}
	}
	return stays
}
