package analysis

import (
	"github.com/urbanflow/buswatch/geo"
	"github.com/urbanflow/buswatch/transit"
)

// nearestStopInList finds the stop from the candidate list closest to the
// segment (a, b), scoring each stop by the nearer of its distances to the two
// endpoints. Stops without known coordinates are skipped. On exact ties the
// first-seen stop wins.
func nearestStopInList(a, b transit.Waypoint, stops []transit.StopKey, idx *transit.Index) (transit.StopKey, float64, bool) {
	var closest transit.StopKey
	closestDist := 0.0
	found := false

	for _, key := range stops {
		wp, ok := idx.StopCoord(key)
		if !ok {
			continue
		}
		dist := min(
			geo.HaversineKM(a.Latitude, a.Longitude, wp.Latitude, wp.Longitude),
			geo.HaversineKM(b.Latitude, b.Longitude, wp.Latitude, wp.Longitude),
		)
		if !found || dist < closestDist {
			closest = key
			closestDist = dist
			found = true
		}
	}
	return closest, closestDist, found
}

// NearestStop finds the stop on any route of the line closest to the segment
// (a, b). Every route is searched independently and the route-level winners
// compete by the same minimum-distance rule; routes are visited in sorted
// name order so the first-seen tie-break is deterministic. Returns false when
// the line has no routes or no candidate stop has known coordinates.
func NearestStop(a, b transit.Waypoint, line string, idx *transit.Index) (transit.StopKey, float64, bool) {
	var closest transit.StopKey
	closestDist := 0.0
	found := false

	for _, route := range idx.RouteNames(line) {
		key, dist, ok := nearestStopInList(a, b, idx.RouteStops(line, route), idx)
		if !ok {
			continue
		}
		if !found || dist < closestDist {
			closest = key
			closestDist = dist
			found = true
		}
	}
	return closest, closestDist, found
}
