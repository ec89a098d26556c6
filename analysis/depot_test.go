package analysis

import (
	"testing"

	"github.com/urbanflow/buswatch/transit"
)

// stationary builds n measurements at the same position spread over the
// given start/end timestamps.
func stationary(n int, start, end string) []transit.Measurement {
	ms := make([]transit.Measurement, n)
	for i := range ms {
		ms[i] = transit.Measurement{Time: start, Lat: 52.2297, Lon: 21.0122}
	}
	ms[0].Time = start
	ms[n-1].Time = end
	return ms
}

func TestFindDepotStays(t *testing.T) {
	set := transit.TrajectorySet{
		"parked": {Line: "175", Measurements: stationary(6, "2024-02-21 12:00:00", "2024-02-21 13:00:00")},
		"moving": {Line: "175", Measurements: []transit.Measurement{
			{Time: "2024-02-21 12:00:00", Lat: 52.2297, Lon: 21.0122},
			{Time: "2024-02-21 12:15:00", Lat: 52.2310, Lon: 21.0150},
			{Time: "2024-02-21 12:30:00", Lat: 52.2340, Lon: 21.0200},
			{Time: "2024-02-21 12:45:00", Lat: 52.2400, Lon: 21.0300},
			{Time: "2024-02-21 13:00:00", Lat: 52.2500, Lon: 21.0400},
		}},
	}

	stays := FindDepotStays(set)
	if len(stays) != 1 {
		t.Fatalf("expected 1 depot stay, got %d", len(stays))
	}
	if stays[0].VehicleID != "parked" {
		t.Errorf("expected vehicle parked, got %s", stays[0].VehicleID)
	}
	if stays[0].Hours != 1 {
		t.Errorf("expected 1 hour, got %v", stays[0].Hours)
	}
}

func TestFindDepotStays_TooFewMeasurements(t *testing.T) {
	set := transit.TrajectorySet{
		"v": {Line: "175", Measurements: stationary(4, "2024-02-21 12:00:00", "2024-02-21 13:00:00")},
	}

	if stays := FindDepotStays(set); len(stays) != 0 {
		t.Errorf("fewer than 5 measurements must be skipped, got %v", stays)
	}
}

func TestFindDepotStays_ShortWindow(t *testing.T) {
	// Stationary but only 20 minutes observed: below the half-hour floor.
	set := transit.TrajectorySet{
		"v": {Line: "175", Measurements: stationary(6, "2024-02-21 12:00:00", "2024-02-21 12:20:00")},
	}

	if stays := FindDepotStays(set); len(stays) != 0 {
		t.Errorf("short windows must not count as depot stays, got %v", stays)
	}
}
