package analysis

import (
	"time"

	"github.com/urbanflow/buswatch/geo"
	"github.com/urbanflow/buswatch/transit"
)

// MeasurementTimeLayout is the collector's timestamp format.
const MeasurementTimeLayout = "2006-01-02 15:04:05"

// EstimateTimeAtStop interpolates the moment the vehicle passed nearest to
// the stop, linearly along the measurement segment by relative distance. The
// constant-speed assumption is crude but segments between consecutive pings
// are short, typically under a minute.
//
// When both endpoints coincide with the stop the ratio is undefined; the
// earlier timestamp is returned.
func EstimateTimeAtStop(t1, t2 time.Time, p1, p2, stop transit.Waypoint) time.Time {
	d1 := geo.HaversineKM(p1.Latitude, p1.Longitude, stop.Latitude, stop.Longitude)
	d2 := geo.HaversineKM(p2.Latitude, p2.Longitude, stop.Latitude, stop.Longitude)
	total := d1 + d2
	if total == 0 {
		return t1
	}
	return t1.Add(time.Duration(float64(t2.Sub(t1)) * (d1 / total)))
}

// parseMeasurementTime parses a collector timestamp; false on malformed input
func parseMeasurementTime(s string) (time.Time, bool) {
	t, err := time.Parse(MeasurementTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
