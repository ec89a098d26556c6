package transit

import (
	"sort"
	"strconv"
)

// Index stores the static transit tables in memory for fast lookups
type Index struct {
	stopCoord  map[StopKey]Waypoint     // stop key -> lon/lat
	stopNames  map[StopKey]string       // stop key -> stop group name
	routes     map[string]map[string][]StopKey // line -> route name -> ordered stops
	routeNames map[string][]string      // line -> route names, sorted
	timetable  map[TimetableKey][]string // scheduled departures (HH:MM:SS)
}

// NewIndex builds an index from the loaded tables. Stops whose textual
// coordinates do not parse are left out of the coordinate universe; the
// locator skips them during search.
func NewIndex(stops []StopRecord, routes RoutesTable, schedules []ScheduleRecord) *Index {
	idx := &Index{
		stopCoord:  map[StopKey]Waypoint{},
		stopNames:  map[StopKey]string{},
		routes:     map[string]map[string][]StopKey{},
		routeNames: map[string][]string{},
		timetable:  map[TimetableKey][]string{},
	}
	for _, s := range stops {
		key := StopKey{GroupID: s.GroupID, PostNo: s.PostNo}
		lon, errLon := strconv.ParseFloat(s.Lon, 64)
		lat, errLat := strconv.ParseFloat(s.Lat, 64)
		if errLon != nil || errLat != nil {
			continue
		}
		idx.stopCoord[key] = Waypoint{Longitude: lon, Latitude: lat}
		idx.stopNames[key] = s.Name
	}
	for line, byRoute := range routes {
		idx.routes[line] = map[string][]StopKey{}
		names := make([]string, 0, len(byRoute))
		for route, stopSeq := range byRoute {
			idx.routes[line][route] = stopSeq
			names = append(names, route)
		}
		// Sorted route names keep the nearest-stop search order, and with it
		// the first-seen tie-break, stable across runs.
		sort.Strings(names)
		idx.routeNames[line] = names
	}
	for _, rec := range schedules {
		key := TimetableKey{
			Stop: StopKey{GroupID: rec.GroupID, PostNo: rec.PostNo},
			Line: rec.Line,
		}
		times := make([]string, 0, len(rec.Schedule))
		for _, dep := range rec.Schedule {
			times = append(times, dep.Time)
		}
		idx.timetable[key] = append(idx.timetable[key], times...)
	}
	return idx
}

// StopCoord returns the coordinates of a stop post, if known
func (idx *Index) StopCoord(key StopKey) (Waypoint, bool) {
	wp, ok := idx.stopCoord[key]
	return wp, ok
}

// StopName returns the stop group name, or "" when unknown
func (idx *Index) StopName(key StopKey) string { return idx.stopNames[key] }

// HasLine reports whether any route is known for the line
func (idx *Index) HasLine(line string) bool { return len(idx.routes[line]) > 0 }

// RouteNames returns the route names of a line in sorted order
func (idx *Index) RouteNames(line string) []string { return idx.routeNames[line] }

// RouteStops returns the ordered stop keys of one named route of a line
func (idx *Index) RouteStops(line, route string) []StopKey { return idx.routes[line][route] }

// Departures returns the scheduled departure times (HH:MM:SS, order
// irrelevant) of a line at a stop post. The second return is false when the
// timetable has no entry for the pair.
func (idx *Index) Departures(key StopKey, line string) ([]string, bool) {
	times, ok := idx.timetable[TimetableKey{Stop: key, Line: line}]
	return times, ok
}

// Lines returns all lines with at least one route, sorted
func (idx *Index) Lines() []string {
	lines := make([]string, 0, len(idx.routes))
	for line := range idx.routes {
		lines = append(lines, line)
	}
	sort.Strings(lines)
	return lines
}

// StopCount returns the number of stops with known coordinates
func (idx *Index) StopCount() int { return len(idx.stopCoord) }
