package transit

// Waypoint represents a geographical coordinate
type Waypoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// StopKey identifies one physical stop post: a stop group (e.g. an
// intersection shared by several posts) plus the post number within it.
type StopKey struct {
	GroupID string `json:"busstop_id"`
	PostNo  string `json:"busstop_nr"`
}

// Less orders stop keys by group then post number.
func (k StopKey) Less(o StopKey) bool {
	if k.GroupID != o.GroupID {
		return k.GroupID < o.GroupID
	}
	return k.PostNo < o.PostNo
}

// TimetableKey addresses the scheduled departures of one line at one stop post
type TimetableKey struct {
	Stop StopKey
	Line string
}

// Measurement is one timestamped position ping for a vehicle.
// Time uses the collector's "YYYY-MM-DD HH:MM:SS" layout.
type Measurement struct {
	Time string  `json:"Time"`
	Lat  float64 `json:"Lat"`
	Lon  float64 `json:"Lon"`
}

// Trajectory is one vehicle's collected position sequence, ordered by the
// collector. Immutable input to the analysis pipeline.
type Trajectory struct {
	Line         string        `json:"Lines"`
	Brigade      string        `json:"Brigade"`
	Measurements []Measurement `json:"Measurements"`
}

// TrajectorySet maps vehicle IDs to their trajectories
type TrajectorySet map[string]*Trajectory

// StopRecord is the on-disk shape of one stop in stops.json
type StopRecord struct {
	GroupID string   `json:"busstop_id"`
	PostNo  string   `json:"busstop_nr"`
	Name    string   `json:"name"`
	Lon     string   `json:"lon"`
	Lat     string   `json:"lat"`
	Lines   []string `json:"lines"`
}

// Departure is one scheduled departure in schedules.json
type Departure struct {
	Time      string `json:"time"`
	Direction string `json:"direction"`
	Route     string `json:"route"`
	Brigade   string `json:"brigade"`
}

// ScheduleRecord is the on-disk shape of one (stop, line) timetable entry
type ScheduleRecord struct {
	GroupID  string      `json:"busstop_id"`
	PostNo   string      `json:"busstop_nr"`
	Line     string      `json:"line"`
	Schedule []Departure `json:"schedule"`
}

// RoutesTable is the on-disk shape of routes.json:
// line -> route name -> ordered stop keys.
type RoutesTable map[string]map[string][]StopKey
