package analysis

import (
	"testing"
	"time"

	"github.com/urbanflow/buswatch/transit"
)

// delayIndex builds a universe where stop 1/101 lies on line 175's only
// route, with the given scheduled departures.
func delayIndex(departures ...string) *transit.Index {
	stops := []transit.StopRecord{
		{GroupID: "1", PostNo: "101", Lon: "21.0457", Lat: "52.2324"},
	}
	routes := transit.RoutesTable{
		"175": {"TP": {{GroupID: "1", PostNo: "101"}}},
	}
	deps := make([]transit.Departure, len(departures))
	for i, d := range departures {
		deps[i] = transit.Departure{Time: d}
	}
	schedules := []transit.ScheduleRecord{
		{GroupID: "1", PostNo: "101", Line: "175", Schedule: deps},
	}
	return transit.NewIndex(stops, routes, schedules)
}

func visitAt(t *testing.T, clock string) []StopVisit {
	t.Helper()
	return []StopVisit{{
		Stop: transit.StopKey{GroupID: "1", PostNo: "101"},
		Time: mustParse(t, "2024-02-21 "+clock),
	}}
}

func TestVisitDelays(t *testing.T) {
	tests := []struct {
		name       string
		departures []string
		visit      string
		want       []float64
	}{
		{
			name:       "on time",
			departures: []string{"12:05:00"},
			visit:      "12:05:00",
			want:       []float64{0},
		},
		{
			name:       "five minutes early",
			departures: []string{"12:10:00"},
			visit:      "12:05:00",
			want:       []float64{300},
		},
		{
			name:       "within tolerance after schedule clamps to zero",
			departures: []string{"12:03:30"},
			visit:      "12:05:00",
			want:       []float64{0},
		},
		{
			name:       "exactly at tolerance boundary is excluded",
			departures: []string{"12:03:00"},
			visit:      "12:05:00",
			want:       nil,
		},
		{
			name:       "beyond tolerance is excluded",
			departures: []string{"12:02:00"},
			visit:      "12:05:00",
			want:       nil,
		},
		{
			name:       "minimum over candidates",
			departures: []string{"12:30:00", "12:06:00", "12:01:00"},
			visit:      "12:05:00",
			want:       []float64{60},
		},
		{
			name:       "malformed schedule entries are skipped",
			departures: []string{"garbage", "12:06:00"},
			visit:      "12:05:00",
			want:       []float64{60},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := delayIndex(tt.departures...)
			got := visitDelays(visitAt(t, tt.visit), "175", idx, DefaultEarlyToleranceSec)

			if len(got) != len(tt.want) {
				t.Fatalf("expected %d samples, got %d (%v)", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sample %d: expected %v, got %v", i, tt.want[i], got[i])
				}
				if got[i] < 0 {
					t.Errorf("delay samples must never be negative, got %v", got[i])
				}
			}
		})
	}
}

func TestVisitDelays_MissingTimetableEntryIsSkipped(t *testing.T) {
	idx := delayIndex("12:05:00")

	visits := []StopVisit{{
		Stop: transit.StopKey{GroupID: "9", PostNo: "999"},
		Time: mustParse(t, "2024-02-21 12:05:00"),
	}}
	if got := visitDelays(visits, "175", idx, DefaultEarlyToleranceSec); len(got) != 0 {
		t.Errorf("a visit with no timetable entry must yield no sample, got %v", got)
	}
}

func TestMedianDelayMinutes(t *testing.T) {
	// Vehicle sits on the stop at 12:05; next departure 12:08 -> 3 minutes.
	idx := delayIndex("12:08:00")
	traj := &transit.Trajectory{
		Line: "175",
		Measurements: []transit.Measurement{
			{Time: "2024-02-21 12:05:00", Lat: 52.2324, Lon: 21.0457},
			{Time: "2024-02-21 12:05:30", Lat: 52.2324, Lon: 21.0457},
		},
	}

	got, ok := MedianDelayMinutes(traj, idx, Options{})
	if !ok {
		t.Fatal("expected a delay result")
	}
	if got != 3 {
		t.Errorf("expected 3 minutes, got %v", got)
	}
}

func TestMedianDelayMinutes_UnknownLine(t *testing.T) {
	idx := delayIndex("12:08:00")
	traj := &transit.Trajectory{
		Line: "999",
		Measurements: []transit.Measurement{
			{Time: "2024-02-21 12:05:00", Lat: 52.2324, Lon: 21.0457},
			{Time: "2024-02-21 12:05:30", Lat: 52.2324, Lon: 21.0457},
		},
	}

	if _, ok := MedianDelayMinutes(traj, idx, Options{}); ok {
		t.Error("a vehicle on an unknown line must be excluded")
	}
}

func TestMedianDelayMinutes_SanityBoundExcludesRunawayEstimates(t *testing.T) {
	// Only candidate is two hours ahead: a 7200 s "delay" is a bad match,
	// not a real delay, so the vehicle drops out entirely.
	idx := delayIndex("14:05:00")
	traj := &transit.Trajectory{
		Line: "175",
		Measurements: []transit.Measurement{
			{Time: "2024-02-21 12:05:00", Lat: 52.2324, Lon: 21.0457},
			{Time: "2024-02-21 12:05:30", Lat: 52.2324, Lon: 21.0457},
		},
	}

	if _, ok := MedianDelayMinutes(traj, idx, Options{}); ok {
		t.Error("a median of 7200 s must be rejected by the sanity bound")
	}
}

func TestMedianDelayMinutes_NoSamples(t *testing.T) {
	idx := delayIndex() // timetable entry exists but has no departures
	traj := &transit.Trajectory{
		Line: "175",
		Measurements: []transit.Measurement{
			{Time: "2024-02-21 12:05:00", Lat: 52.2324, Lon: 21.0457},
			{Time: "2024-02-21 12:05:30", Lat: 52.2324, Lon: 21.0457},
		},
	}

	if _, ok := MedianDelayMinutes(traj, idx, Options{}); ok {
		t.Error("a vehicle with no computable samples must be excluded")
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{name: "single", samples: []float64{5}, want: 5},
		{name: "odd", samples: []float64{9, 1, 5}, want: 5},
		{name: "even", samples: []float64{4, 1, 3, 2}, want: 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.samples); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTimeOfDayDiffSeconds_IgnoresDate(t *testing.T) {
	est := time.Date(2024, 2, 21, 12, 5, 0, 0, time.UTC)
	sched := time.Date(0, 1, 1, 12, 6, 30, 0, time.UTC)

	if got := timeOfDayDiffSeconds(est, sched); got != 90 {
		t.Errorf("expected 90, got %d", got)
	}
}
