package analysis

import (
	"reflect"
	"testing"

	"github.com/urbanflow/buswatch/transit"
)

func punctualitySet() transit.TrajectorySet {
	atStop := []transit.Measurement{
		{Time: "2024-02-21 12:05:00", Lat: 52.2324, Lon: 21.0457},
		{Time: "2024-02-21 12:05:30", Lat: 52.2324, Lon: 21.0457},
	}
	return transit.TrajectorySet{
		"1000": {Line: "175", Measurements: atStop},
		"1001": {Line: "175", Measurements: atStop},
		"2000": {Line: "999", Measurements: atStop}, // unknown line
		"3000": {Line: "175"},                       // no measurements
	}
}

func TestAnalyzePunctuality(t *testing.T) {
	idx := delayIndex("12:08:00")

	results := AnalyzePunctuality(punctualitySet(), idx, Options{Workers: 4})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	if results[0].VehicleID != "1000" || results[1].VehicleID != "1001" {
		t.Errorf("results must be sorted by vehicle ID, got %+v", results)
	}
	for _, r := range results {
		if r.Line != "175" {
			t.Errorf("unexpected line %q", r.Line)
		}
		if r.DelayMinutes != 3 {
			t.Errorf("expected 3 minutes for vehicle %s, got %v", r.VehicleID, r.DelayMinutes)
		}
	}
}

func TestAnalyzePunctuality_Idempotent(t *testing.T) {
	idx := fixtureIndex()
	set := transit.TrajectorySet{
		"1000": {Line: "175", Measurements: []transit.Measurement{
			{Time: "2024-02-21 11:58:00", Lat: 52.2320, Lon: 21.0450},
			{Time: "2024-02-21 11:59:00", Lat: 52.2324, Lon: 21.0457},
			{Time: "2024-02-21 12:00:30", Lat: 52.2330, Lon: 21.0540},
		}},
		"1001": {Line: "175", Measurements: []transit.Measurement{
			{Time: "2024-02-21 12:04:00", Lat: 52.2324, Lon: 21.0457},
			{Time: "2024-02-21 12:05:00", Lat: 52.2326, Lon: 21.0470},
		}},
	}

	first := AnalyzePunctuality(set, idx, Options{Workers: 8})
	for i := 0; i < 5; i++ {
		again := AnalyzePunctuality(set, idx, Options{Workers: 8})
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed:\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}

func TestAnalyzePunctuality_EmptySet(t *testing.T) {
	idx := delayIndex("12:08:00")

	if results := AnalyzePunctuality(transit.TrajectorySet{}, idx, Options{}); len(results) != 0 {
		t.Errorf("expected no results for an empty set, got %d", len(results))
	}
}
