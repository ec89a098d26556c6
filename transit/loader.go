package transit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Base-data file names produced by the collector.
const (
	StopsFile     = "stops.json"
	RoutesFile    = "routes.json"
	SchedulesFile = "schedules.json"
	ProcessedFile = "processed.json"
)

// LoadIndex reads stops.json, routes.json and schedules.json from dataDir
// and builds the static index.
func LoadIndex(dataDir string) (*Index, error) {
	var stops []StopRecord
	if err := readJSON(filepath.Join(dataDir, StopsFile), &stops); err != nil {
		return nil, fmt.Errorf("stops: %w", err)
	}
	var routes RoutesTable
	if err := readJSON(filepath.Join(dataDir, RoutesFile), &routes); err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	var schedules []ScheduleRecord
	if err := readJSON(filepath.Join(dataDir, SchedulesFile), &schedules); err != nil {
		return nil, fmt.Errorf("schedules: %w", err)
	}
	return NewIndex(stops, routes, schedules), nil
}

// LoadTrajectories reads a processed.json trajectory set
func LoadTrajectories(path string) (TrajectorySet, error) {
	var set TrajectorySet
	if err := readJSON(path, &set); err != nil {
		return nil, fmt.Errorf("trajectories: %w", err)
	}
	return set, nil
}

// VehicleIDs returns the set's vehicle IDs in sorted order
func (s TrajectorySet) VehicleIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
