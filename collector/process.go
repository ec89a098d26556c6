package collector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urbanflow/buswatch/transit"
)

// ProcessMeasurements folds the minute snapshots in dir into one trajectory
// per vehicle, sorted by measurement time, and writes the result to
// processed.json in the same directory. Snapshots whose result payload is
// not a list (failed polls saved by older collectors) are skipped.
func ProcessMeasurements(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	set := transit.TrajectorySet{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") || entry.Name() == transit.ProcessedFile {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}

		var snapshot struct {
			Result json.RawMessage `json:"result"`
		}
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return fmt.Errorf("snapshot %s: %w", entry.Name(), err)
		}
		var records []LiveRecord
		if err := json.Unmarshal(snapshot.Result, &records); err != nil {
			continue
		}

		for _, rec := range records {
			traj, ok := set[rec.VehicleNumber]
			if !ok {
				traj = &transit.Trajectory{Line: rec.Lines, Brigade: rec.Brigade}
				set[rec.VehicleNumber] = traj
			}
			traj.Measurements = append(traj.Measurements, transit.Measurement{
				Time: rec.Time,
				Lat:  rec.Lat,
				Lon:  rec.Lon,
			})
		}
	}

	// The timestamp layout sorts lexicographically.
	for _, traj := range set {
		sort.Slice(traj.Measurements, func(i, j int) bool {
			return traj.Measurements[i].Time < traj.Measurements[j].Time
		})
	}

	return writeJSON(filepath.Join(dir, transit.ProcessedFile), set)
}
