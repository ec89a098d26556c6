package collector

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/urbanflow/buswatch/analysis"
	"github.com/urbanflow/buswatch/transit"
)

// RTFeed reads vehicle positions from a GTFS-Realtime VehiclePositions
// endpoint. It is an alternative to the Warsaw live API: repeated Ingest
// calls accumulate positions into trajectories keyed by vehicle id, in the
// same shape ProcessMeasurements produces.
type RTFeed struct {
	url        string
	httpClient *http.Client
	set        transit.TrajectorySet
}

func NewRTFeed(url string, timeout time.Duration) *RTFeed {
	return &RTFeed{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		set:        transit.TrajectorySet{},
	}
}

func fetchFeed(client *http.Client, url string) (*gtfsrtpb.FeedMessage, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch gtfs-rt feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch gtfs-rt feed: unexpected status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gtfs-rt feed: %w", err)
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, fmt.Errorf("decode gtfs-rt feed: %w", err)
	}
	return &fm, nil
}

// Ingest fetches the feed once and appends one measurement per vehicle
// entity that carries an id and a position. Entities without a timestamp
// fall back to the feed header timestamp.
func (f *RTFeed) Ingest() (int, error) {
	fm, err := fetchFeed(f.httpClient, f.url)
	if err != nil {
		return 0, err
	}
	var headerTS int64
	if fm.Header != nil && fm.Header.Timestamp != nil {
		headerTS = int64(*fm.Header.Timestamp)
	}
	added := 0
	for _, e := range fm.Entity {
		v := e.Vehicle
		if v == nil || v.Vehicle == nil || v.Vehicle.Id == nil || v.Position == nil {
			continue
		}
		if v.Position.Latitude == nil || v.Position.Longitude == nil {
			continue
		}
		ts := headerTS
		if v.Timestamp != nil {
			ts = int64(*v.Timestamp)
		}
		if ts == 0 {
			continue
		}
		vehicleID := *v.Vehicle.Id
		traj := f.set[vehicleID]
		if traj == nil {
			traj = &transit.Trajectory{}
			if v.Trip != nil && v.Trip.RouteId != nil {
				traj.Line = *v.Trip.RouteId
			}
			f.set[vehicleID] = traj
		}
		traj.Measurements = append(traj.Measurements, transit.Measurement{
			Time: time.Unix(ts, 0).Format(analysis.MeasurementTimeLayout),
			Lat:  float64(*v.Position.Latitude),
			Lon:  float64(*v.Position.Longitude),
		})
		added++
	}
	return added, nil
}

// Collect polls the feed once a minute for the given number of minutes and
// writes the accumulated trajectories to processed.json under
// dataDir/live/<start>/, the same layout CollectLive produces.
func (f *RTFeed) Collect(ctx context.Context, dataDir string, minutes int) (string, error) {
	liveDir := filepath.Join(dataDir, "live", time.Now().Format(liveDirLayout))
	if err := os.MkdirAll(liveDir, 0o755); err != nil {
		return "", err
	}

	for i := 0; i < minutes; i++ {
		added, err := f.Ingest()
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Printf("gtfs-rt poll %d/%d failed: %v", i+1, minutes, err)
		} else {
			log.Printf("gtfs-rt poll %d/%d: %d positions", i+1, minutes, added)
		}

		if i < minutes-1 {
			select {
			case <-time.After(livePollInterval):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}

	path := filepath.Join(liveDir, transit.ProcessedFile)
	if err := writeJSON(path, f.Snapshot()); err != nil {
		return "", err
	}
	return liveDir, nil
}

// Snapshot returns the accumulated trajectories with measurements in time
// order, ready for the analysis pipeline.
func (f *RTFeed) Snapshot() transit.TrajectorySet {
	for _, traj := range f.set {
		sort.Slice(traj.Measurements, func(i, j int) bool {
			return traj.Measurements[i].Time < traj.Measurements[j].Time
		})
	}
	return f.set
}
