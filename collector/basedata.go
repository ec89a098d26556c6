package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/urbanflow/buswatch/transit"
)

const baseDataRetries = 9

// withRetries repeats fn until it succeeds or the attempts run out, pausing
// a second after every third miss to let the API's rate limiter recover.
func withRetries[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= baseDataRetries; attempt++ {
		if attempt > 0 && attempt%3 == 0 {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return zero, lastErr
}

// CollectBaseData downloads the stop universe, the route tables and every
// (stop, line) timetable, writing stops.json, routes.json and schedules.json
// into dataDir. Per-stop line lists and schedules are fetched with workers
// concurrent requests.
func CollectBaseData(ctx context.Context, c *Client, dataDir string, workers int) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	if workers < 1 {
		workers = 1
	}

	stops, err := collectStops(ctx, c, dataDir, workers)
	if err != nil {
		return fmt.Errorf("stops: %w", err)
	}
	if err := collectRoutes(ctx, c, dataDir); err != nil {
		return fmt.Errorf("routes: %w", err)
	}
	if err := collectSchedules(ctx, c, dataDir, stops, workers); err != nil {
		return fmt.Errorf("schedules: %w", err)
	}
	return nil
}

func collectStops(ctx context.Context, c *Client, dataDir string, workers int) ([]transit.StopRecord, error) {
	stops, err := withRetries(ctx, func() ([]transit.StopRecord, error) { return c.Stops(ctx) })
	if err != nil {
		return nil, err
	}
	log.Printf("fetched %d stops; resolving line lists", len(stops))

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
	)
	for i := range stops {
		wg.Add(1)
		sem <- struct{}{}
		go func(stop *transit.StopRecord) {
			defer wg.Done()
			defer func() { <-sem }()
			lines, err := withRetries(ctx, func() ([]string, error) {
				return c.Lines(ctx, stop.GroupID, stop.PostNo)
			})
			if err != nil {
				log.Printf("lines for stop %s/%s: %v", stop.GroupID, stop.PostNo, err)
				return
			}
			// Each goroutine owns its own slice element.
			stop.Lines = lines
		}(&stops[i])
	}
	wg.Wait()

	if err := writeJSON(filepath.Join(dataDir, transit.StopsFile), stops); err != nil {
		return nil, err
	}
	log.Printf("saved stop data to %s", filepath.Join(dataDir, transit.StopsFile))
	return stops, nil
}

func collectRoutes(ctx context.Context, c *Client, dataDir string) error {
	routes, err := withRetries(ctx, func() (transit.RoutesTable, error) { return c.Routes(ctx) })
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dataDir, transit.RoutesFile), routes); err != nil {
		return err
	}
	log.Printf("saved %d lines of route data to %s", len(routes), filepath.Join(dataDir, transit.RoutesFile))
	return nil
}

func collectSchedules(ctx context.Context, c *Client, dataDir string, stops []transit.StopRecord, workers int) error {
	var (
		wg      sync.WaitGroup
		sem     = make(chan struct{}, workers)
		mu      sync.Mutex
		records []transit.ScheduleRecord
	)
	for _, stop := range stops {
		for _, line := range stop.Lines {
			wg.Add(1)
			sem <- struct{}{}
			go func(stop transit.StopRecord, line string) {
				defer wg.Done()
				defer func() { <-sem }()
				deps, err := withRetries(ctx, func() ([]transit.Departure, error) {
					return c.Schedule(ctx, stop.GroupID, stop.PostNo, line)
				})
				if err != nil {
					log.Printf("schedule for stop %s/%s line %s: %v", stop.GroupID, stop.PostNo, line, err)
					return
				}
				mu.Lock()
				records = append(records, transit.ScheduleRecord{
					GroupID:  stop.GroupID,
					PostNo:   stop.PostNo,
					Line:     line,
					Schedule: deps,
				})
				mu.Unlock()
			}(stop, line)
		}
	}
	wg.Wait()

	if err := writeJSON(filepath.Join(dataDir, transit.SchedulesFile), records); err != nil {
		return err
	}
	log.Printf("saved %d timetable entries to %s", len(records), filepath.Join(dataDir, transit.SchedulesFile))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
