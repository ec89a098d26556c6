package collector

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	liveDirLayout      = "2006-01-02_15:04"
	livePollInterval   = time.Minute
	livePollMaxRetries = 60
)

// CollectLive polls the live position feed once a minute for the given
// number of minutes, saving each snapshot under dataDir/live/<start>/ and
// reducing the run to processed.json at the end. Individual failed polls are
// retried for up to a minute and then skipped; the window keeps going.
func CollectLive(ctx context.Context, c *Client, dataDir string, minutes int) (string, error) {
	liveDir := filepath.Join(dataDir, "live", time.Now().Format(liveDirLayout))
	if err := os.MkdirAll(liveDir, 0o755); err != nil {
		return "", err
	}

	for i := 0; i < minutes; i++ {
		retries, err := pollOnce(ctx, c, liveDir)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			log.Printf("live poll %d/%d failed: %v", i+1, minutes, err)
		}

		if i < minutes-1 {
			// Keep the once-a-minute cadence; retries already consumed part
			// of the interval.
			wait := livePollInterval - time.Duration(retries)*time.Second
			if wait > 0 {
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return "", ctx.Err()
				}
			}
		}
	}

	if err := ProcessMeasurements(liveDir); err != nil {
		return "", fmt.Errorf("process measurements: %w", err)
	}
	return liveDir, nil
}

// pollOnce fetches one snapshot with retries and writes it to the live dir.
// It returns the number of retries spent so the caller can keep cadence.
func pollOnce(ctx context.Context, c *Client, liveDir string) (int, error) {
	var lastErr error
	for retry := 0; retry <= livePollMaxRetries; retry++ {
		if retry > 0 {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return retry, ctx.Err()
			}
		}

		records, err := c.Live(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		if c.metrics != nil {
			c.metrics.SnapshotInc()
			c.metrics.VehiclesSet(len(records))
		}

		name := time.Now().Format(liveDirLayout) + ".json"
		path := filepath.Join(liveDir, name)
		if err := writeJSON(path, map[string]any{"result": records}); err != nil {
			return retry, err
		}
		log.Printf("saved live snapshot (%d vehicles) to %s", len(records), path)
		return retry, nil
	}
	return livePollMaxRetries, lastErr
}
