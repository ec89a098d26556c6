package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urbanflow/buswatch/collector"
	"github.com/urbanflow/buswatch/config"
	"github.com/urbanflow/buswatch/internal"
	"github.com/urbanflow/buswatch/metrics"
)

// collectorMetrics adapts the Prometheus collector to the callbacks the
// API client expects.
type collectorMetrics struct {
	c *metrics.Collector
}

func (m collectorMetrics) RequestObserve(d time.Duration) {
	m.c.PollsTotal.Inc()
	m.c.RequestDuration.Observe(d.Seconds())
}
func (m collectorMetrics) RequestErrInc() { m.c.PollErrors.Inc() }
func (m collectorMetrics) SnapshotInc()   { m.c.SnapshotsSaved.Inc() }
func (m collectorMetrics) VehiclesSet(n int) {
	m.c.VehiclesTracked.Set(float64(n))
}

func main() {
	base := flag.Bool("base", false, "collect base data (stops, routes, schedules)")
	live := flag.Bool("live", false, "collect live vehicle positions")
	gtfsrt := flag.Bool("gtfsrt", false, "collect positions from the configured GTFS-RT feed instead of the live API")
	minutes := flag.Int("minutes", 0, "live collection window in minutes (overrides config)")
	dataDir := flag.String("dataDir", "", "data directory (overrides config)")
	flag.Parse()

	internal.InitLogging()
	if err := config.LoadAppConfig(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.Config

	if *dataDir != "" {
		cfg.Collector.DataDir = *dataDir
	}
	if *minutes > 0 {
		cfg.Collector.LiveMinutes = *minutes
	}
	if !*base && !*live && !*gtfsrt {
		log.Fatal("nothing to do: pass -base, -live or -gtfsrt")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m collector.Metrics
	if cfg.Metrics.Addr != "" {
		mc := metrics.NewCollector()
		mc.Serve(cfg.Metrics.Addr)
		m = collectorMetrics{c: mc}
	}

	timeout := time.Duration(cfg.API.TimeoutMS) * time.Millisecond
	client := collector.NewClient(cfg.API.BaseURL, config.APIKey(), timeout, m)

	if *base {
		log.Printf("collecting base data into %s", cfg.Collector.DataDir)
		if err := collector.CollectBaseData(ctx, client, cfg.Collector.DataDir, cfg.Collector.Workers); err != nil {
			log.Fatalf("collect base data: %v", err)
		}
		log.Print("base data collection finished")
	}

	if *live {
		log.Printf("collecting live positions for %d minutes", cfg.Collector.LiveMinutes)
		dir, err := collector.CollectLive(ctx, client, cfg.Collector.DataDir, cfg.Collector.LiveMinutes)
		if err != nil {
			log.Fatalf("collect live positions: %v", err)
		}
		log.Printf("live collection finished, trajectories written to %s", dir)
	}

	if *gtfsrt {
		if cfg.Collector.VehiclePositionsURL == "" {
			log.Fatal("collector.vehiclePositionsURL is not configured")
		}
		feed := collector.NewRTFeed(cfg.Collector.VehiclePositionsURL, timeout)
		log.Printf("collecting GTFS-RT positions for %d minutes", cfg.Collector.LiveMinutes)
		dir, err := feed.Collect(ctx, cfg.Collector.DataDir, cfg.Collector.LiveMinutes)
		if err != nil {
			log.Fatalf("collect gtfs-rt positions: %v", err)
		}
		log.Printf("gtfs-rt collection finished, trajectories written to %s", dir)
	}
}
