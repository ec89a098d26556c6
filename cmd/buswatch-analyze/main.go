package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/urbanflow/buswatch/analysis"
	"github.com/urbanflow/buswatch/config"
	"github.com/urbanflow/buswatch/internal"
	"github.com/urbanflow/buswatch/store"
	"github.com/urbanflow/buswatch/transit"
)

func main() {
	punctuality := flag.Bool("punctuality", false, "estimate per-vehicle delays against the timetable")
	speed := flag.Bool("speed", false, "find vehicles exceeding the speed limit")
	depots := flag.Bool("depots", false, "find vehicles parked for the whole window")
	run := flag.String("run", "", "live collection run to analyze (directory name under <dataDir>/live)")
	dataDir := flag.String("dataDir", "", "data directory (overrides config)")
	speedLimit := flag.Float64("speedLimit", 0, "speed limit in km/h (overrides config)")
	flag.Parse()

	internal.InitLogging()
	if err := config.LoadAppConfig(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.Config

	if *dataDir != "" {
		cfg.Collector.DataDir = *dataDir
	}
	if *speedLimit > 0 {
		cfg.Analysis.SpeedLimitKMH = *speedLimit
	}

	if *run == "" {
		listRuns(cfg.Collector.DataDir)
		return
	}
	if !*punctuality && !*speed && !*depots {
		log.Fatal("nothing to do: pass -punctuality, -speed or -depots")
	}

	set, err := transit.LoadTrajectories(filepath.Join(cfg.Collector.DataDir, "live", *run, transit.ProcessedFile))
	if err != nil {
		log.Fatalf("load trajectories: %v", err)
	}
	log.Printf("loaded %d vehicle trajectories from run %s", len(set), *run)

	if *punctuality {
		idx, err := transit.LoadIndex(cfg.Collector.DataDir)
		if err != nil {
			log.Fatalf("load base data: %v", err)
		}
		runPunctuality(set, idx, cfg)
	}
	if *speed {
		runSpeed(set, cfg.Analysis.SpeedLimitKMH)
	}
	if *depots {
		runDepots(set)
	}
}

// listRuns prints the collection runs available for analysis
func listRuns(dataDir string) {
	liveDir := filepath.Join(dataDir, "live")
	entries, err := os.ReadDir(liveDir)
	if err != nil {
		log.Fatalf("no collection runs under %s: %v", liveDir, err)
	}
	var runs []string
	for _, e := range entries {
		if e.IsDir() {
			runs = append(runs, e.Name())
		}
	}
	sort.Strings(runs)
	fmt.Println("available runs (pass one via -run):")
	for _, r := range runs {
		fmt.Println("  " + r)
	}
}

func runPunctuality(set transit.TrajectorySet, idx *transit.Index, cfg config.AppConfig) {
	opts := analysis.Options{
		EarlyToleranceSec: cfg.Analysis.EarlyToleranceSec,
		MaxMedianDelaySec: cfg.Analysis.MaxMedianDelaySec,
		Workers:           cfg.Analysis.Workers,
	}
	results := analysis.AnalyzePunctuality(set, idx, opts)
	log.Printf("punctuality: %d vehicles with a delay estimate", len(results))

	summary, ok := analysis.Summarize(results, cfg.Analysis.TopLines, cfg.Analysis.MinReportSize)
	if !ok {
		fmt.Printf("only %d vehicles analyzed, not enough for a summary\n", summary.Count)
		return
	}

	fmt.Printf("vehicles analyzed:  %d\n", summary.Count)
	fmt.Printf("mean delay:         %.2f min\n", summary.MeanMinutes)
	fmt.Printf("stddev:             %.2f min\n", summary.StdDevMinutes)
	fmt.Printf("min / p25 / median / p75 / max: %.2f / %.2f / %.2f / %.2f / %.2f min\n",
		summary.MinMinutes, summary.P25Minutes, summary.MedianMinutes,
		summary.P75Minutes, summary.MaxMinutes)
	fmt.Println("worst lines by mean delay:")
	for _, ld := range summary.TopLines {
		fmt.Printf("  line %-4s %.2f min over %d vehicles\n", ld.Line, ld.MeanMinutes, ld.Vehicles)
	}

	if cfg.Store.Path != "" {
		recordResults(cfg.Store.Path, results)
	}
}

func recordResults(path string, results []analysis.Result) {
	st, err := store.Open(path)
	if err != nil {
		log.Printf("open delay store: %v", err)
		return
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.RecordDelays(ctx, results, time.Now()); err != nil {
		log.Printf("record delays: %v", err)
		return
	}
	log.Printf("recorded %d delay results to %s", len(results), path)
}

func runSpeed(set transit.TrajectorySet, limitKMH float64) {
	report := analysis.AnalyzeSpeed(set, limitKMH)
	fmt.Printf("checked %d vehicles against %.0f km/h\n", report.VehiclesChecked, limitKMH)
	fmt.Printf("%d exceeded the limit at least once\n", len(report.Offenders))
	for _, id := range report.Offenders {
		fmt.Println("  " + id)
	}
	if len(report.Locations) > 0 {
		fmt.Println("violation locations (lat lon):")
		for _, w := range report.Locations {
			fmt.Printf("  %.6f %.6f\n", w.Latitude, w.Longitude)
		}
	}
}

func runDepots(set transit.TrajectorySet) {
	stays := analysis.FindDepotStays(set)
	fmt.Printf("%d vehicles parked for the whole window\n", len(stays))
	for _, s := range stays {
		fmt.Printf("  %s at %.6f %.6f for %.1f h\n",
			s.VehicleID, s.Location.Latitude, s.Location.Longitude, s.Hours)
	}
}
