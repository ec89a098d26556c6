package analysis

import (
	"sort"
	"sync"

	"github.com/urbanflow/buswatch/transit"
)

// Result is one vehicle's punctuality outcome
type Result struct {
	VehicleID    string
	Line         string
	DelayMinutes float64
}

// AnalyzePunctuality computes the median delay for every vehicle in the set.
// Vehicles with an unknown line or no computable delay are excluded. Each
// vehicle's computation is independent and touches only the read-only index,
// so the work fans out across opts.Workers goroutines; results are collected
// and sorted by vehicle ID so the output does not depend on completion order.
func AnalyzePunctuality(set transit.TrajectorySet, idx *transit.Index, opts Options) []Result {
	opts = opts.withDefaults()

	ids := set.VehicleIDs()
	jobs := make(chan string)
	out := make(chan Result)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				traj := set[id]
				if delay, ok := MedianDelayMinutes(traj, idx, opts); ok {
					out <- Result{VehicleID: id, Line: traj.Line, DelayMinutes: delay}
				}
			}
		}()
	}

	go func() {
		for _, id := range ids {
			jobs <- id
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	var results []Result
	for r := range out {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].VehicleID < results[j].VehicleID })
	return results
}
