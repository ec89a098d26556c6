package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/urbanflow/buswatch/analysis"
)

func TestWelfordState(t *testing.T) {
	var ws welfordState
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		ws.update(v)
	}
	if ws.Count != 8 {
		t.Errorf("Count = %d, want 8", ws.Count)
	}
	if math.Abs(ws.Mean-5) > 1e-9 {
		t.Errorf("Mean = %g, want 5", ws.Mean)
	}
	// Known population stddev of this sequence.
	if math.Abs(ws.stdDev()-2) > 1e-9 {
		t.Errorf("stdDev = %g, want 2", ws.stdDev())
	}
}

func TestWelfordStateFewObservations(t *testing.T) {
	var ws welfordState
	if got := ws.stdDev(); got != 0 {
		t.Errorf("stdDev of empty state = %g, want 0", got)
	}
	ws.update(7)
	if got := ws.stdDev(); got != 0 {
		t.Errorf("stdDev of single observation = %g, want 0", got)
	}
	if ws.Mean != 7 {
		t.Errorf("Mean = %g, want 7", ws.Mean)
	}
}

func TestStoreRecordDelays(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "buswatch.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	err = st.RecordDelays(ctx, []analysis.Result{
		{VehicleID: "1000", Line: "175", DelayMinutes: 2},
		{VehicleID: "1001", Line: "175", DelayMinutes: 4},
		{VehicleID: "2000", Line: "128", DelayMinutes: 1},
	}, at)
	if err != nil {
		t.Fatalf("RecordDelays: %v", err)
	}

	// A second batch in the same hour folds into the same bucket.
	err = st.RecordDelays(ctx, []analysis.Result{
		{VehicleID: "1002", Line: "175", DelayMinutes: 6},
	}, at.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("RecordDelays second batch: %v", err)
	}

	stats, err := st.LineStats(ctx, "175")
	if err != nil {
		t.Fatalf("LineStats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d buckets, want 1", len(stats))
	}
	got := stats[0]
	if got.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", got.SampleCount)
	}
	if math.Abs(got.MeanMinutes-4) > 1e-9 {
		t.Errorf("MeanMinutes = %g, want 4", got.MeanMinutes)
	}
	if got.MaxDelayMinutes != 6 {
		t.Errorf("MaxDelayMinutes = %g, want 6", got.MaxDelayMinutes)
	}

	other, err := st.LineStats(ctx, "128")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 1 || other[0].SampleCount != 1 {
		t.Errorf("line 128 stats = %+v", other)
	}
}

func TestStoreOpensInWALMode(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "buswatch.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	var mode string
	if err := st.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestStoreRecordDelaysEmpty(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "buswatch.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	if err := st.RecordDelays(context.Background(), nil, time.Now()); err != nil {
		t.Errorf("RecordDelays(nil) = %v, want nil", err)
	}
}
