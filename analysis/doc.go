// Package analysis implements the trajectory-to-schedule matching pipeline:
// nearest-stop location along measurement segments, arrival-time
// interpolation, reduction to one best visit per stop, and delay estimation
// against the timetable, plus the speed and depot analyses derived from the
// same trajectories.
//
// The pipeline is a pure batch transform over the read-only transit index.
// There are no fatal errors inside it: malformed timestamps, unknown lines,
// unmatched stops and missing timetable entries are all per-item skips, in
// line with best-effort estimation over noisy position data.
package analysis
