// Package transit provides the static transit tables and their in-memory
// index: stop coordinates, line routes and timetables, plus the collected
// vehicle trajectories.
//
// The index is built once from the collector's JSON files and is read-only
// during analysis, so it is safe to share across workers.
package transit
