// Package store persists per-line delay statistics to an embedded SQLite
// database. Results of repeated analysis runs are folded into hourly
// buckets with Welford's online algorithm, so the database keeps running
// mean and variance per line without storing individual samples.
package store
