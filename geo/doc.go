// Package geo provides the great-circle distance primitive used by the
// analysis pipeline. Coordinates are decimal degrees; distances are
// kilometers.
package geo
