// Package collector gathers the raw inputs of the analysis pipeline from the
// municipal transit API: the static base data (stops, routes, timetables)
// and the live vehicle positions accumulated over a collection window.
//
// The API reports failures inside a 200 response by replacing the result
// payload with an error string, so every fetch goes through a safe-request
// wrapper that turns those into retryable errors. A GTFS-RT VehiclePositions
// feed can serve as an alternative position source.
package collector
