// Package internal holds cross-cutting helpers shared by the buswatch
// binaries.
package internal

import (
	"log"
	"os"
)

// InitLogging configures the process-wide logger. Poll and snapshot events
// land close together, so timestamps carry microseconds.
func InitLogging() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
