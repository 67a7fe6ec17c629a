// Package types defines the run identity and lifecycle record shapes shared
// across copybot services.
package types

import (
	"fmt"
	"regexp"
	"time"
)

// Version is the canonical project version (lockstep across all components).
const Version = "0.1.0"

// runIDPattern matches canonical run IDs: a lowercase word, a dash, and a
// unix timestamp, e.g. "replay-1700000000" or "recorder-1700000123".
var runIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*-[0-9]+$`)

// NewRunID generates a canonical run ID for the given service name.
// Format: <service>-<unix_timestamp>.
func NewRunID(service string) string {
	return fmt.Sprintf("%s-%d", service, time.Now().Unix())
}

// NewReplayRunID generates a run ID for a replay run ("replay-<unix_timestamp>").
func NewReplayRunID() string {
	return NewRunID("replay")
}

// ValidRunID reports whether id is a canonical run ID.
func ValidRunID(id string) bool {
	return runIDPattern.MatchString(id)
}

// UnixSeconds converts t to unix seconds as a float64, the timestamp encoding
// used by run events and manifests.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
