package pipeline

import "time"

// Report summarizes one build run.
type Report struct {
	BuildID    string
	Started    time.Time
	Duration   time.Duration
	Pages      int
	Hubs       int
	Assets     int
	Errors     int
	Failed     []string // titles of documents that failed processing
	Collisions int
	Fuzzy      int64
	Adopted    int64
	Unresolved int64
}

// Outcome classifies the run: failed when any document failed, warning
// when references degraded (fuzzy matches, collisions or dead links),
// success otherwise.
func (r *Report) Outcome() string {
	switch {
	case r.Errors > 0:
		return "failed"
	case r.Collisions > 0 || r.Fuzzy > 0 || r.Unresolved > 0:
		return "warning"
	default:
		return "success"
	}
}
