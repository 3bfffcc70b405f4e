package service

import "time"

// FollowUpGate decides when follow-up suggestions may be requested.
type FollowUpGate struct {
	// MinPairs is the number of exchanges a thread needs before suggestions make sense.
	MinPairs int
	// AfterStreamDelay gives the backend's read path time to see the record
	// that was just streamed.
	AfterStreamDelay time.Duration
}

// ShouldFetch reports whether a thread with pairCount exchanges qualifies.
func (g FollowUpGate) ShouldFetch(pairCount int) bool {
	return pairCount >= g.MinPairs
}

// Delay returns how long to wait before fetching. Opening a thread fetches
// immediately; a completed stream waits AfterStreamDelay.
func (g FollowUpGate) Delay(afterStream bool) time.Duration {
	if afterStream {
		return g.AfterStreamDelay
	}
	return 0
}
