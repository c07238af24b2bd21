package domain

import "math"

// RosterStats are the derived, read-only per-client session numbers
// shown on the trainer's roster. Never persisted; recomputed on every
// call so they can't go stale across transitions or deletions.
type RosterStats struct {
	CompletedSessions int     `json:"completed_sessions"`
	TotalSessions     int     `json:"total_sessions"`
	ProgressPercent   float64 `json:"progress_percent"`
}

// AggregateRoster computes roster stats from a client's session slots.
// allotment is the externally supplied session ceiling from the
// client's subscription, not len(sessions): a client may be allotted N
// sessions with only some scheduled yet. A zero allotment yields 0%
// progress rather than dividing by zero.
func AggregateRoster(sessions []SessionSlot, allotment int) RosterStats {
	stats := RosterStats{TotalSessions: allotment}
	if allotment < 0 {
		stats.TotalSessions = 0
	}
	for _, s := range sessions {
		if s.Status == SessionCompleted {
			stats.CompletedSessions++
		}
	}
	if stats.TotalSessions > 0 {
		pct := float64(stats.CompletedSessions) / float64(stats.TotalSessions) * 100
		stats.ProgressPercent = math.Round(pct*100) / 100
	}
	return stats
}
