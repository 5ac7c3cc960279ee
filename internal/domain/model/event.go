package model

import "time"

// RefreshReason names the mutation that made the ranking stale.
type RefreshReason string

// Refresh reasons.
const (
	ReasonPlayerCreated RefreshReason = "player_created"
	ReasonMatchCreated  RefreshReason = "match_created"
	ReasonMatchUpdated  RefreshReason = "match_updated"
	ReasonMatchDeleted  RefreshReason = "match_deleted"
	ReasonStartup       RefreshReason = "startup"
)

// RefreshEvent asks the refresh workers to recompute rankings.
type RefreshEvent struct {
	ID     string        // unique id, used in logs
	Reason RefreshReason // what changed
	At     time.Time     // when the change was observed
}
