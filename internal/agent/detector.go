package agent

import (
	"time"

	"healthwatch/internal/shared"
)

// Snapshot is the last successfully transmitted check state. It is only
// written after the server has accepted a report, so a failed send leaves
// the previous snapshot in place and the next cycle re-detects the change.
type Snapshot struct {
	Checks shared.CheckSet `json:"checks"`
	SentAt time.Time       `json:"sent_at"`
}

// Send reasons, for logging.
const (
	ReasonFirstRun    = "first run"
	ReasonChanged     = "checks changed"
	ReasonMaxInterval = "max report interval elapsed"
)

// ShouldSend decides whether the current checks warrant a report.
// prev is nil on first run. A check transitioning to unknown counts as a
// change like any other difference.
func ShouldSend(prev *Snapshot, current shared.CheckSet, now time.Time, maxInterval time.Duration) (bool, string) {
	if prev == nil {
		return true, ReasonFirstRun
	}
	if prev.Checks != current {
		return true, ReasonChanged
	}
	if now.Sub(prev.SentAt) >= maxInterval {
		return true, ReasonMaxInterval
	}
	return false, ""
}
