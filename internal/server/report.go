package server

import (
	"time"

	"healthwatch/internal/shared"
)

// Report is one accepted row of the append-only report log.
type Report struct {
	// Seq is the append order assigned by the store; it breaks timestamp
	// ties deterministically.
	Seq        int64
	MachineID  string
	ReportedAt time.Time
	OSName     string
	OSVersion  string
	Checks     shared.CheckSet
	ReceivedAt time.Time
}

// NewerThan reports whether r wins over other as the current state of a
// machine: higher timestamp, or same timestamp appended later.
func (r Report) NewerThan(other Report) bool {
	if !r.ReportedAt.Equal(other.ReportedAt) {
		return r.ReportedAt.After(other.ReportedAt)
	}
	return r.Seq > other.Seq
}
