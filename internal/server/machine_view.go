package server

import (
	"time"

	"healthwatch/internal/shared"
)

// MachineStateView is the JSON shape the dashboard consumes for both
// current-state listings and per-machine history rows.
type MachineStateView struct {
	MachineID string          `json:"machine_id"`
	Timestamp string          `json:"timestamp"`
	OSName    string          `json:"os_name"`
	OSVersion string          `json:"os_version"`
	Checks    shared.CheckSet `json:"checks"`
	Status    string          `json:"status"`
}

func viewOf(r Report) MachineStateView {
	return MachineStateView{
		MachineID: r.MachineID,
		Timestamp: r.ReportedAt.Format(time.RFC3339Nano),
		OSName:    r.OSName,
		OSVersion: r.OSVersion,
		Checks:    r.Checks,
		Status:    r.Checks.Status(),
	}
}

func viewsOf(reports []Report) []MachineStateView {
	out := make([]MachineStateView, 0, len(reports))
	for _, r := range reports {
		out = append(out, viewOf(r))
	}
	return out
}
