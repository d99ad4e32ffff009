package shared

import (
	"encoding/json"
	"fmt"
	"time"
)

// CheckResult is the tri-state outcome of a single posture check.
// The zero value is Unknown so a check key missing from a payload
// decodes to Unknown rather than false.
type CheckResult int8

const (
	CheckUnknown CheckResult = iota
	CheckTrue
	CheckFalse
)

func (c CheckResult) String() string {
	switch c {
	case CheckTrue:
		return "true"
	case CheckFalse:
		return "false"
	default:
		return "unknown"
	}
}

// FromProbe converts a probe outcome into a CheckResult. A probe error
// is absorbed into Unknown, never propagated.
func FromProbe(ok bool, err error) CheckResult {
	if err != nil {
		return CheckUnknown
	}
	if ok {
		return CheckTrue
	}
	return CheckFalse
}

// MarshalJSON renders true/false/null; Unknown must never serialize as false.
func (c CheckResult) MarshalJSON() ([]byte, error) {
	switch c {
	case CheckTrue:
		return []byte("true"), nil
	case CheckFalse:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (c *CheckResult) UnmarshalJSON(b []byte) error {
	var v *bool
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("check result must be true, false or null: %w", err)
	}
	switch {
	case v == nil:
		*c = CheckUnknown
	case *v:
		*c = CheckTrue
	default:
		*c = CheckFalse
	}
	return nil
}

// CheckSet holds the four posture checks. It is comparable, so snapshot
// diffing in the change detector is plain ==.
type CheckSet struct {
	DiskEncryption  CheckResult `json:"disk_encryption"`
	OSUpdated       CheckResult `json:"os_updated"`
	AntivirusActive CheckResult `json:"antivirus_active"`
	SleepSettingsOK CheckResult `json:"sleep_settings_ok"`
}

// All returns the checks in the canonical order used by exports and the UI.
func (cs CheckSet) All() [4]CheckResult {
	return [4]CheckResult{cs.DiskEncryption, cs.OSUpdated, cs.AntivirusActive, cs.SleepSettingsOK}
}

// CheckNames is the canonical column order, matching CheckSet.All.
var CheckNames = [4]string{"disk_encryption", "os_updated", "antivirus_active", "sleep_settings_ok"}

// HasIssue reports whether any check is explicitly false. Unknown does not
// count: "cannot determine" is not "problem detected".
func (cs CheckSet) HasIssue() bool {
	for _, c := range cs.All() {
		if c == CheckFalse {
			return true
		}
	}
	return false
}

// Machine status values derived from a CheckSet.
const (
	StatusHealthy = "healthy"
	StatusIssues  = "issues"
	StatusUnknown = "unknown"
)

// Status classifies a CheckSet: healthy iff all four checks are true,
// issues iff at least one is false, unknown otherwise.
func (cs CheckSet) Status() string {
	if cs.HasIssue() {
		return StatusIssues
	}
	for _, c := range cs.All() {
		if c != CheckTrue {
			return StatusUnknown
		}
	}
	return StatusHealthy
}

// HealthReport is the wire payload for POST /api/v1/reports.
// Checks is a pointer so validation can tell an absent object apart from
// one with missing keys (absent is rejected; missing keys decode to Unknown).
type HealthReport struct {
	MachineID string    `json:"machine_id"`
	Timestamp string    `json:"timestamp"`
	OSName    string    `json:"os_name"`
	OSVersion string    `json:"os_version"`
	Checks    *CheckSet `json:"checks"`
}

// ValidationError marks a report the caller must fix; it is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid report: " + e.Field + ": " + e.Reason
}

// Accepted timestamp layouts: RFC 3339 first, then the naive ISO-8601
// shape some agents emit (interpreted as UTC).
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses a report timestamp, trying each accepted layout.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

// Validate checks the report against the ingestion contract and returns the
// parsed timestamp. Errors are *ValidationError.
func (r *HealthReport) Validate() (time.Time, error) {
	if r.MachineID == "" {
		return time.Time{}, &ValidationError{Field: "machine_id", Reason: "must not be empty"}
	}
	if r.Checks == nil {
		return time.Time{}, &ValidationError{Field: "checks", Reason: "must be present"}
	}
	if r.Timestamp == "" {
		return time.Time{}, &ValidationError{Field: "timestamp", Reason: "must not be empty"}
	}
	ts, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "timestamp", Reason: err.Error()}
	}
	return ts, nil
}
