package server

// Filter selects machine states by OS and issue status. The two criteria
// are independent and combined with AND; zero values match everything.
type Filter struct {
	// OSName matches exactly when non-empty; no normalization.
	OSName string
	// OnlyIssues keeps only states where at least one check is explicitly
	// false. All-unknown states are not issues.
	OnlyIssues bool
}

func (f Filter) Match(r Report) bool {
	if f.OSName != "" && r.OSName != f.OSName {
		return false
	}
	if f.OnlyIssues && !r.Checks.HasIssue() {
		return false
	}
	return true
}

// Apply returns the subset of reports matching the filter, preserving order.
func (f Filter) Apply(reports []Report) []Report {
	if f.OSName == "" && !f.OnlyIssues {
		return reports
	}
	out := make([]Report, 0, len(reports))
	for _, r := range reports {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
