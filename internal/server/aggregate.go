package server

import "sort"

// LatestPerMachine projects the current state of every machine from the
// report log: group by machine_id, keep the report with the maximum
// timestamp, break ties by append order. It is a pure function over the
// log; duplicates and out-of-order arrivals fall out naturally.
// The result is sorted by machine_id for stable output.
func LatestPerMachine(reports []Report) []Report {
	latest := make(map[string]Report, len(reports))
	for _, r := range reports {
		cur, ok := latest[r.MachineID]
		if !ok || r.NewerThan(cur) {
			latest[r.MachineID] = r
		}
	}

	out := make([]Report, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MachineID < out[j].MachineID })
	return out
}
