package server

import (
	"sort"
	"sync"
)

// Store is the append-only report log. Any backend that can append without
// lost writes and list reports (all, or per machine newest-first) suffices;
// aggregation is derived in Go on top of it.
type Store interface {
	// AppendReport persists one accepted report and returns its sequence
	// number. Failures are *TransientError.
	AppendReport(r Report) (int64, error)
	// ListReports returns every report in append order.
	ListReports() ([]Report, error)
	// MachineReports returns up to limit reports for one machine, newest
	// first. Each call is a fresh snapshot of the log.
	MachineReports(machineID string, limit int) ([]Report, error)
}

// MemoryStore keeps the log in a slice. It backs tests and small
// deployments that don't need the SQLite file.
type MemoryStore struct {
	mu      sync.Mutex
	reports []Report
	nextSeq int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextSeq: 1}
}

func (s *MemoryStore) AppendReport(r Report) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Seq = s.nextSeq
	s.nextSeq++
	s.reports = append(s.reports, r)
	return r.Seq, nil
}

func (s *MemoryStore) ListReports() ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Report, len(s.reports))
	copy(out, s.reports)
	return out, nil
}

func (s *MemoryStore) MachineReports(machineID string, limit int) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Report
	for _, r := range s.reports {
		if r.MachineID == machineID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NewerThan(out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
