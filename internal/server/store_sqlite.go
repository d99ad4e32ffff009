package server

import (
	"database/sql"
	"encoding/json"
	"time"

	"healthwatch/internal/shared"
)

// SQLiteStore persists the report log in a single reports table, one row
// per accepted report. Timestamps are stored as unix nanoseconds so the
// (reported_at, seq) ordering matches Report.NewerThan exactly.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

func (s *SQLiteStore) AppendReport(r Report) (int64, error) {
	checksJSON, err := json.Marshal(r.Checks)
	if err != nil {
		return 0, err
	}

	res, err := s.DB.Exec(
		`INSERT INTO reports (machine_id, reported_at, os_name, os_version, checks_json, received_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.MachineID, r.ReportedAt.UnixNano(), r.OSName, r.OSVersion, string(checksJSON), r.ReceivedAt.UnixNano(),
	)
	if err != nil {
		return 0, transient(err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, transient(err)
	}
	return seq, nil
}

func (s *SQLiteStore) ListReports() ([]Report, error) {
	rows, err := s.DB.Query(
		`SELECT seq, machine_id, reported_at, os_name, os_version, checks_json, received_at
		 FROM reports ORDER BY seq`,
	)
	if err != nil {
		return nil, transient(err)
	}
	defer rows.Close()
	return scanReports(rows)
}

func (s *SQLiteStore) MachineReports(machineID string, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.Query(
		`SELECT seq, machine_id, reported_at, os_name, os_version, checks_json, received_at
		 FROM reports
		 WHERE machine_id = ?
		 ORDER BY reported_at DESC, seq DESC
		 LIMIT ?`, machineID, limit,
	)
	if err != nil {
		return nil, transient(err)
	}
	defer rows.Close()
	return scanReports(rows)
}

func scanReports(rows *sql.Rows) ([]Report, error) {
	var out []Report
	for rows.Next() {
		var r Report
		var reportedAt, receivedAt int64
		var checksJSON string
		if err := rows.Scan(&r.Seq, &r.MachineID, &reportedAt, &r.OSName, &r.OSVersion, &checksJSON, &receivedAt); err != nil {
			return nil, transient(err)
		}
		r.ReportedAt = time.Unix(0, reportedAt).UTC()
		r.ReceivedAt = time.Unix(0, receivedAt).UTC()
		if err := json.Unmarshal([]byte(checksJSON), &r.Checks); err != nil {
			// A row we wrote ourselves should always decode; treat damage
			// as all-unknown rather than dropping the report.
			r.Checks = shared.CheckSet{}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, transient(err)
	}
	return out, nil
}
