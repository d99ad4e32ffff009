package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"healthwatch/internal/shared"
)

// historyLimit caps per-machine history responses.
const historyLimit = 50

type API struct {
	Store Store
	Log   *logrus.Logger
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, 2<<20))
}

// SubmitReport handles POST /api/v1/reports: validate, append, done.
// Validation failures are the caller's fault (400); storage failures are
// transient (500, safe to retry). Duplicates are appended as-is.
func (a *API) SubmitReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, 405, map[string]any{"error": "method not allowed"})
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad body"})
		return
	}

	var req shared.HealthReport
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json"})
		return
	}

	ts, err := req.Validate()
	if err != nil {
		a.Log.WithField("machine_id", req.MachineID).Infof("report rejected: %v", err)
		writeJSON(w, 400, map[string]any{"error": err.Error()})
		return
	}

	seq, err := a.Store.AppendReport(Report{
		MachineID:  req.MachineID,
		ReportedAt: ts,
		OSName:     req.OSName,
		OSVersion:  req.OSVersion,
		Checks:     *req.Checks,
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		a.storeError(w, err)
		return
	}

	a.Log.WithFields(logrus.Fields{
		"machine_id": req.MachineID,
		"seq":        seq,
		"status":     req.Checks.Status(),
	}).Info("report accepted")

	writeJSON(w, 200, map[string]any{"ok": true})
}

// ListMachines handles GET /api/v1/machines with optional os= and
// issues=true query filters over the latest-per-machine projection.
func (a *API) ListMachines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, 405, map[string]any{"error": "method not allowed"})
		return
	}

	states, err := a.currentStates()
	if err != nil {
		a.storeError(w, err)
		return
	}

	f := filterFromQuery(r)
	writeJSON(w, 200, map[string]any{"machines": viewsOf(f.Apply(states))})
}

// MachineHistory handles GET /api/v1/machines/{id}/reports, newest first,
// capped at 50 entries.
func (a *API) MachineHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, 405, map[string]any{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/machines/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "reports" {
		writeJSON(w, 404, map[string]any{"error": "not found"})
		return
	}
	machineID := parts[0]

	limit := historyLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeJSON(w, 400, map[string]any{"error": "bad limit"})
			return
		}
		if n < limit {
			limit = n
		}
	}

	reports, err := a.Store.MachineReports(machineID, limit)
	if err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"reports": viewsOf(reports)})
}

// ExportCSV handles GET /api/v1/export.csv. The file is fully buffered
// before the first byte goes out, so a failure mid-aggregation yields a
// clean 500 instead of a truncated download.
func (a *API) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, 405, map[string]any{"error": "method not allowed"})
		return
	}

	states, err := a.currentStates()
	if err != nil {
		a.storeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, states); err != nil {
		writeJSON(w, 500, map[string]any{"error": "export failed"})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="fleet_state.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func (a *API) currentStates() ([]Report, error) {
	reports, err := a.Store.ListReports()
	if err != nil {
		return nil, err
	}
	return LatestPerMachine(reports), nil
}

func (a *API) storeError(w http.ResponseWriter, err error) {
	var te *TransientError
	if errors.As(err, &te) {
		a.Log.Errorf("store error: %v", err)
		writeJSON(w, 500, map[string]any{"error": "storage unavailable"})
		return
	}
	a.Log.Errorf("internal error: %v", err)
	writeJSON(w, 500, map[string]any{"error": "internal error"})
}

func filterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	issues := q.Get("issues") == "true" || q.Get("issues") == "1"
	return Filter{OSName: q.Get("os"), OnlyIssues: issues}
}
