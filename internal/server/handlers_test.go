package server

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthwatch/internal/shared"
)

func newTestAPI(store Store) *httptest.Server {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	api := &API{Store: store, Log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/reports", api.SubmitReport)
	mux.HandleFunc("/api/v1/machines", api.ListMachines)
	mux.HandleFunc("/api/v1/machines/", api.MachineHistory)
	mux.HandleFunc("/api/v1/export.csv", api.ExportCSV)
	return httptest.NewServer(mux)
}

func submit(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/v1/reports", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func reportBody(machineID, ts, osName string, checks string) string {
	return `{"machine_id":"` + machineID + `","timestamp":"` + ts + `","os_name":"` + osName +
		`","os_version":"1.0","checks":` + checks + `}`
}

func TestSubmitReportAccepted(t *testing.T) {
	store := NewMemoryStore()
	srv := newTestAPI(store)
	defer srv.Close()

	resp := submit(t, srv, reportBody("m1", "2026-03-01T10:00:00Z", "Linux",
		`{"disk_encryption":true,"os_updated":null}`))
	assert.Equal(t, 200, resp.StatusCode)

	reports, err := store.ListReports()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, shared.CheckTrue, reports[0].Checks.DiskEncryption)
	assert.Equal(t, shared.CheckUnknown, reports[0].Checks.OSUpdated)
	assert.Equal(t, shared.CheckUnknown, reports[0].Checks.AntivirusActive, "missing key becomes unknown")
}

func TestSubmitReportValidation(t *testing.T) {
	srv := newTestAPI(NewMemoryStore())
	defer srv.Close()

	cases := map[string]string{
		"empty machine id":    reportBody("", "2026-03-01T10:00:00Z", "Linux", `{}`),
		"missing checks":      `{"machine_id":"m1","timestamp":"2026-03-01T10:00:00Z","os_name":"Linux","os_version":"1.0"}`,
		"unparsable ts":       reportBody("m1", "not-a-time", "Linux", `{}`),
		"non-boolean check":   reportBody("m1", "2026-03-01T10:00:00Z", "Linux", `{"disk_encryption":"yes"}`),
		"malformed json body": `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := submit(t, srv, body)
			assert.Equal(t, 400, resp.StatusCode)
		})
	}
}

type brokenStore struct{}

func (brokenStore) AppendReport(Report) (int64, error) {
	return 0, transient(errors.New("disk full"))
}
func (brokenStore) ListReports() ([]Report, error) {
	return nil, transient(errors.New("disk full"))
}
func (brokenStore) MachineReports(string, int) ([]Report, error) {
	return nil, transient(errors.New("disk full"))
}

func TestStorageFailureIsFiveHundred(t *testing.T) {
	srv := newTestAPI(brokenStore{})
	defer srv.Close()

	resp := submit(t, srv, reportBody("m1", "2026-03-01T10:00:00Z", "Linux", `{}`))
	assert.Equal(t, 500, resp.StatusCode)

	listResp, err := http.Get(srv.URL + "/api/v1/machines")
	require.NoError(t, err)
	defer listResp.Body.Close()
	assert.Equal(t, 500, listResp.StatusCode)
}

func seedFleet(t *testing.T, store Store) {
	t.Helper()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []Report{
		{MachineID: "win-1", ReportedAt: base, OSName: "Windows", OSVersion: "11",
			Checks: shared.CheckSet{DiskEncryption: shared.CheckFalse, OSUpdated: shared.CheckTrue,
				AntivirusActive: shared.CheckTrue, SleepSettingsOK: shared.CheckTrue}},
		{MachineID: "lin-1", ReportedAt: base, OSName: "Linux", OSVersion: "6.8",
			Checks: shared.CheckSet{DiskEncryption: shared.CheckTrue, OSUpdated: shared.CheckFalse,
				AntivirusActive: shared.CheckTrue, SleepSettingsOK: shared.CheckTrue}},
		{MachineID: "mac-1", ReportedAt: base, OSName: "Darwin", OSVersion: "23.4",
			Checks: shared.CheckSet{DiskEncryption: shared.CheckTrue, OSUpdated: shared.CheckTrue,
				AntivirusActive: shared.CheckTrue, SleepSettingsOK: shared.CheckTrue}},
	}
	for _, r := range rows {
		r.ReceivedAt = base
		_, err := store.AppendReport(r)
		require.NoError(t, err)
	}
}

type machinesResponse struct {
	Machines []MachineStateView `json:"machines"`
}

func getMachines(t *testing.T, srv *httptest.Server, query string) machinesResponse {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/v1/machines" + query)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var out machinesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestListMachinesFilters(t *testing.T) {
	store := NewMemoryStore()
	seedFleet(t, store)
	srv := newTestAPI(store)
	defer srv.Close()

	all := getMachines(t, srv, "")
	assert.Len(t, all.Machines, 3)

	// os=Windows AND issues=true matches only the Windows machine even
	// though a Linux machine also has a failing check.
	filtered := getMachines(t, srv, "?os=Windows&issues=true")
	require.Len(t, filtered.Machines, 1)
	assert.Equal(t, "win-1", filtered.Machines[0].MachineID)
	assert.Equal(t, shared.StatusIssues, filtered.Machines[0].Status)

	healthyMac := getMachines(t, srv, "?os=Darwin")
	require.Len(t, healthyMac.Machines, 1)
	assert.Equal(t, shared.StatusHealthy, healthyMac.Machines[0].Status)
}

func TestMachineHistoryNewestFirstCapped(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		_, err := store.AppendReport(Report{
			MachineID:  "m1",
			ReportedAt: base.Add(time.Duration(i) * time.Minute),
			OSName:     "Linux",
			ReceivedAt: base,
		})
		require.NoError(t, err)
	}
	srv := newTestAPI(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/machines/m1/reports")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var out struct {
		Reports []MachineStateView `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Reports, 50)
	assert.Equal(t, base.Add(59*time.Minute).Format(time.RFC3339Nano), out.Reports[0].Timestamp)

	// limit above the cap is clamped, below the cap honored.
	small, err := http.Get(srv.URL + "/api/v1/machines/m1/reports?limit=5")
	require.NoError(t, err)
	defer small.Body.Close()
	require.NoError(t, json.NewDecoder(small.Body).Decode(&out))
	assert.Len(t, out.Reports, 5)

	big, err := http.Get(srv.URL + "/api/v1/machines/m1/reports?limit=500")
	require.NoError(t, err)
	defer big.Body.Close()
	require.NoError(t, json.NewDecoder(big.Body).Decode(&out))
	assert.Len(t, out.Reports, 50)
}

func TestExportCSVEndpoint(t *testing.T) {
	store := NewMemoryStore()
	seedFleet(t, store)
	srv := newTestAPI(store)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/export.csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	rows, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 4, "header plus one row per machine")
}

func TestSubmitDuplicateLeavesAggregationUnchanged(t *testing.T) {
	store := NewMemoryStore()
	srv := newTestAPI(store)
	defer srv.Close()

	body := reportBody("m1", "2026-03-01T10:00:00Z", "Linux", `{"disk_encryption":true}`)
	require.Equal(t, 200, submit(t, srv, body).StatusCode)
	require.Equal(t, 200, submit(t, srv, body).StatusCode)

	reports, err := store.ListReports()
	require.NoError(t, err)
	assert.Len(t, reports, 2, "duplicates append; they are not deduplicated")

	out := getMachines(t, srv, "")
	require.Len(t, out.Machines, 1)
	assert.Equal(t, "2026-03-01T10:00:00Z", out.Machines[0].Timestamp)
}
