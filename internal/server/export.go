package server

import (
	"encoding/csv"
	"io"
	"time"

	"healthwatch/internal/shared"
)

var csvHeader = []string{
	"machine_id", "timestamp", "os_name", "os_version",
	"disk_encryption", "os_updated", "antivirus_active", "sleep_settings_ok",
}

// WriteCSV renders machine states as CSV in the fixed column order.
// Unknown checks serialize to an empty cell; rendering them as "false"
// would silently turn "cannot determine" into "problem detected".
func WriteCSV(w io.Writer, states []Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for _, r := range states {
		row[0] = r.MachineID
		row[1] = r.ReportedAt.Format(time.RFC3339Nano)
		row[2] = r.OSName
		row[3] = r.OSVersion
		for i, c := range r.Checks.All() {
			row[4+i] = csvCell(c)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvCell(c shared.CheckResult) string {
	if c == shared.CheckUnknown {
		return ""
	}
	return c.String()
}
