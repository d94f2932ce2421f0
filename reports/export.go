package reports

import (
	"fmt"
	"strings"

	"tastytracker/models"
)

// CSVHeader is the exact export header the agency's tooling expects.
// The format is fixed: every field double-quoted, comma separated,
// newline-joined rows, no trailing newline.
const CSVHeader = `"Date","Durée (h)","Client","Projet","Notes","Facturable","Type"`

// ExportCSV renders time entries in the export format. Entries must
// have Project and Project.Client preloaded for the client and project
// columns to resolve.
func ExportCSV(entries []models.TimeEntry) string {
	rows := make([]string, 0, len(entries)+1)
	rows = append(rows, quoteRow([]string{
		"Date", "Durée (h)", "Client", "Projet", "Notes", "Facturable", "Type",
	}))

	for _, e := range entries {
		clientName := "-"
		projectName := "-"
		if e.Project != nil {
			projectName = e.Project.Name
			if e.Project.Client != nil {
				clientName = e.Project.Client.BillingName()
			}
		}

		notes := e.Notes
		if notes == "" {
			notes = "-"
		}

		billable := "Non"
		if e.IsBillable {
			billable = "Oui"
		}

		entryType := "Manuel"
		if e.IsTimer {
			entryType = "Timer"
		}

		rows = append(rows, quoteRow([]string{
			e.Date.Format("2006-01-02"),
			fmt.Sprintf("%.2f", Hours(e.DurationMinutes)),
			clientName,
			projectName,
			notes,
			billable,
			entryType,
		}))
	}

	return strings.Join(rows, "\n")
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + f + `"`
	}
	return strings.Join(quoted, ",")
}
