package reports

import (
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tastytracker/models"
)

func exportEntry(minutes int, billable, timer bool, notes string, project *models.Project) models.TimeEntry {
	return models.TimeEntry{
		DurationMinutes: minutes,
		Date:            time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Notes:           notes,
		IsBillable:      billable,
		IsTimer:         timer,
		Project:         project,
	}
}

func TestExportCSVHeader(t *testing.T) {
	out := ExportCSV(nil)
	assert.Equal(t, `"Date","Durée (h)","Client","Projet","Notes","Facturable","Type"`, out)
	assert.Equal(t, CSVHeader, out)
}

func TestExportCSVRow(t *testing.T) {
	project := &models.Project{
		Name:   "Site vitrine",
		Client: &models.Client{Name: "Alice", Company: "Tasty Studio"},
	}
	out := ExportCSV([]models.TimeEntry{
		exportEntry(90, true, true, "montage", project),
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"2026-03-15","1.50","Tasty Studio","Site vitrine","montage","Oui","Timer"`, lines[1])
}

func TestExportCSVFallbacks(t *testing.T) {
	t.Run("no project", func(t *testing.T) {
		out := ExportCSV([]models.TimeEntry{exportEntry(30, false, false, "", nil)})
		lines := strings.Split(out, "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, `"2026-03-15","0.50","-","-","-","Non","Manuel"`, lines[1])
	})

	t.Run("client without company falls back to name", func(t *testing.T) {
		project := &models.Project{
			Name:   "Spot TV",
			Client: &models.Client{Name: "Alice"},
		}
		out := ExportCSV([]models.TimeEntry{exportEntry(60, true, false, "", project)})
		lines := strings.Split(out, "\n")
		assert.Contains(t, lines[1], `"Alice"`)
	})
}

// The export must survive reparsing: same column count, same order,
// recoverable durations.
func TestExportCSVRoundTrip(t *testing.T) {
	project := &models.Project{
		Name:   "Documentaire",
		Client: &models.Client{Company: "Prod & Co"},
	}
	entries := []models.TimeEntry{
		exportEntry(90, true, true, "tournage", project),
		exportEntry(30, false, false, "repérage", project),
		exportEntry(125, true, false, "", nil),
	}

	out := ExportCSV(entries)

	reader := csv.NewReader(strings.NewReader(out))
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(entries)+1)

	assert.Equal(t, []string{"Date", "Durée (h)", "Client", "Projet", "Notes", "Facturable", "Type"}, records[0])

	for i, entry := range entries {
		record := records[i+1]
		require.Len(t, record, 7)

		parsed, err := strconv.ParseFloat(record[1], 64)
		require.NoError(t, err)
		assert.InDelta(t, Hours(entry.DurationMinutes), parsed, 0.005)
	}
}
