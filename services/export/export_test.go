package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sahelys/sahelys-backend/isoweek"
	"github.com/sahelys/sahelys-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReports() []*models.ReportView {
	created := time.Date(2025, 8, 25, 9, 30, 0, 0, time.UTC)
	return []*models.ReportView{
		{
			WeeklyReport: models.WeeklyReport{
				Kind:    models.ReportKindWeekly,
				WeekISO: "2025-W35",
				Tasks: []models.TaskItem{
					{Title: "saisie des releves", Hours: 12, Project: "terrain"},
					{Title: "synthese", Hours: 4.5, Notes: "en retard"},
				},
				TotalHours:   16.5,
				Difficulties: "coupures reseau",
				CreatedAt:    created,
			},
			UserName:  "Awa Traore",
			UserEmail: "awa@sahelys.bf",
		},
		{
			WeeklyReport: models.WeeklyReport{
				Kind:       models.ReportKindWeekly,
				WeekISO:    "2025-W34",
				TotalHours: 0,
				CreatedAt:  created.AddDate(0, 0, -7),
			},
			UserName: "Issa Ouedraogo",
		},
	}
}

func TestCSV(t *testing.T) {
	data, err := CSV(sampleReports(), isoweek.NewFormatter(time.UTC))
	require.NoError(t, err)

	content := string(data)
	lines := strings.Split(strings.TrimSpace(content), "\n")

	// Header, two task rows for the first report, one fallback row for the
	// taskless one.
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "semaine;employe;email;tache")
	assert.Contains(t, lines[1], "2025-W35")
	assert.Contains(t, lines[1], "saisie des releves")
	assert.Contains(t, lines[2], "synthese")
	assert.Contains(t, lines[3], "2025-W34")
	assert.Contains(t, lines[3], "Issa Ouedraogo")
}

func TestCSVEmpty(t *testing.T) {
	data, err := CSV(nil, isoweek.NewFormatter(time.UTC))
	require.NoError(t, err)
	assert.Contains(t, string(data), "semaine")
}

func TestCSVSummary(t *testing.T) {
	data, err := CSVSummary(sampleReports(), isoweek.NewFormatter(time.UTC))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "nb_taches")
	assert.Contains(t, lines[1], "2025-W35")
	assert.Contains(t, lines[1], "2")
	assert.NotContains(t, lines[1], "saisie des releves")
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "rapports.csv", CSVFilename("", ""))
	assert.Equal(t, "rapports_2025-W30_2025-W35.csv", CSVFilename("2025-W30", "2025-W35"))
	assert.Equal(t, "rapports_debut_2025-W35.csv", CSVFilename("", "2025-W35"))
}

func TestPDF(t *testing.T) {
	data, err := PDF(sampleReports(), isoweek.NewFormatter(time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Greater(t, len(data), 1000)
}

func TestPDFEmpty(t *testing.T) {
	data, err := PDF(nil, isoweek.NewFormatter(time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
