package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculateTotalHours(t *testing.T) {
	report := WeeklyReport{
		Tasks: []TaskItem{
			{Title: "reunion equipe", Hours: 1.5},
			{Title: "developpement", Hours: 6},
			{Title: "revue de code", Hours: 0.25},
		},
	}
	report.RecalculateTotalHours()
	assert.InDelta(t, 7.75, report.TotalHours, 1e-9)

	report.Tasks = nil
	report.RecalculateTotalHours()
	assert.Zero(t, report.TotalHours)
}

func TestReportMarshalWeekly(t *testing.T) {
	report := Report{
		Kind: ReportKindWeekly,
		Weekly: &ReportView{
			WeeklyReport: WeeklyReport{
				Kind:    ReportKindWeekly,
				WeekISO: "2025-W35",
			},
			UserName: "Awa",
		},
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "weekly", decoded["kind"])
	assert.Equal(t, "2025-W35", decoded["week_iso"])
	assert.Equal(t, "Awa", decoded["user_name"])
}

func TestReportListItemMarshalCarriesKind(t *testing.T) {
	item := ReportListItem{
		Kind: ReportKindWeekly,
		Weekly: &ReportSummary{
			WeekISO:    "2025-W35",
			UserName:   "Awa",
			TotalHours: 38,
		},
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "weekly", decoded["kind"])
	assert.Equal(t, "2025-W35", decoded["week_iso"])

	simple := ReportListItem{
		Kind:   ReportKindSimple,
		Simple: &SimpleReport{Kind: ReportKindSimple, Title: "incident reseau"},
	}
	data, err = json.Marshal(simple)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "simple", decoded["kind"])
	assert.Equal(t, "incident reseau", decoded["title"])
}
