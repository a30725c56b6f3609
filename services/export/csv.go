// Package export renders weekly reports to downloadable CSV and PDF
// documents.
package export

import (
	"bytes"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/sahelys/sahelys-backend/apperrors"
	"github.com/sahelys/sahelys-backend/isoweek"
	"github.com/sahelys/sahelys-backend/models"
)

// csvRow is one exported line: one row per task, so a report with three
// tasks spans three rows sharing the report columns.
type csvRow struct {
	Week         string  `csv:"semaine"`
	Employee     string  `csv:"employe"`
	Email        string  `csv:"email"`
	TaskTitle    string  `csv:"tache"`
	TaskHours    float64 `csv:"heures"`
	TaskProject  string  `csv:"projet"`
	TaskNotes    string  `csv:"notes"`
	TotalHours   float64 `csv:"total_heures"`
	Difficulties string  `csv:"difficultes"`
	Remarks      string  `csv:"remarques"`
	SubmittedAt  string  `csv:"soumis_le"`
}

// CSV renders the reports with semicolon separators, one row per task.
// A report without tasks still yields one row carrying its totals.
func CSV(reports []*models.ReportView, formatter *isoweek.Formatter) ([]byte, error) {
	rows := make([]*csvRow, 0, len(reports))
	for _, report := range reports {
		base := csvRow{
			Week:         report.WeekISO,
			Employee:     report.UserName,
			Email:        report.UserEmail,
			TotalHours:   report.TotalHours,
			Difficulties: report.Difficulties,
			Remarks:      report.Remarks,
			SubmittedAt:  formatter.Display(report.CreatedAt),
		}
		if len(report.Tasks) == 0 {
			row := base
			rows = append(rows, &row)
			continue
		}
		for _, task := range report.Tasks {
			row := base
			row.TaskTitle = task.Title
			row.TaskHours = task.Hours
			row.TaskProject = task.Project
			row.TaskNotes = task.Notes
			rows = append(rows, &row)
		}
	}

	var buf bytes.Buffer
	writer := gocsv.DefaultCSVWriter(&buf)
	writer.Comma = ';'
	if err := gocsv.MarshalCSV(&rows, writer); err != nil {
		return nil, apperrors.Internalf("failed to marshal csv: %v", err)
	}
	return buf.Bytes(), nil
}

type csvSummaryRow struct {
	Week         string  `csv:"semaine"`
	Employee     string  `csv:"employe"`
	Email        string  `csv:"email"`
	TasksCount   int     `csv:"nb_taches"`
	TotalHours   float64 `csv:"total_heures"`
	Difficulties string  `csv:"difficultes"`
	Remarks      string  `csv:"remarques"`
	SubmittedAt  string  `csv:"soumis_le"`
}

// CSVSummary renders one row per report, without the per-task breakdown.
func CSVSummary(reports []*models.ReportView, formatter *isoweek.Formatter) ([]byte, error) {
	rows := make([]*csvSummaryRow, 0, len(reports))
	for _, report := range reports {
		rows = append(rows, &csvSummaryRow{
			Week:         report.WeekISO,
			Employee:     report.UserName,
			Email:        report.UserEmail,
			TasksCount:   len(report.Tasks),
			TotalHours:   report.TotalHours,
			Difficulties: report.Difficulties,
			Remarks:      report.Remarks,
			SubmittedAt:  formatter.Display(report.CreatedAt),
		})
	}

	var buf bytes.Buffer
	writer := gocsv.DefaultCSVWriter(&buf)
	writer.Comma = ';'
	if err := gocsv.MarshalCSV(&rows, writer); err != nil {
		return nil, apperrors.Internalf("failed to marshal csv: %v", err)
	}
	return buf.Bytes(), nil
}

// CSVFilename builds the suggested attachment name from the week bounds.
func CSVFilename(startWeek, endWeek string) string {
	if startWeek == "" && endWeek == "" {
		return "rapports.csv"
	}
	if startWeek == "" {
		startWeek = "debut"
	}
	if endWeek == "" {
		endWeek = "fin"
	}
	return fmt.Sprintf("rapports_%s_%s.csv", startWeek, endWeek)
}
