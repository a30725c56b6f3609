package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sahelys/sahelys-backend/apperrors"
	"github.com/sahelys/sahelys-backend/isoweek"
	"github.com/sahelys/sahelys-backend/models"
)

// PDF renders the reports as a printable document: a title page header, a
// summary block, then one section per report with its task table.
func PDF(reports []*models.ReportView, formatter *isoweek.Formatter) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Rapports hebdomadaires", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Genere le %s", formatter.Display(time.Now())), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	var totalHours float64
	employees := make(map[string]bool)
	for _, report := range reports {
		totalHours += report.TotalHours
		employees[report.UserName] = true
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Resume", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Rapports: %d", len(reports)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Employes: %d", len(employees)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Heures totales: %.2f", totalHours), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, report := range reports {
		writeReportSection(pdf, report)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.Internalf("failed to render pdf: %v", err)
	}
	return buf.Bytes(), nil
}

func writeReportSection(pdf *gofpdf.Fpdf, report *models.ReportView) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(230, 230, 230)
	header := fmt.Sprintf("%s  -  %s  (%.2f h)", report.WeekISO, report.UserName, report.TotalHours)
	pdf.CellFormat(0, 8, header, "", 1, "L", true, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(90, 6, "Tache", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 6, "Heures", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, "Projet", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Notes", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, task := range report.Tasks {
		pdf.CellFormat(90, 6, isoweek.Truncate(task.Title, 55), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", task.Hours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, isoweek.Truncate(task.Project, 22), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, isoweek.Truncate(task.Notes, 22), "1", 1, "L", false, 0, "")
	}

	if report.Difficulties != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, fmt.Sprintf("Difficultes: %s", report.Difficulties), "", "L", false)
	}
	if report.Remarks != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, fmt.Sprintf("Remarques: %s", report.Remarks), "", "L", false)
	}
	pdf.Ln(4)
}

// PDFFilename builds the suggested attachment name from the week bounds.
func PDFFilename(startWeek, endWeek string) string {
	if startWeek == "" && endWeek == "" {
		return "rapports.pdf"
	}
	if startWeek == "" {
		startWeek = "debut"
	}
	if endWeek == "" {
		endWeek = "fin"
	}
	return fmt.Sprintf("rapports_%s_%s.pdf", startWeek, endWeek)
}
