package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/internal/survey"
)

// WritePDF renders the aggregated questionnaire results as a PDF report:
// option tallies with percentages for choice questions, a recent-answer
// sample for free-text ones.
func WritePDF(w io.Writer, questionnaire *models.Questionnaire, totalResponses int, stats []survey.QuestionStats, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, questionnaire.Title, "", "L", false)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	meta := fmt.Sprintf("%s — %s", questionnaire.TypeName, questionnaire.YearName)
	pdf.CellFormat(0, 6, meta, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Responses: %d", totalResponses), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated: "+generatedAt.Format("2 January 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	for i := range stats {
		writeQuestion(pdf, i+1, &stats[i])
	}
	return pdf.Output(w)
}

func writeQuestion(pdf *fpdf.Fpdf, number int, s *survey.QuestionStats) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", number, s.Text), "", "L", false)
	pdf.SetFont("Helvetica", "", 10)

	if len(s.Counts) > 0 {
		for _, oc := range s.Counts {
			pdf.CellFormat(110, 5.5, "    "+oc.Option, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 5.5, fmt.Sprintf("%d (%.1f%%)", oc.Count, oc.Percentage), "", 1, "L", false, 0, "")
			barRow(pdf, oc.Percentage)
		}
	} else if len(s.Recent) > 0 {
		for _, answer := range s.Recent {
			pdf.MultiCell(0, 5.5, "    - "+answer, "", "L", false)
		}
	} else {
		pdf.SetTextColor(130, 130, 130)
		pdf.CellFormat(0, 5.5, "    no answers yet", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(3)
}

// barRow draws a thin proportional bar under an option row.
func barRow(pdf *fpdf.Fpdf, percentage float64) {
	const maxWidth = 100.0
	x, y := pdf.GetX(), pdf.GetY()
	pdf.SetFillColor(225, 225, 225)
	pdf.Rect(x+4, y, maxWidth, 1.5, "F")
	if percentage > 0 {
		pdf.SetFillColor(60, 110, 180)
		pdf.Rect(x+4, y, maxWidth*percentage/100, 1.5, "F")
	}
	pdf.SetY(y + 2.5)
}
