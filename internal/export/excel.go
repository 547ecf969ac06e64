package export

import (
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/internal/responses"
	"github.com/unitracer/backend/internal/survey"
)

// fixedColumns lead every export row before the per-question columns.
var fixedColumns = []string{"Student No", "Full Name", "Program", "Year", "Respondent Email", "Submitted At"}

// WriteExcel renders the questionnaire's responses as an .xlsx workbook: one
// row per response, one column per question, multi-choice answers
// comma-joined.
func WriteExcel(w io.Writer, questionnaire *models.Questionnaire, questionList []models.Question, rows []responses.ExportRow) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	if err := workbook.SetSheetName(sheet, "Responses"); err != nil {
		return err
	}
	sheet = "Responses"

	header := make([]interface{}, 0, len(fixedColumns)+len(questionList))
	for _, col := range fixedColumns {
		header = append(header, col)
	}
	for i := range questionList {
		header = append(header, questionList[i].Text)
	}
	if err := setRow(workbook, sheet, 1, header); err != nil {
		return err
	}

	for i, row := range rows {
		submitted := ""
		if row.Response.SubmittedAt != nil {
			submitted = row.Response.SubmittedAt.Format(time.RFC3339)
		}
		cells := []interface{}{row.StudentNo, row.FullName, row.ProgramName, row.YearName, row.Response.RespondentEmail, submitted}
		for j := range questionList {
			stored, ok := row.Answers[questionList[j].ID]
			if !ok {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, survey.Decode(stored).Display())
		}
		if err := setRow(workbook, sheet, i+2, cells); err != nil {
			return err
		}
	}

	_ = workbook.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return workbook.Write(w)
}

func setRow(workbook *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return workbook.SetSheetRow(sheet, cell, &values)
}
