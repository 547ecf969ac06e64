package alumni

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/unitracer/backend/internal/models"
	"github.com/unitracer/backend/pkg/response"
	"github.com/unitracer/backend/pkg/utils"
)

// importHeader is the expected first row of the import spreadsheet, in
// column order. The template download produces the same row.
var importHeader = []string{"Student No", "Full Name", "Program Code", "Academic Year", "Email", "Phone", "Status"}

// RowError describes why one spreadsheet row was skipped.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a bulk import run. Rows that fail validation are
// skipped and reported; they never abort the rest of the file.
type ImportResult struct {
	Imported int        `json:"imported"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Import handles POST /admin/alumni/import. Accepts an .xlsx or .csv upload
// and creates or updates alumni row by row, matching study programs by code
// and cohorts by academic year name. Existing alumni are matched by student
// number and updated in place; new ones get a login account with the student
// number as initial password. Legacy .xls workbooks are rejected; they must
// be re-saved as .xlsx or .csv first.
func (h *Handler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ValidationFailed(c, map[string]string{"file": "an .xlsx or .csv file upload is required"})
		return
	}
	if fileHeader.Size > int64(h.maxImportMB)*1024*1024 {
		response.ValidationFailed(c, map[string]string{"file": fmt.Sprintf("file exceeds the %d MB limit", h.maxImportMB)})
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" && ext != ".csv" {
		response.ValidationFailed(c, map[string]string{"file": "only .xlsx and .csv files are supported"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read upload")
		return
	}
	defer file.Close()

	rows, err := readRows(ext, file)
	if err != nil {
		response.ValidationFailed(c, map[string]string{"file": "file is not a readable spreadsheet"})
		return
	}
	if len(rows) < 2 {
		response.ValidationFailed(c, map[string]string{"file": "spreadsheet has no data rows"})
		return
	}

	result := ImportResult{}
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header
		if err := h.importRow(c, row, &result); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Row: rowNum, Reason: err.Error()})
		}
	}

	h.logger.Info("alumni import finished",
		zap.Int("imported", result.Imported),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	response.OK(c, result)
}

// readRows parses the upload into raw rows: the first sheet of an .xlsx
// workbook, or the records of a .csv file. Both shapes feed the same
// row-import path.
func readRows(ext string, r io.Reader) ([][]string, error) {
	if ext == ".csv" {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		return reader.ReadAll()
	}

	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()
	return workbook.GetRows(workbook.GetSheetName(0))
}

// cell returns the trimmed cell at index, or "" when the row is short.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (h *Handler) importRow(c *gin.Context, row []string, result *ImportResult) error {
	studentNo := cell(row, 0)
	fullName := cell(row, 1)
	programCode := cell(row, 2)
	yearName := cell(row, 3)
	email := cell(row, 4)
	phone := cell(row, 5)
	status := cell(row, 6)

	if studentNo == "" && fullName == "" {
		return errors.New("empty row")
	}
	if studentNo == "" {
		return errors.New("student number is required")
	}
	if fullName == "" {
		return errors.New("full name is required")
	}

	program, err := h.programRepo.GetByCode(c.Request.Context(), programCode)
	if err != nil {
		return fmt.Errorf("unknown program code %q", programCode)
	}
	year, err := h.yearRepo.GetByName(c.Request.Context(), yearName)
	if err != nil {
		return fmt.Errorf("unknown academic year %q", yearName)
	}
	if status == "" {
		status = models.StatusNotYetWorking
	}
	if !models.ValidStatus(status) {
		return fmt.Errorf("unknown employment status %q", status)
	}

	existing, err := h.repo.GetByStudentNo(c.Request.Context(), studentNo)
	switch {
	case err == nil:
		existing.FullName = fullName
		existing.ProgramID = program.ID
		existing.YearID = year.ID
		existing.Email = email
		existing.Phone = phone
		existing.Status = status
		if err := h.repo.Update(c.Request.Context(), existing); err != nil {
			return errors.New("failed to update alumni")
		}
		result.Updated++
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		hash, err := utils.HashPassword(studentNo)
		if err != nil {
			return errors.New("failed to create login account")
		}
		a := &models.Alumni{
			StudentNo: studentNo,
			FullName:  fullName,
			ProgramID: program.ID,
			YearID:    year.ID,
			Email:     email,
			Phone:     phone,
			Status:    status,
		}
		if err := h.repo.CreateWithUser(c.Request.Context(), a, hash); err != nil {
			return errors.New("failed to create alumni")
		}
		result.Imported++
		return nil
	default:
		return errors.New("failed to look up student number")
	}
}

// Template handles GET /admin/alumni/template. Streams an .xlsx file with
// the expected header row and one example row.
func (h *Handler) Template(c *gin.Context) {
	workbook := excelize.NewFile()
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	for i, title := range importHeader {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = workbook.SetCellValue(sheet, col+"1", title)
	}
	example := []interface{}{"2019110042", "Siti Rahmawati", "IF", "2023/2024", "siti@example.com", "081234567890", models.StatusEmployed}
	for i, v := range example {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = workbook.SetCellValue(sheet, col+"2", v)
	}

	c.Header("Content-Disposition", `attachment; filename="alumni_import_template.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		h.logger.Error("write import template failed", zap.Error(err))
	}
}
