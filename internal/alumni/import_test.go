package alumni

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadRowsCSV(t *testing.T) {
	in := strings.NewReader(
		"Student No,Full Name,Program Code,Academic Year,Email,Phone,Status\n" +
			"2019110042,Siti Rahmawati,IF,2023/2024,siti@example.com,081234567890,Bekerja\n" +
			"2019110043,Budi Santoso,IF,2023/2024,,,\n")

	rows, err := readRows(".csv", in)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, importHeader, rows[0])
	assert.Equal(t, "2019110042", rows[1][0])
	assert.Equal(t, "Siti Rahmawati", rows[1][1])
	// short/empty trailing cells still map through cell() as blanks
	assert.Equal(t, "", cell(rows[2], 6))
}

func TestReadRowsXLSX(t *testing.T) {
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	require.NoError(t, workbook.SetSheetRow(sheet, "A1", &importHeader))
	require.NoError(t, workbook.SetSheetRow(sheet, "A2", &[]interface{}{"2019110042", "Siti Rahmawati", "IF", "2023/2024"}))
	buf, err := workbook.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, workbook.Close())

	rows, err := readRows(".xlsx", buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, importHeader, rows[0])
	assert.Equal(t, "2019110042", rows[1][0])
}

func TestReadRowsRejectsUnreadableWorkbook(t *testing.T) {
	_, err := readRows(".xlsx", strings.NewReader("this is not a zip archive"))
	assert.Error(t, err)
}
