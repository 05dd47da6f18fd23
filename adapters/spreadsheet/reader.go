package spreadsheet

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"sheetpress/domain/table"
	"sheetpress/internal/errors"
)

// Supported container format extensions.
const (
	extXLSX = ".xlsx"
	extXLS  = ".xls"
)

// SupportedFile reports whether the file name carries a readable extension.
func SupportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case extXLSX, extXLS:
		return true
	}
	return false
}

// ReadBytes parses spreadsheet bytes into a RawFrame, dispatching on the
// file name's extension. The first sheet is read; its first row becomes the
// header row. Parse failures of any kind come back as FILE_UNREADABLE.
func ReadBytes(name string, data []byte) (*table.RawFrame, error) {
	startTime := time.Now()

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case extXLSX:
		rows, err = readXLSX(data)
	case extXLS:
		rows, err = readXLS(data)
	default:
		return nil, errors.Newf(errors.CodeFileUnreadable,
			"unsupported file type %q (want .xlsx or .xls)", filepath.Ext(name))
	}
	if err != nil {
		return nil, errors.FileUnreadable(filepath.Base(name), err)
	}

	frame := framize(rows)
	log.Printf("[SpreadsheetReader] %s read in %.2fms (%d columns, %d rows)",
		filepath.Base(name), float64(time.Since(startTime).Nanoseconds())/1e6,
		len(frame.Columns), len(frame.Rows))
	return frame, nil
}

// readXLSX reads the first sheet of an OOXML workbook.
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readXLS reads the first sheet of a legacy BIFF workbook.
func readXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		// Row.LastCol mirrors the ROW record's colMac field, the first
		// undefined column, so it is an exclusive bound. Columns before
		// FirstCol are absent from the record; pad them so cell positions
		// stay aligned with the header row.
		width := row.LastCol()
		if width == 0 {
			width = probeRowWidth(row)
		}
		cells := make([]string, width)
		for j := row.FirstCol(); j < width; j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// biffMaxCols is the BIFF8 worksheet column limit.
const biffMaxCols = 256

// probeRowWidth finds the width of a row that was written without a ROW
// record; such rows report zero bounds even when they hold cells.
func probeRowWidth(row *xls.Row) int {
	for j := biffMaxCols - 1; j >= 0; j-- {
		if row.Col(j) != "" {
			return j + 1
		}
	}
	return 0
}

// framize converts raw sheet rows into a RawFrame: first row becomes the
// trimmed header, remaining rows are padded or truncated to header width.
func framize(rows [][]string) *table.RawFrame {
	if len(rows) == 0 {
		return &table.RawFrame{}
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				cells[j] = row[j]
			}
		}
		dataRows = append(dataRows, cells)
	}

	return &table.RawFrame{Columns: headers, Rows: dataRows}
}
