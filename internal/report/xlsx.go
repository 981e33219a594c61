package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dbtrawl/dbtrawl/internal/classify"
	"github.com/dbtrawl/dbtrawl/internal/model"
)

// summaryHeaders is the column order of the summary sheet.
var summaryHeaders = []string{
	"Risk Type", "Severity", "Subject", "Table", "Fields",
	"Sensitive Types", "Description", "Detected", "Records", "Remediation",
}

// databaseHeaders is the column order of per-database sheets.
var databaseHeaders = []string{"Table", "Columns", "Sensitive", "Confirmed", "Rows"}

// xlsxStyles holds the style IDs registered on one workbook.
type xlsxStyles struct {
	redBold    int // bold red text for "yes" cells
	highSev    int // bold dark-red text on light-red fill, high severity cell
	mediumSev  int // bold orange text on light-yellow fill, medium severity cell
	highRow    int // light-red fill for the rest of a high finding row
	mediumRow  int // light-yellow fill for the rest of a medium finding row
	link       int // blue underline for hyperlinked cells
	linkHigh   int // hyperlink on a high row (keeps the fill)
	linkMedium int // hyperlink on a medium row
}

// XLSX is the spreadsheet Sink implementation.
type XLSX struct {
	f      *excelize.File
	path   string
	styles xlsxStyles
}

// NewXLSX creates a workbook for one datasource under dir. The file is not
// written until Close.
func NewXLSX(dir, datasource string, now time.Time) (*XLSX, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("report: name summary sheet: %w", err)
	}

	x := &XLSX{
		f:    f,
		path: filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", datasource, now.Format("20060102_150405"))),
	}
	if err := x.registerStyles(); err != nil {
		return nil, err
	}
	return x, nil
}

func (x *XLSX) registerStyles() error {
	var firstErr error
	mk := func(style *excelize.Style) int {
		id, err := x.f.NewStyle(style)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return id
	}
	fillOf := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
	}

	x.styles.redBold = mk(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FF0000"},
	})
	x.styles.highSev = mk(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "CC0000"}, Fill: fillOf("FFCCCC"),
	})
	x.styles.mediumSev = mk(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FF6600"}, Fill: fillOf("FFFFCC"),
	})
	x.styles.highRow = mk(&excelize.Style{Fill: fillOf("FFCCCC")})
	x.styles.mediumRow = mk(&excelize.Style{Fill: fillOf("FFFFCC")})
	x.styles.link = mk(&excelize.Style{
		Font: &excelize.Font{Color: "0000FF", Underline: "single"},
	})
	x.styles.linkHigh = mk(&excelize.Style{
		Font: &excelize.Font{Color: "0000FF", Underline: "single"}, Fill: fillOf("FFCCCC"),
	})
	x.styles.linkMedium = mk(&excelize.Style{
		Font: &excelize.Font{Color: "0000FF", Underline: "single"}, Fill: fillOf("FFFFCC"),
	})

	if firstErr != nil {
		return fmt.Errorf("report: register styles: %w", firstErr)
	}
	return nil
}

// WriteSummary fills the summary sheet: one row per finding, severity cell
// and row tinted by severity, and the subject cell hyperlinked to the
// matching sheet in the same document.
func (x *XLSX) WriteSummary(findings []model.Finding) error {
	if err := x.writeHeader(summarySheet, summaryHeaders); err != nil {
		return err
	}

	for i, fd := range findings {
		row := i + 2
		cells := []any{
			fd.Type, fd.Severity, fd.Subject, fd.Table, fd.Fields,
			fd.SensitiveTypes, fd.Description, fd.Detected, fd.Records, fd.Remediation,
		}
		if err := x.writeRow(summarySheet, row, cells); err != nil {
			return err
		}

		rowStyle, sevStyle, linkStyle := 0, 0, x.styles.link
		switch fd.Severity {
		case model.SeverityHigh:
			rowStyle, sevStyle, linkStyle = x.styles.highRow, x.styles.highSev, x.styles.linkHigh
		case model.SeverityMedium:
			rowStyle, sevStyle, linkStyle = x.styles.mediumRow, x.styles.mediumSev, x.styles.linkMedium
		}
		if rowStyle != 0 {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(cells), row)
			if err := x.f.SetCellStyle(summarySheet, first, last, rowStyle); err != nil {
				return fmt.Errorf("report: style row %d: %w", row, err)
			}
			sevCell, _ := excelize.CoordinatesToCellName(2, row)
			if err := x.f.SetCellStyle(summarySheet, sevCell, sevCell, sevStyle); err != nil {
				return fmt.Errorf("report: style severity %d: %w", row, err)
			}
		}

		// Subject links to the database sheet, or to the privilege sheet
		// for privilege findings.
		target := sheetName(fd.Subject)
		if fd.Type == model.TypePrivilege {
			target = usersSheet
		}
		subjCell, _ := excelize.CoordinatesToCellName(3, row)
		location := fmt.Sprintf("'%s'!A1", target)
		if err := x.f.SetCellHyperLink(summarySheet, subjCell, location, "Location"); err != nil {
			return fmt.Errorf("report: hyperlink row %d: %w", row, err)
		}
		if err := x.f.SetCellStyle(summarySheet, subjCell, subjCell, linkStyle); err != nil {
			return fmt.Errorf("report: style link %d: %w", row, err)
		}
	}
	return nil
}

// WriteUsers fills the privilege sheet, one row per user, with every "yes"
// privilege cell bold red.
func (x *XLSX) WriteUsers(users []model.UserGrant) error {
	if _, err := x.f.NewSheet(usersSheet); err != nil {
		return fmt.Errorf("report: create users sheet: %w", err)
	}
	privs := model.PrivilegeColumns()
	headers := append([]string{"User", "Host"}, privs...)
	if err := x.writeHeader(usersSheet, headers); err != nil {
		return err
	}

	for i, u := range users {
		row := i + 2
		cells := make([]any, 0, len(headers))
		cells = append(cells, u.User, u.Host)
		for _, p := range privs {
			cells = append(cells, u.Flags[p])
		}
		if err := x.writeRow(usersSheet, row, cells); err != nil {
			return err
		}
		for col, p := range privs {
			if u.Flags[p] != "yes" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+3, row)
			if err := x.f.SetCellStyle(usersSheet, cell, cell, x.styles.redBold); err != nil {
				return fmt.Errorf("report: style user cell: %w", err)
			}
		}
	}
	return nil
}

// WriteDatabase fills one sheet for a database: one row per table with the
// column snapshot and classification as compact JSON, the confirmed cell
// bold red when "yes".
func (x *XLSX) WriteDatabase(name string, tables []model.TableResult) error {
	sheet := sheetName(name)
	if _, err := x.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("report: create sheet %s: %w", sheet, err)
	}
	if err := x.writeHeader(sheet, databaseHeaders); err != nil {
		return err
	}

	for i, t := range tables {
		row := i + 2
		columnsJSON := marshalCell(t.Columns, t.Err)
		sensitiveJSON := marshalCell(t.Sensitive, t.Err)
		cells := []any{
			t.Table, columnsJSON, sensitiveJSON,
			classify.Verdict(t.Confirmed), t.RowCount,
		}
		if err := x.writeRow(sheet, row, cells); err != nil {
			return err
		}
		if t.Confirmed {
			cell, _ := excelize.CoordinatesToCellName(4, row)
			if err := x.f.SetCellStyle(sheet, cell, cell, x.styles.redBold); err != nil {
				return fmt.Errorf("report: style confirmed cell: %w", err)
			}
		}
	}
	return nil
}

// Close saves the workbook and returns its path.
func (x *XLSX) Close() (string, error) {
	if err := x.f.SaveAs(x.path); err != nil {
		return "", fmt.Errorf("report: save %s: %w", x.path, err)
	}
	if err := x.f.Close(); err != nil {
		return "", fmt.Errorf("report: close: %w", err)
	}
	return x.path, nil
}

func (x *XLSX) writeHeader(sheet string, headers []string) error {
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return x.writeRow(sheet, 1, cells)
}

func (x *XLSX) writeRow(sheet string, row int, cells []any) error {
	for col, v := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("report: cell name: %w", err)
		}
		if err := x.f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("report: set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// marshalCell renders a structure as compact JSON; error-marker tables get
// an error object instead.
func marshalCell(v any, errMsg string) string {
	if errMsg != "" {
		out, _ := json.Marshal(map[string]string{"error": errMsg})
		return string(out)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(out)
}
