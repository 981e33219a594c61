// Package report writes one spreadsheet per audited datasource: a summary
// sheet of risk findings, a user-privilege sheet, and one sheet per
// database.
package report

import (
	"unicode/utf8"

	"github.com/dbtrawl/dbtrawl/internal/model"
)

// Sink receives the tabular output of one audit run. Sheets are written in
// call order; Close persists the document and returns its path.
type Sink interface {
	WriteSummary(findings []model.Finding) error
	WriteUsers(users []model.UserGrant) error
	WriteDatabase(name string, tables []model.TableResult) error
	Close() (string, error)
}

// sheetNameMax is the spreadsheet format's sheet-name limit.
const sheetNameMax = 31

// Fixed sheet names.
const (
	summarySheet = "Audit Summary"
	usersSheet   = "User Privileges"
)

// sheetName caps a database name to the sheet-name limit.
func sheetName(db string) string {
	if utf8.RuneCountInString(db) <= sheetNameMax {
		return db
	}
	return string([]rune(db)[:sheetNameMax])
}
