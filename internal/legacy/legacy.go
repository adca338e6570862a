// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package legacy upgrades legacy binary Excel workbooks (.xls) to the
// Office Open XML format (.xlsx) so that converters which only read the
// modern format can process them.
package legacy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet's name and cell text, row-major.
type Sheet struct {
	Name string
	Rows [][]string
}

// ErrNoSheets is returned for workbooks without any worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// maxSheetName is the longest sheet name the xlsx format allows.
const maxSheetName = 31

// Upgrader converts .xls files to .xlsx files written beside them.
type Upgrader struct {
	// read loads every sheet of a legacy workbook; tests replace it.
	read func(path string) ([]Sheet, error)
}

// NewUpgrader returns an Upgrader backed by the extrame/xls reader.
func NewUpgrader() *Upgrader {
	return &Upgrader{read: readXLS}
}

// UpgradedPath returns the .xlsx path written for src: the same directory
// and base name with only the final extension replaced.
func UpgradedPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".xlsx"
}

// Upgrade reads src and writes every sheet to UpgradedPath(src), returning
// that path. On any failure it returns "" and removes a partially written
// destination.
func (u *Upgrader) Upgrade(src string) (string, error) {
	sheets, err := u.read(src)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", src, err)
	}
	if len(sheets) == 0 {
		return "", fmt.Errorf("reading %s: %w", src, ErrNoSheets)
	}

	dest := UpgradedPath(src)
	if err := writeXLSX(dest, sheets); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	return dest, nil
}

// readXLS loads all worksheets of a BIFF workbook. The reader panics on
// some malformed files, so a panic is turned into an error.
func readXLS(path string) (sheets []Sheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("parsing xls: %v", r)
		}
	}()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, err
	}

	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		sheet := Sheet{Name: ws.Name}
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				sheet.Rows = append(sheet.Rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells[c] = row.Col(c)
			}
			sheet.Rows = append(sheet.Rows, cells)
		}
		sheets = append(sheets, trimTrailingEmptyRows(sheet))
	}
	return sheets, nil
}

func trimTrailingEmptyRows(s Sheet) Sheet {
	for len(s.Rows) > 0 && isEmptyRow(s.Rows[len(s.Rows)-1]) {
		s.Rows = s.Rows[:len(s.Rows)-1]
	}
	return s
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

// writeXLSX writes sheets, in order, to a new workbook at dest.
func writeXLSX(dest string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	used := make(map[string]bool, len(sheets))
	for i, s := range sheets {
		name := sheetName(s.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("naming sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("adding sheet %q: %w", name, err)
		}

		for r, row := range s.Rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := make([]any, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("writing row %d of sheet %q: %w", r+1, name, err)
			}
		}
	}
	f.SetActiveSheet(0)
	return f.SaveAs(dest)
}

// sheetName makes name valid and unique for xlsx: no []:*?/\ characters,
// at most 31 characters, not blank.
func sheetName(name string, index int, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = fmt.Sprintf("Sheet%d", index+1)
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
