// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package layout

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"timonator/internal/bitset"
)

const SheetName = "Variables"

// 読む列
var workbookColumns = []string{"VarId", "VarType", "Comment0", "Comment1"}

// MVBリストのVariablesシートを行の並びとして読む
func ReadWorkbook(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		slog.Error("OpenFile", "err", err)
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("%s: sheet %s: %w", path, SheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: sheet %s is empty", path, SheetName)
	}

	// 見出しから列位置を決める
	index := make(map[string]int, len(workbookColumns))
	for i, name := range rows[0] {
		index[name] = i
	}
	for _, name := range workbookColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%s: column %s not found", path, name)
		}
	}
	cell := func(row []string, name string) string {
		if i := index[name]; i < len(row) {
			return row[i]
		}
		return ""
	}

	out := make([]Row, 0, len(rows)-1)
	for r, row := range rows[1:] {
		out = append(out, Row{
			VarID:    cell(row, "VarId"),
			VarType:  cell(row, "VarType"),
			Comment0: cell(row, "Comment0"),
			Comment1: cell(row, "Comment1"),
			Line:     r + 2,
		})
	}
	return out, nil
}

// MVBリストから対応表を作る
func FromWorkbook(path string, ord bitset.Ordering) (*Table, error) {
	rows, err := ReadWorkbook(path)
	if err != nil {
		return nil, err
	}
	t, err := Build(Normalize(rows), ord)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Info("layout imported", "path", path, "words", len(t.Words))
	return t, nil
}
