// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package render

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"timonator/internal/signal"
)

const TimeDateFormat = "2006-01-02 15:04:05.000"

// 表計算ソフトで読みやすいCSVを書く
// 先頭列は読める形式の日時
func ExportCSV(w io.Writer, table *signal.Table) error {
	writer := csv.NewWriter(w)

	columns := table.Columns()
	header := make([]string, 0, len(columns)+1)
	header = append(header, "Time Date")
	for _, c := range columns {
		header = append(header, c.Name)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for r, ts := range table.Times {
		record[0] = ts.Format(TimeDateFormat)
		for i, c := range columns {
			record[i+1] = cell(c, r)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func cell(c *signal.Column, r int) string {
	if c.Kind == signal.Categorical {
		return c.Text[r]
	}
	v := c.Values[r]
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// 元のログのファイル名に "EXCEL_" を付けたもの
func ExcelName(logPath string) string {
	return "EXCEL_" + filepath.Base(logPath)
}

// ファイルに書き出す
func ExportCSVFile(path string, table *signal.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ExportCSV(f, table); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
