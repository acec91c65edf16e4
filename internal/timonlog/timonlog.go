// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

// セミコロン区切りのTiMonログを読み込む
package timonlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"timonator/internal/model"
)

// 読み込んだログ
type Log struct {
	Path    string
	Headers []model.Header
	Records []model.RawRecord
}

// ログファイルを開いて読む
func Open(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("Open", "err", err)
		return nil, err
	}
	defer f.Close()

	l, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.Path = path
	return l, nil
}

// 1行目を列見出しとして残りの行を読む
// 全てのセルで小数点のカンマをピリオドに置き換える
func Read(r io.Reader) (*Log, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headings, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("ログが空")
		}
		slog.Error("Read", "err", err)
		return nil, err
	}
	// 行末の区切り文字による空の列見出しは無視する
	width := len(headings)
	for width > 0 && strings.TrimSpace(headings[width-1]) == "" {
		width--
	}

	headers := make([]model.Header, width)
	seen := make(map[string]bool, width)
	for i, heading := range headings[:width] {
		h := model.ParseHeader(heading)
		if h.Name == "" {
			return nil, fmt.Errorf("列%dの見出しが空", i+1)
		}
		if seen[h.Key()] {
			return nil, fmt.Errorf("列見出し %q が重複している", h.Key())
		}
		seen[h.Key()] = true
		headers[i] = h
	}

	var records []model.RawRecord
	for row := 0; ; row++ {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Error("Read", "err", err)
			return nil, err
		}
		// 末尾の空セルは見出しと同じく切り詰める
		for len(cells) > width && strings.TrimSpace(cells[len(cells)-1]) == "" {
			cells = cells[:len(cells)-1]
		}
		if len(cells) != width {
			return nil, &model.CellError{
				Column: "*",
				Row:    row,
				Value:  strings.Join(cells, ";"),
				Err:    fmt.Errorf("%d fields, want %d", len(cells), width),
			}
		}
		for i := range cells {
			cells[i] = strings.ReplaceAll(strings.TrimSpace(cells[i]), ",", ".")
		}
		records = append(records, model.NewRawRecord(headers, cells))
	}

	return &Log{Headers: headers, Records: records}, nil
}

// 列見出しが存在するか
func (l *Log) Has(key string) bool {
	for _, h := range l.Headers {
		if h.Key() == key {
			return true
		}
	}
	return false
}
