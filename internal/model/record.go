// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package model

// ログの1行 (列見出し -> セル文字列)
type RawRecord struct {
	cells map[string]string
}

func NewRawRecord(headers []Header, cells []string) RawRecord {
	m := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(cells) {
			m[h.Key()] = cells[i]
		}
	}
	return RawRecord{cells: m}
}

// 列見出しでセルを得る
func (r RawRecord) Get(key string) (string, bool) {
	v, ok := r.cells[key]
	return v, ok
}
