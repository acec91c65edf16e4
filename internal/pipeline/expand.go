// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package pipeline

import (
	"log/slog"
	"strings"
	"sync"

	"timonator/internal/bitset"
	"timonator/internal/layout"
	"timonator/internal/model"
	"timonator/internal/signal"
)

// サブ信号の列名
func SubSignalName(word, sub string) string {
	return word + "_" + sub
}

func isReserve(name string) bool {
	return strings.Contains(strings.ToLower(name), "reserve")
}

// 表の全てのステータスワード列をサブ信号の列に展開する
//
// 既に展開済みの列は作り直さないので、何度実行しても結果は変わらない。
// 定義のないステータスワードはそのまま残し、ErrUnresolvableLayoutを
// 警告として返す。サブ信号名が別の列と衝突したときはその列を残して
// ErrColumnCollisionを警告として返す。
func Expand(table *signal.Table, lt *layout.Table, opts Options) ([]error, error) {
	type job struct {
		word     *signal.Column
		def      layout.Word
		result   []*signal.Column
		warnings []error
	}

	var (
		jobs     []*job
		warnings []error
	)
	for _, c := range table.Columns() {
		if c.Kind != signal.StatusWord {
			continue
		}
		def, ok := lt.Lookup(c.Header.Name)
		if !ok {
			err := &model.ColumnError{Column: c.Name, Err: model.ErrUnresolvableLayout}
			slog.Warn("bitset not expanded", "column", c.Name, "err", model.ErrUnresolvableLayout)
			warnings = append(warnings, err)
			continue
		}
		if int(def.Width) != c.Header.BitsetWidth() {
			slog.Warn("bitset width differs from layout",
				"column", c.Name, "declared", c.Header.BitsetWidth(), "layout", def.Width)
		}
		jobs = append(jobs, &job{word: c, def: def})
	}

	// 列ごとに独立しているので並行して解く
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j *job) {
			defer wg.Done()
			j.result, j.warnings = decodeWord(table, j.word, j.def, lt.Ordering, opts)
		}(j)
	}
	wg.Wait()

	added := 0
	for _, j := range jobs {
		warnings = append(warnings, j.warnings...)
		for _, c := range j.result {
			if err := table.Add(c); err != nil {
				return warnings, err
			}
			added++
		}
	}
	slog.Debug("bitsets expanded", "words", len(jobs), "columns", added, "warnings", len(warnings))
	return warnings, nil
}

// 1つのステータスワードからまだ無いサブ信号の列を作る
func decodeWord(table *signal.Table, word *signal.Column, def layout.Word, ord bitset.Ordering, opts Options) ([]*signal.Column, []error) {
	width := bitset.Width(word.Header.BitsetWidth())
	var (
		out      []*signal.Column
		warnings []error
	)
	for _, b := range def.Bits {
		if !opts.KeepReserve && isReserve(b.Name) {
			continue
		}
		name := SubSignalName(word.Header.Name, b.Name)
		if c, ok := table.Column(name); ok {
			// 同じワードから展開済みなら何もしない
			if c.Parent != word.Name {
				slog.Warn("sub-signal name collides with existing column",
					"column", name, "word", word.Name, "existing", c.Kind)
				warnings = append(warnings, &model.ColumnError{Column: name, Err: model.ErrColumnCollision})
			}
			continue
		}
		values := make([]float64, len(word.Values))
		for r, v := range word.Values {
			values[r] = float64(bitset.Decode(uint64(v), b.Index, width, ord))
		}
		out = append(out, &signal.Column{
			Name:   name,
			Header: word.Header,
			Kind:   signal.Boolean,
			Values: values,
			Parent: word.Name,
		})
	}
	return out, warnings
}
