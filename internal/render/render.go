// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package render

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"

	"timonator/internal/signal"
)

// グラフ画像をDirに書き出す
type Renderer struct {
	Dir    string
	Width  int // pt
	Height int // pt
	Title  string
}

// 出力先ディレクトリを用意する
func (r *Renderer) ensureDir() error {
	if info, err := os.Stat(r.Dir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s はディレクトリではない", r.Dir)
		}
		slog.Debug("plot directory exists, files may be overwritten", "dir", r.Dir)
		return nil
	}
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		slog.Error("MkdirAll", "err", err)
		return err
	}
	return nil
}

// ファイル名に使えない文字を置き換える
func fileName(column string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, column) + ".png"
}

// 列の型に応じたY軸の範囲
func yRangeOf(c *signal.Column) YRange {
	switch {
	case c.Kind == signal.Boolean:
		return YRange{Min: -0.1, Max: 1.1}
	case c.Header.EnumMax() > 0:
		return YRange{Min: -0.1, Max: float64(c.Header.EnumMax()) + 0.1}
	}
	return YRange{}
}

// 時刻の列 (TIMEを含む列見出し)
func isTimeColumn(c *signal.Column) bool {
	return c.Parent == "" && strings.Contains(c.Name, "TIME")
}

func (r *Renderer) chartOf(table *signal.Table, name string) (ChartOption, *signal.Column, error) {
	c, ok := table.Column(name)
	if !ok {
		return ChartOption{}, nil, fmt.Errorf("%w: %q", signal.ErrUnknownColumn, name)
	}
	title := name
	if r.Title != "" {
		title = name + " :: " + r.Title
	}
	return ChartOption{
		titleText:  title,
		xLabelText: "Time Date",
		yLabelText: c.Kind.String(),
		names:      []string{name},
		yRange:     yRangeOf(c),
	}, c, nil
}

// 1つの信号をグラフにする
func (r *Renderer) PlotSignal(table *signal.Table, name string) (string, error) {
	if err := r.ensureDir(); err != nil {
		return "", err
	}
	return r.plotSignal(table, name)
}

func (r *Renderer) plotSignal(table *signal.Table, name string) (string, error) {
	option, _, err := r.chartOf(table, name)
	if err != nil {
		return "", err
	}
	matrix, err := table.Matrix(name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(r.Dir, fileName(name))
	if err := saveChart(path, r.Width, r.Height, option, matrix); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return path, nil
}

// 列ごとにグラフにする
// 数値でない列と値のない列は飛ばす
func (r *Renderer) plotEach(table *signal.Table, names []string) ([]string, error) {
	if err := r.ensureDir(); err != nil {
		return nil, err
	}
	var paths []string
	for _, name := range names {
		c, ok := table.Column(name)
		if !ok || !c.IsNumeric() {
			slog.Debug("skip column", "column", name)
			continue
		}
		path, err := r.plotSignal(table, name)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	slog.Info("plots written", "dir", r.Dir, "count", len(paths))
	return paths, nil
}

// 時刻の列以外の全ての列をグラフにする
func (r *Renderer) PlotAll(table *signal.Table) ([]string, error) {
	var names []string
	for _, c := range table.Columns() {
		if isTimeColumn(c) {
			continue
		}
		names = append(names, c.Name)
	}
	return r.plotEach(table, names)
}

// ビットセットのサブ信号だけをグラフにする
func (r *Renderer) PlotBitsets(table *signal.Table) ([]string, error) {
	var names []string
	for _, c := range table.Columns() {
		if c.Parent != "" {
			names = append(names, c.Name)
		}
	}
	return r.plotEach(table, names)
}

// ライフワードに合う列をそれぞれグラフにし、まとめた1枚も作る
func (r *Renderer) PlotLifeword(table *signal.Table, lifeword string) ([]string, error) {
	var names []string
	for _, name := range table.Select(lifeword) {
		if c, _ := table.Column(name); !isTimeColumn(c) && c.IsNumeric() {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: lifeword %q", ErrNoData, lifeword)
	}

	paths, err := r.plotEach(table, names)
	if err != nil {
		return paths, err
	}

	var plots []*plot.Plot
	for _, name := range names {
		option, _, err := r.chartOf(table, name)
		if err != nil {
			return paths, err
		}
		option.titleText = ""
		matrix, err := table.Matrix(name)
		if err != nil {
			return paths, err
		}
		p, err := newChart(option, matrix)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return paths, err
		}
		plots = append(plots, p)
	}
	if len(plots) != 0 {
		plots[0].Title.Text = lifeword + " Lifeword"
		if r.Title != "" {
			plots[0].Title.Text += " :: " + r.Title
		}
	}

	path := filepath.Join(r.Dir, fileName(lifeword+"_Lifeword"))
	// 1系列あたりの高さを保つ
	height := r.Height * len(plots) / 2
	if height < r.Height {
		height = r.Height
	}
	if err := saveStacked(path, r.Width, height, plots); err != nil {
		return paths, err
	}
	return append(paths, path), nil
}
