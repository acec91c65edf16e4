// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

// 信号表をグラフ画像やCSVにする
package render

import (
	"errors"
	"image/color"
	"log/slog"
	"math"
	"os"

	"golang.org/x/image/colornames"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// 系列の色
var palette = []color.Color{
	colornames.Darkmagenta,
	colornames.Darkcyan,
	colornames.Darkorange,
	colornames.Darkgreen,
	colornames.Crimson,
	colornames.Navy,
	colornames.Olive,
	colornames.Saddlebrown,
}

// Y軸の範囲 (Min == Maxなら自動)
type YRange struct {
	Min float64
	Max float64
}

func (r YRange) fixed() bool { return r.Min != r.Max }

type ChartOption struct {
	titleText  string
	xLabelText string
	yLabelText string
	names      []string // 列1以降の凡例
	yRange     YRange
}

var ErrNoData = errors.New("描ける値がない")

// 行列からグラフを作る
// 行列の列0はUNIX時間(s)、列1以降が系列
func newChart(option ChartOption, matrix mat.Matrix) (*plot.Plot, error) {
	p := plot.New()

	p.Title.Text = option.titleText
	p.X.Label.Text = option.xLabelText
	p.Y.Label.Text = option.yLabelText
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04:05"}

	// 背景色
	p.BackgroundColor = colornames.Snow

	// 補助線
	p.Add(plotter.NewGrid())

	// 凡例の位置を右上に設定
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.Padding = vg.Points(5)

	rows, cols := matrix.Dims()
	drawn := 0
	for c := 1; c < cols; c++ {
		xys := make(plotter.XYs, 0, rows)
		for r := 0; r < rows; r++ {
			x, y := matrix.At(r, 0), matrix.At(r, c)
			// 欠損値は描かない
			if math.IsNaN(y) || math.IsInf(y, 0) {
				continue
			}
			xys = append(xys, plotter.XY{X: x, Y: y})
		}
		name := ""
		if c-1 < len(option.names) {
			name = option.names[c-1]
		}
		if len(xys) == 0 {
			slog.Warn("no values to plot", "column", name)
			continue
		}
		// 折れ線グラフを作成
		line, err := plotter.NewLine(xys)
		if err != nil {
			slog.Error("NewLine", "err", err)
			return nil, err
		}
		line.Color = palette[(c-1)%len(palette)]
		line.Width = vg.Points(2)
		p.Add(line)
		if name != "" {
			p.Legend.Add(name, line) // 凡例
		}
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoData
	}
	// 範囲はデータを加えた後で固定する
	if option.yRange.fixed() {
		p.Y.Min = option.yRange.Min
		p.Y.Max = option.yRange.Max
	}
	return p, nil
}

// グラフを保存する
func saveChart(savefilepath string, graphWidth int, graphHeight int, option ChartOption, matrix mat.Matrix) error {
	p, err := newChart(option, matrix)
	if err != nil {
		return err
	}
	// プロットを画像ファイルに保存
	if err := p.Save(vg.Points(float64(graphWidth)), vg.Points(float64(graphHeight)), savefilepath); err != nil {
		slog.Error("Save", "err", err)
		return err
	}
	return nil
}

// 縦に並べたグラフを1枚の画像に保存する
func saveStacked(savefilepath string, graphWidth int, graphHeight int, plots []*plot.Plot) error {
	if len(plots) == 0 {
		return ErrNoData
	}
	img := vgimg.New(vg.Points(float64(graphWidth)), vg.Points(float64(graphHeight)))
	dc := draw.New(img)

	tiles := draw.Tiles{
		Rows: len(plots),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	grid := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		grid[i] = []*plot.Plot{p}
	}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		grid[i][0].Draw(canvases[i][0])
	}

	f, err := os.Create(savefilepath)
	if err != nil {
		slog.Error("Create", "err", err)
		return err
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		slog.Error("WriteTo", "err", err)
		return err
	}
	return f.Close()
}
