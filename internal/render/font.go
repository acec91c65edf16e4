// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package render

import (
	"fmt"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
)

// 埋め込みGoフォント
var fontGoRegular = font.Font{Typeface: "GoRegular"}

func init() {
	ttf, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}

	font.DefaultCache.Add([]font.Face{
		{
			Font: fontGoRegular,
			Face: ttf,
		},
	})

	if !font.DefaultCache.Has(fontGoRegular) {
		panic(fmt.Errorf("typeface %s, font load error", fontGoRegular.Typeface))
	}

	// デフォルトフォントをGoフォントにする
	plot.DefaultFont = fontGoRegular
	plotter.DefaultFont = fontGoRegular
}
