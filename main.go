// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors
// 鉄道車両の車上モニタ(TiMon)が記録したセミコロン区切りのログを
// 時刻付きの信号表にして、ビットセットを個々の信号に分解し、グラフにする
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/mat"

	"timonator/internal/bitset"
	"timonator/internal/config"
	"timonator/internal/layout"
	"timonator/internal/logging"
	"timonator/internal/pipeline"
	"timonator/internal/render"
	"timonator/internal/signal"
)

// 先頭の何行を表示するか
const headRows = 5

// 行列を表示する関数
func matPrint(w io.Writer, X mat.Matrix) {
	fmt.Fprintf(w, "%v\n", mat.Formatted(X, mat.Prefix(""), mat.Excerpt(headRows)))
}

type options struct {
	layoutPath  string
	plotDir     string
	bitOrder    string
	logLevel    string
	graphWidth  int
	graphHeight int
	keepReserve bool
}

// ビットセット定義を読む
// キャッシュファイルがなければビットセットを展開せずに続ける
func loadLayout(path string) (*layout.Table, error) {
	t, err := layout.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("layout cache not found, bitsets will not be expanded",
			"path", path, "hint", "timonator layout import <MVB list.xlsx>")
		return nil, nil
	}
	if err != nil {
		slog.Error("layout.Load", "err", err)
		return nil, err
	}
	return t, nil
}

// ログファイルを信号表にする
func loadTable(opts *options, logPath string) (*signal.Table, error) {
	fmt.Printf("input file \"%s\"\n", logPath)

	lt, err := loadLayout(opts.layoutPath)
	if err != nil {
		return nil, err
	}
	session := pipeline.New(logPath, lt, pipeline.Options{KeepReserve: opts.keepReserve})
	table, err := session.Run()
	if err != nil {
		return nil, err
	}
	for _, w := range session.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}
	if axis := session.Axis(); axis != nil && len(axis.Rewinds) != 0 {
		fmt.Fprintf(os.Stderr, "warning: time axis rewinds %d times (first at row %d)\n",
			len(axis.Rewinds), axis.Rewinds[0].Row)
	}
	return table, nil
}

func newRenderer(opts *options, logPath string) *render.Renderer {
	return &render.Renderer{
		Dir:    opts.plotDir,
		Width:  opts.graphWidth,
		Height: opts.graphHeight,
		Title:  filepath.Base(logPath),
	}
}

func printPaths(paths []string) {
	for _, p := range paths {
		fmt.Println(p)
	}
	fmt.Printf("%d files\n", len(paths))
}

// 信号表の中身を表示する
func describe(w io.Writer, table *signal.Table) error {
	fmt.Fprintf(w, "rows: %d\n", table.Len())
	if table.Len() != 0 {
		fmt.Fprintf(w, "from: %s\nto:   %s\n",
			table.Times[0].Format(render.TimeDateFormat),
			table.Times[table.Len()-1].Format(render.TimeDateFormat))
	}

	var numeric []string
	for _, c := range table.Columns() {
		if !c.IsNumeric() {
			fmt.Fprintf(w, "%-48s %-12s\n", c.Name, c.Kind)
			continue
		}
		numeric = append(numeric, c.Name)
		s, err := table.Summary(c.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-48s %-12s n=%d missing=%d min=%g max=%g mean=%g\n",
			c.Name, c.Kind, s.Count, s.Missing, s.Min, s.Max, s.Mean)
	}

	if len(numeric) != 0 && table.Len() != 0 {
		matrix, err := table.Matrix(numeric...)
		if err != nil {
			return err
		}
		matPrint(w, matrix)
	}
	return nil
}

// 先頭の引数をログファイルとして取り出す
func logArg(c *cli.Context) (string, error) {
	logPath := c.Args().First()
	if len(logPath) == 0 {
		return "", cli.Exit("ファイルが指定されていません", -1)
	}
	return logPath, nil
}

func main() {
	cfg := config.Load()
	opts := &options{}

	app := &cli.App{
		Name:    "timonator",
		Usage:   "TiMonログを解析してグラフにする",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "layout",
				Aliases:     []string{"mvb"},
				Usage:       "ビットセット定義のキャッシュファイル",
				Destination: &opts.layoutPath,
				Value:       cfg.LayoutPath,
			},
			&cli.StringFlag{
				Name:        "dir",
				Usage:       "グラフの出力先ディレクトリ",
				Destination: &opts.plotDir,
				Value:       cfg.PlotDir,
			},
			&cli.StringFlag{
				Name:        "bit-order",
				Usage:       "MVBリストのビット番号の数え方 (lsb, msb)",
				Destination: &opts.bitOrder,
				Value:       cfg.BitOrder,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "ログの出力レベル (debug, info, warn, error)",
				Destination: &opts.logLevel,
				Value:       cfg.LogLevel,
			},
			&cli.IntFlag{
				Name:        "width",
				Aliases:     []string{"W"},
				Usage:       "グラフの横ピクセル",
				Destination: &opts.graphWidth,
				Value:       cfg.Width,
			},
			&cli.IntFlag{
				Name:        "height",
				Aliases:     []string{"H"},
				Usage:       "グラフの縦ピクセル",
				Destination: &opts.graphHeight,
				Value:       cfg.Height,
			},
			&cli.BoolFlag{
				Name:        "keep-reserve",
				Usage:       "予備(reserve)ビットも展開する",
				Destination: &opts.keepReserve,
			},
		},
		Before: func(c *cli.Context) error {
			logging.Init(os.Stderr, logging.ParseLevel(opts.logLevel))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "plot",
				Usage:     "全ての信号をグラフにする",
				ArgsUsage: "<log.csv>",
				Action: func(c *cli.Context) error {
					logPath, err := logArg(c)
					if err != nil {
						return err
					}
					table, err := loadTable(opts, logPath)
					if err != nil {
						return err
					}
					paths, err := newRenderer(opts, logPath).PlotAll(table)
					if err != nil {
						slog.Error("PlotAll", "err", err)
						return err
					}
					printPaths(paths)
					return nil
				},
			},
			{
				Name:      "bitsets",
				Usage:     "ビットセットのサブ信号をグラフにする",
				ArgsUsage: "<log.csv>",
				Action: func(c *cli.Context) error {
					logPath, err := logArg(c)
					if err != nil {
						return err
					}
					table, err := loadTable(opts, logPath)
					if err != nil {
						return err
					}
					paths, err := newRenderer(opts, logPath).PlotBitsets(table)
					if err != nil {
						slog.Error("PlotBitsets", "err", err)
						return err
					}
					printPaths(paths)
					return nil
				},
			},
			{
				Name:      "lifeword",
				Usage:     "キーワードに合う信号をグラフにする (例: DO1-DO2-ASDO)",
				ArgsUsage: "<log.csv> <keyword[-keyword...]>",
				Action: func(c *cli.Context) error {
					logPath, err := logArg(c)
					if err != nil {
						return err
					}
					lifeword := c.Args().Get(1)
					if len(lifeword) == 0 {
						return cli.Exit("キーワードが指定されていません", -1)
					}
					table, err := loadTable(opts, logPath)
					if err != nil {
						return err
					}
					paths, err := newRenderer(opts, logPath).PlotLifeword(table, lifeword)
					if err != nil {
						slog.Error("PlotLifeword", "err", err)
						return err
					}
					printPaths(paths)
					return nil
				},
			},
			{
				Name:      "inspect",
				Usage:     "1つの信号をグラフにする (信号名を省くと一覧を表示する)",
				ArgsUsage: "<log.csv> [signal]",
				Action: func(c *cli.Context) error {
					logPath, err := logArg(c)
					if err != nil {
						return err
					}
					table, err := loadTable(opts, logPath)
					if err != nil {
						return err
					}
					name := c.Args().Get(1)
					if len(name) == 0 {
						for _, n := range table.Names() {
							fmt.Println(n)
						}
						return nil
					}
					path, err := newRenderer(opts, logPath).PlotSignal(table, name)
					if err != nil {
						slog.Error("PlotSignal", "err", err)
						return err
					}
					fmt.Println(path)
					return nil
				},
			},
			{
				Name:      "export",
				Usage:     "表計算ソフト向けのCSVを書き出す",
				ArgsUsage: "<log.csv> [out.csv]",
				Action: func(c *cli.Context) error {
					logPath, err := logArg(c)
					if err != nil {
						return err
					}
					out := c.Args().Get(1)
					if len(out) == 0 {
						out = filepath.Join(filepath.Dir(logPath), render.ExcelName(logPath))
					}
					table, err := loadTable(opts, logPath)
					if err != nil {
						return err
					}
					if err := render.ExportCSVFile(out, table); err != nil {
						slog.Error("ExportCSVFile", "err", err)
						return err
					}
					fmt.Println(out)
					return nil
				},
			},
			{
				Name:      "describe",
				Usage:     "信号の一覧と要約を表示する",
				ArgsUsage: "<log.csv>",
				Action: func(c *cli.Context) error {
					logPath, err := logArg(c)
					if err != nil {
						return err
					}
					table, err := loadTable(opts, logPath)
					if err != nil {
						return err
					}
					return describe(os.Stdout, table)
				},
			},
			{
				Name:  "layout",
				Usage: "ビットセット定義を扱う",
				Subcommands: []*cli.Command{
					{
						Name:      "import",
						Usage:     "MVBリスト(xlsx)からキャッシュファイルを作り直す",
						ArgsUsage: "<MVB list.xlsx>",
						Action: func(c *cli.Context) error {
							xlsx := c.Args().First()
							if len(xlsx) == 0 {
								return cli.Exit("ファイルが指定されていません", -1)
							}
							ord, err := bitset.ParseOrdering(opts.bitOrder)
							if err != nil {
								return cli.Exit(err.Error(), -1)
							}
							t, err := layout.FromWorkbook(xlsx, ord)
							if err != nil {
								slog.Error("FromWorkbook", "err", err)
								return err
							}
							if err := t.Save(opts.layoutPath); err != nil {
								slog.Error("Save", "err", err)
								return err
							}
							fmt.Printf("%d variables with corresponding bitsets written to %s\n",
								len(t.Words), opts.layoutPath)
							return nil
						},
					},
					{
						Name:  "show",
						Usage: "キャッシュファイルの内容を表示する",
						Action: func(c *cli.Context) error {
							t, err := layout.Load(opts.layoutPath)
							if err != nil {
								slog.Error("layout.Load", "err", err)
								return err
							}
							showLayout(os.Stdout, t)
							return nil
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("app.Run", "err", err)
		os.Exit(1)
	}
}

// ビットセット定義を表示する
func showLayout(w io.Writer, t *layout.Table) {
	fmt.Fprintf(w, "ordering: %s\n", t.Ordering)
	for _, name := range t.Names() {
		word := t.Words[name]
		fmt.Fprintf(w, "%s (%d bits)\n", name, word.Width)
		bits := append([]layout.Bit(nil), word.Bits...)
		sort.SliceStable(bits, func(i, j int) bool { return bits[i].Index < bits[j].Index })
		for _, b := range bits {
			fmt.Fprintf(w, "  %2d %s\n", b.Index, b.Name)
		}
	}
}
