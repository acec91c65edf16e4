// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

// 環境変数による既定値
// コマンドラインのフラグで上書きできる
package config

import (
	"os"
	"strconv"
)

type Config struct {
	LayoutPath string // ビットセット定義のキャッシュ (TIMON_LAYOUT)
	PlotDir    string // グラフの出力先 (TIMON_PLOT_DIR)
	BitOrder   string // MVBリストのビット番号の数え方 "lsb" / "msb" (TIMON_BIT_ORDER)
	LogLevel   string // TIMON_LOG_LEVEL
	Width      int    // グラフの横ピクセル (TIMON_WIDTH)
	Height     int    // グラフの縦ピクセル (TIMON_HEIGHT)
}

func Load() Config {
	return Config{
		LayoutPath: getenv("TIMON_LAYOUT", "mvb_list.yaml"),
		PlotDir:    getenv("TIMON_PLOT_DIR", "Timon_Plots"),
		BitOrder:   getenv("TIMON_BIT_ORDER", "lsb"),
		LogLevel:   getenv("TIMON_LOG_LEVEL", "info"),
		Width:      getenvInt("TIMON_WIDTH", 4800),
		Height:     getenvInt("TIMON_HEIGHT", 1200),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
