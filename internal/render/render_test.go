// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package render

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timonator/internal/model"
	"timonator/internal/signal"
)

func sampleTable(t *testing.T) *signal.Table {
	t.Helper()
	tb := signal.New(4)
	start := time.Date(2021, 3, 15, 8, 30, 0, 0, time.UTC)
	for i := range tb.Times {
		tb.Times[i] = start.Add(time.Duration(i) * 250 * time.Millisecond)
	}
	word := model.Header{Name: "PLC_EVR_BS1", Type: "Bitset8"}
	columns := []*signal.Column{
		{Name: "TIME", Header: model.Header{Name: "TIME"}, Kind: signal.Numeric, Values: []float64{0, 0.25, 0.5, 0.75}},
		{Name: "PLC_EVR_BS1(Bitset8)", Header: word, Kind: signal.StatusWord, Values: []float64{75, 10, 128, 0}},
		{Name: "PLC_TIME_CV(Enum2)", Header: model.Header{Name: "PLC_TIME_CV", Type: "Enum2"}, Kind: signal.Numeric, Values: []float64{1, 1, 1, 1}},
		{Name: "DO1_SPEED(Real32)", Header: model.Header{Name: "DO1_SPEED", Type: "Real32"}, Kind: signal.Numeric, Values: []float64{0, math.NaN(), 2.5, 3}},
		{Name: "DO1_MODE(String)", Header: model.Header{Name: "DO1_MODE", Type: "String"}, Kind: signal.Categorical, Text: []string{"a", "b", "c", "d"}},
		{Name: "DO1_EMPTY(Real32)", Header: model.Header{Name: "DO1_EMPTY", Type: "Real32"}, Kind: signal.Numeric, Values: []float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}},
		{Name: "PLC_EVR_BS1_NullSpeed", Header: word, Kind: signal.Boolean, Values: []float64{1, 0, 0, 0}, Parent: "PLC_EVR_BS1(Bitset8)"},
	}
	for _, c := range columns {
		require.NoError(t, tb.Add(c))
	}
	return tb
}

func newRenderer(t *testing.T) *Renderer {
	return &Renderer{
		Dir:    filepath.Join(t.TempDir(), "Timon_Plots"),
		Width:  400,
		Height: 200,
		Title:  "2021_03_15_08_30_00.csv",
	}
}

func TestPlotSignal(t *testing.T) {
	r := newRenderer(t)
	path, err := r.PlotSignal(sampleTable(t), "DO1_SPEED(Real32)")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(r.Dir, "DO1_SPEED(Real32).png"), path)
	assert.FileExists(t, path)

	_, err = r.PlotSignal(sampleTable(t), "NOPE")
	assert.ErrorIs(t, err, signal.ErrUnknownColumn)

	_, err = r.PlotSignal(sampleTable(t), "DO1_EMPTY(Real32)")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPlotAll(t *testing.T) {
	r := newRenderer(t)
	paths, err := r.PlotAll(sampleTable(t))
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		assert.FileExists(t, p)
		names = append(names, filepath.Base(p))
	}
	// TIMEを含む列、文字列の列、値のない列は描かない
	assert.Equal(t, []string{
		"PLC_EVR_BS1(Bitset8).png",
		"DO1_SPEED(Real32).png",
		"PLC_EVR_BS1_NullSpeed.png",
	}, names)
}

func TestPlotBitsets(t *testing.T) {
	r := newRenderer(t)
	paths, err := r.PlotBitsets(sampleTable(t))
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "PLC_EVR_BS1_NullSpeed.png", filepath.Base(paths[0]))
}

func TestPlotLifeword(t *testing.T) {
	r := newRenderer(t)
	paths, err := r.PlotLifeword(sampleTable(t), "DO1-EVR")
	require.NoError(t, err)

	require.Len(t, paths, 4)
	assert.Equal(t, "DO1-EVR_Lifeword.png", filepath.Base(paths[3]))
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err = r.PlotLifeword(sampleTable(t), "HMI")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, sampleTable(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, []string{
		"Time Date", "TIME", "PLC_EVR_BS1(Bitset8)", "PLC_TIME_CV(Enum2)",
		"DO1_SPEED(Real32)", "DO1_MODE(String)", "DO1_EMPTY(Real32)", "PLC_EVR_BS1_NullSpeed",
	}, records[0])
	assert.Equal(t, []string{"2021-03-15 08:30:00.250", "0.25", "10", "1", "", "b", "", "0"}, records[2])
}

func TestExportCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ExcelName("/logs/2021_03_15_08_30_00.csv"))
	assert.Equal(t, "EXCEL_2021_03_15_08_30_00.csv", filepath.Base(path))
	require.NoError(t, ExportCSVFile(path, sampleTable(t)))
	assert.FileExists(t, path)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "A_B_C.png", fileName("A/B:C"))
	assert.Equal(t, "PLC_EVR_BS1(Bitset8).png", fileName("PLC_EVR_BS1(Bitset8)"))
}

func TestPlotSignal_ExistingDirIsQuietAtWarnLevel(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	defer slog.SetDefault(prev)

	r := newRenderer(t)
	for i := 0; i < 3; i++ {
		_, err := r.PlotSignal(sampleTable(t), "DO1_SPEED(Real32)")
		require.NoError(t, err)
	}
	assert.NotContains(t, buf.String(), "plot directory exists")
}
