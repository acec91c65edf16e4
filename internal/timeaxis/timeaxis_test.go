// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package timeaxis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timonator/internal/model"
)

func TestBuild_FilenameScenario(t *testing.T) {
	axis, err := Build(Input{Elapsed: []float64{0, 90.0}}, "2021_03_15_08_30_00_log.csv")
	require.NoError(t, err)

	assert.Equal(t, ModeFilename, axis.Mode)
	require.Len(t, axis.Times, 2)
	assert.Equal(t, time.Date(2021, 3, 15, 8, 30, 0, 0, time.UTC), axis.Times[0])
	assert.Equal(t, "2021-03-15T08:31:30", axis.Times[1].Format("2006-01-02T15:04:05"))
	assert.Empty(t, axis.Rewinds)
}

func TestBuild_FilenameIsAdditive(t *testing.T) {
	elapsed := []float64{0, 0.25, 0.5, 1.75, 60, 3600.5, 86400.125}
	axis, err := Build(Input{Elapsed: elapsed}, "/data/logs/2022_12_31_23_59_59.csv")
	require.NoError(t, err)

	for i := range elapsed {
		for j := range elapsed {
			delta := time.Duration((elapsed[j] - elapsed[i]) * float64(time.Second))
			assert.Equal(t, delta, axis.Times[j].Sub(axis.Times[i]), "rows %d,%d", i, j)
		}
	}
	// 年をまたぐ
	assert.Equal(t, 2023, axis.Times[4].Year())
}

func TestBuild_NonDecreasing(t *testing.T) {
	elapsed := make([]float64, 500)
	for i := range elapsed {
		elapsed[i] = float64(i/3) * 0.1
	}
	axis, err := Build(Input{Elapsed: elapsed}, "2021_03_15_08_30_00.csv")
	require.NoError(t, err)

	for i := 1; i < len(axis.Times); i++ {
		assert.False(t, axis.Times[i].Before(axis.Times[i-1]), "row %d", i)
	}
	assert.Empty(t, axis.Rewinds)
}

func TestBuild_RewindIsReportedNotFatal(t *testing.T) {
	axis, err := Build(Input{Elapsed: []float64{0, 10, 5, 6}}, "2021_03_15_08_30_00.csv")
	require.NoError(t, err)

	require.Len(t, axis.Rewinds, 1)
	assert.Equal(t, 2, axis.Rewinds[0].Row)
	assert.Equal(t, axis.Times[1], axis.Rewinds[0].From)
	assert.Equal(t, axis.Times[2], axis.Rewinds[0].To)
}

func TestBuild_PackedPreferred(t *testing.T) {
	// 2021-03-15T08:30:00Z = 1615797000
	in := Input{
		Elapsed: []float64{0, 1},
		Packed:  []float64{1615797000, 1615797001},
		Offset:  []float64{1, 1},
	}
	axis, err := Build(in, "not_a_timestamp.csv")
	require.NoError(t, err)

	assert.Equal(t, ModePacked, axis.Mode)
	assert.Equal(t, time.Date(2021, 3, 15, 9, 30, 0, 0, time.UTC), axis.Times[0])
	assert.Equal(t, time.Date(2021, 3, 15, 9, 30, 1, 0, time.UTC), axis.Times[1])
}

func TestBuild_PackedPerRowOffset(t *testing.T) {
	// 夏時間の切り替え
	in := Input{
		Packed: []float64{1616900000, 1616900010},
		Offset: []float64{0, 1},
	}
	axis, err := Build(in, "")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+10*time.Second, axis.Times[1].Sub(axis.Times[0]))
}

func TestBuild_OnlyOnePackedColumnFallsBack(t *testing.T) {
	in := Input{
		Elapsed: []float64{30},
		Packed:  []float64{1615797000},
	}
	axis, err := Build(in, "2021_03_15_08_30_00.csv")
	require.NoError(t, err)
	assert.Equal(t, ModeFilename, axis.Mode)
	assert.Equal(t, time.Date(2021, 3, 15, 8, 30, 30, 0, time.UTC), axis.Times[0])
}

func TestBuild_MissingColumns(t *testing.T) {
	_, err := Build(Input{Offset: []float64{1}}, "2021_03_15_08_30_00.csv")
	assert.ErrorIs(t, err, model.ErrMissingColumn)
}

func TestBuild_NaNIsMalformed(t *testing.T) {
	_, err := Build(Input{Elapsed: []float64{0, math.NaN()}}, "2021_03_15_08_30_00.csv")
	assert.ErrorIs(t, err, model.ErrMalformedCell)
}

func TestParseStart(t *testing.T) {
	valid := map[string]time.Time{
		"2021_03_15_08_30_00.csv":          time.Date(2021, 3, 15, 8, 30, 0, 0, time.UTC),
		"2021_03_15_08_30_00_log.csv":      time.Date(2021, 3, 15, 8, 30, 0, 0, time.UTC),
		`C:\TiMon\2020_02_29_23_59_59.csv`: time.Date(2020, 2, 29, 23, 59, 59, 0, time.UTC),
		"/tmp/2021_1_2_3_4_5.tar.gz":       time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	for name, want := range valid {
		got, err := ParseStart(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	invalid := []string{
		"",
		"log.csv",
		"2021_03_15_08_30.csv",
		"2021_03_15_08_xx_00.csv",
		"2021_13_15_08_30_00.csv",
		"2021_02_29_08_30_00.csv",
		"2021_03_15_24_30_00.csv",
		"2021_03_15_08_60_00.csv",
		"2021_03_15_08_30_60.csv",
		"2021_00_15_08_30_00.csv",
		"2021_03_15_08_30_00_17.csv",
	}
	for _, name := range invalid {
		_, err := ParseStart(name)
		assert.ErrorIs(t, err, model.ErrMalformedFilename, name)
	}
}

func TestBuild_MalformedFilename(t *testing.T) {
	_, err := Build(Input{Elapsed: []float64{0}}, "recording.csv")
	assert.ErrorIs(t, err, model.ErrMalformedFilename)
}
