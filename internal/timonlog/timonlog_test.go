// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package timonlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timonator/internal/model"
)

const sample = `TIME;PLC_EVR_BS1(Bitset8);PLC_SPEED(Unsigned16);PLC_TEMP(Real32);
0,0;4B;0;21,5;
0,5;4B;12;21,75;
1,0;0A;15;22;
`

func TestRead(t *testing.T) {
	l, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	require.Len(t, l.Headers, 4)
	assert.Equal(t, model.Header{Name: "TIME"}, l.Headers[0])
	assert.Equal(t, model.Header{Name: "PLC_EVR_BS1", Type: "Bitset8"}, l.Headers[1])
	assert.True(t, l.Has("PLC_TEMP(Real32)"))
	assert.False(t, l.Has("PLC_TEMP"))

	require.Len(t, l.Records, 3)
	v, ok := l.Records[1].Get("TIME")
	require.True(t, ok)
	assert.Equal(t, "0.5", v)
	v, _ = l.Records[1].Get("PLC_TEMP(Real32)")
	assert.Equal(t, "21.75", v)
	v, _ = l.Records[2].Get("PLC_EVR_BS1(Bitset8)")
	assert.Equal(t, "0A", v)
}

func TestRead_RaggedRow(t *testing.T) {
	_, err := Read(strings.NewReader("TIME;A(Boolean)\n0;1\n1\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrMalformedCell)

	var cellErr *model.CellError
	require.ErrorAs(t, err, &cellErr)
	assert.Equal(t, 1, cellErr.Row)
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestRead_DuplicateHeading(t *testing.T) {
	_, err := Read(strings.NewReader("TIME;A(Boolean);A(Boolean)\n0;1;1\n"))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2021_03_15_08_30_00.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	l, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.Path)
	assert.Len(t, l.Records, 3)

	_, err = Open(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
