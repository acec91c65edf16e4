// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package model

import (
	"errors"
	"fmt"
)

var (
	ErrMissingColumn      = errors.New("必要な列がない")
	ErrMalformedFilename  = errors.New("ファイル名から開始時刻を得られない")
	ErrUnresolvableLayout = errors.New("ビットセット定義がない")
	ErrMalformedCell      = errors.New("セルの値を解釈できない")
	ErrColumnCollision    = errors.New("サブ信号名が既存の列と衝突する")
)

// 列単位のエラー
type ColumnError struct {
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Column)
}

func (e *ColumnError) Unwrap() error { return e.Err }

// セル単位のエラー (Rowはデータ行の0始まり番号)
type CellError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	msg := fmt.Sprintf("%s: column %q row %d value %q", ErrMalformedCell, e.Column, e.Row, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CellError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedCell}
	}
	return []error{ErrMalformedCell, e.Err}
}
