// timonator
// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: 2025 timonator contributors

package layout

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"timonator/internal/bitset"
)

// キャッシュファイルの形
// orderingは省略させない (ゼロ値のLSBFirstを黙って使わない)
type cacheFile struct {
	Ordering *bitset.Ordering `yaml:"ordering"`
	Words    map[string]Word  `yaml:"words"`
}

// キャッシュファイルを読む
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc cacheFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc.Ordering == nil {
		return nil, fmt.Errorf("%s: %w: ordering is not declared", path, ErrInvalidLayout)
	}
	t := Table{Ordering: *doc.Ordering, Words: doc.Words}
	if t.Words == nil {
		t.Words = map[string]Word{}
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("layout loaded", "path", path, "words", len(t.Words), "ordering", t.Ordering)
	return &t, nil
}

// キャッシュファイルに書く (丸ごと置き換える)
func (t *Table) Save(path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
