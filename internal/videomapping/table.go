package videomapping

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"vidmap/internal/fourcc"
)

// Table は読み込み済みのマッピング表
// 読み込み後は変更されないため、ロックなしで複数のゴルーチンから参照できる
type Table struct {
	mappings     []Mapping
	defaultIndex int
	revision     uuid.UUID
	loadedAt     time.Time
}

// Len はマッピングの数を返す
func (t *Table) Len() int {
	return len(t.mappings)
}

// At はi番目のマッピングを返す
func (t *Table) At(i int) (Mapping, bool) {
	if i < 0 || i >= len(t.mappings) {
		return Mapping{}, false
	}
	return t.mappings[i], true
}

// Mappings は全マッピングのコピーを表の順序で返す
func (t *Table) Mappings() []Mapping {
	result := make([]Mapping, len(t.mappings))
	copy(result, t.mappings)
	return result
}

// Default はデフォルトのマッピングを返す
func (t *Table) Default() Mapping {
	return t.mappings[t.defaultIndex]
}

// DefaultIndex はデフォルトのマッピングの位置を返す
func (t *Table) DefaultIndex() int {
	return t.defaultIndex
}

// Match はホストの要求に一致する最初のマッピングとその位置を返す
func (t *Table) Match(code fourcc.Code, width, height uint32, fps float64) (Mapping, int, bool) {
	for i, m := range t.mappings {
		if m.Matches(code, width, height, fps) {
			return m, i, true
		}
	}
	return Mapping{}, -1, false
}

// WithOutput はUSB出力のあるマッピングだけを表の順序で返す
func (t *Table) WithOutput() []Mapping {
	var result []Mapping
	for _, m := range t.mappings {
		if m.HasOutput() {
			result = append(result, m)
		}
	}
	return result
}

// Revision は読み込みごとに割り当てられる識別子を返す
func (t *Table) Revision() uuid.UUID {
	return t.revision
}

// LoadedAt は読み込んだ時刻を返す
func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// Format は表を設定ファイルの形式で返す
// デフォルトのマッピングには * を付ける
func (t *Table) Format() string {
	var b strings.Builder
	for i, m := range t.mappings {
		b.WriteString(m.Format())
		if i == t.defaultIndex {
			b.WriteString(" " + defaultMarker)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
