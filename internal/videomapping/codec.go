package videomapping

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"vidmap/internal/fourcc"
)

// フィールド数
const (
	specFields    = 10
	defaultMarker = "*"
)

// ParseSpec は1行のマッピング定義をパースする
// 行は OUTFMT OUTW OUTH OUTFPS CAMFMT CAMW CAMH CAMFPS VENDOR MODULE [*] の形式
func ParseSpec(line string) (Spec, error) {
	fields := strings.Fields(line)

	var spec Spec
	switch {
	case len(fields) == specFields:
	case len(fields) == specFields+1 && fields[specFields] == defaultMarker:
		spec.Default = true
	default:
		return Spec{}, &ParseError{
			Text: line,
			Err:  fmt.Errorf("フィールド数が不正: %d (%d個が必要)", len(fields), specFields),
		}
	}

	var err error
	if spec.Output, err = parseFormat(fields[0:4]); err != nil {
		return Spec{}, &ParseError{Text: line, Err: fmt.Errorf("出力フォーマット: %w", err)}
	}
	if spec.Camera, err = parseFormat(fields[4:8]); err != nil {
		return Spec{}, &ParseError{Text: line, Err: fmt.Errorf("カメラフォーマット: %w", err)}
	}
	spec.Vendor = fields[8]
	spec.Module = fields[9]

	return spec, nil
}

// Parse は1行をパースし、モジュールの解決まで行ったMappingを返す
func Parse(line string, r Resolver) (Mapping, error) {
	m, _, err := parseLine(line, r)
	return m, err
}

// parseLine はParseと同じ処理を行い、デフォルト指定の有無も返す
func parseLine(line string, r Resolver) (Mapping, bool, error) {
	spec, err := ParseSpec(line)
	if err != nil {
		return Mapping{}, false, err
	}

	m, err := New(spec, r)
	if err != nil {
		if errors.Is(err, ErrInvalidMapping) {
			return Mapping{}, false, &ParseError{Text: line, Err: err}
		}
		return Mapping{}, false, err
	}

	return m, spec.Default, nil
}

// parseFormat は FMT W H FPS の4フィールドをパースする
func parseFormat(fields []string) (Format, error) {
	code, err := fourcc.Parse(fields[0])
	if err != nil {
		return Format{}, err
	}

	width, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return Format{}, fmt.Errorf("幅が不正 %q: %w", fields[1], err)
	}

	height, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return Format{}, fmt.Errorf("高さが不正 %q: %w", fields[2], err)
	}

	fps, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Format{}, fmt.Errorf("fpsが不正 %q: %w", fields[3], err)
	}
	if math.IsNaN(fps) || math.IsInf(fps, 0) {
		return Format{}, fmt.Errorf("fpsが不正 %q", fields[3])
	}

	return Format{Code: code, Width: uint32(width), Height: uint32(height), FPS: fps}, nil
}

// Format はSpecを設定ファイルの1行の形式で返す
// 末尾に改行は付けず、デフォルト指定も出力しない
func (s Spec) Format() string {
	return strings.Join([]string{
		formatSide(s.Output),
		formatSide(s.Camera),
		s.Vendor,
		s.Module,
	}, " ")
}

// Format はMappingを設定ファイルの1行の形式で返す
func (m Mapping) Format() string {
	return m.Spec().Format()
}

func formatSide(f Format) string {
	return fmt.Sprintf("%s %d %d %s", f.Code, f.Width, f.Height, formatFPS(f.FPS))
}
