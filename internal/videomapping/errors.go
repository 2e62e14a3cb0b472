package videomapping

import (
	"errors"
	"fmt"

	"vidmap/internal/fourcc"
	"vidmap/internal/module"
)

// エラー定義
var (
	// ErrParse はマッピング行の書式が不正な場合のエラー
	ErrParse = errors.New("malformed video mapping")

	// ErrInvalidMapping はマッピングの値が不変条件を満たさない場合のエラー
	ErrInvalidMapping = errors.New("invalid video mapping")

	// ErrEmptyConfiguration は有効なマッピングが1つもない場合のエラー
	ErrEmptyConfiguration = errors.New("no video mappings")

	// ErrModuleNotFound はモジュールの実装ファイルが存在しない場合のエラー
	ErrModuleNotFound = module.ErrModuleNotFound

	// ErrUnsupportedFormat はサイズ計算できないピクセルフォーマットのエラー
	ErrUnsupportedFormat = fourcc.ErrUnsupportedFormat

	// ErrFrameTooLarge は1フレームのサイズがuint32に収まらない場合のエラー
	ErrFrameTooLarge = fourcc.ErrFrameTooLarge
)

// ParseError はパースに失敗した行の情報を保持する
type ParseError struct {
	Line int    // 1始まりの行番号 (単独の行をパースした場合は0)
	Text string // 行の内容
	Err  error  // 原因
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %d行目 %q: %v", ErrParse, e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("%s: %q: %v", ErrParse, e.Text, e.Err)
}

// Unwrap により ErrParse と原因の両方で errors.Is が成立する
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
