// Package logging はlog/slogを使った構造化ログの設定を提供する
//
// コンポーネント名を属性として付与し、ログレベルはプロセス全体で共有する。
// 出力形式はauto/text/jsonから選択でき、autoの場合は出力先が端末かどうかで
// テキストとJSONを切り替える。
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Component はログの出力元サブシステムを表す
type Component string

// コンポーネント識別子
const (
	ComponentLoader   Component = "loader"
	ComponentResolver Component = "resolver"
	ComponentServer   Component = "server"
	ComponentConfig   Component = "config"
)

// Format はログの出力形式
type Format string

// 出力形式
const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	level = new(slog.LevelVar)

	mu            sync.RWMutex
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
)

// Setup はデフォルトロガーをレベル名と出力形式から構成する
func Setup(levelName string, format Format) error {
	lv, err := ParseLevel(levelName)
	if err != nil {
		return err
	}

	logger, err := New(os.Stderr, format)
	if err != nil {
		return err
	}

	level.Set(lv)
	SetDefault(logger)
	return nil
}

// New は共有ログレベルを使うロガーを作成する
func New(w io.Writer, format Format) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case FormatAuto, "":
		if isTerminal(w) {
			return slog.New(slog.NewTextHandler(w, opts)), nil
		}
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("不明なログ形式: %s", format)
	}
}

// ParseLevel はレベル名 (debug, info, warn, error) をslog.Levelに変換する
func ParseLevel(name string) (slog.Level, error) {
	var lv slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := lv.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("不明なログレベル: %s", name)
	}
	return lv, nil
}

// SetDefault はデフォルトロガーを置き換える
func SetDefault(logger *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// Default は現在のデフォルトロガーを返す
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// For はコンポーネント属性付きのロガーを返す
func For(component Component) *slog.Logger {
	return Default().With("component", string(component))
}

// Discard は何も出力しないロガーを返す
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
