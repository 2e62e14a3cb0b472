package videomapping

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidmap/internal/fourcc"
	"vidmap/internal/logging"
	"vidmap/internal/module"
)

// LoadOption は読み込み時のオプション
type LoadOption func(*loadOptions)

type loadOptions struct {
	resolver Resolver
	logger   *slog.Logger
	now      func() time.Time
}

// WithResolver はモジュール解決に使うResolverを指定する
// 指定しない場合 (またはnil) はファイルの存在確認を行わない
func WithResolver(r Resolver) LoadOption {
	return func(o *loadOptions) {
		o.resolver = r
	}
}

// WithModuleRoot はディレクトリrootのモジュールツリーで存在確認を行う
func WithModuleRoot(root string) LoadOption {
	return WithResolver(module.NewResolver(root))
}

// WithLogger は読み込み結果の出力先ロガーを指定する
func WithLogger(logger *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = logger
	}
}

// entry は並べ替え中のマッピングと元の順序
type entry struct {
	mapping Mapping
	seq     int
}

// LoadFile はファイルからマッピング表を読み込む
func LoadFile(path string, opts ...LoadOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("マッピングファイルを開けません %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	table, err := Load(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Load はストリームからマッピング表を読み込む
//
// 空行と # で始まる行は無視する。1行でも不正な行があれば全体が失敗し、
// 部分的な表は返さない。デフォルトは * 指定のうち最初のもの、指定がなければ
// 最初の行となる。
func Load(r io.Reader, opts ...LoadOption) (*Table, error) {
	o := loadOptions{
		logger: logging.For(logging.ComponentLoader),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	entries, defaultSeq, err := readEntries(r, o.resolver)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmptyConfiguration
	}

	sortEntries(entries)
	disambiguate(entries, o.logger)
	assignUVC(entries)

	mappings := make([]Mapping, len(entries))
	defaultIndex := 0
	for i, e := range entries {
		mappings[i] = e.mapping
		if e.seq == defaultSeq {
			defaultIndex = i
		}
	}

	table := &Table{
		mappings:     mappings,
		defaultIndex: defaultIndex,
		revision:     uuid.New(),
		loadedAt:     o.now(),
	}

	o.logger.Info("ビデオマッピングを読み込みました",
		"count", len(mappings),
		"default", mappings[defaultIndex].String(),
		"module_check", o.resolver != nil,
		"revision", table.revision.String())

	return table, nil
}

// readEntries は全行をパースし、デフォルトの元の順序を返す
func readEntries(r io.Reader, resolver Resolver) ([]entry, int, error) {
	var entries []entry
	defaultSeq := -1

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()

		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		m, isDefault, err := parseLine(text, resolver)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = lineNo
				return nil, 0, pe
			}
			return nil, 0, fmt.Errorf("%d行目 %q: %w", lineNo, text, err)
		}

		if isDefault && defaultSeq < 0 {
			defaultSeq = len(entries)
		}
		entries = append(entries, entry{mapping: m, seq: len(entries)})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("マッピングの読み込みに失敗: %w", err)
	}

	if defaultSeq < 0 {
		defaultSeq = 0
	}
	return entries, defaultSeq, nil
}

// sortEntries は出力フォーマット昇順、幅降順、高さ降順、fps降順に安定ソートする
func sortEntries(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].mapping.output, entries[j].mapping.output
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		if a.Width != b.Width {
			return a.Width > b.Width
		}
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		return a.FPS > b.FPS
	})
}

// disambiguate は同一出力が続く場合にfpsを1.0ずつ下げる
// ホストは同一の (フォーマット、解像度、fps) を区別して選択できないため。
// 出力なしのマッピングはホストに公開されないので対象外。
func disambiguate(entries []entry, logger *slog.Logger) {
	runStart := 0
	for i := 1; i < len(entries); i++ {
		key := entries[runStart].mapping.output
		cur := entries[i].mapping

		if key.Code == fourcc.None || !cur.output.Equal(key) {
			runStart = i
			continue
		}

		prevFPS := entries[i-1].mapping.output.FPS
		adjusted := cur.withOutputFPS(prevFPS - 1.0)
		entries[i].mapping = adjusted

		if adjusted.output.FPS <= 0 {
			logger.Warn("重複解消によりfpsが0以下になりました",
				"mapping", adjusted.String())
		}
		// 後続の別のマッピングと同じ出力になった場合、Matchは先の方しか返さない
		if i+1 < len(entries) && !entries[i+1].mapping.output.Equal(key) &&
			entries[i+1].mapping.output.Equal(adjusted.output) {
			next := entries[i+1].mapping
			logger.Warn("重複解消後のfpsが後続のマッピングと重なりました",
				"output", adjusted.OutputString(),
				"module", adjusted.vendor+"/"+adjusted.module,
				"shadowed", next.vendor+"/"+next.module)
		}
		logger.Debug("重複した出力のfpsを調整しました",
			"from", cur.OutputString(),
			"to", adjusted.OutputString(),
			"module", cur.vendor+"/"+cur.module)
	}
}

// assignUVC はUSB出力のあるマッピングにUVCのフォーマット番号とフレーム番号を割り当てる
// フォーマットが変わるごとにフォーマット番号を、解像度が変わるごとにフレーム番号を進める
func assignUVC(entries []entry) {
	var (
		formatIdx, frameIdx uint32
		lastCode            fourcc.Code
		lastW, lastH        uint32
	)

	for i := range entries {
		out := entries[i].mapping.output
		if out.Code == fourcc.None {
			continue
		}

		if formatIdx == 0 || out.Code != lastCode {
			formatIdx++
			frameIdx = 0
			lastCode = out.Code
			lastW, lastH = 0, 0
		}
		if out.Width != lastW || out.Height != lastH {
			frameIdx++
			lastW, lastH = out.Width, out.Height
		}

		entries[i].mapping = entries[i].mapping.withUVC(formatIdx, frameIdx)
	}
}
