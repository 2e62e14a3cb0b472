package module

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Kind はモジュールの実装言語を表す
type Kind int

const (
	KindUnknown Kind = iota // 未解決 (ファイル確認を省略した場合)
	KindNative              // 共有ライブラリ (.so)
	KindScript              // スクリプト (.py)
)

// String はKindの文字列表現を返す
func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

// MarshalText はJSON出力用のエンコーダ
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Extension は実装ファイルの拡張子を返す
func (k Kind) Extension() string {
	switch k {
	case KindNative:
		return ".so"
	case KindScript:
		return ".py"
	default:
		return ""
	}
}

// probeOrder は存在確認の優先順位
var probeOrder = []Kind{KindNative, KindScript}

// DefaultRoot はモジュールツリーのデフォルト位置
const DefaultRoot = "/jevois/modules"

var (
	// ErrModuleNotFound は実装ファイルがどちらも存在しない場合のエラー
	ErrModuleNotFound = errors.New("module not found")

	// ErrInvalidName はベンダー名やモジュール名がパスとして使えない場合のエラー
	ErrInvalidName = errors.New("invalid module name")
)

// NotFoundError は解決に失敗したモジュールと確認した候補パスを保持する
type NotFoundError struct {
	Vendor     string
	Module     string
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s/%s (確認したパス: %s)",
		ErrModuleNotFound, e.Vendor, e.Module, strings.Join(e.Candidates, ", "))
}

// Unwrap により errors.Is(err, ErrModuleNotFound) が成立する
func (e *NotFoundError) Unwrap() error {
	return ErrModuleNotFound
}

// RelPath はモジュールツリー内での実装ファイルの相対パスを返す
func RelPath(vendor, name string, kind Kind) string {
	return path.Join(vendor, name, name+kind.Extension())
}

// ArtifactPath は実装ファイルの絶対パスを返す
func ArtifactPath(root, vendor, name string, kind Kind) string {
	return filepath.Join(root, filepath.FromSlash(RelPath(vendor, name, kind)))
}

// FSResolver はファイルシステム上でモジュールの種類を判定する
type FSResolver struct {
	root string
	fsys fs.FS
}

// NewResolver はディレクトリrootをモジュールツリーとするResolverを作成する
func NewResolver(root string) *FSResolver {
	return NewFSResolver(root, os.DirFS(root))
}

// NewFSResolver は任意のfs.FSをモジュールツリーとするResolverを作成する
// rootはエラーメッセージとパス表示にのみ使われる
func NewFSResolver(root string, fsys fs.FS) *FSResolver {
	return &FSResolver{root: root, fsys: fsys}
}

// Root はモジュールツリーの位置を返す
func (r *FSResolver) Root() string {
	return r.root
}

// Resolve はベンダーとモジュール名から実装の種類を判定する
func (r *FSResolver) Resolve(vendor, name string) (Kind, error) {
	if err := validateName(vendor); err != nil {
		return KindUnknown, err
	}
	if err := validateName(name); err != nil {
		return KindUnknown, err
	}

	candidates := make([]string, 0, len(probeOrder))
	for _, kind := range probeOrder {
		rel := RelPath(vendor, name, kind)
		candidates = append(candidates, ArtifactPath(r.root, vendor, name, kind))

		info, err := fs.Stat(r.fsys, rel)
		if err == nil {
			if info.Mode().IsRegular() {
				return kind, nil
			}
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return KindUnknown, fmt.Errorf("モジュールファイルの確認に失敗 %s: %w", rel, err)
		}
	}

	return KindUnknown, &NotFoundError{Vendor: vendor, Module: name, Candidates: candidates}
}

// validateName は名前が1階層のパス要素として使えるかを確認する
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
