package module

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// Info はインストール済みモジュールの情報を表す
type Info struct {
	Vendor string `json:"vendor"` // ベンダー名
	Name   string `json:"name"`   // モジュール名
	Kind   Kind   `json:"kind"`   // 実装の種類
	Path   string `json:"path"`   // 実装ファイルのパス
}

// Discovery はモジュールツリーの検出機能を提供する
type Discovery interface {
	// ScanModules はモジュールツリー内の利用可能なモジュールをスキャンする
	ScanModules(ctx context.Context) ([]Info, error)

	// IsModuleAvailable は指定されたモジュールが利用可能かチェックする
	IsModuleAvailable(ctx context.Context, vendor, name string) bool
}

// FSDiscovery はファイルシステム上のモジュール検出を実装する
type FSDiscovery struct {
	resolver *FSResolver
}

// NewDiscovery はディレクトリrootを対象とするDiscoveryを作成する
func NewDiscovery(root string) Discovery {
	return &FSDiscovery{resolver: NewResolver(root)}
}

// NewFSDiscovery は既存のResolverと同じツリーを対象とするDiscoveryを作成する
func NewFSDiscovery(resolver *FSResolver) *FSDiscovery {
	return &FSDiscovery{resolver: resolver}
}

// ScanModules はモジュールツリー内の利用可能なモジュールをスキャンする
func (d *FSDiscovery) ScanModules(ctx context.Context) ([]Info, error) {
	// <Vendor>/<Module> パターンでディレクトリを検索
	matches, err := fs.Glob(d.resolver.fsys, "*/*")
	if err != nil {
		return nil, fmt.Errorf("モジュールツリーのスキャンに失敗: %w", err)
	}

	var modules []Info
	for _, match := range matches {
		// コンテキストのキャンセルをチェック
		select {
		case <-ctx.Done():
			return modules, ctx.Err()
		default:
		}

		info, err := fs.Stat(d.resolver.fsys, match)
		if err != nil || !info.IsDir() {
			continue
		}

		vendor, name := path.Split(match)
		vendor = path.Clean(vendor)

		kind, err := d.resolver.Resolve(vendor, name)
		if err != nil {
			// 実装ファイルのないディレクトリは除外
			if errors.Is(err, ErrModuleNotFound) || errors.Is(err, ErrInvalidName) {
				continue
			}
			return modules, err
		}

		modules = append(modules, Info{
			Vendor: vendor,
			Name:   name,
			Kind:   kind,
			Path:   ArtifactPath(d.resolver.root, vendor, name, kind),
		})
	}

	sortInfos(modules)
	return modules, nil
}

// IsModuleAvailable は指定されたモジュールが利用可能かチェックする
func (d *FSDiscovery) IsModuleAvailable(_ context.Context, vendor, name string) bool {
	_, err := d.resolver.Resolve(vendor, name)
	return err == nil
}

// sortInfos はベンダー名、モジュール名の順に並べる
func sortInfos(modules []Info) {
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Vendor != modules[j].Vendor {
			return modules[i].Vendor < modules[j].Vendor
		}
		return modules[i].Name < modules[j].Name
	})
}

// MockDiscovery はテスト用のモックDiscovery実装
type MockDiscovery struct {
	modules []Info
}

// NewMockDiscovery は新しいMockDiscoveryを作成する
func NewMockDiscovery(modules []Info) *MockDiscovery {
	list := make([]Info, len(modules))
	copy(list, modules)
	return &MockDiscovery{modules: list}
}

// ScanModules はモックモジュール一覧を返す
func (m *MockDiscovery) ScanModules(_ context.Context) ([]Info, error) {
	result := make([]Info, len(m.modules))
	copy(result, m.modules)
	sortInfos(result)
	return result, nil
}

// IsModuleAvailable はモックモジュールが登録済みかチェックする
func (m *MockDiscovery) IsModuleAvailable(_ context.Context, vendor, name string) bool {
	for _, info := range m.modules {
		if info.Vendor == vendor && info.Name == name {
			return true
		}
	}
	return false
}

// Resolve はモックをResolverとして使うための実装
func (m *MockDiscovery) Resolve(vendor, name string) (Kind, error) {
	for _, info := range m.modules {
		if info.Vendor == vendor && info.Name == name {
			return info.Kind, nil
		}
	}
	return KindUnknown, &NotFoundError{Vendor: vendor, Module: name}
}

// AddModule はテスト用にモジュールを追加する
func (m *MockDiscovery) AddModule(info Info) {
	// 重複チェック
	if m.IsModuleAvailable(context.Background(), info.Vendor, info.Name) {
		return
	}
	m.modules = append(m.modules, info)
}

// RemoveModule はテスト用にモジュールを削除する
func (m *MockDiscovery) RemoveModule(vendor, name string) {
	for i, info := range m.modules {
		if info.Vendor == vendor && info.Name == name {
			m.modules = append(m.modules[:i], m.modules[i+1:]...)
			return
		}
	}
}

