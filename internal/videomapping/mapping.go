package videomapping

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"vidmap/internal/fourcc"
	"vidmap/internal/framerate"
	"vidmap/internal/module"
)

// Format は片側 (USB出力またはカメラ) の映像フォーマットを表す
type Format struct {
	Code   fourcc.Code `json:"format"` // ピクセルフォーマット
	Width  uint32      `json:"width"`  // 画像幅
	Height uint32      `json:"height"` // 画像高さ
	FPS    float64     `json:"fps"`    // フレームレート
}

// String は "FCC WxH @ fps" 形式の文字列を返す
func (f Format) String() string {
	if f.Code == fourcc.None {
		return fourcc.NoneToken
	}
	return fmt.Sprintf("%s %dx%d @ %sfps", f.Code, f.Width, f.Height, formatFPS(f.FPS))
}

// Size は1フレームの生データサイズを返す
func (f Format) Size() (uint32, error) {
	return fourcc.FrameSize(f.Code, f.Width, f.Height)
}

// Equal はフォーマットと解像度が一致し、fpsが許容誤差内かを返す
func (f Format) Equal(other Format) bool {
	return f.Code == other.Code &&
		f.Width == other.Width &&
		f.Height == other.Height &&
		framerate.Equal(f.FPS, other.FPS)
}

// validate は片側の不変条件を確認する
func (f Format) validate(side string, allowNone bool) error {
	if math.IsNaN(f.FPS) || math.IsInf(f.FPS, 0) || f.FPS < 0 {
		return fmt.Errorf("%w: %sのfpsが不正: %v", ErrInvalidMapping, side, f.FPS)
	}

	if f.Code == fourcc.None {
		if !allowNone {
			return fmt.Errorf("%w: %sのフォーマットにNONEは指定できません", ErrInvalidMapping, side)
		}
		if f.Width != 0 || f.Height != 0 {
			return fmt.Errorf("%w: 出力なしの解像度は0x0である必要があります: %dx%d",
				ErrInvalidMapping, f.Width, f.Height)
		}
		return nil
	}

	if f.Width == 0 || f.Height == 0 {
		return fmt.Errorf("%w: %sの解像度が不正: %dx%d", ErrInvalidMapping, side, f.Width, f.Height)
	}
	return nil
}

// Spec はモジュール解決前のマッピング定義
type Spec struct {
	Output  Format // USB出力フォーマット (出力なしはfourcc.None)
	Camera  Format // カメラのキャプチャフォーマット
	Vendor  string // モジュールのベンダー名
	Module  string // モジュール名
	Default bool   // 設定ファイルでデフォルト指定されているか
}

// Resolver はモジュールの実装の種類を判定する
type Resolver interface {
	Resolve(vendor, name string) (module.Kind, error)
}

// Mapping は検証とモジュール解決が済んだマッピング
// 値は構築後に変更されない
type Mapping struct {
	output Format
	camera Format
	vendor string
	module string
	kind   module.Kind

	uvcFormat uint32
	uvcFrame  uint32
}

// New はSpecを検証し、モジュールの種類を解決したMappingを作成する
// rがnilの場合はファイルの確認を行わず、種類は module.KindUnknown になる
func New(spec Spec, r Resolver) (Mapping, error) {
	if err := spec.Output.validate("出力", true); err != nil {
		return Mapping{}, err
	}
	if err := spec.Camera.validate("カメラ", false); err != nil {
		return Mapping{}, err
	}
	if spec.Vendor == "" || spec.Module == "" {
		return Mapping{}, fmt.Errorf("%w: ベンダー名とモジュール名は必須です", ErrInvalidMapping)
	}

	kind := module.KindUnknown
	if r != nil {
		k, err := r.Resolve(spec.Vendor, spec.Module)
		if err != nil {
			return Mapping{}, fmt.Errorf("モジュール %s/%s の解決に失敗: %w", spec.Vendor, spec.Module, err)
		}
		kind = k
	}

	return Mapping{
		output: spec.Output,
		camera: spec.Camera,
		vendor: spec.Vendor,
		module: spec.Module,
		kind:   kind,
	}, nil
}

// Output はUSB出力フォーマットを返す
func (m Mapping) Output() Format { return m.output }

// Camera はカメラフォーマットを返す
func (m Mapping) Camera() Format { return m.camera }

// Vendor はベンダー名を返す
func (m Mapping) Vendor() string { return m.vendor }

// Module はモジュール名を返す
func (m Mapping) Module() string { return m.module }

// Kind はモジュールの実装の種類を返す
func (m Mapping) Kind() module.Kind { return m.kind }

// IsScript はモジュールがスクリプトで実装されているかを返す
func (m Mapping) IsScript() bool { return m.kind == module.KindScript }

// UVCFormat はUVCのフォーマット番号 (1始まり) を返す
// 出力なし、または表に載っていないマッピングでは0
func (m Mapping) UVCFormat() uint32 { return m.uvcFormat }

// UVCFrame はUVCのフレーム番号 (1始まり) を返す
func (m Mapping) UVCFrame() uint32 { return m.uvcFrame }

// HasOutput はUSB出力があるかを返す
func (m Mapping) HasOutput() bool { return m.output.Code != fourcc.None }

// Spec はマッピングの定義を返す
func (m Mapping) Spec() Spec {
	return Spec{Output: m.output, Camera: m.camera, Vendor: m.vendor, Module: m.module}
}

// Matches は出力がホストの要求と一致するかを返す
func (m Mapping) Matches(code fourcc.Code, width, height uint32, fps float64) bool {
	return m.output.Equal(Format{Code: code, Width: width, Height: height, FPS: fps})
}

// SameSpecAs はベンダー名とモジュール名を除く全フィールドが一致するかを返す
func (m Mapping) SameSpecAs(other Mapping) bool {
	return m.output.Equal(other.output) && m.camera.Equal(other.camera)
}

// SameAs はSameSpecAsに加えてベンダー名とモジュール名も一致するかを返す
func (m Mapping) SameAs(other Mapping) bool {
	return m.SameSpecAs(other) && m.vendor == other.vendor && m.module == other.module
}

// OutputSize は出力画像1枚のバイト数を返す
func (m Mapping) OutputSize() (uint32, error) { return m.output.Size() }

// CameraSize はカメラ画像1枚のバイト数を返す
func (m Mapping) CameraSize() (uint32, error) { return m.camera.Size() }

// UVCInterval は出力fpsをUVCの間隔 (100ns単位) で返す
func (m Mapping) UVCInterval() uint32 { return framerate.FPSToUVC(m.output.FPS) }

// CameraInterval はカメラfpsをV4L2の分数間隔で返す
func (m Mapping) CameraInterval() framerate.Fract { return framerate.FPSToV4L2(m.camera.FPS) }

// Path はモジュール実装ファイルのパスを返す
// 種類が未解決の場合は空文字を返す
func (m Mapping) Path(root string) string {
	if m.kind == module.KindUnknown {
		return ""
	}
	return module.ArtifactPath(root, m.vendor, m.module, m.kind)
}

// OutputString は出力フォーマットを人が読める形式で返す
func (m Mapping) OutputString() string { return m.output.String() }

// CameraString はカメラフォーマットを人が読める形式で返す
func (m Mapping) CameraString() string { return m.camera.String() }

// String はマッピング全体を人が読める形式で返す
func (m Mapping) String() string {
	return fmt.Sprintf("OUT: %s CAM: %s MOD: %s:%s (%s)",
		m.output, m.camera, m.vendor, m.module, m.kind)
}

// withOutputFPS は出力fpsだけを変えたコピーを返す
func (m Mapping) withOutputFPS(fps float64) Mapping {
	m.output.FPS = fps
	return m
}

// withUVC はUVC番号を設定したコピーを返す
func (m Mapping) withUVC(format, frame uint32) Mapping {
	m.uvcFormat = format
	m.uvcFrame = frame
	return m
}

// mappingJSON はAPI応答用の表現
type mappingJSON struct {
	Output     Format      `json:"output"`
	Camera     Format      `json:"camera"`
	Vendor     string      `json:"vendor"`
	Module     string      `json:"module"`
	Kind       module.Kind `json:"kind"`
	UVCFormat  uint32      `json:"uvc_format,omitempty"`
	UVCFrame   uint32      `json:"uvc_frame,omitempty"`
	OutputSize *uint32     `json:"output_size,omitempty"`
	CameraSize *uint32     `json:"camera_size,omitempty"`
	Summary    string      `json:"summary"`
}

// MarshalJSON はマッピングをJSONに変換する
// サイズを計算できないフォーマットではサイズを省略する
func (m Mapping) MarshalJSON() ([]byte, error) {
	v := mappingJSON{
		Output:    m.output,
		Camera:    m.camera,
		Vendor:    m.vendor,
		Module:    m.module,
		Kind:      m.kind,
		UVCFormat: m.uvcFormat,
		UVCFrame:  m.uvcFrame,
		Summary:   m.String(),
	}
	if m.HasOutput() {
		if size, err := m.OutputSize(); err == nil {
			v.OutputSize = &size
		}
	}
	if size, err := m.CameraSize(); err == nil {
		v.CameraSize = &size
	}
	return json.Marshal(v)
}

// formatFPS はfpsを読み戻して同じ値になる最短の10進表記で返す
// 整数値は "60.0" のように小数点以下1桁を付ける
func formatFPS(fps float64) string {
	if fps == math.Trunc(fps) {
		return strconv.FormatFloat(fps, 'f', 1, 64)
	}
	return strconv.FormatFloat(fps, 'f', -1, 64)
}
