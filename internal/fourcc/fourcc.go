package fourcc

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Code はピクセルフォーマットのFourCCコード
type Code uint32

// None は出力なしを表すセンチネル値
const None Code = 0

// NoneToken はNoneのテキスト表現
const NoneToken = "NONE"

// 代表的なV4L2ピクセルフォーマット
var (
	YUYV = New('Y', 'U', 'Y', 'V')
	UYVY = New('U', 'Y', 'V', 'Y')
	YVYU = New('Y', 'V', 'Y', 'U')
	GREY = New('G', 'R', 'E', 'Y')
	RGBP = New('R', 'G', 'B', 'P') // RGB565
	BGR3 = New('B', 'G', 'R', '3')
	RGB3 = New('R', 'G', 'B', '3')
	AR24 = New('A', 'R', '2', '4')
	XR24 = New('X', 'R', '2', '4')
	BA81 = New('B', 'A', '8', '1') // SBGGR8
	GBRG = New('G', 'B', 'R', 'G') // SGBRG8
	GRBG = New('G', 'R', 'B', 'G') // SGRBG8
	RGGB = New('R', 'G', 'G', 'B') // SRGGB8
	YU12 = New('Y', 'U', '1', '2') // YUV420 planar
	YV12 = New('Y', 'V', '1', '2')
	NV12 = New('N', 'V', '1', '2')
	NV21 = New('N', 'V', '2', '1')
	NV16 = New('N', 'V', '1', '6')
	MJPG = New('M', 'J', 'P', 'G')
	JPEG = New('J', 'P', 'E', 'G')
)

// エラー定義
var (
	// ErrInvalidCode はFourCCトークンが不正な場合のエラー
	ErrInvalidCode = errors.New("invalid fourcc code")

	// ErrUnsupportedFormat はサイズを計算できないフォーマットのエラー
	ErrUnsupportedFormat = errors.New("unsupported pixel format")

	// ErrFrameTooLarge は1フレームのサイズがuint32に収まらない場合のエラー
	ErrFrameTooLarge = errors.New("frame size overflows uint32")
)

// halfBytesPerPixel は1ピクセルあたりのバイト数を0.5バイト単位で保持する
// 4:2:0 のプレーナ形式は色差が間引かれるため1.5バイト (=3)
var halfBytesPerPixel = map[Code]uint32{
	YUYV: 4,
	UYVY: 4,
	YVYU: 4,
	RGBP: 4,
	NV16: 4,
	GREY: 2,
	BA81: 2,
	GBRG: 2,
	GRBG: 2,
	RGGB: 2,
	BGR3: 6,
	RGB3: 6,
	AR24: 8,
	XR24: 8,
	YU12: 3,
	YV12: 3,
	NV12: 3,
	NV21: 3,
	// 圧縮フォーマットは無圧縮のYUYV相当を上限とする
	MJPG: 4,
	JPEG: 4,
}

// New は4文字からコードを作成する
func New(a, b, c, d byte) Code {
	return Code(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// Parse はトークンをコードに変換する
func Parse(token string) (Code, error) {
	if token == NoneToken {
		return None, nil
	}

	if len(token) != 4 {
		return None, fmt.Errorf("%w: %q", ErrInvalidCode, token)
	}
	for i := 0; i < 4; i++ {
		if token[i] < 0x20 || token[i] > 0x7e {
			return None, fmt.Errorf("%w: %q", ErrInvalidCode, token)
		}
	}

	return New(token[0], token[1], token[2], token[3]), nil
}

// String はコードを4文字で返す
func (c Code) String() string {
	if c == None {
		return NoneToken
	}
	return string([]byte{
		byte(c & 0xFF),
		byte((c >> 8) & 0xFF),
		byte((c >> 16) & 0xFF),
		byte((c >> 24) & 0xFF),
	})
}

// MarshalText はJSON等でトークン表現を使うためのエンコーダ
func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText はトークン表現からコードを復元する
func (c *Code) UnmarshalText(text []byte) error {
	code, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// BytesPerPixel は1ピクセルあたりのバイト数を返す
func BytesPerPixel(c Code) (float64, error) {
	half, ok := halfBytesPerPixel[c]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, c)
	}
	return float64(half) / 2, nil
}

// FrameSize は1フレームの生データに必要なバイト数を返す
// Noneは出力がないため0を返す
// uint32に収まらないサイズは ErrFrameTooLarge
func FrameSize(c Code, width, height uint32) (uint32, error) {
	if c == None {
		return 0, nil
	}

	half, ok := halfBytesPerPixel[c]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, c)
	}

	// 1画素は1バイト以上なので、画素数が上限を超えればサイズも超える
	pixels := uint64(width) * uint64(height)
	size := pixels * uint64(half) / 2
	if pixels > math.MaxUint32 || size > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %s %dx%d = %d", ErrFrameTooLarge, c, width, height, size)
	}
	return uint32(size), nil
}

// Known はサイズ計算に対応したコードを文字列順で返す
func Known() []Code {
	codes := make([]Code, 0, len(halfBytesPerPixel))
	for c := range halfBytesPerPixel {
		codes = append(codes, c)
	}

	sort.Slice(codes, func(i, j int) bool {
		return codes[i].String() < codes[j].String()
	})

	return codes
}
