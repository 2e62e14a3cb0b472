package fourcc

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LittleEndian(t *testing.T) {
	// V4L2_PIX_FMT_YUYV と同じ値になること
	assert.Equal(t, Code('Y'|'U'<<8|'Y'<<16|'V'<<24), YUYV)
	assert.Equal(t, Code(0x47504a4d), MJPG)
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		token     string
		want      Code
		expectErr bool
	}{
		{"YUYV", "YUYV", YUYV, false},
		{"MJPG", "MJPG", MJPG, false},
		{"出力なし", "NONE", None, false},
		{"未登録でも4文字なら有効", "ABCD", New('A', 'B', 'C', 'D'), false},
		{"短すぎる", "YUY", None, true},
		{"長すぎる", "YUYV2", None, true},
		{"空文字", "", None, true},
		{"制御文字", "YU\tV", None, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.token)
			if tc.expectErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "YUYV", YUYV.String())
	assert.Equal(t, "NONE", None.String())
	assert.Equal(t, "BGR3", BGR3.String())
}

func TestTextRoundTrip(t *testing.T) {
	text, err := GREY.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "GREY", string(text))

	var c Code
	require.NoError(t, c.UnmarshalText([]byte("NV12")))
	assert.Equal(t, NV12, c)
	assert.Error(t, c.UnmarshalText([]byte("bad")))
}

func TestFrameSize(t *testing.T) {
	testCases := []struct {
		name   string
		code   Code
		width  uint32
		height uint32
		want   uint32
	}{
		{"YUYVは2バイト/画素", YUYV, 640, 480, 640 * 480 * 2},
		{"GREYは1バイト/画素", GREY, 320, 240, 320 * 240},
		{"BGR3は3バイト/画素", BGR3, 320, 240, 320 * 240 * 3},
		{"NV12は1.5バイト/画素", NV12, 640, 480, 640 * 480 * 3 / 2},
		{"MJPGは上限値", MJPG, 1280, 720, 1280 * 720 * 2},
		{"Bayer", BA81, 1920, 1080, 1920 * 1080},
		{"出力なし", None, 0, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FrameSize(tc.code, tc.width, tc.height)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFrameSize_Unsupported(t *testing.T) {
	_, err := FrameSize(New('Z', 'Z', 'Z', 'Z'), 640, 480)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "ZZZZ")
}

func TestFrameSize_TooLarge(t *testing.T) {
	// 40000x40000x4 = 6400000000
	_, err := FrameSize(AR24, 40000, 40000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Contains(t, err.Error(), "6400000000")

	// 最大の幅と高さでも乗算があふれずにエラーになる
	_, err = FrameSize(AR24, math.MaxUint32, math.MaxUint32)
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	// 65535x65535x1 はuint32に収まる
	got, err := FrameSize(GREY, 65535, 65535)
	require.NoError(t, err)
	assert.Equal(t, uint32(65535*65535), got)
}

func TestBytesPerPixel(t *testing.T) {
	bpp, err := BytesPerPixel(YU12)
	require.NoError(t, err)
	assert.Equal(t, 1.5, bpp)

	_, err = BytesPerPixel(None)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestKnown_Sorted(t *testing.T) {
	codes := Known()
	require.NotEmpty(t, codes)
	for i := 1; i < len(codes); i++ {
		assert.Less(t, codes[i-1].String(), codes[i].String())
	}
	assert.Contains(t, codes, YUYV)
	assert.NotContains(t, codes, None)
}
