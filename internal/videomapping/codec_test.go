package videomapping

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidmap/internal/fourcc"
)

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec("YUYV 320 240 60.0 BA81 640 480 29.97 JeVoisVendor SaveVideo")
	require.NoError(t, err)

	assert.Equal(t, Format{Code: fourcc.YUYV, Width: 320, Height: 240, FPS: 60}, spec.Output)
	assert.Equal(t, Format{Code: fourcc.BA81, Width: 640, Height: 480, FPS: 29.97}, spec.Camera)
	assert.Equal(t, "JeVoisVendor", spec.Vendor)
	assert.Equal(t, "SaveVideo", spec.Module)
	assert.False(t, spec.Default)
}

func TestParseSpec_DefaultMarker(t *testing.T) {
	spec, err := ParseSpec("MJPG 640 480 30.0 YUYV 640 480 30.0 VendorX ModA *")
	require.NoError(t, err)
	assert.True(t, spec.Default)
}

func TestParseSpec_Tabs(t *testing.T) {
	spec, err := ParseSpec("  NONE\t0 0 0.0\tYUYV 320 240 60.0 V G  ")
	require.NoError(t, err)
	assert.Equal(t, fourcc.None, spec.Output.Code)
}

func TestParseSpec_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		line  string
		cause error
	}{
		{"フィールド不足", "YUYV 320 240 60.0 YUYV 320 240 60.0 VendorX", nil},
		{"フィールド過多", "YUYV 320 240 60.0 YUYV 320 240 60.0 VendorX ModA extra", nil},
		{"不正なFourCC", "YUY 320 240 60.0 YUYV 320 240 60.0 VendorX ModA", fourcc.ErrInvalidCode},
		{"不正な幅", "YUYV abc 240 60.0 YUYV 320 240 60.0 VendorX ModA", nil},
		{"負の高さ", "YUYV 320 -240 60.0 YUYV 320 240 60.0 VendorX ModA", nil},
		{"不正なfps", "YUYV 320 240 fast YUYV 320 240 60.0 VendorX ModA", nil},
		{"NaN", "YUYV 320 240 NaN YUYV 320 240 60.0 VendorX ModA", nil},
		{"空行", "", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSpec(tc.line)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.line, pe.Text)

			if tc.cause != nil {
				assert.ErrorIs(t, err, tc.cause)
			}
		})
	}
}

func TestParse_InvariantViolationIsParseError(t *testing.T) {
	_, err := Parse("YUYV 0 240 60.0 YUYV 320 240 60.0 VendorX ModA", testResolver())
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, ErrInvalidMapping)
}

func TestParse_ModuleNotFoundIsNotParseError(t *testing.T) {
	_, err := Parse("YUYV 320 240 60.0 YUYV 320 240 60.0 Nobody Missing", testResolver())
	assert.ErrorIs(t, err, ErrModuleNotFound)
	assert.NotErrorIs(t, err, ErrParse)
}

func TestFormat(t *testing.T) {
	m, err := Parse("YUYV 320 240 60 BA81 640 480 29.97 JeVoisVendor SaveVideo *", testResolver())
	require.NoError(t, err)

	assert.Equal(t, "YUYV 320 240 60.0 BA81 640 480 29.97 JeVoisVendor SaveVideo", m.Format())
}

func TestRoundTrip(t *testing.T) {
	lines := []string{
		"YUYV 320 240 60.0 YUYV 320 240 60.0 JeVoisVendor SaveVideo",
		"MJPG 1280 720 29.97 BA81 1280 720 29.97 VendorX ModA",
		"NONE 0 0 0.0 YUYV 320 240 60.0 VendorY ModB",
		"GREY 176 144 120.0 GREY 176 144 120.0 VendorZ ModC",
		"NV12 640 480 7.5 RGGB 640 480 15.0 V A",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			original, err := Parse(line, testResolver())
			require.NoError(t, err)

			again, err := Parse(original.Format(), testResolver())
			require.NoError(t, err)

			assert.True(t, again.SameAs(original), "%s != %s", again, original)
			assert.Equal(t, original.Kind(), again.Kind())
		})
	}
}
