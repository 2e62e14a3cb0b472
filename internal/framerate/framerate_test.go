package framerate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var representativeFPS = []float64{1, 15, 29.97, 30, 60, 120}

func TestUVCRoundTrip(t *testing.T) {
	for _, fps := range representativeFPS {
		interval := FPSToUVC(fps)
		got := UVCToFPS(interval)
		assert.Truef(t, Equal(fps, got), "fps %v -> interval %d -> fps %v", fps, interval, got)
	}
}

func TestV4L2RoundTrip(t *testing.T) {
	for _, fps := range representativeFPS {
		fr := FPSToV4L2(fps)
		got := V4L2ToFPS(fr)
		assert.Truef(t, Equal(fps, got), "fps %v -> %d/%d -> fps %v", fps, fr.Numerator, fr.Denominator, got)
	}
}

func TestFPSToV4L2_LowestTerms(t *testing.T) {
	testCases := []struct {
		name string
		fps  float64
		want Fract
	}{
		{"整数fps", 30, Fract{Numerator: 1, Denominator: 30}},
		{"1fps", 1, Fract{Numerator: 1, Denominator: 1}},
		{"NTSC", 29.97, Fract{Numerator: 100, Denominator: 2997}},
		{"半端なfps", 7.5, Fract{Numerator: 2, Denominator: 15}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FPSToV4L2(tc.fps))
		})
	}
}

func TestKnownIntervals(t *testing.T) {
	assert.Equal(t, uint32(333333), FPSToUVC(30))
	assert.Equal(t, uint32(166667), FPSToUVC(60))
	assert.Equal(t, 30.0, UVCToFPS(333333))
	assert.Equal(t, 29.97, UVCToFPS(333667))
	assert.Equal(t, 60.0, V4L2ToFPS(Fract{Numerator: 1, Denominator: 60}))
	assert.Equal(t, 29.97, V4L2ToFPS(Fract{Numerator: 1001, Denominator: 30000}))
}

func TestZeroFallback(t *testing.T) {
	assert.Equal(t, 0.0, UVCToFPS(0))
	assert.Equal(t, uint32(0), FPSToUVC(0))
	assert.Equal(t, uint32(0), FPSToUVC(-5))
	assert.Equal(t, 0.0, V4L2ToFPS(Fract{Numerator: 0, Denominator: 30}))
	assert.Equal(t, Fract{}, FPSToV4L2(0))
	assert.Equal(t, Fract{}, FPSToV4L2(0.001))
	assert.Equal(t, uint32(0), FPSToUVC(math.NaN()))
	assert.Equal(t, Fract{}, FPSToV4L2(math.NaN()))
}

func TestSaturation(t *testing.T) {
	// 1e7/0.001 = 1e10 はuint32に収まらない
	assert.Equal(t, uint32(math.MaxUint32), FPSToUVC(0.001))
	assert.Equal(t, uint32(math.MaxUint32), FPSToUVC(0.0001))
	// 境界のすぐ内側は飽和しない
	assert.Equal(t, uint32(4000000000), FPSToUVC(0.0025))

	assert.Equal(t, Fract{Numerator: 1, Denominator: math.MaxUint32}, FPSToV4L2(5e7))
	assert.Equal(t, Fract{Numerator: 1, Denominator: math.MaxUint32}, FPSToV4L2(math.Inf(1)))
	assert.Equal(t, Fract{Numerator: 1, Denominator: 40000000}, FPSToV4L2(4e7))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(60, 60.005))
	assert.True(t, Equal(60.005, 60))
	assert.False(t, Equal(60, 60.02))
	assert.False(t, Equal(59, 60))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 29.97, Round2(29.970029))
	assert.Equal(t, 120.0, Round2(120.0048))
	assert.Equal(t, 0.0, Round2(0.004))
}
