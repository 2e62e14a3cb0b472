package framerate

import "math"

// Tolerance はfpsを同一とみなす許容誤差
// 浮動小数点の表現誤差と丸めによる不一致を避けるため
const Tolerance = 0.01

// uvcTicksPerSecond はUVCの間隔単位 (100ns) で表した1秒
const uvcTicksPerSecond = 1e7

// Fract はV4L2のフレーム間隔 (Numerator/Denominator 秒) を表す
type Fract struct {
	Numerator   uint32 `json:"numerator"`
	Denominator uint32 `json:"denominator"`
}

// Round2 は値を1/100単位に丸める
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Equal は2つのfpsが許容誤差内で一致するかを返す
func Equal(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance
}

// UVCToFPS はUVC間隔 (100ns単位) をfpsに変換する
// 間隔0はレート未指定として0を返す
func UVCToFPS(interval uint32) float64 {
	if interval == 0 {
		return 0
	}
	return Round2(uvcTicksPerSecond / float64(interval))
}

// FPSToUVC はfpsをUVC間隔 (100ns単位) に変換する
// fpsが0以下 (またはNaN) の場合は0を返す。
// 間隔がuint32に収まらない低いfpsは math.MaxUint32 に飽和する。
func FPSToUVC(fps float64) uint32 {
	if !(fps > 0) {
		return 0
	}
	interval := math.Round(uvcTicksPerSecond / fps)
	if interval > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(interval)
}

// V4L2ToFPS はV4L2の分数間隔をfpsに変換する
// 分子0はレート未指定として0を返す
func V4L2ToFPS(interval Fract) float64 {
	if interval.Numerator == 0 {
		return 0
	}
	return Round2(float64(interval.Denominator) / float64(interval.Numerator))
}

// FPSToV4L2 はfpsをV4L2の分数間隔に変換する
//
// 1/100fps単位で表した値を約分するため、整数fpsは分子1になる
// (例: 30fps -> 1/30, 29.97fps -> 100/2997)。
// fpsが0以下 (またはNaN) の場合はゼロ値を返す。
// 1/100fps単位でuint32に収まらない高いfpsは 1/math.MaxUint32 に飽和する。
func FPSToV4L2(fps float64) Fract {
	if !(fps > 0) {
		return Fract{}
	}

	scaled := math.Round(fps * 100)
	if scaled == 0 {
		return Fract{}
	}
	if scaled > math.MaxUint32 {
		return Fract{Numerator: 1, Denominator: math.MaxUint32}
	}

	num := uint32(100)
	den := uint32(scaled)
	g := gcd(num, den)
	return Fract{Numerator: num / g, Denominator: den / g}
}

// gcd は最大公約数を返す
func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
