// Package fourcc はV4L2/UVCのピクセルフォーマットコード (FourCC) を扱う
//
// # 責務
// - 4文字トークンとコード値の相互変換
// - フォーマットごとの1ピクセルあたりバイト数の管理
// - 1フレーム分の生データサイズの計算
//
// # 仕様
// - コードはV4L2と同じリトルエンディアン ('Y' | 'U'<<8 | 'Y'<<16 | 'V'<<24)
// - ゼロ値 None は「USB出力なし」を表し、トークン NONE として扱う
// - MJPGなど可変長の圧縮フォーマットは無圧縮相当の上限値を返す
// - 未知のフォーマットのサイズ計算は ErrUnsupportedFormat で失敗する
package fourcc
