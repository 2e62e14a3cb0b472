// Package framerate はフレームレートとフレーム間隔の相互変換を提供する
//
// # 責務
// - USB (UVC) 形式の100ナノ秒単位の間隔とfpsの変換
// - V4L2 形式の分数 (秒/フレーム) とfpsの変換
// - fps比較に使う許容誤差 (0.01fps) の一元管理
//
// # 仕様
// - すべて状態を持たない純粋関数
// - fpsは1/100単位に丸める
// - 間隔0、fps0以下、分子0はいずれも「レート未指定」として0に対応付ける
package framerate
