// Package videomapping はUSB出力フォーマットとカメラフォーマット、処理モジュールの
// 対応表 (ビデオマッピング) を扱う
//
// # 責務
// - 1行のマッピング定義のパースと書き出し
// - マッピングの妥当性検証とモジュール種別の解決
// - マッピング表の読み込み、並べ替え、重複の解消、デフォルトの決定
// - ホストが要求した出力フォーマットに一致するマッピングの検索
//
// # 使い分け
// このパッケージは以下の場合に使用する：
// - 起動時に設定ファイルからマッピング表を構築したい
// - モジュールツリーを用意せずに設定ファイルだけを検証したい
// - ホストの要求 (フォーマット、解像度、fps) から処理内容を決めたい
//
// # 仕様
//   - 1行は OUTFMT OUTW OUTH OUTFPS CAMFMT CAMW CAMH CAMFPS VENDOR MODULE の10フィールド
//     末尾の * はデフォルト指定
//   - 表は出力フォーマット昇順、解像度降順 (幅、高さの順)、fps降順の安定ソート
//   - 同一出力 (フォーマット、解像度、fps) が続く場合は1つごとにfpsを1.0ずつ下げる
//   - fpsは0.01以内の差を同一とみなす
//   - Mapping と Table は構築後に変更されず、複数のゴルーチンから同時に参照できる
package videomapping
