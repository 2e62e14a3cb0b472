// Package server は、読み込み済みのビデオマッピング表をHTTPで公開します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// マッピング表の参照と検索、設定の事前検証を担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - マッピング表の一覧、デフォルト、位置指定での取得
//   - ホストの要求 (フォーマット、解像度、fpsまたはUVC間隔) に一致するマッピングの検索
//   - 送信された設定ファイルの検証 (稼働中の表は置き換えない)
//   - インストール済みモジュールと対応フォーマットの一覧
//
// 仕様:
//   - ginを使用
//   - マッピング表は読み込み後に変更されないため、ハンドラはロックなしで参照する
//   - グレースフルシャットダウンに対応
package server
