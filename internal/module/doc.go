// Package module は処理モジュールの実装ファイルの解決と検出を担う
//
// # 責務
// - ベンダー名とモジュール名から実装ファイルの場所を決定する
// - ネイティブ (.so) かスクリプト (.py) かをファイルの存在で判定する
// - モジュールツリーをスキャンしてインストール済みモジュールを列挙する
//
// # 仕様
// - モジュールは <root>/<Vendor>/<Module>/<Module>.so または .py に置かれる
// - 判定順序は固定で、.so が .py より優先される
// - どちらも存在しない場合は ErrModuleNotFound で失敗する
// - ファイルシステムは io/fs で抽象化し、テストでは fstest.MapFS を使う
package module
