// Package main はvidmapサーバーコマンドの実装です
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"vidmap/internal/config"
	"vidmap/internal/logging"
	"vidmap/internal/server"
	"vidmap/internal/videomapping"
)

func main() {
	// コマンドラインオプション
	var (
		host     = flag.String("host", "", "サーバーのホスト (デフォルト: 0.0.0.0)")
		port     = flag.Int("port", 0, "サーバーのポート (デフォルト: 8080)")
		cfgPath  = flag.String("config", "", "設定ファイル (.yaml または .toml)")
		mappings = flag.String("mappings", "", "マッピング設定ファイル")
		modules  = flag.String("modules", "", "モジュールツリーの位置")
		check    = flag.String("check", "", "モジュールファイルの存在確認 (true/false)")
		list     = flag.Bool("list", false, "マッピング表を表示して終了")
		help     = flag.Bool("help", false, "ヘルプを表示")
	)

	flag.Parse()

	// ヘルプ表示
	if *help {
		fmt.Println("vidmap")
		fmt.Println()
		fmt.Println("使用方法:")
		fmt.Println("  server [オプション]")
		fmt.Println()
		fmt.Println("オプション:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// 設定を読み込む
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// コマンドラインオプションで設定を上書き
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *mappings != "" {
		cfg.Mapping.File = *mappings
	}
	if *modules != "" {
		cfg.Mapping.ModuleRoot = *modules
	}
	switch *check {
	case "":
	case "true":
		cfg.Mapping.CheckModules = true
	case "false":
		cfg.Mapping.CheckModules = false
	default:
		log.Fatalf("-check には true か false を指定してください: %q", *check)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("設定の検証に失敗しました: %v", err)
	}

	if err := logging.Setup(cfg.Log.Level, logging.Format(cfg.Log.Format)); err != nil {
		log.Fatalf("ログの設定に失敗しました: %v", err)
	}
	gin.SetMode(gin.ReleaseMode)

	// マッピング表を読み込む
	var opts []videomapping.LoadOption
	if cfg.Mapping.CheckModules {
		opts = append(opts, videomapping.WithModuleRoot(cfg.Mapping.ModuleRoot))
	}
	table, err := videomapping.LoadFile(cfg.Mapping.File, opts...)
	if err != nil {
		log.Fatalf("マッピング表の読み込みに失敗しました: %v", err)
	}

	if *list {
		for i, m := range table.Mappings() {
			marker := " "
			if i == table.DefaultIndex() {
				marker = "*"
			}
			fmt.Printf("%3d %s %s\n", i, marker, m)
		}
		os.Exit(0)
	}

	// サーバーを作成
	srv := server.New(cfg, table)

	// コンテキストを作成
	ctx := context.Background()

	// サーバーを起動
	log.Printf("vidmap サーバーを起動します: %s (%d件)", cfg.ServerAddress(), table.Len())
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("サーバーの起動に失敗しました: %v", err)
	}
}

// loadConfig はpathが指定されていれば設定ファイルから、なければ環境変数から設定を読み込む
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}
