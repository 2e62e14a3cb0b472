package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"vidmap/internal/config"
	"vidmap/internal/logging"
	"vidmap/internal/server"
	"vidmap/internal/videomapping"
)

func main() {
	// 設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
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

	// サーバーを作成
	srv := server.New(cfg, table)

	// コンテキストを作成
	ctx := context.Background()

	// サーバーを起動
	if err := srv.Start(ctx); err != nil {
		log.Printf("サーバーの起動に失敗しました: %v", err)
		os.Exit(1)
	}
}
