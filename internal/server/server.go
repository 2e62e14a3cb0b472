package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"vidmap/internal/config"
	"vidmap/internal/logging"
	"vidmap/internal/module"
	"vidmap/internal/videomapping"
)

// Server はHTTPサーバーを管理する構造体
type Server struct {
	config     *config.Config
	handler    *MappingHandler
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// Option はServerの構築オプション
type Option func(*Server)

// WithDiscovery はモジュール一覧の取得に使うDiscoveryを指定する
func WithDiscovery(d module.Discovery) Option {
	return func(s *Server) {
		s.handler.discovery = d
	}
}

// WithResolver は設定検証時のモジュール解決に使うResolverを指定する
func WithResolver(r videomapping.Resolver) Option {
	return func(s *Server) {
		s.handler.resolver = r
	}
}

// WithLogger はサーバーのロガーを指定する
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
		s.handler.logger = logger
	}
}

// New は新しいServerインスタンスを作成する
// tableは読み込み済みで変更されないマッピング表
func New(cfg *config.Config, table *videomapping.Table, opts ...Option) *Server {
	logger := logging.For(logging.ComponentServer)

	handler := &MappingHandler{
		config:    cfg,
		table:     table,
		discovery: module.NewDiscovery(cfg.Mapping.ModuleRoot),
		logger:    logger,
	}
	if cfg.Mapping.CheckModules {
		handler.resolver = module.NewResolver(cfg.Mapping.ModuleRoot)
	}

	s := &Server{
		config:  cfg,
		handler: handler,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), requestLogger(s.logger))
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      s.engine,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	return s
}

// Handler はルーティング済みのhttp.Handlerを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// setupRoutes はHTTPルートを設定する
func (s *Server) setupRoutes() {
	h := s.handler

	// ヘルスチェックエンドポイント
	s.engine.GET("/health", h.HealthCheck)

	// APIエンドポイント
	api := s.engine.Group("/api")
	api.GET("/status", h.GetStatus)
	api.GET("/mappings", h.GetMappings)
	api.GET("/mappings/default", h.GetDefaultMapping)
	api.GET("/mappings/match", h.MatchMapping)
	api.GET("/mappings/:index", h.GetMapping)
	api.POST("/mappings/validate", h.ValidateMappings)
	api.GET("/modules", h.GetModules)
	api.GET("/formats", h.GetFormats)

	// ルートハンドラ（簡単な確認用）
	s.engine.GET("/", h.Root)
}

// requestLogger はリクエストごとにslogへ記録するミドルウェア
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("HTTPリクエスト",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}

// Start はサーバーを起動する
func (s *Server) Start(ctx context.Context) error {
	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// サーバーを別ゴルーチンで起動
	go func() {
		s.logger.Info("HTTPサーバーを起動しています", "addr", s.config.ServerAddress())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownCh <- fmt.Errorf("サーバーの起動に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		s.logger.Info("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.logger.Info("シグナルを受信しました", "signal", sig.String())
	case err := <-shutdownCh:
		return err
	}

	// グレースフルシャットダウン
	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	s.logger.Info("サーバーをシャットダウンしています")

	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗: %w", err)
	}

	s.logger.Info("サーバーが正常にシャットダウンされました")
	return nil
}
