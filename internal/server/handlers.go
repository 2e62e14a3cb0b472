package server

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vidmap/internal/config"
	"vidmap/internal/fourcc"
	"vidmap/internal/framerate"
	"vidmap/internal/module"
	"vidmap/internal/videomapping"
)

// MappingHandler はマッピング表を参照するエンドポイントを実装する
type MappingHandler struct {
	config    *config.Config
	table     *videomapping.Table
	discovery module.Discovery
	resolver  videomapping.Resolver
	logger    *slog.Logger
}

// ErrorResponse はエラー応答
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Line      int       `json:"line,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TableResponse はマッピング表の応答
type TableResponse struct {
	Revision     string                 `json:"revision,omitempty"`
	DefaultIndex int                    `json:"default_index"`
	Mappings     []videomapping.Mapping `json:"mappings"`
}

// MappingResponse は単一マッピングの応答
type MappingResponse struct {
	Index   int                  `json:"index"`
	Default bool                 `json:"default"`
	Mapping videomapping.Mapping `json:"mapping"`
}

// StatusResponse はシステム状態の応答
type StatusResponse struct {
	Status       string    `json:"status"`
	Revision     string    `json:"revision"`
	Mappings     int       `json:"mappings"`
	WithOutput   int       `json:"with_output"`
	DefaultIndex int       `json:"default_index"`
	Default      string    `json:"default"`
	ModuleRoot   string    `json:"module_root"`
	ModuleCheck  bool      `json:"module_check"`
	LoadedAt     time.Time `json:"loaded_at"`
	Timestamp    time.Time `json:"timestamp"`
}

// FormatInfo は対応フォーマットの情報
type FormatInfo struct {
	Format        fourcc.Code `json:"format"`
	BytesPerPixel float64     `json:"bytes_per_pixel"`
}

// matchQuery はホストの要求を表すクエリ
// fpsの代わりにUVCの間隔 (100ns単位) を指定できる
type matchQuery struct {
	Format   string  `form:"format" binding:"required"`
	Width    uint32  `form:"width" binding:"required,gt=0"`
	Height   uint32  `form:"height" binding:"required,gt=0"`
	FPS      float64 `form:"fps" binding:"gte=0"`
	Interval uint32  `form:"interval"`
}

// HealthCheck はヘルスチェックエンドポイントの実装
func (h *MappingHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// GetStatus はシステム状態取得エンドポイントの実装
func (h *MappingHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:       "running",
		Revision:     h.table.Revision().String(),
		Mappings:     h.table.Len(),
		WithOutput:   len(h.table.WithOutput()),
		DefaultIndex: h.table.DefaultIndex(),
		Default:      h.table.Default().String(),
		ModuleRoot:   h.config.Mapping.ModuleRoot,
		ModuleCheck:  h.config.Mapping.CheckModules,
		LoadedAt:     h.table.LoadedAt(),
		Timestamp:    time.Now(),
	})
}

// GetMappings はマッピング表取得エンドポイントの実装
func (h *MappingHandler) GetMappings(c *gin.Context) {
	c.JSON(http.StatusOK, tableResponse(h.table))
}

// GetDefaultMapping はデフォルトのマッピング取得エンドポイントの実装
func (h *MappingHandler) GetDefaultMapping(c *gin.Context) {
	c.JSON(http.StatusOK, MappingResponse{
		Index:   h.table.DefaultIndex(),
		Default: true,
		Mapping: h.table.Default(),
	})
}

// GetMapping は位置を指定したマッピング取得エンドポイントの実装
func (h *MappingHandler) GetMapping(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_index", "位置は整数で指定してください")
		return
	}

	m, ok := h.table.At(index)
	if !ok {
		abortWithError(c, http.StatusNotFound, "mapping_not_found",
			fmt.Sprintf("位置 %d のマッピングはありません (全%d件)", index, h.table.Len()))
		return
	}

	c.JSON(http.StatusOK, MappingResponse{
		Index:   index,
		Default: index == h.table.DefaultIndex(),
		Mapping: m,
	})
}

// MatchMapping はホストの要求に一致するマッピングの検索エンドポイントの実装
func (h *MappingHandler) MatchMapping(c *gin.Context) {
	var q matchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	code, err := fourcc.Parse(q.Format)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}

	fps := q.FPS
	if q.Interval > 0 {
		fps = framerate.UVCToFPS(q.Interval)
	}

	m, index, ok := h.table.Match(code, q.Width, q.Height, fps)
	if !ok {
		abortWithError(c, http.StatusNotFound, "mapping_not_found",
			fmt.Sprintf("%s %dx%d @ %vfps に一致するマッピングはありません", code, q.Width, q.Height, fps))
		return
	}

	c.JSON(http.StatusOK, MappingResponse{
		Index:   index,
		Default: index == h.table.DefaultIndex(),
		Mapping: m,
	})
}

// ValidateMappings は送信された設定を読み込んで検証するエンドポイントの実装
// 稼働中の表は置き換えない
func (h *MappingHandler) ValidateMappings(c *gin.Context) {
	opts := []videomapping.LoadOption{videomapping.WithLogger(h.logger)}
	if c.Query("check") == "true" && h.resolver != nil {
		opts = append(opts, videomapping.WithResolver(h.resolver))
	}

	table, err := videomapping.Load(c.Request.Body, opts...)
	if err != nil {
		h.logger.Warn("設定の検証に失敗しました", "error", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, loadErrorResponse(err))
		return
	}

	c.JSON(http.StatusOK, tableResponse(table))
}

// GetModules はインストール済みモジュール一覧取得エンドポイントの実装
func (h *MappingHandler) GetModules(c *gin.Context) {
	modules, err := h.discovery.ScanModules(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "scan_failed", err.Error())
		return
	}
	if modules == nil {
		modules = []module.Info{}
	}

	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

// GetFormats は対応フォーマット一覧取得エンドポイントの実装
func (h *MappingHandler) GetFormats(c *gin.Context) {
	codes := fourcc.Known()
	formats := make([]FormatInfo, 0, len(codes))
	for _, code := range codes {
		bpp, err := fourcc.BytesPerPixel(code)
		if err != nil {
			continue
		}
		formats = append(formats, FormatInfo{Format: code, BytesPerPixel: bpp})
	}

	c.JSON(http.StatusOK, gin.H{"formats": formats})
}

// Root はルートパスのハンドラ
// 現在のマッピング表を一覧表示する
func (h *MappingHandler) Root(c *gin.Context) {
	var rows strings.Builder
	for i, m := range h.table.Mappings() {
		marker := ""
		if i == h.table.DefaultIndex() {
			marker = "*"
		}
		fmt.Fprintf(&rows, "<tr><td>%d%s</td><td>%s</td><td>%s</td><td>%s/%s</td><td>%s</td></tr>\n",
			i, marker,
			template.HTMLEscapeString(m.OutputString()),
			template.HTMLEscapeString(m.CameraString()),
			template.HTMLEscapeString(m.Vendor()),
			template.HTMLEscapeString(m.Module()),
			m.Kind())
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="ja">
<head>
    <meta charset="UTF-8">
    <title>vidmap - ビデオマッピング</title>
</head>
<body>
    <h1>ビデオマッピング</h1>
    <p>ステータス: <a href="/api/status">/api/status</a></p>
    <p>ヘルスチェック: <a href="/health">/health</a></p>
    <table>
        <tr><th>#</th><th>出力</th><th>カメラ</th><th>モジュール</th><th>種類</th></tr>
%s    </table>
</body>
</html>`, rows.String())

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// ヘルパー関数

// tableResponse は表を応答に変換する
func tableResponse(table *videomapping.Table) TableResponse {
	return TableResponse{
		Revision:     table.Revision().String(),
		DefaultIndex: table.DefaultIndex(),
		Mappings:     table.Mappings(),
	}
}

// loadErrorResponse は読み込みエラーを種類ごとの応答に変換する
func loadErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{
		Error:     "invalid_configuration",
		Message:   err.Error(),
		Timestamp: time.Now(),
	}

	var pe *videomapping.ParseError
	switch {
	case errors.As(err, &pe):
		resp.Error = "parse_error"
		resp.Line = pe.Line
	case errors.Is(err, videomapping.ErrModuleNotFound):
		resp.Error = "module_not_found"
	case errors.Is(err, videomapping.ErrEmptyConfiguration):
		resp.Error = "empty_configuration"
	}

	return resp
}

// abortWithError はエラー応答を返して処理を中断する
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	})
}
