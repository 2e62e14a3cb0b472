package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"vidmap/internal/logging"
	"vidmap/internal/module"
)

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Mapping MappingConfig `yaml:"mapping" toml:"mapping"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"host" toml:"host" validate:"required"`        // リッスンするホスト
	Port int    `yaml:"port" toml:"port" validate:"min=0,max=65535"` // リッスンするポート番号 (0は自動割り当て)

	// タイムアウト設定
	ReadTimeout  Duration `yaml:"read_timeout" toml:"read_timeout" validate:"gte=0"`   // 読み込みタイムアウト
	WriteTimeout Duration `yaml:"write_timeout" toml:"write_timeout" validate:"gte=0"` // 書き込みタイムアウト
}

// MappingConfig はビデオマッピング表の設定
type MappingConfig struct {
	File         string `yaml:"file" toml:"file" validate:"required"`               // マッピング設定ファイル
	ModuleRoot   string `yaml:"module_root" toml:"module_root" validate:"required"` // モジュールツリーの位置
	CheckModules bool   `yaml:"check_modules" toml:"check_modules"`                 // モジュールファイルの存在確認を行うか
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"` // ログレベル
	Format string `yaml:"format" toml:"format" validate:"oneof=auto text json"`      // 出力形式
}

// Duration は "10s" のような文字列で指定できる時間
type Duration time.Duration

// UnmarshalText は time.ParseDuration の書式で時間を読み込む
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("無効な時間指定 %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText は時間を文字列で書き出す
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std は time.Duration に変換する
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(10 * time.Second),
		},
		Mapping: MappingConfig{
			File:         "/jevois/config/videomappings.cfg",
			ModuleRoot:   module.DefaultRoot,
			CheckModules: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load は設定を読み込む
// デフォルト値に環境変数を反映して検証する
func Load() (*Config, error) {
	cfg := Default()
	cfg.applyEnv()

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// LoadFile は設定ファイルを読み込む
// 拡張子が .toml ならTOML、それ以外はYAMLとして扱い、デフォルト値に上書きする。
// 環境変数はファイルより優先される。
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込みに失敗 %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの解析に失敗 %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	logging.For(logging.ComponentConfig).Debug("設定ファイルを読み込みました",
		"path", path, "addr", cfg.ServerAddress(), "mappings", cfg.Mapping.File)

	return cfg, nil
}

// applyEnv は環境変数で設定を上書きする
func (c *Config) applyEnv() {
	c.Server.Host = getEnvOrDefault("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsIntOrDefault("PORT", c.Server.Port)
	c.Mapping.File = getEnvOrDefault("VIDMAP_MAPPINGS", c.Mapping.File)
	c.Mapping.ModuleRoot = getEnvOrDefault("VIDMAP_MODULE_ROOT", c.Mapping.ModuleRoot)
	c.Mapping.CheckModules = getEnvAsBoolOrDefault("VIDMAP_CHECK_MODULES", c.Mapping.CheckModules)
	c.Log.Level = getEnvOrDefault("VIDMAP_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("VIDMAP_LOG_FORMAT", c.Log.Format)
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsBoolOrDefault は環境変数を真偽値として取得し、設定されていない場合はデフォルト値を返す
func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
