// Package twelvedata はTwelve Data株式市場APIのクライアントを提供します。
package twelvedata

import (
	"os"
	"strconv"
	"time"
)

// DefaultBaseURL はTwelve Data APIのベースURLです。
const DefaultBaseURL = "https://api.twelvedata.com"

// DefaultRequestsPerMinute は無料プランの1分あたりのリクエスト上限です。
const DefaultRequestsPerMinute = 8

// Config はTwelve Data APIクライアントの設定を保持します。
type Config struct {
	TwelveDataAPIKey  string        // 認証用APIキー
	BaseURL           string        // APIのベースURL
	Timeout           time.Duration // HTTPリクエストタイムアウト
	RequestsPerMinute int           // 1分あたりのリクエスト上限（0以下は無制限）
}

// LoadConfig は環境変数からTwelve Dataの設定を読み込みます。
func LoadConfig() Config {
	cfg := Config{
		TwelveDataAPIKey:  os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:           os.Getenv("TWELVE_DATA_BASE_URL"),
		Timeout:           10 * time.Second,
		RequestsPerMinute: DefaultRequestsPerMinute,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if v, err := strconv.Atoi(os.Getenv("TWELVE_DATA_RPM")); err == nil {
		cfg.RequestsPerMinute = v
	}
	return cfg
}
