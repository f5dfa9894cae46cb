package config

import (
	"errors"
	"fmt"
	"os"

	env "github.com/netflix/go-env"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration 配置缺失或非法，启动阶段即失败
var ErrConfiguration = errors.New("configuration error")

const (
	DefaultLLMBaseURL    = "https://api.groq.com/openai/v1"
	DefaultLLMModel      = "mixtral-8x7b-32768"
	DefaultTemperature   = float32(0.25)
	DefaultProvider      = "serper"
	DefaultSerperBaseURL = "https://google.serper.dev"
	DefaultUserAgent     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultFetchTimeout  = 30
	DefaultMaxBodyBytes  = 5 << 20
	DefaultExtractor     = "text"
	DefaultServerAddr    = ":8000"
	DefaultServerTimeout = "120s"
)

// Config 项目配置结构体
type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Search SearchConfig `yaml:"search"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// LLMConfig LLM 相关配置，模型与温度只能通过配置指定
type LLMConfig struct {
	BaseURL     string   `yaml:"base_url" env:"LLM_BASE_URL"`
	APIKey      string   `yaml:"api_key" env:"GROQ_API_KEY"`
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature"`
	Timeout     int      `yaml:"timeout"` // 秒，0 表示不限制
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Serper   SerperConfig  `yaml:"serper"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// SerperConfig serper.dev 配置
type SerperConfig struct {
	APIKey  string `yaml:"api_key" env:"SERPER_API_KEY"`
	BaseURL string `yaml:"base_url"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key" env:"TAVILY_API_KEY"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url" env:"SEARXNG_BASE_URL"`
	Timeout int    `yaml:"timeout"`
}

// FetchConfig 正文抓取配置
type FetchConfig struct {
	UserAgent    string `yaml:"user_agent"`
	Timeout      int    `yaml:"timeout"` // 秒
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
	Extractor    string `yaml:"extractor"` // text 或 readability
	// Strict 为 true 时任意一个页面抓取失败都会终止本轮对话
	Strict bool `yaml:"strict"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"`
}

// LoadConfig 从指定路径加载配置，再用环境变量覆盖密钥
// 配置文件不存在时只使用默认值与环境变量
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultLLMModel
	}
	if c.LLM.Temperature == nil {
		t := DefaultTemperature
		c.LLM.Temperature = &t
	}
	if c.Search.Provider == "" {
		c.Search.Provider = DefaultProvider
	}
	if c.Search.Serper.BaseURL == "" {
		c.Search.Serper.BaseURL = DefaultSerperBaseURL
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = DefaultUserAgent
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = DefaultFetchTimeout
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Fetch.Extractor == "" {
		c.Fetch.Extractor = DefaultExtractor
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.Timeout == "" {
		c.Server.Timeout = DefaultServerTimeout
	}
}

// ValidateLLM 校验生成模型配置
func (c *Config) ValidateLLM() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: GROQ_API_KEY is not set", ErrConfiguration)
	}
	return nil
}

// ValidateSearch 校验搜索服务配置
func (c *Config) ValidateSearch() error {
	switch c.Search.Provider {
	case "serper":
		if c.Search.Serper.APIKey == "" {
			return fmt.Errorf("%w: SERPER_API_KEY is not set", ErrConfiguration)
		}
	case "tavily":
		if c.Search.Tavily.APIKey == "" {
			return fmt.Errorf("%w: TAVILY_API_KEY is not set", ErrConfiguration)
		}
	case "searxng":
		if c.Search.SearXNG.BaseURL == "" {
			return fmt.Errorf("%w: searxng base url is missing", ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown search provider: %s", ErrConfiguration, c.Search.Provider)
	}
	switch c.Fetch.Extractor {
	case "", "text", "readability":
	default:
		return fmt.Errorf("%w: unknown extractor: %s", ErrConfiguration, c.Fetch.Extractor)
	}
	return nil
}
