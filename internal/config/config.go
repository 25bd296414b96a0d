package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Storage   StorageConfig
	Currency  CurrencyConfig
	RateLimit RateLimitConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig(server)
	if err != nil {
		return nil, err
	}

	rateLimit, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		AI:        ai,
		Storage:   storage,
		Currency:  loadCurrencyConfig(),
		RateLimit: rateLimit,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":3000" 或 "127.0.0.1:3000"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Supported text generation providers.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider string
	Model    string

	// Gemini
	GeminiAPIKey string

	// Ark
	APIKey      string
	AccessKey   string
	SecretKey   string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int

	MaxConversationLength int
	SerializeExchanges    bool
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiAPIKey != ""
	case ProviderArk:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	default:
		return false
	}
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Provider != ProviderArk || !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGemini))
	if provider != ProviderGemini && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q: expected %s or %s", provider, ProviderGemini, ProviderArk)
	}

	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	serialize, err := parseBoolEnv("AI_SERIALIZE_EXCHANGES", false)
	if err != nil {
		return AIConfig{}, err
	}

	maxLength := 5
	if override, err := parseOptionalIntEnv("AI_MAX_CONVERSATION_LENGTH"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 1 {
			maxLength = 1
		} else {
			maxLength = *override
		}
	}

	modelName := strings.TrimSpace(os.Getenv("AI_MODEL"))
	if provider == ProviderArk {
		if modelName == "" {
			modelName = strings.TrimSpace(os.Getenv("ARK_MODEL"))
		}
		if modelName == "" {
			modelName = strings.TrimSpace(os.Getenv("Model"))
		}
	} else if modelName == "" {
		modelName = "gemini-1.5-flash-latest"
	}

	return AIConfig{
		Provider:              provider,
		Model:                 modelName,
		GeminiAPIKey:          strings.TrimSpace(os.Getenv("GENERATIVE_AI_KEY")),
		APIKey:                strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:             strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:             strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		BaseURL:               getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:                getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:           temperature,
		TopP:                  topP,
		MaxTokens:             maxTokens,
		MaxConversationLength: maxLength,
		SerializeExchanges:    serialize,
	}, nil
}

// StorageConfig 描述文档库与对象存储配置。
type StorageConfig struct {
	DataDir       string
	UploadsDir    string
	BucketDir     string
	SigningSecret string
	PublicBaseURL string
	SignedURLTTL  time.Duration
}

// DatabasePath returns the bbolt file location.
func (c StorageConfig) DatabasePath() string {
	return strings.TrimRight(c.DataDir, "/") + "/budgetly.db"
}

func loadStorageConfig(server ServerConfig) (StorageConfig, error) {
	ttl, err := parseOptionalDurationEnv("STORAGE_SIGNED_URL_TTL")
	if err != nil {
		return StorageConfig{}, err
	}
	signedURLTTL := 15 * time.Minute
	if ttl != nil {
		signedURLTTL = *ttl
	}

	dataDir := getEnvOrDefault("DATA_DIR", ".")
	baseURL := strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL"))
	if baseURL == "" {
		host := server.Addr
		if strings.HasPrefix(host, ":") {
			host = "localhost" + host
		}
		baseURL = "http://" + host
	}

	return StorageConfig{
		DataDir:       dataDir,
		UploadsDir:    getEnvOrDefault("UPLOADS_DIR", strings.TrimRight(dataDir, "/")+"/uploads"),
		BucketDir:     getEnvOrDefault("STORAGE_BUCKET_DIR", strings.TrimRight(dataDir, "/")+"/bucket"),
		SigningSecret: strings.TrimSpace(os.Getenv("STORAGE_SIGNING_SECRET")),
		PublicBaseURL: strings.TrimRight(baseURL, "/"),
		SignedURLTTL:  signedURLTTL,
	}, nil
}

// CurrencyConfig 描述汇率接口配置。
type CurrencyConfig struct {
	APIKey            string
	BaseURL           string
	DefaultCurrencies string
}

func loadCurrencyConfig() CurrencyConfig {
	return CurrencyConfig{
		APIKey:            strings.TrimSpace(os.Getenv("CURRENCY_API_KEY")),
		BaseURL:           getEnvOrDefault("CURRENCY_API_URL", "https://api.freecurrencyapi.com/v1/latest"),
		DefaultCurrencies: getEnvOrDefault("CURRENCY_DEFAULTS", "EUR,USD,CAD,IDR"),
	}
}

// RateLimitConfig 描述 AI 路由的限流配置。
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	cfg := RateLimitConfig{Max: 100, Window: 15 * time.Minute}

	limit, err := parseOptionalIntEnv("RATE_LIMIT_MAX")
	if err != nil {
		return RateLimitConfig{}, err
	}
	if limit != nil {
		cfg.Max = *limit
	}

	window, err := parseOptionalDurationEnv("RATE_LIMIT_WINDOW")
	if err != nil {
		return RateLimitConfig{}, err
	}
	if window != nil {
		cfg.Window = *window
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalDurationEnv(key string) (*time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
