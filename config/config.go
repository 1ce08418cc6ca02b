package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Redis       RedisConfig       `yaml:"redis"`
	Auth        AuthConfig        `yaml:"auth"`
	Tracking    TrackingConfig    `yaml:"tracking"`
	ParcelTrack ParcelTrackConfig `yaml:"parceltrack"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// StorageConfig: driver "postgres" (по умолчанию) или "json" для локального запуска без БД.
type StorageConfig struct {
	Driver   string `yaml:"driver"`
	JSONPath string `yaml:"json_path"`
}

// KafkaConfig: пустой host выключает публикацию событий.
type KafkaConfig struct {
	Host                    string `yaml:"host"`
	Port                    int    `yaml:"port"`
	ShipmentSyncedTopicName string `yaml:"shipment_synced_topic_name"`
}

// RedisConfig: пустой host выключает кэш списков и лимитер синхронизаций.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	Issuer          string `yaml:"issuer"`
	TokenTTLSeconds int    `yaml:"token_ttl_seconds"`
	BcryptCost      int    `yaml:"bcrypt_cost"`
}

type ParcelTrackConfig struct {
	HTTPAddr               string `yaml:"http_addr"`
	ListCacheTTLSeconds    int    `yaml:"list_cache_ttl_seconds"`
	SyncRateLimitPerMinute int    `yaml:"sync_rate_limit_per_minute"`
}

// TrackingConfig выбирает провайдера трекинга. Пустой provider -> первый
// провайдер с ключом в порядке ship24, aftership, openai.
type TrackingConfig struct {
	Provider  string          `yaml:"provider"` // "ship24" | "aftership" | "openai" | "fake"
	Ship24    Ship24Config    `yaml:"ship24"`
	AfterShip AfterShipConfig `yaml:"aftership"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
}

type Ship24Config struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type AfterShipConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	APIVersion     string `yaml:"api_version"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type OpenAIConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	WebSearch      *bool  `yaml:"web_search"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}

// ApplyEnv дополняет пустые поля из переменных окружения. Вызывается один раз
// при старте; значения из файла имеют приоритет.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}
	fill := func(dst *string, keys ...string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = first(keys...)
		}
	}

	t := &c.Tracking
	fill(&t.Provider, "TRACKING_PROVIDER")
	fill(&t.Ship24.APIKey, "SHIP24_API_KEY", "TRACKING_API_KEY")
	fill(&t.Ship24.BaseURL, "SHIP24_API_BASE")
	fill(&t.AfterShip.APIKey, "AFTERSHIP_API_KEY")
	fill(&t.AfterShip.BaseURL, "AFTERSHIP_API_BASE")
	fill(&t.AfterShip.APIVersion, "AFTERSHIP_API_VERSION")
	fill(&t.OpenAI.APIKey, "OPENAI_API_KEY")
	fill(&t.OpenAI.BaseURL, "OPENAI_API_BASE")
	fill(&t.OpenAI.Model, "OPENAI_TRACKING_MODEL")
	if t.OpenAI.WebSearch == nil {
		if v := first("OPENAI_TRACKING_WEB_SEARCH"); v != "" {
			on := v != "0"
			t.OpenAI.WebSearch = &on
		}
	}

	fill(&c.Auth.JWTSecret, "AUTH_JWT_SECRET")
	fill(&c.Database.Password, "DB_PASS")
}

// ResolvedProvider returns the provider name the process should use.
func (t TrackingConfig) ResolvedProvider() string {
	p := strings.ToLower(strings.TrimSpace(t.Provider))
	if p != "" {
		return p
	}
	switch {
	case t.Ship24.APIKey != "":
		return "ship24"
	case t.AfterShip.APIKey != "":
		return "aftership"
	case t.OpenAI.APIKey != "":
		return "openai"
	}
	// без ключа ship24 отвечает ConfigurationError на каждый sync
	return "ship24"
}

// OpenAIWebSearch: web search включён, пока явно не выключен.
func (t TrackingConfig) OpenAIWebSearch() bool {
	return t.OpenAI.WebSearch == nil || *t.OpenAI.WebSearch
}

func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}
