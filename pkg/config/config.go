package config

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration. It is read once at startup
// and never mutated afterwards.
type Config struct {
	Login     string `mapstructure:"LINKEDIN_LOGIN"`
	Password  string `mapstructure:"LINKEDIN_PASSWORD"`
	SearchURL string `mapstructure:"SEARCH_URL"`

	MaxPage            int  `mapstructure:"MAX_PAGE"`
	MaxClickedProfiles int  `mapstructure:"MAX_CLICKED_PROFILES"`
	ShouldAddMessage   bool `mapstructure:"SHOULD_ADD_MESSAGE"`
	TimeoutMS          int  `mapstructure:"TIMEOUT"`

	CookiesPath    string `mapstructure:"COOKIES_PATH"`
	SessionBackend string `mapstructure:"SESSION_BACKEND"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`
	PostgresURL    string `mapstructure:"POSTGRES_URL"`

	LogDir   string `mapstructure:"LOG_DIR"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DelayMinMS       int `mapstructure:"DELAY_MIN_MS"`
	DelayMaxMS       int `mapstructure:"DELAY_MAX_MS"`
	ScrollStepPx     int `mapstructure:"SCROLL_STEP_PX"`
	ScrollIntervalMS int `mapstructure:"SCROLL_INTERVAL_MS"`
	ScrollMaxSteps   int `mapstructure:"SCROLL_MAX_STEPS"`
	KeystrokeDelayMS int `mapstructure:"KEYSTROKE_DELAY_MS"`

	MetricsAddr  string `mapstructure:"METRICS_ADDR"`
	ProxyServers string `mapstructure:"PROXY_SERVERS"` // comma separated

	// Headless is set from the command line, not the environment.
	Headless bool `mapstructure:"-"`

	// Fallbacks lists the keys whose values could not be parsed and were
	// replaced by their defaults.
	Fallbacks []string `mapstructure:"-"`
}

var defaults = map[string]any{
	"LINKEDIN_LOGIN":       "",
	"LINKEDIN_PASSWORD":    "",
	"SEARCH_URL":           "",
	"MAX_PAGE":             300,
	"MAX_CLICKED_PROFILES": 15,
	"SHOULD_ADD_MESSAGE":   false,
	"TIMEOUT":              30000, // in milliseconds
	"COOKIES_PATH":         "./cookies.json",
	"SESSION_BACKEND":      "file",
	"REDIS_ADDR":           "localhost:6379",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"POSTGRES_URL":         "",
	"LOG_DIR":              "./logs",
	"LOG_LEVEL":            "info",
	"DELAY_MIN_MS":         2000,
	"DELAY_MAX_MS":         5000,
	"SCROLL_STEP_PX":       100,
	"SCROLL_INTERVAL_MS":   100,
	"SCROLL_MAX_STEPS":     300,
	"KEYSTROKE_DELAY_MS":   100,
	"METRICS_ADDR":         "",
	"PROXY_SERVERS":        "",
}

// Load reads configuration from an env file (if present) and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	fallbacks := normalize(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Fallbacks = fallbacks
	return &cfg, nil
}

// normalize parses numeric and boolean keys up front. A value that does not
// parse is replaced by the key's default instead of failing the load.
func normalize(v *viper.Viper) []string {
	var fallbacks []string
	for key, def := range defaults {
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			v.Set(key, def)
			continue
		}
		switch d := def.(type) {
		case int:
			n, err := strconv.Atoi(raw)
			if err != nil {
				fallbacks = append(fallbacks, key)
				n = d
			}
			v.Set(key, n)
		case bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				fallbacks = append(fallbacks, key)
				b = d
			}
			v.Set(key, b)
		}
	}
	sort.Strings(fallbacks)
	return fallbacks
}

// Timeout is the per-operation timeout applied to every browser wait.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (c *Config) DelayRange() (time.Duration, time.Duration) {
	return time.Duration(c.DelayMinMS) * time.Millisecond, time.Duration(c.DelayMaxMS) * time.Millisecond
}

func (c *Config) KeystrokeDelay() time.Duration {
	return time.Duration(c.KeystrokeDelayMS) * time.Millisecond
}
