package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider holds one search provider's credentials and rate budget.
type Provider struct {
	APIKey     string
	BaseURL    string
	RateCalls  int
	RatePeriod time.Duration
}

type Config struct {
	Server struct {
		Port        string
		CORSOrigins []string
	}
	Cloudflare struct {
		APIKey    string
		AccountID string
		Model     string
		BaseURL   string
		Timeout   time.Duration
	}
	Providers struct {
		Brave      Provider
		Serper     Provider
		YouTube    Provider
		MaxResults int
		Timeout    time.Duration
	}
	Session struct {
		TTL                time.Duration
		MaxPreviousQueries int
	}
	Extractor struct {
		Timeout       time.Duration
		MaxParagraphs int
		MaxChars      int
	}
	Redis struct {
		URL string
	}
	Cache struct {
		TTL time.Duration
	}
	API struct {
		RateLimit int
	}
}

// ProviderNames lists the configurable search providers in registration order.
var ProviderNames = []string{"brave", "serper", "youtube"}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})

	v.SetDefault("cloudflare.api_key", "")
	v.SetDefault("cloudflare.account_id", "")
	v.SetDefault("cloudflare.model", "@cf/meta/llama-3.1-70b-instruct")
	v.SetDefault("cloudflare.base_url", "https://api.cloudflare.com/client/v4")
	v.SetDefault("cloudflare.timeout", "60s")

	for _, name := range ProviderNames {
		v.SetDefault("providers."+name+".api_key", "")
		v.SetDefault("providers."+name+".base_url", "")
		v.SetDefault("providers."+name+".rate_calls", 1)
		v.SetDefault("providers."+name+".rate_period", "1s")
	}
	v.SetDefault("providers.max_results", 2)
	v.SetDefault("providers.timeout", "5s")

	v.SetDefault("session.ttl", "10m")
	v.SetDefault("session.max_previous_queries", 3)

	v.SetDefault("extractor.timeout", "5s")
	v.SetDefault("extractor.max_paragraphs", 5)
	v.SetDefault("extractor.max_chars", 5000)

	v.SetDefault("redis.url", "")
	v.SetDefault("cache.ttl", "15m")

	v.SetDefault("api.rate_limit", 60)
}

func fromViper(v *viper.Viper) *Config {
	var config Config

	config.Server.Port = v.GetString("server.port")
	config.Server.CORSOrigins = splitList(v.GetStringSlice("server.cors_origins"))

	config.Cloudflare.APIKey = v.GetString("cloudflare.api_key")
	config.Cloudflare.AccountID = v.GetString("cloudflare.account_id")
	config.Cloudflare.Model = v.GetString("cloudflare.model")
	config.Cloudflare.BaseURL = v.GetString("cloudflare.base_url")
	config.Cloudflare.Timeout = v.GetDuration("cloudflare.timeout")

	config.Providers.Brave = provider(v, "brave")
	config.Providers.Serper = provider(v, "serper")
	config.Providers.YouTube = provider(v, "youtube")
	config.Providers.MaxResults = v.GetInt("providers.max_results")
	config.Providers.Timeout = v.GetDuration("providers.timeout")

	config.Session.TTL = v.GetDuration("session.ttl")
	config.Session.MaxPreviousQueries = v.GetInt("session.max_previous_queries")

	config.Extractor.Timeout = v.GetDuration("extractor.timeout")
	config.Extractor.MaxParagraphs = v.GetInt("extractor.max_paragraphs")
	config.Extractor.MaxChars = v.GetInt("extractor.max_chars")

	config.Redis.URL = v.GetString("redis.url")
	config.Cache.TTL = v.GetDuration("cache.ttl")

	config.API.RateLimit = v.GetInt("api.rate_limit")

	return &config
}

func provider(v *viper.Viper, name string) Provider {
	prefix := "providers." + name + "."
	return Provider{
		APIKey:     v.GetString(prefix + "api_key"),
		BaseURL:    v.GetString(prefix + "base_url"),
		RateCalls:  v.GetInt(prefix + "rate_calls"),
		RatePeriod: v.GetDuration(prefix + "rate_period"),
	}
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate reports configuration the server cannot answer without.
func (c *Config) Validate() error {
	if c.Cloudflare.APIKey == "" {
		return fmt.Errorf("CLOUDFLARE_API_KEY is required")
	}
	if c.Cloudflare.AccountID == "" {
		return fmt.Errorf("CLOUDFLARE_ACCOUNT_ID is required")
	}
	return nil
}
