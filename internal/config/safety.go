package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// SafetyAPI - параметры внешнего сервиса оценки безопасности маршрута.
// Передаётся явно в safety.NewClient, глобального экземпляра нет.
type SafetyAPI struct {
	BaseURL       string          `mapstructure:"base_url" validate:"required,url"`
	Endpoints     SafetyEndpoints `mapstructure:"endpoints"`
	Timeout       time.Duration   `mapstructure:"timeout" validate:"gt=0"`
	RetryAttempts uint            `mapstructure:"retry_attempts" validate:"gte=1,lte=10"`
	CacheTime     time.Duration   `mapstructure:"cache_time" validate:"gte=0"`
}

type SafetyEndpoints struct {
	SafetyScore  string `mapstructure:"safety_score" validate:"required,startswith=/"`
	NewsAnalysis string `mapstructure:"news_analysis" validate:"required,startswith=/"`
}

// LoadSafetyAPI читает файл конфигурации (yaml/json/toml), переменные SAFETY_* перекрывают файл
func LoadSafetyAPI(path string) (*SafetyAPI, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("safety")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("endpoints.safety_score", "/api/safety-score")
	v.SetDefault("endpoints.news_analysis", "/api/news-analysis")
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("cache_time", 5*time.Minute)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read safety config error: %w", err)
	}

	var c SafetyAPI
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal safety config error: %w", err)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("validate safety config error: %w", err)
	}
	return &c, nil
}
