package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config конфигурация сервера
type Config struct {
	// Сервер
	Host string
	Port string

	// Хранилище
	DatabasePath string
	UploadDir    string // загруженные PDF, по папке на должника
	OutputDir    string // result.json и сгенерированные документы
	TemplateDir  string // корень папок шаблонов юристов
	RegistryDir  string // кэш снимков реестров ЦБ

	// Лимиты загрузки
	MaxUploadSize int64

	// AI конфигурация
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	AITimeout     time.Duration

	// Поиск организаций
	LookupBaseURL  string
	LookupInterval time.Duration

	// Реестры ЦБ
	RegistryBanksURL string
	RegistryMFOURL   string
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	config := &Config{
		Host: getEnv("HOST", "0.0.0.0"),
		Port: getEnv("PORT", "5000"),

		DatabasePath: getEnv("DATABASE_PATH", "debtors.db"),
		UploadDir:    getEnv("UPLOAD_FOLDER", "uploads"),
		OutputDir:    getEnv("OUTPUT_FOLDER", "outputs"),
		TemplateDir:  getEnv("TEMPLATE_FOLDER", "templ"),
		RegistryDir:  getEnv("REGISTRY_CACHE_DIR", "registry_cache"),

		MaxUploadSize: getEnvInt64("MAX_FILE_SIZE", 200*1024*1024),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AITimeout:     getEnvDuration("AI_TIMEOUT", 60*time.Second),

		LookupBaseURL:  getEnv("LOOKUP_BASE_URL", "https://www.rusprofile.ru"),
		LookupInterval: getEnvDuration("LOOKUP_INTERVAL", 2*time.Second),

		RegistryBanksURL: os.Getenv("REGISTRY_BANKS_URL"),
		RegistryMFOURL:   os.Getenv("REGISTRY_MFO_URL"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt64 получает переменную окружения как int64 или возвращает значение по умолчанию
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
