package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	if c.DatabasePath == "" {
		errors = append(errors, "database path is required")
	}
	if c.UploadDir == "" {
		errors = append(errors, "upload folder is required")
	}
	if c.OutputDir == "" {
		errors = append(errors, "output folder is required")
	}
	if c.TemplateDir == "" {
		errors = append(errors, "template folder is required")
	}

	if c.MaxUploadSize < 1 {
		errors = append(errors, "max upload size must be at least 1 byte")
	}

	if c.AITimeout < time.Second {
		errors = append(errors, "AI timeout must be at least 1 second")
	}
	if c.LookupInterval < 0 {
		errors = append(errors, "lookup interval cannot be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}
