package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Message сообщение чата в формате OpenAI API
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RetryConfig конфигурация повторных попыток
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig возвращает конфигурацию повторов по умолчанию
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Config конфигурация клиента языковой модели
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Retry   RetryConfig
}

// Client клиент OpenAI-совместимого API чат-комплишенов.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	httpClient  *http.Client
	retryConfig RetryConfig
}

// NewClient создает новый клиент языковой модели
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.Retry.MaxRetries == 0 {
		config.Retry = DefaultRetryConfig()
	}
	if config.APIKey == "" {
		log.Println("Warning: AI API key not set")
	}

	// Оптимизированный HTTP Transport с connection pooling
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		IdleConnTimeout:     90 * time.Second,
		DisableKeepAlives:   false,
		DisableCompression:  false,
		MaxIdleConnsPerHost: 5,
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		apiKey:  config.APIKey,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		retryConfig: config.Retry,
	}
}

// Model возвращает имя используемой модели.
func (c *Client) Model() string { return c.model }

// ChatCompletion выполняет запрос к chat/completions с повторными попытками.
// Повторяются сетевые ошибки, 429 и 5xx. Исчерпание квоты не повторяется.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message) (string, error) {
	url := fmt.Sprintf("%s/chat/completions", c.baseURL)

	requestBody := map[string]interface{}{
		"model":       c.model,
		"messages":    messages,
		"temperature": 0.1,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[AI] Retry attempt %d/%d after %v", attempt, c.retryConfig.MaxRetries, delay)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.retryConfig.BackoffMultiplier)
			if delay > c.retryConfig.MaxDelay {
				delay = c.retryConfig.MaxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			log.Printf("[AI] Request failed (attempt %d/%d): %v", attempt+1, c.retryConfig.MaxRetries+1, lastErr)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			if retryAfter := parseRetryAfter(resp); retryAfter > 0 {
				delay = retryAfter
			}
			lastErr = fmt.Errorf("rate limit exceeded (429): %s", string(body))
			log.Printf("[AI] Rate limit exceeded (attempt %d/%d), retry after %v", attempt+1, c.retryConfig.MaxRetries+1, delay)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var errorResp struct {
				Error *struct {
					Message string `json:"message"`
					Type    string `json:"type"`
				} `json:"error,omitempty"`
			}
			json.Unmarshal(body, &errorResp)

			errorMsg := string(body)
			if errorResp.Error != nil {
				errorMsg = errorResp.Error.Message
				if strings.Contains(strings.ToLower(errorMsg), "quota") ||
					strings.Contains(strings.ToLower(errorResp.Error.Type), "quota") {
					// Исчерпанная квота не лечится повтором
					return "", fmt.Errorf("quota exceeded: %s", errorMsg)
				}
			}

			lastErr = fmt.Errorf("API returned status %d: %s", resp.StatusCode, errorMsg)
			if resp.StatusCode >= 500 && attempt < c.retryConfig.MaxRetries {
				log.Printf("[AI] Server error %d (attempt %d/%d), will retry", resp.StatusCode, attempt+1, c.retryConfig.MaxRetries+1)
				continue
			}
			return "", lastErr
		}

		var response struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			continue
		}
		if len(response.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}

		return response.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// ChatJSON выполняет запрос и возвращает содержимое как чистый JSON:
// модели оборачивают ответ в markdown-блоки, их нужно снять.
func (c *Client) ChatJSON(ctx context.Context, system, user string) ([]byte, error) {
	content, err := c.ChatCompletion(ctx, []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
	if err != nil {
		return nil, err
	}
	return []byte(StripCodeFence(content)), nil
}

// StripCodeFence снимает markdown-обрамление ```json ... ``` с ответа модели.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	parts := strings.SplitN(content, "```", 3)
	if len(parts) < 2 {
		return content
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
