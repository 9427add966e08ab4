package lookup

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Candidate организация, найденная внешним поиском.
// Кандидат ещё не проверен: принимает его или нет — Validator.
type Candidate struct {
	Name    string
	INN     string
	Address string
	Source  string // слой парсинга, давший результат: list, card, regex
}

// RetryConfig конфигурация повторных попыток
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// ClientConfig конфигурация клиента внешнего поиска
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit rate.Limit
	Retry     RetryConfig
}

// Client клиент поиска организаций на RusProfile.
// Вёрстка сайта ненадёжна, поэтому парсинг слоёный: список результатов,
// затем карточка по ссылке из списка, затем regex по сырому HTML.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryConfig
}

// NewClient создает новый клиент внешнего поиска
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://www.rusprofile.ru"
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = rate.Every(2 * time.Second) // минимальная пауза между запросами
	}
	if config.Retry.MaxRetries == 0 {
		config.Retry = RetryConfig{
			MaxRetries:        2,
			InitialDelay:      500 * time.Millisecond,
			MaxDelay:          5 * time.Second,
			BackoffMultiplier: 2.0,
		}
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 5,
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(config.RateLimit, 1),
		retry:   config.Retry,
	}
}

// Find ищет организацию по названию.
// Возвращает nil без ошибки, если ни один слой парсинга не дал кандидата.
func (c *Client) Find(ctx context.Context, query string) (*Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}

	searchURL := c.baseURL + "/search?query=" + url.QueryEscape(query)
	html, err := c.fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	// Слой 1: первый элемент списка результатов
	if cand := parseListItem(html); cand != nil {
		return cand, nil
	}

	// Слой 2: карточка по ссылке из списка
	if href := cardLink(html); href != "" {
		cardHTML, err := c.fetch(ctx, c.baseURL+href)
		if err != nil {
			log.Printf("[LOOKUP] card fetch failed for %q: %v", query, err)
		} else if cand := parseCard(cardHTML); cand != nil {
			return cand, nil
		}
	}

	// Слой 3: сам ответ поиска мог оказаться карточкой (прямой редирект)
	if cand := parseCard(html); cand != nil {
		return cand, nil
	}

	// Слой 4: regex по сырому HTML
	return parseRaw(html), nil
}

// fetch выполняет GET с учётом лимитера и ограниченными повторами.
func (c *Client) fetch(ctx context.Context, rawURL string) (string, error) {
	var lastErr error
	delay := c.retry.InitialDelay

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			delay = time.Duration(float64(delay) * c.retry.BackoffMultiplier)
			if delay > c.retry.MaxDelay {
				delay = c.retry.MaxDelay
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}

		body, err := c.doRequest(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("all %d attempts failed: %w", c.retry.MaxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Заголовки для имитации браузера
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}
