package commercetools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/athebyme/struct-commerce-sync/internal/metrics"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// Config параметры подключения к проекту Commercetools
type Config struct {
	ProjectKey   string
	AuthURL      string
	APIURL       string
	ClientID     string
	ClientSecret string
	Scopes       []string
	// RateLimit запросов в секунду, 0 отключает ограничение
	RateLimit float64
	Burst     int
	Timeout   time.Duration
}

// Client реализация CommercePort поверх HTTP API одного проекта
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     interfaces.LoggerPort
}

// NewClient создает клиента с токеном по client credentials
func NewClient(ctx context.Context, cfg Config, logger interfaces.LoggerPort) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("commercetools client credentials are required")
	}
	if cfg.AuthURL == "" {
		return nil, errors.New("commercetools auth url is required")
	}

	credentials := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     strings.TrimSuffix(cfg.AuthURL, "/") + "/oauth/token",
		Scopes:       cfg.Scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	httpClient := credentials.Client(ctx)
	httpClient.Timeout = cfg.Timeout
	return NewClientWithHTTP(cfg, httpClient, logger)
}

// NewClientWithHTTP использует готовый http.Client, авторизация остается на нем
func NewClientWithHTTP(cfg Config, httpClient *http.Client, logger interfaces.LoggerPort) (*Client, error) {
	if cfg.ProjectKey == "" {
		return nil, errors.New("commercetools project key is required")
	}
	if cfg.APIURL == "" {
		return nil, errors.New("commercetools api url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.APIURL, "/") + "/" + url.PathEscape(cfg.ProjectKey),
		limiter:    limiter,
		logger:     logger,
	}, nil
}

// errorBody тело ошибки Commercetools
type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// request описывает один вызов API
type request struct {
	method   string
	resource string
	path     string
	query    url.Values
	body     interface{}
}

// call выполняет запрос и декодирует ответ в T.
// 404 дает NotFound, остальные отказы RemoteError с текстом ответа.
func call[T any](ctx context.Context, c *Client, req request) interfaces.Result[T] {
	start := time.Now()
	result := doCall[T](ctx, c, req)

	metrics.CommerceDuration.WithLabelValues(req.method, req.resource).Observe(time.Since(start).Seconds())
	metrics.CommerceRequests.WithLabelValues(req.method, req.resource, result.Outcome.String()).Inc()

	if result.Outcome == interfaces.OutcomeRemoteError {
		c.logger.DebugWithContext(ctx, "Commercetools вернул ошибку",
			interfaces.LogField{Key: "method", Value: req.method},
			interfaces.LogField{Key: "path", Value: req.path},
			interfaces.LogField{Key: "message", Value: result.Message},
		)
	}
	return result
}

func doCall[T any](ctx context.Context, c *Client, req request) interfaces.Result[T] {
	if err := c.limiter.Wait(ctx); err != nil {
		return interfaces.RemoteError[T](err.Error())
	}

	var payload io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return interfaces.RemoteError[T](fmt.Sprintf("failed to marshal request body: %v", err))
		}
		payload = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, payload)
	if err != nil {
		return interfaces.RemoteError[T](fmt.Sprintf("failed to create request: %v", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		select {
		case <-ctx.Done():
			return interfaces.RemoteError[T](fmt.Sprintf("request was cancelled: %v", ctx.Err()))
		default:
			return interfaces.RemoteError[T](fmt.Sprintf("failed to execute request: %v", err))
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return interfaces.RemoteError[T](fmt.Sprintf("failed to read response body: %v", err))
	}

	if resp.StatusCode == http.StatusNotFound {
		return interfaces.NotFound[T]()
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return interfaces.RemoteError[T](remoteMessage(resp.StatusCode, body))
	}

	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		return interfaces.RemoteError[T](fmt.Sprintf("failed to unmarshal response: %v", err))
	}
	return interfaces.OK(value)
}

// remoteMessage тело 400 отдается как есть, для прочих статусов берется поле message
func remoteMessage(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if status == http.StatusBadRequest && trimmed != "" {
		return trimmed
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	if trimmed != "" {
		return fmt.Sprintf("status %d: %s", status, trimmed)
	}
	return fmt.Sprintf("status %d: %s", status, http.StatusText(status))
}

func byKey(collection, key string) string {
	return "/" + collection + "/key=" + url.PathEscape(key)
}

func byID(collection, id string) string {
	return "/" + collection + "/" + url.PathEscape(id)
}

func withVersion(version int64) url.Values {
	return url.Values{"version": []string{strconv.FormatInt(version, 10)}}
}

func withExpand(expand []string) url.Values {
	if len(expand) == 0 {
		return nil
	}
	return url.Values{"expand": expand}
}
