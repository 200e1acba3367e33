// Package domopult is a typed client for the housing-services tenant API.
//
// Login endpoints return the bearer token as the raw response body; every
// authenticated call carries it in the X-Auth-Tenant-Token header. Non-2xx
// responses are reported as *StatusError with the body preserved.
package domopult

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"github.com/akhromov/domobot/core/logger"
)

const (
	defaultTimeout = 15 * time.Second

	maxErrorBody = 4 * 1024
)

// Config declares upstream API settings.
type Config struct {
	BaseURL        string `yaml:"base_url" envconfig:"DOMOPULT_BASE_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"DOMOPULT_TIMEOUT_SECONDS"`
}

// API performs requests against the tenant service.
type API struct {
	baseURL string
	http    *http.Client
}

// New builds an API client from config. A nil httpClient gets a timeout-bound default.
func New(cfg Config, httpClient *http.Client) (*API, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("domopult: base_url is required")
	}
	if httpClient == nil {
		timeout := defaultTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &API{baseURL: base, http: httpClient}, nil
}

// RequestSMSCode asks the API to send a login code to the given phone.
func (c *API) RequestSMSCode(ctx context.Context, phone string) error {
	_, err := c.do(ctx, http.MethodPost, "/tenants-registration/code", "", map[string]string{
		"phone": phone,
	})
	return err
}

// LoginByCode exchanges phone+SMS code for a tenant token.
func (c *API) LoginByCode(ctx context.Context, phone, code string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/tenants-registration/login", "", map[string]string{
		"phone": phone,
		"code":  code,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// LoginByPassword exchanges email+password for a tenant token.
func (c *API) LoginByPassword(ctx context.Context, email, password string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/tenants-registration/login", "", map[string]string{
		"email":       email,
		"password":    password,
		"loginMethod": "PERSONAL_OFFICE",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// ConfigurationItems lists the tenant's housing units with their accounts.
func (c *API) ConfigurationItems(ctx context.Context, token string) (*ConfigurationItems, error) {
	body, err := c.do(ctx, http.MethodGet, "/clients/configuration-items", token, nil)
	if err != nil {
		return nil, err
	}
	var items ConfigurationItems
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("domopult: decode configuration items: %w", err)
	}
	return &items, nil
}

// PaymentsDetail fetches the first page of payment details for an account.
func (c *API) PaymentsDetail(ctx context.Context, token, accountID string) (*PaymentsPage, error) {
	path := fmt.Sprintf("/personal_account/payments/%s?query=&sort=&page=0&size=15", url.PathEscape(accountID))
	body, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	var page PaymentsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("domopult: decode payments page: %w", err)
	}
	return &page, nil
}

// Meters lists metering devices for a configuration item.
func (c *API) Meters(ctx context.Context, token string, configItemID int64) ([]MeterEntry, error) {
	path := fmt.Sprintf("/clients/meters/for-item/%d", configItemID)
	body, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	var entries []MeterEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("domopult: decode meters: %w", err)
	}
	return entries, nil
}

// SubmitMeterValue posts a new reading for the given meter.
func (c *API) SubmitMeterValue(ctx context.Context, token string, meterID int64, value string) error {
	path := fmt.Sprintf("/clients/meters/%d/values?withOptionalCheck=true", meterID)
	_, err := c.do(ctx, http.MethodPost, path, token, map[string]string{
		"value1": value,
	})
	return err
}

// ReceiptPDF downloads the receipt for the given period. The date must be the
// first day of the month in YYYY-MM-DD form; a 400 response means the receipt
// is not available for the period.
func (c *API) ReceiptPDF(ctx context.Context, token, accountID, date string) ([]byte, error) {
	path := fmt.Sprintf("/personal_account/receipts_by_period/%s?date=%s&serviceType=UTILITIES",
		url.PathEscape(accountID), url.QueryEscape(date))
	return c.do(ctx, http.MethodGet, path, token, nil)
}

// upLog falls back to the default slog logger before InitLogger has run.
func upLog() *slog.Logger {
	if logger.UP != nil {
		return logger.UP
	}
	return slog.Default()
}

func (c *API) do(ctx context.Context, method, path, token string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("domopult: encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("domopult: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Auth-Tenant-Token", token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		upLog().Warn("upstream request failed",
			slog.String("event", "request"),
			slog.String("status", "fail"),
			slog.String("op", method+" "+endpointOf(path)),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("domopult: %s %s: %w", method, endpointOf(path), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("domopult: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upLog().Warn("upstream error status",
			slog.String("event", "request"),
			slog.String("status", "fail"),
			slog.String("op", method+" "+endpointOf(path)),
			slog.Int("http_code", resp.StatusCode),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBody),
		}
	}

	if logger.ShouldSampleDebug() {
		upLog().Debug("upstream request",
			slog.String("event", "request"),
			slog.String("status", "ok"),
			slog.String("op", method+" "+endpointOf(path)),
			slog.Int("http_code", resp.StatusCode),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
	}

	return body, nil
}

// endpointOf strips the query string so tokensless paths can be logged safely.
func endpointOf(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
