package opinion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://proxy.opinion.trade:8443/api/bsc/api/v2"

	// Presupuesto global del cliente. La paginación ya mete su propia pausa
	// entre páginas; esto solo protege ante usos concurrentes del cliente.
	marketDataRatePerSec = 10
	marketDataBurst      = 5

	requestTimeout = 15 * time.Second
	maxErrorBody   = 512
)

// StatusError es una respuesta HTTP no exitosa.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.Code, e.Body)
}

// APIError es un sobre con errno distinto de 0 (o sin errno).
type APIError struct {
	Errno int
	Msg   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api errno %d: %s", e.Errno, e.Msg)
}

// IsAPIError devuelve true si err es (o envuelve) un *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// Client es el HTTP client del servicio de market data de Opinion.
// Todas las requests llevan el header apikey.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient crea un Client contra baseURL. Si baseURL está vacío usa el de producción.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: requestTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(marketDataRatePerSec, marketDataBurst),
	}
}

// get hace un GET con query params y decodifica el JSON en out.
// No reintenta: para la paginación cualquier fallo significa "no hay más datos".
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	slog.Debug("opinion: GET ok", "path", path, "page", params.Get("page"))
	return nil
}
