package orderservice

// client.go — cliente del Order Service externo.
//
// El Order Service es quien firma (EIP-712) y envía la orden a la cadena.
// Aquí solo se traduce domain.OrderIntent a su request y se devuelve la
// respuesta cruda; la normalización a éxito/fallo vive en application/orders.
// Una orden nunca se reintenta: un POST repetido podría duplicarla.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/opinionbot/internal/domain"
)

const (
	DefaultBaseURL = "http://127.0.0.1:7070"
	placeOrderPath = "/v1/orders"

	// El engine ya espacia las patas 500ms; el limiter es el techo duro.
	orderRatePerSec = 4
	orderBurst      = 1

	requestTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Credentials son los datos de la cuenta que el Order Service usa para firmar.
// La clave privada no sale de este proceso: el servicio tiene su propio signer
// y estos campos le indican con qué cuenta operar.
type Credentials struct {
	APIKey        string
	SignerAddress string
	MakerAddress  string
	RPCURL        string
	ChainID       int64
}

// Client implementa ports.OrderService contra el Order Service HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	creds   Credentials
	limiter *rate.Limiter
}

// NewClient crea un Client. Si baseURL está vacío usa DefaultBaseURL.
func NewClient(baseURL string, creds Credentials) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: requestTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		limiter: rate.NewLimiter(orderRatePerSec, orderBurst),
	}
}

// placeOrderRequest es el body de POST /v1/orders.
type placeOrderRequest struct {
	MarketID                int64  `json:"marketId"`
	TokenID                 string `json:"tokenId"`
	Side                    string `json:"side"`
	OrderType               string `json:"orderType"`
	Price                   string `json:"price"`
	MakerAmountInQuoteToken string `json:"makerAmountInQuoteToken"`
	ChainID                 int64  `json:"chainId"`
	Signer                  string `json:"signer"`
	Maker                   string `json:"maker"`
	RPCURL                  string `json:"rpcUrl,omitempty"`
}

// placeOrderResponse es el sobre de respuesta. Errno es nil si no viene.
type placeOrderResponse struct {
	Errno  *int   `json:"errno"`
	Errmsg string `json:"errmsg"`
	Result *struct {
		OrderData *struct {
			OrderID json.RawMessage `json:"orderId"`
		} `json:"orderData"`
	} `json:"result"`
}

// PlaceOrder envía la orden y devuelve la respuesta sin interpretar.
// Solo devuelve error ante fallos de transporte o HTTP no exitoso.
func (c *Client) PlaceOrder(ctx context.Context, intent domain.OrderIntent) (domain.PlaceOrderResponse, error) {
	body := placeOrderRequest{
		MarketID:                intent.MarketID,
		TokenID:                 intent.PositionToken,
		Side:                    string(intent.Side),
		OrderType:               string(intent.Type),
		Price:                   intent.Price,
		MakerAmountInQuoteToken: intent.QuoteAmount.String(),
		ChainID:                 c.creds.ChainID,
		Signer:                  c.creds.SignerAddress,
		Maker:                   c.creds.MakerAddress,
		RPCURL:                  c.creds.RPCURL,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return domain.PlaceOrderResponse{}, fmt.Errorf("orderservice.PlaceOrder: marshal: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.PlaceOrderResponse{}, fmt.Errorf("orderservice.PlaceOrder: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+placeOrderPath, bytes.NewReader(b))
	if err != nil {
		return domain.PlaceOrderResponse{}, fmt.Errorf("orderservice.PlaceOrder: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.creds.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.PlaceOrderResponse{}, fmt.Errorf("orderservice.PlaceOrder: post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PlaceOrderResponse{}, fmt.Errorf("orderservice.PlaceOrder: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return domain.PlaceOrderResponse{}, fmt.Errorf("orderservice.PlaceOrder: status %d: %s", resp.StatusCode, raw)
	}

	return parseResponse(raw), nil
}

// parseResponse interpreta el sobre si puede; si el body no es un sobre
// conocido devuelve solo Raw y deja que el adapter decida.
func parseResponse(raw []byte) domain.PlaceOrderResponse {
	out := domain.PlaceOrderResponse{Raw: strings.TrimSpace(string(raw))}

	var env placeOrderResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return out
	}

	out.ErrCode = env.Errno
	out.ErrMsg = env.Errmsg
	if env.Result != nil && env.Result.OrderData != nil {
		out.OrderID = rawID(env.Result.OrderData.OrderID)
	}
	return out
}

// rawID acepta ids string o numéricos.
func rawID(m json.RawMessage) string {
	if len(m) == 0 || string(m) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(m, &s); err == nil {
		return s
	}
	return string(m)
}
