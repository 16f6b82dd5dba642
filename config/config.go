package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/opinionbot/internal/domain"
)

// ErrMissingCredential indica que falta una credencial obligatoria.
var ErrMissingCredential = errors.New("missing credential")

// Config es la configuración completa del bot.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Chain   ChainConfig   `yaml:"chain"`
	Account AccountConfig `yaml:"account"`
	Order   OrderConfig   `yaml:"order"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig contiene los endpoints y la API key.
type APIConfig struct {
	Host            string `yaml:"host"`              // market data, sin prefijo
	Prefix          string `yaml:"prefix"`            // /api/bsc/api/v2
	OrderServiceURL string `yaml:"order_service_url"` // servicio externo que firma y envía
	Key             string `yaml:"key"`               // normalmente vía API_KEY
}

// ChainConfig identifica la red.
type ChainConfig struct {
	RPCURL  string `yaml:"rpc_url"`
	ChainID int64  `yaml:"chain_id"`
}

// AccountConfig son los datos de la cuenta. La clave privada solo se usa en
// Validate para comprobar que corresponde al signer.
type AccountConfig struct {
	PrivateKey    string `yaml:"private_key"`
	SignerAddress string `yaml:"signer_address"`
	MakerAddress  string `yaml:"maker_address"` // multisig; si está vacío se usa el signer
}

// OrderConfig controla la carga del catálogo y el monto por orden.
type OrderConfig struct {
	AmountUSDT float64 `yaml:"amount_usdt"`
	TopicLimit int     `yaml:"topic_limit"`
	TypeFilter string  `yaml:"type_filter"` // ALL | REGULAR | INDICATOR
	SafeRate   float64 `yaml:"safe_rate"`   // 0 = precios tal cual
}

// MetricsConfig controla el listener de Prometheus. Addr vacío = desactivado.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Si el YAML no existe se usan los defaults: todo lo sensible viene del entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// MarketDataURL es la base de los endpoints /topic e /indicator.
func (c *Config) MarketDataURL() string {
	return strings.TrimRight(c.API.Host, "/") + "/" + strings.Trim(c.API.Prefix, "/")
}

// QuoteAmount devuelve el monto por orden como decimal.
func (c *Config) QuoteAmount() decimal.Decimal {
	return decimal.NewFromFloat(c.Order.AmountUSDT)
}

// SafeRate devuelve el margen de safe-price; cero si está desactivado.
func (c *Config) SafeRate() decimal.Decimal {
	return decimal.NewFromFloat(c.Order.SafeRate)
}

// Validate es el chequeo previo a cualquier operación: acumula todos los
// problemas en un solo error. Si el signer está vacío lo deriva de la clave;
// si el maker está vacío usa el signer.
func (c *Config) Validate() error {
	var err error

	if c.API.Key == "" {
		err = multierr.Append(err, fmt.Errorf("%w: API_KEY", ErrMissingCredential))
	}

	var key *ecdsa.PrivateKey
	if c.Account.PrivateKey == "" {
		err = multierr.Append(err, fmt.Errorf("%w: PRIVATE_KEY", ErrMissingCredential))
	} else {
		k, kerr := crypto.HexToECDSA(strings.TrimPrefix(c.Account.PrivateKey, "0x"))
		if kerr != nil {
			err = multierr.Append(err, fmt.Errorf("account.private_key: %w", kerr))
		} else {
			key = k
		}
	}

	if c.Account.SignerAddress != "" && !common.IsHexAddress(c.Account.SignerAddress) {
		err = multierr.Append(err, fmt.Errorf("account.signer_address %q is not a hex address", c.Account.SignerAddress))
	}
	if c.Account.MakerAddress != "" && !common.IsHexAddress(c.Account.MakerAddress) {
		err = multierr.Append(err, fmt.Errorf("account.maker_address %q is not a hex address", c.Account.MakerAddress))
	}

	if key != nil {
		derived := crypto.PubkeyToAddress(key.PublicKey)
		switch {
		case c.Account.SignerAddress == "":
			c.Account.SignerAddress = derived.Hex()
		case common.IsHexAddress(c.Account.SignerAddress) && common.HexToAddress(c.Account.SignerAddress) != derived:
			err = multierr.Append(err, fmt.Errorf("account.signer_address %s does not match private key (%s)", c.Account.SignerAddress, derived.Hex()))
		}
	}
	if c.Account.MakerAddress == "" {
		c.Account.MakerAddress = c.Account.SignerAddress
	}

	if c.Order.AmountUSDT <= 0 {
		err = multierr.Append(err, fmt.Errorf("order.amount_usdt must be positive (got %v)", c.Order.AmountUSDT))
	}
	if c.Order.TopicLimit < 1 {
		err = multierr.Append(err, fmt.Errorf("order.topic_limit must be at least 1 (got %d)", c.Order.TopicLimit))
	}
	if _, ferr := domain.ParseTypeFilter(c.Order.TypeFilter); ferr != nil {
		err = multierr.Append(err, ferr)
	}
	if c.Order.SafeRate < 0 {
		err = multierr.Append(err, fmt.Errorf("order.safe_rate must not be negative (got %v)", c.Order.SafeRate))
	}
	if c.Chain.ChainID <= 0 {
		err = multierr.Append(err, fmt.Errorf("chain.chain_id must be positive (got %d)", c.Chain.ChainID))
	}

	if err != nil {
		return fmt.Errorf("config.Validate: %w", err)
	}
	return nil
}

// Redact deja los primeros 8 caracteres de un secreto para los logs.
func Redact(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:8] + "..."
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"API_KEY":           &cfg.API.Key,
		"ORDER_SERVICE_URL": &cfg.API.OrderServiceURL,
		"RPC_URL":           &cfg.Chain.RPCURL,
		"PRIVATE_KEY":       &cfg.Account.PrivateKey,
		"SIGNER_ADDRESS":    &cfg.Account.SignerAddress,
		"MAKER_ADDRESS":     &cfg.Account.MakerAddress,
		"LOG_LEVEL":         &cfg.Log.Level,
		"LOG_FORMAT":        &cfg.Log.Format,
	}
	for env, dst := range strs {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("ORDER_AMOUNT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ORDER_AMOUNT %q: %w", v, err)
		}
		cfg.Order.AmountUSDT = f
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.API.Host == "" {
		cfg.API.Host = "https://proxy.opinion.trade:8443"
	}
	if cfg.API.Prefix == "" {
		cfg.API.Prefix = "/api/bsc/api/v2"
	}
	if cfg.API.OrderServiceURL == "" {
		cfg.API.OrderServiceURL = "http://127.0.0.1:7070"
	}
	if cfg.Chain.RPCURL == "" {
		cfg.Chain.RPCURL = "https://bsc-dataseed.binance.org"
	}
	if cfg.Chain.ChainID == 0 {
		cfg.Chain.ChainID = 56
	}
	if cfg.Order.AmountUSDT == 0 {
		cfg.Order.AmountUSDT = 5.0
	}
	if cfg.Order.TopicLimit == 0 {
		cfg.Order.TopicLimit = 50
	}
	if cfg.Order.TypeFilter == "" {
		cfg.Order.TypeFilter = string(domain.FilterAll)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
