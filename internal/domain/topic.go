package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultBuyPrice es el precio que se usa cuando la API no devuelve yesBuyPrice/noBuyPrice.
const DefaultBuyPrice = "0.5"

// DisplayTitleLen es el largo máximo del título en el listado del catálogo.
const DisplayTitleLen = 65

// ErrInvalidMarketID indica un topicId ausente o no numérico.
var ErrInvalidMarketID = errors.New("invalid market id")

// TopicType es la fuente de la que proviene un topic.
type TopicType string

const (
	TopicRegular   TopicType = "REGULAR"
	TopicIndicator TopicType = "INDICATOR"
)

// Label devuelve la etiqueta corta que se muestra en el listado: [R] o [I].
func (t TopicType) Label() string {
	if t == "" {
		return "[?]"
	}
	return "[" + string(t)[:1] + "]"
}

// TypeFilter selecciona qué fuentes se consultan al cargar el catálogo.
type TypeFilter string

const (
	FilterAll       TypeFilter = "ALL"
	FilterRegular   TypeFilter = "REGULAR"
	FilterIndicator TypeFilter = "INDICATOR"
)

// ParseTypeFilter acepta ALL | REGULAR | INDICATOR (case-insensitive).
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch f := TypeFilter(strings.ToUpper(strings.TrimSpace(s))); f {
	case FilterAll, FilterRegular, FilterIndicator:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("domain.ParseTypeFilter: unknown filter %q", s)
	}
}

// Includes devuelve true si el filtro pide la fuente dada.
func (f TypeFilter) Includes(t TopicType) bool {
	return f == FilterAll || string(f) == string(t)
}

// ChildMarket es un mercado binario dentro de un topic (una opción con su par YES/NO).
type ChildMarket struct {
	TopicID     string
	Title       string
	YesToken    string // vacío = no se puede operar el lado YES
	NoToken     string // vacío = no se puede operar el lado NO
	YesBuyPrice string
	NoBuyPrice  string
}

// Token devuelve el position token del lado dado.
func (c ChildMarket) Token(side Outcome) string {
	if side == OutcomeYes {
		return c.YesToken
	}
	return c.NoToken
}

// BuyPrice devuelve el precio declarado del lado dado, con DefaultBuyPrice como fallback.
func (c ChildMarket) BuyPrice(side Outcome) string {
	p := c.NoBuyPrice
	if side == OutcomeYes {
		p = c.YesBuyPrice
	}
	if p == "" {
		return DefaultBuyPrice
	}
	return p
}

// MarketID convierte el topicId del child al entero que espera el Order Service.
func (c ChildMarket) MarketID() (int64, error) {
	return parseMarketID(c.TopicID)
}

// Topic es un mercado de Opinion tal como lo muestra el catálogo.
// Un topic sin children es un mercado simple: sus propios tokens y precios
// se usan como único child (ver Children).
type Topic struct {
	TopicID     string
	Title       string
	Type        TopicType
	IndicatorID string // solo para topics INDICATOR
	ChildList   []ChildMarket

	YesToken    string
	NoToken     string
	YesBuyPrice string
	NoBuyPrice  string
}

// Children devuelve la lista de children, o el propio topic si la lista está vacía.
func (t Topic) Children() []ChildMarket {
	if len(t.ChildList) > 0 {
		return t.ChildList
	}
	return []ChildMarket{t.AsChild()}
}

// AsChild proyecta el topic como un ChildMarket.
func (t Topic) AsChild() ChildMarket {
	return ChildMarket{
		TopicID:     t.TopicID,
		Title:       t.Title,
		YesToken:    t.YesToken,
		NoToken:     t.NoToken,
		YesBuyPrice: t.YesBuyPrice,
		NoBuyPrice:  t.NoBuyPrice,
	}
}

// MarketID parsea el topicId del topic.
func (t Topic) MarketID() (int64, error) {
	return parseMarketID(t.TopicID)
}

// LegCount es el número de órdenes que genera el topic (2 por child).
func (t Topic) LegCount() int {
	return 2 * len(t.Children())
}

// DisplayTitle devuelve el título truncado a maxLen caracteres, o "No Title".
func (t Topic) DisplayTitle(maxLen int) string {
	return TruncateTitle(t.Title, maxLen)
}

// DisplayLabel es la línea del listado: "[R] [1201] título".
func (t Topic) DisplayLabel() string {
	return fmt.Sprintf("%s [%s] %s", t.Type.Label(), t.TopicID, t.DisplayTitle(DisplayTitleLen))
}

// TopicPage es una página cruda de una fuente del catálogo.
// Raw cuenta los registros tal como vinieron de la API, antes de descartar
// los que no se pueden mapear; es lo que decide si la página es la última.
type TopicPage struct {
	Topics []Topic
	Raw    int
}

// TruncateTitle recorta title a maxLen caracteres añadiendo "...".
func TruncateTitle(title string, maxLen int) string {
	if strings.TrimSpace(title) == "" || title == "Unknown" {
		return "No Title"
	}
	r := []rune(title)
	if maxLen > 0 && len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return title
}

func parseMarketID(id string) (int64, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, fmt.Errorf("%w: empty topicId", ErrInvalidMarketID)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMarketID, id)
	}
	return n, nil
}
