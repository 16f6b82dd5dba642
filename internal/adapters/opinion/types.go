package opinion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DTOs raw de la API de Opinion. Solo se usan dentro de este paquete.
// La conversión a domain.Topic se hace en mapping.go.

// envelope es el sobre común de todas las respuestas: {errno, errmsg, result: {list}}.
// Errno es nil si la respuesta no trae el campo, lo que también se trata como error.
type envelope[T any] struct {
	Errno  *int   `json:"errno"`
	Errmsg string `json:"errmsg"`
	Result struct {
		Total int `json:"total"`
		List  []T `json:"list"`
	} `json:"result"`
}

// rawTopic es un topic de GET /topic (y el topic anidado de GET /indicator).
type rawTopic struct {
	TopicID     flexString `json:"topicId"`
	Title       string     `json:"title"`
	YesPos      flexString `json:"yesPos"`
	NoPos       flexString `json:"noPos"`
	YesBuyPrice flexString `json:"yesBuyPrice"`
	NoBuyPrice  flexString `json:"noBuyPrice"`
	ChildList   []rawChild `json:"childList"`
}

// rawChild es una opción de un topic categórico.
type rawChild struct {
	TopicID     flexString `json:"topicId"`
	Title       string     `json:"title"`
	YesPos      flexString `json:"yesPos"`
	NoPos       flexString `json:"noPos"`
	YesBuyPrice flexString `json:"yesBuyPrice"`
	NoBuyPrice  flexString `json:"noBuyPrice"`
}

// rawIndicator es un registro de GET /indicator: el topic real viene anidado.
type rawIndicator struct {
	ID    flexString `json:"id"`
	Title string     `json:"title"`
	Topic *rawTopic  `json:"topic"`
}

// flexString acepta tanto strings como números JSON (la API mezcla ambos
// para ids y precios). null queda como string vacío.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flexString: unsupported value %s", string(b))
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }
