package domain

import "github.com/shopspring/decimal"

// Outcome es el lado de un mercado binario.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// Outcomes es el orden en que se envían las patas de cada child: YES antes que NO.
var Outcomes = [2]Outcome{OutcomeYes, OutcomeNo}

// Side es el lado de la orden en el libro. Solo se usa BUY.
type Side string

const SideBuy Side = "BUY"

// OrderType es el tipo de orden. Solo se usa LIMIT.
type OrderType string

const OrderTypeLimit OrderType = "LIMIT"

// OrderIntent es una orden lista para el Order Service.
// Se construye, se envía y se descarta: no hay cola de reintentos.
type OrderIntent struct {
	MarketID      int64
	PositionToken string
	Side          Side
	Type          OrderType
	Price         string          // decimal string, se pasa tal cual
	QuoteAmount   decimal.Decimal // USDT por orden

	Outcome Outcome // informativo, para logs y eventos
}

// PlaceOrderResponse es la respuesta cruda del Order Service, antes de normalizar.
// ErrCode es nil cuando la respuesta no trae código de error.
type PlaceOrderResponse struct {
	ErrCode *int
	ErrMsg  string
	OrderID string
	Raw     string
}

// SubmitResult es el resultado uniforme de enviar una orden.
// Si Success, Payload es el order id; si no, el mensaje de error.
type SubmitResult struct {
	Success bool
	Payload string
}

// ExecutionResult acumula los resultados de un batch. Solo se incrementa.
type ExecutionResult struct {
	Succeeded int
	Failed    int
}

// Total devuelve el número de patas contabilizadas.
func (r ExecutionResult) Total() int {
	return r.Succeeded + r.Failed
}

// Record suma una pata según su resultado.
func (r *ExecutionResult) Record(success bool) {
	if success {
		r.Succeeded++
	} else {
		r.Failed++
	}
}

// Fail suma n patas fallidas.
func (r *ExecutionResult) Fail(n int) {
	if n > 0 {
		r.Failed += n
	}
}
