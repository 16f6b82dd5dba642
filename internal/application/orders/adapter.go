package orders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/opinionbot/internal/domain"
	"github.com/alejandrodnm/opinionbot/internal/ports"
)

// Adapter normaliza las respuestas del Order Service a domain.SubmitResult.
// Submit nunca devuelve error ni deja escapar un panic: todo fallo es (false, mensaje).
type Adapter struct {
	svc ports.OrderService
}

// NewAdapter crea un Adapter sobre el Order Service dado.
func NewAdapter(svc ports.OrderService) *Adapter {
	return &Adapter{svc: svc}
}

// Submit envía la orden y devuelve (éxito, orderId) o (fallo, mensaje).
func (a *Adapter) Submit(ctx context.Context, intent domain.OrderIntent) (res domain.SubmitResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("orders: order service panicked",
				"market_id", intent.MarketID,
				"outcome", intent.Outcome,
				"panic", r,
			)
			res = domain.SubmitResult{Success: false, Payload: fmt.Sprintf("order service panic: %v", r)}
		}
	}()

	resp, err := a.svc.PlaceOrder(ctx, intent)
	if err != nil {
		return domain.SubmitResult{Success: false, Payload: err.Error()}
	}
	return Normalize(resp)
}

// Normalize traduce la respuesta cruda:
//   - errno != 0 → fallo con errmsg
//   - order id presente → éxito con el id
//   - cualquier otra cosa → éxito con la respuesta cruda como identificador
func Normalize(resp domain.PlaceOrderResponse) domain.SubmitResult {
	if resp.ErrCode != nil && *resp.ErrCode != 0 {
		msg := resp.ErrMsg
		if msg == "" {
			msg = fmt.Sprintf("order service errno %d", *resp.ErrCode)
		}
		return domain.SubmitResult{Success: false, Payload: msg}
	}
	if resp.OrderID != "" {
		return domain.SubmitResult{Success: true, Payload: resp.OrderID}
	}
	return domain.SubmitResult{Success: true, Payload: resp.Raw}
}
