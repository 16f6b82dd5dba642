package ports

import (
	"context"

	"github.com/alejandrodnm/opinionbot/internal/domain"
)

// OrderService es el servicio externo que firma y envía órdenes.
// El core no conoce su formato: solo consume la respuesta cruda a través de orders.Adapter.
type OrderService interface {
	PlaceOrder(ctx context.Context, intent domain.OrderIntent) (domain.PlaceOrderResponse, error)
}
