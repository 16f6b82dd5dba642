package execution

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/opinionbot/internal/domain"
)

// ApplySafePrices devuelve una copia de topics con domain.SafePrice aplicado
// a todos los precios de compra. Execute nunca lo llama: es un paso previo
// opcional. Los precios que no se pueden parsear se dejan como estaban.
func ApplySafePrices(topics []domain.Topic, rate decimal.Decimal) []domain.Topic {
	out := make([]domain.Topic, len(topics))
	for i, t := range topics {
		t.YesBuyPrice = safeOrKeep(t.YesBuyPrice, rate, t.TopicID)
		t.NoBuyPrice = safeOrKeep(t.NoBuyPrice, rate, t.TopicID)
		if len(t.ChildList) > 0 {
			children := make([]domain.ChildMarket, len(t.ChildList))
			for j, c := range t.ChildList {
				c.YesBuyPrice = safeOrKeep(c.YesBuyPrice, rate, c.TopicID)
				c.NoBuyPrice = safeOrKeep(c.NoBuyPrice, rate, c.TopicID)
				children[j] = c
			}
			t.ChildList = children
		}
		out[i] = t
	}
	return out
}

func safeOrKeep(price string, rate decimal.Decimal, topicID string) string {
	if price == "" {
		price = domain.DefaultBuyPrice
	}
	p, err := domain.SafePriceString(price, rate)
	if err != nil {
		slog.Warn("execution: keeping unparsable price", "topic", topicID, "price", price, "err", err)
		return price
	}
	return p
}
