package ports

import (
	"context"

	"github.com/alejandrodnm/opinionbot/internal/domain"
)

// TopicSource obtiene páginas de topics del servicio de market data.
type TopicSource interface {
	// FetchTopicPage devuelve la página page (1-based) de la fuente src.
	// Los registros INDICATOR ya vienen normalizados a domain.Topic.
	FetchTopicPage(ctx context.Context, src domain.TopicType, page, size int) (domain.TopicPage, error)
}
