package opinion

import "github.com/alejandrodnm/opinionbot/internal/domain"

// topicRecord es la unión de los dos formatos de registro que devuelve la API.
// Cada variante sabe normalizarse a domain.Topic; ok=false descarta el registro.
type topicRecord interface {
	toTopic() (domain.Topic, bool)
}

// regularRecord es un registro de GET /topic.
type regularRecord struct{ rawTopic }

// indicatorRecord es un registro de GET /indicator.
type indicatorRecord struct{ rawIndicator }

func (r regularRecord) toTopic() (domain.Topic, bool) {
	return mapTopic(r.rawTopic, domain.TopicRegular), true
}

// toTopic usa el título del indicador en lugar del del topic anidado y
// guarda el id del indicador. Sin topic anidado no hay nada que operar.
func (r indicatorRecord) toTopic() (domain.Topic, bool) {
	if r.Topic == nil {
		return domain.Topic{}, false
	}
	t := mapTopic(*r.Topic, domain.TopicIndicator)
	if r.Title != "" {
		t.Title = r.Title
	}
	t.IndicatorID = r.ID.String()
	return t, true
}

// mapRecords convierte una página de registros a topics, preservando el orden.
func mapRecords[R topicRecord](recs []R) []domain.Topic {
	topics := make([]domain.Topic, 0, len(recs))
	for _, r := range recs {
		if t, ok := r.toTopic(); ok {
			topics = append(topics, t)
		}
	}
	return topics
}

func mapTopic(r rawTopic, typ domain.TopicType) domain.Topic {
	t := domain.Topic{
		TopicID:     r.TopicID.String(),
		Title:       r.Title,
		Type:        typ,
		YesToken:    r.YesPos.String(),
		NoToken:     r.NoPos.String(),
		YesBuyPrice: priceOrDefault(r.YesBuyPrice),
		NoBuyPrice:  priceOrDefault(r.NoBuyPrice),
	}
	if len(r.ChildList) > 0 {
		t.ChildList = make([]domain.ChildMarket, 0, len(r.ChildList))
		for _, c := range r.ChildList {
			t.ChildList = append(t.ChildList, mapChild(c))
		}
	}
	return t
}

func mapChild(c rawChild) domain.ChildMarket {
	return domain.ChildMarket{
		TopicID:     c.TopicID.String(),
		Title:       c.Title,
		YesToken:    c.YesPos.String(),
		NoToken:     c.NoPos.String(),
		YesBuyPrice: priceOrDefault(c.YesBuyPrice),
		NoBuyPrice:  priceOrDefault(c.NoBuyPrice),
	}
}

func priceOrDefault(p flexString) string {
	if p == "" {
		return domain.DefaultBuyPrice
	}
	return p.String()
}
