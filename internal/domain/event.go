package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventKind identifica el tipo de evento de progreso.
type EventKind string

const (
	// Catálogo
	EventLoadStarted   EventKind = "load_started"
	EventSourceLoaded  EventKind = "source_loaded"
	EventPageFetched   EventKind = "page_fetched"
	EventSourceStopped EventKind = "source_stopped" // la paginación terminó por error HTTP o errno
	EventCatalogLoaded EventKind = "catalog_loaded"

	// Ejecución
	EventBatchStarted  EventKind = "batch_started"
	EventTopicStarted  EventKind = "topic_started"
	EventTopicInvalid  EventKind = "topic_invalid" // topicId ausente o no numérico
	EventTopicFailed   EventKind = "topic_failed"  // error inesperado dentro del topic
	EventChildStarted  EventKind = "child_started"
	EventChildInvalid  EventKind = "child_invalid"
	EventLegSubmitting EventKind = "leg_submitting"
	EventLegSucceeded  EventKind = "leg_succeeded"
	EventLegFailed     EventKind = "leg_failed"
	EventLegSkipped    EventKind = "leg_skipped" // sin position token
	EventBatchFinished EventKind = "batch_finished"
)

// Event es un evento estructurado que el core emite hacia la capa de presentación.
// Solo se rellenan los campos relevantes para cada Kind.
type Event struct {
	Kind    EventKind
	At      time.Time
	BatchID string

	// Catálogo
	Source TopicType
	Filter TypeFilter
	Target int
	Page   int
	Count  int

	// Ejecución
	TopicIndex  int // 1-based
	TopicTotal  int
	Topic       *Topic
	ChildIndex  int // 1-based
	ChildTotal  int
	Child       *ChildMarket
	Outcome     Outcome
	Price       string
	QuoteAmount decimal.Decimal
	OrderID     string
	Legs        int // patas afectadas (TopicInvalid, TopicFailed)
	Result      ExecutionResult

	Err string
}
