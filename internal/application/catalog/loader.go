package catalog

// loader.go — carga del catálogo de topics.
//
// Dos fuentes paginadas por separado (REGULAR e INDICATOR) con la misma
// política: páginas de 20, pausa fija de 200ms entre páginas, y la
// paginación se corta sin error ante HTTP no exitoso, errno != 0, página
// vacía o página incompleta. Quedarse sin datos es terminación normal.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/opinionbot/internal/application/pacing"
	"github.com/alejandrodnm/opinionbot/internal/domain"
	"github.com/alejandrodnm/opinionbot/internal/ports"
)

const (
	PageSize  = 20
	PagePause = 200 * time.Millisecond
)

// ErrInvalidLimit se devuelve si targetLimit < 1, antes de tocar la red.
var ErrInvalidLimit = errors.New("target limit must be at least 1")

// Loader orquesta la paginación de ambas fuentes y el merge.
type Loader struct {
	src      ports.TopicSource
	reporter ports.Reporter
	sleep    pacing.SleepFunc
	pause    time.Duration
	now      func() time.Time
}

// Option configura un Loader.
type Option func(*Loader)

// WithReporter envía los eventos de progreso a r.
func WithReporter(r ports.Reporter) Option {
	return func(l *Loader) {
		if r != nil {
			l.reporter = r
		}
	}
}

// WithSleep reemplaza la pausa entre páginas (tests).
func WithSleep(fn pacing.SleepFunc) Option {
	return func(l *Loader) {
		if fn != nil {
			l.sleep = fn
		}
	}
}

// New crea un Loader sobre la fuente dada.
func New(src ports.TopicSource, opts ...Option) *Loader {
	l := &Loader{
		src:      src,
		reporter: ports.NopReporter,
		sleep:    pacing.Sleep,
		pause:    PagePause,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load carga hasta targetLimit topics. Con FilterAll los REGULAR van siempre
// antes que los INDICATOR; el resultado se trunca a targetLimit.
// Solo devuelve error si los argumentos son inválidos: los fallos de una
// fuente la dejan con los registros que alcanzó a traer.
func (l *Loader) Load(ctx context.Context, targetLimit int, filter domain.TypeFilter) ([]domain.Topic, error) {
	if targetLimit < 1 {
		return nil, fmt.Errorf("catalog.Load: %w (got %d)", ErrInvalidLimit, targetLimit)
	}
	if filter == "" {
		filter = domain.FilterAll
	}
	if _, err := domain.ParseTypeFilter(string(filter)); err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}

	l.emit(domain.Event{Kind: domain.EventLoadStarted, Target: targetLimit, Filter: filter})
	slog.Info("catalog: loading topics", "target", targetLimit, "filter", filter)

	var all []domain.Topic
	for _, src := range []domain.TopicType{domain.TopicRegular, domain.TopicIndicator} {
		if !filter.Includes(src) {
			continue
		}
		topics := l.FetchPaginated(ctx, src, targetLimit)
		l.emit(domain.Event{Kind: domain.EventSourceLoaded, Source: src, Count: len(topics)})
		slog.Info("catalog: source loaded", "source", src, "count", len(topics))
		all = append(all, topics...)
	}

	if len(all) > targetLimit {
		all = all[:targetLimit]
	}

	l.emit(domain.Event{Kind: domain.EventCatalogLoaded, Count: len(all), Target: targetLimit, Filter: filter})
	return all, nil
}

// FetchPaginated recorre las páginas de src hasta juntar targetLimit topics
// o hasta que la fuente deje de devolver datos. Nunca devuelve error.
func (l *Loader) FetchPaginated(ctx context.Context, src domain.TopicType, targetLimit int) []domain.Topic {
	var acc []domain.Topic

	for page := 1; len(acc) < targetLimit; page++ {
		p, err := l.src.FetchTopicPage(ctx, src, page, PageSize)
		if err != nil {
			slog.Warn("catalog: pagination stopped", "source", src, "page", page, "err", err)
			l.emit(domain.Event{Kind: domain.EventSourceStopped, Source: src, Page: page, Count: len(acc), Err: err.Error()})
			break
		}
		if p.Raw == 0 {
			break
		}

		acc = append(acc, p.Topics...)
		l.emit(domain.Event{Kind: domain.EventPageFetched, Source: src, Page: page, Count: len(acc)})
		slog.Debug("catalog: page fetched",
			"source", src,
			"page", page,
			"records", p.Raw,
			"total", len(acc),
		)

		// Página incompleta = última página
		if p.Raw < PageSize || len(acc) >= targetLimit {
			break
		}

		if err := l.sleep(ctx, l.pause); err != nil {
			slog.Warn("catalog: pagination interrupted", "source", src, "page", page, "err", err)
			break
		}
	}

	if len(acc) > targetLimit {
		acc = acc[:targetLimit]
	}
	return acc
}

func (l *Loader) emit(ev domain.Event) {
	ev.At = l.now()
	l.reporter.Report(ev)
}
