package execution

// engine.go — ejecución de un batch de topics seleccionados.
//
// Orden estricto: topics en orden de selección, children en orden de lista,
// YES antes que NO. Cada pata intentada va seguida de una pausa fija de
// 500ms. Cada topic genera exactamente 2 × children resultados (éxito,
// fallo o skip contado como fallo). Un fallo dentro de un topic nunca
// aborta el batch.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/opinionbot/internal/application/pacing"
	"github.com/alejandrodnm/opinionbot/internal/domain"
	"github.com/alejandrodnm/opinionbot/internal/ports"
)

const LegPause = 500 * time.Millisecond

// ErrInvalidAmount se devuelve si el monto por orden no es positivo.
var ErrInvalidAmount = errors.New("quote amount per order must be positive")

// Submitter envía una orden y devuelve siempre un resultado. orders.Adapter lo implementa.
type Submitter interface {
	Submit(ctx context.Context, intent domain.OrderIntent) domain.SubmitResult
}

// Engine ejecuta batches de órdenes YES/NO.
type Engine struct {
	submitter Submitter
	reporter  ports.Reporter
	sleep     pacing.SleepFunc
	pause     time.Duration
	now       func() time.Time
	newID     func() string
}

// Option configura un Engine.
type Option func(*Engine)

// WithReporter envía los eventos de progreso a r.
func WithReporter(r ports.Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithSleep reemplaza la pausa entre patas (tests).
func WithSleep(fn pacing.SleepFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.sleep = fn
		}
	}
}

// New crea un Engine.
func New(submitter Submitter, opts ...Option) *Engine {
	e := &Engine{
		submitter: submitter,
		reporter:  ports.NopReporter,
		sleep:     pacing.Sleep,
		pause:     LegPause,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// batch es el estado de una ejecución. Solo lo toca el goroutine que ejecuta.
type batch struct {
	id     string
	amount decimal.Decimal
	total  int
	result domain.ExecutionResult
}

// tally cuenta las patas ya contabilizadas de un topic para saber cuántas
// quedan pendientes si el topic se interrumpe.
type tally struct {
	b       *batch
	counted int
}

func (t *tally) record(success bool) {
	t.b.result.Record(success)
	t.counted++
}

func (t *tally) fail(n int) {
	t.b.result.Fail(n)
	t.counted += n
}

// Execute procesa los topics en orden y devuelve el acumulado.
// Solo falla si quoteAmount no es positivo, y en ese caso no procesa nada.
// Si ctx se cancela, las patas que quedan se cuentan como fallidas sin enviarse.
func (e *Engine) Execute(ctx context.Context, topics []domain.Topic, quoteAmount decimal.Decimal) (domain.ExecutionResult, error) {
	if !quoteAmount.IsPositive() {
		return domain.ExecutionResult{}, fmt.Errorf("execution.Execute: %w (got %s)", ErrInvalidAmount, quoteAmount)
	}

	b := &batch{id: e.newID(), amount: quoteAmount, total: len(topics)}
	e.emit(b, domain.Event{Kind: domain.EventBatchStarted, TopicTotal: b.total, QuoteAmount: quoteAmount})
	slog.Info("execution: batch started", "batch", b.id, "topics", b.total, "amount", quoteAmount.String())

	for i := range topics {
		e.runTopic(ctx, b, i+1, topics[i])
	}

	e.emit(b, domain.Event{Kind: domain.EventBatchFinished, TopicTotal: b.total, Result: b.result})
	slog.Info("execution: batch finished",
		"batch", b.id,
		"succeeded", b.result.Succeeded,
		"failed", b.result.Failed,
	)
	return b.result, nil
}

// runTopic es la frontera de error de un topic: cualquier panic se recupera
// aquí y las patas pendientes del topic se cuentan como fallidas.
func (e *Engine) runTopic(ctx context.Context, b *batch, idx int, topic domain.Topic) {
	children := topic.Children()
	legs := 2 * len(children)
	t := &tally{b: b}
	tp := &topic

	defer func() {
		if r := recover(); r != nil {
			pending := legs - t.counted
			t.fail(pending)
			e.emit(b, domain.Event{Kind: domain.EventTopicFailed, TopicIndex: idx, TopicTotal: b.total, Topic: tp, Legs: pending, Err: fmt.Sprint(r)})
			slog.Error("execution: topic aborted", "batch", b.id, "topic", topic.TopicID, "pending_legs", pending, "panic", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		t.fail(legs)
		e.emit(b, domain.Event{Kind: domain.EventTopicFailed, TopicIndex: idx, TopicTotal: b.total, Topic: tp, Legs: legs, Err: err.Error()})
		return
	}

	if _, err := topic.MarketID(); err != nil {
		t.fail(legs)
		e.emit(b, domain.Event{Kind: domain.EventTopicInvalid, TopicIndex: idx, TopicTotal: b.total, Topic: tp, Legs: legs, Err: err.Error()})
		slog.Warn("execution: topic without valid id", "batch", b.id, "title", topic.Title, "err", err)
		return
	}

	e.emit(b, domain.Event{
		Kind:        domain.EventTopicStarted,
		TopicIndex:  idx,
		TopicTotal:  b.total,
		Topic:       tp,
		ChildTotal:  len(children),
		Legs:        legs,
		QuoteAmount: b.amount,
	})

	for ci := range children {
		if err := e.runChild(ctx, b, t, idx, ci+1, len(children), children[ci]); err != nil {
			pending := legs - t.counted
			t.fail(pending)
			e.emit(b, domain.Event{Kind: domain.EventTopicFailed, TopicIndex: idx, TopicTotal: b.total, Topic: tp, Legs: pending, Err: err.Error()})
			return
		}
	}
}

// runChild envía las dos patas de un child. Solo devuelve error si ctx se canceló.
func (e *Engine) runChild(ctx context.Context, b *batch, t *tally, topicIdx, childIdx, childTotal int, child domain.ChildMarket) error {
	cp := &child
	e.emit(b, domain.Event{Kind: domain.EventChildStarted, TopicIndex: topicIdx, ChildIndex: childIdx, ChildTotal: childTotal, Child: cp})

	marketID, err := child.MarketID()
	if err != nil {
		t.fail(2)
		e.emit(b, domain.Event{Kind: domain.EventChildInvalid, TopicIndex: topicIdx, ChildIndex: childIdx, Child: cp, Legs: 2, Err: err.Error()})
		return nil
	}

	for _, side := range domain.Outcomes {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled before %s leg: %w", side, err)
		}

		base := domain.Event{TopicIndex: topicIdx, ChildIndex: childIdx, ChildTotal: childTotal, Child: cp, Outcome: side}

		token := child.Token(side)
		if token == "" {
			t.record(false)
			ev := base
			ev.Kind = domain.EventLegSkipped
			e.emit(b, ev)
			continue
		}

		intent := domain.OrderIntent{
			MarketID:      marketID,
			PositionToken: token,
			Side:          domain.SideBuy,
			Type:          domain.OrderTypeLimit,
			Price:         child.BuyPrice(side),
			QuoteAmount:   b.amount,
			Outcome:       side,
		}

		ev := base
		ev.Kind = domain.EventLegSubmitting
		ev.Price = intent.Price
		ev.QuoteAmount = b.amount
		e.emit(b, ev)

		res := e.submitter.Submit(ctx, intent)
		t.record(res.Success)

		if res.Success {
			ev.Kind = domain.EventLegSucceeded
			ev.OrderID = res.Payload
		} else {
			ev.Kind = domain.EventLegFailed
			ev.Err = res.Payload
		}
		e.emit(b, ev)
		slog.Debug("execution: leg done",
			"batch", b.id,
			"market_id", marketID,
			"outcome", side,
			"price", intent.Price,
			"success", res.Success,
		)

		// La pausa se corta si ctx se cancela; la siguiente pata lo detecta
		_ = e.sleep(ctx, e.pause)
	}
	return nil
}

func (e *Engine) emit(b *batch, ev domain.Event) {
	ev.At = e.now()
	ev.BatchID = b.id
	e.reporter.Report(ev)
}
