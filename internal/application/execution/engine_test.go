package execution_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/opinionbot/internal/application/execution"
	"github.com/alejandrodnm/opinionbot/internal/domain"
	"github.com/alejandrodnm/opinionbot/internal/ports"
)

// fakeSubmitter registra cada intent y responde según fail/panicOn.
type fakeSubmitter struct {
	intents []domain.OrderIntent
	fail    map[string]bool // por token
	panicOn int64           // marketId que provoca panic
	onCall  func()
}

func (f *fakeSubmitter) Submit(_ context.Context, intent domain.OrderIntent) domain.SubmitResult {
	f.intents = append(f.intents, intent)
	if f.onCall != nil {
		f.onCall()
	}
	if f.panicOn != 0 && intent.MarketID == f.panicOn {
		panic("boom")
	}
	if f.fail[intent.PositionToken] {
		return domain.SubmitResult{Success: false, Payload: "rejected"}
	}
	return domain.SubmitResult{Success: true, Payload: "ord-" + intent.PositionToken}
}

type sleepCounter struct{ n int }

func (s *sleepCounter) sleep(ctx context.Context, _ time.Duration) error {
	s.n++
	return ctx.Err()
}

var five = decimal.RequireFromString("5")

func newEngine(sub execution.Submitter, sleeps *sleepCounter, events *[]domain.Event) *execution.Engine {
	opts := []execution.Option{execution.WithSleep(sleeps.sleep)}
	if events != nil {
		opts = append(opts, execution.WithReporter(ports.ReporterFunc(func(ev domain.Event) {
			*events = append(*events, ev)
		})))
	}
	return execution.New(sub, opts...)
}

func TestExecute_SimpleTopicMissingNoToken(t *testing.T) {
	sub := &fakeSubmitter{}
	sleeps := &sleepCounter{}
	e := newEngine(sub, sleeps, nil)

	topics := []domain.Topic{{TopicID: "1201", Title: "Single", YesToken: "tok1", YesBuyPrice: "0.62"}}
	res, err := e.Execute(context.Background(), topics, five)
	require.NoError(t, err)

	assert.Equal(t, domain.ExecutionResult{Succeeded: 1, Failed: 1}, res)
	require.Len(t, sub.intents, 1)
	assert.Equal(t, int64(1201), sub.intents[0].MarketID)
	assert.Equal(t, "tok1", sub.intents[0].PositionToken)
	assert.Equal(t, "0.62", sub.intents[0].Price)
	assert.Equal(t, domain.SideBuy, sub.intents[0].Side)
	assert.Equal(t, domain.OrderTypeLimit, sub.intents[0].Type)
	assert.True(t, five.Equal(sub.intents[0].QuoteAmount))
	assert.Equal(t, 1, sleeps.n, "skipped legs do not pause")
}

func TestExecute_InvalidTopicCountsAllLegs(t *testing.T) {
	sub := &fakeSubmitter{}
	e := newEngine(sub, &sleepCounter{}, nil)

	topics := []domain.Topic{
		{
			TopicID: "abc",
			ChildList: []domain.ChildMarket{
				{TopicID: "1", YesToken: "a", NoToken: "b"},
				{TopicID: "2", YesToken: "c", NoToken: "d"},
				{TopicID: "3", YesToken: "e", NoToken: "f"},
			},
		},
		{
			TopicID:   "900",
			ChildList: []domain.ChildMarket{{TopicID: "901", YesToken: "y", NoToken: "n"}},
		},
	}
	res, err := e.Execute(context.Background(), topics, five)
	require.NoError(t, err)

	assert.Equal(t, domain.ExecutionResult{Succeeded: 2, Failed: 6}, res)
	require.Len(t, sub.intents, 2)
	assert.Equal(t, int64(901), sub.intents[0].MarketID, "child topicId is the market id")
}

func TestExecute_YesBeforeNoInChildOrder(t *testing.T) {
	sub := &fakeSubmitter{}
	sleeps := &sleepCounter{}
	e := newEngine(sub, sleeps, nil)

	topics := []domain.Topic{{
		TopicID: "1302",
		ChildList: []domain.ChildMarket{
			{TopicID: "1303", YesToken: "y1", NoToken: "n1", YesBuyPrice: "0.18", NoBuyPrice: "0.83"},
			{TopicID: "1304", YesToken: "y2", NoToken: "n2"},
		},
	}}
	res, err := e.Execute(context.Background(), topics, five)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Succeeded)

	var tokens []string
	for _, in := range sub.intents {
		tokens = append(tokens, in.PositionToken)
	}
	assert.Equal(t, []string{"y1", "n1", "y2", "n2"}, tokens)
	assert.Equal(t, "0.83", sub.intents[1].Price)
	assert.Equal(t, domain.DefaultBuyPrice, sub.intents[2].Price)
	assert.Equal(t, 4, sleeps.n, "one pause after every submitted leg")
}

func TestExecute_ResultsCoverEveryLeg(t *testing.T) {
	sub := &fakeSubmitter{fail: map[string]bool{"n1": true, "y3": true}}
	e := newEngine(sub, &sleepCounter{}, nil)

	topics := []domain.Topic{
		{TopicID: "10", YesToken: "y0", NoToken: "n0"},
		{TopicID: "20", ChildList: []domain.ChildMarket{
			{TopicID: "21", YesToken: "y1", NoToken: "n1"},
			{TopicID: "x", YesToken: "y2", NoToken: "n2"},
			{TopicID: "23", YesToken: "y3"},
		}},
		{TopicID: "", YesToken: "y4", NoToken: "n4"},
	}
	res, err := e.Execute(context.Background(), topics, five)
	require.NoError(t, err)

	want := 0
	for _, tp := range topics {
		want += tp.LegCount()
	}
	assert.Equal(t, want, res.Total())
	assert.Equal(t, domain.ExecutionResult{Succeeded: 3, Failed: 7}, res)
}

func TestExecute_PanicIsolatedToTopic(t *testing.T) {
	sub := &fakeSubmitter{panicOn: 11}
	var events []domain.Event
	e := newEngine(sub, &sleepCounter{}, &events)

	topics := []domain.Topic{
		{TopicID: "10", ChildList: []domain.ChildMarket{
			{TopicID: "11", YesToken: "y1", NoToken: "n1"},
			{TopicID: "12", YesToken: "y2", NoToken: "n2"},
		}},
		{TopicID: "30", YesToken: "y3", NoToken: "n3"},
	}
	res, err := e.Execute(context.Background(), topics, five)
	require.NoError(t, err)

	assert.Equal(t, domain.ExecutionResult{Succeeded: 2, Failed: 4}, res)
	assert.Equal(t, int64(30), sub.intents[len(sub.intents)-1].MarketID, "next topic still runs")

	var failed []domain.Event
	for _, ev := range events {
		if ev.Kind == domain.EventTopicFailed {
			failed = append(failed, ev)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, 4, failed[0].Legs)
	assert.Contains(t, failed[0].Err, "boom")
}

func TestExecute_CancelCountsRemainingAsFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := &fakeSubmitter{}
	sub.onCall = func() { cancel() }
	e := newEngine(sub, &sleepCounter{}, nil)

	topics := []domain.Topic{
		{TopicID: "10", YesToken: "y0", NoToken: "n0"},
		{TopicID: "20", YesToken: "y1", NoToken: "n1"},
	}
	res, err := e.Execute(ctx, topics, five)
	require.NoError(t, err)

	assert.Len(t, sub.intents, 1)
	assert.Equal(t, domain.ExecutionResult{Succeeded: 1, Failed: 3}, res)
}

func TestExecute_InvalidAmount(t *testing.T) {
	sub := &fakeSubmitter{}
	e := newEngine(sub, &sleepCounter{}, nil)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.RequireFromString("-1")} {
		_, err := e.Execute(context.Background(), []domain.Topic{{TopicID: "1", YesToken: "y"}}, amount)
		assert.ErrorIs(t, err, execution.ErrInvalidAmount)
	}
	assert.Empty(t, sub.intents)
}

func TestExecute_EmptySelection(t *testing.T) {
	var events []domain.Event
	e := newEngine(&fakeSubmitter{}, &sleepCounter{}, &events)

	res, err := e.Execute(context.Background(), nil, five)
	require.NoError(t, err)
	assert.Zero(t, res.Total())
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventBatchStarted, events[0].Kind)
	assert.Equal(t, domain.EventBatchFinished, events[1].Kind)
	assert.Equal(t, events[0].BatchID, events[1].BatchID)
}

func TestExecute_LegEvents(t *testing.T) {
	var events []domain.Event
	e := newEngine(&fakeSubmitter{fail: map[string]bool{"n": true}}, &sleepCounter{}, &events)

	_, err := e.Execute(context.Background(), []domain.Topic{{TopicID: "5", YesToken: "y", NoToken: "n"}}, five)
	require.NoError(t, err)

	var kinds []domain.EventKind
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []domain.EventKind{
		domain.EventBatchStarted,
		domain.EventTopicStarted,
		domain.EventChildStarted,
		domain.EventLegSubmitting,
		domain.EventLegSucceeded,
		domain.EventLegSubmitting,
		domain.EventLegFailed,
		domain.EventBatchFinished,
	}, kinds)
	assert.Equal(t, "ord-y", events[4].OrderID)
	assert.Equal(t, "rejected", events[6].Err)
	assert.Equal(t, domain.ExecutionResult{Succeeded: 1, Failed: 1}, events[7].Result)
}
