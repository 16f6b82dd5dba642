package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/opinionbot/config"
	"github.com/alejandrodnm/opinionbot/internal/domain"
)

type stubLoader struct {
	topics []domain.Topic
	limit  int
	filter domain.TypeFilter
}

func (l *stubLoader) Load(_ context.Context, limit int, filter domain.TypeFilter) ([]domain.Topic, error) {
	l.limit, l.filter = limit, filter
	return l.topics, nil
}

type stubEngine struct {
	called bool
	topics []domain.Topic
	amount decimal.Decimal
}

func (e *stubEngine) Execute(_ context.Context, topics []domain.Topic, amount decimal.Decimal) (domain.ExecutionResult, error) {
	e.called, e.topics, e.amount = true, topics, amount
	return domain.ExecutionResult{Succeeded: 2 * len(topics)}, nil
}

type stubPrinter struct {
	catalog []domain.Topic
	summary *domain.ExecutionResult
}

func (p *stubPrinter) PrintCatalog(topics []domain.Topic)      { p.catalog = topics }
func (p *stubPrinter) PrintSummary(res domain.ExecutionResult) { p.summary = &res }

func newSession(input string, topics []domain.Topic) (*session, *stubLoader, *stubEngine, *stubPrinter) {
	cfg := &config.Config{Order: config.OrderConfig{AmountUSDT: 5, TopicLimit: 30, TypeFilter: "REGULAR"}}
	l := &stubLoader{topics: topics}
	e := &stubEngine{}
	p := &stubPrinter{}
	return &session{
		cfg:     cfg,
		console: p,
		loader:  l,
		engine:  e,
		in:      strings.NewReader(input),
		out:     &bytes.Buffer{},
	}, l, e, p
}

func sampleTopics() []domain.Topic {
	return []domain.Topic{
		{TopicID: "1", YesToken: "y1", NoToken: "n1", YesBuyPrice: "0.5"},
		{TopicID: "2", YesToken: "y2", NoToken: "n2"},
		{TopicID: "3", YesToken: "y3", NoToken: "n3"},
	}
}

func TestSession_PromptedSelectionAndConfirm(t *testing.T) {
	s, l, e, p := newSession("1,3\ny\n", sampleTopics())

	require.NoError(t, s.run(context.Background(), "", false, false))

	assert.Equal(t, 30, l.limit)
	assert.Equal(t, domain.FilterRegular, l.filter)
	assert.Len(t, p.catalog, 3)
	require.True(t, e.called)
	require.Len(t, e.topics, 2)
	assert.Equal(t, "1", e.topics[0].TopicID)
	assert.Equal(t, "3", e.topics[1].TopicID)
	assert.Equal(t, "5", e.amount.String())
	require.NotNil(t, p.summary)
}

func TestSession_DeclinedConfirmation(t *testing.T) {
	s, _, e, _ := newSession("n\n", sampleTopics())

	err := s.run(context.Background(), "all", false, false)
	assert.ErrorIs(t, err, errAborted)
	assert.False(t, e.called)
}

func TestSession_ListOnly(t *testing.T) {
	s, _, e, p := newSession("", sampleTopics())

	require.NoError(t, s.run(context.Background(), "", false, true))
	assert.Len(t, p.catalog, 3)
	assert.False(t, e.called)
}

func TestSession_SafeRateAppliedBeforeExecute(t *testing.T) {
	s, _, e, _ := newSession("", sampleTopics())
	s.cfg.Order.SafeRate = 0.05

	require.NoError(t, s.run(context.Background(), "1", true, false))
	require.Len(t, e.topics, 1)
	assert.Equal(t, "0.525", e.topics[0].YesBuyPrice)
}

func TestSession_BadSelection(t *testing.T) {
	s, _, e, _ := newSession("", sampleTopics())

	assert.Error(t, s.run(context.Background(), "9", true, false))
	assert.False(t, e.called)
}
