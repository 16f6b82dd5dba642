package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic_ChildrenFallbackToSelf(t *testing.T) {
	topic := Topic{TopicID: "42", Title: "Will it rain?", YesToken: "tok1", YesBuyPrice: "0.61"}

	children := topic.Children()
	require.Len(t, children, 1)
	assert.Equal(t, "42", children[0].TopicID)
	assert.Equal(t, "tok1", children[0].YesToken)
	assert.Empty(t, children[0].NoToken)
	assert.Equal(t, 2, topic.LegCount())
}

func TestTopic_ChildrenDeclared(t *testing.T) {
	topic := Topic{TopicID: "1", ChildList: []ChildMarket{{TopicID: "2"}, {TopicID: "3"}, {TopicID: "4"}}}
	assert.Len(t, topic.Children(), 3)
	assert.Equal(t, 6, topic.LegCount())
}

func TestTopic_MarketID(t *testing.T) {
	id, err := Topic{TopicID: " 1234 "}.MarketID()
	require.NoError(t, err)
	assert.Equal(t, int64(1234), id)

	_, err = Topic{TopicID: "abc"}.MarketID()
	assert.True(t, errors.Is(err, ErrInvalidMarketID))

	_, err = Topic{}.MarketID()
	assert.True(t, errors.Is(err, ErrInvalidMarketID))
}

func TestChildMarket_BuyPriceDefault(t *testing.T) {
	c := ChildMarket{YesBuyPrice: "0.3"}
	assert.Equal(t, "0.3", c.BuyPrice(OutcomeYes))
	assert.Equal(t, DefaultBuyPrice, c.BuyPrice(OutcomeNo))
}

func TestParseTypeFilter(t *testing.T) {
	f, err := ParseTypeFilter("indicator")
	require.NoError(t, err)
	assert.Equal(t, FilterIndicator, f)
	assert.True(t, f.Includes(TopicIndicator))
	assert.False(t, f.Includes(TopicRegular))

	f, err = ParseTypeFilter("")
	require.NoError(t, err)
	assert.True(t, f.Includes(TopicRegular))
	assert.True(t, f.Includes(TopicIndicator))

	_, err = ParseTypeFilter("binary")
	assert.Error(t, err)
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "No Title", TruncateTitle("", 65))
	assert.Equal(t, "No Title", TruncateTitle("Unknown", 65))
	assert.Equal(t, "short", TruncateTitle("short", 65))

	long := strings.Repeat("A", 70)
	out := TruncateTitle(long, 65)
	assert.Equal(t, strings.Repeat("A", 65)+"...", out)
}

func TestTopicType_Label(t *testing.T) {
	assert.Equal(t, "[R]", TopicRegular.Label())
	assert.Equal(t, "[I]", TopicIndicator.Label())
}

func TestExecutionResult_RecordAndFail(t *testing.T) {
	var r ExecutionResult
	r.Record(true)
	r.Record(false)
	r.Fail(3)
	r.Fail(-1)
	assert.Equal(t, 1, r.Succeeded)
	assert.Equal(t, 4, r.Failed)
	assert.Equal(t, 5, r.Total())
}

func TestTopic_DisplayLabel(t *testing.T) {
	tp := Topic{TopicID: "1201", Title: "Will BNB close above $700?", Type: TopicRegular}
	assert.Equal(t, "[R] [1201] Will BNB close above $700?", tp.DisplayLabel())

	ind := Topic{TopicID: "2101", Type: TopicIndicator}
	assert.Equal(t, "[I] [2101] No Title", ind.DisplayLabel())
}
