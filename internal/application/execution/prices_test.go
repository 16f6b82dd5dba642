package execution_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/opinionbot/internal/application/execution"
	"github.com/alejandrodnm/opinionbot/internal/domain"
)

func TestApplySafePrices(t *testing.T) {
	topics := []domain.Topic{
		{TopicID: "1", YesBuyPrice: "0.5", NoBuyPrice: "0.98"},
		{TopicID: "2", ChildList: []domain.ChildMarket{
			{TopicID: "3", YesBuyPrice: "0.18", NoBuyPrice: "n/a"},
			{TopicID: "4"},
		}},
	}

	out := execution.ApplySafePrices(topics, domain.DefaultSafeRate)
	require.Len(t, out, 2)

	assert.Equal(t, "0.525", out[0].YesBuyPrice)
	assert.Equal(t, "0.999", out[0].NoBuyPrice)
	assert.Equal(t, "0.189", out[1].ChildList[0].YesBuyPrice)
	assert.Equal(t, "n/a", out[1].ChildList[0].NoBuyPrice)
	assert.Equal(t, "0.525", out[1].ChildList[1].YesBuyPrice)

	// El input no se modifica
	assert.Equal(t, "0.5", topics[0].YesBuyPrice)
	assert.Equal(t, "0.18", topics[1].ChildList[0].YesBuyPrice)
	assert.Empty(t, topics[1].ChildList[1].YesBuyPrice)
}
