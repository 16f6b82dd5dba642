package opinion

// topics.go — catálogo de topics de Opinion.
//
// Dos endpoints independientes con el mismo sobre pero distinto formato de
// registro: /topic devuelve topics, /indicator devuelve indicadores con el
// topic anidado. Ambos se normalizan a domain.Topic en mapping.go.

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/opinionbot/internal/domain"
)

const (
	topicPath     = "/topic"
	indicatorPath = "/indicator"

	bscChainID = "56"
)

// FetchTopicPage implementa ports.TopicSource.
func (c *Client) FetchTopicPage(ctx context.Context, src domain.TopicType, page, size int) (domain.TopicPage, error) {
	switch src {
	case domain.TopicRegular:
		var env envelope[regularRecord]
		if err := fetchList(ctx, c, topicPath, regularParams(page, size), &env); err != nil {
			return domain.TopicPage{}, fmt.Errorf("opinion.FetchTopicPage regular page %d: %w", page, err)
		}
		return domain.TopicPage{Topics: mapRecords(env.Result.List), Raw: len(env.Result.List)}, nil

	case domain.TopicIndicator:
		var env envelope[indicatorRecord]
		if err := fetchList(ctx, c, indicatorPath, indicatorParams(page, size), &env); err != nil {
			return domain.TopicPage{}, fmt.Errorf("opinion.FetchTopicPage indicator page %d: %w", page, err)
		}
		return domain.TopicPage{Topics: mapRecords(env.Result.List), Raw: len(env.Result.List)}, nil

	default:
		return domain.TopicPage{}, fmt.Errorf("opinion.FetchTopicPage: unknown source %q", src)
	}
}

// fetchList hace el GET y valida el errno del sobre.
func fetchList[T any](ctx context.Context, c *Client, path string, params url.Values, env *envelope[T]) error {
	if err := c.get(ctx, path, params, env); err != nil {
		return err
	}
	if env.Errno == nil {
		return &APIError{Errno: -1, Msg: "missing errno"}
	}
	if *env.Errno != 0 {
		return &APIError{Errno: *env.Errno, Msg: env.Errmsg}
	}
	return nil
}

// regularParams son los filtros fijos de /topic: topics activos y visibles de BSC.
func regularParams(page, size int) url.Values {
	v := pageParams(page, size)
	v.Set("sortBy", "1")
	v.Set("chainId", bscChainID)
	v.Set("status", "2") // ACTIVATED
	v.Set("isShow", "1")
	v.Set("topicType", "2")
	v.Set("indicatorType", "2")
	return v
}

func indicatorParams(page, size int) url.Values {
	v := pageParams(page, size)
	v.Set("chainId", bscChainID)
	return v
}

func pageParams(page, size int) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(size))
	return v
}
