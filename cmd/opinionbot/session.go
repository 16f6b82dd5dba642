package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/opinionbot/config"
	"github.com/alejandrodnm/opinionbot/internal/application/execution"
	"github.com/alejandrodnm/opinionbot/internal/domain"
)

var errAborted = errors.New("aborted by user")

type topicLoader interface {
	Load(ctx context.Context, targetLimit int, filter domain.TypeFilter) ([]domain.Topic, error)
}

type batchExecutor interface {
	Execute(ctx context.Context, topics []domain.Topic, quoteAmount decimal.Decimal) (domain.ExecutionResult, error)
}

type catalogPrinter interface {
	PrintCatalog(topics []domain.Topic)
	PrintSummary(res domain.ExecutionResult)
}

// session guarda el catálogo cargado entre la carga y la ejecución.
// Vive solo durante una invocación del CLI.
type session struct {
	cfg     *config.Config
	console catalogPrinter
	loader  topicLoader
	engine  batchExecutor
	in      io.Reader
	out     io.Writer

	topics []domain.Topic
}

// run carga el catálogo, pide la selección y ejecuta el batch.
func (s *session) run(ctx context.Context, selectExpr string, yes, listOnly bool) error {
	filter, err := domain.ParseTypeFilter(s.cfg.Order.TypeFilter)
	if err != nil {
		return err
	}

	s.topics, err = s.loader.Load(ctx, s.cfg.Order.TopicLimit, filter)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	s.console.PrintCatalog(s.topics)
	if listOnly || len(s.topics) == 0 {
		return nil
	}

	reader := bufio.NewReader(s.in)
	if selectExpr == "" {
		fmt.Fprint(s.out, `select topics ("all" or e.g. 1,3,5-7): `)
		selectExpr, err = readLine(reader)
		if err != nil {
			return fmt.Errorf("read selection: %w", err)
		}
	}
	idx, err := parseSelection(selectExpr, len(s.topics))
	if err != nil {
		return err
	}
	selected := make([]domain.Topic, len(idx))
	for i, j := range idx {
		selected[i] = s.topics[j]
	}

	amount := s.cfg.QuoteAmount()
	if !yes {
		legs := 0
		for _, t := range selected {
			legs += t.LegCount()
		}
		fmt.Fprintf(s.out, "trade %d topics (%d orders, %s USDT per order)? [y/N]: ", len(selected), legs, amount)
		answer, err := readLine(reader)
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			return errAborted
		}
	}

	if rate := s.cfg.SafeRate(); rate.IsPositive() {
		selected = execution.ApplySafePrices(selected, rate)
	}

	res, err := s.engine.Execute(ctx, selected, amount)
	if err != nil {
		return err
	}
	s.console.PrintSummary(res)
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
