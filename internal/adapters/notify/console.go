package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/opinionbot/internal/domain"
)

const rule = "============================================================"

// Console implementa ports.Reporter escribiendo el progreso en texto plano.
type Console struct {
	out io.Writer
}

// NewConsole crea un reporter que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un reporter sobre w (tests).
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Report imprime una línea por evento relevante.
func (c *Console) Report(ev domain.Event) {
	switch ev.Kind {
	case domain.EventLoadStarted:
		c.line(ev, "loading topics (target: %d, type: %s)", ev.Target, ev.Filter)
	case domain.EventPageFetched:
		c.line(ev, "   %s page %d fetched (%d total)", ev.Source, ev.Page, ev.Count)
	case domain.EventSourceStopped:
		c.line(ev, "   %s pagination stopped at page %d: %s", ev.Source, ev.Page, ev.Err)
	case domain.EventSourceLoaded:
		c.line(ev, "   %s topics: %d", ev.Source, ev.Count)
	case domain.EventCatalogLoaded:
		c.line(ev, "%d topics loaded", ev.Count)

	case domain.EventBatchStarted:
		c.line(ev, "batch %s: %d topics, %s USDT per order", shortID(ev.BatchID), ev.TopicTotal, ev.QuoteAmount)
	case domain.EventTopicStarted:
		c.line(ev, rule)
		c.line(ev, "trade [%d/%d] %s", ev.TopicIndex, ev.TopicTotal, topicTitle(ev.Topic))
		c.line(ev, "   topic id: %s", topicID(ev.Topic))
		c.line(ev, "   %d options x 2 (YES/NO) = %d orders, %s USDT each", ev.ChildTotal, ev.Legs, ev.QuoteAmount)
		c.line(ev, rule)
	case domain.EventTopicInvalid:
		c.line(ev, "invalid topic id %q (%s): %d orders counted as failed", topicID(ev.Topic), topicTitle(ev.Topic), ev.Legs)
	case domain.EventTopicFailed:
		c.line(ev, "topic %s aborted: %s (%d orders counted as failed)", topicID(ev.Topic), ev.Err, ev.Legs)
	case domain.EventChildStarted:
		c.line(ev, "[%d/%d] %s (topicId=%s)", ev.ChildIndex, ev.ChildTotal, childTitle(ev.Child), childID(ev.Child))
	case domain.EventChildInvalid:
		c.line(ev, "   invalid option id %q: 2 orders counted as failed", childID(ev.Child))
	case domain.EventLegSubmitting:
		c.line(ev, "  -> %s order (%s USDT, price=%s)...", ev.Outcome, ev.QuoteAmount, ev.Price)
	case domain.EventLegSucceeded:
		c.line(ev, "     OK %s (order id: %s)", ev.Outcome, ev.OrderID)
	case domain.EventLegFailed:
		c.line(ev, "     FAIL %s: %s", ev.Outcome, ev.Err)
	case domain.EventLegSkipped:
		c.line(ev, "  !  %s: no position token, skipped", ev.Outcome)
	case domain.EventBatchFinished:
		c.line(ev, rule)
		c.line(ev, "batch finished: %d succeeded, %d failed", ev.Result.Succeeded, ev.Result.Failed)
		c.line(ev, rule)
	}
}

// PrintCatalog imprime el catálogo numerado (1-based, como lo espera --select).
func (c *Console) PrintCatalog(topics []domain.Topic) {
	if len(topics) == 0 {
		fmt.Fprintln(c.out, "no topics found")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Topic", "Options", "Orders")
	for i, t := range topics {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.DisplayLabel(),
			fmt.Sprintf("%d", len(t.Children())),
			fmt.Sprintf("%d", t.LegCount()),
		)
	}
	table.Render()
}

// PrintSummary imprime el resultado final de un batch.
func (c *Console) PrintSummary(res domain.ExecutionResult) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Succeeded", "Failed", "Total")
	table.Append(
		fmt.Sprintf("%d", res.Succeeded),
		fmt.Sprintf("%d", res.Failed),
		fmt.Sprintf("%d", res.Total()),
	)
	table.Render()
}

func (c *Console) line(ev domain.Event, format string, args ...any) {
	fmt.Fprintf(c.out, "[%s] %s\n", ev.At.Format("15:04:05"), fmt.Sprintf(format, args...))
}

func topicTitle(t *domain.Topic) string {
	if t == nil {
		return domain.TruncateTitle("", 0)
	}
	return t.DisplayTitle(domain.DisplayTitleLen)
}

func topicID(t *domain.Topic) string {
	if t == nil {
		return ""
	}
	return t.TopicID
}

func childTitle(c *domain.ChildMarket) string {
	if c == nil {
		return domain.TruncateTitle("", 0)
	}
	return domain.TruncateTitle(c.Title, domain.DisplayTitleLen)
}

func childID(c *domain.ChildMarket) string {
	if c == nil {
		return ""
	}
	return c.TopicID
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
