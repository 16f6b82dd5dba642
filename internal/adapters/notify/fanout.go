package notify

import (
	"github.com/alejandrodnm/opinionbot/internal/domain"
	"github.com/alejandrodnm/opinionbot/internal/ports"
)

// Fanout reenvía cada evento a todos los reporters, en orden.
type Fanout []ports.Reporter

// NewFanout ignora los reporters nil.
func NewFanout(reporters ...ports.Reporter) Fanout {
	out := make(Fanout, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (f Fanout) Report(ev domain.Event) {
	for _, r := range f {
		r.Report(ev)
	}
}
