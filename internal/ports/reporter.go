package ports

import "github.com/alejandrodnm/opinionbot/internal/domain"

// Reporter recibe los eventos de progreso del core.
// Ninguna lógica del core depende de que el evento se haya mostrado.
type Reporter interface {
	Report(ev domain.Event)
}

// ReporterFunc adapta una función a Reporter.
type ReporterFunc func(ev domain.Event)

// Report llama a f(ev).
func (f ReporterFunc) Report(ev domain.Event) { f(ev) }

// NopReporter descarta todos los eventos.
var NopReporter Reporter = ReporterFunc(func(domain.Event) {})
