// Package pacing contiene las pausas fijas que espacian las requests a
// servicios externos. No es backoff: el intervalo no se adapta.
package pacing

import (
	"context"
	"time"
)

// SleepFunc espera d o hasta que ctx se cancele. Devuelve ctx.Err() si se canceló.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep es la SleepFunc real.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoSleep no espera nunca. Útil en tests.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
