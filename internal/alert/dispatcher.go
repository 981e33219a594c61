package alert

import (
	"fmt"
	"io"
	"sync"
)

// Dispatcher fans out events to matching webhook configurations.
type Dispatcher struct {
	configs []Config
	logw    io.Writer
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher from webhook configurations.
// Returns nil if configs is empty (callers should nil-check).
func NewDispatcher(configs []Config, logw io.Writer) *Dispatcher {
	if len(configs) == 0 {
		return nil
	}
	return &Dispatcher{configs: configs, logw: logw}
}

// Dispatch sends the event to all webhooks whose severity list matches.
// Deliveries run in goroutines and do not block the caller. Errors are
// logged, never returned.
func (d *Dispatcher) Dispatch(event Event) {
	for _, cfg := range d.configs {
		if !matches(cfg.Severities, event.Severity) {
			continue
		}
		d.wg.Add(1)
		go func(cfg Config) {
			defer d.wg.Done()
			if err := Send(cfg, event); err != nil {
				fmt.Fprintf(d.logw, "alert: %s: %v\n", cfg.URL, err)
			}
		}(cfg)
	}
}

// Wait blocks until all in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// matches reports whether the severity is on the destination's list.
// An empty list matches everything.
func matches(severities []string, severity string) bool {
	if len(severities) == 0 {
		return true
	}
	for _, s := range severities {
		if s == severity {
			return true
		}
	}
	return false
}
