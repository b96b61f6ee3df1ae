package publishers

import (
	"context"
	"errors"
	"fmt"
)

type route struct {
	cfg PublisherConfig
	pub Publisher
}

// Dispatcher delivers each event to every publisher whose filter accepts it.
// A failing publisher never blocks the others.
type Dispatcher struct {
	routes []route
	log    Logger
}

// NewDispatcher builds publishers for the enabled configs in reg.
func NewDispatcher(ctx context.Context, reg *ConfigRegistry, builders Builders, log Logger) (*Dispatcher, error) {
	log = ensureLogger(log)
	if builders == nil {
		builders = DefaultBuilders()
	}
	d := &Dispatcher{log: log}
	for _, cfg := range reg.Enabled() {
		pub, err := builders.Build(ctx, cfg, log)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.routes = append(d.routes, route{cfg: cfg, pub: pub})
	}
	return d, nil
}

// Len reports how many publishers are wired.
func (d *Dispatcher) Len() int {
	if d == nil {
		return 0
	}
	return len(d.routes)
}

// Publish fans evt out and returns the joined delivery errors.
func (d *Dispatcher) Publish(ctx context.Context, evt Event) error {
	if d == nil {
		return nil
	}
	var errs []error
	for _, r := range d.routes {
		if !r.cfg.Accepts(evt.Type) {
			continue
		}
		if err := r.pub.Publish(ctx, evt); err != nil {
			d.log.WarnObj("event delivery failed", "publisher_error", map[string]any{
				"publisher_id": r.pub.ID(),
				"event_type":   evt.Type,
				"event_id":     evt.ID,
				"error":        err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", r.pub.ID(), err))
		}
	}
	return errors.Join(errs...)
}

// Close releases publishers holding client resources.
func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	for _, r := range d.routes {
		if c, ok := r.pub.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
