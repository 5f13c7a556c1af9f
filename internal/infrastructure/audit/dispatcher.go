package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/emotion-tutor/internal/core/domain"
	"github.com/kirillkom/emotion-tutor/internal/core/ports"
)

// ResultObserver is told about every finished write.
type ResultObserver func(sink string, kind domain.AuditKind, err error)

// Dispatcher runs audit writes in the background. Callers get a buffered result
// channel they may drop; write errors never propagate anywhere else.
type Dispatcher struct {
	sink     ports.AuditSink
	name     string
	timeout  time.Duration
	observer ResultObserver

	wg sync.WaitGroup
}

func NewDispatcher(name string, sink ports.AuditSink, timeout time.Duration, observer ResultObserver) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		sink:     sink,
		name:     name,
		timeout:  timeout,
		observer: observer,
	}
}

// Disabled returns a dispatcher that accepts records and drops them.
func Disabled() *Dispatcher {
	return &Dispatcher{name: "disabled"}
}

// Name identifies the sink in logs and metrics.
func (d *Dispatcher) Name() string {
	if d == nil {
		return "disabled"
	}
	return d.name
}

func (d *Dispatcher) Enabled() bool {
	return d != nil && d.sink != nil
}

func (d *Dispatcher) Submit(record domain.AuditRecord) <-chan error {
	done := make(chan error, 1)
	if !d.Enabled() {
		close(done)
		return done
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(done)

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.sink.Write(ctx, record)
		if err != nil {
			slog.Warn("audit_write_failed", "sink", d.name, "kind", string(record.Kind), "error", err)
		}
		if d.observer != nil {
			d.observer(d.name, record.Kind, err)
		}
		done <- err
	}()
	return done
}

// Close waits for in-flight writes until ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	finished := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
