package command

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
)

// Dispatcher routes messages to the commands of a Registry.
type Dispatcher struct {
	reg    *Registry
	logger *log.Logger

	mu  sync.RWMutex
	mws []Middleware
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for command faults.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher returns a dispatcher reading from reg.
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{reg: reg, logger: log.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Use appends execution middlewares.
func (d *Dispatcher) Use(mws ...Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mws = append(d.mws, mws...)
}

// Registry returns the registry the dispatcher reads from.
func (d *Dispatcher) Registry() *Registry {
	return d.reg
}

// Dispatch runs the first command whose pattern matches msg.Content.
//
// Commands are tried in registration order against a single snapshot of the
// registry, so a concurrent Reload is observed either entirely or not at
// all. Authorization is checked before the command runs. Errors and panics
// raised by the command are logged and reported as StatusFailure; nothing
// escapes this call.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *Message) Status {
	if msg == nil {
		return StatusNotApplicable
	}

	for _, e := range d.reg.snapshot() {
		m := e.matcher.FindStringSubmatch(msg.Content)
		if m == nil {
			continue
		}

		if !e.def.Authorize(msg) {
			return StatusUnauthorized
		}

		inv := &Invocation{Message: msg, Args: m[1:]}
		return d.run(ctx, e, inv)
	}
	return StatusNotApplicable
}

// Match returns the command that would handle content, if any.
func (d *Dispatcher) Match(content string) (Command, bool) {
	for _, e := range d.reg.snapshot() {
		if e.matcher.MatchString(content) {
			return e.cmd, true
		}
	}
	return nil, false
}

func (d *Dispatcher) run(ctx context.Context, e entry, inv *Invocation) (status Status) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Printf("[ERR] Command %s panicked: %v\n%s", e.def.Name, r, debug.Stack())
			status = StatusFailure
		}
	}()

	d.mu.RLock()
	h := Chain(execute, d.mws...)
	d.mu.RUnlock()

	status, err := h(ctx, e.cmd, inv)
	if err != nil {
		d.logger.Printf("[ERR] Error running command %s: %v", e.def.Name, err)
		return StatusFailure
	}
	switch status {
	case StatusSuccess, StatusFailure:
		return status
	default:
		d.logger.Printf("[WARN] Command %s returned %s, treating as failure", e.def.Name, fmt.Sprint(status))
		return StatusFailure
	}
}
