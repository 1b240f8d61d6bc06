package command

import (
	"regexp"
	"sync"
	"sync/atomic"
)

// entry is a registered command with its compiled matcher.
type entry struct {
	cmd     Command
	def     *Definition
	matcher *regexp.Regexp
}

// Registry is an ordered set of commands. Readers always see a whole
// snapshot: writers build a new slice and swap it in.
type Registry struct {
	mu      sync.Mutex // serializes writers
	entries atomic.Pointer[[]entry]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := []entry{}
	r.entries.Store(&empty)
	return r
}

// Register appends cmd after every command registered so far.
// Trigger uniqueness is not checked: the first registered match wins.
func (r *Registry) Register(cmd Command) error {
	e, err := compile(cmd)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cur := *r.entries.Load()
	next := make([]entry, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, e)
	r.entries.Store(&next)
	return nil
}

// Reload replaces the whole registry with cmds. When any command fails to
// compile the live registry is left as it was.
func (r *Registry) Reload(cmds []Command) error {
	next := make([]entry, 0, len(cmds))
	for _, cmd := range cmds {
		e, err := compile(cmd)
		if err != nil {
			return err
		}
		next = append(next, e)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries.Store(&next)
	return nil
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	snap := r.snapshot()
	out := make([]Command, 0, len(snap))
	for _, e := range snap {
		out = append(out, e.cmd)
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	return len(r.snapshot())
}

func (r *Registry) snapshot() []entry {
	return *r.entries.Load()
}

func compile(cmd Command) (entry, error) {
	def := cmd.Definition()
	re, err := def.Compile()
	if err != nil {
		return entry{}, err
	}
	return entry{cmd: cmd, def: def, matcher: re}, nil
}
