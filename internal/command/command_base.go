package command

import (
	"context"
	"fmt"
	"regexp"
)

// Status is the outcome of a dispatch or of a single command execution.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusUnauthorized
	// StatusNotApplicable means no registered command matched the message.
	StatusNotApplicable
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusNotApplicable:
		return "not-applicable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Usage is one help entry of a command.
type Usage struct {
	Description string
	Parameters  []string
}

// Definition is the static description of a command.
//
// The match pattern is built from Trigger and Grammar as
// (?i)^<quoted trigger><grammar>$, so every command is anchored at the start
// of the stripped message and matched case-insensitively. Grammar may declare
// capture groups; they are handed to the command in registration order.
type Definition struct {
	Name         string
	Trigger      string
	Grammar      string
	Description  string
	Category     string
	Usages       []Usage
	RequiresAuth bool
	AllowDM      bool
}

// Pattern returns the source of the match expression.
func (d *Definition) Pattern() string {
	return "(?i)^" + regexp.QuoteMeta(d.Trigger) + d.Grammar + "$"
}

// Compile builds the matcher for d.
func (d *Definition) Compile() (*regexp.Regexp, error) {
	if d.Name == "" || d.Trigger == "" {
		return nil, fmt.Errorf("command definition needs a name and a trigger (name=%q trigger=%q)", d.Name, d.Trigger)
	}
	re, err := regexp.Compile(d.Pattern())
	if err != nil {
		return nil, fmt.Errorf("command %s: compile pattern: %w", d.Name, err)
	}
	return re, nil
}

// Authorize reports whether msg may run the command. It never runs the
// command itself.
func (d *Definition) Authorize(msg *Message) bool {
	if msg.DirectMessage && !d.AllowDM {
		return false
	}
	if d.RequiresAuth && !msg.AuthorLevel.Elevated() {
		return false
	}
	return true
}

// Command is a single chat command.
type Command interface {
	Definition() *Definition
	Execute(ctx context.Context, inv *Invocation) (Status, error)
}

// Message is the text (already stripped of the invocation prefix) plus the
// context it was sent in.
type Message struct {
	ID            string
	Content       string
	ChannelID     string
	GuildID       string
	AuthorID      string
	AuthorName    string
	AuthorLevel   Level
	DirectMessage bool
}

// Invocation is what a command receives when it runs.
type Invocation struct {
	Message *Message
	// Args holds the capture groups of the top-level match. Groups that did
	// not participate in the match are empty strings.
	Args []string
}

// Arg returns the i-th capture group or "" when it does not exist.
func (inv *Invocation) Arg(i int) string {
	if i < 0 || i >= len(inv.Args) {
		return ""
	}
	return inv.Args[i]
}
