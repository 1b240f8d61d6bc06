package command

import "context"

// Field is one name/value row of an embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a transport-neutral structured reply.
type Embed struct {
	Title       string
	Description string
	Fields      []Field
}

// Reply is a request to the rendering layer.
type Reply struct {
	Content string
	Embed   *Embed
	// DeleteOriginal asks for the invoking message to be removed.
	DeleteOriginal bool
	// Ephemeral replies are removed after a short while.
	Ephemeral bool
}

// Responder renders replies for a message.
type Responder interface {
	Respond(ctx context.Context, msg *Message, reply Reply) error
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, msg *Message, reply Reply) error

func (f ResponderFunc) Respond(ctx context.Context, msg *Message, reply Reply) error {
	return f(ctx, msg, reply)
}

// UsageEmbed renders the usage help of a definition.
func UsageEmbed(def *Definition) *Embed {
	e := &Embed{Title: def.Description}
	if e.Title == "" {
		e.Title = def.Trigger
	}
	for _, u := range def.Usages {
		value := "**" + def.Trigger + "**"
		for _, p := range u.Parameters {
			value += " <" + p + ">"
		}
		if u.Description != "" {
			value += "\n" + u.Description
		}
		e.Fields = append(e.Fields, Field{Name: "_ _", Value: value})
	}
	if len(e.Fields) == 0 {
		e.Fields = append(e.Fields, Field{Name: "_ _", Value: "**" + def.Trigger + "**"})
	}
	return e
}
