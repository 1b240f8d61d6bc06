package docs

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/keshon/genesis/internal/command"
)

// CommandSections renders the commands grouped by category, ordered by
// categoryWeights (lower first). Commands without a category are skipped.
func CommandSections(cmds []command.Command, prefix string, categoryWeights map[string]int) string {
	defs := make([]*command.Definition, 0, len(cmds))
	for _, c := range cmds {
		if def := c.Definition(); def.Category != "" {
			defs = append(defs, def)
		}
	}
	sort.SliceStable(defs, func(i, j int) bool {
		wi, wj := categoryWeights[defs[i].Category], categoryWeights[defs[j].Category]
		if wi != wj {
			return wi < wj
		}
		if defs[i].Category != defs[j].Category {
			return defs[i].Category < defs[j].Category
		}
		return defs[i].Trigger < defs[j].Trigger
	})

	var buf bytes.Buffer
	currentCategory := ""
	for _, def := range defs {
		if def.Category != currentCategory {
			if currentCategory != "" {
				buf.WriteString("\n")
			}
			currentCategory = def.Category
			buf.WriteString(fmt.Sprintf("### %s\n\n", currentCategory))
		}
		buf.WriteString(fmt.Sprintf("- **%s%s** — %s\n", prefix, def.Trigger, def.Description))
		for _, u := range def.Usages {
			if len(u.Parameters) == 0 {
				continue
			}
			buf.WriteString(fmt.Sprintf("  - `%s%s %s` %s\n", prefix, def.Trigger, usageParams(u.Parameters), u.Description))
		}
	}
	return buf.String()
}

func usageParams(params []string) string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = "<" + p + ">"
	}
	return strings.Join(out, " ")
}

// Render executes the README template with the command sections.
func Render(w io.Writer, tmplText, sections string) error {
	tmpl, err := template.New("readme").Parse(tmplText)
	if err != nil {
		return fmt.Errorf("parse readme template: %w", err)
	}
	data := struct {
		CommandSections string
	}{
		CommandSections: sections,
	}
	return tmpl.Execute(w, data)
}
