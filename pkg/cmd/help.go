package cmd

import (
	"fmt"
	"strings"
)

// NotFoundHelp is returned by GenerateHelp for unknown commands.
const NotFoundHelp = "Command not found."

// GenerateHelp describes a command: name, kind, description, aliases and one
// line per argument in declaration order.
func (r *Registry) GenerateHelp(name string) string {
	c, ok := r.commands[name]
	if !ok {
		return NotFoundHelp
	}

	lines := []string{
		fmt.Sprintf("**%s**", c.Name),
		"Type: " + c.Kind.String(),
	}
	if c.Description != "" {
		lines = append(lines, "Description: "+c.Description)
	}
	if c.Kind == KindMessage && len(c.Aliases) > 0 {
		lines = append(lines, "Aliases: "+strings.Join(c.Aliases, ", "))
	}

	if len(c.Params) > 0 {
		lines = append(lines, "\nArguments:")
		for _, p := range c.Params {
			status := "Required"
			if p.HasDefault {
				status = fmt.Sprintf("Optional (default: %v)", p.Default)
			}
			note := ""
			if r.HasConverter(p.Type) {
				note = " (Custom converter available)"
			}
			lines = append(lines, fmt.Sprintf("- `%s`: %s (%s)%s", p.Name, p.TypeName(), status, note))
		}
	}

	return strings.Join(lines, "\n")
}
