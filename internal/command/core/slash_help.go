package core

import (
	"fmt"
	"strings"

	"github.com/keshon/slashkit/pkg/cmd"
)

const helpUsage = "Use /help <command_name> to get detailed information about a specific command."

// HelpCommand describes one command, or lists every other command when no name is given.
type HelpCommand struct {
	registry *cmd.Registry
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Get help for a command" }

func (c *HelpCommand) Params() []cmd.Param {
	return []cmd.Param{
		cmd.Opt("command_name", "").Describe("Command to describe"),
	}
}

func (c *HelpCommand) Run(ctx cmd.Context, commandName string) error {
	if commandName != "" {
		return ctx.Reply(c.registry.GenerateHelp(commandName))
	}
	return ctx.Reply(c.overview())
}

func (c *HelpCommand) overview() string {
	var names []string
	for _, command := range c.registry.Commands() {
		if command.Name == c.Name() {
			continue
		}
		names = append(names, command.Name)
	}
	return fmt.Sprintf("Available commands: %s\n%s", strings.Join(names, ", "), helpUsage)
}
