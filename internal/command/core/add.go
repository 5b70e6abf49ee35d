package core

import (
	"fmt"

	"github.com/keshon/slashkit/pkg/cmd"
)

// AddCommand adds two integers. It is registered both as a slash command and,
// under its message name and aliases, as a prefix command.
type AddCommand struct{}

func (c *AddCommand) Name() string        { return "add" }
func (c *AddCommand) MessageName() string { return "add_message" }
func (c *AddCommand) Aliases() []string   { return []string{"sum"} }
func (c *AddCommand) Description() string { return "Adds two numbers" }

func (c *AddCommand) Params() []cmd.Param {
	return []cmd.Param{cmd.Arg("a"), cmd.Arg("b")}
}

func (c *AddCommand) Run(ctx cmd.Context, a, b int) error {
	return ctx.Reply(fmt.Sprintf("The sum is: %d", a+b))
}
