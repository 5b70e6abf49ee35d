// Package core holds the commands every bot ships with.
package core

import (
	"github.com/keshon/slashkit/pkg/cmd"
)

// Registrar is where commands get registered; *discord.Bot implements it.
type Registrar interface {
	Registry() *cmd.Registry
	Slash(name, description string, handler any, params ...cmd.Param) error
	Message(name string, aliases []string, description string, handler any, params ...cmd.Param) error
}

// Register adds the bundled commands: add, add_message and help.
func Register(r Registrar) error {
	add := &AddCommand{}
	if err := r.Slash(add.Name(), add.Description(), add.Run, add.Params()...); err != nil {
		return err
	}
	if err := r.Message(add.MessageName(), add.Aliases(), add.Description(), add.Run, add.Params()...); err != nil {
		return err
	}

	help := &HelpCommand{registry: r.Registry()}
	return r.Slash(help.Name(), help.Description(), help.Run, help.Params()...)
}
