package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/keshon/slashkit/internal/command/core"
	"github.com/keshon/slashkit/internal/command/roll"
	"github.com/keshon/slashkit/internal/discord"
	"github.com/keshon/slashkit/pkg/cmd"

	"github.com/spf13/cobra"
)

var errUnknownCommand = errors.New("command not found")

// newBot registers the bundled commands on a bot that is never connected.
func newBot() (*discord.Bot, error) {
	bot := discord.NewBot(cmd.NewRegistry(), discord.Options{})
	if err := core.Register(bot); err != nil {
		return nil, err
	}
	if err := roll.Register(bot); err != nil {
		return nil, err
	}
	return bot, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "slashkit",
		Short:        "Inspect the commands the bot registers",
		SilenceUsage: true,
	}
	root.AddCommand(commandsCmd(), describeCmd(), definitionsCmd())
	return root
}

func commandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List registered commands",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			bot, err := newBot()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTYPE\tDESCRIPTION")
			for _, command := range bot.Registry().Commands() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", command.Name, command.Kind, command.Description)
			}
			return w.Flush()
		},
	}
}

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <command>",
		Short: "Print the help text of a command",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			bot, err := newBot()
			if err != nil {
				return err
			}
			if _, ok := bot.Registry().Lookup(args[0]); !ok {
				return fmt.Errorf("%w: %s", errUnknownCommand, args[0])
			}
			fmt.Fprintln(c.OutOrStdout(), bot.Registry().GenerateHelp(args[0]))
			return nil
		},
	}
}

func definitionsCmd() *cobra.Command {
	var indent bool
	c := &cobra.Command{
		Use:   "definitions",
		Short: "Print the slash command payload published to Discord",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			bot, err := newBot()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.OutOrStdout())
			if indent {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(bot.Definitions())
		},
	}
	c.Flags().BoolVarP(&indent, "indent", "i", false, "Indent the JSON output")
	return c
}
