package discord

import (
	"reflect"
	"sort"
	"strings"

	"github.com/keshon/slashkit/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// commandDefinition builds the application command published for a slash command.
// Discord requires required options to come first; the order of the rest follows
// the handler.
func commandDefinition(c cmd.Command) *discordgo.ApplicationCommand {
	def := &discordgo.ApplicationCommand{
		Name:        c.Name,
		Description: c.Description,
		Type:        discordgo.ChatApplicationCommand,
	}
	for _, p := range c.Params {
		def.Options = append(def.Options, commandOption(p))
	}
	sort.SliceStable(def.Options, func(i, j int) bool {
		return def.Options[i].Required && !def.Options[j].Required
	})
	return def
}

func commandOption(p cmd.ParamSpec) *discordgo.ApplicationCommandOption {
	desc := p.Description
	if desc == "" {
		desc = p.Name
	}
	return &discordgo.ApplicationCommandOption{
		Type:        optionType(p.Type),
		Name:        strings.ToLower(p.Name),
		Description: desc,
		Required:    !p.HasDefault,
	}
}

// optionType picks the option type for a declared argument type. Types without a
// native option (including untyped arguments) are collected as strings.
func optionType(t reflect.Type) discordgo.ApplicationCommandOptionType {
	if t == nil {
		return discordgo.ApplicationCommandOptionString
	}
	switch t.Kind() {
	case reflect.Bool:
		return discordgo.ApplicationCommandOptionBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return discordgo.ApplicationCommandOptionInteger
	case reflect.Float32, reflect.Float64:
		return discordgo.ApplicationCommandOptionNumber
	}
	return discordgo.ApplicationCommandOptionString
}

// interactionInvocation collects the options of a slash command call as named
// arguments. Options are matched back to parameters case-insensitively, since
// Discord only accepts lowercase option names.
func interactionInvocation(c cmd.Command, data discordgo.ApplicationCommandInteractionData) *cmd.Invocation {
	names := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		names[strings.ToLower(p.Name)] = p.Name
	}

	named := make(map[string]any, len(data.Options))
	for _, o := range data.Options {
		name, ok := names[o.Name]
		if !ok {
			name = o.Name
		}
		named[name] = optionValue(o)
	}
	return &cmd.Invocation{Named: named}
}

func optionValue(o *discordgo.ApplicationCommandInteractionDataOption) any {
	switch o.Type {
	case discordgo.ApplicationCommandOptionInteger:
		return o.IntValue()
	case discordgo.ApplicationCommandOptionNumber:
		return o.FloatValue()
	case discordgo.ApplicationCommandOptionBoolean:
		return o.BoolValue()
	case discordgo.ApplicationCommandOptionString:
		return o.StringValue()
	}
	// Users, channels, roles and mentionables arrive as snowflake IDs.
	return o.Value
}

// messageInvocation splits the text after the command word into positional
// arguments.
func messageInvocation(args []string) *cmd.Invocation {
	positional := make([]any, len(args))
	for i, a := range args {
		positional[i] = a
	}
	return &cmd.Invocation{Positional: positional}
}
