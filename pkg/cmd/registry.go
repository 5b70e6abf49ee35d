package cmd

import (
	"fmt"
	"reflect"
	"slices"
	"sort"

	"go.uber.org/zap"
)

// Kind tells how a command is triggered.
type Kind int

const (
	// KindSlash commands are declared remotely and invoked as interactions.
	KindSlash Kind = iota
	// KindMessage commands are parsed from plain message text by prefix and name or alias.
	KindMessage
)

func (k Kind) String() string {
	if k == KindSlash {
		return "Slash Command"
	}
	return "Message Command"
}

// Command is the registered record of one command. Records returned by the
// registry are copies; the stored record never changes after registration.
type Command struct {
	Name        string
	Kind        Kind
	Description string
	Aliases     []string
	Params      []ParamSpec
	Handler     any
}

func (c *Command) clone() Command {
	out := *c
	out.Aliases = slices.Clone(c.Aliases)
	out.Params = slices.Clone(c.Params)
	return out
}

// Registry stores commands by name together with the converter table and the
// error policy. It does not perform dispatch; adapters hold the Invoker returned
// at registration and call it with their own context.
//
// Registration is expected to finish before the first invocation; the registry
// does no locking of its own.
type Registry struct {
	commands     map[string]*Command
	converters   map[reflect.Type]Converter
	errorHandler ErrorHandler
	logger       *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registration and failure events.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		commands:   make(map[string]*Command),
		converters: make(map[reflect.Type]Converter),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registration is a pending command definition; Handle completes it.
type Registration struct {
	registry    *Registry
	name        string
	kind        Kind
	description string
	aliases     []string
}

// SlashCommand starts the registration of a slash command. The description is
// mandatory.
func (r *Registry) SlashCommand(name, description string) (*Registration, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: command name is required", ErrValidation)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required for slash commands", ErrValidation)
	}
	return &Registration{registry: r, name: name, kind: KindSlash, description: description}, nil
}

// MessageCommand starts the registration of a prefix message command. Aliases
// are stored as given; collisions are not checked.
func (r *Registry) MessageCommand(name string, aliases []string, description string) (*Registration, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: command name is required", ErrValidation)
	}
	if aliases == nil {
		aliases = []string{}
	}
	return &Registration{
		registry:    r,
		name:        name,
		kind:        KindMessage,
		description: description,
		aliases:     slices.Clone(aliases),
	}, nil
}

// Handle binds handler to the registration and stores the command, replacing
// any command already registered under the same name. The handler's first
// argument receives the invocation Context; params name the remaining ones in
// order. The returned Invoker is what the transport adapter dispatches to.
func (reg *Registration) Handle(handler any, params ...Param) (Invoker, error) {
	fn, specs, err := signature(handler, params)
	if err != nil {
		return nil, fmt.Errorf("command %q: %w", reg.name, err)
	}

	c := &Command{
		Name:        reg.name,
		Kind:        reg.kind,
		Description: reg.description,
		Aliases:     reg.aliases,
		Params:      specs,
		Handler:     handler,
	}

	r := reg.registry
	if _, exists := r.commands[c.Name]; exists {
		r.logger.Info("replacing command", zap.String("command", c.Name))
	}
	r.commands[c.Name] = c
	r.logger.Debug("registered command",
		zap.String("command", c.Name),
		zap.Stringer("kind", c.Kind),
		zap.Int("params", len(specs)),
	)

	return r.invoker(c, fn), nil
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	c, ok := r.commands[name]
	if !ok {
		return Command{}, false
	}
	return c.clone(), true
}

// Commands returns all registered commands, sorted by name.
func (r *Registry) Commands() []Command {
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c.clone())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// Resolve finds the message command triggered by word, matching names before
// aliases. When several commands share an alias the first by name wins.
func (r *Registry) Resolve(word string) (Command, bool) {
	if c, ok := r.commands[word]; ok && c.Kind == KindMessage {
		return c.clone(), true
	}
	for _, c := range r.Commands() {
		if c.Kind == KindMessage && slices.Contains(c.Aliases, word) {
			return c, true
		}
	}
	return Command{}, false
}
