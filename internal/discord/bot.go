package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/keshon/slashkit/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Options configures a Bot.
type Options struct {
	// Prefix starts every message command, e.g. "!".
	Prefix string
	// GuildID scopes slash command sync to one guild; empty publishes globally.
	GuildID string
	// SyncCommands publishes slash commands once the session is ready.
	SyncCommands bool
	// SyncRate caps command writes per second during sync.
	SyncRate float64
	Logger   *zap.Logger
}

// Bot connects a command registry to a Discord session.
type Bot struct {
	registry *cmd.Registry
	opts     Options
	logger   *zap.Logger

	slash   map[string]cmd.Invoker
	message map[string]cmd.Invoker

	ctx      context.Context
	syncOnce sync.Once
}

// NewBot returns a bot dispatching to commands registered through it.
func NewBot(registry *cmd.Registry, opts Options) *Bot {
	if opts.Prefix == "" {
		opts.Prefix = "!"
	}
	if opts.SyncRate <= 0 {
		opts.SyncRate = 40
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		registry: registry,
		opts:     opts,
		logger:   logger,
		slash:    make(map[string]cmd.Invoker),
		message:  make(map[string]cmd.Invoker),
		ctx:      context.Background(),
	}
}

// Registry returns the registry commands are stored in.
func (b *Bot) Registry() *cmd.Registry { return b.registry }

// Slash registers a slash command. The handler's first argument receives an
// *InteractionContext (or any type it satisfies, such as cmd.Context).
func (b *Bot) Slash(name, description string, handler any, params ...cmd.Param) error {
	reg, err := b.registry.SlashCommand(name, description)
	if err != nil {
		return err
	}
	inv, err := reg.Handle(handler, params...)
	if err != nil {
		return err
	}
	delete(b.message, name)
	b.slash[name] = inv
	return nil
}

// Message registers a prefix message command. The handler's first argument
// receives a *MessageContext (or any type it satisfies, such as cmd.Context).
func (b *Bot) Message(name string, aliases []string, description string, handler any, params ...cmd.Param) error {
	reg, err := b.registry.MessageCommand(name, aliases, description)
	if err != nil {
		return err
	}
	inv, err := reg.Handle(handler, params...)
	if err != nil {
		return err
	}
	delete(b.slash, name)
	b.message[name] = inv
	return nil
}

// Run opens the session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.ctx = ctx

	dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	b.logger.Info("shutdown signal received, closing session")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord session ready",
		zap.String("user", r.User.Username),
		zap.Int("guilds", len(r.Guilds)),
	)
	if !b.opts.SyncCommands {
		b.logger.Info("slash command sync skipped")
		return
	}
	b.syncOnce.Do(func() {
		if err := b.Sync(b.ctx, s, r.User.ID); err != nil {
			b.logger.Error("slash command sync failed", zap.Error(err))
		}
	})
}

// Sync publishes the registered slash commands for the configured guild scope.
func (b *Bot) Sync(ctx context.Context, api CommandAPI, appID string) error {
	return newSyncer(api, b.opts.SyncRate, b.logger).sync(ctx, appID, b.opts.GuildID, b.Definitions())
}

// Definitions lists the slash commands this bot dispatches, sorted by name.
func (b *Bot) Definitions() []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range b.registry.Commands() {
		if _, ok := b.slash[c.Name]; ok && c.Kind == cmd.KindSlash {
			defs = append(defs, commandDefinition(c))
		}
	}
	return defs
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handleInteraction(s, s, i)
}

func (b *Bot) handleInteraction(s *discordgo.Session, responder interactionResponder, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.CommandType != discordgo.ChatApplicationCommand && data.CommandType != 0 {
		return
	}

	inv, ok := b.slash[data.Name]
	c, found := b.registry.Lookup(data.Name)
	if !ok || !found {
		b.logger.Warn("unknown slash command", zap.String("command", data.Name))
		return
	}

	ctx := newInteractionContext(s, responder, i)
	b.dispatch(c.Name, inv, ctx, interactionInvocation(c, data))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(s, s, m)
}

func (b *Bot) handleMessage(s *discordgo.Session, sender messageSender, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.opts.Prefix) {
		return
	}
	fields := strings.Fields(strings.TrimPrefix(m.Content, b.opts.Prefix))
	if len(fields) == 0 {
		return
	}

	c, ok := b.registry.Resolve(fields[0])
	if !ok {
		return
	}
	inv, ok := b.message[c.Name]
	if !ok {
		return
	}

	args := fields[1:]
	ctx := newMessageContext(s, sender, m, args)
	b.dispatch(c.Name, inv, ctx, messageInvocation(args))
}

// dispatch runs a command. Only a failing error policy reaches this point; it is
// logged and the event loop carries on.
func (b *Bot) dispatch(name string, inv cmd.Invoker, ctx cmd.Context, in *cmd.Invocation) {
	b.logger.Debug("running command", zap.String("command", name))
	if err := inv(ctx, in); err != nil {
		b.logger.Error("error handler failed", zap.String("command", name), zap.Error(err))
	}
}
