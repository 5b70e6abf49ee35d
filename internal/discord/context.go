package discord

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ErrAlreadyReplied is returned when an interaction is answered a second time.
var ErrAlreadyReplied = errors.New("interaction has already been replied to")

type interactionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// InteractionContext is the invocation context of a slash command. An interaction
// accepts a single response.
type InteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate

	responder interactionResponder
	mu        sync.Mutex
	replied   bool
}

func newInteractionContext(s *discordgo.Session, r interactionResponder, i *discordgo.InteractionCreate) *InteractionContext {
	return &InteractionContext{Session: s, Event: i, responder: r}
}

// Reply sends content as the interaction response.
func (c *InteractionContext) Reply(content string) error {
	return c.respond(&discordgo.InteractionResponseData{Content: content})
}

// ReplyEphemeral sends content as a response only the invoking user can see.
func (c *InteractionContext) ReplyEphemeral(content string) error {
	return c.respond(&discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// Replied reports whether the interaction has been answered.
func (c *InteractionContext) Replied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replied
}

func (c *InteractionContext) respond(data *discordgo.InteractionResponseData) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.replied {
		return ErrAlreadyReplied
	}
	err := c.responder.InteractionRespond(c.Event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		return err
	}
	c.replied = true
	return nil
}

// MessageContext is the invocation context of a prefix command. Replies are
// plain channel messages, so it never counts as replied.
type MessageContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	Args    []string

	sender messageSender
}

func newMessageContext(s *discordgo.Session, sender messageSender, m *discordgo.MessageCreate, args []string) *MessageContext {
	return &MessageContext{Session: s, Event: m, Args: args, sender: sender}
}

// Reply posts content to the channel the command was sent in.
func (c *MessageContext) Reply(content string) error {
	_, err := c.sender.ChannelMessageSend(c.Event.ChannelID, content)
	return err
}

// Replied is always false: a channel accepts any number of messages.
func (c *MessageContext) Replied() bool { return false }
