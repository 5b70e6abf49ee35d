package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

type fakeResponder struct {
	responses []*discordgo.InteractionResponse
	err       error
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	if f.err != nil {
		return f.err
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) contents() []string {
	out := make([]string, len(f.responses))
	for i, r := range f.responses {
		out[i] = r.Data.Content
	}
	return out
}

type sentMessage struct {
	channelID string
	content   string
}

type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

type fakeAPI struct {
	remote  []*discordgo.ApplicationCommand
	created []string
	deleted []string
	failOn  string
	// throttle makes the first n creates of a command fail with HTTP 429.
	throttle map[string]int
}

func (f *fakeAPI) ApplicationCommands(appID, guildID string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	if f.failOn == "list" {
		return nil, errors.New("list failed")
	}
	return f.remote, nil
}

func (f *fakeAPI) ApplicationCommandCreate(appID string, guildID string, c *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	if f.failOn == c.Name {
		return nil, fmt.Errorf("create %s rejected", c.Name)
	}
	if f.throttle[c.Name] > 0 {
		f.throttle[c.Name]--
		return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests, Status: "429 Too Many Requests"}}
	}
	f.created = append(f.created, c.Name)
	return c, nil
}

func (f *fakeAPI) ApplicationCommandDelete(appID, guildID, cmdID string, _ ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, cmdID)
	return nil
}

func slashEvent(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name:        name,
			CommandType: discordgo.ChatApplicationCommand,
			Options:     options,
		},
	}}
}

func messageEvent(content string, bot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "channel-1",
		Content:   content,
		Author:    &discordgo.User{ID: "user-1", Bot: bot},
	}}
}
