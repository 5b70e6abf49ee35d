package discord

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/keshon/slashkit/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CommandAPI is the part of *discordgo.Session used to publish slash commands.
type CommandAPI interface {
	ApplicationCommands(appID, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
	ApplicationCommandDelete(appID, guildID, cmdID string, options ...discordgo.RequestOption) error
}

// syncer publishes local slash command definitions to Discord: it deletes remote
// commands that are no longer registered and creates or updates the ones whose
// definition differs. Writes are paced by limiter and retried on rate limits
// and server errors.
type syncer struct {
	api     CommandAPI
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
	logger  *zap.Logger
}

func newSyncer(api CommandAPI, perSecond float64, logger *zap.Logger) *syncer {
	s := &syncer{
		api:     api,
		limiter: retrylimit.NewAdaptiveLimiter(rate.Limit(perSecond), 1, rate.Limit(perSecond)),
		retry:   retrylimit.DefaultConfig(),
		logger:  logger,
	}
	s.retry.Retryable = retryable
	s.retry.Throttled = rateLimited
	s.retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warn("discord request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}
	return s
}

func (s *syncer) do(ctx context.Context, fn func() error) error {
	return retrylimit.Do(ctx, s.limiter, s.retry, fn)
}

func (s *syncer) sync(ctx context.Context, appID, guildID string, local []*discordgo.ApplicationCommand) error {
	log := s.logger.With(zap.String("guild", guildScope(guildID)))

	var remote []*discordgo.ApplicationCommand
	err := s.do(ctx, func() (err error) {
		remote, err = s.api.ApplicationCommands(appID, guildID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list commands: %w", err)
	}
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, rc := range remote {
		remoteByName[rc.Name] = rc
	}
	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}

	var errs []error

	for _, rc := range remote {
		if _, ok := localNames[rc.Name]; ok {
			continue
		}
		log.Info("deleting obsolete command", zap.String("command", rc.Name))
		err := s.do(ctx, func() error {
			return s.api.ApplicationCommandDelete(appID, guildID, rc.ID)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error("failed to delete command", zap.String("command", rc.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("delete %s: %w", rc.Name, err))
		}
	}

	changed := 0
	for _, d := range local {
		if rc, ok := remoteByName[d.Name]; ok && hashCommand(rc) == hashCommand(d) {
			continue
		}
		changed++
		err := s.do(ctx, func() error {
			_, err := s.api.ApplicationCommandCreate(appID, guildID, d)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error("failed to register command", zap.String("command", d.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("register %s: %w", d.Name, err))
			continue
		}
		log.Info("registered command", zap.String("command", d.Name))
	}

	log.Info("commands synced", zap.Int("local", len(local)), zap.Int("changed", changed))
	return errors.Join(errs...)
}

// retryable reports whether a Discord API failure is worth another attempt.
func retryable(err error) bool {
	if rateLimited(err) {
		return true
	}
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode >= http.StatusInternalServerError
}

func rateLimited(err error) bool {
	var limitErr *discordgo.RateLimitError
	if errors.As(err, &limitErr) {
		return true
	}
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusTooManyRequests
}

func guildScope(guildID string) string {
	if guildID == "" {
		return "global"
	}
	return guildID
}

// hashCommand returns a deterministic SHA-1 of a command's stable fields, so
// remote definitions (which carry IDs and versions) compare equal to local ones.
func hashCommand(c *discordgo.ApplicationCommand) string {
	typ := c.Type
	if typ == 0 {
		typ = discordgo.ChatApplicationCommand
	}
	stable := map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"type":        typ,
	}
	if len(c.Options) > 0 {
		stable["options"] = normalizeOptions(c.Options)
	}
	data, _ := json.Marshal(stable)
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]any {
	out := make([]map[string]any, len(opts))
	for i, o := range opts {
		entry := map[string]any{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]any, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]any{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}
