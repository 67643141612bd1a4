package discord

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/immxrtalbeast/tempvoice/internal/api/interaction"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/service"
	"github.com/immxrtalbeast/tempvoice/lib/logger/sl"
)

const (
	setupCommand   = "tempvoice"
	handlerTimeout = 30 * time.Second

	adminPermissions = discordgo.PermissionAdministrator | discordgo.PermissionManageChannels
)

// Provisioner reacts to members joining and leaving voice channels.
type Provisioner interface {
	Provision(ctx context.Context, actor domain.Actor, channelID string) (*service.RoomView, error)
	Release(ctx context.Context, guildID, channelID string) error
}

// Gateway routes gateway events. discordgo runs every handler on its own
// goroutine, so events are processed concurrently.
type Gateway struct {
	router *interaction.Router
	rooms  Provisioner
	log    *slog.Logger
}

func NewGateway(router *interaction.Router, rooms Provisioner, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		router: router,
		rooms:  rooms,
		log:    log,
	}
}

func (g *Gateway) Register(s *discordgo.Session) {
	s.AddHandler(g.onReady)
	s.AddHandler(g.onInteraction)
	s.AddHandler(g.onVoiceState)
}

func (g *Gateway) onReady(s *discordgo.Session, r *discordgo.Ready) {
	const op = "discord.gateway.onReady"
	log := g.log.With(slog.String("op", op))

	perms := int64(adminPermissions)
	_, err := s.ApplicationCommandCreate(r.User.ID, "", &discordgo.ApplicationCommand{
		Name:                     setupCommand,
		Description:              "Set up temporary voice rooms",
		DefaultMemberPermissions: &perms,
	})
	if err != nil {
		log.Error("failed to register command", sl.Err(err))
		return
	}
	log.Info("connected", slog.String("user", r.User.Username), slog.Int("guilds", len(r.Guilds)))
}

func (g *Gateway) onInteraction(s *discordgo.Session, e *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch e.Type {
	case discordgo.InteractionApplicationCommand:
		if e.ApplicationCommandData().Name != setupCommand {
			return
		}
		resp := &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags: discordgo.MessageFlagsEphemeral,
				Embeds: []*discordgo.MessageEmbed{embed(interaction.Response{
					Status: interaction.StatusInfo,
					Title:  "Temporary rooms",
					Body:   "Choose how to set up temporary rooms on this server.",
				})},
				Components: components(interaction.AdminPanel()),
			},
		}
		if err := s.InteractionRespond(e.Interaction, resp, discordgo.WithContext(ctx)); err != nil {
			g.log.Error("failed to answer command", sl.Err(err))
		}
	case discordgo.InteractionMessageComponent, discordgo.InteractionModalSubmit:
		g.router.Handle(ctx, &componentInteraction{session: s, i: e.Interaction})
	}
}

func (g *Gateway) onVoiceState(_ *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	const op = "discord.gateway.onVoiceState"

	before := ""
	if e.BeforeUpdate != nil {
		before = e.BeforeUpdate.ChannelID
	}
	if before == e.ChannelID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	log := g.log.With(
		slog.String("op", op),
		slog.String("guild_id", e.GuildID),
		slog.String("user_id", e.UserID),
	)

	if before != "" {
		if err := g.rooms.Release(ctx, e.GuildID, before); err != nil {
			log.Error("failed to release room", slog.String("channel_id", before), sl.Err(err))
		}
	}

	if e.ChannelID != "" {
		var user *discordgo.User
		if e.Member != nil {
			user = e.Member.User
		}
		actor := domain.Actor{
			GuildID:     e.GuildID,
			UserID:      e.UserID,
			DisplayName: displayName(e.Member, user),
		}
		if _, err := g.rooms.Provision(ctx, actor, e.ChannelID); err != nil {
			log.Error("failed to provision room", slog.String("channel_id", e.ChannelID), sl.Err(err))
		}
	}
}

// componentInteraction adapts a button, select menu or modal submission.
type componentInteraction struct {
	session  *discordgo.Session
	i        *discordgo.Interaction
	deferred bool
}

func (c *componentInteraction) Actor() domain.Actor {
	actor := domain.Actor{GuildID: c.i.GuildID}
	if m := c.i.Member; m != nil {
		actor.DisplayName = displayName(m, m.User)
		actor.IsAdmin = m.Permissions&adminPermissions != 0
		if m.User != nil {
			actor.UserID = m.User.ID
		}
		return actor
	}
	if c.i.User != nil {
		actor.UserID = c.i.User.ID
		actor.DisplayName = displayName(nil, c.i.User)
	}
	return actor
}

func (c *componentInteraction) CustomID() string {
	switch c.i.Type {
	case discordgo.InteractionMessageComponent:
		return c.i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return c.i.ModalSubmitData().CustomID
	}
	return ""
}

func (c *componentInteraction) Input() string {
	switch c.i.Type {
	case discordgo.InteractionMessageComponent:
		if values := c.i.MessageComponentData().Values; len(values) > 0 {
			return values[0]
		}
	case discordgo.InteractionModalSubmit:
		return modalValue(c.i.ModalSubmitData().Components)
	}
	return ""
}

func modalValue(rows []discordgo.MessageComponent) string {
	for _, row := range rows {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range ar.Components {
			if ti, ok := comp.(*discordgo.TextInput); ok {
				return ti.Value
			}
		}
	}
	return ""
}

// Defer acknowledges the interaction. Select menu submissions replace the
// menu message; everything else gets a new private reply.
func (c *componentInteraction) Defer(ctx context.Context) error {
	typ := discordgo.InteractionResponseDeferredChannelMessageWithSource
	if c.i.Type == discordgo.InteractionMessageComponent && strings.HasPrefix(c.CustomID(), "select:") {
		typ = discordgo.InteractionResponseDeferredMessageUpdate
	}
	err := c.session.InteractionRespond(c.i, &discordgo.InteractionResponse{
		Type: typ,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	c.deferred = true
	return nil
}

func (c *componentInteraction) Respond(ctx context.Context, resp interaction.Response) error {
	if !c.deferred {
		return c.session.InteractionRespond(c.i, messageResponse(resp), discordgo.WithContext(ctx))
	}
	embeds := []*discordgo.MessageEmbed{embed(resp)}
	comps := []discordgo.MessageComponent{}
	_, err := c.session.InteractionResponseEdit(c.i, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &comps,
	}, discordgo.WithContext(ctx))
	return err
}

func (c *componentInteraction) Prompt(ctx context.Context, p interaction.Prompt) error {
	return c.session.InteractionRespond(c.i, promptResponse(p), discordgo.WithContext(ctx))
}
