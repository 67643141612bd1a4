// Package discord adapts a discordgo session to the platform and routes
// gateway events to the room services.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/immxrtalbeast/tempvoice/internal/api/interaction"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/platform"
)

const DefaultRequestTimeout = 10 * time.Second

// Client implements platform.Platform. Reads are served from the session
// state cache when possible; every REST call is bounded by the request
// timeout.
type Client struct {
	session *discordgo.Session
	timeout time.Duration
	log     *slog.Logger
}

func NewClient(session *discordgo.Session, timeout time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		session: session,
		timeout: timeout,
		log:     log,
	}
}

func (c *Client) bound(ctx context.Context) (discordgo.RequestOption, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return discordgo.WithContext(ctx), cancel
}

func (c *Client) SelfID() string {
	if c.session.State == nil || c.session.State.User == nil {
		return ""
	}
	return c.session.State.User.ID
}

func (c *Client) Channel(ctx context.Context, channelID string) (*platform.Channel, error) {
	ch, err := c.channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return toChannel(ch), nil
}

func (c *Client) channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if ch, err := c.session.State.Channel(channelID); err == nil {
		return ch, nil
	}

	opt, cancel := c.bound(ctx)
	defer cancel()

	ch, err := c.session.Channel(channelID, opt)
	if err != nil {
		return nil, translate(err)
	}
	return ch, nil
}

func (c *Client) CreateChannel(ctx context.Context, guildID string, spec platform.ChannelSpec) (*platform.Channel, error) {
	opt, cancel := c.bound(ctx)
	defer cancel()

	ch, err := c.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 toChannelType(spec.Kind),
		ParentID:             spec.ParentID,
		UserLimit:            spec.UserLimit,
		PermissionOverwrites: toDiscordOverwrites(spec.Overwrites),
	}, opt)
	if err != nil {
		return nil, translate(err)
	}
	return toChannel(ch), nil
}

// EditChannel patches the channel directly since discordgo's ChannelEdit
// omits a zero user limit.
func (c *Client) EditChannel(ctx context.Context, channelID string, edit platform.ChannelEdit) error {
	body := make(map[string]any, 2)
	if edit.Name != nil {
		body["name"] = *edit.Name
	}
	if edit.UserLimit != nil {
		body["user_limit"] = *edit.UserLimit
	}
	if len(body) == 0 {
		return nil
	}

	opt, cancel := c.bound(ctx)
	defer cancel()

	endpoint := discordgo.EndpointChannel(channelID)
	_, err := c.session.RequestWithBucketID(http.MethodPatch, endpoint, body, endpoint, opt)
	return translate(err)
}

func (c *Client) DeleteChannel(ctx context.Context, channelID, reason string) error {
	opt, cancel := c.bound(ctx)
	defer cancel()

	_, err := c.session.ChannelDelete(channelID, opt, discordgo.WithAuditLogReason(reason))
	return translate(err)
}

// Overwrites always reads over REST. The state cache only learns about
// permission changes from gateway events, which can trail our own writes.
func (c *Client) Overwrites(ctx context.Context, channelID string) ([]domain.Overwrite, error) {
	opt, cancel := c.bound(ctx)
	defer cancel()

	ch, err := c.session.Channel(channelID, opt)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]domain.Overwrite, 0, len(ch.PermissionOverwrites))
	for _, po := range ch.PermissionOverwrites {
		out = append(out, toDomainOverwrite(po))
	}
	return out, nil
}

func (c *Client) SetOverwrite(ctx context.Context, channelID string, ow domain.Overwrite) error {
	opt, cancel := c.bound(ctx)
	defer cancel()

	po := &discordgo.PermissionOverwrite{
		ID:    ow.SubjectID,
		Type:  toOverwriteType(ow.Kind),
		Allow: toBits(ow.Allow),
		Deny:  toBits(ow.Deny),
	}
	err := c.session.ChannelPermissionSet(channelID, po.ID, po.Type, po.Allow, po.Deny, opt)
	if err != nil {
		return translate(err)
	}
	c.cacheOverwrites(channelID, func(list []*discordgo.PermissionOverwrite) []*discordgo.PermissionOverwrite {
		return withOverwrite(list, po)
	})
	return nil
}

func (c *Client) DeleteOverwrite(ctx context.Context, channelID, subjectID string) error {
	opt, cancel := c.bound(ctx)
	defer cancel()

	if err := c.session.ChannelPermissionDelete(channelID, subjectID, opt); err != nil {
		return translate(err)
	}
	c.cacheOverwrites(channelID, func(list []*discordgo.PermissionOverwrite) []*discordgo.PermissionOverwrite {
		return withoutOverwrite(list, subjectID)
	})
	return nil
}

// cacheOverwrites applies a successful write to the cached channel so state
// reads agree with it before the gateway event arrives.
func (c *Client) cacheOverwrites(channelID string, edit func([]*discordgo.PermissionOverwrite) []*discordgo.PermissionOverwrite) {
	if c.session.State == nil {
		return
	}
	ch, err := c.session.State.Channel(channelID)
	if err != nil {
		return
	}

	c.session.State.Lock()
	defer c.session.State.Unlock()
	ch.PermissionOverwrites = edit(ch.PermissionOverwrites)
}

func (c *Client) VoiceChannelOf(_ context.Context, guildID, userID string) (string, error) {
	vs, err := c.session.State.VoiceState(guildID, userID)
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return "", nil
		}
		return "", err
	}
	return vs.ChannelID, nil
}

func (c *Client) VoiceMembers(_ context.Context, guildID, channelID string) ([]string, error) {
	guild, err := c.session.State.Guild(guildID)
	if err != nil {
		return nil, translate(err)
	}

	c.session.State.RLock()
	defer c.session.State.RUnlock()

	var out []string
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			out = append(out, vs.UserID)
		}
	}
	return out, nil
}

func (c *Client) IsGuildMember(ctx context.Context, guildID, userID string) (bool, error) {
	if _, err := c.session.State.Member(guildID, userID); err == nil {
		return true, nil
	}

	opt, cancel := c.bound(ctx)
	defer cancel()

	if _, err := c.session.GuildMember(guildID, userID, opt); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) MoveMember(ctx context.Context, guildID, userID, channelID string) error {
	opt, cancel := c.bound(ctx)
	defer cancel()

	return translate(c.session.GuildMemberMove(guildID, userID, &channelID, opt))
}

func (c *Client) Disconnect(ctx context.Context, guildID, userID string) error {
	opt, cancel := c.bound(ctx)
	defer cancel()

	return translate(c.session.GuildMemberMove(guildID, userID, nil, opt))
}

func (c *Client) SendInterface(ctx context.Context, channelID string, variant domain.InterfaceVariant) (string, error) {
	opt, cancel := c.bound(ctx)
	defer cancel()

	msg, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{panelEmbed(variant)},
		Components: components(interaction.Panel(variant)),
	}, opt)
	if err != nil {
		return "", translate(err)
	}
	return msg.ID, nil
}

func (c *Client) NotifyUser(ctx context.Context, userID, message string) error {
	opt, cancel := c.bound(ctx)
	defer cancel()

	dm, err := c.session.UserChannelCreate(userID, opt)
	if err != nil {
		return fmt.Errorf("open direct message: %w", translate(err))
	}
	if _, err := c.session.ChannelMessageSend(dm.ID, message, opt); err != nil {
		return fmt.Errorf("send direct message: %w", translate(err))
	}
	return nil
}
