package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/platform"
)

var permissionBits = []struct {
	p   domain.Permission
	bit int64
}{
	{domain.PermissionViewChannel, discordgo.PermissionViewChannel},
	{domain.PermissionConnect, discordgo.PermissionVoiceConnect},
	{domain.PermissionSpeak, discordgo.PermissionVoiceSpeak},
	{domain.PermissionManageChannel, discordgo.PermissionManageChannels},
	{domain.PermissionMoveMembers, discordgo.PermissionVoiceMoveMembers},
	{domain.PermissionSendMessages, discordgo.PermissionSendMessages},
	{domain.PermissionReadHistory, discordgo.PermissionReadMessageHistory},
	{domain.PermissionManageMessages, discordgo.PermissionManageMessages},
	{domain.PermissionEmbedLinks, discordgo.PermissionEmbedLinks},
}

func toBits(p domain.Permission) int64 {
	var bits int64
	for _, pb := range permissionBits {
		if p.Has(pb.p) {
			bits |= pb.bit
		}
	}
	return bits
}

// fromBits drops the bits rooms never manage.
func fromBits(bits int64) domain.Permission {
	var p domain.Permission
	for _, pb := range permissionBits {
		if bits&pb.bit == pb.bit {
			p |= pb.p
		}
	}
	return p
}

func toOverwriteType(kind domain.SubjectKind) discordgo.PermissionOverwriteType {
	if kind == domain.SubjectRole {
		return discordgo.PermissionOverwriteTypeRole
	}
	return discordgo.PermissionOverwriteTypeMember
}

func toDomainOverwrite(po *discordgo.PermissionOverwrite) domain.Overwrite {
	kind := domain.SubjectMember
	if po.Type == discordgo.PermissionOverwriteTypeRole {
		kind = domain.SubjectRole
	}
	return domain.Overwrite{
		SubjectID: po.ID,
		Kind:      kind,
		Allow:     fromBits(po.Allow),
		Deny:      fromBits(po.Deny),
	}
}

func toDiscordOverwrites(ows []domain.Overwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(ows))
	for _, ow := range ows {
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    ow.SubjectID,
			Type:  toOverwriteType(ow.Kind),
			Allow: toBits(ow.Allow),
			Deny:  toBits(ow.Deny),
		})
	}
	return out
}

// withOverwrite returns list with po replacing any entry for the same
// subject. The input slice is not modified.
func withOverwrite(list []*discordgo.PermissionOverwrite, po *discordgo.PermissionOverwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(list)+1)
	for _, cur := range list {
		if cur.ID != po.ID {
			out = append(out, cur)
		}
	}
	return append(out, po)
}

func withoutOverwrite(list []*discordgo.PermissionOverwrite, subjectID string) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(list))
	for _, cur := range list {
		if cur.ID != subjectID {
			out = append(out, cur)
		}
	}
	return out
}

func toChannelType(kind platform.ChannelKind) discordgo.ChannelType {
	switch kind {
	case platform.ChannelCategory:
		return discordgo.ChannelTypeGuildCategory
	case platform.ChannelText:
		return discordgo.ChannelTypeGuildText
	}
	return discordgo.ChannelTypeGuildVoice
}

func toChannel(ch *discordgo.Channel) *platform.Channel {
	kind := platform.ChannelVoice
	switch ch.Type {
	case discordgo.ChannelTypeGuildCategory:
		kind = platform.ChannelCategory
	case discordgo.ChannelTypeGuildText:
		kind = platform.ChannelText
	}
	return &platform.Channel{
		ID:        ch.ID,
		GuildID:   ch.GuildID,
		ParentID:  ch.ParentID,
		Name:      ch.Name,
		Kind:      kind,
		UserLimit: ch.UserLimit,
	}
}

// translate maps a discordgo error to platform.ErrNotFound when the entity
// does not exist.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return fmt.Errorf("%w: %w", platform.ErrNotFound, err)
	}
	return err
}

func isNotFound(err error) bool {
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return true
	}
	var rest *discordgo.RESTError
	return errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound
}

func displayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u == nil {
		return ""
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
