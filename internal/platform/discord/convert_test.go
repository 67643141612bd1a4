package discord

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/platform"
	"github.com/immxrtalbeast/tempvoice/internal/policy"
	"github.com/stretchr/testify/assert"
)

func TestPermissionBits(t *testing.T) {
	tcases := []struct {
		name string
		p    domain.Permission
		bits int64
	}{
		{"none", 0, 0},
		{"connect", domain.PermissionConnect, discordgo.PermissionVoiceConnect},
		{"trusted", policy.TrustedAllow, discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak},
		{
			"owner",
			policy.OwnerAllow,
			discordgo.PermissionViewChannel | discordgo.PermissionVoiceConnect | discordgo.PermissionVoiceSpeak |
				discordgo.PermissionManageChannels | discordgo.PermissionVoiceMoveMembers,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.bits, toBits(tc.p))
			assert.Equal(t, tc.p, fromBits(tc.bits))
		})
	}
}

func TestFromBitsDropsUnmanagedBits(t *testing.T) {
	bits := int64(discordgo.PermissionVoiceConnect | discordgo.PermissionAdministrator)
	assert.Equal(t, domain.PermissionConnect, fromBits(bits))
}

func TestOverwriteConversion(t *testing.T) {
	ows := []domain.Overwrite{
		{SubjectID: "1", Kind: domain.SubjectRole, Deny: policy.LockedDeny},
		{SubjectID: "100", Kind: domain.SubjectMember, Allow: policy.OwnerAllow},
	}

	out := toDiscordOverwrites(ows)
	if assert.Len(t, out, 2) {
		assert.Equal(t, discordgo.PermissionOverwriteTypeRole, out[0].Type)
		assert.Equal(t, int64(discordgo.PermissionVoiceConnect), out[0].Deny)
		assert.Equal(t, discordgo.PermissionOverwriteTypeMember, out[1].Type)

		for i, po := range out {
			assert.Equal(t, ows[i], toDomainOverwrite(po))
		}
	}
}

func TestToChannel(t *testing.T) {
	ch := toChannel(&discordgo.Channel{
		ID:        "10",
		GuildID:   "1",
		ParentID:  "5",
		Name:      "room",
		Type:      discordgo.ChannelTypeGuildVoice,
		UserLimit: 4,
	})
	assert.Equal(t, &platform.Channel{ID: "10", GuildID: "1", ParentID: "5", Name: "room", Kind: platform.ChannelVoice, UserLimit: 4}, ch)

	assert.Equal(t, platform.ChannelCategory, toChannel(&discordgo.Channel{Type: discordgo.ChannelTypeGuildCategory}).Kind)
	assert.Equal(t, discordgo.ChannelTypeGuildText, toChannelType(platform.ChannelText))
}

func TestTranslate(t *testing.T) {
	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}

	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(notFound), platform.ErrNotFound)
	assert.ErrorIs(t, translate(discordgo.ErrStateNotFound), platform.ErrNotFound)
	assert.NotErrorIs(t, translate(forbidden), platform.ErrNotFound)
	assert.NotErrorIs(t, translate(errors.New("timeout")), platform.ErrNotFound)
}

func TestDisplayName(t *testing.T) {
	u := &discordgo.User{Username: "alice_01", GlobalName: "Alice"}
	assert.Equal(t, "Ali", displayName(&discordgo.Member{Nick: "Ali"}, u))
	assert.Equal(t, "Alice", displayName(&discordgo.Member{}, u))
	assert.Equal(t, "bob", displayName(nil, &discordgo.User{Username: "bob"}))
	assert.Empty(t, displayName(nil, nil))
}
