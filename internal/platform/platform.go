// Package platform describes the chat platform capabilities the room
// lifecycle depends on. Implementations bound every call by a request timeout
// and return ErrNotFound when the entity no longer exists.
package platform

import (
	"context"
	"errors"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
)

var ErrNotFound = errors.New("platform: not found")

type ChannelKind int

const (
	ChannelVoice ChannelKind = iota
	ChannelCategory
	ChannelText
)

type Channel struct {
	ID        string
	GuildID   string
	ParentID  string
	Name      string
	Kind      ChannelKind
	UserLimit int
}

type ChannelSpec struct {
	Name       string
	Kind       ChannelKind
	ParentID   string
	UserLimit  int
	Overwrites []domain.Overwrite
}

// ChannelEdit changes only the non-nil fields.
type ChannelEdit struct {
	Name      *string
	UserLimit *int
}

type Platform interface {
	// SelfID is the bot's own user id.
	SelfID() string

	Channel(ctx context.Context, channelID string) (*Channel, error)
	CreateChannel(ctx context.Context, guildID string, spec ChannelSpec) (*Channel, error)
	EditChannel(ctx context.Context, channelID string, edit ChannelEdit) error
	DeleteChannel(ctx context.Context, channelID, reason string) error

	Overwrites(ctx context.Context, channelID string) ([]domain.Overwrite, error)
	SetOverwrite(ctx context.Context, channelID string, ow domain.Overwrite) error
	DeleteOverwrite(ctx context.Context, channelID, subjectID string) error

	// VoiceChannelOf returns the voice channel userID is connected to, or ""
	// when the user is not connected anywhere in the guild.
	VoiceChannelOf(ctx context.Context, guildID, userID string) (string, error)
	VoiceMembers(ctx context.Context, guildID, channelID string) ([]string, error)
	IsGuildMember(ctx context.Context, guildID, userID string) (bool, error)
	MoveMember(ctx context.Context, guildID, userID, channelID string) error
	Disconnect(ctx context.Context, guildID, userID string) error

	// SendInterface posts the room control panel and returns its message id.
	SendInterface(ctx context.Context, channelID string, variant domain.InterfaceVariant) (string, error)
	NotifyUser(ctx context.Context, userID, message string) error
}
