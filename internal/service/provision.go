package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/platform"
	"github.com/immxrtalbeast/tempvoice/internal/policy"
	"github.com/immxrtalbeast/tempvoice/internal/repository"
	"github.com/immxrtalbeast/tempvoice/lib/logger/sl"
)

// Provision handles a member joining the creator channel of a guild. The
// member is moved into their live room, or into a new one created for them.
// Joins of any other channel return nil, nil.
func (s *RoomService) Provision(ctx context.Context, actor domain.Actor, channelID string) (*RoomView, error) {
	const op = "service.room.provision"
	log := s.opLog(op, actor)

	setup, err := s.setups.Get(ctx, actor.GuildID)
	if err != nil {
		if errors.Is(err, repository.ErrSetupNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if setup.CreatorChannelID != channelID {
		return nil, nil
	}

	room, ch, err := s.ownedRoom(ctx, actor)
	switch {
	case err == nil:
		if err := s.platform.MoveMember(ctx, actor.GuildID, actor.UserID, room.ID); err != nil {
			log.Warn("failed to move owner into existing room", sl.Err(err))
		}
		return &RoomView{Room: room, Channel: ch}, nil
	case errors.Is(err, domain.ErrNoActiveRoom), errors.Is(err, domain.ErrRoomVanished):
	default:
		return nil, err
	}

	var initial domain.AccessPolicy
	overwrites := append(
		policy.Derive(initial, actor.UserID, actor.GuildID),
		domain.Overwrite{SubjectID: s.platform.SelfID(), Kind: domain.SubjectMember, Allow: policy.SelfAllow},
	)

	ch, err = s.platform.CreateChannel(ctx, actor.GuildID, platform.ChannelSpec{
		Name:       s.roomName(actor),
		Kind:       platform.ChannelVoice,
		ParentID:   setup.CategoryID,
		Overwrites: overwrites,
	})
	if err != nil {
		log.Error("failed to create room channel", sl.Err(err))
		return nil, unavailable(op, err)
	}

	room = domain.NewRoom(ch.ID, actor.GuildID, actor.UserID)
	if err := s.rooms.Save(ctx, room); err != nil {
		log.Error("failed to save room, removing channel", slog.String("room_id", ch.ID), sl.Err(err))
		if derr := s.platform.DeleteChannel(ctx, ch.ID, "Room could not be registered"); derr != nil {
			log.Error("failed to remove unregistered channel", slog.String("room_id", ch.ID), sl.Err(derr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.platform.MoveMember(ctx, actor.GuildID, actor.UserID, ch.ID); err != nil {
		log.Warn("failed to move owner into new room", slog.String("room_id", ch.ID), sl.Err(err))
	}

	log.Info("room provisioned", slog.String("room_id", ch.ID), slog.String("name", ch.Name))
	return &RoomView{Room: room, Channel: ch}, nil
}

// Release deletes a managed room once nobody is left in it.
func (s *RoomService) Release(ctx context.Context, guildID, channelID string) error {
	const op = "service.room.release"

	room, err := s.rooms.Find(ctx, guildID, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	members, err := s.platform.VoiceMembers(ctx, guildID, channelID)
	if err != nil {
		return unavailable(op, err)
	}
	if len(members) > 0 {
		return nil
	}

	return s.sweeper.remove(ctx, room, "Temporary room is empty")
}

func (s *RoomService) roomName(actor domain.Actor) string {
	display := actor.DisplayName
	if display == "" {
		display = actor.UserID
	}
	name := strings.ReplaceAll(s.opts.NameTemplate, "{user}", display)
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) > s.opts.MaxNameLength {
		name = string([]rune(name)[:s.opts.MaxNameLength])
	}
	return name
}
