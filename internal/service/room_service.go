package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/platform"
	"github.com/immxrtalbeast/tempvoice/internal/policy"
	"github.com/immxrtalbeast/tempvoice/internal/repository"
	"github.com/immxrtalbeast/tempvoice/lib/logger/sl"
)

type RoomOptions struct {
	NameTemplate  string
	MaxNameLength int
	MaxUserLimit  int
	// ClaimRequiresOfflineOwner makes claim also fail while the owner is
	// connected to any other voice channel of the guild.
	ClaimRequiresOfflineOwner bool
}

func (o *RoomOptions) setDefaults() {
	if o.NameTemplate == "" {
		o.NameTemplate = "{user}'s room"
	}
	if o.MaxNameLength <= 0 {
		o.MaxNameLength = DefaultMaxNameLength
	}
	if o.MaxUserLimit <= 0 {
		o.MaxUserLimit = DefaultMaxUserLimit
	}
}

// RoomService owns the lifecycle of temporary rooms. It never caches room
// records: every operation reads the current record, changes it, saves it and
// then brings the live channel in line with it.
type RoomService struct {
	rooms    repository.RoomRepository
	setups   repository.SetupRepository
	platform platform.Platform
	sweeper  *Sweeper
	opts     RoomOptions
	validate *validator.Validate
	log      *slog.Logger
}

func NewRoomService(
	rooms repository.RoomRepository,
	setups repository.SetupRepository,
	p platform.Platform,
	sweeper *Sweeper,
	opts RoomOptions,
	log *slog.Logger,
) *RoomService {
	if log == nil {
		log = slog.Default()
	}
	opts.setDefaults()
	return &RoomService{
		rooms:    rooms,
		setups:   setups,
		platform: p,
		sweeper:  sweeper,
		opts:     opts,
		validate: newValidator(),
		log:      log,
	}
}

// Current returns the caller's room, purging the record if the channel is gone.
func (s *RoomService) Current(ctx context.Context, actor domain.Actor) (*RoomView, error) {
	room, ch, err := s.ownedRoom(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &RoomView{Room: room, Channel: ch}, nil
}

func (s *RoomService) Rename(ctx context.Context, actor domain.Actor, name string) (*RoomView, error) {
	const op = "service.room.rename"
	log := s.opLog(op, actor)

	room, ch, err := s.ownedRoom(ctx, actor)
	if err != nil {
		return nil, err
	}

	name, err = s.validateName(name)
	if err != nil {
		return nil, err
	}

	if err := s.platform.EditChannel(ctx, room.ID, platform.ChannelEdit{Name: &name}); err != nil {
		log.Error("failed to rename channel", sl.Err(err))
		return nil, unavailable(op, err)
	}
	ch.Name = name

	log.Info("room renamed", slog.String("room_id", room.ID), slog.String("name", name))
	return &RoomView{Room: room, Channel: ch}, nil
}

func (s *RoomService) SetLimit(ctx context.Context, actor domain.Actor, limit int) (*RoomView, error) {
	const op = "service.room.setLimit"
	log := s.opLog(op, actor)

	room, ch, err := s.ownedRoom(ctx, actor)
	if err != nil {
		return nil, err
	}

	if err := s.validateLimit(limit); err != nil {
		return nil, err
	}

	if err := s.platform.EditChannel(ctx, room.ID, platform.ChannelEdit{UserLimit: &limit}); err != nil {
		log.Error("failed to set user limit", sl.Err(err))
		return nil, unavailable(op, err)
	}
	ch.UserLimit = limit

	log.Info("room limit set", slog.String("room_id", room.ID), slog.Int("limit", limit))
	return &RoomView{Room: room, Channel: ch}, nil
}

// ToggleLock flips the lock and returns the room in its new state.
func (s *RoomService) ToggleLock(ctx context.Context, actor domain.Actor) (*RoomView, error) {
	const op = "service.room.toggleLock"

	return s.mutate(ctx, op, actor, func(room *domain.Room, _ *platform.Channel) error {
		room.Policy.Locked = !room.Policy.Locked
		return nil
	})
}

func (s *RoomService) Trust(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	const op = "service.room.trust"

	if err := s.checkTarget(ctx, actor, target); err != nil {
		return nil, err
	}
	return s.mutate(ctx, op, actor, func(room *domain.Room, _ *platform.Channel) error {
		if target == room.OwnerID {
			return domain.Fail(domain.ErrInvalidTarget, "you already own this room")
		}
		room.Policy.Trust(target)
		return nil
	})
}

func (s *RoomService) Untrust(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	const op = "service.room.untrust"

	if err := validateTarget(target); err != nil {
		return nil, err
	}
	return s.mutate(ctx, op, actor, func(room *domain.Room, _ *platform.Channel) error {
		if !room.Policy.Untrust(target) {
			return domain.Fail(domain.ErrInvalidTarget, "<@%s> is not trusted", target)
		}
		return nil
	})
}

// Invite trusts target and sends them a direct message pointing at the room.
// A failed message does not fail the invite.
func (s *RoomService) Invite(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	const op = "service.room.invite"
	log := s.opLog(op, actor)

	view, err := s.Trust(ctx, actor, target)
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("<@%s> invited you to join <#%s>.", actor.UserID, view.Room.ID)
	if err := s.platform.NotifyUser(ctx, target, msg); err != nil {
		log.Warn("failed to deliver invite", slog.String("target", target), sl.Err(err))
		return view, nil
	}
	view.Notified = true
	return view, nil
}

// Kick disconnects target from the room without changing the policy.
func (s *RoomService) Kick(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	const op = "service.room.kick"
	log := s.opLog(op, actor)

	if err := validateTarget(target); err != nil {
		return nil, err
	}

	room, ch, err := s.ownedRoom(ctx, actor)
	if err != nil {
		return nil, err
	}
	if target == room.OwnerID {
		return nil, domain.Fail(domain.ErrInvalidTarget, "you cannot kick yourself")
	}

	in, err := s.connectedTo(ctx, room, target)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if !in {
		return nil, domain.Fail(domain.ErrInvalidTarget, "<@%s> is not in your room", target)
	}

	if err := s.platform.Disconnect(ctx, room.GuildID, target); err != nil {
		log.Error("failed to disconnect member", sl.Err(err))
		return nil, unavailable(op, err)
	}

	log.Info("member kicked", slog.String("room_id", room.ID), slog.String("target", target))
	return &RoomView{Room: room, Channel: ch}, nil
}

// Block denies target access. A connected target is disconnected.
func (s *RoomService) Block(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	const op = "service.room.block"
	log := s.opLog(op, actor)

	if err := s.checkTarget(ctx, actor, target); err != nil {
		return nil, err
	}

	view, err := s.mutate(ctx, op, actor, func(room *domain.Room, _ *platform.Channel) error {
		if target == room.OwnerID {
			return domain.Fail(domain.ErrInvalidTarget, "you cannot block yourself")
		}
		room.Policy.Block(target)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// the block is saved and applied at this point; a failed disconnect is
	// reported on the view rather than failing the operation
	in, err := s.connectedTo(ctx, view.Room, target)
	if err != nil {
		log.Error("failed to read voice members", sl.Err(err))
		view.DisconnectFailed = true
		return view, nil
	}
	if in {
		if err := s.platform.Disconnect(ctx, view.Room.GuildID, target); err != nil {
			log.Error("failed to disconnect blocked member", sl.Err(err))
			view.DisconnectFailed = true
		}
	}
	return view, nil
}

func (s *RoomService) Unblock(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	const op = "service.room.unblock"

	if err := validateTarget(target); err != nil {
		return nil, err
	}
	return s.mutate(ctx, op, actor, func(room *domain.Room, _ *platform.Channel) error {
		if !room.Policy.Unblock(target) {
			return domain.Fail(domain.ErrInvalidTarget, "<@%s> is not blocked", target)
		}
		return nil
	})
}

// Claim hands the caller's current room to the caller when its owner is no
// longer connected to it.
func (s *RoomService) Claim(ctx context.Context, actor domain.Actor) (*RoomView, error) {
	const op = "service.room.claim"
	log := s.opLog(op, actor)

	channelID, err := s.platform.VoiceChannelOf(ctx, actor.GuildID, actor.UserID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if channelID == "" {
		return nil, domain.Fail(domain.ErrNoActiveRoom, "join the room you want to claim first")
	}

	room, err := s.rooms.Find(ctx, actor.GuildID, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, domain.Fail(domain.ErrNoActiveRoom, "this channel is not a temporary room")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := s.sweeper.CheckRoom(ctx, room)
	if err != nil {
		return nil, err
	}

	switch {
	case room.OwnerID == actor.UserID:
		return nil, domain.Fail(domain.ErrInvalidTarget, "you already own this room")
	case room.Policy.IsBlocked(actor.UserID):
		return nil, domain.Fail(domain.ErrInvalidTarget, "you are blocked from this room")
	}

	ownerChannel, err := s.platform.VoiceChannelOf(ctx, room.GuildID, room.OwnerID)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if ownerChannel == room.ID {
		return nil, domain.ErrOwnerStillPresent
	}
	if s.opts.ClaimRequiresOfflineOwner && ownerChannel != "" {
		return nil, domain.ErrOwnerStillPresent
	}

	if err := s.ensureNoOtherRoom(ctx, actor.GuildID, actor.UserID, room.ID); err != nil {
		return nil, err
	}

	before := room.Clone()
	room.TransferTo(actor.UserID)
	if err := s.save(ctx, op, room); err != nil {
		return nil, err
	}
	if err := s.apply(ctx, op, before, room); err != nil {
		return nil, err
	}

	log.Info("room claimed",
		slog.String("room_id", room.ID),
		slog.String("previous_owner", before.OwnerID),
	)
	return &RoomView{Room: room, Channel: ch}, nil
}

// Transfer hands the room to target, who must be connected to it.
func (s *RoomService) Transfer(ctx context.Context, actor domain.Actor, target string) (*RoomView, error) {
	const op = "service.room.transfer"
	log := s.opLog(op, actor)

	if err := validateTarget(target); err != nil {
		return nil, err
	}

	room, ch, err := s.ownedRoom(ctx, actor)
	if err != nil {
		return nil, err
	}

	switch {
	case target == room.OwnerID:
		return nil, domain.Fail(domain.ErrInvalidTarget, "you already own this room")
	case target == s.platform.SelfID():
		return nil, domain.Fail(domain.ErrInvalidTarget, "rooms cannot be transferred to the bot")
	case room.Policy.IsBlocked(target):
		return nil, domain.Fail(domain.ErrInvalidTarget, "<@%s> is blocked from this room", target)
	}

	in, err := s.connectedTo(ctx, room, target)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if !in {
		return nil, domain.Fail(domain.ErrInvalidTarget, "<@%s> is not in your room", target)
	}

	if err := s.ensureNoOtherRoom(ctx, room.GuildID, target, room.ID); err != nil {
		return nil, err
	}

	before := room.Clone()
	room.TransferTo(target)
	if err := s.save(ctx, op, room); err != nil {
		return nil, err
	}
	if err := s.apply(ctx, op, before, room); err != nil {
		return nil, err
	}

	log.Info("room transferred", slog.String("room_id", room.ID), slog.String("new_owner", target))
	return &RoomView{Room: room, Channel: ch}, nil
}

// Delete removes the live channel and then the record. If the channel cannot
// be removed the record stays, so the room never becomes unmanaged.
func (s *RoomService) Delete(ctx context.Context, actor domain.Actor) (*RoomView, error) {
	const op = "service.room.delete"
	log := s.opLog(op, actor)

	room, ch, err := s.ownedRoom(ctx, actor)
	if err != nil {
		return nil, err
	}

	if err := s.sweeper.remove(ctx, room, "Owner requested deletion"); err != nil {
		log.Error("failed to delete room", slog.String("room_id", room.ID), sl.Err(err))
		return nil, err
	}

	return &RoomView{Room: room, Channel: ch}, nil
}

func (s *RoomService) List(ctx context.Context, guildID string) ([]*domain.Room, error) {
	return s.rooms.List(ctx, guildID)
}

// ownedRoom is the preamble of every owner action.
func (s *RoomService) ownedRoom(ctx context.Context, actor domain.Actor) (*domain.Room, *platform.Channel, error) {
	room, err := s.rooms.FindByOwner(ctx, actor.GuildID, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, nil, domain.ErrNoActiveRoom
		}
		return nil, nil, fmt.Errorf("find room: %w", err)
	}

	ch, err := s.sweeper.CheckRoom(ctx, room)
	if err != nil {
		return nil, nil, err
	}
	return room, ch, nil
}

// mutate runs the read-modify-write cycle for policy changes: read the
// record, change it, save it, then apply the derived overwrites.
func (s *RoomService) mutate(
	ctx context.Context,
	op string,
	actor domain.Actor,
	change func(room *domain.Room, ch *platform.Channel) error,
) (*RoomView, error) {
	log := s.opLog(op, actor)

	room, ch, err := s.ownedRoom(ctx, actor)
	if err != nil {
		return nil, err
	}
	before := room.Clone()

	if err := change(room, ch); err != nil {
		return nil, err
	}
	room.Policy.Forget(room.OwnerID)
	room.Touch()

	if err := s.save(ctx, op, room); err != nil {
		return nil, err
	}
	if err := s.apply(ctx, op, before, room); err != nil {
		return nil, err
	}

	log.Info("room policy updated",
		slog.String("room_id", room.ID),
		slog.Bool("locked", room.Policy.Locked),
		slog.Int("trusted", len(room.Policy.Trusted)),
		slog.Int("blocked", len(room.Policy.Blocked)),
	)
	return &RoomView{Room: room, Channel: ch}, nil
}

func (s *RoomService) save(ctx context.Context, op string, room *domain.Room) error {
	if err := s.rooms.Save(ctx, room); err != nil {
		if errors.Is(err, repository.ErrOwnerHasRoom) {
			return domain.Fail(domain.ErrInvalidTarget, "<@%s> already owns a room", room.OwnerID)
		}
		return fmt.Errorf("%s: save room: %w", op, err)
	}
	return nil
}

// apply brings the channel's overwrites in line with the room's policy.
// Live overwrites may trail writes made moments ago, so the plan is merged
// with one taken against the overwrites derived from before.
func (s *RoomService) apply(ctx context.Context, op string, before, room *domain.Room) error {
	desired := policy.Derive(room.Policy, room.OwnerID, room.GuildID)

	current, err := s.platform.Overwrites(ctx, room.ID)
	if err != nil {
		return unavailable(op, err)
	}

	changes := policy.Plan(current, desired, s.platform.SelfID())
	if before != nil {
		applied := policy.Derive(before.Policy, before.OwnerID, before.GuildID)
		changes = changes.Merge(policy.Plan(applied, desired, s.platform.SelfID()))
	}
	for _, ow := range changes.Set {
		if err := s.platform.SetOverwrite(ctx, room.ID, ow); err != nil {
			return unavailable(op, err)
		}
	}
	for _, subject := range changes.Remove {
		err := s.platform.DeleteOverwrite(ctx, room.ID, subject)
		if err != nil && !errors.Is(err, platform.ErrNotFound) {
			return unavailable(op, err)
		}
	}
	return nil
}

// checkTarget validates a user picked for trust, invite or block.
func (s *RoomService) checkTarget(ctx context.Context, actor domain.Actor, target string) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	if target == s.platform.SelfID() {
		return domain.Fail(domain.ErrInvalidTarget, "the bot cannot be targeted")
	}
	if target == actor.UserID {
		return domain.Fail(domain.ErrInvalidTarget, "you cannot target yourself")
	}
	ok, err := s.platform.IsGuildMember(ctx, actor.GuildID, target)
	if err != nil {
		return unavailable("service.room.checkTarget", err)
	}
	if !ok {
		return domain.Fail(domain.ErrInvalidTarget, "<@%s> is not a member of this server", target)
	}
	return nil
}

func (s *RoomService) connectedTo(ctx context.Context, room *domain.Room, userID string) (bool, error) {
	channelID, err := s.platform.VoiceChannelOf(ctx, room.GuildID, userID)
	if err != nil {
		return false, err
	}
	return channelID == room.ID, nil
}

func (s *RoomService) ensureNoOtherRoom(ctx context.Context, guildID, userID, roomID string) error {
	other, err := s.rooms.FindByOwner(ctx, guildID, userID)
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("find room: %w", err)
	case other.ID != roomID:
		return domain.Fail(domain.ErrInvalidTarget, "<@%s> already owns a room", userID)
	}
	return nil
}

func (s *RoomService) opLog(op string, actor domain.Actor) *slog.Logger {
	return s.log.With(
		slog.String("op", op),
		slog.String("guild_id", actor.GuildID),
		slog.String("user_id", actor.UserID),
	)
}
