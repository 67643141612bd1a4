package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/platform"
	"github.com/immxrtalbeast/tempvoice/internal/repository"
	"github.com/immxrtalbeast/tempvoice/lib/logger/sl"
)

type SweepReport struct {
	Checked  int `json:"checked"`
	Purged   int `json:"purged"`
	Released int `json:"released"`
}

// Sweeper heals divergence between room records and the live platform.
// CheckRoom is used inline by every room operation; Sweep and Run walk all
// records.
type Sweeper struct {
	rooms      repository.RoomRepository
	platform   platform.Platform
	log        *slog.Logger
	emptyGrace time.Duration
	now        func() time.Time
}

func NewSweeper(rooms repository.RoomRepository, p platform.Platform, emptyGrace time.Duration, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		rooms:      rooms,
		platform:   p,
		log:        log,
		emptyGrace: emptyGrace,
		now:        time.Now,
	}
}

// CheckRoom resolves the live channel of room. If the channel is gone the
// record is purged and ErrRoomVanished returned.
func (s *Sweeper) CheckRoom(ctx context.Context, room *domain.Room) (*platform.Channel, error) {
	const op = "service.sweeper.checkRoom"

	ch, err := s.platform.Channel(ctx, room.ID)
	if err == nil {
		return ch, nil
	}
	if !errors.Is(err, platform.ErrNotFound) {
		return nil, unavailable(op, err)
	}

	if err := s.purge(ctx, room); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nil, domain.ErrRoomVanished
}

// Sweep checks every room of guildID, or of all guilds when guildID is empty.
// Records of vanished rooms are purged; live rooms that have been empty for
// longer than the grace period are deleted.
func (s *Sweeper) Sweep(ctx context.Context, guildID string) (SweepReport, error) {
	const op = "service.sweeper.sweep"
	log := s.log.With(slog.String("op", op), slog.String("guild_id", guildID))

	var report SweepReport
	rooms, err := s.rooms.List(ctx, guildID)
	if err != nil {
		return report, fmt.Errorf("%s: %w", op, err)
	}

	var errs []error
	for _, room := range rooms {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		_, err := s.CheckRoom(ctx, room)
		switch {
		case errors.Is(err, domain.ErrRoomVanished):
			report.Purged++
			continue
		case err != nil:
			errs = append(errs, err)
			continue
		}

		released, err := s.releaseIfEmpty(ctx, room)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if released {
			report.Released++
		}
	}

	log.Info("sweep finished",
		slog.Int("checked", report.Checked),
		slog.Int("purged", report.Purged),
		slog.Int("released", report.Released),
	)
	return report, errors.Join(errs...)
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx, ""); err != nil && ctx.Err() == nil {
				s.log.Warn("periodic sweep incomplete", sl.Err(err))
			}
		}
	}
}

func (s *Sweeper) releaseIfEmpty(ctx context.Context, room *domain.Room) (bool, error) {
	if s.now().Sub(room.CreatedAt) < s.emptyGrace {
		return false, nil
	}

	members, err := s.platform.VoiceMembers(ctx, room.GuildID, room.ID)
	if err != nil {
		return false, unavailable("service.sweeper.releaseIfEmpty", err)
	}
	if len(members) > 0 {
		return false, nil
	}

	if err := s.remove(ctx, room, "Temporary room is empty"); err != nil {
		return false, err
	}
	return true, nil
}

// remove deletes the live channel and then the record. The record is kept
// when the channel could not be deleted.
func (s *Sweeper) remove(ctx context.Context, room *domain.Room, reason string) error {
	const op = "service.sweeper.remove"

	err := s.platform.DeleteChannel(ctx, room.ID, reason)
	if err != nil && !errors.Is(err, platform.ErrNotFound) {
		return unavailable(op, err)
	}

	if err := s.rooms.Delete(ctx, room.ID); err != nil && !errors.Is(err, repository.ErrRoomNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("room removed",
		slog.String("op", op),
		slog.String("guild_id", room.GuildID),
		slog.String("room_id", room.ID),
		slog.String("reason", reason),
	)
	return nil
}

func (s *Sweeper) purge(ctx context.Context, room *domain.Room) error {
	if err := s.rooms.Delete(ctx, room.ID); err != nil && !errors.Is(err, repository.ErrRoomNotFound) {
		return err
	}
	s.log.Info("purged record of vanished room",
		slog.String("guild_id", room.GuildID),
		slog.String("room_id", room.ID),
		slog.String("owner_id", room.OwnerID),
	)
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPlatformUnavailable, err)
}
