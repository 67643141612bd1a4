package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/platform"
	"github.com/immxrtalbeast/tempvoice/internal/policy"
	"github.com/immxrtalbeast/tempvoice/internal/repository"
	"github.com/immxrtalbeast/tempvoice/lib/logger/sl"
)

const (
	ReasonNoSetup          = "no setup found"
	ReasonCategoryMissing  = "category missing"
	ReasonCreatorMissing   = "creator channel missing"
	ReasonCreatorMisplaced = "creator channel outside category"
	ReasonInterfaceMissing = "interface channel missing"
)

const (
	defaultCategoryName  = "Temporary Channels"
	defaultCreatorName   = "➕ Create Room"
	defaultInterfaceName = "interface"
)

type SetupStatus struct {
	Valid  bool
	Reason string
	Setup  *domain.GuildSetup
}

type OutcomeKind int

const (
	OutcomeCreated OutcomeKind = iota
	OutcomeExisting
	OutcomeCleared
	OutcomeCreatorAdded
	OutcomeInterfacePosted
)

type SetupOutcome struct {
	Kind  OutcomeKind
	Setup *domain.GuildSetup
	// Reason explains why an invalid setup was cleared.
	Reason string
}

type SetupService struct {
	setups   repository.SetupRepository
	platform platform.Platform
	log      *slog.Logger
}

func NewSetupService(setups repository.SetupRepository, p platform.Platform, log *slog.Logger) *SetupService {
	if log == nil {
		log = slog.Default()
	}
	return &SetupService{
		setups:   setups,
		platform: p,
		log:      log,
	}
}

// Validate checks the stored setup against the platform. The first failing
// check decides the reason, and a definitively broken record is deleted.
// Transient platform failures leave the record alone.
func (s *SetupService) Validate(ctx context.Context, guildID string) (*SetupStatus, error) {
	const op = "service.setup.validate"
	log := s.log.With(slog.String("op", op), slog.String("guild_id", guildID))

	setup, err := s.setups.Get(ctx, guildID)
	if err != nil {
		if errors.Is(err, repository.ErrSetupNotFound) {
			return &SetupStatus{Reason: ReasonNoSetup}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reason, err := s.check(ctx, setup)
	if err != nil {
		return nil, unavailable(op, err)
	}
	if reason == "" {
		return &SetupStatus{Valid: true, Setup: setup}, nil
	}

	if err := s.setups.Delete(ctx, guildID); err != nil && !errors.Is(err, repository.ErrSetupNotFound) {
		return nil, fmt.Errorf("%s: invalidate: %w", op, err)
	}
	log.Warn("setup invalidated", slog.String("reason", reason))

	return &SetupStatus{Reason: reason, Setup: setup}, nil
}

func (s *SetupService) check(ctx context.Context, setup *domain.GuildSetup) (string, error) {
	if _, err := s.platform.Channel(ctx, setup.CategoryID); err != nil {
		return missing(err, ReasonCategoryMissing)
	}

	creator, err := s.platform.Channel(ctx, setup.CreatorChannelID)
	if err != nil {
		return missing(err, ReasonCreatorMissing)
	}
	if creator.ParentID != setup.CategoryID {
		return ReasonCreatorMisplaced, nil
	}

	if _, err := s.platform.Channel(ctx, setup.InterfaceChannelID); err != nil {
		return missing(err, ReasonInterfaceMissing)
	}
	return "", nil
}

func missing(err error, reason string) (string, error) {
	if errors.Is(err, platform.ErrNotFound) {
		return reason, nil
	}
	return "", err
}

// Setup provisions the category, creator channel and interface of a guild.
// An existing valid setup is returned with ErrAlreadySetup; an invalid one is
// cleared and the caller has to run setup again.
func (s *SetupService) Setup(ctx context.Context, actor domain.Actor, variant domain.InterfaceVariant) (*SetupOutcome, error) {
	const op = "service.setup.setup"
	log := s.log.With(
		slog.String("op", op),
		slog.String("guild_id", actor.GuildID),
		slog.String("user_id", actor.UserID),
	)

	if !actor.IsAdmin {
		return nil, domain.Fail(domain.ErrForbidden, "only administrators can set up temporary rooms")
	}

	status, err := s.Validate(ctx, actor.GuildID)
	if err != nil {
		return nil, err
	}
	switch {
	case status.Valid:
		return &SetupOutcome{Kind: OutcomeExisting, Setup: status.Setup}, domain.ErrAlreadySetup
	case status.Setup != nil:
		return &SetupOutcome{Kind: OutcomeCleared, Reason: status.Reason}, nil
	}

	var created []string
	rollback := func() {
		for i := len(created) - 1; i >= 0; i-- {
			if err := s.platform.DeleteChannel(ctx, created[i], "Setup failed"); err != nil && !errors.Is(err, platform.ErrNotFound) {
				log.Error("failed to roll back setup channel", slog.String("channel_id", created[i]), sl.Err(err))
			}
		}
	}

	self := domain.Overwrite{SubjectID: s.platform.SelfID(), Kind: domain.SubjectMember, Allow: policy.SelfAllow}

	category, err := s.platform.CreateChannel(ctx, actor.GuildID, platform.ChannelSpec{
		Name: defaultCategoryName,
		Kind: platform.ChannelCategory,
		Overwrites: []domain.Overwrite{
			{SubjectID: actor.GuildID, Kind: domain.SubjectRole, Allow: domain.PermissionConnect | domain.PermissionSpeak},
			self,
		},
	})
	if err != nil {
		return nil, unavailable(op, err)
	}
	created = append(created, category.ID)

	creator, err := s.createCreator(ctx, actor.GuildID, category.ID)
	if err != nil {
		rollback()
		return nil, unavailable(op, err)
	}
	created = append(created, creator.ID)

	iface, err := s.platform.CreateChannel(ctx, actor.GuildID, platform.ChannelSpec{
		Name:     defaultInterfaceName,
		Kind:     platform.ChannelText,
		ParentID: category.ID,
		Overwrites: []domain.Overwrite{
			{
				SubjectID: actor.GuildID,
				Kind:      domain.SubjectRole,
				Allow:     domain.PermissionViewChannel | domain.PermissionReadHistory,
				Deny:      domain.PermissionSendMessages,
			},
			self,
		},
	})
	if err != nil {
		rollback()
		return nil, unavailable(op, err)
	}
	created = append(created, iface.ID)

	msgID, err := s.platform.SendInterface(ctx, iface.ID, variant)
	if err != nil {
		rollback()
		return nil, unavailable(op, err)
	}

	now := time.Now().UTC()
	setup := &domain.GuildSetup{
		GuildID:            actor.GuildID,
		CategoryID:         category.ID,
		CreatorChannelID:   creator.ID,
		InterfaceChannelID: iface.ID,
		InterfaceMessageID: msgID,
		Variant:            variant,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.setups.Save(ctx, setup); err != nil {
		rollback()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("guild set up",
		slog.String("category_id", category.ID),
		slog.String("creator_id", creator.ID),
		slog.String("interface_id", iface.ID),
		slog.String("variant", string(variant)),
	)
	return &SetupOutcome{Kind: OutcomeCreated, Setup: setup}, nil
}

// NewCreator adds a fresh creator channel to the category and makes it the
// one the guild uses. The previous creator channel is left in place.
func (s *SetupService) NewCreator(ctx context.Context, actor domain.Actor) (*SetupOutcome, error) {
	const op = "service.setup.newCreator"

	setup, err := s.requireSetup(ctx, actor)
	if err != nil {
		return nil, err
	}

	creator, err := s.createCreator(ctx, actor.GuildID, setup.CategoryID)
	if err != nil {
		return nil, unavailable(op, err)
	}

	setup.CreatorChannelID = creator.ID
	setup.UpdatedAt = time.Now().UTC()
	if err := s.setups.Save(ctx, setup); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("creator channel added",
		slog.String("op", op),
		slog.String("guild_id", actor.GuildID),
		slog.String("creator_id", creator.ID),
	)
	return &SetupOutcome{Kind: OutcomeCreatorAdded, Setup: setup}, nil
}

// NewInterface posts a new control panel into the interface channel.
func (s *SetupService) NewInterface(ctx context.Context, actor domain.Actor) (*SetupOutcome, error) {
	const op = "service.setup.newInterface"

	setup, err := s.requireSetup(ctx, actor)
	if err != nil {
		return nil, err
	}

	msgID, err := s.platform.SendInterface(ctx, setup.InterfaceChannelID, setup.Variant)
	if err != nil {
		return nil, unavailable(op, err)
	}

	setup.InterfaceMessageID = msgID
	setup.UpdatedAt = time.Now().UTC()
	if err := s.setups.Save(ctx, setup); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("interface posted",
		slog.String("op", op),
		slog.String("guild_id", actor.GuildID),
		slog.String("message_id", msgID),
	)
	return &SetupOutcome{Kind: OutcomeInterfacePosted, Setup: setup}, nil
}

func (s *SetupService) requireSetup(ctx context.Context, actor domain.Actor) (*domain.GuildSetup, error) {
	if !actor.IsAdmin {
		return nil, domain.Fail(domain.ErrForbidden, "only administrators can change the setup")
	}
	status, err := s.Validate(ctx, actor.GuildID)
	if err != nil {
		return nil, err
	}
	if !status.Valid {
		return nil, domain.Fail(domain.ErrSetupRequired, "%s, run setup first", status.Reason)
	}
	return status.Setup, nil
}

func (s *SetupService) createCreator(ctx context.Context, guildID, categoryID string) (*platform.Channel, error) {
	return s.platform.CreateChannel(ctx, guildID, platform.ChannelSpec{
		Name:     defaultCreatorName,
		Kind:     platform.ChannelVoice,
		ParentID: categoryID,
		Overwrites: []domain.Overwrite{
			{
				SubjectID: guildID,
				Kind:      domain.SubjectRole,
				Allow:     domain.PermissionConnect,
				Deny:      domain.PermissionSpeak,
			},
			{SubjectID: s.platform.SelfID(), Kind: domain.SubjectMember, Allow: policy.SelfAllow},
		},
	})
}
