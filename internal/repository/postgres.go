package repository

import (
	"context"
	"errors"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/repository/model"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists the tables the postgres repositories need migrated.
func Models() []any {
	return []any{&model.Room{}, &model.GuildSetup{}}
}

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewPostgresRoomRepository(db *gorm.DB) *PostgresRoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Find(ctx context.Context, guildID, roomID string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var room model.Room
	err := r.db.WithContext(ctx).First(&room, "id = ? AND guild_id = ?", roomID, guildID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	return toDomainRoom(&room), nil
}

func (r *PostgresRoomRepository) FindByOwner(ctx context.Context, guildID, ownerID string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var room model.Room
	err := r.db.WithContext(ctx).First(&room, "guild_id = ? AND owner_id = ?", guildID, ownerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	return toDomainRoom(&room), nil
}

func (r *PostgresRoomRepository) Save(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if room == nil {
		return errors.New("room is nil")
	}

	roomModel := toModelRoom(room)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"guild_id", "owner_id", "locked", "trusted", "blocked", "updated_at"}),
	}).Create(roomModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrOwnerHasRoom
		}
		return err
	}
	return nil
}

func (r *PostgresRoomRepository) Delete(ctx context.Context, roomID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Delete(&model.Room{}, "id = ?", roomID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) List(ctx context.Context, guildID string) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Order("id")
	if guildID != "" {
		q = q.Where("guild_id = ?", guildID)
	}

	var rooms []model.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Room, 0, len(rooms))
	for i := range rooms {
		result = append(result, toDomainRoom(&rooms[i]))
	}

	return result, nil
}

type PostgresSetupRepository struct {
	db *gorm.DB
}

func NewPostgresSetupRepository(db *gorm.DB) *PostgresSetupRepository {
	return &PostgresSetupRepository{db: db}
}

func (r *PostgresSetupRepository) Get(ctx context.Context, guildID string) (*domain.GuildSetup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var setup model.GuildSetup
	err := r.db.WithContext(ctx).First(&setup, "guild_id = ?", guildID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSetupNotFound
		}
		return nil, err
	}

	return toDomainSetup(&setup), nil
}

func (r *PostgresSetupRepository) Save(ctx context.Context, setup *domain.GuildSetup) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if setup == nil {
		return errors.New("setup is nil")
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category_id",
			"creator_channel_id",
			"interface_channel_id",
			"interface_message_id",
			"variant",
			"updated_at",
		}),
	}).Create(toModelSetup(setup)).Error
}

func (r *PostgresSetupRepository) Delete(ctx context.Context, guildID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Delete(&model.GuildSetup{}, "guild_id = ?", guildID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSetupNotFound
	}
	return nil
}

func toModelRoom(room *domain.Room) *model.Room {
	policy := room.Policy.Clone()
	policy.Normalize()

	trusted := pq.StringArray(policy.Trusted)
	if trusted == nil {
		trusted = pq.StringArray{}
	}
	blocked := pq.StringArray(policy.Blocked)
	if blocked == nil {
		blocked = pq.StringArray{}
	}

	return &model.Room{
		ID:        room.ID,
		GuildID:   room.GuildID,
		OwnerID:   room.OwnerID,
		Locked:    policy.Locked,
		Trusted:   trusted,
		Blocked:   blocked,
		CreatedAt: room.CreatedAt.UTC(),
		UpdatedAt: room.UpdatedAt.UTC(),
	}
}

func toDomainRoom(room *model.Room) *domain.Room {
	policy := domain.AccessPolicy{
		Locked:  room.Locked,
		Trusted: []string(room.Trusted),
		Blocked: []string(room.Blocked),
	}
	policy.Normalize()

	return &domain.Room{
		ID:        room.ID,
		GuildID:   room.GuildID,
		OwnerID:   room.OwnerID,
		Policy:    policy,
		CreatedAt: room.CreatedAt.UTC(),
		UpdatedAt: room.UpdatedAt.UTC(),
	}
}

func toModelSetup(setup *domain.GuildSetup) *model.GuildSetup {
	variant := setup.Variant
	if variant == "" {
		variant = domain.VariantStandard
	}
	return &model.GuildSetup{
		GuildID:            setup.GuildID,
		CategoryID:         setup.CategoryID,
		CreatorChannelID:   setup.CreatorChannelID,
		InterfaceChannelID: setup.InterfaceChannelID,
		InterfaceMessageID: setup.InterfaceMessageID,
		Variant:            string(variant),
		CreatedAt:          setup.CreatedAt.UTC(),
		UpdatedAt:          setup.UpdatedAt.UTC(),
	}
}

func toDomainSetup(setup *model.GuildSetup) *domain.GuildSetup {
	variant, err := domain.ParseInterfaceVariant(setup.Variant)
	if err != nil {
		variant = domain.VariantStandard
	}
	return &domain.GuildSetup{
		GuildID:            setup.GuildID,
		CategoryID:         setup.CategoryID,
		CreatorChannelID:   setup.CreatorChannelID,
		InterfaceChannelID: setup.InterfaceChannelID,
		InterfaceMessageID: setup.InterfaceMessageID,
		Variant:            variant,
		CreatedAt:          setup.CreatedAt.UTC(),
		UpdatedAt:          setup.UpdatedAt.UTC(),
	}
}
