package converter

import (
	"time"

	"github.com/immxrtalbeast/tempvoice/internal/domain"
	"github.com/immxrtalbeast/tempvoice/internal/service"
)

type RoomResponse struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guild_id"`
	OwnerID   string    `json:"owner_id"`
	Locked    bool      `json:"locked"`
	Trusted   []string  `json:"trusted"`
	Blocked   []string  `json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func RoomToApi(r *domain.Room) *RoomResponse {
	trusted := r.Policy.Trusted
	if trusted == nil {
		trusted = []string{}
	}
	blocked := r.Policy.Blocked
	if blocked == nil {
		blocked = []string{}
	}
	return &RoomResponse{
		ID:        r.ID,
		GuildID:   r.GuildID,
		OwnerID:   r.OwnerID,
		Locked:    r.Policy.Locked,
		Trusted:   trusted,
		Blocked:   blocked,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func RoomsToApi(rooms []*domain.Room) []*RoomResponse {
	out := make([]*RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomToApi(r))
	}
	return out
}

type SetupResponse struct {
	Valid              bool   `json:"valid"`
	Reason             string `json:"reason,omitempty"`
	CategoryID         string `json:"category_id,omitempty"`
	CreatorChannelID   string `json:"creator_channel_id,omitempty"`
	InterfaceChannelID string `json:"interface_channel_id,omitempty"`
	InterfaceMessageID string `json:"interface_message_id,omitempty"`
	Variant            string `json:"variant,omitempty"`
}

func SetupStatusToApi(s *service.SetupStatus) *SetupResponse {
	resp := &SetupResponse{Valid: s.Valid, Reason: s.Reason}
	if s.Valid && s.Setup != nil {
		resp.CategoryID = s.Setup.CategoryID
		resp.CreatorChannelID = s.Setup.CreatorChannelID
		resp.InterfaceChannelID = s.Setup.InterfaceChannelID
		resp.InterfaceMessageID = s.Setup.InterfaceMessageID
		resp.Variant = string(s.Setup.Variant)
	}
	return resp
}
